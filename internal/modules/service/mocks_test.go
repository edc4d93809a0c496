package service

import (
	"context"
	"time"

	"github.com/emonotate/emonotate/internal/infra/blob"
	"github.com/emonotate/emonotate/internal/infra/httpclient"
	"github.com/emonotate/emonotate/internal/infra/mailer"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/stretchr/testify/mock"
)

// MockUserRepo is a mock implementation of repo.UserRepo
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, u *model.EmailUser) error {
	args := m.Called(ctx, u)
	return args.Error(0)
}

func (m *MockUserRepo) GetByID(ctx context.Context, id uint) (*model.EmailUser, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailUser), args.Error(1)
}

func (m *MockUserRepo) GetByUsername(ctx context.Context, username string) (*model.EmailUser, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EmailUser), args.Error(1)
}

func (m *MockUserRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepo) List(ctx context.Context, afterJoined time.Time, afterID uint, limit int) ([]*model.EmailUser, error) {
	args := m.Called(ctx, afterJoined, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.EmailUser), args.Error(1)
}

func (m *MockUserRepo) UpdateEmail(ctx context.Context, id uint, email string) error {
	args := m.Called(ctx, id, email)
	return args.Error(0)
}

func (m *MockUserRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockUserRepo) GetGroupByName(ctx context.Context, name string) (*model.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockUserRepo) EnsureGroup(ctx context.Context, name string) (*model.Group, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Group), args.Error(1)
}

func (m *MockUserRepo) AddGroup(ctx context.Context, u *model.EmailUser, g *model.Group) error {
	args := m.Called(ctx, u, g)
	return args.Error(0)
}

// MockRequestRepo is a mock implementation of repo.RequestRepo
type MockRequestRepo struct {
	mock.Mock
}

func (m *MockRequestRepo) Create(ctx context.Context, r *model.Request) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

func (m *MockRequestRepo) Get(ctx context.Context, id uint) (*model.Request, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestRepo) GetByRoomName(ctx context.Context, roomName string) (*model.Request, error) {
	args := m.Called(ctx, roomName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Request), args.Error(1)
}

func (m *MockRequestRepo) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockRequestRepo) ListByOwner(ctx context.Context, ownerID uint, afterCreated time.Time, afterID uint, limit int) ([]*model.Request, error) {
	args := m.Called(ctx, ownerID, afterCreated, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Request), args.Error(1)
}

func (m *MockRequestRepo) ListByParticipant(ctx context.Context, userID uint) ([]*model.Request, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Request), args.Error(1)
}

func (m *MockRequestRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockRequestRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRequestRepo) AddParticipants(ctx context.Context, requestID uint, userIDs []uint) (int64, error) {
	args := m.Called(ctx, requestID, userIDs)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRequestRepo) ListParticipants(ctx context.Context, requestID uint) ([]*model.RelationParticipant, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.RelationParticipant), args.Error(1)
}

func (m *MockRequestRepo) IsParticipant(ctx context.Context, requestID, userID uint) (bool, error) {
	args := m.Called(ctx, requestID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRequestRepo) MarkMailSent(ctx context.Context, requestID uint, userIDs []uint) error {
	args := m.Called(ctx, requestID, userIDs)
	return args.Error(0)
}

func (m *MockRequestRepo) ClearMailSent(ctx context.Context, requestID, userID uint) error {
	args := m.Called(ctx, requestID, userID)
	return args.Error(0)
}

func (m *MockRequestRepo) ResetParticipantEmails(ctx context.Context, requestID uint, sentinelUser, sentinelHost string) (int64, error) {
	args := m.Called(ctx, requestID, sentinelUser, sentinelHost)
	return args.Get(0).(int64), args.Error(1)
}

// MockCurveRepo is a mock implementation of repo.CurveRepo
type MockCurveRepo struct {
	mock.Mock
}

func (m *MockCurveRepo) Create(ctx context.Context, c *model.Curve) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCurveRepo) Get(ctx context.Context, id uint) (*model.Curve, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Curve), args.Error(1)
}

func (m *MockCurveRepo) List(ctx context.Context, f repo.CurveFilter, afterCreated time.Time, afterID uint, limit int) ([]*model.Curve, error) {
	args := m.Called(ctx, f, afterCreated, afterID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Curve), args.Error(1)
}

func (m *MockCurveRepo) ListByRoomName(ctx context.Context, roomName string) ([]*model.Curve, error) {
	args := m.Called(ctx, roomName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Curve), args.Error(1)
}

func (m *MockCurveRepo) ListByIDs(ctx context.Context, ids []uint) ([]*model.Curve, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Curve), args.Error(1)
}

func (m *MockCurveRepo) UpdateValues(ctx context.Context, c *model.Curve) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCurveRepo) SetLocked(ctx context.Context, id uint, locked bool) error {
	args := m.Called(ctx, id, locked)
	return args.Error(0)
}

func (m *MockCurveRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockContentRepo is a mock implementation of repo.ContentRepo
type MockContentRepo struct {
	mock.Mock
}

func (m *MockContentRepo) Create(ctx context.Context, c *model.Content) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContentRepo) Get(ctx context.Context, id uint) (*model.Content, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Content), args.Error(1)
}

func (m *MockContentRepo) List(ctx context.Context, userID uint) ([]*model.Content, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Content), args.Error(1)
}

func (m *MockContentRepo) CountCurves(ctx context.Context, id uint) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContentRepo) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContentRepo) GetYouTubeByVideoID(ctx context.Context, videoID string) (*model.YouTubeContent, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.YouTubeContent), args.Error(1)
}

func (m *MockContentRepo) CreateYouTube(ctx context.Context, yt *model.YouTubeContent) error {
	args := m.Called(ctx, yt)
	return args.Error(0)
}

func (m *MockContentRepo) ListYouTube(ctx context.Context) ([]*model.YouTubeContent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.YouTubeContent), args.Error(1)
}

// MockMailer records every message it is asked to send
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, msg mailer.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

// MockBlobStore is a mock implementation of BlobStore
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) UploadBytes(ctx context.Context, key string, b []byte, contentType string) (*blob.UploadMeta, error) {
	args := m.Called(ctx, key, b, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blob.UploadMeta), args.Error(1)
}

func (m *MockBlobStore) PresignGet(ctx context.Context, key string, expire time.Duration) (string, error) {
	args := m.Called(ctx, key, expire)
	return args.String(0), args.Error(1)
}

// MockSessionStore is a mock implementation of SessionStore
type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Put(ctx context.Context, key string, userID uint) error {
	args := m.Called(ctx, key, userID)
	return args.Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, key string) (uint, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(uint), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockSessionStore) TTL() time.Duration {
	return time.Hour
}

// MockVideoMeta is a mock implementation of VideoMetaFetcher
type MockVideoMeta struct {
	mock.Mock
}

func (m *MockVideoMeta) VideoMeta(ctx context.Context, videoID string) (*httpclient.VideoMeta, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*httpclient.VideoMeta), args.Error(1)
}
