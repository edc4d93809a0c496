package service

import (
	"context"
	"errors"

	"github.com/emonotate/emonotate/internal/infra/httpclient"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoMetaFetcher resolves public metadata of a YouTube video.
type VideoMetaFetcher interface {
	VideoMeta(ctx context.Context, videoID string) (*httpclient.VideoMeta, error)
}

type ContentService interface {
	Create(ctx context.Context, userID uint, in CreateContentInput) (*model.Content, error)
	Get(ctx context.Context, id uint) (*model.Content, error)
	List(ctx context.Context, userID uint) ([]*model.Content, error)
	Delete(ctx context.Context, actor *model.EmailUser, id uint) error

	CreateYouTube(ctx context.Context, userID uint, in CreateYouTubeInput) (*model.YouTubeContent, bool, error)
	ListYouTube(ctx context.Context) ([]*model.YouTubeContent, error)
}

type CreateContentInput struct {
	Title string
	URL   string
}

type CreateYouTubeInput struct {
	VideoID string
	Title   string
}

type contentService struct {
	r     repo.ContentRepo
	video VideoMetaFetcher
	log   *zap.Logger
}

func NewContentService(r repo.ContentRepo, video VideoMetaFetcher, log *zap.Logger) ContentService {
	return &contentService{r: r, video: video, log: log}
}

func (s *contentService) Create(ctx context.Context, userID uint, in CreateContentInput) (*model.Content, error) {
	c := &model.Content{UserID: userID, Title: in.Title, URL: in.URL}
	if err := s.r.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *contentService) Get(ctx context.Context, id uint) (*model.Content, error) {
	c, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrContentNotFound
	}
	return c, err
}

func (s *contentService) List(ctx context.Context, userID uint) ([]*model.Content, error) {
	return s.r.List(ctx, userID)
}

// Delete refuses while any curve references the content.
func (s *contentService) Delete(ctx context.Context, actor *model.EmailUser, id uint) error {
	c, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsStaff && c.UserID != actor.ID {
		return ErrForbidden
	}

	n, err := s.r.CountCurves(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrContentProtected
	}

	err = s.r.Delete(ctx, id)
	switch {
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return ErrContentProtected
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrContentNotFound
	}
	return err
}

// CreateYouTube is idempotent by video id: an existing row is returned
// unchanged with created=false.
func (s *contentService) CreateYouTube(ctx context.Context, userID uint, in CreateYouTubeInput) (*model.YouTubeContent, bool, error) {
	existing, err := s.r.GetYouTubeByVideoID(ctx, in.VideoID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	title := in.Title
	if title == "" {
		title = s.lookupTitle(ctx, in.VideoID)
	}

	yt := &model.YouTubeContent{
		VideoID: in.VideoID,
		Content: model.Content{
			UserID: userID,
			Title:  title,
			URL:    httpclient.WatchURL(in.VideoID),
		},
	}
	if err := s.r.CreateYouTube(ctx, yt); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// lost a race with a concurrent insert of the same video
			existing, gerr := s.r.GetYouTubeByVideoID(ctx, in.VideoID)
			if gerr != nil {
				return nil, false, gerr
			}
			return existing, false, nil
		}
		return nil, false, err
	}
	return yt, true, nil
}

func (s *contentService) lookupTitle(ctx context.Context, videoID string) string {
	if s.video == nil {
		return videoID
	}
	meta, err := s.video.VideoMeta(ctx, videoID)
	if err != nil || meta.Title == "" {
		s.log.Warn("youtube title lookup failed", zap.String("video_id", videoID), zap.Error(err))
		return videoID
	}
	return meta.Title
}

func (s *contentService) ListYouTube(ctx context.Context) ([]*model.YouTubeContent, error) {
	return s.r.ListYouTube(ctx)
}
