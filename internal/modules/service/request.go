package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/pkg/paging"
	"github.com/emonotate/emonotate/internal/pkg/randname"
	"gorm.io/gorm"
)

type RequestService interface {
	Create(ctx context.Context, owner *model.EmailUser, in CreateRequestInput) (*model.Request, error)
	Get(ctx context.Context, id uint) (*model.Request, error)
	GetByRoomName(ctx context.Context, roomName string) (*model.Request, error)
	List(ctx context.Context, in ListRequestsInput) (*ListRequestsOutput, error)
	ListParticipating(ctx context.Context, userID uint) ([]*model.Request, error)
	Update(ctx context.Context, actor *model.EmailUser, id uint, in UpdateRequestInput) (*model.Request, error)
	Delete(ctx context.Context, actor *model.EmailUser, id uint) error
	AddParticipants(ctx context.Context, actor *model.EmailUser, id uint, userIDs []uint) (int64, error)
	ListParticipants(ctx context.Context, actor *model.EmailUser, id uint) ([]*model.RelationParticipant, error)
}

type CreateRequestInput struct {
	Title          string
	Description    string
	Intervals      int
	ContentID      uint
	ValueTypeID    uint
	QuestionaireID *uint
}

type UpdateRequestInput struct {
	Title          *string
	Description    *string
	Intervals      *int
	QuestionaireID *uint
}

type ListRequestsInput struct {
	OwnerID uint
	Limit   int    `json:"limit"` // 0 means no limit (return all)
	Cursor  string `json:"cursor"`
}

type ListRequestsOutput struct {
	Items      []*model.Request `json:"items"`
	NextCursor string           `json:"next_cursor,omitempty"`
	HasMore    bool             `json:"has_more"`
}

type requestService struct {
	r repo.RequestRepo
}

func NewRequestService(r repo.RequestRepo) RequestService {
	return &requestService{r: r}
}

// Create assigns a fresh room code, retrying on unique-index conflicts.
func (s *requestService) Create(ctx context.Context, owner *model.EmailUser, in CreateRequestInput) (*model.Request, error) {
	intervals := in.Intervals
	if intervals <= 0 {
		intervals = 1
	}
	req := &model.Request{
		Title:          in.Title,
		Description:    in.Description,
		OwnerID:        owner.ID,
		Intervals:      intervals,
		ContentID:      in.ContentID,
		ValueTypeID:    in.ValueTypeID,
		QuestionaireID: in.QuestionaireID,
	}

	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		req.ID = 0
		req.RoomName = randname.Generate(randname.RoomCodeLen)
		err := s.r.Create(ctx, req)
		if err == nil {
			return req, nil
		}
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrInvalidReference
		}
		if !errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("create request: %w", err)
		}
	}
	return nil, ErrNameSpaceExhausted
}

func (s *requestService) Get(ctx context.Context, id uint) (*model.Request, error) {
	req, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	return req, err
}

func (s *requestService) GetByRoomName(ctx context.Context, roomName string) (*model.Request, error) {
	req, err := s.r.GetByRoomName(ctx, roomName)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	return req, err
}

func (s *requestService) List(ctx context.Context, in ListRequestsInput) (*ListRequestsOutput, error) {
	if in.Limit == 0 {
		reqs, err := s.r.ListByOwner(ctx, in.OwnerID, time.Time{}, 0, 0)
		if err != nil {
			return nil, err
		}
		return &ListRequestsOutput{Items: reqs}, nil
	}

	var afterT time.Time
	var afterID uint
	var err error
	if in.Cursor != "" {
		afterT, afterID, err = paging.DecodeCursor(in.Cursor)
		if err != nil {
			return nil, err
		}
	}

	reqs, err := s.r.ListByOwner(ctx, in.OwnerID, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListRequestsOutput{Items: reqs}
	if len(reqs) > in.Limit {
		out.HasMore = true
		out.Items = reqs[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.Created, last.ID)
	}
	return out, nil
}

func (s *requestService) ListParticipating(ctx context.Context, userID uint) ([]*model.Request, error) {
	return s.r.ListByParticipant(ctx, userID)
}

func (s *requestService) owned(ctx context.Context, actor *model.EmailUser, id uint) (*model.Request, error) {
	return requestAccess(ctx, s.r, actor, id, false)
}

// requestAccess loads request id and checks actor against it. An unknown id
// is ErrRequestNotFound whoever asks. Staff and the owner always pass;
// participants pass only when allowParticipants is set. Everyone else,
// including a nil actor, gets ErrForbidden.
func requestAccess(ctx context.Context, requests repo.RequestRepo, actor *model.EmailUser, id uint, allowParticipants bool) (*model.Request, error) {
	req, err := requests.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, err
	}
	if actor == nil {
		return nil, ErrForbidden
	}
	if actor.IsStaff || req.OwnerID == actor.ID {
		return req, nil
	}
	if allowParticipants {
		ok, err := requests.IsParticipant(ctx, id, actor.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return req, nil
		}
	}
	return nil, ErrForbidden
}

func (s *requestService) Update(ctx context.Context, actor *model.EmailUser, id uint, in UpdateRequestInput) (*model.Request, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if in.Title != nil {
		fields["title"] = *in.Title
	}
	if in.Description != nil {
		fields["description"] = *in.Description
	}
	if in.Intervals != nil && *in.Intervals > 0 {
		fields["intervals"] = *in.Intervals
	}
	if in.QuestionaireID != nil {
		fields["questionaire_id"] = *in.QuestionaireID
	}
	if len(fields) > 0 {
		if err := s.r.Update(ctx, id, fields); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return nil, ErrInvalidReference
			}
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

func (s *requestService) Delete(ctx context.Context, actor *model.EmailUser, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	err := s.r.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRequestNotFound
	}
	return err
}

func (s *requestService) AddParticipants(ctx context.Context, actor *model.EmailUser, id uint, userIDs []uint) (int64, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return 0, err
	}
	n, err := s.r.AddParticipants(ctx, id, userIDs)
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return 0, ErrUserNotFound
	}
	return n, err
}

func (s *requestService) ListParticipants(ctx context.Context, actor *model.EmailUser, id uint) ([]*model.RelationParticipant, error) {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return nil, err
	}
	return s.r.ListParticipants(ctx, id)
}
