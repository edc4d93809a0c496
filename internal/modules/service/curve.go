package service

import (
	"context"
	"errors"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/pkg/paging"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CurveService interface {
	Create(ctx context.Context, userID uint, in CreateCurveInput) (*model.Curve, error)
	Get(ctx context.Context, id uint) (*model.Curve, error)
	List(ctx context.Context, in ListCurvesInput) (*ListCurvesOutput, error)
	UpdateValues(ctx context.Context, actor *model.EmailUser, id uint, values datatypes.JSON, version string) (*model.Curve, error)
	SetLocked(ctx context.Context, actor *model.EmailUser, id uint, locked bool) (*model.Curve, error)
	Delete(ctx context.Context, actor *model.EmailUser, id uint) error
}

type CreateCurveInput struct {
	ContentID   uint
	ValueTypeID uint
	Values      datatypes.JSON
	Version     string
	RoomName    string
	// Locked defaults to true when nil.
	Locked *bool
}

type ListCurvesInput struct {
	Filter repo.CurveFilter
	Limit  int    `json:"limit"` // 0 means no limit (return all)
	Cursor string `json:"cursor"`
}

type ListCurvesOutput struct {
	Items      []*model.Curve `json:"items"`
	NextCursor string         `json:"next_cursor,omitempty"`
	HasMore    bool           `json:"has_more"`
}

type curveService struct {
	r repo.CurveRepo
}

func NewCurveService(r repo.CurveRepo) CurveService {
	return &curveService{r: r}
}

func (s *curveService) Create(ctx context.Context, userID uint, in CreateCurveInput) (*model.Curve, error) {
	locked := true
	if in.Locked != nil {
		locked = *in.Locked
	}
	c := &model.Curve{
		UserID:      userID,
		ContentID:   in.ContentID,
		ValueTypeID: in.ValueTypeID,
		Values:      in.Values,
		Version:     in.Version,
		RoomName:    in.RoomName,
		Locked:      locked,
	}
	if err := s.r.Create(ctx, c); err != nil {
		if errors.Is(err, gorm.ErrForeignKeyViolated) {
			return nil, ErrInvalidReference
		}
		return nil, err
	}
	return c, nil
}

func (s *curveService) Get(ctx context.Context, id uint) (*model.Curve, error) {
	c, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrCurveNotFound
	}
	return c, err
}

func (s *curveService) List(ctx context.Context, in ListCurvesInput) (*ListCurvesOutput, error) {
	if in.Limit == 0 {
		curves, err := s.r.List(ctx, in.Filter, time.Time{}, 0, 0)
		if err != nil {
			return nil, err
		}
		return &ListCurvesOutput{Items: curves}, nil
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

	curves, err := s.r.List(ctx, in.Filter, afterT, afterID, in.Limit+1)
	if err != nil {
		return nil, err
	}

	out := &ListCurvesOutput{Items: curves}
	if len(curves) > in.Limit {
		out.HasMore = true
		out.Items = curves[:in.Limit]
		last := out.Items[len(out.Items)-1]
		out.NextCursor = paging.EncodeCursor(last.Created, last.ID)
	}
	return out, nil
}

func (s *curveService) owned(ctx context.Context, actor *model.EmailUser, id uint) (*model.Curve, error) {
	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.IsStaff && c.UserID != actor.ID {
		return nil, ErrForbidden
	}
	return c, nil
}

// UpdateValues rewrites the payload of an unlocked curve.
func (s *curveService) UpdateValues(ctx context.Context, actor *model.EmailUser, id uint, values datatypes.JSON, version string) (*model.Curve, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if c.Locked {
		return nil, ErrCurveLocked
	}
	c.Values = values
	if version != "" {
		c.Version = version
	}
	if err := s.r.UpdateValues(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *curveService) SetLocked(ctx context.Context, actor *model.EmailUser, id uint, locked bool) (*model.Curve, error) {
	c, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := s.r.SetLocked(ctx, id, locked); err != nil {
		return nil, err
	}
	c.Locked = locked
	return c, nil
}

func (s *curveService) Delete(ctx context.Context, actor *model.EmailUser, id uint) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	err := s.r.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrCurveNotFound
	}
	return err
}
