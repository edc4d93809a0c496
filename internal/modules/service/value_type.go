package service

import (
	"context"
	"errors"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"gorm.io/gorm"
)

type ValueTypeService interface {
	Create(ctx context.Context, userID uint, title string, axis model.AxisType) (*model.ValueType, error)
	Get(ctx context.Context, id uint) (*model.ValueType, error)
	List(ctx context.Context, userID uint) ([]*model.ValueType, error)
	Delete(ctx context.Context, actor *model.EmailUser, id uint) error
}

type valueTypeService struct {
	r repo.ValueTypeRepo
}

func NewValueTypeService(r repo.ValueTypeRepo) ValueTypeService {
	return &valueTypeService{r: r}
}

func (s *valueTypeService) Create(ctx context.Context, userID uint, title string, axis model.AxisType) (*model.ValueType, error) {
	if !axis.Valid() {
		return nil, ErrInvalidAxisType
	}
	vt := &model.ValueType{UserID: userID, Title: title, AxisType: axis}
	if err := s.r.Create(ctx, vt); err != nil {
		return nil, err
	}
	return vt, nil
}

func (s *valueTypeService) Get(ctx context.Context, id uint) (*model.ValueType, error) {
	vt, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrValueTypeNotFound
	}
	return vt, err
}

func (s *valueTypeService) List(ctx context.Context, userID uint) ([]*model.ValueType, error) {
	return s.r.List(ctx, userID)
}

// Delete cascades to curves and requests using the value type.
func (s *valueTypeService) Delete(ctx context.Context, actor *model.EmailUser, id uint) error {
	vt, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !actor.IsStaff && vt.UserID != actor.ID {
		return ErrForbidden
	}
	if err := s.r.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrValueTypeNotFound
		}
		return err
	}
	return nil
}
