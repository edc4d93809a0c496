package repo

import (
	"context"

	"github.com/emonotate/emonotate/internal/modules/model"
	"gorm.io/gorm"
)

type ValueTypeRepo interface {
	Create(ctx context.Context, vt *model.ValueType) error
	Get(ctx context.Context, id uint) (*model.ValueType, error)
	List(ctx context.Context, userID uint) ([]*model.ValueType, error)
	Delete(ctx context.Context, id uint) error
}

type valueTypeRepo struct{ db *gorm.DB }

func NewValueTypeRepo(db *gorm.DB) ValueTypeRepo {
	return &valueTypeRepo{db: db}
}

func (r *valueTypeRepo) Create(ctx context.Context, vt *model.ValueType) error {
	return r.db.WithContext(ctx).Create(vt).Error
}

func (r *valueTypeRepo) Get(ctx context.Context, id uint) (*model.ValueType, error) {
	var vt model.ValueType
	if err := r.db.WithContext(ctx).First(&vt, id).Error; err != nil {
		return nil, err
	}
	return &vt, nil
}

// List returns value types owned by userID, or every value type when userID is 0.
func (r *valueTypeRepo) List(ctx context.Context, userID uint) ([]*model.ValueType, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var out []*model.ValueType
	return out, q.Find(&out).Error
}

// Delete cascades to curves and requests through the foreign keys.
func (r *valueTypeRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.ValueType{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
