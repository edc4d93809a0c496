package repo

import (
	"context"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"gorm.io/gorm"
)

// CurveFilter narrows List; zero fields are ignored.
type CurveFilter struct {
	UserID    uint
	ContentID uint
	RoomName  string
}

type CurveRepo interface {
	Create(ctx context.Context, c *model.Curve) error
	Get(ctx context.Context, id uint) (*model.Curve, error)
	List(ctx context.Context, f CurveFilter, afterCreated time.Time, afterID uint, limit int) ([]*model.Curve, error)
	ListByRoomName(ctx context.Context, roomName string) ([]*model.Curve, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*model.Curve, error)
	UpdateValues(ctx context.Context, c *model.Curve) error
	SetLocked(ctx context.Context, id uint, locked bool) error
	Delete(ctx context.Context, id uint) error
}

type curveRepo struct{ db *gorm.DB }

func NewCurveRepo(db *gorm.DB) CurveRepo {
	return &curveRepo{db: db}
}

func (r *curveRepo) Create(ctx context.Context, c *model.Curve) error {
	return r.db.WithContext(ctx).Omit("User", "Content", "ValueType").Create(c).Error
}

func (r *curveRepo) Get(ctx context.Context, id uint) (*model.Curve, error) {
	var c model.Curve
	err := r.db.WithContext(ctx).
		Preload("Content").
		Preload("ValueType").
		First(&c, id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *curveRepo) List(ctx context.Context, f CurveFilter, afterCreated time.Time, afterID uint, limit int) ([]*model.Curve, error) {
	q := r.db.WithContext(ctx).Model(&model.Curve{})
	if f.UserID != 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.ContentID != 0 {
		q = q.Where("content_id = ?", f.ContentID)
	}
	if f.RoomName != "" {
		q = q.Where("room_name = ?", f.RoomName)
	}
	if !afterCreated.IsZero() && afterID != 0 {
		q = q.Where("(created > ?) OR (created = ? AND id > ?)", afterCreated, afterCreated, afterID)
	}
	q = q.Order("created ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []*model.Curve
	return out, q.Find(&out).Error
}

// ListByRoomName returns every curve recorded under a room code, with their owners.
func (r *curveRepo) ListByRoomName(ctx context.Context, roomName string) ([]*model.Curve, error) {
	var out []*model.Curve
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("room_name = ?", roomName).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// ListByIDs silently drops ids that do not exist.
func (r *curveRepo) ListByIDs(ctx context.Context, ids []uint) ([]*model.Curve, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []*model.Curve
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *curveRepo) UpdateValues(ctx context.Context, c *model.Curve) error {
	res := r.db.WithContext(ctx).
		Model(&model.Curve{}).
		Where("id = ?", c.ID).
		Updates(map[string]any{
			"values":  c.Values,
			"version": c.Version,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *curveRepo) SetLocked(ctx context.Context, id uint, locked bool) error {
	res := r.db.WithContext(ctx).
		Model(&model.Curve{}).
		Where("id = ?", id).
		Update("locked", locked)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *curveRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Curve{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
