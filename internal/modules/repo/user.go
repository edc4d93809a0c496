package repo

import (
	"context"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserRepo interface {
	Create(ctx context.Context, u *model.EmailUser) error
	GetByID(ctx context.Context, id uint) (*model.EmailUser, error)
	GetByUsername(ctx context.Context, username string) (*model.EmailUser, error)
	ExistsUsername(ctx context.Context, username string) (bool, error)
	List(ctx context.Context, afterJoined time.Time, afterID uint, limit int) ([]*model.EmailUser, error)
	UpdateEmail(ctx context.Context, id uint, email string) error
	UpdateLastLogin(ctx context.Context, id uint, at time.Time) error

	GetGroupByName(ctx context.Context, name string) (*model.Group, error)
	EnsureGroup(ctx context.Context, name string) (*model.Group, error)
	AddGroup(ctx context.Context, u *model.EmailUser, g *model.Group) error
}

type userRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) UserRepo {
	return &userRepo{db: db}
}

// Create inserts u; a taken username surfaces as gorm.ErrDuplicatedKey.
func (r *userRepo) Create(ctx context.Context, u *model.EmailUser) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(u).Error
}

func (r *userRepo) GetByID(ctx context.Context, id uint) (*model.EmailUser, error) {
	var u model.EmailUser
	if err := r.db.WithContext(ctx).Preload("Groups").First(&u, id).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) GetByUsername(ctx context.Context, username string) (*model.EmailUser, error) {
	var u model.EmailUser
	err := r.db.WithContext(ctx).
		Preload("Groups").
		Where("username = ?", username).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) ExistsUsername(ctx context.Context, username string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.EmailUser{}).
		Where("username = ?", username).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepo) List(ctx context.Context, afterJoined time.Time, afterID uint, limit int) ([]*model.EmailUser, error) {
	q := r.db.WithContext(ctx).Preload("Groups")
	if !afterJoined.IsZero() && afterID != 0 {
		q = q.Where("(users.date_joined > ?) OR (users.date_joined = ? AND users.id > ?)", afterJoined, afterJoined, afterID)
	}
	q = q.Order("users.date_joined ASC, users.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var users []*model.EmailUser
	return users, q.Find(&users).Error
}

func (r *userRepo) UpdateEmail(ctx context.Context, id uint, email string) error {
	res := r.db.WithContext(ctx).
		Model(&model.EmailUser{}).
		Where("id = ?", id).
		Update("email", email)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) UpdateLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&model.EmailUser{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

func (r *userRepo) GetGroupByName(ctx context.Context, name string) (*model.Group, error) {
	var g model.Group
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *userRepo) EnsureGroup(ctx context.Context, name string) (*model.Group, error) {
	g := model.Group{Name: name}
	err := r.db.WithContext(ctx).
		Where(model.Group{Name: name}).
		FirstOrCreate(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *userRepo) AddGroup(ctx context.Context, u *model.EmailUser, g *model.Group) error {
	return r.db.WithContext(ctx).Model(u).Association("Groups").Append(g)
}
