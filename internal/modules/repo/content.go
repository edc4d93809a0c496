package repo

import (
	"context"

	"github.com/emonotate/emonotate/internal/modules/model"
	"gorm.io/gorm"
)

type ContentRepo interface {
	Create(ctx context.Context, c *model.Content) error
	Get(ctx context.Context, id uint) (*model.Content, error)
	List(ctx context.Context, userID uint) ([]*model.Content, error)
	CountCurves(ctx context.Context, id uint) (int64, error)
	Delete(ctx context.Context, id uint) error

	GetYouTubeByVideoID(ctx context.Context, videoID string) (*model.YouTubeContent, error)
	CreateYouTube(ctx context.Context, yt *model.YouTubeContent) error
	ListYouTube(ctx context.Context) ([]*model.YouTubeContent, error)
}

type contentRepo struct{ db *gorm.DB }

func NewContentRepo(db *gorm.DB) ContentRepo {
	return &contentRepo{db: db}
}

func (r *contentRepo) Create(ctx context.Context, c *model.Content) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *contentRepo) Get(ctx context.Context, id uint) (*model.Content, error) {
	var c model.Content
	if err := r.db.WithContext(ctx).First(&c, id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *contentRepo) List(ctx context.Context, userID uint) ([]*model.Content, error) {
	q := r.db.WithContext(ctx).Order("id ASC")
	if userID != 0 {
		q = q.Where("user_id = ?", userID)
	}
	var out []*model.Content
	return out, q.Find(&out).Error
}

func (r *contentRepo) CountCurves(ctx context.Context, id uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Curve{}).Where("content_id = ?", id).Count(&n).Error
	return n, err
}

// Delete fails with gorm.ErrForeignKeyViolated while a curve still references the content.
func (r *contentRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Content{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *contentRepo) GetYouTubeByVideoID(ctx context.Context, videoID string) (*model.YouTubeContent, error) {
	var yt model.YouTubeContent
	err := r.db.WithContext(ctx).
		Preload("Content").
		Where("video_id = ?", videoID).
		First(&yt).Error
	if err != nil {
		return nil, err
	}
	return &yt, nil
}

// CreateYouTube writes the base Content row and its YouTube specialization atomically.
func (r *contentRepo) CreateYouTube(ctx context.Context, yt *model.YouTubeContent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&yt.Content).Error; err != nil {
			return err
		}
		yt.ContentID = yt.Content.ID
		return tx.Omit("Content").Create(yt).Error
	})
}

func (r *contentRepo) ListYouTube(ctx context.Context) ([]*model.YouTubeContent, error) {
	var out []*model.YouTubeContent
	return out, r.db.WithContext(ctx).Preload("Content").Order("content_id ASC").Find(&out).Error
}
