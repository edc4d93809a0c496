package repo

import (
	"context"

	"github.com/emonotate/emonotate/internal/modules/model"
	"gorm.io/gorm"
)

type QuestionaireRepo interface {
	Create(ctx context.Context, q *model.Questionaire) error
	Get(ctx context.Context, id uint) (*model.Questionaire, error)
	List(ctx context.Context) ([]*model.Questionaire, error)
	Delete(ctx context.Context, id uint) error
}

type questionaireRepo struct{ db *gorm.DB }

func NewQuestionaireRepo(db *gorm.DB) QuestionaireRepo {
	return &questionaireRepo{db: db}
}

func (r *questionaireRepo) Create(ctx context.Context, q *model.Questionaire) error {
	return r.db.WithContext(ctx).Create(q).Error
}

func (r *questionaireRepo) Get(ctx context.Context, id uint) (*model.Questionaire, error) {
	var q model.Questionaire
	if err := r.db.WithContext(ctx).First(&q, id).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *questionaireRepo) List(ctx context.Context) ([]*model.Questionaire, error) {
	var out []*model.Questionaire
	return out, r.db.WithContext(ctx).Order("id ASC").Find(&out).Error
}

// Delete leaves referencing requests in place with questionaire_id nulled.
func (r *questionaireRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Questionaire{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
