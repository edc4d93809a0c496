package service

import (
	"context"
	"errors"

	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"gorm.io/gorm"
)

type QuestionaireService interface {
	Create(ctx context.Context, url, userIDForm string) (*model.Questionaire, error)
	Get(ctx context.Context, id uint) (*model.Questionaire, error)
	List(ctx context.Context) ([]*model.Questionaire, error)
	Delete(ctx context.Context, id uint) error
}

type questionaireService struct {
	r repo.QuestionaireRepo
}

func NewQuestionaireService(r repo.QuestionaireRepo) QuestionaireService {
	return &questionaireService{r: r}
}

func (s *questionaireService) Create(ctx context.Context, url, userIDForm string) (*model.Questionaire, error) {
	q := &model.Questionaire{URL: url, UserIDForm: userIDForm}
	if err := s.r.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *questionaireService) Get(ctx context.Context, id uint) (*model.Questionaire, error) {
	q, err := s.r.Get(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrQuestionaireNotFound
	}
	return q, err
}

func (s *questionaireService) List(ctx context.Context) ([]*model.Questionaire, error) {
	return s.r.List(ctx)
}

func (s *questionaireService) Delete(ctx context.Context, id uint) error {
	err := s.r.Delete(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQuestionaireNotFound
	}
	return err
}
