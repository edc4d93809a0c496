package repo

import (
	"context"
	"time"

	"github.com/emonotate/emonotate/internal/modules/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RequestRepo interface {
	Create(ctx context.Context, r *model.Request) error
	Get(ctx context.Context, id uint) (*model.Request, error)
	GetByRoomName(ctx context.Context, roomName string) (*model.Request, error)
	ExistingIDs(ctx context.Context, ids []uint) ([]uint, error)
	ListByOwner(ctx context.Context, ownerID uint, afterCreated time.Time, afterID uint, limit int) ([]*model.Request, error)
	ListByParticipant(ctx context.Context, userID uint) ([]*model.Request, error)
	Update(ctx context.Context, id uint, fields map[string]any) error
	Delete(ctx context.Context, id uint) error

	AddParticipants(ctx context.Context, requestID uint, userIDs []uint) (int64, error)
	ListParticipants(ctx context.Context, requestID uint) ([]*model.RelationParticipant, error)
	IsParticipant(ctx context.Context, requestID, userID uint) (bool, error)
	MarkMailSent(ctx context.Context, requestID uint, userIDs []uint) error
	ClearMailSent(ctx context.Context, requestID, userID uint) error
	ResetParticipantEmails(ctx context.Context, requestID uint, sentinelUser, sentinelHost string) (int64, error)
}

type requestRepo struct{ db *gorm.DB }

func NewRequestRepo(db *gorm.DB) RequestRepo {
	return &requestRepo{db: db}
}

// Create inserts r; a taken room code surfaces as gorm.ErrDuplicatedKey.
func (r *requestRepo) Create(ctx context.Context, req *model.Request) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(req).Error
}

func (r *requestRepo) Get(ctx context.Context, id uint) (*model.Request, error) {
	var req model.Request
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Preload("Content").
		Preload("ValueType").
		Preload("Questionaire").
		First(&req, id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) GetByRoomName(ctx context.Context, roomName string) (*model.Request, error) {
	var req model.Request
	err := r.db.WithContext(ctx).
		Preload("Content").
		Preload("ValueType").
		Preload("Questionaire").
		Where("room_name = ?", roomName).
		First(&req).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepo) ExistingIDs(ctx context.Context, ids []uint) ([]uint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []uint
	err := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("id IN ?", ids).
		Order("id ASC").
		Pluck("id", &out).Error
	return out, err
}

func (r *requestRepo) ListByOwner(ctx context.Context, ownerID uint, afterCreated time.Time, afterID uint, limit int) ([]*model.Request, error) {
	q := r.db.WithContext(ctx).
		Preload("Content").
		Preload("ValueType").
		Where("owner_id = ?", ownerID)
	if !afterCreated.IsZero() && afterID != 0 {
		q = q.Where("(created > ?) OR (created = ? AND id > ?)", afterCreated, afterCreated, afterID)
	}
	q = q.Order("created ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var out []*model.Request
	return out, q.Find(&out).Error
}

func (r *requestRepo) ListByParticipant(ctx context.Context, userID uint) ([]*model.Request, error) {
	var out []*model.Request
	err := r.db.WithContext(ctx).
		Preload("Content").
		Preload("ValueType").
		Preload("Questionaire").
		Joins("JOIN relation_participants rp ON rp.request_id = requests.id").
		Where("rp.user_id = ?", userID).
		Order("requests.id ASC").
		Find(&out).Error
	return out, err
}

func (r *requestRepo) Update(ctx context.Context, id uint, fields map[string]any) error {
	res := r.db.WithContext(ctx).
		Model(&model.Request{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *requestRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Request{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// AddParticipants skips memberships that already exist and returns how many rows were added.
func (r *requestRepo) AddParticipants(ctx context.Context, requestID uint, userIDs []uint) (int64, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	rows := make([]model.RelationParticipant, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, model.RelationParticipant{RequestID: requestID, UserID: uid})
	}
	res := r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&rows)
	return res.RowsAffected, res.Error
}

func (r *requestRepo) ListParticipants(ctx context.Context, requestID uint) ([]*model.RelationParticipant, error) {
	var out []*model.RelationParticipant
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("request_id = ?", requestID).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

func (r *requestRepo) IsParticipant(ctx context.Context, requestID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&model.RelationParticipant{}).
		Where("request_id = ? AND user_id = ?", requestID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *requestRepo) MarkMailSent(ctx context.Context, requestID uint, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&model.RelationParticipant{}).
		Where("request_id = ? AND user_id IN ?", requestID, userIDs).
		Update("sended_mail", true).Error
}

// ClearMailSent undoes MarkMailSent for one membership whose mail was dropped after queueing.
func (r *requestRepo) ClearMailSent(ctx context.Context, requestID, userID uint) error {
	return r.db.WithContext(ctx).
		Model(&model.RelationParticipant{}).
		Where("request_id = ? AND user_id = ?", requestID, userID).
		Update("sended_mail", false).Error
}

// ResetParticipantEmails rewrites every participant's email to the
// "<user>+<username>@<host>" placeholder in one statement.
func (r *requestRepo) ResetParticipantEmails(ctx context.Context, requestID uint, sentinelUser, sentinelHost string) (int64, error) {
	sub := r.db.Model(&model.RelationParticipant{}).
		Select("user_id").
		Where("request_id = ?", requestID)
	res := r.db.WithContext(ctx).
		Model(&model.EmailUser{}).
		Where("id IN (?)", sub).
		Update("email", gorm.Expr("CAST(? AS text) || '+' || username || '@' || CAST(? AS text)", sentinelUser, sentinelHost))
	return res.RowsAffected, res.Error
}
