package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/emonotate/emonotate/internal/infra/mailer"
	"github.com/emonotate/emonotate/internal/modules/model"
	"github.com/emonotate/emonotate/internal/modules/repo"
	"github.com/emonotate/emonotate/internal/telemetry"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type MailService interface {
	Dispatch(ctx context.Context, actor *model.EmailUser, requestID uint, targets []uint) (*DispatchResult, error)
	ResetEmails(ctx context.Context, actor *model.EmailUser, requestID uint) (int64, error)
}

type DispatchResult struct {
	Sent    int `json:"sent"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type mailService struct {
	requests    repo.RequestRepo
	mailer      mailer.Mailer
	sentinel    SentinelEmail
	appURL      string
	concurrency int
	log         *zap.Logger
}

func NewMailService(requests repo.RequestRepo, m mailer.Mailer, sentinel SentinelEmail, appURL string, concurrency int, log *zap.Logger) MailService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &mailService{
		requests:    requests,
		mailer:      m,
		sentinel:    sentinel,
		appURL:      appURL,
		concurrency: concurrency,
		log:         log,
	}
}

// Dispatch mails every unique target once and flags the memberships that
// were delivered. No targets means every participant. Targets that are not
// participants, or whose address is a placeholder, are skipped. Only the
// request owner or staff may dispatch.
func (s *mailService) Dispatch(ctx context.Context, actor *model.EmailUser, requestID uint, targets []uint) (*DispatchResult, error) {
	req, err := requestAccess(ctx, s.requests, actor, requestID, false)
	if err != nil {
		return nil, err
	}

	participants, err := s.requests.ListParticipants(ctx, requestID)
	if err != nil {
		return nil, err
	}
	byUser := make(map[uint]*model.RelationParticipant, len(participants))
	for _, p := range participants {
		byUser[p.UserID] = p
	}

	if len(targets) == 0 {
		targets = make([]uint, 0, len(participants))
		for _, p := range participants {
			targets = append(targets, p.UserID)
		}
	}

	res := &DispatchResult{}
	recipients := make([]*model.EmailUser, 0, len(targets))
	seen := make(map[uint]struct{}, len(targets))
	for _, id := range targets {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, ok := byUser[id]
		if !ok || p.User == nil || s.sentinel.IsInvalidEmail(p.User.Email) {
			res.Skipped++
			continue
		}
		recipients = append(recipients, p.User)
	}

	var (
		mu        sync.Mutex
		delivered []uint
	)
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, u := range recipients {
		g.Go(func() error {
			if err := s.mailer.Send(ctx, s.invitation(req, u)); err != nil {
				s.log.Error("send invitation mail",
					zap.Uint("request_id", req.ID),
					zap.Uint("user_id", u.ID),
					zap.Error(err))
				mu.Lock()
				res.Failed++
				mu.Unlock()
				return nil
			}
			mu.Lock()
			delivered = append(delivered, u.ID)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	if err := s.requests.MarkMailSent(ctx, requestID, delivered); err != nil {
		return nil, fmt.Errorf("mark mail sent: %w", err)
	}
	res.Sent = len(delivered)

	telemetry.RecordMailDispatch(ctx, int64(res.Sent), int64(res.Skipped), int64(res.Failed))
	return res, nil
}

func (s *mailService) invitation(req *model.Request, u *model.EmailUser) mailer.Message {
	title := req.Title
	if title == "" {
		title = req.RoomName
	}
	body := fmt.Sprintf(
		"%s さん\n\n実験「%s」への参加依頼が届いています。\n以下のURLから回答してください。\n\n%sapp/rooms/%d\n\nルームコード: %s\n",
		u.Username, title, s.appURL, req.ID, req.RoomName,
	)
	if req.Description != "" {
		body += "\n" + req.Description + "\n"
	}
	return mailer.Message{
		To:        u.Email,
		Subject:   "[emonotate] " + title,
		Body:      body,
		RequestID: req.ID,
		UserID:    u.ID,
	}
}

// ResetEmails replaces every participant's address with their placeholder.
// Only the request owner or staff may reset.
func (s *mailService) ResetEmails(ctx context.Context, actor *model.EmailUser, requestID uint) (int64, error) {
	if _, err := requestAccess(ctx, s.requests, actor, requestID, false); err != nil {
		return 0, err
	}
	n, err := s.requests.ResetParticipantEmails(ctx, requestID, s.sentinel.User, s.sentinel.Host)
	if err != nil {
		return 0, fmt.Errorf("reset participant emails: %w", err)
	}
	s.log.Info("participant emails reset", zap.Uint("request_id", requestID), zap.Int64("count", n))
	return n, nil
}
