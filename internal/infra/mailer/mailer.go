package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/emonotate/emonotate/internal/config"
	mq "github.com/emonotate/emonotate/internal/infra/queue"
	"go.uber.org/zap"
)

type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// RequestID and UserID name the membership the mail was sent for, if any.
	RequestID uint `json:"request_id,omitempty"`
	UserID    uint `json:"user_id,omitempty"`
}

// ErrPermanent marks failures that retrying cannot fix: a bad address or a
// 5xx answer from the SMTP server.
var ErrPermanent = errors.New("permanent mail failure")

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// New picks the transport named by cfg.Mail.Transport. publisher may be nil
// unless the transport is "queue".
func New(cfg *config.Config, log *zap.Logger, publisher *mq.Publisher) (Mailer, error) {
	switch cfg.Mail.Transport {
	case "smtp":
		return NewSMTPMailer(cfg.Mail)
	case "queue":
		if publisher == nil {
			return nil, fmt.Errorf("mail transport %q requires a rabbitmq publisher", cfg.Mail.Transport)
		}
		return NewQueueMailer(publisher, cfg.RabbitMQ.ExchangeName.Notification, cfg.RabbitMQ.RoutingKey.MailSend), nil
	case "log", "":
		return NewLogMailer(log), nil
	default:
		return nil, fmt.Errorf("unknown mail transport %q", cfg.Mail.Transport)
	}
}

// LogMailer only logs; used in local development.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("mail (log transport)",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject))
	return nil
}
