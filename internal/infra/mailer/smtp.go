package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/emonotate/emonotate/internal/config"
	"github.com/wneessen/go-mail"
)

type SMTPMailer struct {
	from   string
	client *mail.Client
}

func NewSMTPMailer(cfg config.MailCfg) (*SMTPMailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.SMTPUser != "" && cfg.SMTPPass != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.SMTPUser),
			mail.WithPassword(cfg.SMTPPass),
		)
	}

	client, err := mail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPMailer{from: cfg.From, client: client}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	out := mail.NewMsg()
	if err := out.From(m.from); err != nil {
		return fmt.Errorf("set from: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return fmt.Errorf("set to %q: %w: %w", msg.To, ErrPermanent, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(mail.TypeTextPlain, msg.Body)

	if err := m.client.DialAndSendWithContext(ctx, out); err != nil {
		if permanentSendError(err) {
			return fmt.Errorf("send mail: %w: %w", ErrPermanent, err)
		}
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

// permanentSendError reports whether the server rejected the mail with a 5xx code.
func permanentSendError(err error) bool {
	var se *mail.SendError
	if !errors.As(err, &se) {
		return false
	}
	return se.ErrorCode() >= 500 && se.ErrorCode() < 600
}
