package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/emonotate/emonotate/internal/config"
	"github.com/emonotate/emonotate/internal/infra/mailer"
	mq "github.com/emonotate/emonotate/internal/infra/queue"
	"github.com/emonotate/emonotate/internal/modules/repo"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	relayQueue    string
	relayPrefetch int
)

// mailFlagClearer undoes the sended_mail flag of a membership.
type mailFlagClearer interface {
	ClearMailSent(ctx context.Context, requestID, userID uint) error
}

// relayHandler decodes a queued message and hands it to m. Messages that can
// never be delivered are dropped instead of requeued, and the membership they
// were sent for loses its sended_mail flag.
func relayHandler(m mailer.Mailer, flags mailFlagClearer, log *zap.Logger) func(context.Context, []byte) error {
	return func(ctx context.Context, body []byte) error {
		var msg mailer.Message
		if err := sonic.Unmarshal(body, &msg); err != nil {
			log.Error("drop malformed mail message", zap.Error(err))
			return nil
		}
		err := m.Send(ctx, msg)
		if err == nil {
			log.Info("mail relayed", zap.String("to", msg.To))
			return nil
		}
		if !errors.Is(err, mailer.ErrPermanent) {
			return fmt.Errorf("relay mail to %s: %w", msg.To, err)
		}

		log.Error("drop undeliverable mail",
			zap.String("to", msg.To),
			zap.Uint("request_id", msg.RequestID),
			zap.Uint("user_id", msg.UserID),
			zap.Error(err))
		if msg.RequestID != 0 && msg.UserID != 0 {
			if cerr := flags.ClearMailSent(ctx, msg.RequestID, msg.UserID); cerr != nil {
				log.Warn("clear sended_mail", zap.Error(cerr))
			}
		}
		return nil
	}
}

var mailRelayCmd = &cobra.Command{
	Use:   "mailrelay",
	Short: "Deliver queued invitation mails over SMTP",
	Long: `Consumes the notification exchange the server publishes to when
mail.transport is "queue" and sends every message through the configured
SMTP server. Temporary failures are requeued; bad addresses and 5xx
rejections are dropped and the participant's sended_mail flag is cleared.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		i := container()
		cfg := do.MustInvoke[*config.Config](i)
		log := do.MustInvoke[*zap.Logger](i)

		smtp, err := mailer.NewSMTPMailer(cfg.Mail)
		if err != nil {
			return err
		}
		conn := do.MustInvoke[*amqp.Connection](i)
		defer conn.Close()

		consumer, err := mq.NewConsumer(conn,
			cfg.RabbitMQ.ExchangeName.Notification,
			cfg.RabbitMQ.RoutingKey.MailSend,
			relayQueue, relayPrefetch, log, cfg.App.Name)
		if err != nil {
			return err
		}
		defer consumer.Close()

		log.Sugar().Infow("mail relay started", "queue", relayQueue)
		requests := do.MustInvoke[repo.RequestRepo](i)
		return consumer.Handle(cmd.Context(), relayHandler(smtp, requests, log))
	},
}

func init() {
	mailRelayCmd.Flags().StringVar(&relayQueue, "queue", "emonotate.mail", "queue bound to the notification exchange")
	mailRelayCmd.Flags().IntVar(&relayPrefetch, "prefetch", 10, "unacked deliveries per consumer")
}
