package mailer

import (
	"context"
)

type jsonPublisher interface {
	PublishJSON(ctx context.Context, exchangeName string, routingKey string, body any) error
}

// QueueMailer hands messages to the notification exchange; a relay
// (`manage mailrelay`) delivers them over SMTP.
type QueueMailer struct {
	pub        jsonPublisher
	exchange   string
	routingKey string
}

func NewQueueMailer(pub jsonPublisher, exchange, routingKey string) *QueueMailer {
	return &QueueMailer{pub: pub, exchange: exchange, routingKey: routingKey}
}

func (m *QueueMailer) Send(ctx context.Context, msg Message) error {
	return m.pub.PublishJSON(ctx, m.exchange, m.routingKey, msg)
}
