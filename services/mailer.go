package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/streamcart/streamcart_backend/config"
	"github.com/streamcart/streamcart_backend/logger"
	"github.com/streamcart/streamcart_backend/metrics"
	"gopkg.in/gomail.v2"
)

// bulkChunk bounds the Bcc list of a single bulk message.
const bulkChunk = 50

// Sender is the SMTP side of a gomail dialer.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends HTML mail over SMTP. A failed send is retried once on a fresh
// connection; repeated failures open a circuit breaker so requests fail fast
// while the relay is down.
type Mailer struct {
	dial     func() Sender
	from     string
	fromName string
	breaker  *gobreaker.CircuitBreaker[struct{}]
}

func NewMailer(cfg config.SMTPConfig) *Mailer {
	return newMailer(func() Sender {
		return gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}, senderAddress(cfg), cfg.FromName)
}

func newMailer(dial func() Sender, from, fromName string) *Mailer {
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("mail circuit breaker state changed")
		},
	}
	return &Mailer{
		dial:     dial,
		from:     from,
		fromName: fromName,
		breaker:  gobreaker.NewCircuitBreaker[struct{}](settings),
	}
}

func senderAddress(cfg config.SMTPConfig) string {
	if cfg.From != "" {
		return cfg.From
	}
	return cfg.User
}

// Send delivers one HTML message to the given recipients.
func (m *Mailer) Send(ctx context.Context, to []string, subject, html string) error {
	if len(to) == 0 {
		return nil
	}
	msg := m.newMessage(subject, html)
	msg.SetHeader("To", to...)
	return m.deliver(ctx, msg)
}

// SendBulk sends the same message to many recipients in Bcc batches and
// returns how many recipients were handed to the relay.
func (m *Mailer) SendBulk(ctx context.Context, recipients []string, subject, html string) (int, error) {
	sent := 0
	for start := 0; start < len(recipients); start += bulkChunk {
		end := start + bulkChunk
		if end > len(recipients) {
			end = len(recipients)
		}
		msg := m.newMessage(subject, html)
		msg.SetHeader("To", m.from)
		msg.SetHeader("Bcc", recipients[start:end]...)
		if err := m.deliver(ctx, msg); err != nil {
			return sent, err
		}
		sent += end - start
	}
	return sent, nil
}

func (m *Mailer) newMessage(subject, html string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", html)
	return msg
}

func (m *Mailer) deliver(ctx context.Context, msg *gomail.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := m.breaker.Execute(func() (struct{}, error) {
		err := m.dial().DialAndSend(msg)
		if err == nil {
			return struct{}{}, nil
		}
		logger.Warn().Err(err).Msg("smtp send failed, retrying on a fresh connection")
		return struct{}{}, m.dial().DialAndSend(msg)
	})
	if err != nil {
		metrics.MailDeliveries.WithLabelValues("failed").Inc()
		return fmt.Errorf("send mail: %w", err)
	}
	metrics.MailDeliveries.WithLabelValues("sent").Inc()
	return nil
}
