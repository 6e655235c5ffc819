package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	mu       sync.Mutex
	failures int
	dials    int
	sent     []*gomail.Message
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dials++
	if f.failures > 0 {
		f.failures--
		return errors.New("421 service not available")
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestMailer(sender *fakeSender) *Mailer {
	return newMailer(func() Sender { return sender }, "noreply@streamcart.test", "StreamCart")
}

func TestMailerSend(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender)

	err := m.Send(context.Background(), []string{"a@example.com"}, "Hello", "<p>hi</p>")

	require.NoError(t, err)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, []string{"a@example.com"}, sender.sent[0].GetHeader("To"))
	assert.Equal(t, []string{"Hello"}, sender.sent[0].GetHeader("Subject"))
}

func TestMailerSend_NoRecipients(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender)

	require.NoError(t, m.Send(context.Background(), nil, "Hello", "<p>hi</p>"))
	assert.Zero(t, sender.dials)
}

func TestMailerSend_RetriesOnce(t *testing.T) {
	sender := &fakeSender{failures: 1}
	m := newTestMailer(sender)

	err := m.Send(context.Background(), []string{"a@example.com"}, "Hello", "<p>hi</p>")

	require.NoError(t, err)
	assert.Equal(t, 2, sender.dials)
	assert.Len(t, sender.sent, 1)
}

func TestMailerSend_FailsAfterRetry(t *testing.T) {
	sender := &fakeSender{failures: 2}
	m := newTestMailer(sender)

	err := m.Send(context.Background(), []string{"a@example.com"}, "Hello", "<p>hi</p>")

	assert.Error(t, err)
	assert.Equal(t, 2, sender.dials)
}

func TestMailerSend_BreakerOpens(t *testing.T) {
	sender := &fakeSender{failures: 100}
	m := newTestMailer(sender)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.Error(t, m.Send(ctx, []string{"a@example.com"}, "Hello", "x"))
	}
	dials := sender.dials

	err := m.Send(ctx, []string{"a@example.com"}, "Hello", "x")

	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, dials, sender.dials)
}

func TestMailerSendBulk_Chunks(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender)
	recipients := make([]string, 120)
	for i := range recipients {
		recipients[i] = "user@example.com"
	}

	sent, err := m.SendBulk(context.Background(), recipients, "News", "<p>news</p>")

	require.NoError(t, err)
	assert.Equal(t, 120, sent)
	require.Len(t, sender.sent, 3)
	assert.Len(t, sender.sent[0].GetHeader("Bcc"), bulkChunk)
	assert.Len(t, sender.sent[2].GetHeader("Bcc"), 20)
}

func TestMailerSend_CanceledContext(t *testing.T) {
	sender := &fakeSender{}
	m := newTestMailer(sender)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := m.Send(ctx, []string{"a@example.com"}, "Hello", "x")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, sender.dials)
}

func TestRenderOTPMail(t *testing.T) {
	html, err := RenderOTPMail(OTPMail{Heading: "Verify your email", Code: "123456", Minutes: 5, SiteName: "StreamCart"})

	require.NoError(t, err)
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "StreamCart")
}
