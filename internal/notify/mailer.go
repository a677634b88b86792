package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/ngmstore/storefront/internal/domain/model"
)

// Sink delivers customer notifications on order state transitions. Delivery
// is fire-and-forget; the at-most-once guarantee lives in the order store's
// notification markers, not here.
type Sink interface {
	OrderConfirmed(ctx context.Context, email, name string, order *model.Order) error
	OrderDelivered(ctx context.Context, email, name string, order *model.Order) error
}

// sender is the subset of the SendGrid client used by the mailer.
type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// Mailer sends transactional email through SendGrid.
type Mailer struct {
	client sender
	from   *mail.Email
	logger *slog.Logger
}

// NewMailer constructs a SendGrid-backed sink.
func NewMailer(client sender, fromName, fromEmail string, logger *slog.Logger) *Mailer {
	return &Mailer{
		client: client,
		from:   mail.NewEmail(fromName, fromEmail),
		logger: logger,
	}
}

// OrderConfirmed sends the payment confirmation email.
func (m *Mailer) OrderConfirmed(ctx context.Context, email, name string, order *model.Order) error {
	subject := "Order Confirmation"
	html := fmt.Sprintf(
		"<h2>Hello %s,</h2><p>Your payment for order <strong>%d</strong> has been confirmed.</p><p>Total: <strong>%s</strong></p><p>We'll notify you when your order ships.</p>",
		name, order.ID, formatAmount(order.GrandTotal),
	)
	return m.send(ctx, email, name, subject, html)
}

// OrderDelivered sends the delivery notice.
func (m *Mailer) OrderDelivered(ctx context.Context, email, name string, order *model.Order) error {
	subject := "Order Delivered"
	html := fmt.Sprintf(
		"<h2>Hello %s,</h2><p>Your order <strong>%d</strong> has been delivered.</p><p>Thank you for shopping with us!</p>",
		name, order.ID,
	)
	return m.send(ctx, email, name, subject, html)
}

func (m *Mailer) send(ctx context.Context, email, name, subject, html string) error {
	message := mail.NewSingleEmail(m.from, subject, mail.NewEmail(name, email), html, html)
	resp, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("send email: status %d", resp.StatusCode)
	}
	m.logger.Info("notification sent", slog.String("to", email), slog.String("subject", subject))
	return nil
}

func formatAmount(minor int64) string {
	return fmt.Sprintf("%d.%02d", minor/100, minor%100)
}

// LogSink drops notifications into the log. Used when no SendGrid key is
// configured, keeping local development independent of the provider.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a log-only sink.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) OrderConfirmed(_ context.Context, email, _ string, order *model.Order) error {
	s.logger.Info("order confirmation notification", slog.String("to", email), slog.Int64("order", order.ID))
	return nil
}

func (s *LogSink) OrderDelivered(_ context.Context, email, _ string, order *model.Order) error {
	s.logger.Info("order delivery notification", slog.String("to", email), slog.Int64("order", order.ID))
	return nil
}
