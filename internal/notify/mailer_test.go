package notify

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ngmstore/storefront/internal/domain/model"
)

type senderStub struct {
	sent []*mail.SGMailV3
	resp *rest.Response
	err  error
}

func (s *senderStub) SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error) {
	s.sent = append(s.sent, email)
	if s.err != nil {
		return nil, s.err
	}
	if s.resp != nil {
		return s.resp, nil
	}
	return &rest.Response{StatusCode: 202}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func TestMailerOrderConfirmed(t *testing.T) {
	stub := &senderStub{}
	mailer := NewMailer(stub, "NGM Store", "no-reply@ngmstore.example", testLogger())

	order := &model.Order{ID: 42, GrandTotal: 123456}
	err := mailer.OrderConfirmed(context.Background(), "ada@example.com", "Ada", order)
	require.NoError(t, err)
	require.Len(t, stub.sent, 1)

	msg := stub.sent[0]
	assert.Equal(t, "Order Confirmation", msg.Subject)
	assert.Equal(t, "no-reply@ngmstore.example", msg.From.Address)
	require.NotEmpty(t, msg.Personalizations)
	require.NotEmpty(t, msg.Personalizations[0].To)
	assert.Equal(t, "ada@example.com", msg.Personalizations[0].To[0].Address)
	require.NotEmpty(t, msg.Content)
	assert.Contains(t, msg.Content[0].Value, "1234.56")
}

func TestMailerOrderDelivered(t *testing.T) {
	stub := &senderStub{}
	mailer := NewMailer(stub, "NGM Store", "no-reply@ngmstore.example", testLogger())

	err := mailer.OrderDelivered(context.Background(), "ada@example.com", "Ada", &model.Order{ID: 7})
	require.NoError(t, err)
	require.Len(t, stub.sent, 1)
	assert.Equal(t, "Order Delivered", stub.sent[0].Subject)
}

func TestMailerProviderErrors(t *testing.T) {
	mailer := NewMailer(&senderStub{err: errors.New("dial timeout")}, "NGM Store", "no-reply@ngmstore.example", testLogger())
	err := mailer.OrderConfirmed(context.Background(), "a@b.com", "A", &model.Order{ID: 1})
	assert.Error(t, err)

	mailer = NewMailer(&senderStub{resp: &rest.Response{StatusCode: 401}}, "NGM Store", "no-reply@ngmstore.example", testLogger())
	err = mailer.OrderDelivered(context.Background(), "a@b.com", "A", &model.Order{ID: 1})
	assert.ErrorContains(t, err, "status 401")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "10.00", formatAmount(1000))
	assert.Equal(t, "1234.56", formatAmount(123456))
}

func TestLogSinkNeverFails(t *testing.T) {
	sink := NewLogSink(testLogger())
	assert.NoError(t, sink.OrderConfirmed(context.Background(), "a@b.com", "A", &model.Order{ID: 1}))
	assert.NoError(t, sink.OrderDelivered(context.Background(), "a@b.com", "A", &model.Order{ID: 1}))
}
