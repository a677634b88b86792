package notify

import (
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"go.uber.org/fx"

	"github.com/ngmstore/storefront/internal/config"
)

// Module provides the notification sink to the fx graph.
var Module = fx.Provide(newSink)

type sinkParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newSink(p sinkParams) Sink {
	if p.Config.SendGridAPIKey == "" {
		p.Logger.Warn("sendgrid api key not configured, notifications go to the log only")
		return NewLogSink(p.Logger)
	}
	client := sendgrid.NewSendClient(p.Config.SendGridAPIKey)
	return NewMailer(client, p.Config.EmailFromName, p.Config.EmailFrom, p.Logger)
}
