package di

import (
	"go.uber.org/fx"

	"github.com/ngmstore/storefront/internal/adapter/paystack"
	"github.com/ngmstore/storefront/internal/app"
	"github.com/ngmstore/storefront/internal/config"
	"github.com/ngmstore/storefront/internal/logger"
	"github.com/ngmstore/storefront/internal/notify"
	"github.com/ngmstore/storefront/internal/pkg/auth"
	"github.com/ngmstore/storefront/internal/server/http/handlers"
	"github.com/ngmstore/storefront/internal/server/http/router"
	"github.com/ngmstore/storefront/internal/storage/postgres"
	"github.com/ngmstore/storefront/internal/upload"
	"github.com/ngmstore/storefront/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		paystack.Module,
		notify.Module,
		upload.Module,
		usecase.Module,
		fx.Provide(func(f *app.StoreFacade) handlers.StoreFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
