package upload

import (
	"go.uber.org/fx"

	"github.com/ngmstore/storefront/internal/config"
)

// Module provides the proof image store.
var Module = fx.Provide(func(cfg *config.Config) (Store, error) {
	return NewFileStore(cfg.UploadDir)
})
