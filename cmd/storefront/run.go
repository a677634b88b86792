package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/fx"

	"github.com/ngmstore/storefront/internal/di"
)

// run drives the storefront until the context is cancelled by a signal or the
// application shuts itself down, and reports the process exit code.
func run(ctx context.Context) int {
	app := fx.New(
		fx.Provide(func() context.Context { return ctx }),
		di.Module(),
	)

	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "storefront failed to start: %v\n", err)
		return 1
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	if err := app.Stop(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "storefront failed to stop cleanly: %v\n", err)
		return 1
	}
	return 0
}
