//go:build wireinject
// +build wireinject

package di

import (
	"KabuScan/pkg/config"
	"KabuScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Ambient
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideBarCache,
		ProvideClickHouseClient,
		ProvideBarSource,
		ProvideLimiter,
		ProvidePublisher,

		// Use cases
		ProvideScanner,
		ProvideMarketSummarizer,

		// HTTP
		ProvideScanHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
