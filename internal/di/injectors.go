//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"labdash/internal"
	"labdash/internal/backend"
	"labdash/internal/controllers"
	"labdash/internal/hub"
	"labdash/internal/models"
	"labdash/internal/providers"
	"labdash/internal/refresh"
	"labdash/internal/services"
	"labdash/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		models.NewActivityStore,
		models.NewCatalog,
		backend.NewClient,
		hub.NewHubClient,
		refresh.NewCoordinator,
		services.NewActivityService,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
