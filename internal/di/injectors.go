//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"rently/internal"
	"rently/internal/cache"
	"rently/internal/controllers"
	"rently/internal/jobs"
	"rently/internal/providers"
	"rently/internal/services"
	"rently/internal/store"
	"rently/internal/structures"
	"rently/internal/watch"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMongoProvider,
		providers.NewDatabaseProvider,
		providers.NewIdentityProvider,

		cache.NewZstdCompressor,
		cache.NewFileMirror,
		cache.NewCache,
		cache.NewMessageCache,

		store.NewListingStore,
		store.NewAnalyticsStore,
		store.NewNotificationStore,
		store.NewMessageStore,

		watch.NewBus,
		services.NewAnalyticsService,
		services.NewNotificationService,
		services.NewModerationService,
		wire.Bind(new(watch.Handler), new(*services.ModerationService)),
		services.NewListingService,
		services.NewAuthService,
		services.NewChatService,
		watch.NewWatcher,

		jobs.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
