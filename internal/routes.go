package internal

import (
	"net/http"

	"rently/internal/controllers"
	"rently/internal/providers"
	"rently/internal/structures"
)

func InitRoutes(apiController *controllers.ApiController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/listings", http.HandlerFunc(apiController.CreateListing))
	routers.Get("/listing", http.HandlerFunc(apiController.GetListing))
	routers.Post("/listing/update", http.HandlerFunc(apiController.UpdateListing))
	routers.Post("/listing/status", http.HandlerFunc(apiController.ChangeListingStatus))
	routers.Post("/listing/flag", http.HandlerFunc(apiController.FlagListing))
	routers.Post("/listing/view", http.HandlerFunc(apiController.RecordView))
	routers.Post("/listing/bookmark", http.HandlerFunc(apiController.Bookmark))
	routers.Post("/listing/unbookmark", http.HandlerFunc(apiController.Unbookmark))

	routers.Get("/analytics", http.HandlerFunc(apiController.GetAnalytics))
	routers.Get("/analytics/last24h", http.HandlerFunc(apiController.GetLast24h))
	routers.Get("/analytics/window", http.HandlerFunc(apiController.GetRollingWindow))

	routers.Post("/auth/login", http.HandlerFunc(apiController.Login))
	routers.Get("/auth/session", http.HandlerFunc(apiController.CheckSession))

	routers.Get("/notifications", http.HandlerFunc(apiController.ListNotifications))
	routers.Post("/notifications/read", http.HandlerFunc(apiController.MarkNotificationRead))

	routers.Get("/messages", http.HandlerFunc(apiController.GetMessages))
	routers.Post("/messages/read", http.HandlerFunc(apiController.MarkMessageRead))

	return routers
}
