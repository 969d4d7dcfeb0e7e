package internal

import (
	"net/http"

	"labdash/internal/controllers"
	"labdash/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/activities", http.HandlerFunc(apiController.GetActivities))
	routers.Get("/activities/stats", http.HandlerFunc(apiController.GetActivityStats))
	routers.Get("/activities/export", http.HandlerFunc(apiController.ExportActivities))
	routers.Delete("/activity", http.HandlerFunc(apiController.DeleteActivity))
	routers.Get("/options", http.HandlerFunc(apiController.GetOptions))
	routers.Get("/summary", http.HandlerFunc(apiController.GetSummary))
	routers.Get("/summary/monthly", http.HandlerFunc(apiController.GetMonthlySummary))
	routers.Get("/summary/daily", http.HandlerFunc(apiController.GetDailySummary))
	return routers
}
