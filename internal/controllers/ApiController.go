package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"labdash/internal/backend"
	"labdash/internal/export"
	"labdash/internal/models"
	"labdash/internal/providers"
	"labdash/internal/refresh"
	"labdash/internal/refresh/interfaces"
	"labdash/internal/services"
)

type ApiController struct {
	logger      providers.Logger
	service     services.ActivityServiceInterface
	coordinator interfaces.CoordinatorInterface
	backend     backend.ClientInterface
	cache       providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, service services.ActivityServiceInterface, coordinator interfaces.CoordinatorInterface, client backend.ClientInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger:      logger,
		service:     service,
		coordinator: coordinator,
		backend:     client,
		cache:       cache,
	}
}

func criteriaFromRequest(r *http.Request) models.FilterCriteria {
	q := r.URL.Query()
	return models.FilterCriteria{
		LabID:     q.Get("lab"),
		ClassID:   q.Get("class"),
		UserID:    q.Get("user"),
		Status:    strings.ToUpper(q.Get("status")),
		StartDate: q.Get("start"),
		EndDate:   q.Get("end"),
	}
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetActivities(w http.ResponseWriter, r *http.Request) {
	criteria := criteriaFromRequest(r)
	ac.serveFromCacheOrCompute(w, "activities:"+r.URL.RawQuery, func() (any, error) {
		return ac.service.Activities(criteria), nil
	})
}

func (ac *ApiController) GetActivityStats(w http.ResponseWriter, r *http.Request) {
	criteria := criteriaFromRequest(r)
	ac.serveFromCacheOrCompute(w, "stats:"+r.URL.RawQuery, func() (any, error) {
		return ac.service.Stats(criteria), nil
	})
}

func (ac *ApiController) GetOptions(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "options", func() (any, error) {
		return ac.service.Options(), nil
	})
}

// ExportActivities streams the currently filtered view as a report.
// Never cached: the response carries a dated filename and the cost is
// dominated by the download anyway.
func (ac *ApiController) ExportActivities(w http.ResponseWriter, r *http.Request) {
	criteria := criteriaFromRequest(r)
	records := ac.service.Activities(criteria)

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	filename := export.Filename(format, time.Now())
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)

	var err error
	switch format {
	case "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		err = export.WriteCSV(w, records)
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		err = export.WriteXLSX(w, records)
	default:
		http.Error(w, "Bad Request: unknown format", http.StatusBadRequest)
		return
	}
	if err != nil {
		// Headers are already out; all that is left is the diagnostic.
		ac.logger.Errorf(providers.TypeHTTP, "Export (%s) failed mid-stream: %s", format, err)
	}
}

func (ac *ApiController) DeleteActivity(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Bad Request: missing id", http.StatusBadRequest)
		return
	}

	err := ac.coordinator.DeleteActivity(r.Context(), models.FlexID(id))
	switch {
	case errors.Is(err, refresh.ErrActivityNotFound):
		http.Error(w, "Not Found", http.StatusNotFound)
	case err != nil:
		http.Error(w, "Bad Gateway", http.StatusBadGateway)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (ac *ApiController) GetSummary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "summary", func() (any, error) {
		return ac.backend.DashboardStats(r.Context())
	})
}

func (ac *ApiController) GetMonthlySummary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "summary:monthly", func() (any, error) {
		return ac.backend.MonthlyStats(r.Context())
	})
}

func (ac *ApiController) GetDailySummary(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "summary:daily", func() (any, error) {
		return ac.backend.Last30DaysStats(r.Context())
	})
}
