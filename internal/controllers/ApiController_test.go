package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labdash/internal/models"
	"labdash/internal/refresh"
	"labdash/internal/services"
	"labdash/internal/testutil"
)

func controllerFixture() (*ApiController, *testutil.MockCoordinator, *testutil.MockCache) {
	store := models.NewActivityStore()
	store.Replace(store.NextGeneration(), []models.ActivityRecord{
		{
			ID:         "1",
			CardUID:    "04:AB:CD:EF",
			RoomID:     "1",
			RoomName:   "LabA",
			CheckInAt:  "2024-01-01T08:00:00",
			CheckOutAt: "2024-01-01T08:30:00",
		},
		{
			ID:        "2",
			CardUID:   "04:11:22:33",
			RoomID:    "2",
			RoomName:  "LabB",
			CheckInAt: "2024-01-02T09:00:00",
		},
	})

	catalog := models.NewCatalog()
	catalog.SetLabs([]models.OptionEntry{{ID: "1", Name: "LabA"}, {ID: "2", Name: "LabB"}})

	coordinator := &testutil.MockCoordinator{}
	cache := testutil.NewMockCache()
	backendMock := &testutil.MockBackend{DashboardData: json.RawMessage(`{"totalAktivitas":42}`)}

	ac := NewApiController(&testutil.MockLogger{}, services.NewActivityService(store, catalog), coordinator, backendMock, cache)
	return ac, coordinator, cache
}

func TestApiController_GetActivities(t *testing.T) {
	ac, _, cache := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()
	ac.GetActivities(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var records []models.ActivityRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	assert.Len(t, records, 2)

	_, cached := cache.Get("activities:")
	assert.True(t, cached)
}

func TestApiController_GetActivitiesFiltered(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/activities?lab=2&status=checkin", nil)
	w := httptest.NewRecorder()
	ac.GetActivities(w, req)

	var records []models.ActivityRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, models.FlexID("2"), records[0].ID)
}

func TestApiController_GetActivitiesCacheHit(t *testing.T) {
	ac, _, cache := controllerFixture()
	cache.Set("activities:", []byte(`[{"id":"cached"}]`))

	req := httptest.NewRequest(http.MethodGet, "/activities", nil)
	w := httptest.NewRecorder()
	ac.GetActivities(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `[{"id":"cached"}]`, w.Body.String())
}

func TestApiController_GetActivityStats(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/activities/stats", nil)
	w := httptest.NewRecorder()
	ac.GetActivityStats(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var summary models.StatsSummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.ActiveCount)
	assert.Equal(t, 30.0, summary.AverageDurationMinutes)
}

func TestApiController_GetOptions(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/options", nil)
	w := httptest.NewRecorder()
	ac.GetOptions(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var snap models.CatalogSnapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Len(t, snap.Labs, 2)
}

func TestApiController_ExportCSVDefault(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/activities/export", nil)
	w := httptest.NewRecorder()
	ac.ExportActivities(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))

	disposition := w.Header().Get("Content-Disposition")
	assert.Contains(t, disposition, "laporan_aktivitas_")
	assert.Contains(t, disposition, ".csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "UID Kartu")
}

func TestApiController_ExportXLSX(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/activities/export?format=xlsx", nil)
	w := httptest.NewRecorder()
	ac.ExportActivities(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", w.Header().Get("Content-Type"))
	assert.NotZero(t, w.Body.Len())
}

func TestApiController_ExportUnknownFormat(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/activities/export?format=pdf", nil)
	w := httptest.NewRecorder()
	ac.ExportActivities(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiController_DeleteActivity(t *testing.T) {
	ac, coordinator, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodDelete, "/activity?id=1", nil)
	w := httptest.NewRecorder()
	ac.DeleteActivity(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	require.Len(t, coordinator.Deleted, 1)
	assert.Equal(t, models.FlexID("1"), coordinator.Deleted[0])
}

func TestApiController_DeleteActivityMissingID(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodDelete, "/activity", nil)
	w := httptest.NewRecorder()
	ac.DeleteActivity(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestApiController_DeleteActivityNotFound(t *testing.T) {
	ac, coordinator, _ := controllerFixture()
	coordinator.DeleteFn = func(_ context.Context, _ models.FlexID) error {
		return refresh.ErrActivityNotFound
	}

	req := httptest.NewRequest(http.MethodDelete, "/activity?id=99", nil)
	w := httptest.NewRecorder()
	ac.DeleteActivity(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApiController_DeleteActivityBackendFailure(t *testing.T) {
	ac, coordinator, _ := controllerFixture()
	coordinator.DeleteFn = func(_ context.Context, _ models.FlexID) error {
		return errors.New("backend down")
	}

	req := httptest.NewRequest(http.MethodDelete, "/activity?id=1", nil)
	w := httptest.NewRecorder()
	ac.DeleteActivity(w, req)

	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestApiController_GetSummaryProxiesBackend(t *testing.T) {
	ac, _, _ := controllerFixture()

	req := httptest.NewRequest(http.MethodGet, "/summary", nil)
	w := httptest.NewRecorder()
	ac.GetSummary(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalAktivitas":42}`, w.Body.String())
}
