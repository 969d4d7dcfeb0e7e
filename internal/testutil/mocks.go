package testutil

import (
	"context"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"labdash/internal/models"
	"labdash/internal/providers"
)

// MockLogger implements providers.Logger and records calls.
type MockLogger struct {
	mu   sync.Mutex
	Logs []LogEntry
}

type LogEntry struct {
	Level  string
	Type   providers.TypeEnum
	Format string
	Args   []interface{}
}

func (m *MockLogger) record(level string, t providers.TypeEnum, format string, args ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Logs = append(m.Logs, LogEntry{Level: level, Type: t, Format: format, Args: args})
}

func (m *MockLogger) Errorf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("error", t, format, args...)
}
func (m *MockLogger) Warnf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("warn", t, format, args...)
}
func (m *MockLogger) Debugf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("debug", t, format, args...)
}
func (m *MockLogger) Infof(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("info", t, format, args...)
}
func (m *MockLogger) Fatalf(t providers.TypeEnum, format string, args ...interface{}) {
	m.record("fatal", t, format, args...)
}
func (m *MockLogger) Close() {}

// MockBackend implements backend.ClientInterface with injectable
// behavior per endpoint.
type MockBackend struct {
	mu sync.Mutex

	LoginErr      error
	TokenValue    string
	ActivitiesFn  func(ctx context.Context) ([]models.ActivityRecord, error)
	LabsFn        func(ctx context.Context) ([]models.OptionEntry, error)
	ClassesFn     func(ctx context.Context) ([]models.OptionEntry, error)
	UsersFn       func(ctx context.Context) ([]models.OptionEntry, error)
	DeleteErr     error
	DeletedIDs    []models.FlexID
	FetchCalls    int
	DashboardData json.RawMessage
}

func (m *MockBackend) Login(_ context.Context) error { return m.LoginErr }
func (m *MockBackend) Token() string                 { return m.TokenValue }

func (m *MockBackend) FetchActivities(ctx context.Context) ([]models.ActivityRecord, error) {
	m.mu.Lock()
	m.FetchCalls++
	m.mu.Unlock()
	if m.ActivitiesFn != nil {
		return m.ActivitiesFn(ctx)
	}
	return nil, nil
}

func (m *MockBackend) Fetches() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FetchCalls
}

func (m *MockBackend) FetchLabs(ctx context.Context) ([]models.OptionEntry, error) {
	if m.LabsFn != nil {
		return m.LabsFn(ctx)
	}
	return nil, nil
}

func (m *MockBackend) FetchClasses(ctx context.Context) ([]models.OptionEntry, error) {
	if m.ClassesFn != nil {
		return m.ClassesFn(ctx)
	}
	return nil, nil
}

func (m *MockBackend) FetchUsers(ctx context.Context) ([]models.OptionEntry, error) {
	if m.UsersFn != nil {
		return m.UsersFn(ctx)
	}
	return nil, nil
}

func (m *MockBackend) DeleteActivity(_ context.Context, id models.FlexID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeletedIDs = append(m.DeletedIDs, id)
	return nil
}

func (m *MockBackend) DashboardStats(_ context.Context) (json.RawMessage, error) {
	return m.DashboardData, nil
}

func (m *MockBackend) MonthlyStats(_ context.Context) (json.RawMessage, error) {
	return m.DashboardData, nil
}

func (m *MockBackend) Last30DaysStats(_ context.Context) (json.RawMessage, error) {
	return m.DashboardData, nil
}

// MockHub implements hub.HubClientInterface and exposes the event
// callback so tests can push events synchronously.
type MockHub struct {
	mu        sync.Mutex
	OnEvent   func(event string)
	Started   bool
	Token     string
	CloseCall int
}

func (m *MockHub) Start(token string, onEvent func(event string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = true
	m.Token = token
	m.OnEvent = onEvent
}

func (m *MockHub) Connected() bool { return m.Started }

func (m *MockHub) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCall++
}

func (m *MockHub) Push(event string) {
	m.mu.Lock()
	cb := m.OnEvent
	m.mu.Unlock()
	if cb != nil {
		cb(event)
	}
}

// MockCoordinator implements interfaces.CoordinatorInterface with
// injectable delete behavior.
type MockCoordinator struct {
	mu           sync.Mutex
	DeleteFn     func(ctx context.Context, id models.FlexID) error
	Deleted      []models.FlexID
	RefreshCalls int
}

func (m *MockCoordinator) Init() error { return nil }
func (m *MockCoordinator) Stop()       {}

func (m *MockCoordinator) Refresh(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RefreshCalls++
	return nil
}

func (m *MockCoordinator) DeleteActivity(ctx context.Context, id models.FlexID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, id)
	return nil
}

// MockCache implements providers.CacheProviderInterface.
type MockCache struct {
	mu   sync.Mutex
	Data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{Data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.Data[key]
	return val, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Data[key] = value
}

// MockMetrics implements providers.MetricsProviderInterface and counts
// the calls that matter to coordinator tests.
type MockMetrics struct {
	mu         sync.Mutex
	StaleDrops int
	Refreshes  map[string]int
	HubEvents  map[string]int
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int)                 {}
func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (m *MockMetrics) IncCacheHits()                                    {}
func (m *MockMetrics) IncCacheMisses()                                  {}
func (m *MockMetrics) ObserveBackendDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncHubEvents(event string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.HubEvents == nil {
		m.HubEvents = make(map[string]int)
	}
	m.HubEvents[event]++
}

func (m *MockMetrics) IncRefreshes(trigger string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Refreshes == nil {
		m.Refreshes = make(map[string]int)
	}
	m.Refreshes[trigger]++
}

func (m *MockMetrics) IncStaleDrops() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StaleDrops++
}
