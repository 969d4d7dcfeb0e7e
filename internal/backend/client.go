package backend

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"labdash/internal/models"
	"labdash/internal/providers"
	"labdash/internal/structures"
)

// ClientInterface is the REST surface of the remote access-control
// backend this service mirrors. It owns all persistence and business
// rules; this client only reads and relays.
type ClientInterface interface {
	Login(ctx context.Context) error
	Token() string
	FetchActivities(ctx context.Context) ([]models.ActivityRecord, error)
	FetchLabs(ctx context.Context) ([]models.OptionEntry, error)
	FetchClasses(ctx context.Context) ([]models.OptionEntry, error)
	FetchUsers(ctx context.Context) ([]models.OptionEntry, error)
	DeleteActivity(ctx context.Context, id models.FlexID) error
	DashboardStats(ctx context.Context) (json.RawMessage, error)
	MonthlyStats(ctx context.Context) (json.RawMessage, error)
	Last30DaysStats(ctx context.Context) (json.RawMessage, error)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type loginData struct {
	Token string `json:"token"`
}

type userEntry struct {
	ID       models.FlexID `json:"id"`
	Username string        `json:"username"`
}

type Client struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
	http    *http.Client

	mu    sync.RWMutex
	token string
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	return &Client{
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		http: &http.Client{
			Timeout: conf.Backend.Timeout,
		},
		token: conf.Backend.Token,
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Login exchanges the configured credentials for a bearer token. A
// token supplied directly in the config short-circuits the call.
func (c *Client) Login(ctx context.Context) error {
	if c.conf.Backend.Token != "" {
		return nil
	}

	body, err := json.Marshal(map[string]string{
		"username": c.conf.Backend.Username,
		"password": c.conf.Backend.Password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.conf.Backend.BaseURL+"/api/Auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	env, err := c.do(req, "/api/Auth/login")
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("login rejected: %s", env.Message)
	}

	var data loginData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return fmt.Errorf("login response: %w", err)
	}
	if data.Token == "" {
		return fmt.Errorf("login response carried no token")
	}

	c.setToken(data.Token)
	c.logger.Infof(providers.TypeBackend, "Authenticated against %s", c.conf.Backend.BaseURL)
	return nil
}

// FetchActivities returns the full activity list, newest check-in
// first. Records whose check-in does not parse sort last.
func (c *Client) FetchActivities(ctx context.Context) ([]models.ActivityRecord, error) {
	var records []models.ActivityRecord
	if err := c.getData(ctx, "/api/Aktivitas", &records); err != nil {
		return nil, err
	}
	sortActivities(records)
	return records, nil
}

func (c *Client) FetchLabs(ctx context.Context) ([]models.OptionEntry, error) {
	var entries []models.OptionEntry
	if err := c.getData(ctx, "/api/Ruangan", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) FetchClasses(ctx context.Context) ([]models.OptionEntry, error) {
	var entries []models.OptionEntry
	if err := c.getData(ctx, "/api/Kelas", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

func (c *Client) FetchUsers(ctx context.Context) ([]models.OptionEntry, error) {
	var users []userEntry
	if err := c.getData(ctx, "/api/User", &users); err != nil {
		return nil, err
	}
	entries := make([]models.OptionEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, models.OptionEntry{ID: u.ID, Name: u.Username})
	}
	return entries, nil
}

func (c *Client) DeleteActivity(ctx context.Context, id models.FlexID) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.conf.Backend.BaseURL+"/api/Aktivitas/"+id.String(), nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveBackendDuration("/api/Aktivitas/{id}", time.Since(start))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delete activity %s: backend returned %s", id, resp.Status)
	}
	return nil
}

func (c *Client) DashboardStats(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/api/Dashboard/stats")
}

func (c *Client) MonthlyStats(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/api/Dashboard/monthly-stats")
}

func (c *Client) Last30DaysStats(ctx context.Context) (json.RawMessage, error) {
	return c.getRaw(ctx, "/api/Dashboard/last-30-days-stats")
}

func (c *Client) authorize(req *http.Request) {
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func (c *Client) do(req *http.Request, endpoint string) (*envelope, error) {
	start := time.Now()
	resp, err := c.http.Do(req)
	c.metrics.ObserveBackendDuration(endpoint, time.Since(start))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: backend returned %s", endpoint, resp.Status)
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	return &env, nil
}

// getRaw fetches an endpoint and returns its data payload untouched.
// A backend-reported failure (success=false) degrades to empty data
// with a logged diagnostic; only transport errors propagate.
func (c *Client) getRaw(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.conf.Backend.BaseURL+path, nil)
	if err != nil {
		return nil, err
	}
	c.authorize(req)

	env, err := c.do(req, path)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		c.logger.Warnf(providers.TypeBackend, "Backend declined %s: %s", path, env.Message)
		return nil, nil
	}
	return env.Data, nil
}

func (c *Client) getData(ctx context.Context, path string, out interface{}) error {
	data, err := c.getRaw(ctx, path)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s: decode data: %w", path, err)
	}
	return nil
}

func sortActivities(records []models.ActivityRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		ti, iOK := records[i].CheckInTime()
		tj, jOK := records[j].CheckInTime()
		if iOK != jOK {
			return iOK
		}
		return ti.After(tj)
	})
}
