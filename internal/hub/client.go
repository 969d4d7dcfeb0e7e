package hub

import (
	"net/url"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"labdash/internal/providers"
	"labdash/internal/structures"
)

// Event names pushed by the backend hub. Only the check-in/check-out
// pair drives a refresh; the rest are acknowledged and dropped.
const (
	EventCheckIn           = "ReceiveCheckIn"
	EventCheckOut          = "ReceiveCheckOut"
	EventDashboardStats    = "ReceiveDashboardStats"
	EventUpdateDashboard   = "UpdateDashboard"
	EventUserStatusChanged = "UserStatusChanged"
)

// retrySchedule escalates before automatic retry gives up. Matches the
// backoff the backend operators expect from dashboard clients.
var retrySchedule = []time.Duration{0, 2 * time.Second, 5 * time.Second, 10 * time.Second, 20 * time.Second}

type message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type HubClientInterface interface {
	Start(token string, onEvent func(event string))
	Connected() bool
	Close()
}

type HubClient struct {
	conf    *structures.Config
	logger  providers.Logger
	metrics providers.MetricsProviderInterface

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	done      chan struct{}
	closeOnce sync.Once
}

func NewHubClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) HubClientInterface {
	if !conf.Hub.Enabled {
		logger.Infof(providers.TypeHub, "Hub disabled, relying on periodic refresh only")
		return &noopHub{}
	}
	return &HubClient{
		conf:    conf,
		logger:  logger,
		metrics: metrics,
		done:    make(chan struct{}),
	}
}

// Start connects in the background after the configured delay, so the
// connection handshake never contends with the initial data fetch.
func (h *HubClient) Start(token string, onEvent func(event string)) {
	go h.run(token, onEvent)
}

func (h *HubClient) Connected() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.connected
}

func (h *HubClient) Close() {
	h.closeOnce.Do(func() {
		close(h.done)
	})
	h.mu.Lock()
	if h.conn != nil {
		_ = h.conn.Close()
	}
	h.connected = false
	h.mu.Unlock()
}

func (h *HubClient) run(token string, onEvent func(event string)) {
	if h.sleep(h.conf.Hub.ConnectDelay) {
		return
	}

	for {
		conn, ok := h.connectWithRetry(token)
		if !ok {
			return
		}
		h.readLoop(conn, onEvent)
		if h.isClosed() {
			return
		}
		h.logger.Warnf(providers.TypeHub, "Hub connection lost, reconnecting")
	}
}

// connectWithRetry walks the retry schedule once. It reports ok=false
// when the schedule is exhausted or the client was closed.
func (h *HubClient) connectWithRetry(token string) (*websocket.Conn, bool) {
	for _, delay := range retrySchedule {
		if h.sleep(delay) {
			return nil, false
		}
		conn, err := h.dial(token)
		if err != nil {
			h.logger.Warnf(providers.TypeHub, "Hub connect failed: %s", err)
			continue
		}

		h.mu.Lock()
		h.conn = conn
		h.connected = true
		h.mu.Unlock()

		h.logger.Infof(providers.TypeHub, "Hub connected to %s", h.conf.Hub.URL)
		return conn, true
	}
	h.logger.Errorf(providers.TypeHub, "Hub unreachable after %d attempts, giving up automatic retry", len(retrySchedule))
	return nil, false
}

func (h *HubClient) dial(token string) (*websocket.Conn, error) {
	endpoint, err := url.Parse(h.conf.Hub.URL)
	if err != nil {
		return nil, err
	}
	// The hub authenticates at connect time; the bearer token travels
	// as a query credential because websocket handshakes cannot carry
	// custom headers from every client the backend supports.
	q := endpoint.Query()
	q.Set("access_token", token)
	endpoint.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.Dial(endpoint.String(), nil)
	return conn, err
}

func (h *HubClient) readLoop(conn *websocket.Conn, onEvent func(event string)) {
	defer func() {
		h.mu.Lock()
		h.connected = false
		h.mu.Unlock()
		_ = conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg message
		if err := json.Unmarshal(payload, &msg); err != nil {
			h.logger.Debugf(providers.TypeHub, "Discarding unparseable hub frame: %s", err)
			continue
		}
		if msg.Event == "" {
			continue
		}

		h.metrics.IncHubEvents(msg.Event)
		onEvent(msg.Event)
	}
}

// sleep waits for d or until Close; returns true when closed.
func (h *HubClient) sleep(d time.Duration) bool {
	if d <= 0 {
		select {
		case <-h.done:
			return true
		default:
			return false
		}
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-h.done:
		return true
	case <-timer.C:
		return false
	}
}

func (h *HubClient) isClosed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

type noopHub struct{}

func (n *noopHub) Start(_ string, _ func(event string)) {}
func (n *noopHub) Connected() bool                      { return false }
func (n *noopHub) Close()                               {}
