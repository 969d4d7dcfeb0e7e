package hub

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labdash/internal/structures"
	"labdash/internal/testutil"
)

var upgrader = websocket.Upgrader{}

type hubServer struct {
	srv *httptest.Server

	mu     sync.Mutex
	tokens []string
	conns  []*websocket.Conn
}

func newHubServer(t *testing.T) *hubServer {
	hs := &hubServer{}
	hs.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		hs.mu.Lock()
		hs.tokens = append(hs.tokens, r.URL.Query().Get("access_token"))
		hs.conns = append(hs.conns, conn)
		hs.mu.Unlock()
	}))
	t.Cleanup(hs.close)
	return hs
}

func (hs *hubServer) url() string {
	return "ws" + strings.TrimPrefix(hs.srv.URL, "http")
}

func (hs *hubServer) send(t *testing.T, payload string) {
	require.Eventually(t, func() bool {
		hs.mu.Lock()
		defer hs.mu.Unlock()
		return len(hs.conns) > 0
	}, 2*time.Second, 5*time.Millisecond)

	hs.mu.Lock()
	conn := hs.conns[len(hs.conns)-1]
	hs.mu.Unlock()
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(payload)))
}

func (hs *hubServer) lastToken() string {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	if len(hs.tokens) == 0 {
		return ""
	}
	return hs.tokens[len(hs.tokens)-1]
}

func (hs *hubServer) close() {
	hs.mu.Lock()
	for _, c := range hs.conns {
		_ = c.Close()
	}
	hs.conns = nil
	hs.mu.Unlock()
	hs.srv.Close()
}

func hubConfig(url string) *structures.Config {
	return &structures.Config{
		Hub: structures.HubConfig{Enabled: true, URL: url},
	}
}

type eventSink struct {
	mu     sync.Mutex
	events []string
}

func (s *eventSink) record(event string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

func (s *eventSink) snapshot() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.events...)
}

func TestHubClient_ConnectsWithToken(t *testing.T) {
	hs := newHubServer(t)

	h := NewHubClient(hubConfig(hs.url()), &testutil.MockLogger{}, &testutil.MockMetrics{})
	defer h.Close()

	h.Start("jwt-token", func(string) {})

	require.Eventually(t, h.Connected, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, "jwt-token", hs.lastToken())
}

func TestHubClient_DispatchesEvents(t *testing.T) {
	hs := newHubServer(t)
	metrics := &testutil.MockMetrics{}

	h := NewHubClient(hubConfig(hs.url()), &testutil.MockLogger{}, metrics)
	defer h.Close()

	sink := &eventSink{}
	h.Start("t", sink.record)
	require.Eventually(t, h.Connected, 2*time.Second, 5*time.Millisecond)

	hs.send(t, `{"event":"ReceiveCheckIn","data":{"id":1}}`)
	hs.send(t, `{"event":"ReceiveCheckOut"}`)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 2
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{EventCheckIn, EventCheckOut}, sink.snapshot())
}

func TestHubClient_SkipsMalformedFrames(t *testing.T) {
	hs := newHubServer(t)

	h := NewHubClient(hubConfig(hs.url()), &testutil.MockLogger{}, &testutil.MockMetrics{})
	defer h.Close()

	sink := &eventSink{}
	h.Start("t", sink.record)
	require.Eventually(t, h.Connected, 2*time.Second, 5*time.Millisecond)

	hs.send(t, `not json`)
	hs.send(t, `{"data":{"no":"event"}}`)
	hs.send(t, `{"event":"ReceiveCheckIn"}`)

	require.Eventually(t, func() bool {
		return len(sink.snapshot()) == 1
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{EventCheckIn}, sink.snapshot())
}

func TestHubClient_CloseStopsClient(t *testing.T) {
	hs := newHubServer(t)

	h := NewHubClient(hubConfig(hs.url()), &testutil.MockLogger{}, &testutil.MockMetrics{})
	h.Start("t", func(string) {})
	require.Eventually(t, h.Connected, 2*time.Second, 5*time.Millisecond)

	h.Close()
	assert.Eventually(t, func() bool { return !h.Connected() }, 2*time.Second, 5*time.Millisecond)
}

func TestHubClient_DisabledIsNoop(t *testing.T) {
	conf := &structures.Config{Hub: structures.HubConfig{Enabled: false}}
	h := NewHubClient(conf, &testutil.MockLogger{}, &testutil.MockMetrics{})

	h.Start("t", func(string) {})
	assert.False(t, h.Connected())
	h.Close()
}
