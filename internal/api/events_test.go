package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchboard/internal/slots"
)

func TestHubBroadcastsToAllSubscribers(t *testing.T) {
	ts := newTestServer(t)
	httpSrv := httptest.NewServer(ts.srv.Handler())
	defer httpSrv.Close()

	wsURL := "ws" + strings.TrimPrefix(httpSrv.URL, "http") + "/api/events"

	conns := make([]*websocket.Conn, 2)
	for i := range conns {
		conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.NoError(t, err)
		defer conn.Close()
		conns[i] = conn
	}
	require.Eventually(t, func() bool {
		return ts.srv.hub.ClientCount() == 2
	}, time.Second, 10*time.Millisecond)

	ts.srv.hub.PluginEvent(slots.Event{Type: slots.EventInstalled, Viewer: "mira", PluginID: "timeline"})

	for _, conn := range conns {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var event slots.Event
		require.NoError(t, conn.ReadJSON(&event))
		assert.Equal(t, slots.EventInstalled, event.Type)
	}
}

func TestHubDropsSlowSubscriber(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hub := NewHub(logger)

	// A client with no draining goroutine fills its queue and gets dropped.
	client := &eventClient{send: make(chan slots.Event, 1)}
	require.True(t, hub.add(client))

	hub.PluginEvent(slots.Event{Type: slots.EventInstalled})
	assert.Equal(t, 1, hub.ClientCount())
	hub.PluginEvent(slots.Event{Type: slots.EventUninstalled})
	assert.Equal(t, 0, hub.ClientCount())
}

func TestHubCloseRejectsNewClients(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	hub := NewHub(logger)

	client := &eventClient{send: make(chan slots.Event, 1)}
	require.True(t, hub.add(client))

	hub.Close()
	assert.Equal(t, 0, hub.ClientCount())
	assert.False(t, hub.add(&eventClient{send: make(chan slots.Event, 1)}))

	// Emitting after close is a no-op.
	hub.PluginEvent(slots.Event{Type: slots.EventInstalled})
}

func TestEventsEndpointRejectsPlainHTTP(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
