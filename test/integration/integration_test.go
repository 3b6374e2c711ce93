// Package integration exercises the full stack over HTTP: built-in plugins,
// in-memory stores, sessions, and the API server.
package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"launchboard/internal/api"
	"launchboard/internal/clock"
	"launchboard/internal/entity"
	"launchboard/internal/plugins"
	"launchboard/internal/session"
	"launchboard/internal/slots"
	"launchboard/internal/store"
	"launchboard/pkg/plugin"
)

// harness is the full platform behind a live test HTTP server.
type harness struct {
	t        *testing.T
	server   *httptest.Server
	sessions *session.Manager
}

func setupTest(t *testing.T) (*harness, func()) {
	t.Helper()
	logger, _ := zap.NewDevelopment()

	registry := plugin.NewRegistry(logger)
	require.NoError(t, plugins.Register(registry))

	catalog := entity.NewCatalog(entity.DefaultSeed(), logger)
	clk := clock.NewRealClock()
	mem := store.NewMemory(clk, logger)
	sessions := session.NewManager(time.Hour, clk, logger)

	loader := slots.NewLoader(registry, plugins.Factories(), &plugin.Context{
		Logger:  logger,
		Catalog: catalog,
	}, logger)
	service := slots.NewService(registry, loader, mem, mem.Overrides(), logger)

	apiServer := api.NewServer(service, catalog, sessions, logger, 0)
	httpServer := httptest.NewServer(apiServer.Handler())

	h := &harness{t: t, server: httpServer, sessions: sessions}
	cleanup := func() {
		httpServer.Close()
	}
	return h, cleanup
}

// login issues a session and returns its bearer token.
func (h *harness) login(userID string) string {
	h.t.Helper()
	sess, err := h.sessions.Create(userID)
	require.NoError(h.t, err)
	return sess.Token
}

// request performs one HTTP call and returns status code and body.
func (h *harness) request(method, path, token string, body string) (int, []byte) {
	h.t.Helper()

	req, err := http.NewRequest(method, h.server.URL+path, bytes.NewReader([]byte(body)))
	require.NoError(h.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(h.t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(h.t, err)
	return resp.StatusCode, raw
}

// install installs a plugin and asserts success.
func (h *harness) install(token, pluginID string) {
	h.t.Helper()
	status, body := h.request(http.MethodPost, "/api/plugins/"+pluginID+"/install", token, "")
	require.Equal(h.t, http.StatusCreated, status, string(body))
}

// renderSlot renders a slot and returns the plugin ids in order.
func (h *harness) renderSlot(token, slot string, entityType, entityID string) []plugin.Rendering {
	h.t.Helper()

	path := "/api/slots/" + slot
	if entityType != "" {
		path += fmt.Sprintf("?entityType=%s&entityId=%s", entityType, entityID)
	}
	status, raw := h.request(http.MethodGet, path, token, "")
	require.Equal(h.t, http.StatusOK, status, string(raw))

	var body struct {
		Renderings []plugin.Rendering `json:"renderings"`
	}
	require.NoError(h.t, json.Unmarshal(raw, &body))
	return body.Renderings
}

func renderedIDs(renderings []plugin.Rendering) []string {
	ids := make([]string, 0, len(renderings))
	for _, r := range renderings {
		ids = append(ids, r.PluginID)
	}
	return ids
}
