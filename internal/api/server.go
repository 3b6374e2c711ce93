// Package api exposes the platform over HTTP: the plugin catalog and
// lifecycle, slot rendering, entity overrides, the entity catalog, demo
// sessions, and a WebSocket event feed.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"launchboard/internal/entity"
	"launchboard/internal/session"
	"launchboard/internal/slots"
)

// Server provides the HTTP API for the platform.
type Server struct {
	service  *slots.Service
	catalog  *entity.Catalog
	sessions *session.Manager
	hub      *Hub
	logger   *zap.Logger
	server   *http.Server
}

// NewServer creates the API server and wires the event feed into the plugin
// service.
func NewServer(service *slots.Service, catalog *entity.Catalog, sessions *session.Manager, logger *zap.Logger, port int) *Server {
	s := &Server{
		service:  service,
		catalog:  catalog,
		sessions: sessions,
		hub:      NewHub(logger),
		logger:   logger.Named("api"),
	}
	service.SetEventSink(s.hub)

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleSitemap)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/plugins", s.handleListPlugins)
	mux.HandleFunc("POST /api/plugins/{id}/install", s.handleInstall)
	mux.HandleFunc("DELETE /api/plugins/{id}", s.handleUninstall)
	mux.HandleFunc("PUT /api/plugins/{id}/enabled", s.handleSetEnabled)
	mux.HandleFunc("PUT /api/plugins/{id}/settings", s.handleSetSettings)

	mux.HandleFunc("GET /api/slots/{slot}", s.handleRenderSlot)

	mux.HandleFunc("GET /api/entities/{type}/{id}/plugins", s.handleGetOverride)
	mux.HandleFunc("PUT /api/entities/{type}/{id}/plugins", s.handleSetOverride)
	mux.HandleFunc("DELETE /api/entities/{type}/{id}/plugins", s.handleClearOverride)

	mux.HandleFunc("GET /api/companies", s.handleListCompanies)
	mux.HandleFunc("GET /api/companies/{id}", s.handleGetCompany)
	mux.HandleFunc("GET /api/investors", s.handleListInvestors)
	mux.HandleFunc("GET /api/investors/{id}", s.handleGetInvestor)

	mux.HandleFunc("POST /api/sessions", s.handleCreateSession)
	mux.HandleFunc("DELETE /api/sessions", s.handleDeleteSession)

	mux.HandleFunc("GET /api/events", s.handleEvents)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP API server", zap.String("addr", s.server.Addr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop gracefully shuts down the HTTP server and the event feed.
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP API server")

	s.hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}

// handleHealth returns a simple health check response
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ok",
	})
}

// Endpoint represents an API endpoint with its documentation
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

// handleSitemap returns a list of all available API endpoints
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	// Only handle requests to the root path
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	endpoints := []Endpoint{
		{"/", "GET", "This sitemap - lists all available API endpoints"},
		{"/health", "GET", "Health check endpoint - returns {\"status\": \"ok\"}"},
		{"/api/plugins", "GET", "List all plugins with the viewer's install state"},
		{"/api/plugins/{id}/install", "POST", "Install a plugin for the viewer"},
		{"/api/plugins/{id}", "DELETE", "Uninstall a plugin (clears its entity overrides too)"},
		{"/api/plugins/{id}/enabled", "PUT", "Enable or disable an installed plugin"},
		{"/api/plugins/{id}/settings", "PUT", "Merge a settings patch into an installation"},
		{"/api/slots/{slot}", "GET", "Render a slot (query: entityType, entityId)"},
		{"/api/entities/{type}/{id}/plugins", "GET", "Get the viewer's plugin override for an entity"},
		{"/api/entities/{type}/{id}/plugins", "PUT", "Replace the viewer's plugin override for an entity"},
		{"/api/entities/{type}/{id}/plugins", "DELETE", "Clear the override, reverting to all enabled plugins"},
		{"/api/companies", "GET", "List companies"},
		{"/api/companies/{id}", "GET", "Get one company with funding rounds"},
		{"/api/investors", "GET", "List investors"},
		{"/api/investors/{id}", "GET", "Get one investor with their investments"},
		{"/api/sessions", "POST", "Create a demo session for a user id"},
		{"/api/sessions", "DELETE", "Revoke the current session"},
		{"/api/events", "GET", "WebSocket feed of plugin lifecycle events"},
	}

	preferHTML := strings.Contains(r.Header.Get("Accept"), "text/html")

	// Return 404 status code (for automation compatibility) but with helpful body
	w.WriteHeader(http.StatusNotFound)

	if preferHTML {
		// HTML format for browsers
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Launchboard API</title>
    <style>
        body { font-family: monospace; margin: 40px; background: #1e1e1e; color: #d4d4d4; }
        h1 { color: #4ec9b0; }
        h2 { color: #569cd6; margin-top: 30px; }
        .endpoint { background: #2d2d2d; padding: 15px; margin: 10px 0; border-left: 3px solid #007acc; }
        .method { color: #4ec9b0; font-weight: bold; }
        .path { color: #ce9178; }
        .description { color: #9cdcfe; margin-top: 5px; }
        a { color: #569cd6; text-decoration: none; }
        a:hover { text-decoration: underline; }
    </style>
</head>
<body>
    <h1>Launchboard API</h1>
    <p>Plugin-extensible profiles for startups and investors.</p>
    <h2>Available Endpoints</h2>
`)
		for _, ep := range endpoints {
			fmt.Fprintf(w, `    <div class="endpoint">
        <div><span class="method">%s</span> <span class="path">%s</span></div>
        <div class="description">%s</div>
    </div>
`, ep.Method, ep.Path, ep.Description)
		}
		fmt.Fprintf(w, `    <h2>Examples</h2>
    <div class="endpoint">
        <div>List plugins:</div>
        <div class="description">curl <a href="/api/plugins">http://localhost:8080/api/plugins</a></div>
    </div>
    <div class="endpoint">
        <div>Render a company header:</div>
        <div class="description">curl "http://localhost:8080/api/slots/CompanyProfile.Header?entityType=company&entityId=acme"</div>
    </div>
</body>
</html>
`)
	} else {
		// Plain text format for terminal
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "Launchboard API\n")
		fmt.Fprintf(w, "===============\n\n")
		fmt.Fprintf(w, "Available endpoints:\n\n")
		for _, ep := range endpoints {
			fmt.Fprintf(w, "  %-8s %-40s %s\n", ep.Method, ep.Path, ep.Description)
		}
		fmt.Fprintf(w, "\nExamples:\n\n")
		fmt.Fprintf(w, "  List plugins:\n")
		fmt.Fprintf(w, "    curl http://localhost:8080/api/plugins\n\n")
		fmt.Fprintf(w, "  Render a company header slot:\n")
		fmt.Fprintf(w, "    curl \"http://localhost:8080/api/slots/CompanyProfile.Header?entityType=company&entityId=acme\" | jq\n\n")
	}

	s.logger.Debug("Sitemap request served",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Bool("html_format", preferHTML))
}
