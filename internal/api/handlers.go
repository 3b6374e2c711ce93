package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"launchboard/internal/session"
	"launchboard/internal/slots"
	"launchboard/internal/store"
	"launchboard/pkg/plugin"
)

// sessionCookie is the cookie fallback for browser clients; API clients use
// Authorization: Bearer <token>.
const sessionCookie = "lb_session"

// maxBodySize bounds request bodies (settings patches, override sets).
const maxBodySize = 64 * 1024

// viewer resolves the request's session token to a user id. Anonymous
// requests resolve to the empty string; handlers decide whether that is
// acceptable.
func (s *Server) viewer(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return s.sessions.Resolve(strings.TrimPrefix(auth, "Bearer "))
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return s.sessions.Resolve(c.Value)
	}
	return session.Anonymous
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, plugin.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, plugin.ErrPluginNotFound), errors.Is(err, plugin.ErrNotInstalled), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, store.ErrInvalidSettings), errors.Is(err, slots.ErrInvalidEntity):
		status = http.StatusBadRequest
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request, v any) bool {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return false
	}
	if err := json.Unmarshal(body, v); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON body"})
		return false
	}
	return true
}

// entityTypeFromPath maps the URL segment to an entity type. The API uses
// the short names "company" and "investor".
func entityTypeFromPath(segment string) (plugin.EntityType, bool) {
	switch segment {
	case "company":
		return plugin.EntityCompany, true
	case "investor":
		return plugin.EntityInvestor, true
	default:
		return "", false
	}
}

// --- plugin lifecycle ---

func (s *Server) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	list := s.service.ListPlugins(r.Context(), s.viewer(r))
	s.writeJSON(w, http.StatusOK, map[string]any{"plugins": list})
}

func (s *Server) handleInstall(w http.ResponseWriter, r *http.Request) {
	inst, err := s.service.Install(r.Context(), s.viewer(r), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, inst)
}

func (s *Server) handleUninstall(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Uninstall(r.Context(), s.viewer(r), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSetEnabled(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Enabled bool `json:"enabled"`
	}
	if !s.readBody(w, r, &body) {
		return
	}

	inst, err := s.service.SetEnabled(r.Context(), s.viewer(r), r.PathValue("id"), body.Enabled)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

func (s *Server) handleSetSettings(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "failed to read request body"})
		return
	}

	inst, err := s.service.SetSettings(r.Context(), s.viewer(r), r.PathValue("id"), body)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, inst)
}

// --- slot rendering ---

func (s *Server) handleRenderSlot(w http.ResponseWriter, r *http.Request) {
	slot := r.PathValue("slot")
	entityID := r.URL.Query().Get("entityId")

	var entityType plugin.EntityType
	if raw := r.URL.Query().Get("entityType"); raw != "" {
		et, ok := entityTypeFromPath(raw)
		if !ok {
			s.writeError(w, slots.ErrInvalidEntity)
			return
		}
		entityType = et
	}

	// The entity payload, when it exists, is handed to components as data.
	var data any
	if entityType != "" && entityID != "" {
		if payload, ok := s.catalog.Entity(entityType, entityID); ok {
			data = payload
		}
	}

	renderings := s.service.RenderSlot(r.Context(), slot, s.viewer(r), entityType, entityID, data, nil)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"slot":       slot,
		"renderings": renderings,
	})
}

// --- entity overrides ---

func (s *Server) overrideTarget(w http.ResponseWriter, r *http.Request) (plugin.EntityType, string, bool) {
	entityType, ok := entityTypeFromPath(r.PathValue("type"))
	if !ok {
		s.writeError(w, slots.ErrInvalidEntity)
		return "", "", false
	}
	return entityType, r.PathValue("id"), true
}

func (s *Server) handleGetOverride(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, ok := s.overrideTarget(w, r)
	if !ok {
		return
	}

	ids, present := s.service.GetEntityOverride(r.Context(), s.viewer(r), entityType, entityID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"override":  present,
		"pluginIds": ids,
	})
}

func (s *Server) handleSetOverride(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, ok := s.overrideTarget(w, r)
	if !ok {
		return
	}

	var body struct {
		PluginIDs []string `json:"pluginIds"`
	}
	if !s.readBody(w, r, &body) {
		return
	}

	if err := s.service.SetEntityOverride(r.Context(), s.viewer(r), entityType, entityID, body.PluginIDs); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearOverride(w http.ResponseWriter, r *http.Request) {
	entityType, entityID, ok := s.overrideTarget(w, r)
	if !ok {
		return
	}

	if err := s.service.ClearEntityOverride(r.Context(), s.viewer(r), entityType, entityID); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// --- entity catalog ---

func (s *Server) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"companies": s.catalog.Companies()})
}

func (s *Server) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, ok := s.catalog.Company(r.PathValue("id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "company not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, company)
}

func (s *Server) handleListInvestors(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"investors": s.catalog.Investors()})
}

func (s *Server) handleGetInvestor(w http.ResponseWriter, r *http.Request) {
	investor, ok := s.catalog.Investor(r.PathValue("id"))
	if !ok {
		s.writeJSON(w, http.StatusNotFound, map[string]string{"error": "investor not found"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"investor":    investor,
		"investments": s.catalog.InvestmentsOf(investor.ID),
	})
}

// --- sessions ---

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		UserID string `json:"userId"`
	}
	if !s.readBody(w, r, &body) {
		return
	}
	if body.UserID == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "userId is required"})
		return
	}

	sess, err := s.sessions.Create(body.UserID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Expires:  sess.ExpiresAt,
	})
	s.writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		s.sessions.Revoke(strings.TrimPrefix(auth, "Bearer "))
	} else if c, err := r.Cookie(sessionCookie); err == nil {
		s.sessions.Revoke(c.Value)
	}
	w.WriteHeader(http.StatusNoContent)
}
