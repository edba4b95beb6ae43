package main

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/mattermost/mattermost/server/public/plugin"
	"github.com/pkg/errors"

	"github.com/cas-4/mattermost-plugin-cas4/server/hazard"
)

// Error bodies returned to the client
const (
	msgLoginRequired = "Login required"
	msgNoDataFound   = "No data found"
	msgLoginFailed   = "An error occurred during login."
	msgUpstreamError = "An error occurred while contacting the CAS4 server."
	msgInvalidBody   = "Invalid request body"
)

// errorResponse is the JSON body of every failed request. Redirect names the
// view the client should fall back to.
type errorResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect,omitempty"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type positionRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Speed     float64  `json:"speed"`
}

type permissionRequest struct {
	Granted bool `json:"granted"`
}

type sessionResponse struct {
	Status hazard.Status   `json:"status"`
	Home   hazard.HomeView `json:"home"`
}

type activeResponse struct {
	Active   *hazard.Notification `json:"active"`
	Headline string               `json:"headline,omitempty"`
}

// ServeHTTP handles HTTP requests for the plugin.
// The root URL is currently <siteUrl>/plugins/com.cas4.mattermost-plugin-cas4/api/v1/.
func (p *Plugin) ServeHTTP(c *plugin.Context, w http.ResponseWriter, r *http.Request) {
	router := mux.NewRouter()

	// Middleware to require that the user is logged in
	router.Use(p.MattermostAuthorizationRequired)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()

	apiRouter.HandleFunc("/session", p.handleLogin).Methods(http.MethodPost)
	apiRouter.HandleFunc("/session", p.handleLogout).Methods(http.MethodDelete)
	apiRouter.HandleFunc("/session", p.handleSession).Methods(http.MethodGet)

	apiRouter.HandleFunc("/position", p.handlePosition).Methods(http.MethodPost)
	apiRouter.HandleFunc("/position/permission", p.handlePermission).Methods(http.MethodPost)

	apiRouter.HandleFunc("/active", p.handleGetActive).Methods(http.MethodGet)
	apiRouter.HandleFunc("/active", p.handleDismissActive).Methods(http.MethodDelete)

	apiRouter.HandleFunc("/notifications", p.handleNotifications).Methods(http.MethodGet)
	apiRouter.HandleFunc("/notifications/{id}", p.handleNotificationDetail).Methods(http.MethodGet)

	apiRouter.HandleFunc("/alerts", p.handleAlerts).Methods(http.MethodGet)
	apiRouter.HandleFunc("/alerts/{id}", p.handleAlertDetail).Methods(http.MethodGet)

	router.ServeHTTP(w, r)
}

func (p *Plugin) MattermostAuthorizationRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("Mattermost-User-ID")
		if userID == "" {
			http.Error(w, "Not authorized", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// agentFor returns the caller's agent, writing an error response on failure
func (p *Plugin) agentFor(w http.ResponseWriter, r *http.Request) (hazard.Agent, bool) {
	userID := r.Header.Get("Mattermost-User-ID")
	agent, err := p.getOrCreateAgent(userID)
	if err != nil {
		p.API.LogError("Failed to get agent", "userId", userID, "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Internal error"})
		return nil, false
	}
	return agent, true
}

func (p *Plugin) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	err := agent.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		var apiErr *hazard.APIError
		switch {
		case errors.Is(err, hazard.ErrMissingLoginFields):
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case errors.As(err, &apiErr):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: apiErr.Error()})
		case errors.Is(err, hazard.ErrUnauthorized):
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgLoginFailed})
		default:
			p.API.LogWarn("Login failed", "userId", agent.GetUserID(), "error", err.Error())
			writeJSON(w, http.StatusBadGateway, errorResponse{Error: msgLoginFailed})
		}
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Status: agent.GetStatus(), Home: agent.HomeView()})
}

func (p *Plugin) handleLogout(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	if err := agent.Logout(); err != nil {
		p.API.LogError("Logout failed", "userId", agent.GetUserID(), "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "Failed to log out"})
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (p *Plugin) handleSession(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Status: agent.GetStatus(), Home: agent.HomeView()})
}

func (p *Plugin) handlePosition(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Latitude == nil || req.Longitude == nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	agent.ReportPosition(r.Context(), hazard.NewPositionSample(*req.Latitude, *req.Longitude, req.Speed, time.Now()))
	w.WriteHeader(http.StatusAccepted)
}

func (p *Plugin) handlePermission(w http.ResponseWriter, r *http.Request) {
	var req permissionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: msgInvalidBody})
		return
	}

	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	agent.ReportPermission(req.Granted)
	w.WriteHeader(http.StatusNoContent)
}

func (p *Plugin) handleGetActive(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	home := agent.HomeView()
	writeJSON(w, http.StatusOK, activeResponse{Active: home.Active, Headline: home.Headline})
}

func (p *Plugin) handleDismissActive(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	agent.DismissActive()
	w.WriteHeader(http.StatusNoContent)
}

func (p *Plugin) handleNotifications(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	list, err := agent.Notifications(r.Context())
	if err != nil {
		p.writeAgentError(w, agent.GetUserID(), err, "/notifications")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (p *Plugin) handleNotificationDetail(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	detail, err := agent.NotificationDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		p.writeAgentError(w, agent.GetUserID(), err, "/notifications")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (p *Plugin) handleAlerts(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	list, err := agent.Alerts(r.Context())
	if err != nil {
		p.writeAgentError(w, agent.GetUserID(), err, "/alerts")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (p *Plugin) handleAlertDetail(w http.ResponseWriter, r *http.Request) {
	agent, ok := p.agentFor(w, r)
	if !ok {
		return
	}

	detail, err := agent.AlertDetail(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		p.writeAgentError(w, agent.GetUserID(), err, "/alerts")
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// writeAgentError maps an agent error to a status code. notFoundRedirect is
// the list view a missing item falls back to.
func (p *Plugin) writeAgentError(w http.ResponseWriter, userID string, err error, notFoundRedirect string) {
	var apiErr *hazard.APIError
	switch {
	case errors.Is(err, hazard.ErrNotAuthenticated), errors.Is(err, hazard.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: msgLoginRequired, Redirect: "/"})
	case errors.Is(err, hazard.ErrNotFound), errors.Is(err, hazard.ErrInvalidID):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: msgNoDataFound, Redirect: notFoundRedirect})
	case errors.As(err, &apiErr):
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: apiErr.Error()})
	default:
		p.API.LogWarn("CAS4 request failed", "userId", userID, "error", err.Error())
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: msgUpstreamError})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
