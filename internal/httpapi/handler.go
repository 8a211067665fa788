// Package httpapi exposes the verification service over HTTP. Thin glue:
// decode, call the service, encode. No business logic lives here.
package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/netresearch/dirverify"
)

// Service defines the verification operations the handler needs.
type Service interface {
	Authenticate(ctx context.Context, username, password string) dirverify.Result
	ResolveProfile(ctx context.Context, in dirverify.Inputs) dirverify.Result
}

// Handler wires verification endpoints to the service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a Handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/v1/authenticate", h.HandleAuthenticate)
	r.Post("/api/v1/resolve", h.HandleResolve)
	r.Get("/healthz", h.HandleHealth)
}

type authenticateRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type resolveRequest struct {
	Email       string `json:"email"`
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// HandleAuthenticate handles POST /api/v1/authenticate.
func (h *Handler) HandleAuthenticate(w http.ResponseWriter, r *http.Request) {
	var req authenticateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}
	if req.Username == "" || req.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "username and password are required"})
		return
	}

	res := h.service.Authenticate(r.Context(), req.Username, req.Password)
	writeResult(w, res)
}

// HandleResolve handles POST /api/v1/resolve.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	var req resolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	in := dirverify.Inputs{
		Email:       req.Email,
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
	}
	if in.IsZero() {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "at least one of email, user_id, display_name is required"})
		return
	}

	res := h.service.ResolveProfile(r.Context(), in)
	writeResult(w, res)
}

// HandleHealth handles GET /healthz.
func (h *Handler) HandleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeResult maps verdicts onto status codes: negative verdicts are still
// 200 (the verdict is the payload), only infrastructure failure is 503.
func writeResult(w http.ResponseWriter, res dirverify.Result) {
	status := http.StatusOK
	if res.Outcome == dirverify.OutcomeDirectoryUnavailable {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, res)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
