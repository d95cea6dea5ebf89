// Package api exposes HTTP handlers for the exercise tracker.
package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler coordinates HTTP requests with the domain stores.
type Handler struct {
	users     *domain.UserStore
	exercises *domain.ExerciseStore
	store     Pinger
}

// NewHandler builds a Handler.
func NewHandler(users *domain.UserStore, exercises *domain.ExerciseStore, store Pinger) *Handler {
	return &Handler{users: users, exercises: exercises, store: store}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", landing)
	r.Get("/healthz", healthz)
	r.Get("/readyz", h.readyz)

	r.Route("/api/users", func(r chi.Router) {
		r.Post("/", h.createUser)
		r.Get("/", h.listUsers)
		r.Post("/{id}/exercises", h.createExercise)
		r.Get("/{id}/logs", h.userLog)
	})
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *Handler) readyz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("store not ready")
		writeError(w, http.StatusServiceUnavailable, "store unavailable")
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}

	user, err := h.users.CreateUser(r.Context(), req.Username)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(*user))
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	resp := make([]UserResponse, 0, len(users))
	for _, user := range users {
		resp = append(resp, toUserResponse(user))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) createExercise(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := domain.ParseID(userID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	var req CreateExerciseRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeDomainError(w, r, err)
		return
	}
	input, err := req.toInput(userID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	logged, err := h.exercises.CreateExercise(r.Context(), input)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toExerciseResponse(*logged))
}

func (h *Handler) userLog(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "id")
	if _, err := domain.ParseID(userID); err != nil {
		writeDomainError(w, r, err)
		return
	}

	filter, err := parseLogFilter(r.URL.Query())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	log, err := h.exercises.Log(r.Context(), userID, filter)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toLogResponse(*log))
}
