package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

// UserResponse describes a user.
type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
}

// ExerciseResponse is returned after logging an exercise. ID is the owner's
// id, not the exercise's.
type ExerciseResponse struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Date        string `json:"date"`
	Duration    int    `json:"duration"`
	Description string `json:"description"`
}

// LogEntry is one line of a user's log.
type LogEntry struct {
	Description string `json:"description"`
	Duration    int    `json:"duration"`
	Date        string `json:"date"`
}

// LogResponse packages a user's filtered exercise log. Count always equals
// len(Log).
type LogResponse struct {
	ID       string     `json:"id"`
	Username string     `json:"username"`
	Count    int        `json:"count"`
	Log      []LogEntry `json:"log"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toUserResponse(user domain.User) UserResponse {
	return UserResponse{Username: user.Username, ID: user.ID}
}

func toExerciseResponse(logged domain.LoggedExercise) ExerciseResponse {
	return ExerciseResponse{
		ID:          logged.User.ID,
		Username:    logged.User.Username,
		Date:        displayDate(logged.Exercise.Date),
		Duration:    logged.Exercise.Duration,
		Description: logged.Exercise.Description,
	}
}

func toLogResponse(log domain.ExerciseLog) LogResponse {
	entries := make([]LogEntry, 0, len(log.Exercises))
	for _, exercise := range log.Exercises {
		entries = append(entries, LogEntry{
			Description: exercise.Description,
			Duration:    exercise.Duration,
			Date:        displayDate(exercise.Date),
		})
	}
	return LogResponse{
		ID:       log.User.ID,
		Username: log.User.Username,
		Count:    len(entries),
		Log:      entries,
	}
}

// writeDomainError maps a domain failure to its HTTP status. Unclassified
// errors are logged and reported generically.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
