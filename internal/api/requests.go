package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mger1608/fcc-backend-exercise-tracker/internal/domain"
)

const (
	maxBodyBytes  = 1 << 20
	maxFormMemory = 1 << 20
)

// CreateUserRequest is the payload for POST /api/users.
type CreateUserRequest struct {
	Username string `json:"username" validate:"required,max=128"`
}

func (req *CreateUserRequest) bindForm(values url.Values) {
	req.Username = values.Get("username")
}

func (req *CreateUserRequest) normalize() {
	req.Username = strings.TrimSpace(req.Username)
}

// CreateExerciseRequest is the payload for POST /api/users/{id}/exercises.
// Duration accepts a JSON number or a numeric string.
type CreateExerciseRequest struct {
	Description string      `json:"description" validate:"required,max=512"`
	Duration    json.Number `json:"duration" validate:"required"`
	Date        string      `json:"date,omitempty"`
}

func (req *CreateExerciseRequest) bindForm(values url.Values) {
	req.Description = values.Get("description")
	req.Duration = json.Number(strings.TrimSpace(values.Get("duration")))
	req.Date = values.Get("date")
}

func (req *CreateExerciseRequest) normalize() {
	req.Description = strings.TrimSpace(req.Description)
	req.Date = strings.TrimSpace(req.Date)
}

// toInput converts the validated request into domain input.
func (req CreateExerciseRequest) toInput(userID string) (domain.CreateExerciseInput, error) {
	duration, err := strconv.Atoi(req.Duration.String())
	if err != nil || duration <= 0 {
		return domain.CreateExerciseInput{}, fmt.Errorf("%w: duration must be a positive integer", domain.ErrValidation)
	}
	input := domain.CreateExerciseInput{
		UserID:      userID,
		Description: req.Description,
		Duration:    duration,
	}
	if req.Date != "" {
		date, err := domain.ParseDate(req.Date)
		if err != nil {
			return domain.CreateExerciseInput{}, err
		}
		input.Date = &date
	}
	return input, nil
}

type formBinder interface {
	bindForm(url.Values)
	normalize()
}

// decodeBody fills dst from a JSON or form-encoded body and validates it.
// JSON bodies must not carry unknown fields; an empty body decodes to the
// zero request so missing fields surface as validation errors.
func decodeBody(w http.ResponseWriter, r *http.Request, dst formBinder) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/x-www-form-urlencoded":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return fmt.Errorf("%w: unable to parse form body", domain.ErrValidation)
		}
		dst.bindForm(r.PostForm)
	case "multipart/form-data":
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return fmt.Errorf("%w: unable to parse form body", domain.ErrValidation)
		}
		dst.bindForm(r.PostForm)
	default:
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		dec.DisallowUnknownFields()
		if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: unable to parse body: %s", domain.ErrValidation, describeDecodeError(err))
		}
		if dec.More() {
			return fmt.Errorf("%w: body must contain a single JSON object", domain.ErrValidation)
		}
	}
	dst.normalize()
	return validateStruct(dst)
}

func describeDecodeError(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return fmt.Sprintf("field %s has the wrong type", typeErr.Field)
	}
	if msg := err.Error(); strings.HasPrefix(msg, "json: unknown field ") {
		return strings.TrimPrefix(msg, "json: ")
	}
	return "malformed JSON"
}

// parseLogFilter reads from, to and limit from the query string.
func parseLogFilter(query url.Values) (domain.ExerciseFilter, error) {
	var filter domain.ExerciseFilter
	if raw := strings.TrimSpace(query.Get("from")); raw != "" {
		from, err := domain.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if raw := strings.TrimSpace(query.Get("to")); raw != "" {
		to, err := domain.ParseDate(raw)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return filter, fmt.Errorf("%w: limit must be a non-negative integer", domain.ErrValidation)
		}
		filter.Limit = limit
	}
	return filter, nil
}

// displayDate renders a calendar date the way clients expect,
// e.g. "Mon Jan 01 2024".
func displayDate(t time.Time) string {
	return t.UTC().Format("Mon Jan 02 2006")
}
