package delivery

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Vovarama1992/go-utils/logger"
	"github.com/Vovarama1992/media-api/internal/models"
)

// HTTPError is a framework-level fault raised outside the service: bad input,
// unknown routes, recovered panics.
type HTTPError struct {
	Status   int
	Name     string
	Message  string
	Messages []string
	Err      error
}

func (e *HTTPError) Error() string {
	msg := e.message()
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *HTTPError) Unwrap() error { return e.Err }

// message prefers the first entry of Messages.
func (e *HTTPError) message() string {
	if len(e.Messages) > 0 {
		return e.Messages[0]
	}
	return e.Message
}

func statusFor(kind models.FaultKind) int {
	switch kind {
	case models.FaultValidation, models.FaultNotFound, models.FaultBadRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError translates any error into the error envelope.
func WriteError(w http.ResponseWriter, log *logger.ZapLogger, err error) {
	var (
		status int
		name   string
		msg    string
	)

	var fault *models.Fault
	var httpErr *HTTPError

	switch {
	case errors.As(err, &fault):
		status, name, msg = statusFor(fault.Kind), fault.Kind.String(), fault.Message
	case errors.As(err, &httpErr):
		status, name, msg = httpErr.Status, httpErr.Name, httpErr.message()
		if name == "" {
			name = http.StatusText(status)
		}
	default:
		status, name, msg = http.StatusInternalServerError, "InternalServerError", "Internal server error"
	}

	level := "warn"
	if status >= http.StatusInternalServerError {
		level = "error"
	}
	log.Log(logger.LogEntry{
		Level:   level,
		Message: "request failed",
		Error:   err,
		Fields: map[string]any{
			"error":   name,
			"message": msg,
			"status":  status,
		},
	})

	writeJSON(w, status, models.Failure(msg))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
