package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"timetrack.org/internal/audit"
	"timetrack.org/internal/auth"
	"timetrack.org/internal/authz"
	"timetrack.org/internal/obs"
	"timetrack.org/internal/track"
)

// handleError maps a domain error to its HTTP status. Not-found always wins
// over forbidden because the services and the guard surface existence
// failures first.
func handleError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidInput),
		errors.Is(err, track.ErrInvalidInput),
		errors.Is(err, track.ErrInvalidTransition):
		writeValidationError(w, r, err)
	case errors.Is(err, auth.ErrUnauthorized), errors.Is(err, auth.ErrInvalidToken):
		writeError(w, r, http.StatusUnauthorized, "full authentication is required to access this resource")
	case errors.Is(err, authz.ErrForbidden):
		obs.ObserveAuthzDenial()
		_ = audit.LogEvent(r.Context(), "authz.denied", map[string]any{
			"method": r.Method,
			"path":   r.URL.Path,
		})
		writeError(w, r, http.StatusForbidden, "you do not have permission to perform this operation")
	case errors.Is(err, auth.ErrNotFound), errors.Is(err, track.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, auth.ErrConflict):
		writeError(w, r, http.StatusConflict, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	writeJSON(w, code, errorBody{
		Status:    code,
		Message:   msg,
		Timestamp: time.Now().UTC(),
		RequestID: audit.RequestIDFromContext(r.Context()),
	})
}

// writeValidationError adds the field map when the failure names a field.
func writeValidationError(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{
		Status:    http.StatusBadRequest,
		Message:   err.Error(),
		Timestamp: time.Now().UTC(),
		RequestID: audit.RequestIDFromContext(r.Context()),
	}
	body.Errors = fieldErrors(err)
	writeJSON(w, http.StatusBadRequest, body)
}

func fieldErrors(err error) map[string]string {
	var af *auth.FieldError
	if errors.As(err, &af) {
		return map[string]string{af.Field: af.Msg}
	}
	var tf *track.FieldError
	if errors.As(err, &tf) {
		return map[string]string{tf.Field: tf.Msg}
	}
	return nil
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
