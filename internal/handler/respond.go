package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/householder/internal/aggregate"
	"github.com/google/uuid"
)

// maxBodyBytes caps request bodies; every payload here is a handful of
// fields.
const maxBodyBytes = 1 << 20

var errInvalidJSON = errors.New("invalid JSON")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decodeJSON reads the request body into v. An empty body leaves v as is.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errInvalidJSON
	}
	return nil
}

// statusFor maps the failure kind of err to an HTTP status.
func statusFor(err error) int {
	switch aggregate.KindOf(err) {
	case aggregate.KindInvalidArgument:
		return http.StatusBadRequest
	case aggregate.KindNotFound:
		return http.StatusNotFound
	case aggregate.KindForeignReference, aggregate.KindIllegalState:
		return http.StatusConflict
	case aggregate.KindCurrencyMismatch:
		return http.StatusUnprocessableEntity
	case aggregate.KindUnauthenticated:
		return http.StatusUnauthorized
	case aggregate.KindPermissionDenied:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError answers with the status for err. Infrastructure failures are
// logged and hidden from the client.
func writeError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, status, "internal error")
		return
	}
	writeJSON(w, status, map[string]string{
		"error": err.Error(),
		"kind":  string(aggregate.KindOf(err)),
	})
}

// pathUUID parses the named path value. On failure it has already answered
// 400 and reports false.
func pathUUID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// optionalUUID parses s, treating "" as uuid.Nil.
func optionalUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(s)
}

// parseDate accepts "2006-01-02"; "" is the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(time.DateOnly, s, time.UTC)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}
