// Package handler implements the HTTP handlers for the war-room API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/scorewire/warroom/internal/domain"
)

// writeJSON marshals v and writes it with the given status. A marshal
// failure degrades to a plain 500.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	w.Write(data)
}

// writeError sends a JSON-formatted error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeDomainError maps the engine's sentinel errors to HTTP statuses.
// Anything unmapped is a 500 with a generic body.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusForbidden, "not allowed")
	case errors.Is(err, domain.ErrChoicePending):
		writeError(w, http.StatusConflict, "destination choice already pending")
	case errors.Is(err, domain.ErrNoPendingChoice):
		writeError(w, http.StatusConflict, "no destination choice pending")
	case errors.Is(err, domain.ErrSubmitInFlight):
		writeError(w, http.StatusConflict, "submission already in flight")
	case errors.Is(err, domain.ErrTradeIncomplete):
		writeError(w, http.StatusUnprocessableEntity, "trade not ready to submit")
	case errors.Is(err, domain.ErrGradeRejected):
		writeError(w, http.StatusUnprocessableEntity, "grading service rejected the trade")
	case errors.Is(err, domain.ErrUnknownRole), errors.Is(err, domain.ErrTeamUnresolved):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// decodeBody unmarshals the request body into v, rejecting unknown fields.
func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// parseListOpts extracts standard pagination parameters from the query
// string. Defaults: limit=50 (max 500), offset=0.
func parseListOpts(r *http.Request) domain.ListOpts {
	q := r.URL.Query()

	limit := 50
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > 500 {
		limit = 500
	}

	offset := 0
	if v := q.Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return domain.ListOpts{
		Limit:  limit,
		Offset: offset,
	}
}

// userKey resolves the acting user from the X-User-Key header.
func userKey(r *http.Request) string {
	return r.Header.Get("X-User-Key")
}

// jsonRaw re-embeds stored wire-format JSON without double-encoding. Empty
// input renders as null.
func jsonRaw(data []byte) any {
	if len(data) == 0 {
		return nil
	}
	return json.RawMessage(data)
}
