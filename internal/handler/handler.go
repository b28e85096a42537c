// Package handler provides the HTTP handlers that sit on top of
// internal/service, translating between the wire format (internal/handler/dto)
// and the service layer's business operations.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shortlink/shortlink/internal/apperr"
	"github.com/shortlink/shortlink/internal/handler/dto"
)

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	env := dto.FromAppError(err)
	status := http.StatusInternalServerError
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		status = appErr.HTTPStatus()
	}
	writeJSON(w, status, env)
}

func decodeJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
