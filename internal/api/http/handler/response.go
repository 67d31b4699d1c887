package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/skilledge/skilledge-server/internal/model"
)

const maxBodySize = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// decode reads a JSON body into dst. Malformed bodies become validation
// errors so they map to 400.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(dst)
	if err == nil {
		return nil
	}
	if model.IsValidation(err) {
		return err
	}
	if errors.Is(err, io.EOF) {
		return model.NewValidationError("", "empty request body")
	}
	return model.NewValidationError("", fmt.Sprintf("malformed request body: %v", err))
}

// statusOf maps the error taxonomy onto HTTP statuses.
func statusOf(err error) (int, string) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest, ve.Error()
	case errors.Is(err, model.ErrInvalidCredentials):
		return http.StatusBadRequest, "invalid credentials"
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, "not found"
	case errors.Is(err, model.ErrAlreadyExists):
		return http.StatusConflict, "already exists"
	case errors.Is(err, model.ErrStorageDisabled):
		return http.StatusServiceUnavailable, "object storage is disabled"
	case model.IsStorage(err):
		return http.StatusInternalServerError, "storage failure, retry later"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func handleError(w http.ResponseWriter, err error) {
	status, message := statusOf(err)
	writeError(w, status, message)
}
