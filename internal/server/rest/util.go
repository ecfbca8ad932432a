package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/upeosoft/cms/internal/common"
	"github.com/upeosoft/cms/internal/logging"
	"github.com/upeosoft/cms/internal/server/auth"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 1 << 20

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "message": msg})
}

func parseJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is empty", common.ErrorValidation)
		}
		return fmt.Errorf("%w: invalid json", common.ErrorValidation)
	}
	return nil
}

func readRaw(w http.ResponseWriter, r *http.Request) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := parseJSON(w, r, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

// clientMessage strips the sentinel prefix from a wrapped error so clients
// see only the detail.
func clientMessage(err error, sentinel error) string {
	msg := err.Error()
	if trimmed, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
		return trimmed
	}
	return msg
}

// writeServiceError maps service and repository errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, log logging.Logger, err error) {
	switch {
	case errors.Is(err, common.ErrorValidation):
		writeError(w, http.StatusBadRequest, clientMessage(err, common.ErrorValidation))
	case errors.Is(err, common.ErrorAlreadyExists):
		writeError(w, http.StatusBadRequest, clientMessage(err, common.ErrorAlreadyExists))
	case errors.Is(err, common.ErrSelfModification):
		writeError(w, http.StatusBadRequest, common.ErrSelfModification.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		writeError(w, http.StatusUnauthorized, common.ErrorUnauthorized.Error())
	case errors.Is(err, common.ErrAccountDisabled):
		writeError(w, http.StatusUnauthorized, common.ErrAccountDisabled.Error())
	case errors.Is(err, common.ErrNotOwner):
		writeError(w, http.StatusForbidden, common.ErrNotOwner.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "resource not found")
	default:
		if errors.Is(err, auth.ErrHashing) {
			log.Error(r.Context(), "password hashing failed", "error", err)
		} else {
			log.Error(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		}
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
