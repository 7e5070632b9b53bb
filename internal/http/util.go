package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	applog "civic-registry/internal/common/logger"
	"civic-registry/internal/domain"
)

const internalErrorMessage = "Internal server error"

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

var errBodyTooLarge = domain.Invalid("Request body too large")

// readBodyJSON decodes at most maxBytes of the body into out. An empty body
// leaves out untouched.
func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes+1))
	if err != nil {
		return err
	}
	if int64(len(body)) > maxBytes {
		return errBodyTooLarge
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.WrapError(domain.CodeInvalidInput, "Invalid JSON body", err)
	}
	return nil
}

// parseID reads the {id} route parameter. message is returned as a 400 when
// it is not a positive integer.
func parseID(r *http.Request, message string) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.Invalid(message)
	}
	return id, nil
}

func statusFor(code domain.ErrorCode) int {
	switch code {
	case domain.CodeInvalidInput, domain.CodeConflict:
		return http.StatusBadRequest
	case domain.CodeUnauthorized:
		return http.StatusUnauthorized
	case domain.CodeForbidden:
		return http.StatusForbidden
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps err to a status and envelope. Anything that is not a
// domain error is logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		status := statusFor(de.Code)
		if status != http.StatusInternalServerError {
			writeJSON(w, status, Fail(de.Message))
			return
		}
	}
	applog.FromContext(r.Context(), logger).Error("Request failed", zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, Fail(internalErrorMessage))
}
