package httpapi

import (
	"errors"
	"net/http"

	"propdesk/internal/archive"
	"propdesk/internal/assist"
	blobcore "propdesk/internal/blob/core"
	"propdesk/internal/core"
	"propdesk/internal/core/budget"
	"propdesk/pkg/domain"
)

type errorBody struct {
	Error      string             `json:"error"`
	Violations []domain.Violation `json:"violations,omitempty"`
}

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	var violation domain.RuleViolationError
	switch {
	case errors.Is(err, domain.ErrUnknownEntityType),
		errors.Is(err, domain.ErrInvalidFields),
		errors.Is(err, budget.ErrUnknownField),
		errors.Is(err, blobcore.ErrInvalidKey):
		return http.StatusBadRequest
	case errors.Is(err, archive.ErrNoArchives),
		errors.Is(err, blobcore.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrHistoryUnsupported),
		errors.Is(err, blobcore.ErrExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrMissingParent),
		errors.As(err, &violation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, assist.ErrUnavailable):
		return http.StatusServiceUnavailable
	case assist.IsTransient(err), assist.IsFatal(err):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error()}
	var violation domain.RuleViolationError
	if errors.As(err, &violation) {
		body.Violations = violation.Outcome.Violations
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", "status", status, "error", err)
	}
	writeJSON(w, status, body)
}
