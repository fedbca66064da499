package api

import (
	"errors"
	"net/http"

	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

type errorMapping struct {
	target error
	status int
	code   string
}

// errorMappings is checked in order; the first match wins.
var errorMappings = []errorMapping{
	{domain.ErrStorageUnavailable, http.StatusServiceUnavailable, "storage_unavailable"},
	{domain.ErrRequestNotFound, http.StatusNotFound, "request_not_found"},
	{repository.ErrNotFound, http.StatusNotFound, "not_found"},
	{domain.ErrNoPendingApproval, http.StatusConflict, "no_pending_approval"},
	{domain.ErrAlreadyInProgress, http.StatusConflict, "already_in_progress"},
	{domain.ErrNotRejected, http.StatusConflict, "not_rejected"},
	{domain.ErrWorkflowClosed, http.StatusConflict, "workflow_closed"},
	{domain.ErrAlreadyDecided, http.StatusConflict, "already_decided"},
	{domain.ErrNotEligible, http.StatusForbidden, "not_eligible"},
	{domain.ErrNotRequester, http.StatusForbidden, "not_requester"},
	{domain.ErrInvalidAction, http.StatusBadRequest, "invalid_action"},
	{domain.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	{domain.ErrUnknownRequestKind, http.StatusBadRequest, "unknown_request_kind"},
	{domain.ErrUnknownStage, http.StatusBadRequest, "unknown_stage"},
}

// statusFor maps an error to its HTTP status and a stable machine code.
func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}
