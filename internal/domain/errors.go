package domain

import "errors"

var (
	// ErrUnknownRequestKind is a configuration error: the kind has no stage table.
	ErrUnknownRequestKind = errors.New("unknown request kind")
	ErrUnknownStage       = errors.New("unknown workflow stage")

	// ErrNoPendingApproval means the caller acted on stale state and should refetch.
	ErrNoPendingApproval = errors.New("no pending approval")
	// ErrAlreadyInProgress means a workflow is already running; treat as success.
	ErrAlreadyInProgress = errors.New("approval workflow already in progress")
	ErrNotRejected       = errors.New("request is not in a rejected state")
	ErrWorkflowClosed    = errors.New("approval workflow is closed for this request")

	// ErrZeroEligibleApprovers is surfaced as an operator alert, never returned
	// from a workflow operation.
	ErrZeroEligibleApprovers = errors.New("no eligible approvers for stage")

	ErrNotEligible       = errors.New("actor does not hold the role required by the pending stage")
	ErrNotRequester      = errors.New("only the original requester may resubmit")
	ErrInvalidAction     = errors.New("invalid decision action")
	ErrRequestNotFound   = errors.New("request not found")
	ErrAlreadyDecided    = errors.New("approval record already decided")
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidStageTable = errors.New("invalid workflow stage table")

	// ErrStorageUnavailable wraps every storage adapter failure. Retry policy
	// belongs to the caller.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

var workflowErrors = []error{
	ErrUnknownRequestKind,
	ErrUnknownStage,
	ErrNoPendingApproval,
	ErrAlreadyInProgress,
	ErrNotRejected,
	ErrWorkflowClosed,
	ErrZeroEligibleApprovers,
	ErrNotEligible,
	ErrNotRequester,
	ErrInvalidAction,
	ErrRequestNotFound,
	ErrAlreadyDecided,
	ErrInvalidRequest,
	ErrInvalidStageTable,
	ErrStorageUnavailable,
}

// IsWorkflowError reports whether err carries one of the sentinel errors above.
func IsWorkflowError(err error) bool {
	for _, target := range workflowErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
