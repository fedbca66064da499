package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tollgate/internal/db"
	"github.com/alexanderramin/tollgate/internal/directory"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/notify"
	"github.com/alexanderramin/tollgate/internal/repository"
	"github.com/alexanderramin/tollgate/internal/tracing"
	"github.com/alexanderramin/tollgate/internal/workflow"
)

type workflowEngine struct {
	registry  *workflow.Registry
	dir       directory.Directory
	approvals repository.ApprovalRepo
	uow       db.UnitOfWork

	fanout            *TaskFanout
	sink              notify.Sink
	logger            *slog.Logger
	observer          UseCaseObserver
	now               func() time.Time
	checkEligibility  bool
	supersedeSiblings bool
}

// EngineOption configures the workflow engine.
type EngineOption func(*workflowEngine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *workflowEngine) { e.now = now }
}

func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *workflowEngine) { e.logger = logger }
}

func WithObserver(obs UseCaseObserver) EngineOption {
	return func(e *workflowEngine) { e.observer = obs }
}

func WithSink(sink notify.Sink) EngineOption {
	return func(e *workflowEngine) { e.sink = sink }
}

// WithEligibilityCheck controls whether an actor must hold the pending
// stage's role. Enabled by default.
func WithEligibilityCheck(enabled bool) EngineOption {
	return func(e *workflowEngine) { e.checkEligibility = enabled }
}

// WithSiblingSupersede controls whether other approvers' open tasks are
// superseded once a stage is decided. Enabled by default.
func WithSiblingSupersede(enabled bool) EngineOption {
	return func(e *workflowEngine) { e.supersedeSiblings = enabled }
}

// NewWorkflowEngine wires the engine. approvals is used for reads outside a
// unit of work; every write goes through uow with tx-scoped repositories.
func NewWorkflowEngine(
	registry *workflow.Registry,
	dir directory.Directory,
	approvals repository.ApprovalRepo,
	uow db.UnitOfWork,
	opts ...EngineOption,
) WorkflowEngine {
	e := &workflowEngine{
		registry:          registry,
		dir:               dir,
		approvals:         approvals,
		uow:               uow,
		sink:              notify.Noop{},
		logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer:          NoopUseCaseObserver{},
		now:               func() time.Time { return time.Now().UTC() },
		checkEligibility:  true,
		supersedeSiblings: true,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.fanout = NewTaskFanout(e.logger)
	return e
}

func (e *workflowEngine) StartWorkflow(ctx context.Context, kind domain.RequestKind, requestID string) (opened *StageOpened, err error) {
	startedAt := time.Now()
	fields := map[string]any{"kind": string(kind), "request_id": requestID}
	defer observe(ctx, e.observer, "start-workflow", startedAt, fields, &err)
	ctx, span := tracing.Start(ctx, "workflow.start", map[string]string{"request.kind": string(kind), "request.id": requestID})
	defer func() { tracing.End(span, err) }()

	first, err := e.registry.Stage(kind, 1)
	if err != nil {
		return nil, err
	}

	var intents []domain.NotificationIntent
	err = e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		requests, err := repository.NewSQLiteRequestRepo(tx, kind)
		if err != nil {
			return err
		}
		req, err := requests.GetByID(ctx, requestID)
		if err != nil {
			return notFoundAs(err, domain.ErrRequestNotFound, "%s %s", kind, requestID)
		}

		approvals := repository.NewSQLiteApprovalRepo(tx)
		pending, err := approvals.CountPending(ctx, kind, requestID)
		if err != nil {
			return err
		}
		if pending > 0 {
			return fmt.Errorf("%w: %s", domain.ErrAlreadyInProgress, req.DisplayCode())
		}
		if !req.Status.CanStart() {
			return fmt.Errorf("%w: %s is %s", domain.ErrWorkflowClosed, req.DisplayCode(), req.Status)
		}

		opened, intents, err = e.openStage(ctx, tx, req, first, 0)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	fields["warning"] = opened.Warning != nil
	fields["tasks"] = len(opened.Tasks)
	e.emit(ctx, intents)
	return opened, nil
}

// openStage creates the pending record for cfg and fans out its tasks. A
// cycle of 0 starts a new cycle after the latest one.
func (e *workflowEngine) openStage(
	ctx context.Context,
	tx db.DBTX,
	req *domain.Request,
	cfg domain.WorkflowStageConfig,
	cycle int,
) (*StageOpened, []domain.NotificationIntent, error) {
	approvals := repository.NewSQLiteApprovalRepo(tx)
	if cycle == 0 {
		latest, err := approvals.LatestCycle(ctx, req.Kind, req.ID)
		if err != nil {
			return nil, nil, err
		}
		cycle = latest + 1
	}

	now := e.now()
	rec := &domain.ApprovalRecord{
		ID:           uuid.New().String(),
		RequestKind:  req.Kind,
		RequestID:    req.ID,
		Cycle:        cycle,
		Stage:        cfg.StageNumber,
		ApproverRole: cfg.RequiredRole,
		Status:       domain.ApprovalPending,
		CreatedAt:    now,
	}
	if err := approvals.Create(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, nil, fmt.Errorf("%w: %s", domain.ErrAlreadyInProgress, req.DisplayCode())
		}
		return nil, nil, err
	}

	res, err := e.fanout.Fanout(ctx, directory.Bind(e.dir, tx), repository.NewSQLiteTaskRepo(tx), req, cfg, cycle, now)
	if err != nil {
		return nil, nil, err
	}

	e.logger.InfoContext(ctx, "stage opened",
		"request", req.DisplayCode(),
		"cycle", cycle,
		"stage", cfg.StageNumber,
		"role", string(cfg.RequiredRole),
		"tasks", len(res.Tasks))
	return &StageOpened{Record: rec, Tasks: res.Tasks, Warning: res.Warning}, res.Intents, nil
}

func (e *workflowEngine) ProcessDecision(ctx context.Context, in DecisionInput) (result *DecisionResult, err error) {
	startedAt := time.Now()
	fields := map[string]any{
		"kind":       string(in.Kind),
		"request_id": in.RequestID,
		"actor":      in.ActorID,
		"action":     string(in.Action),
	}
	defer observe(ctx, e.observer, "process-decision", startedAt, fields, &err)
	ctx, span := tracing.Start(ctx, "workflow.decide", map[string]string{
		"request.kind": string(in.Kind),
		"request.id":   in.RequestID,
		"action":       string(in.Action),
	})
	defer func() { tracing.End(span, err) }()

	if _, err = e.registry.Stages(in.Kind); err != nil {
		return nil, err
	}
	if in.Action, err = domain.ParseAction(string(in.Action)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.ActorID) == "" {
		return nil, fmt.Errorf("%w: actor is required", domain.ErrInvalidRequest)
	}

	// The pending record is loaded before the unit of work. Its ID pins the
	// conditional update, so a concurrent winner leaves this call with
	// ErrNoPendingApproval rather than deciding the next stage.
	pending, err := e.approvals.GetPending(ctx, in.Kind, in.RequestID)
	if err != nil {
		return nil, storageErr(notFoundAs(err, domain.ErrNoPendingApproval, "%s %s", in.Kind, in.RequestID))
	}
	if in.Stage != 0 && in.Stage != pending.Stage {
		return nil, fmt.Errorf("%w: stage %d is not pending (stage %d is)", domain.ErrNoPendingApproval, in.Stage, pending.Stage)
	}
	stageCfg, err := e.registry.Stage(in.Kind, pending.Stage)
	if err != nil {
		return nil, err
	}

	role, err := e.resolveActorRole(ctx, in.ActorID, stageCfg)
	if err != nil {
		return nil, storageErr(err)
	}

	next, hasNext, err := e.registry.Next(in.Kind, pending.Stage)
	if err != nil {
		return nil, err
	}
	status, err := domain.StatusForDecision(in.Action, role, !hasNext)
	if err != nil {
		return nil, err
	}

	decided := *pending
	if err = decided.Decide(in.ActorID, role, in.Action, strings.TrimSpace(in.Comments), e.now()); err != nil {
		return nil, err
	}

	var (
		intents []domain.NotificationIntent
		opened  *StageOpened
		req     *domain.Request
	)
	err = e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		requests, err := repository.NewSQLiteRequestRepo(tx, in.Kind)
		if err != nil {
			return err
		}
		req, err = requests.GetByID(ctx, in.RequestID)
		if err != nil {
			return notFoundAs(err, domain.ErrRequestNotFound, "%s %s", in.Kind, in.RequestID)
		}

		changed, err := repository.NewSQLiteApprovalRepo(tx).Decide(ctx, &decided)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: stage %d of %s was decided concurrently", domain.ErrNoPendingApproval, pending.Stage, req.DisplayCode())
		}

		at := *decided.ApprovedAt
		tasks := repository.NewSQLiteTaskRepo(tx)
		if _, err := tasks.CompleteForAssignee(ctx, in.Kind, in.RequestID, pending.Cycle, pending.Stage, in.ActorID, at); err != nil {
			return err
		}
		if e.supersedeSiblings {
			if _, err := tasks.SupersedeStage(ctx, in.Kind, in.RequestID, pending.Cycle, pending.Stage, at); err != nil {
				return err
			}
		}

		if err := requests.UpdateStatus(ctx, in.RequestID, status); err != nil {
			return err
		}
		req.Status = status

		switch in.Action {
		case domain.ActionApprove:
			if !hasNext {
				intents = append(intents, requestApprovedIntent(req))
				return nil
			}
			var stageIntents []domain.NotificationIntent
			opened, stageIntents, err = e.openStage(ctx, tx, req, next, pending.Cycle)
			intents = append(intents, stageIntents...)
			return err
		case domain.ActionReject:
			intents = append(intents, requestRejectedIntent(req, status, decided.Comments))
		case domain.ActionChangesRequested:
			intents = append(intents, changesRequestedIntent(req, role, decided.Comments))
		}
		return nil
	})
	if err != nil {
		return nil, storageErr(err)
	}

	e.emit(ctx, intents)

	result = &DecisionResult{
		Success:   true,
		Record:    &decided,
		Status:    status,
		NextStage: opened,
		Message:   decisionMessage(req, &decided, status, opened),
	}
	fields["stage"] = pending.Stage
	fields["status"] = status.String()
	return result, nil
}

// resolveActorRole looks up the actor's role. With the eligibility check
// off, an unknown actor decides without a role and the label is unqualified.
func (e *workflowEngine) resolveActorRole(ctx context.Context, actorID string, stage domain.WorkflowStageConfig) (domain.Role, error) {
	role, err := e.dir.RoleOf(ctx, actorID)
	if err != nil {
		if !errors.Is(err, directory.ErrUnknownUser) {
			return "", err
		}
		if e.checkEligibility {
			return "", fmt.Errorf("%w: %s has no role, stage %d requires %s", domain.ErrNotEligible, actorID, stage.StageNumber, stage.RequiredRole)
		}
		return "", nil
	}
	if e.checkEligibility && role != stage.RequiredRole {
		return "", fmt.Errorf("%w: %s is %s, stage %d requires %s", domain.ErrNotEligible, actorID, role, stage.StageNumber, stage.RequiredRole)
	}
	return role, nil
}

func decisionMessage(req *domain.Request, rec *domain.ApprovalRecord, status domain.RequestStatus, opened *StageOpened) string {
	msg := fmt.Sprintf("%s stage %d: %s; request is now %s", req.DisplayCode(), rec.Stage, rec.Label(), status)
	if opened == nil {
		return msg
	}
	msg += fmt.Sprintf("; stage %d opened for %s with %d task(s)", opened.Record.Stage,
		opened.Record.ApproverRole.DisplayName(), len(opened.Tasks))
	if opened.Warning != nil {
		msg += " (no eligible approvers, operator alerted)"
	}
	return msg
}

func (e *workflowEngine) Resubmit(ctx context.Context, kind domain.RequestKind, requestID, requesterID string) (opened *StageOpened, err error) {
	startedAt := time.Now()
	fields := map[string]any{"kind": string(kind), "request_id": requestID, "requester": requesterID}
	defer observe(ctx, e.observer, "resubmit", startedAt, fields, &err)
	ctx, span := tracing.Start(ctx, "workflow.resubmit", map[string]string{"request.kind": string(kind), "request.id": requestID})
	defer func() { tracing.End(span, err) }()

	first, err := e.registry.Stage(kind, 1)
	if err != nil {
		return nil, err
	}

	var intents []domain.NotificationIntent
	err = e.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		requests, err := repository.NewSQLiteRequestRepo(tx, kind)
		if err != nil {
			return err
		}
		req, err := requests.GetByID(ctx, requestID)
		if err != nil {
			return notFoundAs(err, domain.ErrRequestNotFound, "%s %s", kind, requestID)
		}
		if req.RequesterID != requesterID {
			return fmt.Errorf("%w: %s belongs to %s", domain.ErrNotRequester, req.DisplayCode(), req.RequesterID)
		}
		if !req.Status.CanResubmit() {
			return fmt.Errorf("%w: %s is %s", domain.ErrNotRejected, req.DisplayCode(), req.Status)
		}

		changed, err := requests.UpdateStatusIf(ctx, requestID, domain.StatusModified,
			domain.OutcomeRejected, domain.OutcomeChangesRequested)
		if err != nil {
			return err
		}
		if !changed {
			return fmt.Errorf("%w: %s changed concurrently", domain.ErrNotRejected, req.DisplayCode())
		}
		req.Status = domain.StatusModified

		opened, intents, err = e.openStage(ctx, tx, req, first, 0)
		return err
	})
	if err != nil {
		return nil, storageErr(err)
	}

	fields["cycle"] = opened.Record.Cycle
	e.emit(ctx, intents)
	return opened, nil
}

func (e *workflowEngine) QueryApprovalHistory(ctx context.Context, kind domain.RequestKind, requestID string) ([]*domain.ApprovalRecord, error) {
	if _, err := e.registry.Stages(kind); err != nil {
		return nil, err
	}
	recs, err := e.approvals.ListByRequest(ctx, kind, requestID)
	if err != nil {
		return nil, storageErr(err)
	}
	return recs, nil
}

// emit hands intents to the sink after the state change committed. Sink
// failures are logged only.
func (e *workflowEngine) emit(ctx context.Context, intents []domain.NotificationIntent) {
	for _, intent := range intents {
		if err := e.sink.Notify(ctx, intent); err != nil {
			e.logger.WarnContext(ctx, "notification delivery failed",
				"kind", string(intent.Kind),
				"user_id", intent.UserID,
				"related_id", intent.RelatedID,
				"error", err)
		}
	}
}
