package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alexanderramin/tollgate/internal/directory"
	"github.com/alexanderramin/tollgate/internal/domain"
	"github.com/alexanderramin/tollgate/internal/repository"
)

// TaskFanout creates one approval task per user holding a stage's role.
type TaskFanout struct {
	logger *slog.Logger
}

func NewTaskFanout(logger *slog.Logger) *TaskFanout {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskFanout{logger: logger}
}

// FanoutResult lists the created tasks and the intents to send once the
// surrounding unit of work commits.
type FanoutResult struct {
	Tasks   []*domain.Task
	Intents []domain.NotificationIntent
	// Warning is ErrZeroEligibleApprovers when the role has no users. The
	// stage stays open.
	Warning error
}

// Fanout resolves the users holding cfg.RequiredRole through dir and stores
// their tasks for the given cycle through tasks. All tasks share title and description and are
// due at now + SLA. Nobody holding the role is not an error: the result
// carries a warning and an operator alert instead.
func (f *TaskFanout) Fanout(
	ctx context.Context,
	dir directory.Directory,
	tasks repository.TaskRepo,
	req *domain.Request,
	cfg domain.WorkflowStageConfig,
	cycle int,
	now time.Time,
) (*FanoutResult, error) {
	users, err := dir.UsersInRole(ctx, cfg.RequiredRole)
	if err != nil {
		return nil, fmt.Errorf("resolving %s approvers: %w", cfg.RequiredRole, err)
	}

	result := &FanoutResult{}
	if len(users) == 0 {
		result.Warning = fmt.Errorf("%w: %s stage %d requires %s", domain.ErrZeroEligibleApprovers,
			req.DisplayCode(), cfg.StageNumber, cfg.RequiredRole)
		f.logger.WarnContext(ctx, "stage opened without approvers",
			"request", req.DisplayCode(),
			"kind", string(req.Kind),
			"stage", cfg.StageNumber,
			"role", string(cfg.RequiredRole),
			"error", result.Warning)

		admins, err := dir.UsersInRole(ctx, domain.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("resolving admins: %w", err)
		}
		if len(admins) == 0 {
			admins = []string{""}
		}
		for _, admin := range admins {
			result.Intents = append(result.Intents, operatorAlertIntent(req, cfg, admin))
		}
		return result, nil
	}

	title := fmt.Sprintf("Approve %s %s (stage %d, %s)", req.Kind.DisplayName(), req.DisplayCode(),
		cfg.StageNumber, cfg.RequiredRole.DisplayName())
	description := fmt.Sprintf("%s from %s awaits %s approval within %dh.",
		requestSummary(req), req.RequesterID, cfg.RequiredRole.DisplayName(), cfg.SLAHours)
	due := now.Add(cfg.SLA())

	for _, user := range users {
		task := &domain.Task{
			ID:          uuid.New().String(),
			AssigneeID:  user,
			RequestKind: req.Kind,
			RequestID:   req.ID,
			Cycle:       cycle,
			Stage:       cfg.StageNumber,
			TaskType:    domain.TaskTypeApproval,
			Title:       title,
			Description: description,
			DueDate:     due,
			Status:      domain.TaskPending,
			CreatedAt:   now,
		}
		if err := tasks.Create(ctx, task); err != nil {
			return nil, fmt.Errorf("creating task for %s: %w", user, err)
		}
		result.Tasks = append(result.Tasks, task)
		result.Intents = append(result.Intents, taskAssignedIntent(req, task))
	}

	f.logger.DebugContext(ctx, "stage fanned out",
		"request", req.DisplayCode(),
		"cycle", cycle,
		"stage", cfg.StageNumber,
		"tasks", len(result.Tasks))
	return result, nil
}
