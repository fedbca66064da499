package domain

import "time"

// Task is one approver's work item for a stage. A stage fans out one task per
// eligible user; tasks correlate with approval records by
// (RequestKind, RequestID, Cycle, Stage).
type Task struct {
	ID          string
	AssigneeID  string
	RequestKind RequestKind
	RequestID   string
	Cycle       int
	Stage       int
	TaskType    TaskType
	Title       string
	Description string
	DueDate     time.Time
	Status      TaskStatus
	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Actionable reports whether the assignee can still act on the task.
// Overdue tasks stay actionable.
func (t *Task) Actionable() bool {
	return t.Status == TaskPending || t.Status == TaskOverdue
}

// IsPastDue reports whether a pending task has breached its SLA at now.
func (t *Task) IsPastDue(now time.Time) bool {
	return t.Status == TaskPending && t.DueDate.Before(now)
}

// NotificationIntent is handed to the notification sink. The engine does not
// persist it.
type NotificationIntent struct {
	Kind        NotificationKind
	UserID      string
	Title       string
	Message     string
	RelatedKind RequestKind
	RelatedID   string
}

// Notification is an intent persisted by the inbox sink.
type Notification struct {
	ID string
	NotificationIntent
	ReadAt    *time.Time
	CreatedAt time.Time
}

// RoleAssignment binds a user to the single role the directory resolves for it.
type RoleAssignment struct {
	UserID    string
	Role      Role
	CreatedAt time.Time
}
