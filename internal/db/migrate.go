package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations. Statements are idempotent and re-run on
// every open.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE ADD COLUMN is re-run too; tolerate it.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// requestColumns is shared by both request tables. The status is stored in
// structured form; the display label is never persisted.
const requestColumns = `
		id             TEXT PRIMARY KEY,
		code           TEXT NOT NULL UNIQUE,
		requester_id   TEXT NOT NULL,
		amount         TEXT NOT NULL,
		currency       TEXT NOT NULL DEFAULT 'USD',
		status_outcome TEXT NOT NULL DEFAULT 'new'
		               CHECK(status_outcome IN ('new','draft','modified','in_progress','approved','rejected','changes_requested')),
		status_role    TEXT NOT NULL DEFAULT '',
		created_at     TEXT NOT NULL,
		updated_at     TEXT NOT NULL,`

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS investment_requests (` + requestColumns + `
		project_name   TEXT NOT NULL,
		category       TEXT NOT NULL DEFAULT '',
		description    TEXT NOT NULL DEFAULT '',
		horizon_months INTEGER NOT NULL DEFAULT 0
	)`,

	`CREATE TABLE IF NOT EXISTS cash_requests (` + requestColumns + `
		purpose        TEXT NOT NULL,
		payee          TEXT NOT NULL DEFAULT '',
		needed_by      TEXT
	)`,

	`CREATE INDEX IF NOT EXISTS idx_investment_requests_requester ON investment_requests(requester_id)`,
	`CREATE INDEX IF NOT EXISTS idx_cash_requests_requester ON cash_requests(requester_id)`,

	`CREATE TABLE IF NOT EXISTS request_sequences (
		kind     TEXT PRIMARY KEY,
		next_seq INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS approval_records (
		id            TEXT PRIMARY KEY,
		request_kind  TEXT NOT NULL CHECK(request_kind IN ('investment','cash_request')),
		request_id    TEXT NOT NULL,
		cycle         INTEGER NOT NULL DEFAULT 1 CHECK(cycle >= 1),
		stage         INTEGER NOT NULL CHECK(stage >= 1),
		approver_id   TEXT,
		approver_role TEXT NOT NULL DEFAULT '',
		status        TEXT NOT NULL DEFAULT 'pending'
		              CHECK(status IN ('pending','approved','rejected','changes_requested')),
		comments      TEXT NOT NULL DEFAULT '',
		approved_at   TEXT,
		created_at    TEXT NOT NULL
	)`,

	// At most one pending record per request; guards the duplicate-start race.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_records_one_pending
		ON approval_records(request_kind, request_id) WHERE status = 'pending'`,

	// A stage appears at most once per cycle.
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_records_cycle_stage
		ON approval_records(request_kind, request_id, cycle, stage)`,

	`CREATE TABLE IF NOT EXISTS tasks (
		id           TEXT PRIMARY KEY,
		assignee_id  TEXT NOT NULL,
		request_kind TEXT NOT NULL CHECK(request_kind IN ('investment','cash_request')),
		request_id   TEXT NOT NULL,
		cycle        INTEGER NOT NULL DEFAULT 1 CHECK(cycle >= 1),
		stage        INTEGER NOT NULL CHECK(stage >= 1),
		task_type    TEXT NOT NULL DEFAULT 'approval',
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		due_date     TEXT NOT NULL,
		status       TEXT NOT NULL DEFAULT 'pending'
		             CHECK(status IN ('pending','completed','overdue','superseded')),
		created_at   TEXT NOT NULL,
		completed_at TEXT
	)`,

	`ALTER TABLE tasks ADD COLUMN cycle INTEGER NOT NULL DEFAULT 1`,

	`CREATE INDEX IF NOT EXISTS idx_tasks_assignee ON tasks(assignee_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_request ON tasks(request_kind, request_id, cycle, stage)`,
	`CREATE INDEX IF NOT EXISTS idx_tasks_due ON tasks(status, due_date)`,

	`CREATE TABLE IF NOT EXISTS role_assignments (
		user_id    TEXT PRIMARY KEY,
		role       TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_role_assignments_role ON role_assignments(role)`,

	`CREATE TABLE IF NOT EXISTS notifications (
		id           TEXT PRIMARY KEY,
		user_id      TEXT NOT NULL DEFAULT '',
		kind         TEXT NOT NULL,
		title        TEXT NOT NULL,
		message      TEXT NOT NULL DEFAULT '',
		related_kind TEXT NOT NULL DEFAULT '',
		related_id   TEXT NOT NULL DEFAULT '',
		read_at      TEXT,
		created_at   TEXT NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at)`,
}
