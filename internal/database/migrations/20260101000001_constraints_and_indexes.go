package migrations

import (
	"context"
	"fmt"

	"github.com/raxnet/patrol/internal/database/types/enum"
	"github.com/uptrace/bun"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			-- Balances and counters never go negative
			ALTER TABLE users
			ADD CONSTRAINT chk_users_points_non_negative CHECK (points >= 0),
			ADD CONSTRAINT chk_users_reputation_non_negative CHECK (reputation >= 0);

			ALTER TABLE tasks
			ADD CONSTRAINT fk_tasks_owner
				FOREIGN KEY (owner_id) REFERENCES users (id),
			ADD CONSTRAINT chk_tasks_completed_within_quantity
				CHECK (completed >= 0 AND completed <= quantity);

			ALTER TABLE task_submissions
			ADD CONSTRAINT fk_task_submissions_task
				FOREIGN KEY (task_id) REFERENCES tasks (id),
			ADD CONSTRAINT fk_task_submissions_submitter
				FOREIGN KEY (submitter_id) REFERENCES users (id);

			ALTER TABLE submission_verdicts
			ADD CONSTRAINT fk_submission_verdicts_submission
				FOREIGN KEY (submission_id) REFERENCES task_submissions (id) ON DELETE CASCADE,
			ADD CONSTRAINT fk_submission_verdicts_reviewer
				FOREIGN KEY (reviewer_id) REFERENCES users (id);

			ALTER TABLE ledger_entries
			ADD CONSTRAINT fk_ledger_entries_user
				FOREIGN KEY (user_id) REFERENCES users (id);

			-- One open submission per member and task
			CREATE UNIQUE INDEX IF NOT EXISTS idx_task_submissions_open
			ON task_submissions (task_id, submitter_id)
			WHERE status <> ?;

			-- Task board
			CREATE INDEX IF NOT EXISTS idx_tasks_active_created
			ON tasks (created_at DESC)
			WHERE status = ?;

			CREATE INDEX IF NOT EXISTS idx_tasks_active_reward
			ON tasks (reward DESC, created_at DESC)
			WHERE status = ?;

			CREATE INDEX IF NOT EXISTS idx_tasks_owner
			ON tasks (owner_id, created_at DESC);

			-- Patrol queue
			CREATE INDEX IF NOT EXISTS idx_task_submissions_pending
			ON task_submissions (created_at ASC)
			WHERE status = ?;

			CREATE INDEX IF NOT EXISTS idx_task_submissions_submitter
			ON task_submissions (submitter_id, created_at DESC);

			CREATE INDEX IF NOT EXISTS idx_submission_verdicts_reviewer
			ON submission_verdicts (reviewer_id);

			-- Leaderboard and history
			CREATE INDEX IF NOT EXISTS idx_users_points
			ON users (points DESC, id ASC);

			CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_created
			ON ledger_entries (user_id, created_at DESC);
		`,
			enum.SubmissionStatusRejected,
			enum.TaskStatusActive,
			enum.TaskStatusActive,
			enum.SubmissionStatusPending,
		).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create constraints and indexes: %w", err)
		}

		return nil
	}, func(ctx context.Context, db *bun.DB) error {
		_, err := db.NewRaw(`
			DROP INDEX IF EXISTS idx_ledger_entries_user_created;
			DROP INDEX IF EXISTS idx_users_points;
			DROP INDEX IF EXISTS idx_submission_verdicts_reviewer;
			DROP INDEX IF EXISTS idx_task_submissions_submitter;
			DROP INDEX IF EXISTS idx_task_submissions_pending;
			DROP INDEX IF EXISTS idx_tasks_owner;
			DROP INDEX IF EXISTS idx_tasks_active_reward;
			DROP INDEX IF EXISTS idx_tasks_active_created;
			DROP INDEX IF EXISTS idx_task_submissions_open;

			ALTER TABLE ledger_entries DROP CONSTRAINT IF EXISTS fk_ledger_entries_user;
			ALTER TABLE submission_verdicts
			DROP CONSTRAINT IF EXISTS fk_submission_verdicts_reviewer,
			DROP CONSTRAINT IF EXISTS fk_submission_verdicts_submission;
			ALTER TABLE task_submissions
			DROP CONSTRAINT IF EXISTS fk_task_submissions_submitter,
			DROP CONSTRAINT IF EXISTS fk_task_submissions_task;
			ALTER TABLE tasks
			DROP CONSTRAINT IF EXISTS chk_tasks_completed_within_quantity,
			DROP CONSTRAINT IF EXISTS fk_tasks_owner;
			ALTER TABLE users
			DROP CONSTRAINT IF EXISTS chk_users_reputation_non_negative,
			DROP CONSTRAINT IF EXISTS chk_users_points_non_negative;
		`).Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to drop constraints and indexes: %w", err)
		}

		return nil
	})
}
