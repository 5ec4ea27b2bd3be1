package database

import (
	"github.com/raxnet/patrol/internal/database/models"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

// Repository provides access to all database models.
type Repository struct {
	user       *models.UserModel
	task       *models.TaskModel
	submission *models.SubmissionModel
	ledger     *models.LedgerModel
}

// NewRepository creates a new repository instance with all models.
func NewRepository(db *bun.DB, logger *zap.Logger) *Repository {
	return &Repository{
		user:       models.NewUser(db, logger),
		task:       models.NewTask(db, logger),
		submission: models.NewSubmission(db, logger),
		ledger:     models.NewLedger(db, logger),
	}
}

// User returns the user model repository.
func (r *Repository) User() *models.UserModel {
	return r.user
}

// Task returns the task model repository.
func (r *Repository) Task() *models.TaskModel {
	return r.task
}

// Submission returns the submission model repository.
func (r *Repository) Submission() *models.SubmissionModel {
	return r.submission
}

// Ledger returns the ledger model repository.
func (r *Repository) Ledger() *models.LedgerModel {
	return r.ledger
}
