package types

import (
	"time"

	"github.com/google/uuid"
	"github.com/raxnet/patrol/internal/database/types/enum"
)

// Bounds on the number of completions a task may request.
const (
	MinTaskQuantity = 10
	MaxTaskQuantity = 500
)

// Task is a paid request for engagement on a target URL.
type Task struct {
	ID        uuid.UUID       `bun:",pk,type:uuid" json:"id"`
	OwnerID   uint64          `bun:",notnull"      json:"ownerId"`
	Type      enum.TaskType   `bun:",notnull"      json:"type"`
	TargetURL string          `bun:",notnull"      json:"targetUrl"`
	Reward    int64           `bun:",notnull"      json:"reward"`
	Quantity  int64           `bun:",notnull"      json:"quantity"`
	Completed int64           `bun:",notnull"      json:"completed"`
	Status    enum.TaskStatus `bun:",notnull"      json:"status"`
	CreatedAt time.Time       `bun:",notnull"      json:"createdAt"`
	UpdatedAt time.Time       `bun:",notnull"      json:"updatedAt"`
}

// Cost returns the points the owner pays to post the task.
func (t *Task) Cost() int64 {
	return t.Reward * t.Quantity
}

// IsFull reports whether every requested completion has been approved.
func (t *Task) IsFull() bool {
	return t.Completed >= t.Quantity
}

// Remaining returns the number of completions still open.
func (t *Task) Remaining() int64 {
	return max(t.Quantity-t.Completed, 0)
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

// TaskFilter narrows and orders the open task board.
type TaskFilter struct {
	ExcludeOwnerID uint64          // Owner whose tasks are hidden, 0 for none
	Type           *enum.TaskType  // nil for every type
	SortBy         enum.TaskSortBy // Defaults to newest
	Limit          int             // 0 for no limit
	Offset         int
}
