package enum

// TaskType represents the kind of engagement a task asks for.
//
//go:generate go tool enumer -type=TaskType -trimprefix=TaskType
type TaskType int

const (
	// TaskTypeFollow asks members to follow the target profile.
	TaskTypeFollow TaskType = iota
	// TaskTypeLike asks members to like the target post.
	TaskTypeLike
	// TaskTypeShare asks members to share the target post.
	TaskTypeShare
	// TaskTypeView asks members to view the target content.
	TaskTypeView
)

// Reward returns the points paid per approved completion, or 0 for unknown types.
func (t TaskType) Reward() int64 {
	switch t {
	case TaskTypeFollow:
		return 5
	case TaskTypeLike:
		return 1
	case TaskTypeShare:
		return 3
	case TaskTypeView:
		return 1
	default:
		return 0
	}
}

// TaskStatus represents the lifecycle state of a task.
//
//go:generate go tool enumer -type=TaskStatus -trimprefix=TaskStatus
type TaskStatus int

const (
	// TaskStatusActive accepts new proof submissions.
	TaskStatusActive TaskStatus = iota
	// TaskStatusCompleted has reached its requested quantity.
	TaskStatusCompleted
)

// TaskSortBy represents the ordering of the open task board.
//
//go:generate go tool enumer -type=TaskSortBy -trimprefix=TaskSortBy
type TaskSortBy int

const (
	// TaskSortByNewest orders tasks by creation time, newest first.
	TaskSortByNewest TaskSortBy = iota
	// TaskSortByReward orders tasks by reward, highest first.
	TaskSortByReward
)
