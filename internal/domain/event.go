package domain

// Task event types pushed to the owner's live connections.
const (
	EventTaskCreated   = "task_created"
	EventTaskUpdated   = "task_updated"
	EventTaskCompleted = "task_completed"
	EventTaskDeleted   = "task_deleted"
)

type TaskEvent struct {
	Type   string `json:"type"`
	TaskID int64  `json:"task_id"`
}
