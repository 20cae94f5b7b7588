package domain

import "time"

// Task is a to-do item owned by exactly one user. UserID and CreationDate
// are fixed at insert time.
type Task struct {
	ID               int64      `db:"id" json:"id"`
	UserID           int64      `db:"user_id" json:"-"`
	Title            string     `db:"title" json:"title"`
	Description      string     `db:"description" json:"description"`
	Important        bool       `db:"important" json:"important"`
	Done             bool       `db:"done" json:"done"`
	CreationDate     time.Time  `db:"creation_date" json:"creation_date"`
	DeadlineDatetime *time.Time `db:"deadline_datetime" json:"deadline_datetime,omitempty"`
}

// TaskInput holds the user-editable fields of a Task.
type TaskInput struct {
	Title            string
	Description      string
	Important        bool
	DeadlineDatetime *time.Time
}

// Apply copies the editable fields onto t.
func (in TaskInput) Apply(t *Task) {
	t.Title = in.Title
	t.Description = in.Description
	t.Important = in.Important
	t.DeadlineDatetime = in.DeadlineDatetime
}

// TaskFilter selects one of the two task lists of a user.
type TaskFilter struct {
	UserID int64
	Done   bool
}
