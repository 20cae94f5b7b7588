package service

import (
	"context"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

var TaskEvents = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "tasks_events_total",
		Help: "Task lifecycle events by type",
	},
	[]string{"event"},
)

func init() {
	prometheus.MustRegister(TaskEvents)
}

// TaskService implements the task use cases. Every method takes the id of
// the authenticated user and only ever touches that user's tasks.
type TaskService struct {
	tasks    TaskStore
	pageSize int
	events   EventPublisher
}

func NewTaskService(tasks TaskStore, pageSize int, events EventPublisher) *TaskService {
	if pageSize <= 0 {
		pageSize = 4
	}
	return &TaskService{tasks: tasks, pageSize: pageSize, events: events}
}

func (s *TaskService) publish(userID int64, typ string, taskID int64) {
	TaskEvents.WithLabelValues(typ).Inc()
	if s.events != nil {
		s.events.Publish(userID, domain.TaskEvent{Type: typ, TaskID: taskID})
	}
}

// Create stores a new task owned by userID.
func (s *TaskService) Create(ctx context.Context, userID int64, in domain.TaskInput) (*domain.Task, error) {
	t := &domain.Task{UserID: userID}
	in.Apply(t)
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(userID, domain.EventTaskCreated, t.ID)
	return t, nil
}

// List returns one page of the user's active (done=false) or completed
// tasks. rawPage is the unparsed page parameter.
func (s *TaskService) List(ctx context.Context, userID int64, done bool, rawPage string) ([]*domain.Task, Page, error) {
	f := domain.TaskFilter{UserID: userID, Done: done}
	total, err := s.tasks.Count(ctx, f)
	if err != nil {
		return nil, Page{}, fmt.Errorf("count tasks: %w", err)
	}
	page := Paginate(total, rawPage, s.pageSize)
	tasks, err := s.tasks.List(ctx, f, page.Size, page.Offset())
	if err != nil {
		return nil, Page{}, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, page, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id int64) (*domain.Task, error) {
	return s.tasks.GetForOwner(ctx, id, userID)
}

// Update applies in to the task. Owner and creation date stay untouched.
func (s *TaskService) Update(ctx context.Context, userID, id int64, in domain.TaskInput) (*domain.Task, error) {
	t, err := s.tasks.GetForOwner(ctx, id, userID)
	if err != nil {
		return nil, err
	}
	in.Apply(t)
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(userID, domain.EventTaskUpdated, t.ID)
	return t, nil
}

// Complete marks the task done; completing a done task is a no-op.
func (s *TaskService) Complete(ctx context.Context, userID, id int64) error {
	if err := s.tasks.MarkDone(ctx, id, userID); err != nil {
		return err
	}
	s.publish(userID, domain.EventTaskCompleted, id)
	return nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id int64) error {
	if err := s.tasks.Delete(ctx, id, userID); err != nil {
		return err
	}
	s.publish(userID, domain.EventTaskDeleted, id)
	return nil
}
