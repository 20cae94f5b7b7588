package service

import (
	"context"
	"time"

	"todo_webapp/internal/domain"
)

// UserStore is implemented by repository.UserRepository and memory.UserRepository.
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	TouchLastLogin(ctx context.Context, id int64, at time.Time) error
}

type TaskStore interface {
	Create(ctx context.Context, t *domain.Task) error
	GetForOwner(ctx context.Context, id, userID int64) (*domain.Task, error)
	Count(ctx context.Context, f domain.TaskFilter) (int, error)
	List(ctx context.Context, f domain.TaskFilter, limit, offset int) ([]*domain.Task, error)
	Update(ctx context.Context, t *domain.Task) error
	MarkDone(ctx context.Context, id, userID int64) error
	Delete(ctx context.Context, id, userID int64) error
}

type AuditStore interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	GetByUserID(ctx context.Context, userID int64, limit int) ([]*domain.AuditLog, error)
}

// EventPublisher delivers task events to the owner's open connections.
type EventPublisher interface {
	Publish(userID int64, ev domain.TaskEvent)
}
