// Package memory is an in-process implementation of the repositories, used
// in DEV_MODE without a database and by the service and handler tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"todo_webapp/internal/domain"
)

// DB holds all tables behind one mutex so user deletion can cascade.
type DB struct {
	mu      sync.Mutex
	users   map[int64]domain.User
	tasks   map[int64]domain.Task
	audit   []domain.AuditLog
	userSeq int64
	taskSeq int64
	auditSq int64
	now     func() time.Time
}

func New() *DB {
	return &DB{
		users: make(map[int64]domain.User),
		tasks: make(map[int64]domain.Task),
		now:   time.Now,
	}
}

func (db *DB) Users() *UserRepository { return &UserRepository{db: db} }
func (db *DB) Tasks() *TaskRepository { return &TaskRepository{db: db} }
func (db *DB) Audit() *AuditRepository { return &AuditRepository{db: db} }

type UserRepository struct{ db *DB }

func (r *UserRepository) Create(_ context.Context, u *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u.Email = strings.ToLower(u.Email)
	for _, existing := range r.db.users {
		if existing.Username == u.Username {
			return domain.ErrUsernameTaken
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailTaken
		}
	}
	r.db.userSeq++
	u.ID = r.db.userSeq
	u.DateJoined = r.db.now()
	r.db.users[u.ID] = *u
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id int64) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *UserRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	for _, u := range r.db.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *UserRepository) TouchLastLogin(_ context.Context, id int64, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	u, ok := r.db.users[id]
	if !ok {
		return domain.ErrNotFound
	}
	u.LastLogin = &at
	r.db.users[id] = u
	return nil
}

func (r *UserRepository) Delete(_ context.Context, id int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if _, ok := r.db.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.db.users, id)
	for tid, t := range r.db.tasks {
		if t.UserID == id {
			delete(r.db.tasks, tid)
		}
	}
	kept := r.db.audit[:0]
	for _, l := range r.db.audit {
		if l.UserID == nil || *l.UserID != id {
			kept = append(kept, l)
		}
	}
	r.db.audit = kept
	return nil
}

type TaskRepository struct{ db *DB }

func (r *TaskRepository) Create(_ context.Context, t *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.taskSeq++
	t.ID = r.db.taskSeq
	t.Done = false
	t.CreationDate = r.db.now()
	r.db.tasks[t.ID] = *t
	return nil
}

func (r *TaskRepository) GetForOwner(_ context.Context, id, userID int64) (*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tasks[id]
	if !ok || t.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

func (r *TaskRepository) filter(f domain.TaskFilter) []domain.Task {
	var res []domain.Task
	for _, t := range r.db.tasks {
		if t.UserID == f.UserID && t.Done == f.Done {
			res = append(res, t)
		}
	}
	sort.Slice(res, func(i, j int) bool {
		a, b := res[i].DeadlineDatetime, res[j].DeadlineDatetime
		switch {
		case a == nil && b == nil:
			return res[i].ID > res[j].ID
		case a == nil:
			return false
		case b == nil:
			return true
		case a.Equal(*b):
			return res[i].ID > res[j].ID
		default:
			return a.After(*b)
		}
	})
	return res
}

func (r *TaskRepository) Count(_ context.Context, f domain.TaskFilter) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.filter(f)), nil
}

func (r *TaskRepository) List(_ context.Context, f domain.TaskFilter, limit, offset int) ([]*domain.Task, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	all := r.filter(f)
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	res := make([]*domain.Task, 0, end-offset)
	for i := offset; i < end; i++ {
		t := all[i]
		res = append(res, &t)
	}
	return res, nil
}

func (r *TaskRepository) Update(_ context.Context, t *domain.Task) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	stored, ok := r.db.tasks[t.ID]
	if !ok || stored.UserID != t.UserID {
		return domain.ErrNotFound
	}
	stored.Title = t.Title
	stored.Description = t.Description
	stored.Important = t.Important
	stored.DeadlineDatetime = t.DeadlineDatetime
	r.db.tasks[t.ID] = stored
	return nil
}

func (r *TaskRepository) MarkDone(_ context.Context, id, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	t.Done = true
	r.db.tasks[id] = t
	return nil
}

func (r *TaskRepository) Delete(_ context.Context, id, userID int64) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	t, ok := r.db.tasks[id]
	if !ok || t.UserID != userID {
		return domain.ErrNotFound
	}
	delete(r.db.tasks, id)
	return nil
}

type AuditRepository struct{ db *DB }

func (r *AuditRepository) Create(_ context.Context, log *domain.AuditLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	r.db.auditSq++
	log.ID = r.db.auditSq
	log.CreatedAt = r.db.now()
	r.db.audit = append(r.db.audit, *log)
	return nil
}

func (r *AuditRepository) GetByUserID(_ context.Context, userID int64, limit int) ([]*domain.AuditLog, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	var res []*domain.AuditLog
	for i := len(r.db.audit) - 1; i >= 0 && len(res) < limit; i-- {
		l := r.db.audit[i]
		if l.UserID != nil && *l.UserID == userID {
			res = append(res, &l)
		}
	}
	return res, nil
}
