package repository

import (
	"context"
	"errors"
	"fmt"

	"todo_webapp/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

const taskColumns = `id, user_id, title, description, important, done, creation_date, deadline_datetime`

func scanTask(row pgx.Row) (*domain.Task, error) {
	var t domain.Task
	if err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Important, &t.Done, &t.CreationDate, &t.DeadlineDatetime); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &t, nil
}

// Create inserts t. creation_date and done come from the column defaults.
func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, important, deadline_datetime)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, done, creation_date`,
		t.UserID, t.Title, t.Description, t.Important, t.DeadlineDatetime,
	).Scan(&t.ID, &t.Done, &t.CreationDate)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// GetForOwner returns domain.ErrNotFound both for missing ids and for tasks
// of another user.
func (r *TaskRepository) GetForOwner(ctx context.Context, id, userID int64) (*domain.Task, error) {
	return scanTask(r.db.QueryRow(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = $1 AND user_id = $2`, id, userID))
}

func (r *TaskRepository) Count(ctx context.Context, f domain.TaskFilter) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND done = $2`, f.UserID, f.Done,
	).Scan(&n)
	return n, err
}

// List orders by deadline, latest first, tasks without deadline last.
func (r *TaskRepository) List(ctx context.Context, f domain.TaskFilter, limit, offset int) ([]*domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+`
		 FROM tasks
		 WHERE user_id = $1 AND done = $2
		 ORDER BY deadline_datetime DESC NULLS LAST, id DESC
		 LIMIT $3 OFFSET $4`,
		f.UserID, f.Done, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

// Update writes the editable fields only; owner and creation date are
// never part of the statement.
func (r *TaskRepository) Update(ctx context.Context, t *domain.Task) error {
	res, err := r.db.Exec(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, important = $3, deadline_datetime = $4
		 WHERE id = $5 AND user_id = $6`,
		t.Title, t.Description, t.Important, t.DeadlineDatetime, t.ID, t.UserID,
	)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) MarkDone(ctx context.Context, id, userID int64) error {
	res, err := r.db.Exec(ctx, `UPDATE tasks SET done = TRUE WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, userID int64) error {
	res, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
