package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/druedada/projecte-final/internal/ids"
	"github.com/druedada/projecte-final/internal/model"
)

type TaskStore struct {
	db      *sql.DB
	dialect Dialect
}

func New(db *sql.DB, dialect Dialect) *TaskStore {
	return &TaskStore{db: db, dialect: dialect}
}

// Open opens a connection pool for dialect. It does not contact the
// database; callers ping (store.WaitReady) and then call Migrate.
func Open(dialect Dialect, dsn string) (*TaskStore, error) {
	db, err := sql.Open(dialect.DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	if dialect.positional {
		// SQLite only supports one writer at a time
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}
	return New(db, dialect), nil
}

// Migrate creates the tasks table if it does not exist.
func (s *TaskStore) Migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(s.dialect.Schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect.Name, err)
		}
	}
	return nil
}

func (s *TaskStore) Close() error {
	return s.db.Close()
}

func (s *TaskStore) PingContext(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *TaskStore) Create(ctx context.Context, t model.Task) (model.Task, error) {
	const q = `
INSERT INTO tasks (id, title, description, status, priority, due_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
`
	t.ID = ids.NewID()
	t.IsNew = false
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(q),
		t.ID,
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullTime(t.DueDate),
		t.CreatedAt.UTC(),
		t.UpdatedAt.UTC(),
	)
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

func (s *TaskStore) List(ctx context.Context) ([]model.Task, error) {
	const q = `
SELECT id, title, description, status, priority, due_date, created_at, updated_at
FROM tasks
ORDER BY created_at DESC;
`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TaskStore) Get(ctx context.Context, id string) (model.Task, error) {
	const q = `
SELECT id, title, description, status, priority, due_date, created_at, updated_at
FROM tasks
WHERE id = $1;
`
	t, err := scanTask(s.db.QueryRowContext(ctx, s.dialect.rebind(q), id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, err
	}
	return t, nil
}

func (s *TaskStore) Update(ctx context.Context, t model.Task) (model.Task, error) {
	const q = `
UPDATE tasks
SET title = $1,
    description = $2,
    status = $3,
    priority = $4,
    due_date = $5,
    updated_at = $6
WHERE id = $7;
`
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(q),
		t.Title,
		t.Description,
		string(t.Status),
		string(t.Priority),
		nullTime(t.DueDate),
		t.UpdatedAt.UTC(),
		t.ID,
	)
	if err != nil {
		return model.Task{}, err
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return model.Task{}, err
	}
	if ra == 0 {
		return model.Task{}, model.ErrNotFound
	}
	return s.Get(ctx, t.ID)
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM tasks WHERE id = $1;`
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(q), id)
	if err != nil {
		return err
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if ra == 0 {
		return model.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (model.Task, error) {
	var (
		t        model.Task
		status   string
		priority string
		due      sql.NullTime
	)
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&priority,
		&due,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return model.Task{}, err
	}
	t.Status = model.Status(status)
	t.Priority = model.Priority(priority)
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	return t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
