package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	domainuser "github.com/alanyang/repair-desk/internal/domain/user"
	portuser "github.com/alanyang/repair-desk/internal/port/user"
)

const uniqueViolation = "23505"

var userColumns = []string{"id", "name", "email", "image", "role", "password_hash", "task_ids", "created_at"}

// Repository implements port/user.Repository, WorkerDirectory and AssignmentWriter.
// The worker's task_ids array is the assignment source of truth; tasks.assigned_worker_id
// mirrors it and both are written in the same transaction.
type Repository struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

var (
	_ portuser.Repository       = (*Repository)(nil)
	_ portuser.WorkerDirectory  = (*Repository)(nil)
	_ portuser.AssignmentWriter = (*Repository)(nil)
)

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *Repository) Create(ctx context.Context, u domainuser.User) (domainuser.User, error) {
	if u.TaskIDs == nil {
		u.TaskIDs = []uuid.UUID{}
	}
	query, args, err := r.builder.
		Insert("users").
		Columns(userColumns...).
		Values(u.ID, u.Name, u.Email, u.Image, u.Role, u.PasswordHash, u.TaskIDs, u.CreatedAt).
		Suffix("RETURNING " + strings.Join(userColumns, ", ")).
		ToSql()
	if err != nil {
		return domainuser.User{}, fmt.Errorf("building insert: %w", err)
	}

	created, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domainuser.User{}, fmt.Errorf("user %s: %w", u.Email, domainuser.ErrEmailTaken)
		}
		return domainuser.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domainuser.User, error) {
	return r.getOne(ctx, sq.Expr("id = ?", id), id.String())
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (domainuser.User, error) {
	return r.getOne(ctx, sq.Eq{"email": email}, email)
}

func (r *Repository) getOne(ctx context.Context, pred sq.Sqlizer, ref string) (domainuser.User, error) {
	query, args, err := r.builder.Select(userColumns...).From("users").Where(pred).ToSql()
	if err != nil {
		return domainuser.User{}, fmt.Errorf("building select: %w", err)
	}

	u, err := scanUser(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domainuser.User{}, fmt.Errorf("user %s: %w", ref, domainuser.ErrNotFound)
		}
		return domainuser.User{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

func (r *Repository) List(ctx context.Context, filters domainuser.ListFilters) ([]domainuser.User, error) {
	q := r.builder.Select(userColumns...).From("users").OrderBy("created_at ASC", "id ASC")
	if filters.Role != nil {
		q = q.Where(sq.Eq{"role": string(*filters.Role)})
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

// ListByRole implements port/user.WorkerDirectory.
func (r *Repository) ListByRole(ctx context.Context, role domainuser.Role) ([]domainuser.User, error) {
	return r.List(ctx, domainuser.ListFilters{Role: &role})
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domainuser.ErrNotFound)
	}
	return nil
}

// AppendTask implements port/user.AssignmentWriter. Appending a task the worker
// already holds leaves the array unchanged. Any other worker still listing the
// task loses the reference in the same transaction, so a task is counted once.
func (r *Repository) AppendTask(ctx context.Context, workerID, taskID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var found bool
		err := tx.QueryRow(ctx, `
			UPDATE users
			SET task_ids = CASE WHEN $2 = ANY(task_ids) THEN task_ids ELSE array_append(task_ids, $2) END
			WHERE id = $1 AND role = 'worker'
			RETURNING true`, workerID, taskID).Scan(&found)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return fmt.Errorf("worker %s: %w", workerID, domainuser.ErrNotFound)
			}
			return fmt.Errorf("appending task to worker: %w", err)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE users SET task_ids = array_remove(task_ids, $2)
			WHERE id <> $1 AND $2 = ANY(task_ids)`, workerID, taskID); err != nil {
			return fmt.Errorf("dropping previous owner reference: %w", err)
		}

		tag, err := tx.Exec(ctx,
			`UPDATE tasks SET assigned_worker_id = $1, updated_at = NOW() WHERE id = $2`, workerID, taskID)
		if err != nil {
			return fmt.Errorf("recording task owner: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("task %s: %w", taskID, domaintask.ErrNotFound)
		}
		return nil
	})
}

// RemoveTask implements port/user.AssignmentWriter.
func (r *Repository) RemoveTask(ctx context.Context, workerID, taskID uuid.UUID) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE users SET task_ids = array_remove(task_ids, $2) WHERE id = $1`, workerID, taskID)
		if err != nil {
			return fmt.Errorf("removing task from worker: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("worker %s: %w", workerID, domainuser.ErrNotFound)
		}

		if _, err := tx.Exec(ctx, `
			UPDATE tasks SET assigned_worker_id = NULL, updated_at = NOW()
			WHERE id = $1 AND assigned_worker_id = $2`, taskID, workerID); err != nil {
			return fmt.Errorf("clearing task owner: %w", err)
		}
		return nil
	})
}

func scanUser(row pgx.Row) (domainuser.User, error) {
	var u domainuser.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Image, &u.Role, &u.PasswordHash, &u.TaskIDs, &u.CreatedAt)
	if u.TaskIDs == nil {
		u.TaskIDs = []uuid.UUID{}
	}
	return u, err
}

func scanUsers(rows pgx.Rows) ([]domainuser.User, error) {
	users := []domainuser.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user row: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}
	return users, nil
}
