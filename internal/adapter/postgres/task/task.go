package task

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domaintask "github.com/alanyang/repair-desk/internal/domain/task"
	porttask "github.com/alanyang/repair-desk/internal/port/task"
)

var _ porttask.Repository = (*Repository)(nil)

var taskColumns = []string{
	"id", "description", "customer_name", "customer_phone", "laptop_brand", "laptop_model",
	"total_cost", "status", "assigned_worker_id", "created_at", "updated_at",
}

// uuid.UUID is a byte array, which sq.Eq would expand into an IN list,
// so uuid columns are matched with sq.Expr.
type Repository struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

func (r *Repository) Create(ctx context.Context, t domaintask.Task) (domaintask.Task, error) {
	query, args, err := r.builder.
		Insert("tasks").
		Columns(taskColumns...).
		Values(t.ID, t.Description, t.CustomerName, t.CustomerPhone, t.LaptopBrand, t.LaptopModel,
			t.TotalCost, t.Status, t.AssignedWorkerID, t.CreatedAt, t.UpdatedAt).
		Suffix("RETURNING " + strings.Join(taskColumns, ", ")).
		ToSql()
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("building insert: %w", err)
	}

	created, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("inserting task: %w", err)
	}
	return created, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domaintask.Task, error) {
	query, args, err := r.builder.
		Select(taskColumns...).
		From("tasks").
		Where(sq.Expr("id = ?", id)).
		ToSql()
	if err != nil {
		return domaintask.Task{}, fmt.Errorf("building select: %w", err)
	}

	t, err := scanTask(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domaintask.Task{}, fmt.Errorf("task %s: %w", id, domaintask.ErrNotFound)
		}
		return domaintask.Task{}, fmt.Errorf("querying task: %w", err)
	}
	return t, nil
}

func (r *Repository) List(ctx context.Context, filters domaintask.ListFilters) ([]domaintask.Task, error) {
	q := r.builder.Select(taskColumns...).From("tasks")

	if filters.Status != nil {
		q = q.Where(sq.Eq{"status": string(*filters.Status)})
	}
	if filters.AssignedTo != nil {
		q = q.Where(sq.Expr("assigned_worker_id = ?", *filters.AssignedTo))
	}
	if filters.Unassigned {
		q = q.Where(sq.Eq{"assigned_worker_id": nil})
	}
	if filters.OpenOnly {
		q = q.Where(sq.NotEq{"status": string(domaintask.StatusCompleted)})
	}
	if filters.OldestFirst {
		q = q.OrderBy("created_at ASC", "id ASC")
	} else {
		q = q.OrderBy("created_at DESC", "id DESC")
	}

	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("building select: %w", err)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()

	return scanTasks(rows)
}

func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to domaintask.Status) error {
	query, args, err := r.builder.
		Update("tasks").
		Set("status", string(to)).
		Set("updated_at", time.Now().UTC()).
		Where(sq.Expr("id = ?", id)).
		Where(sq.Eq{"status": string(from)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("building update: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating task status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM tasks WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("checking task existence: %w", err)
		}
		if !exists {
			return fmt.Errorf("task %s: %w", id, domaintask.ErrNotFound)
		}
		return fmt.Errorf("task %s expected status %s: %w", id, from, domaintask.ErrStatusConflict)
	}
	return nil
}

func (r *Repository) CountByStatus(ctx context.Context) (map[domaintask.Status]int, int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT status, COUNT(*), COUNT(*) FILTER (WHERE assigned_worker_id IS NULL)
		FROM tasks GROUP BY status`)
	if err != nil {
		return nil, 0, fmt.Errorf("counting tasks: %w", err)
	}
	defer rows.Close()

	counts := make(map[domaintask.Status]int)
	unassigned := 0
	for rows.Next() {
		var (
			status      domaintask.Status
			total, free int
		)
		if err := rows.Scan(&status, &total, &free); err != nil {
			return nil, 0, fmt.Errorf("scanning count row: %w", err)
		}
		counts[status] = total
		if status != domaintask.StatusCompleted {
			unassigned += free
		}
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating count rows: %w", err)
	}
	return counts, unassigned, nil
}

func scanTask(row pgx.Row) (domaintask.Task, error) {
	var t domaintask.Task
	err := row.Scan(
		&t.ID, &t.Description, &t.CustomerName, &t.CustomerPhone, &t.LaptopBrand, &t.LaptopModel,
		&t.TotalCost, &t.Status, &t.AssignedWorkerID, &t.CreatedAt, &t.UpdatedAt,
	)
	return t, err
}

func scanTasks(rows pgx.Rows) ([]domaintask.Task, error) {
	tasks := []domaintask.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task row: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating task rows: %w", err)
	}
	return tasks, nil
}
