package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	dom "github.com/sandipsawant10/smart-task-manager/internal/domain"
)

// TaskRepo provides task persistence. Every query is scoped by the owning
// user id at the SQL level; there is no unscoped access path.
type TaskRepo interface {
	Create(ctx context.Context, t dom.Task) (dom.Task, error)
	CreateBatch(ctx context.Context, userID uuid.UUID, titles []string, priority dom.Priority) ([]dom.Task, error)
	GetByID(ctx context.Context, userID, id uuid.UUID) (dom.Task, error)
	List(ctx context.Context, userID uuid.UUID) ([]dom.Task, error)
	Update(ctx context.Context, userID, id uuid.UUID, patch dom.Task) (dom.Task, error)
	Delete(ctx context.Context, userID, id uuid.UUID) (dom.Task, error)
}

type PGTaskRepo struct {
	db *pgxpool.Pool
}

func NewPGTaskRepo(db *pgxpool.Pool) *PGTaskRepo {
	return &PGTaskRepo{db: db}
}

const taskColumns = `id, user_id, title, description, priority, deadline, status, created_at, updated_at`

func scanTask(row interface{ Scan(dest ...any) error }) (dom.Task, error) {
	var t dom.Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Priority,
		&t.Deadline, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *PGTaskRepo) Create(ctx context.Context, t dom.Task) (dom.Task, error) {
	query := `
		INSERT INTO tasks (user_id, title, description, priority, deadline, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query,
		t.UserID, t.Title, t.Description, t.Priority, t.Deadline, t.Status))
}

// CreateBatch inserts one task per title at the given priority (goal
// decomposition path). Single-statement inserts, no transaction: tasks
// persisted before a failure stay persisted.
func (r *PGTaskRepo) CreateBatch(ctx context.Context, userID uuid.UUID, titles []string, priority dom.Priority) ([]dom.Task, error) {
	out := make([]dom.Task, 0, len(titles))
	for _, title := range titles {
		t, err := r.Create(ctx, dom.Task{
			UserID:   userID,
			Title:    title,
			Priority: priority,
			Status:   dom.StatusPending,
		})
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *PGTaskRepo) GetByID(ctx context.Context, userID, id uuid.UUID) (dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	return scanTask(r.db.QueryRow(ctx, query, id, userID))
}

func (r *PGTaskRepo) List(ctx context.Context, userID uuid.UUID) ([]dom.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = $1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []dom.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *PGTaskRepo) Update(ctx context.Context, userID, id uuid.UUID, patch dom.Task) (dom.Task, error) {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, priority = $5, deadline = $6, status = $7, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, userID,
		patch.Title, patch.Description, patch.Priority, patch.Deadline, patch.Status))
}

// Delete removes the task permanently and returns its prior snapshot.
func (r *PGTaskRepo) Delete(ctx context.Context, userID, id uuid.UUID) (dom.Task, error) {
	query := `DELETE FROM tasks WHERE id = $1 AND user_id = $2 RETURNING ` + taskColumns
	return scanTask(r.db.QueryRow(ctx, query, id, userID))
}
