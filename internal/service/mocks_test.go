package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	dom "github.com/sandipsawant10/smart-task-manager/internal/domain"
)

// memUserRepo is an in-memory UserRepo. Duplicate emails surface as the same
// pgconn error the Postgres repo produces.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]dom.User // keyed by email
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]dom.User)}
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[email]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (r *memUserRepo) Create(_ context.Context, email, passwordHash string) (dom.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[email]; ok {
		return dom.User{}, &pgconn.PgError{Code: "23505"}
	}
	u := dom.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[email] = u
	return u, nil
}

// memTaskRepo is an in-memory TaskRepo with owner scoping.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks []dom.Task

	failCreate error // when set, Create returns it
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{}
}

func (r *memTaskRepo) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return dom.Task{}, r.failCreate
	}
	now := time.Now().UTC()
	t.ID = uuid.New()
	t.CreatedAt = now
	t.UpdatedAt = now
	r.tasks = append(r.tasks, t)
	return t, nil
}

func (r *memTaskRepo) CreateBatch(ctx context.Context, userID uuid.UUID, titles []string, priority dom.Priority) ([]dom.Task, error) {
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

func (r *memTaskRepo) GetByID(_ context.Context, userID, id uuid.UUID) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tasks {
		if t.ID == id && t.UserID == userID {
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (r *memTaskRepo) List(_ context.Context, userID uuid.UUID) ([]dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var list []dom.Task
	// Newest first, matching ORDER BY created_at DESC on insertion order.
	for i := len(r.tasks) - 1; i >= 0; i-- {
		if r.tasks[i].UserID == userID {
			list = append(list, r.tasks[i])
		}
	}
	return list, nil
}

func (r *memTaskRepo) Update(_ context.Context, userID, id uuid.UUID, patch dom.Task) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id && t.UserID == userID {
			patch.ID = t.ID
			patch.UserID = t.UserID
			patch.CreatedAt = t.CreatedAt
			patch.UpdatedAt = time.Now().UTC()
			r.tasks[i] = patch
			return patch, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (r *memTaskRepo) Delete(_ context.Context, userID, id uuid.UUID) (dom.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, t := range r.tasks {
		if t.ID == id && t.UserID == userID {
			r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
			return t, nil
		}
	}
	return dom.Task{}, pgx.ErrNoRows
}

func (r *memTaskRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tasks)
}

// stubCompleter returns canned text or a canned error.
type stubCompleter struct {
	reply string
	err   error

	prompts []string
}

func (s *stubCompleter) Complete(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}
