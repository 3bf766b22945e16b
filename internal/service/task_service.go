package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/singleflight"

	"github.com/sandipsawant10/smart-task-manager/internal/cache"
	dom "github.com/sandipsawant10/smart-task-manager/internal/domain"
	"github.com/sandipsawant10/smart-task-manager/internal/repo"
)

var (
	ErrNotFound        = errors.New("task not found")
	ErrEmptyTitle      = errors.New("title is required")
	ErrInvalidPriority = errors.New("priority must be low, medium or high")
	ErrInvalidStatus   = errors.New("status must be pending or completed")
	ErrPastDeadline    = errors.New("deadline is in the past")
)

// TaskPatch is a partial update: nil fields are left unchanged.
type TaskPatch struct {
	Title       *string
	Description *string
	Priority    *string
	Deadline    *time.Time
	Status      *string
}

type TaskService struct {
	repo  repo.TaskRepo
	cache *cache.TaskCache
	sf    singleflight.Group
	now   func() time.Time
}

// NewTaskService creates a TaskService. If c is nil, caching is disabled.
func NewTaskService(r repo.TaskRepo, c *cache.TaskCache) *TaskService {
	return &TaskService{repo: r, cache: c, now: time.Now}
}

// validDeadline rejects deadlines before start of today UTC, so a date-only
// deadline of "today" stays valid.
func (s *TaskService) validDeadline(deadline time.Time) bool {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return !deadline.Before(today)
}

func (s *TaskService) Create(ctx context.Context, userID uuid.UUID, title, desc, priority string, deadline *time.Time) (dom.Task, error) {
	title = strings.TrimSpace(title)
	desc = strings.TrimSpace(desc)
	if title == "" {
		return dom.Task{}, ErrEmptyTitle
	}

	prio := dom.PriorityLow
	if priority != "" {
		p, ok := dom.ParsePriority(priority)
		if !ok {
			return dom.Task{}, ErrInvalidPriority
		}
		prio = p
	}
	if deadline != nil && !s.validDeadline(*deadline) {
		return dom.Task{}, ErrPastDeadline
	}

	t, err := s.repo.Create(ctx, dom.Task{
		UserID:      userID,
		Title:       title,
		Description: desc,
		Priority:    prio,
		Deadline:    deadline,
		Status:      dom.StatusPending,
	})
	if err != nil {
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// CreateFromTitles persists one pending task per title at the given priority
// (goal decomposition path). Blank titles are skipped.
func (s *TaskService) CreateFromTitles(ctx context.Context, userID uuid.UUID, titles []string, priority dom.Priority) ([]dom.Task, error) {
	clean := make([]string, 0, len(titles))
	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title != "" {
			clean = append(clean, title)
		}
	}
	if len(clean) == 0 {
		return nil, nil
	}
	list, err := s.repo.CreateBatch(ctx, userID, clean, priority)
	if len(list) > 0 {
		s.invalidateCache(ctx, userID)
	}
	if err != nil {
		return list, err
	}
	return list, nil
}

// List returns the caller's tasks ordered by creation time descending.
func (s *TaskService) List(ctx context.Context, userID uuid.UUID) ([]dom.Task, error) {
	if s.cache != nil {
		key := "list:" + userID.String()
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			if list, err := s.cache.GetList(ctx, userID); err == nil && list != nil {
				return list, nil
			}
			list, err := s.repo.List(ctx, userID)
			if err != nil {
				return nil, err
			}
			_ = s.cache.SetList(ctx, userID, list)
			return list, nil
		})
		if err != nil {
			return nil, err
		}
		return v.([]dom.Task), nil
	}
	return s.repo.List(ctx, userID)
}

func (s *TaskService) GetByID(ctx context.Context, userID, id uuid.UUID) (dom.Task, error) {
	t, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	return t, nil
}

// Update applies only the fields present in the patch. Enumerations are
// validated here so bad values (including raw AI suggestions) never reach
// the store.
func (s *TaskService) Update(ctx context.Context, userID, id uuid.UUID, patch TaskPatch) (dom.Task, error) {
	existing, err := s.repo.GetByID(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	next := existing
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return dom.Task{}, ErrEmptyTitle
		}
		next.Title = title
	}
	if patch.Description != nil {
		next.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Priority != nil {
		p, ok := dom.ParsePriority(*patch.Priority)
		if !ok {
			return dom.Task{}, ErrInvalidPriority
		}
		next.Priority = p
	}
	if patch.Deadline != nil {
		if !s.validDeadline(*patch.Deadline) {
			return dom.Task{}, ErrPastDeadline
		}
		next.Deadline = patch.Deadline
	}
	if patch.Status != nil {
		st, ok := dom.ParseStatus(*patch.Status)
		if !ok {
			return dom.Task{}, ErrInvalidStatus
		}
		next.Status = st
	}
	t, err := s.repo.Update(ctx, userID, id, next)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

// Complete marks the task completed. Not a distinct storage operation.
func (s *TaskService) Complete(ctx context.Context, userID, id uuid.UUID) (dom.Task, error) {
	status := string(dom.StatusCompleted)
	return s.Update(ctx, userID, id, TaskPatch{Status: &status})
}

// Delete removes the task permanently and returns its prior snapshot.
func (s *TaskService) Delete(ctx context.Context, userID, id uuid.UUID) (dom.Task, error) {
	t, err := s.repo.Delete(ctx, userID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return dom.Task{}, ErrNotFound
		}
		return dom.Task{}, err
	}
	s.invalidateCache(ctx, userID)
	return t, nil
}

func (s *TaskService) invalidateCache(ctx context.Context, userID uuid.UUID) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
}
