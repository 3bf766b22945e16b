package taskclient

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// placeholderPrefix marks locally-synthesized ids. Server ids are bare UUIDs,
// so a prefixed id can never collide with one, and must never be sent to
// the server.
const placeholderPrefix = "temp-"

// ErrUnconfirmedTask is returned for a mutation against a placeholder id:
// the create has not been confirmed yet, so there is no server id to address.
var ErrUnconfirmedTask = errors.New("task not yet confirmed by server")

// ErrorInfo describes the most recent failed operation. Newer failures
// overwrite older unresolved ones.
type ErrorInfo struct {
	Op      string
	Message string
	Time    time.Time
}

// Controller owns the client-side task list and keeps it consistent with the
// server under an optimistic-update discipline: mutations apply locally
// first, then reconcile against the server response or revert on failure.
//
// Mutations against the same task id are serialized through a per-id gate so
// a later optimistic apply can never clobber an earlier in-flight mutation's
// snapshot basis. Mutations against different ids run concurrently.
type Controller struct {
	api TaskAPI

	mu       sync.Mutex
	tasks    []Task
	pending  bool
	lastErr  *ErrorInfo
	inflight map[string]chan struct{}
}

// NewController returns a controller with an empty task list.
func NewController(api TaskAPI) *Controller {
	return &Controller{api: api, inflight: make(map[string]chan struct{})}
}

// Tasks returns a copy of the current list.
func (c *Controller) Tasks() []Task {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneTasks(c.tasks)
}

// Pending reports whether a Load is in flight.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// LastError returns the most recent unresolved failure, or nil.
func (c *Controller) LastError() *ErrorInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.lastErr == nil {
		return nil
	}
	e := *c.lastErr
	return &e
}

// ClearError resets the error state.
func (c *Controller) ClearError() {
	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()
}

// IsPlaceholder reports whether id is a locally-synthesized placeholder.
func IsPlaceholder(id string) bool {
	return strings.HasPrefix(id, placeholderPrefix)
}

// Load fetches the full list and replaces local state wholesale. On failure
// the prior list is left untouched and the error recorded.
func (c *Controller) Load(ctx context.Context) error {
	c.mu.Lock()
	c.pending = true
	c.mu.Unlock()

	list, err := c.api.ListTasks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = false
	if err != nil {
		c.fail("load", err)
		return err
	}
	c.tasks = cloneTasks(list)
	return nil
}

// CreateTask appends a placeholder task immediately, then issues the server
// create. On success the placeholder is discarded in favor of the confirmed
// list plus the server-returned task; on failure the list reverts.
func (c *Controller) CreateTask(ctx context.Context, draft TaskDraft) (Task, error) {
	placeholder := Task{
		ID:          placeholderPrefix + uuid.NewString(),
		Title:       draft.Title,
		Description: draft.Description,
		Priority:    draft.Priority,
		Status:      "pending",
		CreatedAt:   time.Now().UTC(),
	}
	if placeholder.Priority == "" {
		placeholder.Priority = "low"
	}

	c.acquire(placeholder.ID)
	defer c.release(placeholder.ID)

	c.mu.Lock()
	prev := cloneTasks(c.tasks)
	c.tasks = append(cloneTasks(c.tasks), placeholder)
	c.mu.Unlock()

	created, err := c.api.CreateTask(ctx, draft)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.tasks = prev
		c.fail("create", err)
		return Task{}, err
	}
	c.tasks = append(prev, created)
	return created, nil
}

// UpdateTask applies the patch locally, then issues the server update and
// merges the authoritative response by id. On failure the list reverts to
// its pre-mutation snapshot.
func (c *Controller) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	if IsPlaceholder(id) {
		return Task{}, ErrUnconfirmedTask
	}
	c.acquire(id)
	defer c.release(id)

	c.mu.Lock()
	prev := cloneTasks(c.tasks)
	c.tasks = applyPatch(c.tasks, id, patch)
	c.mu.Unlock()

	updated, err := c.api.UpdateTask(ctx, id, patch)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.tasks = prev
		c.fail("update", err)
		return Task{}, err
	}
	// Server response wins over the optimistic guess (e.g. amended
	// updated_at or normalized fields).
	c.tasks = replaceByID(c.tasks, updated)
	return updated, nil
}

// DeleteTask removes the task locally, then issues the server delete. On
// failure the list reverts; on success nothing further is needed.
func (c *Controller) DeleteTask(ctx context.Context, id string) error {
	if IsPlaceholder(id) {
		return ErrUnconfirmedTask
	}
	c.acquire(id)
	defer c.release(id)

	c.mu.Lock()
	prev := cloneTasks(c.tasks)
	c.tasks = removeByID(c.tasks, id)
	c.mu.Unlock()

	_, err := c.api.DeleteTask(ctx, id)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.tasks = prev
		c.fail("delete", err)
		return err
	}
	return nil
}

// MarkComplete sets the task's status to completed.
func (c *Controller) MarkComplete(ctx context.Context, id string) (Task, error) {
	status := "completed"
	return c.UpdateTask(ctx, id, TaskPatch{Status: &status})
}

// AddGenerated appends server-confirmed tasks (the goal decomposition path)
// without optimistic bookkeeping.
func (c *Controller) AddGenerated(tasks []Task) {
	if len(tasks) == 0 {
		return
	}
	c.mu.Lock()
	c.tasks = append(cloneTasks(c.tasks), tasks...)
	c.mu.Unlock()
}

// fail records the failure, last-write-wins. Caller holds c.mu.
func (c *Controller) fail(op string, err error) {
	c.lastErr = &ErrorInfo{Op: op, Message: err.Error(), Time: time.Now()}
}

// acquire blocks until no mutation for id is in flight, then claims the gate.
func (c *Controller) acquire(id string) {
	c.mu.Lock()
	for {
		gate, busy := c.inflight[id]
		if !busy {
			break
		}
		c.mu.Unlock()
		<-gate
		c.mu.Lock()
	}
	c.inflight[id] = make(chan struct{})
	c.mu.Unlock()
}

func (c *Controller) release(id string) {
	c.mu.Lock()
	gate := c.inflight[id]
	delete(c.inflight, id)
	c.mu.Unlock()
	close(gate)
}
