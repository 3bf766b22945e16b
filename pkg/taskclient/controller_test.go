package taskclient

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubAPI lets each test script the server side.
type stubAPI struct {
	list   func(ctx context.Context) ([]Task, error)
	create func(ctx context.Context, draft TaskDraft) (Task, error)
	update func(ctx context.Context, id string, patch TaskPatch) (Task, error)
	del    func(ctx context.Context, id string) (Task, error)
}

func (s *stubAPI) ListTasks(ctx context.Context) ([]Task, error) { return s.list(ctx) }
func (s *stubAPI) CreateTask(ctx context.Context, draft TaskDraft) (Task, error) {
	return s.create(ctx, draft)
}
func (s *stubAPI) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	return s.update(ctx, id, patch)
}
func (s *stubAPI) DeleteTask(ctx context.Context, id string) (Task, error) { return s.del(ctx, id) }

func serverTask(id, title string) Task {
	now := time.Now().UTC()
	return Task{ID: id, Title: title, Priority: "low", Status: "pending", CreatedAt: now, UpdatedAt: now}
}

func titles(list []Task) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Title
	}
	return out
}

func TestController_Load(t *testing.T) {
	want := []Task{serverTask("a", "one"), serverTask("b", "two")}
	c := NewController(&stubAPI{list: func(context.Context) ([]Task, error) { return want, nil }})

	require.NoError(t, c.Load(context.Background()))
	assert.Equal(t, want, c.Tasks())
	assert.False(t, c.Pending())
	assert.Nil(t, c.LastError())
}

func TestController_LoadFailureKeepsPriorList(t *testing.T) {
	calls := 0
	c := NewController(&stubAPI{list: func(context.Context) ([]Task, error) {
		calls++
		if calls == 1 {
			return []Task{serverTask("a", "one")}, nil
		}
		return nil, errors.New("boom")
	}})

	require.NoError(t, c.Load(context.Background()))
	err := c.Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{"one"}, titles(c.Tasks()), "prior list untouched on failure")
	require.NotNil(t, c.LastError())
	assert.Equal(t, "load", c.LastError().Op)
}

func TestController_CreateTaskSuccess(t *testing.T) {
	var sentDraft TaskDraft
	confirmed := serverTask("srv-1", "Ship report")
	c := NewController(&stubAPI{create: func(_ context.Context, draft TaskDraft) (Task, error) {
		sentDraft = draft
		return confirmed, nil
	}})

	got, err := c.CreateTask(context.Background(), TaskDraft{Title: "Ship report"})
	require.NoError(t, err)
	assert.Equal(t, confirmed, got)

	list := c.Tasks()
	require.Len(t, list, 1)
	assert.Equal(t, "srv-1", list[0].ID, "placeholder discarded for the server task")
	assert.False(t, IsPlaceholder(list[0].ID))
	assert.Equal(t, "Ship report", sentDraft.Title, "only the draft is sent, never a placeholder id")
}

func TestController_CreateTaskRevertsOnFailure(t *testing.T) {
	c := NewController(&stubAPI{create: func(context.Context, TaskDraft) (Task, error) {
		return Task{}, errors.New("create failed")
	}})
	seed := serverTask("a", "existing")
	c.AddGenerated([]Task{seed})

	before := c.Tasks()
	_, err := c.CreateTask(context.Background(), TaskDraft{Title: "doomed"})
	require.Error(t, err)

	assert.Equal(t, before, c.Tasks(), "list identical to pre-call state")
	require.NotNil(t, c.LastError())
	assert.Equal(t, "create", c.LastError().Op)
	assert.NotEmpty(t, c.LastError().Message)
}

func TestController_CreateTaskOptimisticWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	unblock := make(chan struct{})
	c := NewController(&stubAPI{create: func(context.Context, TaskDraft) (Task, error) {
		close(entered)
		<-unblock
		return serverTask("srv-1", "slow"), nil
	}})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.CreateTask(context.Background(), TaskDraft{Title: "slow"})
	}()

	<-entered
	list := c.Tasks()
	require.Len(t, list, 1, "placeholder visible before confirmation")
	assert.True(t, IsPlaceholder(list[0].ID))
	assert.Equal(t, "pending", list[0].Status)

	close(unblock)
	<-done
	list = c.Tasks()
	require.Len(t, list, 1)
	assert.Equal(t, "srv-1", list[0].ID)
}

func TestController_UpdateTaskAuthoritativeMerge(t *testing.T) {
	// The server amends fields the client didn't send; the reconciled entry
	// must match the server response exactly, not the optimistic guess.
	fromServer := serverTask("a", "renamed")
	fromServer.Priority = "high"
	fromServer.UpdatedAt = fromServer.UpdatedAt.Add(time.Hour)

	c := NewController(&stubAPI{update: func(_ context.Context, id string, _ TaskPatch) (Task, error) {
		return fromServer, nil
	}})
	c.AddGenerated([]Task{serverTask("a", "original")})

	title := "renamed"
	got, err := c.UpdateTask(context.Background(), "a", TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, fromServer, got)

	list := c.Tasks()
	require.Len(t, list, 1)
	assert.Equal(t, fromServer, list[0])
}

func TestController_UpdateTaskRevertsOnFailure(t *testing.T) {
	c := NewController(&stubAPI{update: func(context.Context, string, TaskPatch) (Task, error) {
		return Task{}, errors.New("update failed")
	}})
	c.AddGenerated([]Task{serverTask("a", "original")})
	before := c.Tasks()

	title := "renamed"
	_, err := c.UpdateTask(context.Background(), "a", TaskPatch{Title: &title})
	require.Error(t, err)
	assert.Equal(t, before, c.Tasks())
	require.NotNil(t, c.LastError())
	assert.Equal(t, "update", c.LastError().Op)
}

func TestController_DeleteTask(t *testing.T) {
	c := NewController(&stubAPI{del: func(_ context.Context, id string) (Task, error) {
		return serverTask(id, "gone"), nil
	}})
	c.AddGenerated([]Task{serverTask("a", "one"), serverTask("b", "two")})

	require.NoError(t, c.DeleteTask(context.Background(), "a"))
	assert.Equal(t, []string{"two"}, titles(c.Tasks()))
}

func TestController_DeleteTaskRevertsOnFailure(t *testing.T) {
	c := NewController(&stubAPI{del: func(context.Context, string) (Task, error) {
		return Task{}, errors.New("delete failed")
	}})
	c.AddGenerated([]Task{serverTask("a", "one")})
	before := c.Tasks()

	err := c.DeleteTask(context.Background(), "a")
	require.Error(t, err)
	assert.Equal(t, before, c.Tasks())
}

func TestController_MarkComplete(t *testing.T) {
	var gotPatch TaskPatch
	completed := serverTask("a", "one")
	completed.Status = "completed"
	c := NewController(&stubAPI{update: func(_ context.Context, _ string, patch TaskPatch) (Task, error) {
		gotPatch = patch
		return completed, nil
	}})
	c.AddGenerated([]Task{serverTask("a", "one")})

	got, err := c.MarkComplete(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	require.NotNil(t, gotPatch.Status)
	assert.Equal(t, "completed", *gotPatch.Status)
	assert.Nil(t, gotPatch.Title)
}

func TestController_PlaceholderNeverSentToServer(t *testing.T) {
	c := NewController(&stubAPI{})

	_, err := c.UpdateTask(context.Background(), "temp-123", TaskPatch{})
	assert.ErrorIs(t, err, ErrUnconfirmedTask)

	err = c.DeleteTask(context.Background(), "temp-123")
	assert.ErrorIs(t, err, ErrUnconfirmedTask)
}

func TestController_SameIDMutationsSerialized(t *testing.T) {
	var mu sync.Mutex
	firstEntered := make(chan struct{})
	unblockFirst := make(chan struct{})
	calls := 0

	c := NewController(&stubAPI{update: func(_ context.Context, id string, _ TaskPatch) (Task, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstEntered)
			<-unblockFirst
		}
		return serverTask(id, "x"), nil
	}})
	c.AddGenerated([]Task{serverTask("a", "x")})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		title := "first"
		_, _ = c.UpdateTask(context.Background(), "a", TaskPatch{Title: &title})
	}()
	<-firstEntered
	go func() {
		defer wg.Done()
		title := "second"
		_, _ = c.UpdateTask(context.Background(), "a", TaskPatch{Title: &title})
	}()

	// The second mutation must not reach the API while the first is in
	// flight.
	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	assert.Equal(t, 1, calls, "second update gated until the first settles")
	mu.Unlock()

	close(unblockFirst)
	wg.Wait()
	mu.Lock()
	assert.Equal(t, 2, calls, "both updates eventually ran")
	mu.Unlock()
}

func TestController_ErrorLastWriteWins(t *testing.T) {
	c := NewController(&stubAPI{
		update: func(context.Context, string, TaskPatch) (Task, error) {
			return Task{}, errors.New("older failure")
		},
		del: func(context.Context, string) (Task, error) {
			return Task{}, errors.New("newer failure")
		},
	})
	c.AddGenerated([]Task{serverTask("a", "one"), serverTask("b", "two")})

	title := "x"
	_, _ = c.UpdateTask(context.Background(), "a", TaskPatch{Title: &title})
	_ = c.DeleteTask(context.Background(), "b")

	require.NotNil(t, c.LastError())
	assert.Equal(t, "newer failure", c.LastError().Message)

	c.ClearError()
	assert.Nil(t, c.LastError())
}
