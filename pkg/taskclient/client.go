// Package taskclient is the Go client for the smart-task-manager API.
// Client is a thin typed HTTP wrapper; Controller layers an optimistic
// local task list on top of it.
package taskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Task is the wire form of a task as the server returns it.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    string     `json:"priority"`
	Deadline    *time.Time `json:"deadline"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TaskDraft is the body for creating a task.
type TaskDraft struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Deadline    string `json:"deadline,omitempty"`
}

// TaskPatch is a partial update; nil fields are omitted from the request.
type TaskPatch struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Deadline    *string `json:"deadline,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// TaskAPI is the server surface the Controller depends on.
type TaskAPI interface {
	ListTasks(ctx context.Context) ([]Task, error)
	CreateTask(ctx context.Context, draft TaskDraft) (Task, error)
	UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error)
	DeleteTask(ctx context.Context, id string) (Task, error)
}

// Client talks to the REST API. Not safe for concurrent use while logging in;
// safe afterwards.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient returns a client for the API at baseURL (e.g. "http://localhost:8080/api/v1").
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: 30 * time.Second},
	}
}

// SetToken installs a bearer token obtained out of band.
func (c *Client) SetToken(token string) { c.token = token }

// Register creates an account.
func (c *Client) Register(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	return c.do(ctx, http.MethodPost, "/auth/register", body, nil)
}

// Login authenticates and stores the returned bearer token on the client.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body := map[string]string{"email": email, "password": password}
	var out struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &out); err != nil {
		return err
	}
	c.token = out.Token
	return nil
}

func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

func (c *Client) CreateTask(ctx context.Context, draft TaskDraft) (Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPost, "/tasks", draft, &out); err != nil {
		return Task{}, err
	}
	return out.Task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodPut, "/tasks/"+id, patch, &out); err != nil {
		return Task{}, err
	}
	return out.Task, nil
}

// DeleteTask removes a task and returns its prior snapshot.
func (c *Client) DeleteTask(ctx context.Context, id string) (Task, error) {
	var out struct {
		Task Task `json:"task"`
	}
	if err := c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, &out); err != nil {
		return Task{}, err
	}
	return out.Task, nil
}

// GenerateTasks decomposes a goal into persisted tasks.
func (c *Client) GenerateTasks(ctx context.Context, goal string) ([]Task, error) {
	var out struct {
		Tasks []Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/generate", map[string]string{"goal": goal}, &out); err != nil {
		return nil, err
	}
	return out.Tasks, nil
}

// Feedback returns free-text productivity feedback over the caller's tasks.
func (c *Client) Feedback(ctx context.Context) (string, error) {
	var out struct {
		Feedback string `json:"feedback"`
	}
	if err := c.do(ctx, http.MethodGet, "/ai/feedback", nil, &out); err != nil {
		return "", err
	}
	return out.Feedback, nil
}

// SuggestDeadline returns a validated YYYY-MM-DD deadline suggestion for an
// owned task.
func (c *Client) SuggestDeadline(ctx context.Context, taskID string) (string, error) {
	return c.suggest(ctx, "/ai/deadline", taskID)
}

// SuggestPriority returns a validated low/medium/high suggestion for an
// owned task.
func (c *Client) SuggestPriority(ctx context.Context, taskID string) (string, error) {
	return c.suggest(ctx, "/ai/priority", taskID)
}

func (c *Client) suggest(ctx context.Context, path, taskID string) (string, error) {
	var out struct {
		Suggestion string `json:"suggestion"`
	}
	if err := c.do(ctx, http.MethodPost, path, map[string]string{"task_id": taskID}, &out); err != nil {
		return "", err
	}
	return out.Suggestion, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	respBody, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var envelope struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &envelope) == nil && envelope.Error != "" {
			apiErr.Message = envelope.Error
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
