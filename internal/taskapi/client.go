package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/druedada/projecte-final/internal/model"
	"github.com/druedada/projecte-final/internal/task"
)

const maxResponseBytes = 4 << 20

// Client talks to the task REST API. BaseURL includes the API prefix,
// e.g. http://localhost:3009/api.
type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) List(ctx context.Context) ([]model.Task, error) {
	var raw []model.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &raw); err != nil {
		return nil, err
	}

	out := make([]model.Task, 0, len(raw))
	for _, t := range raw {
		valid, err := checkTask(t)
		if err != nil {
			return nil, err
		}
		out = append(out, valid)
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (model.Task, error) {
	var t model.Task
	if err := c.do(ctx, http.MethodGet, taskPath(id), nil, &t); err != nil {
		return model.Task{}, err
	}
	return checkTask(t)
}

// Create validates in locally before sending it, so an invalid payload never
// reaches the network.
func (c *Client) Create(ctx context.Context, in model.TaskInput) (model.Task, error) {
	payload, err := task.Normalize(in)
	if err != nil {
		return model.Task{}, err
	}

	var t model.Task
	if err := c.do(ctx, http.MethodPost, "/tasks", payload, &t); err != nil {
		return model.Task{}, err
	}
	return checkTask(t)
}

func (c *Client) Update(ctx context.Context, id string, in model.TaskInput) (model.Task, error) {
	payload, err := task.Normalize(in)
	if err != nil {
		return model.Task{}, err
	}

	var t model.Task
	if err := c.do(ctx, http.MethodPut, taskPath(id), payload, &t); err != nil {
		return model.Task{}, err
	}
	return checkTask(t)
}

func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return "/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrNetwork, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read response: %w", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrNetwork, err)
	}
	return nil
}

func errorMessage(data []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return strings.TrimSpace(string(data))
}

// checkTask enforces the fixed task shape on values coming off the wire.
// A missing priority defaults to medium.
func checkTask(t model.Task) (model.Task, error) {
	if t.ID == "" {
		return model.Task{}, fmt.Errorf("%w: task without id", ErrNetwork)
	}
	if !t.Status.Valid() {
		return model.Task{}, fmt.Errorf("%w: task %s has invalid status %q", ErrNetwork, t.ID, t.Status)
	}
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	if !t.Priority.Valid() {
		return model.Task{}, fmt.Errorf("%w: task %s has invalid priority %q", ErrNetwork, t.ID, t.Priority)
	}
	t.IsNew = false
	return t, nil
}
