// Package client is the HTTP client for the todo task service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/fentz26/todo/internal/models"
)

const (
	// DefaultBaseURL is used when New is given an empty base URL.
	DefaultBaseURL = "http://127.0.0.1:8080/api"
	// DefaultTimeout bounds every request.
	DefaultTimeout = 10 * time.Second
)

// Error classes, matched with errors.Is.
var (
	ErrTransport  = errors.New("transport failure")
	ErrBadRequest = errors.New("bad request")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

// TransportError means the service could not be reached or the response
// could not be read.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is reports ErrTransport for every transport error.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// ServerError is a non-2xx response from the service.
type ServerError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *ServerError) Error() string { return e.Message }

// Is maps status codes onto the error classes.
func (e *ServerError) Is(target error) bool {
	switch target {
	case ErrBadRequest:
		return e.StatusCode == http.StatusBadRequest
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	}
	return false
}

// Client wraps HTTP calls to the todo task service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a new API client. Options apply in order.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the service base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListTasks fetches the visible tasks, newest first.
func (c *Client) ListTasks(ctx context.Context) ([]models.Task, error) {
	var tasks []models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks, "Failed to fetch tasks"); err != nil {
		return nil, err
	}
	return tasks, nil
}

// CreateTask submits a new task and returns it as stored.
func (c *Client) CreateTask(ctx context.Context, title, description string) (models.Task, error) {
	var task models.Task
	req := models.NewTask{Title: title, Description: description}
	if err := c.do(ctx, http.MethodPost, "/tasks", req, &task, "Failed to create task"); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// GetTask fetches a single task by id, completed or not.
func (c *Client) GetTask(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	if err := c.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &task, "Failed to fetch task"); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// AuditLog fetches up to limit audit entries, newest first. A limit of
// zero lets the service choose.
func (c *Client) AuditLog(ctx context.Context, limit int) ([]models.AuditEntry, error) {
	path := "/audit"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var entries []models.AuditEntry
	if err := c.do(ctx, http.MethodGet, path, nil, &entries, "Failed to fetch audit log"); err != nil {
		return nil, err
	}
	return entries, nil
}

// CompleteTask marks a task completed and returns it.
func (c *Client) CompleteTask(ctx context.Context, id string) (models.Task, error) {
	var task models.Task
	path := "/tasks/" + url.PathEscape(id) + "/complete"
	if err := c.do(ctx, http.MethodPut, path, nil, &task, "Failed to complete task"); err != nil {
		return models.Task{}, err
	}
	return task, nil
}

// ClearAll deletes every task on the service.
func (c *Client) ClearAll(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/tasks", nil, nil, "Failed to clear tasks")
}

// Health checks the task API and returns its status line.
func (c *Client) Health(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/tasks/health", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: "health", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &TransportError{Op: "health", Err: err}
	}
	if resp.StatusCode >= 400 {
		return "", decodeError(resp.StatusCode, body, "Task API is unavailable")
	}
	return strings.TrimSpace(string(body)), nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, fallback string) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed", "method", method, "path", path, "error", err)
		return &TransportError{Op: fallback, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: fallback, Err: err}
	}
	c.log.DebugContext(ctx, "request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp.StatusCode, data, fallback)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Op: fallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// decodeError builds a ServerError. The message is the body's message, or
// its first field error, or fallback.
func decodeError(status int, body []byte, fallback string) *ServerError {
	serr := &ServerError{StatusCode: status, Message: fallback}

	var resp models.ErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return serr
	}
	serr.Fields = resp.Errors

	switch {
	case resp.Message != "":
		serr.Message = resp.Message
	case len(resp.Errors) > 0:
		serr.Message = (&models.ValidationError{Fields: resp.Errors}).First()
	}
	return serr
}
