// Package client is an HTTP client for the projboard server API.
package client

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

	"github.com/projboard/projboard/internal/view"
	"github.com/projboard/projboard/pkg/types"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
	Details    map[string]any
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s (%d): %s", e.Code, e.StatusCode, e.Message)
}

// Health is the server health report.
type Health struct {
	Status   string `json:"status"`
	Projects int    `json:"projects"`
	Version  uint64 `json:"version"`
}

// Client talks to a projboard server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the server at baseURL.
func New(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Health returns the server health report.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.doJSON(ctx, http.MethodGet, "/health", nil, &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// Projects lists projects, optionally only those with status. A nil status lists all.
func (c *Client) Projects(ctx context.Context, status *types.ProjectStatus) ([]types.Project, error) {
	path := "/project"
	if status != nil {
		path += "?" + url.Values{"status": {status.String()}}.Encode()
	}

	var projects []types.Project
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// Project returns a single project.
func (c *Client) Project(ctx context.Context, id string) (*types.Project, error) {
	var p types.Project
	if err := c.doJSON(ctx, http.MethodGet, "/project/"+url.PathEscape(id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AddProject submits a new project. Values are sent as typed; the server validates them.
func (c *Client) AddProject(ctx context.Context, values view.FormValues) (*types.Project, error) {
	var p types.Project
	if err := c.doJSON(ctx, http.MethodPost, "/project", values, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// MoveProject sets a project's status and reports whether it changed.
func (c *Client) MoveProject(ctx context.Context, id string, status types.ProjectStatus) (bool, error) {
	body := map[string]types.ProjectStatus{"status": status}

	var resp struct {
		Moved bool `json:"moved"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/project/"+url.PathEscape(id)+"/move", body, &resp); err != nil {
		return false, err
	}
	return resp.Moved, nil
}

// Drop forwards a drag payload to the list for status.
func (c *Client) Drop(ctx context.Context, status types.ProjectStatus, dt *view.DataTransfer) error {
	return c.doJSON(ctx, http.MethodPost, "/board/list/"+status.String()+"/drop", dt, nil)
}

// ListHTML returns the rendered list element for status.
func (c *Client) ListHTML(ctx context.Context, status types.ProjectStatus) (string, error) {
	resp, err := c.do(ctx, http.MethodGet, "/board/list/"+status.String(), nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	return string(body), nil
}

// doJSON performs a request with an optional JSON body and decodes a JSON response into out.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	resp, err := c.do(ctx, method, path, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// do performs a request and turns non-2xx responses into *APIError.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		return nil, decodeAPIError(resp)
	}
	return resp, nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Message string         `json:"message"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && envelope.Error.Code != "" {
		apiErr.Code = envelope.Error.Code
		apiErr.Message = envelope.Error.Message
		apiErr.Details = envelope.Error.Details
	} else {
		apiErr.Message = strings.TrimSpace(string(data))
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
	}
	return apiErr
}
