package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chorus/internal/api"
)

// Client talks to a running chorusd over its HTTP API.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient creates a client for the daemon at baseURL.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Submit creates a new job.
func (c *Client) Submit(ctx context.Context, req api.SubmitRequest) (api.Job, error) {
	var resp api.JobResponse
	if err := c.do(ctx, http.MethodPost, "/api/jobs", req, &resp); err != nil {
		return api.Job{}, err
	}
	return resp.Job, nil
}

// Job fetches a single job by id.
func (c *Client) Job(ctx context.Context, id int64) (api.Job, error) {
	var resp api.JobResponse
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/jobs/%d", id), nil, &resp); err != nil {
		return api.Job{}, err
	}
	return resp.Job, nil
}

// List fetches one page of jobs.
func (c *Client) List(ctx context.Context, page, pageSize int) (api.JobListResponse, error) {
	path := fmt.Sprintf("/api/jobs?page=%d&pageSize=%d", page, pageSize)
	var resp api.JobListResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return api.JobListResponse{}, err
	}
	return resp, nil
}

// Status fetches daemon runtime information.
func (c *Client) Status(ctx context.Context) (api.DaemonStatus, error) {
	var resp api.DaemonStatus
	if err := c.do(ctx, http.MethodGet, "/api/status", nil, &resp); err != nil {
		return api.DaemonStatus{}, err
	}
	return resp, nil
}

// Download streams a finished video into destDir and returns the local path.
func (c *Client) Download(ctx context.Context, id int64, destDir string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/jobs/%d/download", id), nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", decodeError(resp)
	}

	if destDir == "" {
		destDir = "."
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure destination: %w", err)
	}
	destPath := filepath.Join(destDir, fmt.Sprintf("chorus-%d.mp4", id))
	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", destPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write %s: %w", destPath, err)
	}
	return destPath, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("chorusd unreachable at %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var payload api.ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("unexpected status %d", resp.StatusCode)
}
