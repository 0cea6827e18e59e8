// Package todoist files digests as tasks through the Todoist REST API.
package todoist

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.todoist.com/rest/v2"

// Client submits tasks to the external tracker. Failures are reported as
// a boolean with the cause logged; exactly one task is created per call
// and nothing deduplicates against prior runs.
type Client struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Log        *slog.Logger
}

func NewClient(apiKey string, log *slog.Logger) *Client {
	return &Client{APIKey: apiKey, Log: log}
}

type taskPayload struct {
	Content     string `json:"content"`
	Description string `json:"description"`
	DueString   string `json:"due_string"`
}

// CreateTask files one task due today. True only on a 2xx response.
func (c *Client) CreateTask(ctx context.Context, content, description string) bool {
	if strings.TrimSpace(c.APIKey) == "" {
		c.Log.Error("todoist API key is not configured")
		return false
	}

	base := c.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	body, err := json.Marshal(taskPayload{
		Content:     content,
		Description: description,
		DueString:   "today",
	})
	if err != nil {
		c.Log.Error("encode task payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/tasks", bytes.NewReader(body))
	if err != nil {
		c.Log.Error("build task request", "error", err)
		return false
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		c.Log.Error("create todoist task", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		c.Log.Error("failed to create todoist task",
			"status", resp.StatusCode,
			"body", strings.TrimSpace(string(detail)),
		)
		return false
	}

	c.Log.Info("created todoist task", "content", content)
	return true
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 30 * time.Second}
}
