package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/julianstephens/threethings/internal/config"
	"github.com/julianstephens/threethings/internal/constants"
	"github.com/julianstephens/threethings/internal/logger"
	"github.com/julianstephens/threethings/internal/models"
)

var errNoAPIKey = errors.New("generator API key not configured")

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	cfg      config.Generator
	http     *http.Client
	fallback *Fallback
}

// NewClient returns a client for cfg. Failed calls are answered by fallback.
func NewClient(cfg config.Generator, fallback *Fallback) *Client {
	if fallback == nil {
		fallback = NewFallback(nil)
	}
	return &Client{
		cfg:      cfg,
		http:     &http.Client{Timeout: constants.GenTimeout},
		fallback: fallback,
	}
}

func (c *Client) Encouragement(ctx context.Context, title string, size models.TaskSize, reflection string) string {
	kind := "a small task"
	if size == models.TaskSizeBig {
		kind = "one of today's big tasks"
	}
	text, err := c.complete(ctx, []chatMessage{
		{
			Role:    "system",
			Content: "You are a warm, grounded friend who is always on the user's side. Keep it under 30 characters. No lecturing.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("I just finished %s: %q. My reflection: %q. Give me one short, empathetic line of encouragement.", kind, title, reflection),
		},
	})
	if err != nil {
		logger.Warn("Encouragement generation failed, using fallback", "error", err)
		return c.fallback.Encouragement(ctx, title, size, reflection)
	}
	return text
}

func (c *Client) JournalEntry(ctx context.Context, tasks []models.Task, rating bool) string {
	var summary strings.Builder
	for _, t := range tasks {
		status := "not done"
		if t.IsDone {
			status = "done"
		}
		fmt.Fprintf(&summary, "- %s (%s): %s\n", t.Title, status, t.Reflection)
	}
	verdict := "was not"
	if rating {
		verdict = "was"
	}

	text, err := c.complete(ctx, []chatMessage{
		{
			Role:    "system",
			Content: "You are a companion writing in the user's journal. Write a warm closing note of about 150 to 200 characters that acknowledges their honesty and effort.",
		},
		{
			Role:    "user",
			Content: fmt.Sprintf("Today's tasks:\n%sI feel today %s a decent day. Write the closing note.", summary.String(), verdict),
		},
	})
	if err != nil {
		logger.Warn("Journal generation failed, using fallback", "error", err)
		return c.fallback.JournalEntry(ctx, tasks, rating)
	}
	return text
}

func (c *Client) complete(ctx context.Context, messages []chatMessage) (string, error) {
	if c.cfg.APIKey == "" {
		return "", errNoAPIKey
	}

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    messages,
		Temperature: constants.GenTemperature,
		MaxTokens:   constants.GenMaxTokens,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("API error: %s", resp.Status)
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", errors.New("empty response")
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", errors.New("empty response")
	}
	return text, nil
}
