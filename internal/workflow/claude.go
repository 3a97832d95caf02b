// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package workflow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pdiddy/hypothesis-engine/internal/httputil"
	"github.com/pdiddy/hypothesis-engine/pkg/types"
)

// claudeAPIURL is the Claude Messages API endpoint. Package-level var for
// test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

const (
	defaultModel     = "claude-3-7-sonnet-20250219"
	defaultMaxTokens = 4000
)

// ClaudeBackend calls the Claude Messages API. The system prompt travels in
// the request's top-level system field; the user prompt is the single
// conversation message.
type ClaudeBackend struct {
	Config types.ModelConfig
	Client *http.Client
}

var _ ModelBackend = (*ClaudeBackend)(nil)

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	System    string          `json:"system,omitempty"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete sends the stage prompts to the model and returns the raw text of
// the first text content block. Non-2xx statuses surface as
// *httputil.StatusError so classification sees the status code.
func (c *ClaudeBackend) Complete(ctx context.Context, system, user string) (string, error) {
	model := c.Config.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := c.Config.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	reqBody := claudeRequest{
		Model:     model,
		System:    system,
		MaxTokens: maxTokens,
		Messages: []claudeMessage{
			{Role: "user", Content: user},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.Config.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")
	if c.Config.UserAgent != "" {
		req.Header.Set("User-Agent", c.Config.UserAgent)
	}

	body, err := httputil.Do(c.Client, req)
	if err != nil {
		return "", err
	}

	var cResp claudeResponse
	if err := json.Unmarshal(body, &cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	for _, block := range cResp.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in Claude API response")
}
