// Package ai is the boundary to the external language-model collaborator.
// It exposes one synchronous structured-analysis call, a reply composer
// and an entity-extraction call, all with deterministic fallbacks so the
// rest of the system never observes an upstream failure.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"baitlab/internal/config"
	"baitlab/pkg/logger"
)

// ErrNoProvider is returned when no provider has an API key configured.
var ErrNoProvider = errors.New("no llm provider configured")

// Client talks to OpenAI-compatible chat-completion endpoints. Providers
// are tried in configuration order; the first one with an API key wins.
type Client struct {
	httpClient *http.Client
	providers  []config.LLMProviderConfig
	maxTokens  int
	logger     *logger.Logger
}

// NewClient creates a chat client from configuration.
func NewClient(cfg config.LLMConfig, log *logger.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.RequestTimeout},
		providers:  cfg.Providers,
		maxTokens:  cfg.MaxTokens,
		logger:     log.WithComponent("llm-client"),
	}
}

// Available reports whether any provider is usable.
func (c *Client) Available() bool {
	_, err := c.provider()
	return err == nil
}

// Provider returns the active provider's name and model, or empty strings.
func (c *Client) Provider() (name, model string) {
	p, err := c.provider()
	if err != nil {
		return "", ""
	}
	return p.Name, p.Model
}

func (c *Client) provider() (config.LLMProviderConfig, error) {
	for _, p := range c.providers {
		if p.APIKey != "" {
			return p, nil
		}
	}
	return config.LLMProviderConfig{}, ErrNoProvider
}

// ChatMessage is one turn in a chat-completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatOptions tune a single completion call.
type ChatOptions struct {
	Temperature float64
	MaxTokens   int
}

// Chat sends a system prompt plus messages and returns the raw completion
// text.
func (c *Client) Chat(ctx context.Context, system string, messages []ChatMessage, opts ChatOptions) (string, error) {
	p, err := c.provider()
	if err != nil {
		return "", err
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}

	payload := []ChatMessage{{Role: "system", Content: system}}
	payload = append(payload, messages...)

	reqBody := map[string]any{
		"model":       p.Model,
		"messages":    payload,
		"max_tokens":  maxTokens,
		"temperature": opts.Temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	url := strings.TrimSuffix(p.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s API error %d: %s", p.Name, resp.StatusCode, truncate(string(body), 200))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", err
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.Name)
	}
	return completion.Choices[0].Message.Content, nil
}

// ExtractJSON pulls the JSON object out of a completion that may be
// wrapped in markdown fences or surrounding prose.
func ExtractJSON(content string) (string, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start == -1 || end <= start {
		return "", fmt.Errorf("no JSON object in completion")
	}
	return content[start : end+1], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
