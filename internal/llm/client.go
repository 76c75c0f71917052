// Package llm talks to OpenAI-compatible chat-completion endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sjsage522/carsearch/logger"
	"sjsage522/carsearch/pkg/errors"
)

// Completer turns a system and a user prompt into completion text.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// ChatRequest represents a chat completion request
type ChatRequest struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

// ChatMessage represents a chat message
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatResponse represents a chat completion response
type ChatResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Client is a chat-completion client for one provider.
type Client struct {
	httpClient *http.Client
	provider   Provider
	maxTokens  int
}

// NewClient creates a client. Sampling is fixed at temperature 0.
func NewClient(provider Provider, timeout time.Duration, maxTokens int) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		provider:   provider,
		maxTokens:  maxTokens,
	}
}

// Provider returns the provider the client talks to.
func (c *Client) Provider() Provider {
	return c.provider
}

// Complete sends one chat completion and returns the first choice's content.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	reqBody, err := json.Marshal(ChatRequest{
		Model: c.provider.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", errors.NewLLMProtocol("failed to marshal request", err)
	}

	endpoint := strings.TrimRight(c.provider.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return "", errors.NewLLMProtocol("failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.provider.APIKey)

	log := logger.ForParser().WithField("provider", c.provider.Name)
	log.Debug().Str("model", c.provider.Model).Msg("Sending chat completion")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", errors.NewNetwork("", "chat completion request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.NewNetwork("", "failed to read chat completion response", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.NewLLMProtocol(
			fmt.Sprintf("%s API error (status %d): %s", c.provider.Name, resp.StatusCode, truncate(string(body), 300)), nil)
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", errors.NewLLMProtocol("failed to parse chat completion response", err)
	}
	if chatResp.Error != nil {
		return "", errors.NewLLMProtocol(fmt.Sprintf("%s API error: %s", c.provider.Name, chatResp.Error.Message), nil)
	}
	if len(chatResp.Choices) == 0 {
		return "", errors.NewLLMProtocol("no choices in response", nil)
	}

	log.Debug().
		Int("tokens_used", chatResp.Usage.TotalTokens).
		Str("finish_reason", chatResp.Choices[0].FinishReason).
		Msg("Chat completion finished")

	return strings.TrimSpace(chatResp.Choices[0].Message.Content), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
