package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"partnerhub-backend/internal/utils"
	"strings"
	"time"
)

// DefaultMaxTokens caps generation length when the caller does not set one.
const DefaultMaxTokens = 1024

// Invocation is a single call to a model provider.
type Invocation struct {
	Model        string
	SystemPrompt string
	Input        string
	MaxTokens    int
}

// ModelInvoker calls a live model provider and returns its text output.
type ModelInvoker interface {
	Invoke(ctx context.Context, inv Invocation) (string, error)
}

// ErrEmptyCompletion is returned when the provider answers without any choice.
var ErrEmptyCompletion = errors.New("provider returned no completion")

// ChatCompletionsInvoker talks to an OpenAI compatible /chat/completions endpoint.
type ChatCompletionsInvoker struct {
	baseURL   string
	apiKey    string
	maxTokens int
	client    *http.Client
}

func NewChatCompletionsInvoker(baseURL, apiKey string, timeout time.Duration, maxTokens int) *ChatCompletionsInvoker {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	return &ChatCompletionsInvoker{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		maxTokens: maxTokens,
		client:    utils.NewHTTPClient(timeout),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (c *ChatCompletionsInvoker) Invoke(ctx context.Context, inv Invocation) (string, error) {
	maxTokens := inv.MaxTokens
	if maxTokens <= 0 || maxTokens > c.maxTokens {
		maxTokens = c.maxTokens
	}

	messages := make([]chatMessage, 0, 2)
	if inv.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: inv.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: inv.Input})

	payload, err := json.Marshal(chatRequest{Model: inv.Model, Messages: messages, MaxTokens: maxTokens})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("api returned error status: %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return out.Choices[0].Message.Content, nil
}

var (
	nonTextModelMarkers = []string{
		"dall-e", "image", "tts", "whisper", "sora", "stable-diffusion", "sdxl",
		"midjourney", "flux", "video", "embedding", "musicgen",
	}
	textModelPrefixes = []string{
		"gpt-", "gpt4", "o1", "o3", "o4", "claude", "gemini", "llama", "mistral",
		"mixtral", "qwen", "deepseek", "command", "phi-", "yi-", "glm",
	}
	textModelMarkers = []string{"chat", "instruct", "text"}
)

// IsTextModel reports whether model names a chat or completion model that can be
// sent to a chat completions provider.
func IsTextModel(model string) bool {
	m := strings.ToLower(strings.TrimSpace(model))
	if m == "" {
		return false
	}
	for _, marker := range nonTextModelMarkers {
		if strings.Contains(m, marker) {
			return false
		}
	}
	for _, prefix := range textModelPrefixes {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	for _, marker := range textModelMarkers {
		if strings.Contains(m, marker) {
			return true
		}
	}
	return false
}
