package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openaigo "github.com/sashabaranov/go-openai"

	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

var ErrNotConfigured = errors.New("openai api key not configured")

const (
	RoleUser      = openaigo.ChatMessageRoleUser
	RoleAssistant = openaigo.ChatMessageRoleAssistant
)

type Message struct {
	Role    string
	Content string
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client is the chat completion surface the advisor needs.
type Client interface {
	GenerateText(ctx context.Context, system string, turns []Message) (string, error)
	Model() string
}

type client struct {
	log   *logger.Logger
	api   *openaigo.Client
	model string
}

func NewClient(cfg Config, baseLog *logger.Logger) (Client, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrNotConfigured
	}
	oc := openaigo.DefaultConfig(key)
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		oc.BaseURL = base
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	oc.HTTPClient = &http.Client{Timeout: timeout}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = openaigo.GPT4oMini
	}
	return &client{
		log:   baseLog.With("client", "OpenAIClient", "model", model),
		api:   openaigo.NewClientWithConfig(oc),
		model: model,
	}, nil
}

func (c *client) Model() string { return c.model }

func (c *client) GenerateText(ctx context.Context, system string, turns []Message) (string, error) {
	messages := make([]openaigo.ChatCompletionMessage, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, openaigo.ChatCompletionMessage{
			Role:    openaigo.ChatMessageRoleSystem,
			Content: system,
		})
	}
	for _, t := range turns {
		messages = append(messages, openaigo.ChatCompletionMessage{Role: t.Role, Content: t.Content})
	}

	start := time.Now()
	resp, err := c.api.CreateChatCompletion(ctx, openaigo.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	observability.ObserveLLM(c.model, err, time.Since(start))
	if err != nil {
		c.log.Warn("chat completion failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion returned no choices")
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	c.log.Debug("chat completion ok",
		"duration_ms", time.Since(start).Milliseconds(),
		"usage_prompt", resp.Usage.PromptTokens,
		"usage_completion", resp.Usage.CompletionTokens,
	)
	return text, nil
}
