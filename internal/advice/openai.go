package advice

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"budgeter/internal/core"
)

const (
	DefaultModel       = openai.GPT4o
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 200
)

// Client is an Advisor backed by an OpenAI-compatible chat completion API.
type Client struct {
	api     *openai.Client
	model   string
	timeout time.Duration
}

var _ Advisor = (*Client)(nil)

type Options struct {
	APIKey  string
	Model   string
	BaseURL string
	// Timeout bounds each call; zero leaves the context deadline alone.
	Timeout time.Duration
}

func NewClient(opts Options) *Client {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	}
	model := opts.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		api:     openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: opts.Timeout,
	}
}

// Complete sends one chat completion request. No retry.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: DefaultTemperature,
		MaxTokens:   DefaultMaxTokens,
	})
	if err != nil {
		return "", &core.UpstreamError{Op: "chat completion", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &core.UpstreamError{Op: "chat completion", Err: errors.New("response has no choices")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
