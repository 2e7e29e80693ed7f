package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a study coach. You answer with JSON only."

// Config configures the OpenAI-compatible text-generation endpoint.
type Config struct {
	BaseURL     string
	Model       string
	APIKey      string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		Model:       openai.GPT4oMini,
		MaxTokens:   3000,
		Temperature: 0.7,
		Timeout:     60 * time.Second,
	}
}

// Client generates study plans. Any generation failure degrades to Fallback.
type Client struct {
	api    *openai.Client
	cfg    Config
	logger *slog.Logger
	now    func() time.Time
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	d := DefaultConfig()
	if cfg.Model == "" {
		cfg.Model = d.Model
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = d.MaxTokens
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = d.Timeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{cfg: cfg, logger: logger, now: time.Now}
	if cfg.APIKey != "" {
		apiCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			apiCfg.BaseURL = cfg.BaseURL
		}
		c.api = openai.NewClientWithConfig(apiCfg)
	}
	return c
}

// Generate builds a plan for r. It only fails on invalid input.
func (c *Client) Generate(ctx context.Context, r Request) (*Plan, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	start := NextMonday(c.now())

	text, err := c.complete(ctx, []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(r, start)},
	}, c.cfg.MaxTokens)
	if err != nil {
		c.logger.Warn("plan generation failed, using fallback", "goal", r.Goal, "error", err)
		return Fallback(r, start), nil
	}

	plan, err := ExtractPlan(text)
	if err != nil {
		c.logger.Warn("plan response unusable, using fallback", "goal", r.Goal, "error", err)
		return Fallback(r, start), nil
	}
	if plan.Goal == "" {
		plan.Goal = r.Goal
	}
	if plan.Mood == "" {
		plan.Mood = r.Mood
	}
	c.logger.Info("plan generated", "goal", r.Goal, "weeks", len(plan.Weeks))
	return plan, nil
}

var errNoAPIKey = errors.New("no API key configured")

func (c *Client) complete(ctx context.Context, msgs []openai.ChatCompletionMessage, maxTokens int) (string, error) {
	if c.api == nil {
		return "", errNoAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               c.cfg.Model,
		Messages:            msgs,
		MaxCompletionTokens: maxTokens,
		Temperature:         c.cfg.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
