package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/resilience/circuitbreaker"
	"healthquiz/internal/resilience/retry"
	"healthquiz/internal/usecase/generate"
)

// Claude drafts and reviews questions with Anthropic's Messages API.
type Claude struct {
	client         anthropic.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewClaude creates a Claude generator from cfg.
func NewClaude(cfg Config) *Claude {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	// retries are handled by retry.WithBackoff
	opts = append(opts, option.WithMaxRetries(0))

	slog.Info("Initialized Claude question generator",
		slog.String("model", cfg.Model),
		slog.String("verifier_model", cfg.VerifierModel))

	return &Claude{
		client:         anthropic.NewClient(opts...),
		circuitBreaker: circuitbreaker.New(circuitbreaker.LLMConfig("claude-api")),
		retryConfig:    retry.AIAPIConfig(),
		config:         cfg,
	}
}

// Generate drafts questions for the article.
func (c *Claude) Generate(ctx context.Context, in generate.ArticleInput) ([]entity.QuestionDraft, error) {
	reply, err := c.complete(ctx, c.config.Model, GenerationPrompt, userPrompt(in, c.config.MaxInputRunes), 0.3)
	if err != nil {
		return nil, fmt.Errorf("claude generate failed: %w", err)
	}
	drafts, err := parseDrafts(reply)
	if err != nil {
		return nil, fmt.Errorf("claude generate: %w", err)
	}
	return drafts, nil
}

// Verify reviews one draft.
func (c *Claude) Verify(ctx context.Context, d entity.QuestionDraft) (entity.Verdict, error) {
	payload, err := reviewPayload(d)
	if err != nil {
		return entity.VerdictError, err
	}
	reply, err := c.complete(ctx, c.config.VerifierModel, VerificationPrompt, payload, 0.1)
	if err != nil {
		return entity.VerdictError, fmt.Errorf("claude verify failed: %w", err)
	}
	return entity.ParseVerdict(reply), nil
}

func (c *Claude) complete(ctx context.Context, model, system, user string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(model),
		MaxTokens:   int64(c.config.MaxTokens),
		Temperature: anthropic.Float(temperature),
		System:      []anthropic.TextBlockParam{{Text: system}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(user)),
		},
	}

	var result string
	err := retry.WithBackoff(ctx, c.retryConfig, func() error {
		out, err := c.circuitBreaker.Execute(func() (interface{}, error) {
			return c.doComplete(ctx, params)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("claude api circuit breaker open, request rejected",
					slog.String("service", "claude-api"),
					slog.String("state", c.circuitBreaker.State().String()))
				return fmt.Errorf("claude api unavailable: circuit breaker open")
			}
			return err
		}
		result = out.(string)
		return nil
	})
	return result, err
}

func (c *Claude) doComplete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	requestID := uuid.New().String()
	start := time.Now()
	message, err := c.client.Messages.New(ctx, params)
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "Claude completion failed",
			slog.String("request_id", requestID),
			slog.String("model", string(params.Model)),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: apiErr.Error()}
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(tb.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("claude api returned empty response")
	}

	slog.InfoContext(ctx, "Claude completion finished",
		slog.String("request_id", requestID),
		slog.String("model", string(params.Model)),
		slog.Int64("output_tokens", message.Usage.OutputTokens),
		slog.Duration("duration", duration))
	return sb.String(), nil
}
