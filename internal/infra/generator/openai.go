package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"healthquiz/internal/domain/entity"
	"healthquiz/internal/resilience/circuitbreaker"
	"healthquiz/internal/resilience/retry"
	"healthquiz/internal/usecase/generate"
)

// OpenAI drafts and reviews questions with the OpenAI chat completion API.
// Generation asks for a JSON object response; review is a plain text reply.
type OpenAI struct {
	client         *openai.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	retryConfig    retry.Config
	config         Config
}

// NewOpenAI creates an OpenAI generator from cfg.
func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	slog.Info("Initialized OpenAI question generator",
		slog.String("model", cfg.Model),
		slog.String("verifier_model", cfg.VerifierModel))

	return &OpenAI{
		client:         openai.NewClientWithConfig(clientCfg),
		circuitBreaker: circuitbreaker.New(circuitbreaker.LLMConfig("openai-api")),
		retryConfig:    retry.AIAPIConfig(),
		config:         cfg,
	}
}

// Generate drafts questions for the article.
func (o *OpenAI) Generate(ctx context.Context, in generate.ArticleInput) ([]entity.QuestionDraft, error) {
	reply, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model: o.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: GenerationPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(in, o.config.MaxInputRunes)},
		},
		Temperature: 0.3,
		MaxTokens:   o.config.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai generate failed: %w", err)
	}
	drafts, err := parseDrafts(reply)
	if err != nil {
		return nil, fmt.Errorf("openai generate: %w", err)
	}
	return drafts, nil
}

// Verify reviews one draft.
func (o *OpenAI) Verify(ctx context.Context, d entity.QuestionDraft) (entity.Verdict, error) {
	payload, err := reviewPayload(d)
	if err != nil {
		return entity.VerdictError, err
	}
	reply, err := o.complete(ctx, openai.ChatCompletionRequest{
		Model: o.config.VerifierModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: VerificationPrompt},
			{Role: openai.ChatMessageRoleUser, Content: payload},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return entity.VerdictError, fmt.Errorf("openai verify failed: %w", err)
	}
	return entity.ParseVerdict(reply), nil
}

// complete runs one chat completion through the retry loop and circuit breaker.
func (o *OpenAI) complete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.config.Timeout)
	defer cancel()

	var result string
	err := retry.WithBackoff(ctx, o.retryConfig, func() error {
		out, err := o.circuitBreaker.Execute(func() (interface{}, error) {
			return o.doComplete(ctx, req)
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				slog.Warn("openai api circuit breaker open, request rejected",
					slog.String("service", "openai-api"),
					slog.String("state", o.circuitBreaker.State().String()))
				return fmt.Errorf("openai api unavailable: circuit breaker open")
			}
			return err
		}
		result = out.(string)
		return nil
	})
	return result, err
}

func (o *OpenAI) doComplete(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	start := time.Now()
	resp, err := o.client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		slog.ErrorContext(ctx, "OpenAI completion failed",
			slog.String("model", req.Model),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai api returned empty response")
	}

	slog.InfoContext(ctx, "OpenAI completion finished",
		slog.String("model", req.Model),
		slog.Int("total_tokens", resp.Usage.TotalTokens),
		slog.Duration("duration", duration))
	return resp.Choices[0].Message.Content, nil
}
