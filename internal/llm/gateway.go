// Package llm provides the boundary to Large Language Model backends:
// prompt construction, the gateway capability for sending a prompt and
// receiving a JSON object reply, and the classification of that reply
// into a review outcome.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/sevigo/goframe/llms"
	"github.com/sevigo/goframe/llms/gemini"
	"github.com/sevigo/goframe/llms/ollama"

	"github.com/smart-review/smart-review/internal/config"
	"github.com/smart-review/smart-review/internal/core"
)

// Gateway is the LLM capability the orchestrator consumes: send one text
// prompt, get back the decoded JSON object the model replied with. The
// call blocks for the duration of the round; failures surface as
// *core.LLMError and are never retried by the caller.
//
//go:generate mockgen -destination=../../mocks/mock_llm_gateway.go -package=mocks . Gateway
type Gateway interface {
	SendPrompt(ctx context.Context, prompt string) (map[string]any, error)
}

// NewGateway creates the gateway for the configured provider.
func NewGateway(ctx context.Context, cfg config.LLMConfig, logger *slog.Logger) (Gateway, error) {
	switch cfg.Provider {
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, &core.ConfigurationError{Reason: "openai provider selected but no OpenAI key is set"}
		}
		return NewOpenAIGateway(cfg.OpenAIKey, samplingFromConfig(cfg.Sampling),
			WithModel(cfg.Model),
			WithBaseURL(cfg.OpenAIBaseURL),
		), nil

	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, &core.ConfigurationError{Reason: "gemini provider selected but GEMINI_API_KEY is not set"}
		}
		model, err := gemini.New(ctx,
			gemini.WithModel(cfg.Model),
			gemini.WithAPIKey(cfg.GeminiAPIKey),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini model: %w", err)
		}
		return NewModelGateway(model, logger), nil

	case "ollama":
		model, err := ollama.New(
			ollama.WithServerURL(cfg.OllamaHost),
			ollama.WithHTTPClient(newLLMHTTPClient()),
			ollama.WithModel(cfg.Model),
			ollama.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create ollama model: %w", err)
		}
		return NewModelGateway(model, logger), nil

	default:
		return nil, &core.ConfigurationError{Reason: fmt.Sprintf("unsupported LLM provider: %s", cfg.Provider)}
	}
}

func samplingFromConfig(s config.SamplingConfig) SamplingParams {
	return SamplingParams{
		MaxTokens:        s.MaxTokens,
		Temperature:      s.Temperature,
		TopP:             s.TopP,
		TopK:             s.TopK,
		FrequencyPenalty: s.FrequencyPenalty,
		PresencePenalty:  s.PresencePenalty,
	}
}

// modelGateway adapts a goframe model to the Gateway capability.
type modelGateway struct {
	model  llms.Model
	logger *slog.Logger
}

// NewModelGateway wraps a goframe LLM so its text completions can serve as
// JSON object replies. Models frequently wrap JSON in a markdown fence;
// the fence is stripped before decoding.
func NewModelGateway(model llms.Model, logger *slog.Logger) Gateway {
	return &modelGateway{model: model, logger: logger}
}

func (g *modelGateway) SendPrompt(ctx context.Context, prompt string) (map[string]any, error) {
	start := time.Now()
	resp, err := g.model.Call(ctx, prompt)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &core.LLMError{Kind: core.LLMTimeout, Err: err}
		}
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: err}
	}
	g.logger.Debug("llm reply received", "elapsed", time.Since(start).Round(time.Millisecond))

	raw, err := decodeJSONObject(resp)
	if err != nil {
		return nil, &core.LLMError{Kind: core.LLMInvalidJSON, Err: err}
	}
	return raw, nil
}

// newLLMHTTPClient creates an HTTP client with generous timeouts; local
// model servers can take minutes to answer a large review prompt.
func newLLMHTTPClient() *http.Client {
	transport := &http.Transport{
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxConnsPerHost:     10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   5 * time.Minute,
	}
}
