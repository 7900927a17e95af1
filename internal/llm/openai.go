package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/smart-review/smart-review/internal/core"
)

const (
	defaultOpenAIURL   = "https://api.openai.com/v1/chat/completions"
	defaultOpenAIModel = "gpt-4o-mini"

	systemMessage = "You are an AI code reviewer. Please provide feedback on the changes in the pull request."
)

// SamplingParams carries the optional generation parameters accepted on the
// CLI. Nil pointers mean "let the backend decide". TopK is accepted for
// parity with other backends; the OpenAI chat API has no such parameter and
// the gateway ignores it there.
type SamplingParams struct {
	MaxTokens        int
	Temperature      *float64
	TopP             *float64
	TopK             int
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// OpenAIGateway implements Gateway against the OpenAI chat-completions API.
// Replies are forced into JSON object mode so the reply can be decoded
// without fence stripping.
type OpenAIGateway struct {
	apiKey   string
	model    string
	baseURL  string
	sampling SamplingParams
	client   *http.Client
}

// OpenAIOption customizes an OpenAIGateway.
type OpenAIOption func(*OpenAIGateway)

// WithModel overrides the default model name. Empty values are ignored.
func WithModel(model string) OpenAIOption {
	return func(g *OpenAIGateway) {
		if model != "" {
			g.model = model
		}
	}
}

// WithBaseURL points the gateway at an OpenAI-compatible endpoint. Empty
// values are ignored.
func WithBaseURL(url string) OpenAIOption {
	return func(g *OpenAIGateway) {
		if url != "" {
			g.baseURL = url
		}
	}
}

// WithHTTPClient replaces the default HTTP client, mainly for tests.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(g *OpenAIGateway) {
		g.client = client
	}
}

// NewOpenAIGateway creates a gateway authenticated with the given API key.
func NewOpenAIGateway(apiKey string, sampling SamplingParams, opts ...OpenAIOption) *OpenAIGateway {
	g := &OpenAIGateway{
		apiKey:   apiKey,
		model:    defaultOpenAIModel,
		baseURL:  defaultOpenAIURL,
		sampling: sampling,
		client:   &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type openaiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openaiResponseFormat struct {
	Type string `json:"type"`
}

type openaiRequest struct {
	Model            string                `json:"model"`
	Messages         []openaiMessage       `json:"messages"`
	MaxTokens        int                   `json:"max_tokens,omitempty"`
	Temperature      *float64              `json:"temperature,omitempty"`
	TopP             *float64              `json:"top_p,omitempty"`
	FrequencyPenalty *float64              `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64              `json:"presence_penalty,omitempty"`
	ResponseFormat   *openaiResponseFormat `json:"response_format,omitempty"`
}

type openaiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// SendPrompt posts the prompt as a chat completion and decodes the reply
// content as a JSON object.
func (g *OpenAIGateway) SendPrompt(ctx context.Context, prompt string) (map[string]any, error) {
	body := openaiRequest{
		Model: g.model,
		Messages: []openaiMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
		MaxTokens:        g.sampling.MaxTokens,
		Temperature:      g.sampling.Temperature,
		TopP:             g.sampling.TopP,
		FrequencyPenalty: g.sampling.FrequencyPenalty,
		PresencePenalty:  g.sampling.PresencePenalty,
		ResponseFormat:   &openaiResponseFormat{Type: "json_object"},
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL, bytes.NewReader(payload))
	if err != nil {
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: fmt.Errorf("creating request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	httpResp, err := g.client.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return nil, &core.LLMError{Kind: core.LLMTimeout, Err: err}
		}
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: fmt.Errorf("sending request: %w", err)}
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: fmt.Errorf("reading response: %w", err)}
	}

	if httpResp.StatusCode == http.StatusRequestTimeout {
		return nil, &core.LLMError{Kind: core.LLMTimeout, Err: fmt.Errorf("API timeout (status %d)", httpResp.StatusCode)}
	}
	if httpResp.StatusCode != http.StatusOK {
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))}
	}

	var result openaiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, &core.LLMError{Kind: core.LLMInvalidJSON, Err: fmt.Errorf("parsing response envelope: %w", err)}
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return nil, &core.LLMError{Kind: core.LLMProtocol, Err: errors.New("no message content in API response")}
	}

	raw, err := decodeJSONObject(result.Choices[0].Message.Content)
	if err != nil {
		return nil, &core.LLMError{Kind: core.LLMInvalidJSON, Err: err}
	}
	return raw, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
