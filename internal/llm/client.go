// ABOUTME: OpenAI-compatible client for batch embeddings and chat completion
// ABOUTME: Points at Mistral by default; maps HTTP 429 to ErrRateLimited
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// Defaults target Mistral's OpenAI-compatible API.
const (
	DefaultBaseURL        = "https://api.mistral.ai/v1"
	DefaultEmbeddingModel = "mistral-embed"
	DefaultChatModel      = "mistral-small-latest"
	DefaultTimeout        = 60 * time.Second
)

const systemPrompt = "You are a helpful study assistant. " +
	"Use only the provided context when answering. " +
	"If the answer is not in the context, say you don't know."

// ErrRateLimited marks an upstream 429. It is retryable by the caller; this
// client never retries on its own.
var ErrRateLimited = errors.New("embedding/completion API rate limit reached")

// Config holds client settings.
type Config struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	ChatModel      string
	Timeout        time.Duration
}

// Client wraps an OpenAI-compatible embeddings + chat API.
type Client struct {
	api            *openai.Client
	embeddingModel string
	chatModel      string
	timeout        time.Duration
}

// NewClient builds a Client. A missing API key is a configuration error
// surfaced here, before any request is attempted.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("API key is required (set MISTRAL_API_KEY)")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.EmbeddingModel == "" {
		cfg.EmbeddingModel = DefaultEmbeddingModel
	}
	if cfg.ChatModel == "" {
		cfg.ChatModel = DefaultChatModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = cfg.BaseURL

	return &Client{
		api:            openai.NewClientWithConfig(apiCfg),
		embeddingModel: cfg.EmbeddingModel,
		chatModel:      cfg.ChatModel,
		timeout:        cfg.Timeout,
	}, nil
}

// EmbedBatch embeds all texts in one API call, returning one vector per
// input in input order. An empty batch returns without a network round trip.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: texts,
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, wrapAPIError("embeddings", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float64, len(resp.Data))
	for i, d := range resp.Data {
		vec := make([]float64, len(d.Embedding))
		for j, v := range d.Embedding {
			vec[j] = float64(v)
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// Complete sends the prompt under the fixed study-assistant system
// instruction and returns the assistant's text verbatim.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.1,
		MaxTokens:   512,
	})
	if err != nil {
		return "", wrapAPIError("chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapAPIError keeps rate limiting distinguishable from generic upstream
// failure so callers can apply backoff.
func wrapAPIError(op string, err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == 429 {
		return fmt.Errorf("%s: %w: %v", op, ErrRateLimited, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == 429 {
		return fmt.Errorf("%s: %w: %v", op, ErrRateLimited, err)
	}
	return fmt.Errorf("%s request failed: %w", op, err)
}
