package relay

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// OpenAIProvider implements Provider using the official OpenAI Go SDK against
// any OpenAI-compatible endpoint (OpenRouter by default).
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// OpenAIOption configures an OpenAIProvider.
type OpenAIOption func(*providerConfig)

type providerConfig struct {
	model   string
	apiKey  string
	baseURL string
	timeout time.Duration
}

func defaultProviderConfig() providerConfig {
	return providerConfig{
		model:   DefaultModel,
		baseURL: DefaultBaseURL,
		timeout: DefaultTimeout,
	}
}

// WithModel sets the model identifier (default: deepseek/deepseek-r1:free).
func WithModel(model string) OpenAIOption {
	return func(c *providerConfig) {
		if model != "" {
			c.model = model
		}
	}
}

// WithAPIKey sets the bearer token sent with every request.
func WithAPIKey(key string) OpenAIOption {
	return func(c *providerConfig) { c.apiKey = key }
}

// WithBaseURL overrides the API root; "/chat/completions" is appended.
func WithBaseURL(url string) OpenAIOption {
	return func(c *providerConfig) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTimeout sets the per-request timeout (default: 60 seconds).
func WithTimeout(d time.Duration) OpenAIOption {
	return func(c *providerConfig) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// NewOpenAIProvider creates an OpenAIProvider with the given options. SDK
// retries are disabled.
func NewOpenAIProvider(opts ...OpenAIOption) *OpenAIProvider {
	cfg := defaultProviderConfig()
	for _, o := range opts {
		o(&cfg)
	}

	clientOpts := []option.RequestOption{
		option.WithBaseURL(cfg.baseURL),
		option.WithRequestTimeout(cfg.timeout),
		option.WithMaxRetries(0),
	}
	if cfg.apiKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(cfg.apiKey))
	}

	return &OpenAIProvider{
		client: openai.NewClient(clientOpts...),
		model:  cfg.model,
	}
}

// Complete sends one chat completion request and returns the first choice.
// The body is read raw and decoded by parseCompletion, so a completion is
// accepted whatever Content-Type the endpoint labels it with.
func (p *OpenAIProvider) Complete(ctx context.Context, messages []Message) (*Response, error) {
	params := openai.ChatCompletionNewParams{
		Model:    p.model,
		Messages: toOpenAIMessages(messages),
	}

	var raw []byte
	if _, err := p.client.Chat.Completions.New(ctx, params, option.WithResponseBodyInto(&raw)); err != nil {
		return nil, classifyOpenAIError(err)
	}

	return parseCompletion(raw)
}

// classifyOpenAIError maps SDK errors onto the relay taxonomy.
func classifyOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return newStatusError(apiErr.StatusCode, apiErr.Message)
	}
	if isNetworkError(err) {
		return newTransportError(err)
	}
	return &ResponseShapeError{Reason: fmt.Sprintf("decoding completion: %v", err)}
}

// toOpenAIMessages converts internal Message values to the SDK union type.
func toOpenAIMessages(msgs []Message) []openai.ChatCompletionMessageParamUnion {
	out := make([]openai.ChatCompletionMessageParamUnion, len(msgs))
	for i, m := range msgs {
		switch m.Role {
		case RoleSystem:
			out[i] = openai.SystemMessage(m.Content)
		case RoleAssistant:
			out[i] = openai.AssistantMessage(m.Content)
		default:
			out[i] = openai.UserMessage(m.Content)
		}
	}
	return out
}
