package relay

import (
	"context"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// HTTPProvider speaks the chat-completions wire format directly. The body it
// sends is exactly {"model": ..., "messages": [...]} with no SDK extras, which
// keeps it usable against strict OpenAI-compatible gateways.
type HTTPProvider struct {
	client   *resty.Client
	endpoint string
	apiKey   string
	model    string
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// NewHTTPProvider creates an HTTPProvider. It accepts the same options as
// NewOpenAIProvider.
func NewHTTPProvider(opts ...OpenAIOption) *HTTPProvider {
	cfg := defaultProviderConfig()
	for _, o := range opts {
		o(&cfg)
	}

	client := resty.New().
		SetTimeout(cfg.timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json")

	return &HTTPProvider{
		client:   client,
		endpoint: strings.TrimRight(cfg.baseURL, "/") + "/chat/completions",
		apiKey:   cfg.apiKey,
		model:    cfg.model,
	}
}

// Complete posts the payload once and extracts choices[0].message.content.
func (p *HTTPProvider) Complete(ctx context.Context, messages []Message) (*Response, error) {
	body := chatRequest{Model: p.model, Messages: make([]chatMessage, len(messages))}
	for i, m := range messages {
		body.Messages[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetAuthToken(p.apiKey).
		SetBody(body).
		Post(p.endpoint)
	if err != nil {
		return nil, newTransportError(err)
	}

	if !resp.IsSuccess() {
		return nil, newStatusError(resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	return parseCompletion(resp.Body())
}

// parseCompletion extracts the reply from a raw chat-completions body.
func parseCompletion(raw []byte) (*Response, error) {
	if !gjson.ValidBytes(raw) {
		return nil, &ResponseShapeError{Reason: "body is not valid JSON"}
	}

	doc := gjson.ParseBytes(raw)
	if !doc.Get("choices").Exists() {
		return nil, &ResponseShapeError{Reason: "missing choices"}
	}
	content := doc.Get("choices.0.message.content")
	if !content.Exists() {
		return nil, &ResponseShapeError{Reason: "missing choices[0].message.content"}
	}
	if content.Type != gjson.String {
		return nil, &ResponseShapeError{Reason: "choices[0].message.content is not a string"}
	}

	return &Response{
		Content:          content.String(),
		Model:            doc.Get("model").String(),
		PromptTokens:     int(doc.Get("usage.prompt_tokens").Int()),
		CompletionTokens: int(doc.Get("usage.completion_tokens").Int()),
	}, nil
}
