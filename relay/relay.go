package relay

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Relay validates a Request, builds the prompt and performs the single
// completion call.
type Relay struct {
	provider Provider
	template Template
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Relay.
type Option func(*Relay)

// WithTemplate selects the prompt wording (default TemplateExtended).
func WithTemplate(t Template) Option {
	return func(r *Relay) { r.template = t }
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Relay) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Relay over the given provider.
func New(provider Provider, opts ...Option) *Relay {
	r := &Relay{
		provider: provider,
		template: TemplateExtended,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Template returns the prompt template in use.
func (r *Relay) Template() Template { return r.template }

// Prompt validates req and returns the prompt that Explain would send.
func (r *Relay) Prompt(req Request) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}
	return BuildPrompt(r.template, req.normalize()), nil
}

// Explain sends the prompt for req and returns the model's reply verbatim.
//
// A *ValidationError is returned without contacting the provider when either
// field is blank. Provider failures are returned as-is and never retried.
func (r *Relay) Explain(ctx context.Context, req Request) (*Result, error) {
	prompt, err := r.Prompt(req)
	if err != nil {
		r.logger.Warn("rejected submission", "error", err)
		return nil, err
	}

	r.logger.Debug("sending completion request",
		"template", r.template.String(),
		"prompt_bytes", len(prompt),
	)

	start := r.now()
	resp, err := r.provider.Complete(ctx, messages(prompt))
	elapsed := r.now().Sub(start)
	if err != nil {
		r.logger.Error("completion failed",
			"kind", string(KindOf(err)),
			"elapsed", elapsed,
			"error", err,
		)
		return nil, fmt.Errorf("explaining diagnosis: %w", err)
	}

	r.logger.Info("completion received",
		"model", resp.Model,
		"elapsed", elapsed,
		"prompt_tokens", resp.PromptTokens,
		"completion_tokens", resp.CompletionTokens,
	)

	return &Result{
		Content:          resp.Content,
		Model:            resp.Model,
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		Elapsed:          elapsed,
	}, nil
}
