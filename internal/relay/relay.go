package relay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sozercan/prompt-relay/apimodels"
	"github.com/sozercan/prompt-relay/internal/llm"
	"github.com/sozercan/prompt-relay/internal/observability"
)

var (
	ErrMissingPrompt = errors.New("prompt is missing")
	ErrNotConfigured = errors.New("remote model is not configured")
	ErrBlocked       = errors.New("response was blocked")
)

// GenerationError wraps a failure of the remote model call.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// BlockedError reports a generation that produced no content.
type BlockedError struct {
	Reason string
}

func (e *BlockedError) Error() string {
	if e.Reason == "" {
		return ErrBlocked.Error()
	}
	return fmt.Sprintf("%s: %s", ErrBlocked, e.Reason)
}

func (e *BlockedError) Is(target error) bool {
	return target == ErrBlocked
}

// Relay forwards a prompt to the remote generator, optionally rewriting it
// with the local enhancer first. It holds no per-request state.
type Relay struct {
	enhancer  llm.Enhancer
	generator llm.Generator
	model     string
}

// New builds a Relay. A nil generator means the remote client failed to
// initialize; every Chat call then fails with ErrNotConfigured.
func New(enhancer llm.Enhancer, generator llm.Generator, model string) *Relay {
	return &Relay{
		enhancer:  enhancer,
		generator: generator,
		model:     model,
	}
}

// Ready reports whether the remote generator is available.
func (r *Relay) Ready() bool {
	return r.generator != nil
}

func (r *Relay) Chat(ctx context.Context, req apimodels.ChatRequest) (*apimodels.ChatResponse, error) {
	if r.generator == nil {
		return nil, ErrNotConfigured
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, ErrMissingPrompt
	}

	slog.Info("Received prompt", "prompt", req.Prompt, "enhance", req.Enhance)

	finalPrompt := req.Prompt
	if req.Enhance {
		finalPrompt = r.enhance(ctx, req.Prompt)
	}

	slog.Info("Sending final prompt to remote model", "model", r.model, "prompt", finalPrompt)

	start := time.Now()
	resp, err := r.generator.Generate(ctx, finalPrompt)
	observability.ProviderLatency.WithLabelValues("gemini").Observe(time.Since(start).Seconds())
	if err != nil {
		observability.GenerationsTotal.WithLabelValues(r.model, "error").Inc()
		slog.Error("Remote model call failed", "error", err)
		return nil, &GenerationError{Err: err}
	}

	if resp == nil {
		resp = &llm.Response{Blocked: true}
	}

	observability.ProviderTokensTotal.WithLabelValues(r.model, "input").Add(float64(resp.Usage.PromptTokens))
	observability.ProviderTokensTotal.WithLabelValues(r.model, "output").Add(float64(resp.Usage.CompletionTokens))

	if resp.Blocked || resp.Text == "" {
		observability.GenerationsTotal.WithLabelValues(r.model, "blocked").Inc()
		slog.Warn("Remote model returned an empty response (likely blocked)", "reason", resp.BlockReason)
		return nil, &BlockedError{Reason: resp.BlockReason}
	}

	observability.GenerationsTotal.WithLabelValues(r.model, "success").Inc()
	return &apimodels.ChatResponse{Response: resp.Text}, nil
}

// enhance returns the enhanced prompt, or the original when the local model
// fails or returns nothing.
func (r *Relay) enhance(ctx context.Context, prompt string) string {
	if r.enhancer == nil {
		return prompt
	}

	slog.Info("Sending prompt to local model for enhancement")

	start := time.Now()
	enhanced, err := r.enhancer.Enhance(ctx, prompt)
	observability.ProviderLatency.WithLabelValues("local").Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		slog.Warn("Local model enhancement failed, falling back to the original prompt", "error", err)
	case strings.TrimSpace(enhanced) == "":
		slog.Warn("Local model returned an empty prompt, falling back to the original prompt")
	default:
		observability.EnhancementsTotal.WithLabelValues("enhanced").Inc()
		slog.Info("Enhanced prompt received", "prompt", enhanced)
		return enhanced
	}

	observability.EnhancementsTotal.WithLabelValues("fallback").Inc()
	return prompt
}
