package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/sozercan/prompt-relay/internal/config"
)

// contentGenerator is the part of *genai.GenerativeModel used by Gemini.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Gemini generates answers with a single Gemini model.
type Gemini struct {
	client *genai.Client
	model  contentGenerator
	name   string
}

func NewGemini(ctx context.Context, cfg config.GeminiConfig, opts ...option.ClientOption) (*Gemini, error) {
	slog.Info("Creating Gemini client", "model", cfg.Model)
	if cfg.APIKey == "" {
		return nil, errors.New("Gemini API key is not set")
	}

	clientOpts := append([]option.ClientOption{option.WithAPIKey(cfg.APIKey)}, opts...)
	client, err := genai.NewClient(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &Gemini{
		client: client,
		model:  client.GenerativeModel(cfg.Model),
		name:   cfg.Model,
	}, nil
}

// Model returns the configured model name.
func (g *Gemini) Model() string {
	return g.name
}

func (g *Gemini) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

// Generate sends prompt as a single-turn request. Safety blocks and empty
// candidates come back as a Blocked response; everything else that goes
// wrong is returned as an error.
func (g *Gemini) Generate(ctx context.Context, prompt string) (*Response, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))

	var blocked *genai.BlockedError
	if errors.As(err, &blocked) {
		return &Response{Blocked: true, BlockReason: blockedReason(blocked)}, nil
	}
	if err != nil {
		return nil, err
	}

	return toResponse(resp), nil
}

func toResponse(resp *genai.GenerateContentResponse) *Response {
	out := &Response{}
	if resp == nil {
		out.Blocked = true
		return out
	}

	if u := resp.UsageMetadata; u != nil {
		out.Usage = Usage{
			PromptTokens:     int64(u.PromptTokenCount),
			CompletionTokens: int64(u.CandidatesTokenCount),
			TotalTokens:      int64(u.TotalTokenCount),
		}
	}

	if len(resp.Candidates) == 0 {
		out.Blocked = true
		if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != genai.BlockReasonUnspecified {
			out.BlockReason = pf.BlockReason.String()
		}
		return out
	}

	cand := resp.Candidates[0]
	var sb strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}

	if sb.Len() == 0 {
		out.Blocked = true
		if cand.FinishReason != genai.FinishReasonUnspecified {
			out.BlockReason = cand.FinishReason.String()
		}
		return out
	}

	out.Text = sb.String()
	return out
}

func blockedReason(err *genai.BlockedError) string {
	switch {
	case err.PromptFeedback != nil:
		return err.PromptFeedback.BlockReason.String()
	case err.Candidate != nil:
		return err.Candidate.FinishReason.String()
	default:
		return ""
	}
}
