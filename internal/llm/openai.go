package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/sozercan/prompt-relay/internal/config"
)

const enhancePrompt = `You are a prompt-enhancing assistant. Your job is to rewrite the user's prompt to be more detailed,
clear, and effective for a powerful AI model. Return only the enhanced prompt itself, without any extra phrases like "Here is the enhanced prompt:".

Original Prompt: "%s"`

var errNoChoices = errors.New("local model returned no choices")

// OpenAI talks to a locally hosted OpenAI-compatible server (LM Studio,
// Ollama, vLLM) and uses it to enhance prompts.
type OpenAI struct {
	client *openai.Client
	cfg    config.LocalConfig
}

func NewOpenAI(cfg config.LocalConfig, opts ...option.RequestOption) *OpenAI {
	slog.Info("Creating local model client", "endpoint", cfg.Endpoint, "model", cfg.Model)

	// Local servers ignore the key, but the SDK always sends one.
	clientOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.Endpoint),
		option.WithMaxRetries(0),
	}
	clientOpts = append(clientOpts, opts...)

	return &OpenAI{
		client: openai.NewClient(clientOpts...),
		cfg:    cfg,
	}
}

// Enhance asks the local model to rewrite prompt and returns the rewrite.
// Callers decide what to do on error; the relay falls back to the original.
func (o *OpenAI) Enhance(ctx context.Context, prompt string) (string, error) {
	content := fmt.Sprintf(enhancePrompt, prompt)
	params := openai.ChatCompletionNewParams{
		Model: openai.F(openai.ChatModel(o.cfg.Model)),
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(content),
		}),
		Temperature: openai.F(o.cfg.Temperature),
	}
	if o.cfg.MaxTokens > 0 {
		params.MaxTokens = openai.F(o.cfg.MaxTokens)
	}

	slog.Debug("Sending prompt to local model for enhancement", "model", o.cfg.Model)
	// UserMessage serializes content as a list of parts; several local
	// servers only accept a plain string.
	resp, err := o.client.Chat.Completions.New(ctx, params,
		option.WithJSONSet("messages.0.content", content),
	)
	if err != nil {
		return "", fmt.Errorf("local model request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}

	enhanced := strings.TrimSpace(resp.Choices[0].Message.Content)
	slog.Debug("Local model usage", "total_tokens", resp.Usage.TotalTokens)
	return enhanced, nil
}
