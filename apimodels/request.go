package apimodels

import (
	"encoding/json"
	"errors"
)

// ErrPromptNotString is returned when the prompt field holds a non-string value.
var ErrPromptNotString = errors.New("prompt must be a string")

type ChatRequest struct {
	// Prompt is the user's text prompt
	Prompt string `json:"prompt"`

	// Enhance rewrites the prompt with the local model before generation
	Enhance bool `json:"enhance,omitempty"`
}

// UnmarshalJSON accepts any JSON value for enhance and reads it by
// truthiness, so "true", 1 and true all request enhancement while false,
// 0, "", null and empty collections do not.
func (r *ChatRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Prompt  json.RawMessage `json:"prompt"`
		Enhance json.RawMessage `json:"enhance"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*r = ChatRequest{}
	if len(raw.Prompt) > 0 && string(raw.Prompt) != "null" {
		if err := json.Unmarshal(raw.Prompt, &r.Prompt); err != nil {
			return ErrPromptNotString
		}
	}

	if len(raw.Enhance) > 0 {
		var v any
		if err := json.Unmarshal(raw.Enhance, &v); err != nil {
			return err
		}
		r.Enhance = truthy(v)
	}
	return nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
