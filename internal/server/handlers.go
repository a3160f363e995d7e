package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/sozercan/prompt-relay/apimodels"
	"github.com/sozercan/prompt-relay/internal/relay"
)

const (
	msgMissingPrompt   = "Prompt is missing"
	msgPromptNotString = "Prompt must be a string"
	msgInvalidBody     = "Request body must be a JSON object"
	msgBodyTooLarge    = "Request body is too large"
	msgNotConfigured   = "Google AI model is not configured. Check server logs."
	msgBlocked         = "The response was blocked due to safety concerns. Please try a different prompt."
	msgGeneration      = "Failed to get response from Google AI"
)

// maxBodyBytes bounds the request body; prompts are plain text.
const maxBodyBytes = 1 << 20

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	// Configuration problems take precedence over anything wrong with the body.
	if !s.relay.Ready() {
		writeJSON(w, http.StatusInternalServerError, apimodels.ErrorResponse{Error: msgNotConfigured})
		return
	}

	var req apimodels.ChatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		status, msg := decodeFailure(err)
		slog.Debug("Invalid chat request body", "error", err, "status", status)
		writeJSON(w, status, apimodels.ErrorResponse{Error: msg})
		return
	}

	result, err := s.relay.Chat(r.Context(), req)
	if err != nil {
		var genErr *relay.GenerationError
		switch {
		case errors.Is(err, relay.ErrNotConfigured):
			writeJSON(w, http.StatusInternalServerError, apimodels.ErrorResponse{Error: msgNotConfigured})
		case errors.Is(err, relay.ErrMissingPrompt):
			writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{Error: msgMissingPrompt})
		case errors.Is(err, relay.ErrBlocked):
			writeJSON(w, http.StatusBadRequest, apimodels.ErrorResponse{Error: msgBlocked})
		case errors.As(err, &genErr):
			writeJSON(w, http.StatusInternalServerError, apimodels.ErrorResponse{
				Error:   msgGeneration,
				Details: genErr.Err.Error(),
			})
		default:
			slog.Error("Chat request failed", "error", err)
			writeJSON(w, http.StatusInternalServerError, apimodels.ErrorResponse{
				Error:   msgGeneration,
				Details: err.Error(),
			})
		}
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// decodeFailure maps a body decoding error to a status and client message.
// Only an empty body counts as a missing prompt.
func decodeFailure(err error) (int, string) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		return http.StatusBadRequest, msgMissingPrompt
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, msgBodyTooLarge
	case errors.Is(err, apimodels.ErrPromptNotString):
		return http.StatusBadRequest, msgPromptNotString
	default:
		return http.StatusBadRequest, msgInvalidBody
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := apimodels.HealthResponse{Status: "ok", Gemini: "configured"}
	if !s.relay.Ready() {
		resp.Gemini = "unavailable"
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}
