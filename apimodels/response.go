package apimodels

type ChatResponse struct {
	// The remote model's answer
	Response string `json:"response"`
}

type ErrorResponse struct {
	// User-facing error message
	Error string `json:"error"`

	// Underlying failure, set only for downstream errors
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`

	// "configured" or "unavailable"
	Gemini string `json:"gemini"`
}
