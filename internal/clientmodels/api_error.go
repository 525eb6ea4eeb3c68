package clientmodels

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"
)

// APIErrorResponse holds the fields a control plane error body may carry.
// Each field is kept raw because FastAPI style validation errors put an
// array of objects in detail.
type APIErrorResponse struct {
	Code    int             `json:"-"`
	Detail  json.RawMessage `json:"detail,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	Message json.RawMessage `json:"message,omitempty"`
	Raw     string          `json:"-"`
}

// NewAPIErrorResponse parses an error body. Bodies that are not JSON objects
// are kept as raw text.
func NewAPIErrorResponse(code int, body []byte) *APIErrorResponse {
	apiError := &APIErrorResponse{Code: code}
	if err := json.Unmarshal(body, apiError); err != nil {
		return &APIErrorResponse{
			Code: code,
			Raw:  strings.TrimSpace(string(body)),
		}
	}
	return apiError
}

// Describe returns the best human readable detail, checking detail, error,
// message, the raw body and finally the status line.
func (e *APIErrorResponse) Describe(statusLine string) string {
	for _, field := range []json.RawMessage{e.Detail, e.Error, e.Message} {
		if msg := rawToMessage(field); msg != "" {
			return msg
		}
	}

	if e.Raw != "" {
		return e.Raw
	}

	if statusLine != "" {
		return "HTTP " + statusLine
	}

	return fmt.Sprintf("HTTP %d", e.Code)
}

func rawToMessage(field json.RawMessage) string {
	trimmed := strings.TrimSpace(string(field))
	if trimmed == "" || trimmed == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(field, &s); err == nil {
		return strings.TrimSpace(s)
	}

	// Not a string, surface the compact JSON instead of dropping it
	var v interface{}
	if err := json.Unmarshal(field, &v); err != nil {
		return trimmed
	}
	compact, err := json.Marshal(v)
	if err != nil {
		return trimmed
	}
	return string(compact)
}
