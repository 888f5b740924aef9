package optimize

import (
	"bytes"
	"encoding/json"

	"github.com/alnah/postopt/internal/metrics"
)

// Request is one post to optimize.
type Request struct {
	Description string
	Platform    string
	Context     string
}

// Result is the outcome of optimizing one Request.
// When Success is false only Err and OriginalDescription are meaningful.
type Result struct {
	Success              bool
	OriginalDescription  string
	OptimizedDescription string
	Platform             string
	Metrics              metrics.Metrics
	Suggestions          []string
	Err                  error
}

func success(req Request, optimized string, m metrics.Metrics, suggestions []string) Result {
	return Result{
		Success:              true,
		OriginalDescription:  req.Description,
		OptimizedDescription: optimized,
		Platform:             req.Platform,
		Metrics:              m,
		Suggestions:          suggestions,
	}
}

func failure(req Request, err error) Result {
	return Result{
		OriginalDescription: req.Description,
		Err:                 err,
	}
}

// ErrorMessage returns the failure text, or "" on success.
func (r Result) ErrorMessage() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

type successJSON struct {
	Success              bool            `json:"success"`
	OriginalDescription  string          `json:"original_description"`
	OptimizedDescription string          `json:"optimized_description"`
	Platform             string          `json:"platform"`
	Metrics              metrics.Metrics `json:"metrics"`
	Suggestions          []string        `json:"suggestions"`
}

type failureJSON struct {
	Success             bool   `json:"success"`
	Error               string `json:"error"`
	OriginalDescription string `json:"original_description"`
}

// MarshalJSON encodes the success or failure record shape.
func (r Result) MarshalJSON() ([]byte, error) {
	if !r.Success {
		return marshalVerbatim(failureJSON{
			Success:             false,
			Error:               r.ErrorMessage(),
			OriginalDescription: r.OriginalDescription,
		})
	}
	suggestions := r.Suggestions
	if suggestions == nil {
		suggestions = []string{}
	}
	return marshalVerbatim(successJSON{
		Success:              true,
		OriginalDescription:  r.OriginalDescription,
		OptimizedDescription: r.OptimizedDescription,
		Platform:             r.Platform,
		Metrics:              r.Metrics,
		Suggestions:          suggestions,
	})
}

// marshalVerbatim encodes v without escaping <, > and &, so post text keeps
// its characters in the output document.
func marshalVerbatim(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
