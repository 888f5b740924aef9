package batch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/alnah/postopt/internal/optimize"
)

// Encode writes results as a JSON array followed by a newline.
// Non-ASCII text and HTML characters are written verbatim.
func Encode(w io.Writer, results []optimize.Result, pretty bool) error {
	if results == nil {
		results = []optimize.Result{}
	}
	if err := newEncoder(w, pretty).Encode(results); err != nil {
		return fmt.Errorf("encode results: %w", err)
	}
	return nil
}

// EncodeResult writes a single result as a JSON object followed by a newline.
func EncodeResult(w io.Writer, result optimize.Result, pretty bool) error {
	if err := newEncoder(w, pretty).Encode(result); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func newEncoder(w io.Writer, pretty bool) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc
}
