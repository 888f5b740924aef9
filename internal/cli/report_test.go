package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alnah/postopt/internal/metrics"
	"github.com/alnah/postopt/internal/optimize"
)

func sampleSuccess() optimize.Result {
	return optimize.Result{
		Success:              true,
		OriginalDescription:  "New shoes",
		OptimizedDescription: "New shoes just dropped! Which pair? #shoes",
		Platform:             "instagram",
		Metrics: metrics.Metrics{
			OriginalLength:   9,
			OptimizedLength:  42,
			LengthChange:     33,
			HashtagCount:     1,
			QuestionCount:    1,
			ExclamationCount: 1,
		},
		Suggestions: []string{metrics.SuggestMoreHashtags},
	}
}

// ---------------------------------------------------------------------------
// TestReporter_Result
// ---------------------------------------------------------------------------

func TestReporter_Result(t *testing.T) {
	t.Parallel()

	t.Run("success", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		newReporter(&buf, true).result("[1/2]", sampleSuccess())
		out := buf.String()

		for _, want := range []string{
			"[1/2] OK instagram",
			"Original\nNew shoes\n",
			"Optimized\nNew shoes just dropped! Which pair? #shoes\n",
			"9 -> 42 (+33)",
			"hashtags",
			"  - " + metrics.SuggestMoreHashtags,
		} {
			if !strings.Contains(out, want) {
				t.Errorf("report missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("no suggestions section when empty", func(t *testing.T) {
		t.Parallel()

		res := sampleSuccess()
		res.Suggestions = []string{}
		var buf bytes.Buffer
		newReporter(&buf, true).result("", res)

		if strings.Contains(buf.String(), "Suggestions") {
			t.Errorf("unexpected Suggestions section:\n%s", buf.String())
		}
		if !strings.HasPrefix(buf.String(), "OK instagram") {
			t.Errorf("single post report should have no label:\n%s", buf.String())
		}
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		newReporter(&buf, true).result("[2/2]", optimize.Result{Err: errors.New("rate limit exceeded")})

		if got, want := buf.String(), "[2/2] FAILED rate limit exceeded\n"; got != want {
			t.Errorf("report = %q, want %q", got, want)
		}
	})
}

// ---------------------------------------------------------------------------
// TestReporter_Summary
// ---------------------------------------------------------------------------

func TestReporter_Summary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		results []optimize.Result
		want    string
	}{
		{"all ok", []optimize.Result{{Success: true}, {Success: true}}, "2/2 posts optimized (100%) in 3s\n"},
		{"some failed", []optimize.Result{{Success: true}, {}, {}}, "1/3 posts optimized (33%), 2 failed in 3s\n"},
		{"empty batch", nil, "0/0 posts optimized (0%) in 3s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			newReporter(&buf, true).summary(tt.results, "3s")
			if got := buf.String(); got != tt.want {
				t.Errorf("summary = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPalette_Disabled(t *testing.T) {
	t.Parallel()

	p := palette{}
	for _, got := range []string{p.ok("x"), p.fail("x"), p.heading("x"), p.dim("x")} {
		if got != "x" {
			t.Errorf("disabled palette changed text: %q", got)
		}
	}
}

// ---------------------------------------------------------------------------
// TestColorEnabled - colors only reach a terminal
// ---------------------------------------------------------------------------

func TestColorEnabled(t *testing.T) {
	t.Parallel()

	file, err := os.Create(filepath.Join(t.TempDir(), "report.txt"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	t.Cleanup(func() { _ = file.Close() })

	tests := []struct {
		name    string
		w       io.Writer
		noColor bool
	}{
		{"buffer", &bytes.Buffer{}, false},
		{"regular file", file, false},
		{"no-color flag", os.Stderr, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if colorEnabled(tt.w, tt.noColor) {
				t.Errorf("colorEnabled(%s) = true, want false", tt.name)
			}
		})
	}
}

func TestReporter_PlainWhenNotTerminal(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	rep := newReporter(&buf, false)
	rep.result("[1/2]", sampleSuccess())
	rep.result("[2/2]", optimize.Result{Err: errors.New("quota exceeded")})
	rep.summary([]optimize.Result{{Success: true}, {}}, "2s")

	out := buf.String()
	if strings.Contains(out, "\x1b[") {
		t.Errorf("report contains ANSI escapes: %q", out)
	}
	if !strings.Contains(out, "1/2 posts optimized (50%), 1 failed in 2s\n") {
		t.Errorf("summary missing or decorated: %q", out)
	}
	if !strings.Contains(out, "[2/2] FAILED quota exceeded") {
		t.Errorf("failure line missing or decorated: %q", out)
	}
}
