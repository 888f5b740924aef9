package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/gookit/color"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"

	"github.com/alnah/postopt/internal/format"
	"github.com/alnah/postopt/internal/optimize"
)

// colorEnabled reports whether output to w should carry ANSI colors: only
// for a terminal that supports them, and never with --no-color.
func colorEnabled(w io.Writer, noColor bool) bool {
	if noColor {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return false
	}
	return color.SupportColor()
}

// palette renders report accents. A disabled palette returns text unchanged.
type palette struct {
	enabled bool
}

func (p palette) paint(s string, colors ...color.Color) string {
	if !p.enabled {
		return s
	}
	return color.New(colors...).Render(s)
}

func (p palette) ok(s string) string      { return p.paint(s, color.FgGreen, color.OpBold) }
func (p palette) fail(s string) string    { return p.paint(s, color.FgRed, color.OpBold) }
func (p palette) heading(s string) string { return p.paint(s, color.FgCyan, color.OpBold) }
func (p palette) dim(s string) string     { return p.paint(s, color.FgGray) }

// reporter writes the human-readable report to stderr.
type reporter struct {
	w   io.Writer
	pal palette
}

func newReporter(w io.Writer, noColor bool) *reporter {
	return &reporter{w: w, pal: palette{enabled: colorEnabled(w, noColor)}}
}

// result prints one post. label is "" for a single post, "[2/5]" in a batch.
func (r *reporter) result(label string, res optimize.Result) {
	prefix := ""
	if label != "" {
		prefix = label + " "
	}

	if !res.Success {
		_, _ = fmt.Fprintf(r.w, "%s%s %s\n", prefix, r.pal.fail("FAILED"), res.ErrorMessage())
		return
	}

	_, _ = fmt.Fprintf(r.w, "%s%s %s\n", prefix, r.pal.ok("OK"), r.pal.dim(res.Platform))
	_, _ = fmt.Fprintf(r.w, "\n%s\n%s\n", r.pal.heading("Original"), res.OriginalDescription)
	_, _ = fmt.Fprintf(r.w, "\n%s\n%s\n\n", r.pal.heading("Optimized"), res.OptimizedDescription)

	m := res.Metrics
	table := tablewriter.NewWriter(r.w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	table.AppendBulk([][]string{
		{"length", fmt.Sprintf("%d -> %d (%s)", m.OriginalLength, m.OptimizedLength, format.Signed(m.LengthChange))},
		{"hashtags", strconv.Itoa(m.HashtagCount)},
		{"questions", strconv.Itoa(m.QuestionCount)},
		{"exclamations", strconv.Itoa(m.ExclamationCount)},
		{"emojis", strconv.Itoa(m.EmojiCount)},
	})
	table.Render()

	if len(res.Suggestions) > 0 {
		_, _ = fmt.Fprintf(r.w, "\n%s\n", r.pal.heading("Suggestions"))
		for _, s := range res.Suggestions {
			_, _ = fmt.Fprintf(r.w, "  - %s\n", s)
		}
	}
	_, _ = fmt.Fprintln(r.w)
}

// summary prints the batch tally.
func (r *reporter) summary(results []optimize.Result, elapsed string) {
	ok := 0
	for _, res := range results {
		if res.Success {
			ok++
		}
	}
	failed := len(results) - ok

	line := fmt.Sprintf("%d/%d posts optimized (%s)", ok, len(results), format.Percent(ok, len(results)))
	if failed > 0 {
		line += ", " + r.pal.fail(fmt.Sprintf("%d failed", failed))
	}
	_, _ = fmt.Fprintf(r.w, "%s in %s\n", line, elapsed)
}
