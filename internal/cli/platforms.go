package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/alnah/postopt/internal/platform"
)

// platformBlurbs describes each platform's rewrite style.
var platformBlurbs = map[string]string{
	platform.Instagram: "conversational, emojis, hashtags and a call to action",
	platform.LinkedIn:  "professional tone, insights, ends with a question",
	platform.Twitter:   "concise and punchy, creates urgency, shareable",
}

// PlatformsCmd creates the platforms command.
func PlatformsCmd(env *Env) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:     "platforms",
		Short:   "List supported platforms",
		Example: `  postopt platforms
  postopt platforms -v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlatforms(env, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Describe each platform's style")

	return cmd
}

// runPlatforms prints one platform name per line in canonical order.
func runPlatforms(env *Env, verbose bool) error {
	names := platform.Names()
	width := 0
	for _, n := range names {
		width = max(width, len(n))
	}

	for _, name := range names {
		if !verbose {
			_, _ = fmt.Fprintln(env.Stdout, name)
			continue
		}
		_, _ = fmt.Fprintf(env.Stdout, "%s%s  %s\n", name, strings.Repeat(" ", width-len(name)), platformBlurbs[name])
	}
	return nil
}
