package cmd

import (
	"fmt"
	"time"

	"specprobe/internal/app"

	"github.com/spf13/cobra"
)

var (
	watchOpenAPI string
	watchStories string
	watchOutput  string
)

// watchCmd regenerates tests whenever the inputs change.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Regenerate tests whenever the OpenAPI document or stories change",
	Long: `Generates the tests once and then watches the OpenAPI document and the
stories file. Every change, after a short debounce, regenerates the pytest
modules and the test specification. Runs until interrupted.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVar(&watchOpenAPI, "openapi", "", "OpenAPI document (.yaml, .yml or .json)")
	watchCmd.Flags().StringVarP(&watchStories, "stories", "s", "", "Markdown file with user stories")
	watchCmd.Flags().StringVarP(&watchOutput, "output", "d", "", "Output directory (overrides the configuration)")
	_ = watchCmd.MarkFlagRequired("openapi")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireFile("OpenAPI file", watchOpenAPI); err != nil {
		return err
	}
	application, err := newApplication(cmd, watchOutput)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "👀 Watching %s (Ctrl+C to stop)\n", watchOpenAPI)
	return application.Watch(ctx, app.GenerateOptions{
		SpecPath:    watchOpenAPI,
		StoriesPath: watchStories,
	}, func(res *app.GenerateResult, err error) {
		stamp := time.Now().Format("15:04:05")
		if err != nil {
			fmt.Fprintf(out, "[%s] ✗ Generation failed: %v\n", stamp, err)
			return
		}
		fmt.Fprintf(out, "[%s] ✓ Generated %d test cases into %d module(s)\n", stamp, len(res.Cases), len(res.Modules))
	})
}
