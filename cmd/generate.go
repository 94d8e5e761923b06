package cmd

import (
	"fmt"
	"io"

	"specprobe/internal/app"
	"specprobe/internal/scenario"

	"github.com/spf13/cobra"
)

var (
	generateOpenAPI  string
	generateStories  string
	generateOutput   string
	generateSpecOnly bool
	generateCodeOnly bool
)

// generateCmd turns an OpenAPI document and optional stories into pytest
// modules and a test specification document.
var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate pytest modules and a test specification",
	Long: `Reads an OpenAPI 3.x document (YAML or JSON) and optionally a Markdown
file of user stories, synthesizes test cases for every endpoint and writes one
pytest module per resource plus test_specification.md.

Examples:
  specprobe generate --openapi api.yaml
  specprobe generate --openapi api.yaml --stories stories.md -d out
  specprobe generate --openapi api.yaml --spec-only --output-format json`,
	Args: cobra.NoArgs,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVar(&generateOpenAPI, "openapi", "", "OpenAPI document (.yaml, .yml or .json)")
	generateCmd.Flags().StringVarP(&generateStories, "stories", "s", "", "Markdown file with user stories")
	generateCmd.Flags().StringVarP(&generateOutput, "output", "d", "", "Output directory (overrides the configuration)")
	generateCmd.Flags().BoolVar(&generateSpecOnly, "spec-only", false, "Only write the test specification document")
	generateCmd.Flags().BoolVar(&generateCodeOnly, "code-only", false, "Only write the pytest modules")
	_ = generateCmd.MarkFlagRequired("openapi")
	generateCmd.MarkFlagsMutuallyExclusive("spec-only", "code-only")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := requireFile("OpenAPI file", generateOpenAPI); err != nil {
		return err
	}

	application, err := newApplication(cmd, generateOutput)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	res, err := application.Generate(ctx, app.GenerateOptions{
		SpecPath:    generateOpenAPI,
		StoriesPath: generateStories,
		SpecOnly:    generateSpecOnly,
		CodeOnly:    generateCodeOnly,
	})
	if err != nil {
		return err
	}

	if structuredOutput() {
		formatter, err := newFormatter(cmd)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTestCases(res.Cases))
		return nil
	}
	printGenerateResult(cmd.OutOrStdout(), res)
	return nil
}

func printGenerateResult(out io.Writer, res *app.GenerateResult) {
	fmt.Fprintln(out, header(out, "Test generation complete"))
	fmt.Fprintf(out, "   • Endpoints: %d\n", len(res.Spec.Endpoints()))
	if res.Stories != nil {
		fmt.Fprintf(out, "   • User stories: %d\n", len(res.Stories.Stories()))
	}
	fmt.Fprintf(out, "   • Test cases: %d\n", len(res.Cases))

	counts := scenario.CountByType(res.Cases)
	for _, t := range scenario.AllScenarioTypes {
		if n := counts[t]; n > 0 {
			fmt.Fprintf(out, "       %-15s %d\n", t, n)
		}
	}

	for _, m := range res.Modules {
		fmt.Fprintf(out, "   • Wrote %s\n", m)
	}
	if res.SpecificationFile != "" {
		fmt.Fprintf(out, "   • Wrote %s\n", res.SpecificationFile)
	}
}
