package cmd

import (
	"fmt"

	"specprobe/internal/app"

	"github.com/spf13/cobra"
)

var (
	aiResource     string
	aiConstitution string
	aiSpec         string
	aiGenerate     bool
	aiSkipCheck    bool
	aiPrompt       string
)

// aiCmd asks the local language model for a pytest module.
var aiCmd = &cobra.Command{
	Use:   "ai",
	Short: "Generate a pytest module with the local language model",
	Long: `Asks the configured Ollama model to write a pytest module for one
resource, using the project constitution and feature specification as
context. The module is saved next to the generated tests as
test_<resource>_ai.py.

The constitution and specification are looked up in .specify/memory and
specs/<feature>/ of the current directory and its parents unless given
explicitly.

Examples:
  specprobe ai
  specprobe ai --resource policies --spec specs/001-agents/spec.md`,
	Args: cobra.NoArgs,
	RunE: runAI,
}

func init() {
	rootCmd.AddCommand(aiCmd)

	aiCmd.Flags().StringVarP(&aiResource, "resource", "r", "agents", "Resource the tests should cover")
	aiCmd.Flags().StringVar(&aiConstitution, "constitution", "", "Constitution document (searched for when empty)")
	aiCmd.Flags().StringVar(&aiSpec, "spec", "", "Feature specification document (searched for when empty)")
	aiCmd.Flags().BoolVar(&aiGenerate, "generate", false, "Use the single-prompt generate endpoint instead of chat")
	aiCmd.Flags().BoolVar(&aiSkipCheck, "skip-check", false, "Skip the prerequisite check")
	aiCmd.Flags().StringVar(&aiPrompt, "prompt", "", "Prompt template file using {{ resource }}, {{ constitution }}, {{ specification }} and {{ test_count }}")
}

func runAI(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd, "")
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(cmd.Context())
	defer cancel()

	out := cmd.OutOrStdout()
	if !aiSkipCheck {
		stop := startSpinner(out, "Checking prerequisites...")
		result := application.Check(ctx)
		stop("")
		if !result.Passed {
			printCheckResult(out, result)
			return &app.PrerequisiteError{Missing: result.Failed()}
		}
	}

	model := application.Services().LLM.Model()
	stop := startSpinner(out, fmt.Sprintf("Asking %s for %s tests...", model, aiResource))
	path, err := application.GenerateAI(ctx, app.AIOptions{
		Resource:         aiResource,
		ConstitutionPath: aiConstitution,
		SpecPath:         aiSpec,
		Generate:         aiGenerate,
		PromptFile:       aiPrompt,
	})
	if err != nil {
		stop("")
		return err
	}
	stop("✓ Test code generated")

	fmt.Fprintf(out, "💾 Tests saved to %s\n", path)
	fmt.Fprintln(out, "Run them with: specprobe run --file "+app.AIModuleFileName(aiResource))
	return nil
}
