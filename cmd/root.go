package cmd

import (
	"errors"
	"fmt"
	"os"

	"specprobe/internal/app"
	"specprobe/internal/config"
	"specprobe/internal/openapi"
	"specprobe/internal/stories"

	"github.com/spf13/cobra"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error, including failing tests.
	ExitCodeError = 1
	// ExitCodeInputError indicates a malformed OpenAPI document, stories
	// file or configuration.
	ExitCodeInputError = 2
	// ExitCodePrerequisites indicates the AI workflow prerequisites are not met.
	ExitCodePrerequisites = 3
)

// Persistent flags shared by every command.
var (
	configPath   string
	logLevel     string
	verbose      bool
	outputFormat string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "specprobe",
	Short: "Generate and run API tests from OpenAPI documents and user stories",
	Long: `specprobe turns an OpenAPI 3.x document and optional Markdown user
stories into pytest suites, runs them, and renders HTML, Markdown and JSON
reports. It can also ask a local Ollama model for additional tests and serve
a mock of the documented API.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code derived from the
// returned error.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "specprobe version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps an error to a semantic exit code for scripting.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	var prerequisites *app.PrerequisiteError
	if errors.As(err, &prerequisites) {
		return ExitCodePrerequisites
	}

	var (
		malformedSpec  *openapi.MalformedSpecError
		unsupported    *openapi.UnsupportedFormatError
		storyMissing   *stories.FileNotFoundError
		malformedStory *stories.MalformedStoryError
		configErr      *config.ConfigurationError
		validation     config.ValidationErrors
		input          *inputError
	)
	switch {
	case errors.As(err, &malformedSpec),
		errors.As(err, &unsupported),
		errors.As(err, &storyMissing),
		errors.As(err, &malformedStory),
		errors.As(err, &configErr),
		errors.As(err, &validation),
		errors.As(err, &input):
		return ExitCodeInputError
	}

	return ExitCodeError
}

// inputError marks problems with command-line inputs, such as a missing
// OpenAPI file.
type inputError struct {
	msg string
}

func (e *inputError) Error() string { return e.msg }

func newInputError(format string, args ...interface{}) error {
	return &inputError{msg: fmt.Sprintf(format, args...)}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a specprobe YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR); defaults to the configured level")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (implies DEBUG logging)")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "output-format", "table", "Output format (table, json, yaml, console)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
