package cmd

import (
	"errors"
	"fmt"
	"strings"

	"specprobe/internal/config"

	"github.com/spf13/cobra"
)

// validateCmd loads the configuration and reports problems.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration",
	Long: `Loads the configuration the same way every other command does (defaults,
--config file, .env, environment variables), validates it and prints the
effective settings.

Exits with code 2 when the configuration cannot be loaded or is invalid.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	settings, err := config.Load(configPath)
	if err != nil {
		var cfgErr *config.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintln(cmd.ErrOrStderr(), cfgErr.DetailedError())
		}
		return err
	}

	if err := settings.Validate(); err != nil {
		fmt.Fprintf(out, "✗ Configuration from %s is invalid:\n", settings.Source())
		var problems config.ValidationErrors
		if errors.As(err, &problems) {
			for _, p := range problems {
				fmt.Fprintf(out, "   • %s\n", p.Error())
			}
		}
		return err
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	if !structuredOutput() {
		fmt.Fprintf(out, "✓ Configuration from %s is valid\n", settings.Source())
	}
	return formatter.FormatData(configDetails(settings))
}

// configDetails flattens the settings worth showing. The auth token is
// masked.
func configDetails(c config.Config) map[string]interface{} {
	token := "(not set)"
	if c.Auth.Token != "" {
		token = "********"
	}
	return map[string]interface{}{
		"api.baseURL":         c.API.BaseURL,
		"api.timeout":         c.API.Timeout.String(),
		"auth.header":         c.Auth.Header,
		"auth.scheme":         c.Auth.Scheme,
		"auth.token":          token,
		"output.dir":          c.Output.Dir,
		"output.testsDir":     c.TestsDir(),
		"generator.framework": c.Generator.TestFramework,
		"generator.slaMs":     c.Generator.PerformanceSLAMs,
		"runner.command":      strings.Join(c.Runner.Command, " "),
		"runner.timeout":      c.Runner.Timeout.String(),
		"llm.baseURL":         c.LLM.BaseURL,
		"llm.model":           c.LLM.Model,
		"mock.addr":           c.Mock.Addr,
	}
}
