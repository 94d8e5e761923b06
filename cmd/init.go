package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"specprobe/internal/config"

	"github.com/spf13/cobra"
)

// DefaultConfigFile is the file name init writes the configuration to.
const DefaultConfigFile = "specprobe.yaml"

var (
	initDir   string
	initForce bool
)

// initCmd writes a starter configuration.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default configuration and .env template",
	Long: `Writes specprobe.yaml with the default settings and a .env file listing
every environment variable specprobe understands, then creates the output
directories. Existing files are kept unless --force is given.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initDir, "dir", ".", "Directory to write the files to")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite existing files")
}

func runInit(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	cfgPath := filepath.Join(initDir, DefaultConfigFile)
	envPath := filepath.Join(initDir, config.DefaultEnvFile)

	if !initForce {
		for _, path := range []string{cfgPath, envPath} {
			if _, err := os.Stat(path); err == nil {
				return newInputError("%s already exists; use --force to overwrite", path)
			}
		}
	}

	defaults := config.Default()
	if err := defaults.Save(cfgPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", cfgPath)

	if err := defaults.WriteEnvTemplate(envPath); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Wrote %s\n", envPath)

	if !filepath.IsAbs(defaults.Output.Dir) {
		defaults.Output.Dir = filepath.Join(initDir, defaults.Output.Dir)
	}
	if err := defaults.EnsureDirectories(); err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ Created %s\n", defaults.TestsDir())
	return nil
}
