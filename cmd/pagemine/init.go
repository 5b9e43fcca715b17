package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

//go:embed templates/pagemine.yaml
var configTemplate embed.FS

// configFileName is the default configuration file name.
const configFileName = ".pagemine"

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new pagemine configuration file",
		Long: `Initialize creates a new .pagemine configuration file in the current directory.

The generated file includes:
- Commented examples for extraction fields
- Commented examples for site-specific settings
- Documentation for all available options

Examples:
  # Create .pagemine in current directory
  pagemine init

  # Create config file at a specific path
  pagemine init -o myconfig.yaml

  # Force overwrite existing file
  pagemine init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", configFileName,
		"Output file path for the configuration")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing configuration file")

	return cmd
}

// runInitCmd executes the init command.
func runInitCmd(cmd *cobra.Command, _ []string) error {
	outputPath, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}

	if !force {
		if _, err := os.Stat(outputPath); err == nil {
			return fmt.Errorf("configuration file already exists: %s (use -f to overwrite)", outputPath)
		}
	}

	content, err := configTemplate.ReadFile("templates/pagemine.yaml")
	if err != nil {
		return fmt.Errorf("failed to read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("failed to write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Extraction fields shared across crawls")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Per-site headers, depth, and page budgets")

	return nil
}
