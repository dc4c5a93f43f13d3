package main

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/harukit/sitegrep/internal/config"
)

//go:embed templates/sitegrep.yaml
var configTemplate embed.FS

// NewInitCmd creates the init command.
func NewInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a starter sitegrep configuration file",
		Long: `Init creates a new .sitegrep configuration file in the current directory.

The generated file includes commented examples for per-site settings:
authentication cookies, extra headers, and skip-limit overrides.

Examples:
  # Create .sitegrep in current directory
  sitegrep init

  # Create config file at a specific path
  sitegrep init -o myconfig.yaml

  # Force overwrite existing file
  sitegrep init -f`,
		RunE: runInitCmd,
	}

	cmd.Flags().StringP("output", "o", config.ConfigFileName,
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

	content, err := configTemplate.ReadFile("templates/sitegrep.yaml")
	if err != nil {
		return fmt.Errorf("read config template: %w", err)
	}

	dir := filepath.Dir(outputPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}

	// 0600: the file is where users put session cookies.
	if err := os.WriteFile(outputPath, content, 0600); err != nil {
		return fmt.Errorf("write configuration file: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Created configuration file: %s\n", outputPath)
	fmt.Fprintln(cmd.OutOrStdout(), "\nEdit this file to configure per-site settings such as:")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Authentication cookies and headers")
	fmt.Fprintln(cmd.OutOrStdout(), "  - Skipped-link tolerance per site")
	fmt.Fprintln(cmd.OutOrStdout(), "  - User-Agent overrides")

	return nil
}
