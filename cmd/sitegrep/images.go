package main

import (
	"github.com/spf13/cobra"

	"github.com/harukit/sitegrep/internal/config"
	"github.com/harukit/sitegrep/internal/model"
)

// NewImagesCmd creates the images command.
func NewImagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "images [flags] <base-url>...",
		Short: "Collect a website's images by crawling its links",
		Long: `Images crawls a website breadth-first from the base URL and downloads
the images it finds. With --research only images whose alt text contains
the given string are collected; without it every image is collected.

Each image is downloaded once even when it appears on many pages.

Examples:
  # Download every image on a site
  sitegrep images https://example.com

  # Only images whose alt text mentions "cat", case-insensitively
  sitegrep images -i -r cat https://example.com

  # Save into a specific directory and inspect EXIF metadata
  sitegrep images -r cat --dir ./cats --exif https://example.com`,
		Args: cobra.MinimumNArgs(1),
		RunE: runImagesCmd,
	}

	addCrawlFlags(cmd)

	cmd.Flags().StringP("research", "r", "",
		"Collect only images whose alt text contains this string (empty collects all)")
	cmd.Flags().StringP("dir", "d", config.DefaultImageDir,
		"Directory to save downloaded images into")
	cmd.Flags().Bool("exif", false,
		"Extract an EXIF metadata summary from each downloaded image")

	return cmd
}

// runImagesCmd executes the images command.
func runImagesCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	cfg.Mode = model.ModeImages
	cfg.Targets = args

	if cfg.Needle, err = cmd.Flags().GetString("research"); err != nil {
		return err
	}
	if cfg.ImageDir, err = cmd.Flags().GetString("dir"); err != nil {
		return err
	}
	if cfg.InspectEXIF, err = cmd.Flags().GetBool("exif"); err != nil {
		return err
	}

	return runCrawl(cmd, cfg)
}
