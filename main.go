// Main entry point for the application
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"showcase/internal/config"
	"showcase/internal/ui"
)

const version = "0.3.0"

func newRootCmd() *cobra.Command {
	var configPath, source string

	cmd := &cobra.Command{
		Use:   "showcase [program-id]",
		Short: "Browse a program catalog and view its screenshots",
		Long: `Showcase lists the programs of a JSON catalog and shows each program's
screenshots in a zoomable lightbox.

The catalog comes from the configured source: a local file, an http(s) URL,
or "bolt:<path>" for a database built with showcase-cli.`,
		Args: cobra.MaximumNArgs(1),
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if source != "" {
				cfg.Source = source
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			var startID string
			if len(args) == 1 {
				startID = args[0]
			}
			return ui.CreateApplication(cfg, version, startID)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Path to showcase.yml")
	cmd.Flags().StringVarP(&source, "source", "s", "", "Catalog file, URL or bolt:<db path> (overrides the config)")
	return cmd
}

func main() {
	log.SetPrefix("showcase: ")

	if err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
