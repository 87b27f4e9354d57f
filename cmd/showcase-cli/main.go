package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/fang"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"showcase/internal/config"
	"showcase/internal/input"
	"showcase/internal/scan"
	"showcase/internal/service"
	"showcase/internal/store"
)

const version = "0.3.0"

var (
	dbPathFlag      string
	configPathFlag  string
	downloadDirFlag string
	cfg             *config.Config
	catalogStore    *store.Store
	svc             *service.Service
)

func cliLogger(msg string) {
	log.Printf("[showcase-cli] %s", msg)
}

// NewRootCmd creates the root command for the CLI application.
// It takes a function `getServiceAndStore` which is responsible for opening
// the catalog store and building the service on top of it. This allows tests
// to inject test-specific instances.
func NewRootCmd(getServiceAndStore func(dbPath string, logger store.LoggerFunc) (*service.Service, *store.Store, error)) *cobra.Command {
	var rootCmd = &cobra.Command{
		Use:   "showcase-cli",
		Short: "Showcase CLI - manage the local program catalog",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			var err error
			cfg, err = config.Load(configPathFlag)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}
			// a failed command skips PersistentPostRun
			if catalogStore != nil {
				catalogStore.Close()
				catalogStore = nil
			}
			dbPath := dbPathFlag
			if dbPath == "" {
				dbPath = cfg.DBPath
			}
			svc, catalogStore, err = getServiceAndStore(dbPath, cliLogger)
			if err != nil {
				return fmt.Errorf("failed to initialize service and store: %w", err)
			}
			svc.FetchTimeout = cfg.FetchTimeout()
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if catalogStore != nil {
				catalogStore.Close()
				catalogStore = nil
			}
		},
	}

	// Import a catalog file or URL
	importCmd := &cobra.Command{
		Use:   "import [file-or-url]",
		Short: "Import programs from a JSON catalog (defaults to the configured source)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			location := cfg.Source
			if len(args) == 1 {
				location = args[0]
			}
			added, total, err := svc.Import(cmd.Context(), location)
			if err != nil {
				return err
			}
			cmd.Printf("Imported %d programs from %s (%d new)\n", total, location, added)
			return nil
		},
	}
	rootCmd.AddCommand(importCmd)

	// Build records from program folders
	scanCmd := &cobra.Command{
		Use:   "scan [directory]",
		Short: "Add one program per sub-directory of screenshots",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			added, total, err := svc.ScanDirectory(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Scanned %d programs in %s (%d new)\n", total, args[0], added)
			return nil
		},
	}
	rootCmd.AddCommand(scanCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List stored programs",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := svc.List()
			if err != nil {
				return err
			}
			if len(records) == 0 {
				cmd.Println("No programs in the catalog.")
				return nil
			}
			for _, rec := range records {
				cmd.Printf("%s\t%s\t%d screenshots\n", rec.ID, rec.Title, len(rec.Screenshots))
			}
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	showCmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := svc.Show(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("ID:          %s\n", rec.ID)
			cmd.Printf("Title:       %s\n", rec.Title)
			cmd.Printf("Description: %s\n", rec.Description)
			if rec.LongDescription != "" && rec.LongDescription != rec.Description {
				cmd.Printf("\n%s\n\n", rec.LongDescription)
			}
			if rec.Icon != "" {
				cmd.Printf("Icon:        %s\n", rec.Icon)
			}
			if rec.DownloadLink != "" {
				cmd.Printf("Download:    %s\n", rec.DownloadLink)
			}
			for i, shot := range rec.Screenshots {
				cmd.Printf("  [%d] %s\n", i+1, shot)
			}
			return nil
		},
	}
	rootCmd.AddCommand(showCmd)

	exportCmd := &cobra.Command{
		Use:   "export [file]",
		Short: "Write the stored programs as a JSON catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := svc.Export(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Exported %d programs to %s\n", n, args[0])
			return nil
		},
	}
	rootCmd.AddCommand(exportCmd)

	removeCmd := &cobra.Command{
		Use:   "remove [id]",
		Short: "Remove a program",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := svc.Remove(args[0]); err != nil {
				return err
			}
			cmd.Printf("Removed %s\n", args[0])
			return nil
		},
	}
	rootCmd.AddCommand(removeCmd)

	downloadCmd := &cobra.Command{
		Use:   "download [id] [n]",
		Short: "Save screenshot n (starting at 1) of a program",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("screenshot number %q: %w", args[1], err)
			}
			dir := downloadDirFlag
			if dir == "" {
				dir = cfg.DownloadDir
			}
			d := service.NewDownloader(service.NewImageService("", cfg.FetchTimeout()), dir, nil)
			path, err := svc.Download(cmd.Context(), d, args[0], n)
			if err != nil {
				return err
			}
			cmd.Printf("Saved %s\n", path)
			return nil
		},
	}
	downloadCmd.Flags().StringVarP(&downloadDirFlag, "dir", "d", "", "Directory to save into (default: download_dir or ~/Downloads)")
	rootCmd.AddCommand(downloadCmd)

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the showcase configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective configuration to the config path",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPathFlag
			if err := cfg.Save(path); err != nil {
				return err
			}
			cmd.Printf("Wrote %s\n", path)
			return nil
		},
	})
	configCmd.AddCommand(&cobra.Command{
		Use:   "keys",
		Short: "List the viewer keybindings",
		RunE: func(cmd *cobra.Command, args []string) error {
			km, err := cfg.Keymap()
			if err != nil {
				return err
			}
			bindings := km.Bindings()
			for _, a := range input.Actions() {
				cmd.Printf("%-12s %-24s %s\n", a.Name, strings.Join(bindings[a.Name], ", "), a.Description)
			}
			return nil
		},
	})
	rootCmd.AddCommand(configCmd)

	// Define persistent flags on the rootCmd returned by NewRootCmd
	// This ensures flags are available when NewRootCmd is called from main or tests.
	rootCmd.PersistentFlags().StringVar(&dbPathFlag, "dbpath", "", "Path to catalog database (default: db_path or the user config dir)")
	rootCmd.PersistentFlags().StringVar(&configPathFlag, "config", config.DefaultPath(), "Path to showcase.yml")

	return rootCmd
}

func openServiceAndStore(dbPath string, logger store.LoggerFunc) (*service.Service, *store.Store, error) {
	st, err := store.Open(dbPath, logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open catalog DB: %w", err)
	}
	return service.NewService(st, scan.NewScanner(scan.LoggerFunc(logger)), logger), st, nil
}

func main() {
	rootCmd := NewRootCmd(openServiceAndStore)
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
