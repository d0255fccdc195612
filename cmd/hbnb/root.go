package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/hbnb"
	"github.com/aretw0/hbnb/pkg/console"
)

var (
	verbose    bool
	configPath string
	filePath   string
	watch      bool
	versioning bool

	cfg *hbnb.Config
)

// rootCmd runs the interactive shell when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "hbnb",
	Short: "A command shell over a JSON-file object store",
	Long: `hbnb keeps User, State, City, Amenity, Place and Review records in a
single JSON file and lets you create, show, update and destroy them from a
line-oriented shell. Commands are read from stdin, so the shell can be
scripted: echo "create User" | hbnb`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		c, err := loadConfig(cmd)
		if err != nil {
			fatal("Failed to load configuration", err)
		}
		cfg = c

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), opts))
		slog.SetDefault(logger)
	},
	RunE: runShell,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to "+hbnb.ConfigFile+" (default: searched upwards from the working directory)")
	rootCmd.PersistentFlags().StringVarP(&filePath, "file", "f", "", "Backing JSON file (overrides the configuration)")
	rootCmd.PersistentFlags().BoolVar(&versioning, "versioning", false, "Commit the backing file to git after every save")
	rootCmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the table when the backing file changes on disk")
}

// loadConfig resolves the configuration: --config, else hbnb.yaml found
// upwards from the working directory, else defaults. Flags win over the file.
func loadConfig(cmd *cobra.Command) (*hbnb.Config, error) {
	path := configPath
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		if root, err := hbnb.FindRoot(cwd); err == nil {
			path = filepath.Join(root, hbnb.ConfigFile)
		}
	}

	c := hbnb.DefaultConfig()
	if path != "" {
		loaded, err := hbnb.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("file") {
		c.File = filePath
	}
	if flags.Changed("versioning") {
		c.Versioning = versioning
	}
	if flags.Changed("watch") {
		c.Watch = watch
	}
	return c, nil
}

func openStore(ctx context.Context) (*hbnb.Storage, error) {
	return hbnb.Open(ctx, cfg.File,
		hbnb.WithLogger(slog.Default()),
		hbnb.WithVersioning(cfg.Versioning),
	)
}

func runShell(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	store, err := openStore(ctx)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", cfg.File, err)
	}

	opts := []console.Option{
		console.WithInput(cmd.InOrStdin()),
		console.WithOutput(cmd.OutOrStdout()),
		console.WithPrompt(cfg.Prompt),
		console.WithLogger(slog.Default()),
	}
	if cfg.Watch {
		w, err := store.Watch(ctx)
		if err != nil {
			return fmt.Errorf("failed to watch %s: %w", store.Path(), err)
		}
		slog.Debug("watching backing file", "path", store.Path())
		opts = append(opts, console.WithRefresher(func(ctx context.Context) error {
			_, err := w.Refresh(ctx)
			return err
		}))
	}

	return console.New(store, opts...).Run(ctx)
}
