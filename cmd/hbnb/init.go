package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/aretw0/hbnb"
)

var initGit bool

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [dir]",
	Short: "Create an hbnb.yaml and an empty backing file",
	Long: `Initialize a new store in dir (default: the current directory). Writes a
starter hbnb.yaml unless one exists and creates the backing file. With --git
the directory becomes a git repository and every save is committed.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}
		abs, err := filepath.Abs(dir)
		if err != nil {
			fatal("Failed to resolve directory", err)
		}

		c := hbnb.DefaultConfig()
		c.Versioning = initGit
		cfgPath := filepath.Join(abs, hbnb.ConfigFile)
		if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
			if err := c.Save(cfgPath); err != nil {
				fatal("Failed to write configuration", err)
			}
		}
		c, err = hbnb.LoadConfig(cfgPath)
		if err != nil {
			fatal("Failed to load configuration", err)
		}

		ctx := cmd.Context()
		store, err := hbnb.Open(ctx, c.File, hbnb.WithVersioning(c.Versioning))
		if err != nil {
			fatal("Failed to initialize store", err)
		}
		if _, err := os.Stat(store.Path()); os.IsNotExist(err) {
			if err := store.Save(ctx); err != nil {
				fatal("Failed to create backing file", err)
			}
		}

		fmt.Fprintln(cmd.OutOrStdout(), "Initialized hbnb store in", abs)
	},
}

func init() {
	initCmd.Flags().BoolVar(&initGit, "git", false, "Version the backing file with git")
	rootCmd.AddCommand(initCmd)
}
