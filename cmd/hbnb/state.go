package main

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Print the storage state as JSON",
	Run: func(cmd *cobra.Command, args []string) {
		store, err := openStore(cmd.Context())
		if err != nil {
			fatal("Failed to open store", err)
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(store.State()); err != nil {
			fatal("Failed to encode state", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(stateCmd)
}
