package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"downtime-panel-bot/internal/storage"
)

var migrateFrom string

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy a JSON state file into the configured backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.StorageBackend == storage.BackendFile || cfg.StorageBackend == "" {
			return fmt.Errorf("STORAGE_BACKEND is %q, nothing to migrate into", storage.BackendFile)
		}
		src := migrateFrom
		if src == "" {
			src = cfg.DataFile
		}

		codec := storage.Codec{LegacyGuildID: cfg.LegacyGuildID(), Log: logr.Named("storage")}
		snap, err := storage.NewFileStore(src, codec).Load(cmd.Context())
		if err != nil {
			return err
		}

		dst, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer dst.Close()

		if err := dst.Save(cmd.Context(), snap); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Migrated %d windows, %d panels, %d event panels from %s to %s\n",
			len(snap.Downtime), len(snap.Panels), len(snap.EventPanels), src, cfg.StorageBackend)
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrateFrom, "from", "", "State file to read (default DATA_FILE)")
	rootCmd.AddCommand(migrateCmd)
}
