package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"termsheet/internal/storage"
)

func newSnapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots [flags]",
		Short: "list or delete stored sheet snapshots.",
		Long: `List the snapshots taken with :snap in the editor, or delete one.
The database defaults to storage.snapshots from the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			path := GetString(cmd, "db")
			if path == "" {
				path = cfg.Storage.Snapshots
			}
			db, err := storage.OpenSnapshots(path)
			if err != nil {
				return err
			}
			defer db.Close()

			if name := GetString(cmd, "delete"); name != "" {
				if err := db.Delete(name); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", name)
				return nil
			}

			names, err := db.List()
			if err != nil {
				return err
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
	cmd.Flags().String("db", "", "snapshot database")
	cmd.Flags().String("delete", "", "delete the named snapshot")
	return cmd
}
