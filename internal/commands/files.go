package commands

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/export"
)

// DefaultExportName is used when export is given no file name.
const DefaultExportName = "expenses.csv"

func newExportCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Export all expenses to CSV",
		Long:  "Export all expenses to CSV. Relative names are placed in export_dir; .csv is appended when missing.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := DefaultExportName
			if len(args) > 0 {
				name = args[0]
			}
			if !filepath.IsAbs(name) {
				name = filepath.Join(a.cfg.ExportDir, name)
			}

			s := a.open()
			path, err := export.ExportCSV(name, s.All())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d expense(s) to %s\n", s.Len(), path)
			return nil
		},
	}
}

func newBackupCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Write a timestamped copy of the data file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.open()
			path, err := export.Backup(a.cfg.BackupDir, s.Path(), s.All(), s.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backed up %d expense(s) to %s\n", s.Len(), path)
			return nil
		},
	}
}
