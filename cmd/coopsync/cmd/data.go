package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rooststack/coopsync/internal/transfer"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write the full durable snapshot as JSON (stdout by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(_ context.Context, a *app) error {
			data, err := transfer.MarshalSnapshot(a.coord.ExportSnapshot())
			if err != nil {
				return err
			}

			if len(args) == 0 {
				fmt.Println(string(data))
				return nil
			}

			if err := os.WriteFile(args[0], data, 0o600); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}

			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace every collection from a snapshot JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading import file: %w", err)
		}

		snapshot, err := transfer.ParseSnapshot(data)
		if err != nil {
			return err
		}

		return withApp(func(ctx context.Context, a *app) error {
			return a.coord.ImportSnapshot(ctx, snapshot)
		})
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}
