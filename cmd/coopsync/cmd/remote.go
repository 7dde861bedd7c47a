package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rooststack/coopsync/internal/models"
	"github.com/spf13/cobra"
)

var (
	connectToken string
	connectOwner string
	connectRepo  string
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Validate credentials, bootstrap the repository, and enable remote mode",
	RunE: func(cmd *cobra.Command, _ []string) error {
		token := connectToken
		if token == "" {
			token = os.Getenv("GITHUB_TOKEN")
		}

		if token == "" {
			return fmt.Errorf("a token is required (--token or GITHUB_TOKEN)")
		}

		return withApp(func(ctx context.Context, a *app) error {
			return a.coord.Connect(ctx, token, connectOwner, connectRepo)
		})
	},
}

var disconnectCmd = &cobra.Command{
	Use:   "disconnect",
	Short: "Clear remote credentials and return to local mode",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(func(_ context.Context, a *app) error {
			a.coord.Disconnect()
			return nil
		})
	},
}

var modeCmd = &cobra.Command{
	Use:   "mode <local|remote>",
	Short: "Switch the storage mode",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(ctx context.Context, a *app) error {
			return a.coord.SetStorageMode(ctx, models.StorageMode(args[0]))
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show storage mode, connection state, and record counts",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(func(_ context.Context, a *app) error {
			creds := a.coord.Credentials()

			fmt.Printf("mode:    %s\n", a.coord.StorageMode())
			fmt.Printf("status:  %s\n", a.coord.SyncStatus())
			fmt.Printf("remote:  ready=%v", a.coord.IsRemoteReady())

			if creds.Owner != "" {
				fmt.Printf(" (%s/%s)", creds.Owner, creds.Repo)
			}

			fmt.Println()

			for _, entity := range models.Entities {
				fmt.Printf("%-13s %d\n", entity, len(a.coord.Collection(entity)))
			}

			return nil
		})
	},
}

func init() {
	connectCmd.Flags().StringVar(&connectToken, "token", "", "personal access token")
	connectCmd.Flags().StringVar(&connectOwner, "owner", "", "repository owner")
	connectCmd.Flags().StringVar(&connectRepo, "repo", "", "repository name")
	_ = connectCmd.MarkFlagRequired("owner")
	_ = connectCmd.MarkFlagRequired("repo")

	rootCmd.AddCommand(connectCmd)
	rootCmd.AddCommand(disconnectCmd)
	rootCmd.AddCommand(modeCmd)
	rootCmd.AddCommand(statusCmd)
}
