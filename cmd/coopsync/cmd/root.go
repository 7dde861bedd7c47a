// Package cmd implements the coopsync command line interface.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rooststack/coopsync/internal/config"
	"github.com/rooststack/coopsync/internal/github"
	"github.com/rooststack/coopsync/internal/logging"
	"github.com/rooststack/coopsync/internal/models"
	"github.com/rooststack/coopsync/internal/store"
	"github.com/rooststack/coopsync/internal/syncer"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "coopsync",
	Short: "Poultry record keeping with local and remote-repository storage",
	Long: `coopsync keeps eight record collections (individuals, genetic lines,
fights, medical care, training, feeding, hygiene, weight records) in a
local database and optionally mirrors them to a GitHub repository.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired components a command operates on.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	coord  *syncer.Coordinator
}

// withApp loads configuration, wires the store, remote client, and
// coordinator, runs Initialize, and hands control to fn. The store is
// closed when fn returns. The context is cancelled on SIGINT/SIGTERM.
func withApp(fn func(ctx context.Context, a *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment)

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening local store: %w", err)
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := github.NewClient(nil, cfg.Branch, cfg.DataDir)
	coord := syncer.New(st, client, logger, printNotification)

	if err := coord.Initialize(ctx); err != nil {
		return fmt.Errorf("initializing coordinator: %w", err)
	}

	return fn(ctx, &app{cfg: cfg, logger: logger, store: st, coord: coord})
}

// printNotification renders coordinator notifications on stderr so
// stdout stays clean for exported data.
func printNotification(n models.Notification) {
	fmt.Fprintf(os.Stderr, "[%s] %s\n", n.Kind, n.Message)
}
