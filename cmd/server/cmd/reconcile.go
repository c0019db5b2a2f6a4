package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/digital-event-scheduler/server/internal/config"
	"github.com/digital-event-scheduler/server/internal/storage/postgres"
)

// reconcileCmd recomputes the cached per-user counters (totalPosts,
// approved) from the events table. The request path maintains them
// best-effort without transactions, so a failed counter write leaves
// them stale until this runs.
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Recompute cached user counters from the events table",
	Long: `Recompute the cached totalPosts and approved counters on every user
from the events table.

Counter updates on the request path are best-effort: a write that fails
after its event mutation succeeded is logged and accepted. This command
closes any resulting drift.

Examples:
  server reconcile`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("config error: %w", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		pool, err := postgres.Connect(ctx, cfg.Database.URL, cfg.Database.MaxConnections)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		repo, err := postgres.NewRepository(pool)
		if err != nil {
			return err
		}

		fixed, err := repo.Users().RecountCounters(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reconciled counters for %d user(s)\n", fixed)
		return nil
	},
}
