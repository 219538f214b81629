package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/app"
	"github.com/xavierca1/foreclosure-leads/internal/config"
	"github.com/xavierca1/foreclosure-leads/internal/infra/database"
	"github.com/xavierca1/foreclosure-leads/internal/infra/logger"
	"github.com/xavierca1/foreclosure-leads/internal/infra/worker"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

var rootCmd = &cobra.Command{
	Use:   "followups",
	Short: "Send follow-up reminders for open foreclosure submissions",
	Long: `Scans submissions still in "submitted" or "reviewed" and sends the
day 1, 3, 7 and 14 reminders to the admin inbox.

Use "run" from cron or "watch" to keep a process ticking.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one follow-up pass and exit",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withFollowUps(cmd.Context(), func(uc *usecase.RunFollowUpsUseCase, _ *zap.Logger) error {
			out, err := uc.Execute(cmd.Context())
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		})
	},
}

var watchInterval time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run follow-up passes on an interval until interrupted",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if watchInterval <= 0 {
			return fmt.Errorf("--interval must be positive")
		}
		return withFollowUps(cmd.Context(), func(uc *usecase.RunFollowUpsUseCase, log *zap.Logger) error {
			worker.NewFollowUpWorker(uc, watchInterval, log).Start(cmd.Context())
			return nil
		})
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchInterval, "interval", time.Hour, "time between passes")
	rootCmd.AddCommand(runCmd, watchCmd)
}

func withFollowUps(ctx context.Context, fn func(*usecase.RunFollowUpsUseCase, *zap.Logger) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName+"-followups")
	if err != nil {
		return err
	}
	defer log.Sync()

	db, err := database.NewDBConnection(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}

	leads := database.NewLeadRepository(db)
	dispatcher, err := app.NewDispatcher(cfg, leads, log)
	if err != nil {
		return err
	}

	return fn(usecase.NewRunFollowUpsUseCase(leads, dispatcher, log), log)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
