package commands

import (
	"log/slog"

	"ticketwatch-backend/internal/calendar"
	"ticketwatch-backend/internal/checker"
	"ticketwatch-backend/internal/fetcher"
	"ticketwatch-backend/internal/notifier"
	"ticketwatch-backend/internal/statestore"
	"ticketwatch-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var forceNotify *bool

func init() {
	forceNotify = checkCmd.Flags().Bool("force-notify", false,
		"send the notification regardless of any transition, for testing the mail path")
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [--force-notify]",
	Short: "Runs one availability check against the configured ticket page.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadCheckConfig()
		if err != nil {
			serviceutil.Fatal("failed to load config", err)
		}

		store, err := statestore.Open(cfg.StateDB)
		if err != nil {
			serviceutil.Fatal("failed to open state database", err)
		}
		defer store.Close()

		runner := checker.Runner{
			Store:    store,
			Notifier: notifier.New(cfg.Smtp, cfg.NotifyTo),
			Vocab:    checker.DefaultVocabulary,
			URL:      cfg.TicketURL,
		}
		if cfg.CalendarURL != "" {
			runner.Calendar = calendar.NewClient(cfg.CalendarURL, cfg.TicketURL)
		} else {
			renderer, err := fetcher.NewPageRenderer(fetcher.Options{})
			if err != nil {
				serviceutil.Fatal("failed to initialize fetcher", err)
			}
			runner.Renderer = renderer
		}

		decision, err := runner.Run(cmd.Context(), *forceNotify)
		if err != nil {
			serviceutil.Fatal("check failed", err)
		}

		slog.Info("check complete",
			"status", decision.NewState.LastStatus,
			"notified", decision.ShouldNotify)
	},
}
