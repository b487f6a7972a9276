package commands

import (
	"os"

	"ticketwatch-backend/internal/statestore"
	"ticketwatch-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyLimit *int
var historyDb *string

func init() {
	historyLimit = historyCmd.Flags().IntP("limit", "n", 20, "number of checks to show")
	historyDb = historyCmd.Flags().String("db", "", "state database to read (defaults to the configured one)")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--limit <n>]",
	Short: "Shows the most recent check results.",
	Run: func(cmd *cobra.Command, args []string) {
		dbpath := *historyDb
		if dbpath == "" {
			cfg, err := loadConfig()
			if err != nil {
				serviceutil.Fatal("failed to load config", err)
			}
			dbpath = cfg.StateDB
		}

		store, err := statestore.Open(dbpath)
		if err != nil {
			serviceutil.Fatal("failed to open state database", err)
		}
		defer store.Close()

		entries, err := store.History(cmd.Context(), *historyLimit)
		if err != nil {
			serviceutil.Fatal("failed to read history", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendHeader(table.Row{"checked at", "status", "notified", "sample"})
		for _, e := range entries {
			notified := ""
			if e.Notified {
				notified = "yes"
			}
			t.AppendRow(table.Row{
				e.CheckedAt.Format("2006-01-02 15:04:05"),
				string(e.Status),
				notified,
				e.Sample,
			})
		}
		t.Render()
	},
}
