package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/billbatista/chama360/config"
	"github.com/billbatista/chama360/eventlogger"
	"github.com/spf13/cobra"
)

func eventsCommand() *cobra.Command {
	var eventType string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print journaled events of one type as JSON lines",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			if cfg.DatabaseURL == "" {
				return errors.New("events requires databaseUrl")
			}

			db, err := openDatabase(cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer db.Close()

			events, err := eventlogger.NewSqlEventLogger(db).GetByType(cmd.Context(), eventType)
			if err != nil {
				return fmt.Errorf("fetching events: %w", err)
			}

			enc := json.NewEncoder(os.Stdout)
			for _, e := range events {
				if err := enc.Encode(e); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&eventType, "type", "", "event type, e.g. ledger.contribution_recorded")
	cmd.MarkFlagRequired("type")
	return cmd
}
