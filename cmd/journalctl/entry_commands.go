package main

import (
	"errors"
	"fmt"

	"github.com/mx-space/journal/internal/config"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	var externalID string

	cmd := &cobra.Command{
		Use:   "analyze <entry-id>",
		Short: "Run the analysis again for one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(cfg *config.AppConfig, db *gorm.DB) error {
				u, err := lookupUser(cmd.Context(), db, externalID)
				if err != nil {
					return err
				}
				svc, err := ctx.entryService(cmd.Context(), cfg, db)
				if err != nil {
					return err
				}
				e, err := svc.Reanalyze(cmd.Context(), u.ID, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if e.Analysis == nil {
					fmt.Fprintf(out, "Entry %s has no analysis\n", e.ID)
					return nil
				}
				fmt.Fprintf(out, "Entry %s: mood=%s score=%.1f color=%s\n",
					e.ID, e.Analysis.Mood, e.Analysis.SentimentScore, e.Analysis.Color)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&externalID, "user", "", "Owner's identity provider subject")
	return cmd
}

func newBackfillCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Analyze entries that have no stored analysis",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit <= 0 {
				return errors.New("--limit must be positive")
			}
			return ctx.withDB(func(cfg *config.AppConfig, db *gorm.DB) error {
				svc, err := ctx.entryService(cmd.Context(), cfg, db)
				if err != nil {
					return err
				}
				n, err := svc.BackfillMissing(cmd.Context(), limit)
				fmt.Fprintf(cmd.OutOrStdout(), "Analyzed %d entries\n", n)
				return err
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum entries to analyze")
	return cmd
}
