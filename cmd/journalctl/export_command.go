package main

import (
	"errors"
	"fmt"

	"github.com/mx-space/journal/internal/config"
	"github.com/mx-space/journal/internal/modules/journal/export"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func newExportCommand(ctx *commandContext) *cobra.Command {
	var externalID string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Upload a user's entries to the export bucket",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDB(func(cfg *config.AppConfig, db *gorm.DB) error {
				if !cfg.Export.Enabled() {
					return errors.New("export is not configured")
				}
				u, err := lookupUser(cmd.Context(), db, externalID)
				if err != nil {
					return err
				}
				client, err := export.NewS3Client(cfg.Export)
				if err != nil {
					return err
				}
				svc := export.NewService(db, client, cfg.Export.Bucket, cfg.Export.Prefix, ctx.logger().Named("export"))
				res, err := svc.Export(cmd.Context(), u.ID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to s3://%s/%s (%d bytes)\n",
					res.Entries, res.Bucket, res.Key, res.Bytes)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&externalID, "user", "", "Owner's identity provider subject")
	return cmd
}
