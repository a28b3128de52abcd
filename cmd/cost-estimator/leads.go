package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/iwvelando/cost-estimator/internal/estimator"
	"github.com/iwvelando/cost-estimator/internal/leads"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newLeadsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leads",
		Short: "Work with captured leads",
	}

	var out string
	export := &cobra.Command{
		Use:   "export",
		Short: "Write every stored lead as CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			const op = "main.leadsExport"

			_, leadStore, closer, err := a.stores(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()

			table, err := a.table()
			if err != nil {
				return err
			}
			// Export never registers submissions, so no limiter is needed.
			svc := leads.NewService(leadStore, estimator.New(table), nil, a.logger)

			var w io.Writer = cmd.OutOrStdout()
			if out != "" {
				if dir := filepath.Dir(out); dir != "." {
					if err := os.MkdirAll(dir, 0755); err != nil {
						return fmt.Errorf("failed to create directory %s: %w", dir, err)
					}
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", out, err)
				}
				defer func() { _ = f.Close() }()
				w = f
			}

			if err := svc.ExportCSV(cmd.Context(), w); err != nil {
				return err
			}
			if out != "" {
				a.logger.Info("exported leads", zap.String("op", op), zap.String("path", out))
			}
			return nil
		},
	}
	export.Flags().StringVar(&out, "out", "", "write CSV to this file instead of stdout")

	cmd.AddCommand(export)
	return cmd
}
