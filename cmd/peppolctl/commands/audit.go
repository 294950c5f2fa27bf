package commands

import (
	"errors"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/xe-erp/peppol-web/internal/platform/db"
	"github.com/xe-erp/peppol-web/internal/shared"
)

func auditCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List the latest Peppol button actions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.PGDSN == "" {
				return errors.New("peppolctl: PG_DSN is not set, the action log is disabled")
			}
			pool, err := db.New(cmd.Context(), cfg.PGDSN)
			if err != nil {
				return err
			}
			defer pool.Close()
			entries, err := shared.NewAuditLogger(pool).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			printAudit(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of entries")
	return cmd
}

func printAudit(out io.Writer, entries []shared.ActionLog) {
	t := newTable(out, "When", "Actor", "View", "Action", "Outcome")
	for _, e := range entries {
		t.AppendRow(table.Row{e.At.UTC().Format(time.RFC3339), e.Actor, e.View, e.Action, e.Outcome})
	}
	t.Render()
}
