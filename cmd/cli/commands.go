package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/opsledger/internal/adapter/http/dto"
	"github.com/iho/opsledger/internal/domain"
	"github.com/iho/opsledger/internal/infrastructure/postgres"
)

const reasonWidth = 32

func approvalsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Approval request operations",
	}

	var status, category, approver string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List approval requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			setQuery(query, "status", status)
			setQuery(query, "category", category)
			setQuery(query, "approver_id", approver)
			query.Set("limit", strconv.Itoa(limit))

			var resp dto.ListResponse[*dto.ApprovalResponse]
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/approvals", query, nil, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tSTATUS\tREQUESTER\tAPPROVER\tMAX\tREASON")
			for _, a := range resp.Items {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Category, a.Status, a.RequesterID, a.ApproverID, a.MaxExpense, truncate(a.Reason, reasonWidth))
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&category, "category", "", "Filter by category")
	listCmd.Flags().StringVar(&approver, "approver", "", "Filter by approver employee ID")
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "Page size")

	var action, note string
	decideCmd := &cobra.Command{
		Use:   "decide <approval-id>",
		Short: "Accept, reject or hold an approval request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ApprovalResponse
			err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/approvals/"+url.PathEscape(args[0])+"/decision", nil,
				dto.DecideApprovalRequest{Action: action, Note: note}, &resp)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), resp)
		},
	}
	decideCmd.Flags().StringVar(&action, "action", "", "Decision: accept, reject or hold")
	decideCmd.Flags().StringVar(&note, "note", "", "Decision note")
	_ = decideCmd.MarkFlagRequired("action")

	cmd.AddCommand(listCmd, decideCmd)
	return cmd
}

func entriesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "Ledger entry operations",
	}

	var status, refType, refID string
	var limit int
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			setQuery(query, "status", status)
			setQuery(query, "reference_type", refType)
			setQuery(query, "reference_id", refID)
			query.Set("limit", strconv.Itoa(limit))

			var resp dto.ListResponse[*dto.EntryResponse]
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/entries", query, nil, &resp); err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tCATEGORY\tSTATUS\tAMOUNT\tREFERENCE\tNARRATION")
			for _, e := range resp.Items {
				ref := ""
				if e.ReferenceType != "" {
					ref = e.ReferenceType + "/" + e.ReferenceID
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.ID, e.Category, e.Status, e.Amount, ref, truncate(e.Narration, reasonWidth))
			}
			return tw.Flush()
		},
	}
	listCmd.Flags().StringVar(&status, "status", "", "Filter by status")
	listCmd.Flags().StringVar(&refType, "reference-type", "", "Filter by reference type")
	listCmd.Flags().StringVar(&refID, "reference-id", "", "Filter by reference ID")
	listCmd.Flags().IntVar(&limit, "limit", domain.DefaultPageSize, "Page size")

	cmd.AddCommand(listCmd)
	for _, transition := range []struct{ use, short string }{
		{"post", "Post a draft entry"},
		{"complete", "Complete a posted entry"},
		{"cancel", "Cancel an entry"},
	} {
		action := transition.use
		cmd.AddCommand(&cobra.Command{
			Use:   action + " <entry-id>",
			Short: transition.short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var resp dto.EntryResponse
				err := newAPIClient(opts).do(cmd.Context(), http.MethodPost, "/entries/"+url.PathEscape(args[0])+"/"+action, nil, nil, &resp)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		})
	}

	return cmd
}

func reconcileCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Compare account balances against posted entries",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "report",
		Short: "Reconcile every account and list discrepancies",
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ReconciliationReportResponse
			if err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/reconciliation/report", nil, nil, &resp); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Accounts: %d, reconciled: %d\n", resp.TotalAccounts, resp.ReconciledAccounts)
			if len(resp.Discrepancies) == 0 {
				fmt.Fprintln(out, "Reconciliation PASSED")
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "KIND\tACCOUNT\tRECORDED\tCALCULATED\tDIFFERENCE")
			for _, d := range resp.Discrepancies {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", d.Kind, d.AccountID, d.RecordedPaid, d.CalculatedPaid, d.Difference)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("reconciliation FAILED: %d discrepancies", len(resp.Discrepancies))
		},
	})

	for _, account := range []struct{ use, path string }{
		{"vendor", "vendor-payments"},
		{"liability", "liabilities"},
		{"salary", "salaries"},
	} {
		path := account.path
		cmd.AddCommand(&cobra.Command{
			Use:   account.use + " <account-id>",
			Short: "Reconcile a single " + account.use + " account",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				var resp dto.ReconciliationResultResponse
				err := newAPIClient(opts).do(cmd.Context(), http.MethodGet, "/reconciliation/"+path+"/"+url.PathEscape(args[0]), nil, nil, &resp)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			},
		})
	}

	return cmd
}

func migrateCmd() *cobra.Command {
	var databaseURL, migrationsPath string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back database migrations",
	}
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL (DATABASE_URL)")
	cmd.PersistentFlags().StringVar(&migrationsPath, "migrations", "migrations", "Directory containing migration files")

	migrator := func() *postgres.Migrator {
		logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
		return postgres.NewMigrator(databaseURL, migrationsPath, logger)
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator().Up()
		},
	}

	var steps int
	downCmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrator().Down(steps)
		},
	}
	downCmd.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			version, dirty, err := migrator().Version()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", version, dirty)
			return nil
		},
	}

	cmd.AddCommand(upCmd, downCmd, versionCmd)
	return cmd
}

func setQuery(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}
