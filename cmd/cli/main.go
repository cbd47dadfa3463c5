package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every API command.
type options struct {
	baseURL    string
	timeout    time.Duration
	employeeID string
	role       string
	token      string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "opsledger-cli",
		Short:         "OpsLedger CLI tool",
		Long:          `A command line interface for operating the OpsLedger approval and ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the OpsLedger API")
	flags.DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	flags.StringVar(&opts.employeeID, "employee-id", os.Getenv("OPSLEDGER_EMPLOYEE_ID"), "Employee ID sent when auth is disabled")
	flags.StringVar(&opts.role, "role", "operator", "Role sent when auth is disabled")
	flags.StringVar(&opts.token, "token", os.Getenv("OPSLEDGER_TOKEN"), "Bearer token; takes precedence over --employee-id")

	rootCmd.AddCommand(
		approvalsCmd(opts),
		entriesCmd(opts),
		reconcileCmd(opts),
		migrateCmd(),
	)

	return rootCmd
}
