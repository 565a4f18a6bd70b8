package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var auditLimit int

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "Show recent task changes recorded by the service",
	RunE:  runAudit,
}

func init() {
	auditCmd.Flags().IntVar(&auditLimit, "limit", 20, "Number of entries to show")
}

func runAudit(cmd *cobra.Command, args []string) error {
	_, c := newSyncStore()
	entries, err := c.AuditLog(cmd.Context(), auditLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(out, "No audit entries.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tACTION\tOUTCOME\tTASK")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Timestamp.Local().Format(listTimeLayout), e.Action, e.Outcome, e.TaskID)
	}
	return w.Flush()
}
