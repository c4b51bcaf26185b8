package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/jingkaihe/skillsync/pkg/drift"
	"github.com/jingkaihe/skillsync/pkg/presenter"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show differences between the installed and source documents",
	Long: `Compare the destination with the source without writing anything.

Each file is reported as in-sync, modified, missing (not installed yet) or
stale (installed but no longer in the source; install never removes these).
Exits non-zero when an install would change something.

Examples:
  skillsync status
  skillsync status --diff`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		showDiff, _ := cmd.Flags().GetBool("diff")

		s, err := newSynchronizer(appConfig, true)
		if err != nil {
			return err
		}

		report, inspectErr := drift.Inspect(cmd.Context(), s, drift.WithDiff(showDiff))
		if report == nil {
			return inspectErr
		}

		if !presenter.IsQuiet() {
			printReport(report, showDiff)
		}

		if n := report.Count(drift.StateStale); n > 0 {
			presenter.Warning(fmt.Sprintf("%d stale file(s) installed that are not in the source; remove them by hand if unwanted", n))
		}
		if inspectErr != nil {
			return inspectErr
		}

		pending := report.Count(drift.StateModified) + report.Count(drift.StateMissing)
		if pending > 0 {
			return errors.Errorf("%d file(s) out of sync with source; run 'skillsync install'", pending)
		}
		presenter.Success("Installed documents match the source")
		return nil
	},
}

func printReport(report *drift.Report, showDiff bool) {
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FILE\tKIND\tSTATE")
	fmt.Fprintln(tw, "----\t----\t-----")
	for _, e := range report.Entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.File, e.Kind, e.State)
	}
	tw.Flush()

	if showDiff {
		for _, e := range report.Entries {
			if e.Diff != "" {
				fmt.Print(e.Diff)
			}
		}
	}
}

func init() {
	statusCmd.Flags().Bool("diff", false, "Print unified diffs for modified files")
	rootCmd.AddCommand(statusCmd)
}
