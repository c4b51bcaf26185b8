package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/presenter"
	"github.com/spf13/cobra"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the command definition and skills (default action)",
	Long: `Copy commands/<command_file> and every matching skills/ file from the source
into the destination, creating directories as needed and overwriting files of
the same name. Fails on the first error; files already copied are kept.

Examples:
  skillsync install
  skillsync install --source ~/src/claude-bootstrap
  skillsync install --dry-run`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		dryRun, _ := cmd.Flags().GetBool("dry-run")
		return runInstall(cmd.Context(), appConfig, dryRun)
	},
}

func runInstall(ctx context.Context, cfg config.Config, dryRun bool) error {
	s, err := newSynchronizer(cfg, dryRun)
	if err != nil {
		return err
	}

	result, err := s.Sync(ctx)
	if err != nil {
		return err
	}

	dest := s.Dest()
	if len(result.Excluded) > 0 {
		presenter.Info(fmt.Sprintf("Skipped (excluded): %s", strings.Join(result.Excluded, ", ")))
	}
	if result.DryRun {
		presenter.Info(fmt.Sprintf("Dry run: would install %s to %s", result.CommandFile, dest.CommandsDir()))
		presenter.Info(fmt.Sprintf("Dry run: would install %d skill(s) to %s", len(result.Copied), dest.SkillsDir()))
	} else {
		presenter.Success(fmt.Sprintf("Installed %s to %s", result.CommandFile, dest.CommandsDir()))
		presenter.Success(fmt.Sprintf("Installed %d skill(s) to %s", len(result.Copied), dest.SkillsDir()))
	}

	presenter.Section("Installed skills")
	presenter.List(result.Installed)
	return nil
}

func init() {
	installCmd.Flags().Bool("dry-run", false, "Show what would be installed without writing anything")
	rootCmd.AddCommand(installCmd)
}
