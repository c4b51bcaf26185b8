package main

import (
	"context"
	"os"

	"github.com/jingkaihe/skillsync/pkg/config"
	"github.com/jingkaihe/skillsync/pkg/logger"
	"github.com/jingkaihe/skillsync/pkg/presenter"
	"github.com/jingkaihe/skillsync/pkg/skills"
	"github.com/jingkaihe/skillsync/pkg/synchronizer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// appConfig is resolved once per invocation in PersistentPreRunE.
var appConfig config.Config

var rootCmd = &cobra.Command{
	Use:   "skillsync",
	Short: "Install skill documents and the project command into ~/.claude",
	Long: `skillsync copies commands/initialize-project.md and every skills/*.md file
from a repository checkout into the Claude configuration directory.

Running it without a subcommand performs the install. Existing files with the
same name are overwritten; installed files that no longer exist in the source
are left in place (see "skillsync status").`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		presenter.SetQuiet(quiet)

		if err := config.Setup(viper.GetViper()); err != nil {
			return err
		}
		cfg, err := config.Load(viper.GetViper())
		if err != nil {
			return err
		}
		if err := logger.Configure(cfg.LogLevel, cfg.LogFormat); err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runInstall(cmd.Context(), appConfig, false)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("source", "", "Repository checkout to install from (default: current directory)")
	flags.String("dest", "", "Claude configuration directory (default: ~/.claude)")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.String("log-format", "", "Log format (text, json)")
	flags.BoolP("quiet", "q", false, "Suppress non-error output")

	bindFlags(flags, map[string]string{
		"source":     "source",
		"dest":       "dest",
		"log-level":  "log_level",
		"log-format": "log_format",
	})
}

// bindFlags binds flag names to viper keys so that flags take precedence
// over env and the config file.
func bindFlags(flags *pflag.FlagSet, keys map[string]string) {
	for name, key := range keys {
		_ = viper.BindPFlag(key, flags.Lookup(name))
	}
}

// newSynchronizer builds a Synchronizer for the resolved configuration.
func newSynchronizer(cfg config.Config, dryRun bool) (*synchronizer.Synchronizer, error) {
	source := skills.Layout{
		Root:         cfg.Source,
		CommandFile:  cfg.CommandFile,
		SkillPattern: cfg.SkillPattern,
	}
	s, err := synchronizer.New(source, cfg.Dest,
		synchronizer.WithExclude(cfg.Exclude...),
		synchronizer.WithDryRun(dryRun),
	)
	if err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return s, nil
}

func run() int {
	ctx := logger.WithLogger(context.Background(), logger.L.WithField("app", "skillsync"))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		presenter.Error(err, "")
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
