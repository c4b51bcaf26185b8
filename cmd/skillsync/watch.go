package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jingkaihe/skillsync/pkg/presenter"
	"github.com/jingkaihe/skillsync/pkg/synchronizer"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Install, then re-install whenever source documents change",
	Long: `Run an install, then watch the source commands/ and skills/ directories and
install again after changes settle. Install errors are reported and watching
continues. Stop with Ctrl+C.

Examples:
  skillsync watch
  skillsync watch --debounce 2s`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		s, err := newSynchronizer(appConfig, false)
		if err != nil {
			return err
		}

		presenter.Info(fmt.Sprintf("Watching %s (debounce %s)", s.Source().Root, appConfig.Watch.Debounce))
		w := synchronizer.NewWatcher(s, appConfig.Watch.Debounce, reportWatchSync)
		return w.Run(ctx)
	},
}

func reportWatchSync(result *synchronizer.Result, err error) {
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		presenter.Error(err, "install failed")
		return
	}
	presenter.Success(fmt.Sprintf("Installed %s and %d skill(s): %s",
		result.CommandFile, len(result.Copied), strings.Join(result.Copied, ", ")))
}

func init() {
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before re-installing (default 500ms)")
	bindFlags(watchCmd.Flags(), map[string]string{"debounce": "watch.debounce"})
	rootCmd.AddCommand(watchCmd)
}
