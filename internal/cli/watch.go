package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/internal/services/lifecycle"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep the dashboard on screen and redraw on every change",
	Long: `Keep the dashboard on screen and redraw on every change.

Backends that push changes (redis) redraw as soon as a task changes anywhere.
The others are polled every --interval.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("interval", 0, "Poll interval for backends without push (default $BOARD_POLL_INTERVAL)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a, err := openApp(cmd, true)
	if err != nil {
		return err
	}

	manager := lifecycle.New(a.cfg.Context.ShutdownTimeout, a.logger)
	manager.Register("board", func(context.Context) error {
		return a.Close()
	})
	manager.Listen(cancel)

	out := cmd.OutOrStdout()
	var drawMu sync.Mutex
	draw := func(tasks []domain.Task) {
		drawMu.Lock()
		defer drawMu.Unlock()
		drawWatchFrame(out, tasks, a.coll.ErrorMessage())
	}
	stop := a.coll.OnChange(draw)
	manager.Register("listener", func(context.Context) error {
		stop()
		return nil
	})
	draw(a.coll.Tasks())

	if !a.coll.Live() {
		interval, _ := cmd.Flags().GetDuration("interval")
		if interval <= 0 {
			interval = a.cfg.Client.PollInterval
		}
		poller, err := services.NewPoller(a.coll, a.logger, services.PollerConfig{Interval: interval})
		if err != nil {
			_ = manager.Shutdown(context.Background())
			return err
		}
		poller.Start()
		manager.Register("poller", func(ctx context.Context) error {
			poller.Stop(ctx)
			return nil
		})
		a.logger.Debug("watching by polling", zap.Duration("interval", interval))
	}

	<-ctx.Done()
	return manager.Shutdown(context.Background())
}

func drawWatchFrame(w io.Writer, tasks []domain.Task, errMsg string) {
	fmt.Fprintf(w, "\n-- %s --\n", now().Format("15:04:05"))
	if errMsg != "" {
		fmt.Fprintf(w, "! %s\n", errMsg)
	}
	_ = renderDashboard(w, tasks)
}
