package cli

import (
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/druedada/projecte-final/internal/viewmodel"
)

func NewWatchCommand(opts *RootOptions) *cobra.Command {
	var (
		filter   string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print the task list and reprint it after every reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := viewmodel.ParseFilter(filter)
			if err != nil {
				return err
			}
			if interval <= 0 {
				interval = opts.cfg.Client.ReloadInterval
			}

			c := opts.controller(cmd)
			if err := c.SetFilter(f); err != nil {
				return err
			}
			r := opts.renderer(cmd)

			var mu sync.Mutex
			frame := func() {
				s := c.Snapshot()
				if s.Loading {
					return
				}
				mu.Lock()
				defer mu.Unlock()
				_ = r.Snapshot(s)
			}

			// A failed first load still starts the loop; the banner shows the error.
			_ = c.Reload(cmd.Context())
			frame()

			unsubscribe := c.Subscribe(frame)
			defer unsubscribe()

			viewmodel.RunReloader(cmd.Context(), c, viewmodel.ReloaderConfig{Interval: interval}, opts.logger(cmd))
			return nil
		},
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", string(viewmodel.FilterAll), "all|pending|in-progress|completed")
	cmd.Flags().DurationVar(&interval, "interval", 0, "reload interval (default client.reload_interval)")
	return cmd
}
