package viewmodel

import (
	"context"
	"log"
	"time"
)

// Reloader is anything that can refresh itself from the server.
type Reloader interface {
	Reload(ctx context.Context) error
}

type ReloaderConfig struct {
	Interval time.Duration // time between full reloads (e.g. 30s)
	Timeout  time.Duration // per-reload deadline; 0 means Interval
}

func DefaultReloaderConfig() ReloaderConfig {
	return ReloaderConfig{
		Interval: 30 * time.Second,
	}
}

// RunReloader runs until ctx is canceled.
// It calls Reload once per interval. A failed reload is logged and the loop
// keeps going; the controller already shows the error.
func RunReloader(ctx context.Context, r Reloader, cfg ReloaderConfig, logger *log.Logger) {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = cfg.Interval
	}
	if logger == nil {
		logger = log.Default()
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	logger.Printf("reloader started: interval=%s", cfg.Interval)

	for {
		select {
		case <-ctx.Done():
			logger.Printf("reloader stopping: %v", ctx.Err())
			return

		case <-ticker.C:
			reloadCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
			err := r.Reload(reloadCtx)
			cancel()

			if err != nil && ctx.Err() == nil {
				logger.Printf("reloader: reload error: %v", err)
			}
		}
	}
}
