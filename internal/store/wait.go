package store

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/druedada/projecte-final/internal/task"
)

// WaitReady pings p until it answers or attempts run out, sleeping with
// backoff between attempts. It is only used while the server boots.
func WaitReady(ctx context.Context, p task.Pinger, attempts int, cfg BackoffConfig, logger *log.Logger) error {
	if attempts <= 0 {
		attempts = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		err = p.PingContext(pingCtx)
		cancel()
		if err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		delay := NextDelay(attempt, cfg, rng)
		logger.Printf("store not ready (attempt %d/%d): %v; retrying in %s", attempt, attempts, err, delay)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return fmt.Errorf("store not ready after %d attempts: %w", attempts, err)
}
