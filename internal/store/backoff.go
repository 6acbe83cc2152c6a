package store

import (
	"math/rand"
	"time"
)

type BackoffConfig struct {
	BaseDelay time.Duration // e.g. 250ms
	MaxDelay  time.Duration // e.g. 5s
}

func DefaultBackoff() BackoffConfig {
	return BackoffConfig{
		BaseDelay: 250 * time.Millisecond,
		MaxDelay:  5 * time.Second,
	}
}

// NextDelay computes the wait before the next connection attempt using
// exponential backoff with full jitter.
// attempt is 1-based (1 => BaseDelay).
func NextDelay(attempt int, cfg BackoffConfig, rng *rand.Rand) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 250 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 5 * time.Second
	}

	// exponential: base * 2^(attempt-1), guarded against shift overflow
	delay := cfg.MaxDelay
	if attempt < 32 {
		delay = cfg.BaseDelay << (attempt - 1)
	}

	// cap
	if delay > cfg.MaxDelay || delay <= 0 {
		delay = cfg.MaxDelay
	}

	// full jitter: random in [0, delay]
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return time.Duration(rng.Int63n(int64(delay) + 1))
}
