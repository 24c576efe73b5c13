package sched

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Locker is the cross-instance mutex a job takes before each run.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (token string, err error)
	Unlock(ctx context.Context, key, token string) error
}

// runExclusive runs fn unless another instance holds key. A nil locker runs fn directly.
func runExclusive(ctx context.Context, locker Locker, key string, ttl time.Duration, log *zerolog.Logger, fn func(ctx context.Context)) {
	if locker == nil {
		fn(ctx)
		return
	}
	token, err := locker.TryLock(ctx, key, ttl)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Debug().Err(err).Str("lock", key).Msg("skip run, lock not acquired")
		}
		return
	}
	defer func() {
		if err := locker.Unlock(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn().Err(err).Str("lock", key).Msg("unlock failed")
		}
	}()
	fn(ctx)
}

func loop(ctx context.Context, interval time.Duration, tick func(ctx context.Context)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(ctx)
		}
	}
}
