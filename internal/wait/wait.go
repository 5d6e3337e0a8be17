// Package wait provides the bounded polling loop shared by every wait site
// in the bridge: login, form landing, combo popups, the Next button and the
// file chooser all poll through Until with an explicit timeout.
package wait

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var ErrTimeout = errors.New("wait: condition not met before timeout")

type Config struct {
	Timeout  time.Duration
	Interval time.Duration
}

// Until polls check until it reports true, the timeout expires, or the
// context ends. A check error aborts the loop immediately. The returned
// timeout error wraps ErrTimeout and names what was being waited for.
func Until(ctx context.Context, what string, cfg Config, check func(context.Context) (bool, error)) error {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 250 * time.Millisecond
	}

	waitCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	for {
		done, err := check(waitCtx)
		if err != nil {
			return err
		}
		if done {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%s: %w", what, ErrTimeout)
		case <-time.After(cfg.Interval):
		}
	}
}
