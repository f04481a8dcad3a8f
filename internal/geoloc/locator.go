// Package geoloc wraps one-shot position acquisition: a short timeout, a
// single retry for transient failures, and terminal permission denials.
package geoloc

import (
	"context"
	"errors"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/nolanv/doorstep/internal/domain"
)

// Vars rather than consts so tests can shrink the delays.
var (
	// acquireTimeout caps one position request.
	acquireTimeout = 5 * time.Second
	// retryDelay is how long to wait before the single re-acquire attempt.
	retryDelay = 2 * time.Second
)

// Locator is a source of the current position: a GPS bridge, an IP-based
// lookup, or a fixed configured position.
type Locator interface {
	Current(ctx context.Context) (domain.LatLng, error)
}

// PermissionError marks a position denial that is terminal until the user
// changes their mind; it is never retried.
type PermissionError struct {
	Reason string
}

func (e *PermissionError) Error() string {
	return "geolocation permission denied: " + e.Reason
}

// Acquire requests a single position with a 5-second timeout. Non-permission
// failures are retried once after a short delay; a PermissionError is
// returned immediately.
func Acquire(ctx context.Context, l Locator) (domain.LatLng, error) {
	var pos domain.LatLng
	backoff := retry.WithMaxRetries(1, retry.NewConstant(retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
		defer cancel()

		p, err := l.Current(attemptCtx)
		if err != nil {
			var perm *PermissionError
			if errors.As(err, &perm) {
				return err // terminal
			}
			return retry.RetryableError(err)
		}
		pos = p
		return nil
	})
	if err != nil {
		return domain.LatLng{}, err
	}
	return pos, nil
}

// Static is a Locator pinned to a fixed position, for deployments that
// configure their operating area instead of reading a sensor.
type Static struct {
	Pos domain.LatLng
}

func (s Static) Current(context.Context) (domain.LatLng, error) {
	return s.Pos, nil
}
