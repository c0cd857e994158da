// Package retry implements bounded exponential backoff with jitter for
// remote calls. Only remote errors carrying a retryable status code are ever
// retried; everything else propagates to the caller untouched.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"

	lokerrors "github.com/lokalise-tools/lokalise-sync/errors"
)

// Policy describes the retry behavior for a remote operation. It is immutable
// once constructed and validated; a zero JitterRatio disables jitter.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt (>= 0)
	MaxRetries int

	// InitialSleep is the delay before the first retry (> 0)
	InitialSleep time.Duration

	// JitterRatio is the fraction of the current delay used as the jitter
	// upper bound (0..1)
	JitterRatio float64

	// Rand is the randomness source in [0,1); defaults to math/rand/v2
	Rand func() float64
}

// Validate checks the policy for construction-time errors.
func (p Policy) Validate() error {
	if p.MaxRetries < 0 {
		return lokerrors.NewValidationError("maxRetries must be >= 0, got %d", p.MaxRetries)
	}
	if p.InitialSleep <= 0 {
		return lokerrors.NewValidationError("initialSleepTime must be positive, got %s", p.InitialSleep)
	}
	if p.JitterRatio < 0 || p.JitterRatio > 1 {
		return lokerrors.NewValidationError("jitterRatio must be within [0, 1], got %g", p.JitterRatio)
	}
	return nil
}

// Sleeper suspends the caller for the given duration. It is injectable so
// tests can record delays instead of waiting them out.
type Sleeper func(ctx context.Context, d time.Duration) error

// Sleep is the default Sleeper. It returns early with the context error when
// the context is cancelled mid-wait.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do runs op with bounded exponential backoff per the policy. The operation
// is attempted MaxRetries+1 times in total; a policy with MaxRetries = 0
// still performs exactly one attempt.
//
// A remote error with a retryable code is retried until the budget runs out,
// after which it is surfaced as a "Maximum retries reached" error preserving
// the original code and details. A non-retryable remote error fails
// immediately. Any non-remote error propagates unchanged.
func Do[T any](ctx context.Context, p Policy, sleep Sleeper, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if sleep == nil {
		sleep = Sleep
	}
	rnd := p.Rand
	if rnd == nil {
		rnd = rand.Float64
	}

	delay := p.InitialSleep
	attempts := p.MaxRetries + 1
	for attempt := 1; ; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}

		var remote *lokerrors.LokaliseError
		if !errors.As(err, &remote) || !remote.Retryable() {
			return zero, err
		}
		if attempt >= attempts {
			return zero, lokerrors.NewMaxRetriesError(remote)
		}

		if err := sleep(ctx, delay+jitter(rnd, delay, p.JitterRatio)); err != nil {
			return zero, err
		}
		delay *= 2
	}
}

// jitter returns a random duration in [0, floor(delay*ratio)).
func jitter(rnd func() float64, delay time.Duration, ratio float64) time.Duration {
	bound := math.Floor(float64(delay) * ratio)
	if bound <= 0 {
		return 0
	}
	return time.Duration(math.Floor(rnd() * bound))
}
