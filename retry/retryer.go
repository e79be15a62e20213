package retry

import (
	"context"
	"time"

	"github.com/skynetlabs/skyportal/maths"
)

// RetryableFunc is a function which may be retried, the payload returned will be passed to any user supplied callbacks
// and returned once retries are complete/exhausted.
type RetryableFunc func(ctx *Context) (any, error)

// Retryer executes a given function, retrying upon failure until successful or until the configured number of attempts
// is exhausted.
type Retryer struct {
	options RetryerOptions
}

// NewRetryer returns a new retryer with the given options.
func NewRetryer(options RetryerOptions) Retryer {
	options.defaults()

	return Retryer{options: options}
}

// Do executes the given function until it's successful.
func (r Retryer) Do(fn RetryableFunc) (any, error) {
	return r.DoWithContext(context.Background(), fn)
}

// DoWithContext executes the given function until it's successful, the given context may be used for cancellation;
// cancellation is only checked between attempts, an in-flight attempt must honor the context itself.
//
// NOTE: Upon exhausting retries, the payload from the final attempt is returned alongside a 'RetriesExhaustedError'
// so that it may be used to enhance the returned error; it's not passed to the 'Cleanup' callback.
func (r Retryer) DoWithContext(ctx context.Context, fn RetryableFunc) (any, error) {
	return r.do(NewContext(ctx), fn)
}

func (r Retryer) do(ctx *Context, fn RetryableFunc) (any, error) {
	var (
		payload any
		err     error
	)

	for ; ctx.attempt <= r.options.MaxRetries; ctx.attempt++ {
		if ctx.Err() != nil {
			return nil, &RetriesAbortedError{attempts: ctx.attempt - 1, err: ctx.Err()}
		}

		payload, err = fn(ctx)

		if !r.shouldRetry(ctx, payload, err) {
			return payload, err
		}

		// Attempts exhausted, the payload is purposely left intact so it may be used to enhance the returned error
		if ctx.attempt == r.options.MaxRetries {
			break
		}

		if r.options.Log != nil {
			r.options.Log(ctx, payload, err)
		}

		if r.options.Cleanup != nil {
			r.options.Cleanup(payload)
		}

		if cancelErr := cancellableSleep(ctx, r.duration(ctx.attempt)); cancelErr != nil {
			return nil, &RetriesAbortedError{attempts: ctx.attempt, err: cancelErr}
		}
	}

	return payload, &RetriesExhaustedError{attempts: r.options.MaxRetries, err: err}
}

// shouldRetry returns a boolean indicating whether the given payload/error combination warrants another attempt.
func (r Retryer) shouldRetry(ctx *Context, payload any, err error) bool {
	if r.options.ShouldRetry != nil {
		return r.options.ShouldRetry(ctx, payload, err)
	}

	return err != nil
}

// duration returns the duration to sleep for after the given attempt.
func (r Retryer) duration(attempt int) time.Duration {
	var multiplicand uint64

	switch r.options.Algorithm {
	case AlgorithmFibonacci:
		// Cap the index, anything larger would overflow and is clamped to the max delay anyway
		multiplicand = fibN(maths.Min(attempt, 92))
	case AlgorithmExponential:
		// Cap the shift, anything larger would overflow and is clamped to the max delay anyway
		multiplicand = 1 << uint(maths.Min(attempt, 32))
	case AlgorithmLinear:
		multiplicand = uint64(attempt)
	}

	// A multiplicand this large would overflow the multiplication below and is at least the max delay
	if multiplicand >= uint64(r.options.MaxDelay)/uint64(r.options.MinDelay) {
		return r.options.MaxDelay
	}

	return time.Duration(maths.MinUint64(multiplicand*uint64(r.options.MinDelay), uint64(r.options.MaxDelay)))
}

// cancellableSleep sleeps for the given duration, returning early with the context error upon cancellation.
func cancellableSleep(ctx context.Context, duration time.Duration) error {
	timer := time.NewTimer(duration)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
