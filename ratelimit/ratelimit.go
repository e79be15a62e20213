package ratelimit

import (
	"context"
	"fmt"
	"io"

	"github.com/skynetlabs/skyportal/maths"

	"golang.org/x/time/rate"
)

// RateLimitedReadSeeker will use its limiter as a rate limit on the number of bytes read.
type RateLimitedReadSeeker struct {
	ctx     context.Context
	rs      io.ReadSeeker
	limiter *rate.Limiter
}

var _ io.ReadSeeker = (*RateLimitedReadSeeker)(nil)

// NewRateLimitedReadSeeker creates a new read seeker which respects "limiter" in terms of the number of bytes read.
func NewRateLimitedReadSeeker(ctx context.Context, rs io.ReadSeeker, limiter *rate.Limiter) *RateLimitedReadSeeker {
	return &RateLimitedReadSeeker{ctx: ctx, rs: rs, limiter: limiter}
}

// Read will read into p whilst respecting the rate limit.
func (r *RateLimitedReadSeeker) Read(p []byte) (int, error) {
	n, err := r.rs.Read(p)
	if n <= 0 {
		return n, err
	}

	if lErr := waitChunked(r.ctx, r.limiter, n); lErr != nil {
		return n, lErr
	}

	return n, err
}

// Seek sets the offset for the next read.
func (r *RateLimitedReadSeeker) Seek(offset int64, whence int) (int64, error) {
	return r.rs.Seek(offset, whence)
}

// waitChunked waits for n tokens in chunks of the limiter's burst size. This is because rate.Limiter will only allow
// at most its burst number of tokens to be drained at once, so if we want to wait for more then several calls to wait
// are required.
func waitChunked(ctx context.Context, limiter *rate.Limiter, n int) error {
	maxChunkSize := limiter.Burst()

	for n > 0 {
		waitFor := maths.Min(n, maxChunkSize)
		if lErr := limiter.WaitN(ctx, waitFor); lErr != nil {
			return fmt.Errorf("could not wait for limiter: %w", lErr)
		}

		n -= waitFor
	}

	return nil
}
