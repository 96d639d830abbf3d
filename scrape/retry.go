package scrape

import (
	"context"
	"time"
)

// FetchFunc is the signature for a fetch function.
type FetchFunc func(ctx context.Context, url string) (string, error)

// LogFunc is the signature for a logging function. It matches the methods
// of *slog.Logger.
type LogFunc func(msg string, args ...any)

// DefaultMaxRetries is the default number of fetch attempts per page.
const DefaultMaxRetries = 3

// DefaultRetryDelay is the default pause between fetch attempts.
const DefaultRetryDelay = 2 * time.Second

// FixedDelays returns the delays for maxRetries attempts separated by a
// constant delay. Fewer than two attempts need no delays.
func FixedDelays(maxRetries int, delay time.Duration) []time.Duration {
	if maxRetries < 2 {
		return nil
	}
	delays := make([]time.Duration, maxRetries-1)
	for i := range delays {
		delays[i] = delay
	}
	return delays
}

// DefaultRetryDelays returns FixedDelays(DefaultMaxRetries, DefaultRetryDelay).
func DefaultRetryDelays() []time.Duration {
	return FixedDelays(DefaultMaxRetries, DefaultRetryDelay)
}

// FetchWithRetryDelays fetches a URL, retrying after each failure. There is
// one attempt more than there are delays. The logger, if provided, is called
// for each retry.
func FetchWithRetryDelays(ctx context.Context, url string, fetch FetchFunc, logger LogFunc, delays []time.Duration) (string, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		html, err := fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt >= maxAttempts-1 {
			break
		}

		if err := ctx.Err(); err != nil {
			return "", err
		}

		if logger != nil {
			logger("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return "", lastErr
}
