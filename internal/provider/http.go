package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"techtrack/internal/ratelimit"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// getJSON performs a rate-limited GET and decodes the JSON body into out
func getJSON(ctx context.Context, client *http.Client, limiter *ratelimit.Limiter, name, url string, out any) error {
	if err := limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return &ProviderError{Provider: name, Err: err, Retryable: true}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		limiter.SignalRateLimited()
		return &ProviderError{Provider: name, Err: fmt.Errorf("rate limited"), Retryable: true}
	}
	if resp.StatusCode == http.StatusNotFound {
		return &ProviderError{Provider: name, Err: ErrNoData, Retryable: false}
	}
	if resp.StatusCode >= 500 {
		return &ProviderError{Provider: name, Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: true}
	}
	if resp.StatusCode != http.StatusOK {
		return &ProviderError{Provider: name, Err: fmt.Errorf("status %d", resp.StatusCode), Retryable: false}
	}

	limiter.ResetBackoff()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Provider: name, Err: fmt.Errorf("decoding response: %w", err), Retryable: false}
	}
	return nil
}

// withRetry runs fn up to attempts times while it fails with a
// retryable error, sleeping delay plus the limiter backoff in between.
func withRetry(ctx context.Context, attempts int, delay time.Duration, limiter *ratelimit.Limiter, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay + limiter.GetBackoff()):
		}
	}
	return err
}

// calendarDay reduces t to midnight UTC of its date in loc
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
