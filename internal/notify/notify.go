// Package notify delivers results to the caller's evaluation URL.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

const (
	DefaultAttempts     = 5
	DefaultInitialDelay = time.Second
	DefaultTimeout      = 10 * time.Second
)

// Notifier POSTs a JSON payload, retrying on anything but a 200.
type Notifier struct {
	client       *http.Client
	log          *zap.Logger
	attempts     int
	initialDelay time.Duration

	// sleep waits for d or until ctx is done.
	sleep func(ctx context.Context, d time.Duration) error
}

type Option func(*Notifier)

func WithAttempts(attempts int) Option {
	return func(n *Notifier) {
		if attempts > 0 {
			n.attempts = attempts
		}
	}
}

func WithInitialDelay(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.initialDelay = d
		}
	}
}

// WithTimeout bounds each POST.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.client.Timeout = d
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(n *Notifier) {
		n.client = hc
	}
}

func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(n *Notifier) {
		n.sleep = fn
	}
}

func New(log *zap.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		client:       &http.Client{Timeout: DefaultTimeout},
		log:          log,
		attempts:     DefaultAttempts,
		initialDelay: DefaultInitialDelay,
		sleep:        sleepCtx,
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// schedule doubles from initialDelay with no jitter and no cap.
func (n *Notifier) schedule() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = n.initialDelay
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = time.Duration(math.MaxInt64)
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// Notify posts payload to url. Every failed attempt is followed by a wait
// from the schedule (1s, 2s, 4s, ... by default). It reports whether a 200
// was received; the error describes the last failure.
func (n *Notifier) Notify(ctx context.Context, url string, payload any) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("encode payload: %w", err)
	}
	bo := n.schedule()
	var lastErr error
	for attempt := 1; attempt <= n.attempts; attempt++ {
		lastErr = n.post(ctx, url, body)
		if lastErr == nil {
			n.log.Info("notified", zap.String("url", url), zap.Int("attempt", attempt))
			return true, nil
		}
		delay := bo.NextBackOff()
		n.log.Warn("notify attempt failed",
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.Duration("retry_in", delay),
			zap.Error(lastErr))
		if err := n.sleep(ctx, delay); err != nil {
			return false, fmt.Errorf("notify %s: %w (last error: %v)", url, err, lastErr)
		}
	}
	n.log.Error("notify gave up", zap.String("url", url), zap.Int("attempts", n.attempts), zap.Error(lastErr))
	return false, fmt.Errorf("notify %s: %d attempts failed: %w", url, n.attempts, lastErr)
}

func (n *Notifier) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}
