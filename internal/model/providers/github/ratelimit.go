package github

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	ghErrors "github.com/ronwebb/ghinfer/internal/errors"
)

// GitHub rate-limit headers. The Models API signals the reset either as an
// absolute unix timestamp or as seconds remaining.
const (
	headerRateLimitRemaining     = "x-ratelimit-remaining"
	headerRateLimitReset         = "x-ratelimit-reset"
	headerRateLimitTimeRemaining = "x-ratelimit-timeremaining"
	headerRetryAfter             = "retry-after"
)

const (
	backoffBase     = time.Second
	maxResponseSize = 8 << 20
)

// post issues the completion request. Rate-limit responses (429, or 403
// carrying rate-limit signals) are retried up to maxRetries, honoring
// retry-after and the reset headers with exponential backoff otherwise.
// Transport, auth and other protocol failures surface immediately; the
// adapter never retries those.
func (p *Provider) post(ctx context.Context, body []byte) ([]byte, error) {
	var resetAt time.Time

	for attempt := 0; ; attempt++ {
		if err := p.waitForReset(ctx, resetAt); err != nil {
			return nil, err
		}

		httpReq, err := p.newRequest(ctx, body)
		if err != nil {
			return nil, err
		}

		resp, err := p.client.Do(httpReq)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ghErrors.WrapWithCategory(ctx.Err(), "github request aborted", ghErrors.ErrTransport)
			}
			return nil, ghErrors.WrapWithCategory(err, "github request failed", ghErrors.ErrTransport)
		}

		raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if readErr != nil {
			return nil, ghErrors.WrapWithCategory(readErr, "github response read failed", ghErrors.ErrTransport)
		}

		if t, ok := extractReset(resp.Header); ok {
			resetAt = t
		}
		if remaining := resp.Header.Get(headerRateLimitRemaining); remaining != "" {
			slog.Debug("rate limiter: remaining requests", "remaining", remaining)
		}

		switch {
		case isRateLimited(resp):
			if attempt >= p.maxRetries {
				slog.Warn("rate limiter: max retries exceeded", "status", resp.StatusCode)
				return nil, ghErrors.RateLimited("github rate limit retries exhausted (http " + strconv.Itoa(resp.StatusCode) + ")")
			}
			delay := retryDelay(resp.Header, attempt)
			slog.Debug("rate limiter: sleeping before retry", "delay", delay, "attempt", attempt+1)
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}

		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, ghErrors.Auth("github endpoint rejected credential (http " + strconv.Itoa(resp.StatusCode) + ")")

		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return nil, ghErrors.Protocol("github http " + strconv.Itoa(resp.StatusCode) + ": " + snippet(raw))

		default:
			return raw, nil
		}
	}
}

// isRateLimited distinguishes throttling from credential rejection: a 403
// only counts as rate limiting when the response says so.
func isRateLimited(resp *http.Response) bool {
	if resp.StatusCode == http.StatusTooManyRequests {
		return true
	}
	if resp.StatusCode != http.StatusForbidden {
		return false
	}
	return resp.Header.Get(headerRetryAfter) != "" ||
		resp.Header.Get(headerRateLimitReset) != "" ||
		resp.Header.Get(headerRateLimitTimeRemaining) != ""
}

// extractReset reads the reset moment from whichever header variant the
// endpoint used.
func extractReset(header http.Header) (time.Time, bool) {
	if v := header.Get(headerRateLimitReset); v != "" {
		if unix, err := strconv.ParseFloat(v, 64); err == nil {
			return time.Unix(int64(unix), 0), true
		}
	}
	if v := header.Get(headerRateLimitTimeRemaining); v != "" {
		if secs, err := strconv.Atoi(v); err == nil {
			return time.Now().Add(time.Duration(secs) * time.Second), true
		}
	}
	return time.Time{}, false
}

// retryDelay prefers the server-requested retry-after over local backoff.
func retryDelay(header http.Header, attempt int) time.Duration {
	if v := header.Get(headerRetryAfter); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return backoffBase * time.Duration(1<<attempt)
}

func (p *Provider) waitForReset(ctx context.Context, resetAt time.Time) error {
	if resetAt.IsZero() {
		return nil
	}
	wait := time.Until(resetAt)
	if wait <= 0 {
		return nil
	}
	slog.Debug("rate limiter: waiting for reset", "wait", wait)
	return sleepCtx(ctx, wait)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ghErrors.WrapWithCategory(ctx.Err(), "github request aborted", ghErrors.ErrTransport)
	case <-timer.C:
		return nil
	}
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 512 {
		s = s[:512]
	}
	return s
}
