// Package rankings implements the HTTP client for the external
// performance rankings source. The client is rate limited and retries
// transient failures with exponential backoff; callers treat any page
// failure as a full-fetch failure.
package rankings

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"circlecrates/internal/models"
)

const (
	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
	maxRetries     = 3
	initialBackoff = 1 * time.Second
	maxBackoff     = 16 * time.Second
	defaultPage    = 50
)

// Client is a rankings API client with rate limiting.
type Client struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	baseURL     string
	apiKey      string
	pageSize    int
	userAgent   string
}

// NewClient creates a rankings client for the given source.
func NewClient(baseURL, apiKey string, pageSize int) *Client {
	if pageSize <= 0 {
		pageSize = defaultPage
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		baseURL:     baseURL,
		apiKey:      apiKey,
		pageSize:    pageSize,
		userAgent:   "circlecrates/1.0",
	}
}

// FetchPage retrieves one page of the rankings listing (1-based).
func (c *Client) FetchPage(ctx context.Context, page int) ([]models.Player, error) {
	url := fmt.Sprintf("%s/rankings?page=%d&limit=%d", c.baseURL, page, c.pageSize)

	var result rankingsPage
	if err := c.doRequest(ctx, url, &result); err != nil {
		return nil, fmt.Errorf("failed to fetch rankings page %d: %w", page, err)
	}

	players := make([]models.Player, 0, len(result.Rankings))
	for _, entry := range result.Rankings {
		players = append(players, entry.toPlayer())
	}
	return players, nil
}

// FetchTop retrieves the first n ranks. Any page failure fails the
// whole fetch; rank-range rolls assume a dense leaderboard, so partial
// results are never returned.
func (c *Client) FetchTop(ctx context.Context, n int) ([]models.Player, error) {
	if n <= 0 {
		return nil, fmt.Errorf("leaderboard size must be positive: %d", n)
	}

	players := make([]models.Player, 0, n)
	pages := (n + c.pageSize - 1) / c.pageSize
	for page := 1; page <= pages; page++ {
		batch, err := c.FetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return nil, fmt.Errorf("rankings page %d returned no entries", page)
		}
		players = append(players, batch...)
	}

	if len(players) > n {
		players = players[:n]
	}
	return players, nil
}

// doRequest performs an HTTP GET with rate limiting and retry logic.
func (c *Client) doRequest(ctx context.Context, url string, result interface{}) error {
	var lastErr error
	backoff := initialBackoff

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter error: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/json")
		if c.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("HTTP request failed: %w", err)

			// Retry on network errors
			if attempt < maxRetries {
				time.Sleep(backoff)
				backoff = minDuration(backoff*2, maxBackoff)
				continue
			}
			return lastErr
		}

		retry, err := c.handleResponse(resp, url, result, &backoff)
		if err == nil && !retry {
			return nil
		}
		lastErr = err
		if !retry || attempt == maxRetries {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

// handleResponse consumes one response. It reports whether the request
// should be retried; non-retryable outcomes return the final error.
func (c *Client) handleResponse(resp *http.Response, url string, result interface{}, backoff *time.Duration) (retry bool, err error) {
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return false, fmt.Errorf("failed to read response body: %w", err)
		}
		if err := json.Unmarshal(body, result); err != nil {
			return false, fmt.Errorf("failed to parse JSON response: %w", err)
		}
		return false, nil

	case http.StatusTooManyRequests:
		// Honor Retry-After when present, otherwise back off.
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if d, perr := time.ParseDuration(retryAfter + "s"); perr == nil {
				time.Sleep(d)
			} else {
				time.Sleep(*backoff)
			}
		} else {
			time.Sleep(*backoff)
		}
		*backoff = minDuration(*backoff*2, maxBackoff)
		return true, fmt.Errorf("rate limited (HTTP 429)")

	case http.StatusNotFound:
		return false, &NotFoundError{URL: url}

	default:
		body, _ := io.ReadAll(resp.Body)

		// 5xx responses are worth another attempt.
		retry = resp.StatusCode >= 500
		if retry {
			time.Sleep(*backoff)
			*backoff = minDuration(*backoff*2, maxBackoff)
		}

		var apiErr APIError
		if jerr := json.Unmarshal(body, &apiErr); jerr == nil && apiErr.Details != "" {
			apiErr.Status = resp.StatusCode
			return retry, &apiErr
		}
		return retry, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
