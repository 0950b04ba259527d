// Package tmdb talks to The Movie Database API.
package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/time/rate"

	"github.com/icco/moviq/lib/cache"
	"github.com/icco/moviq/models"
)

const (
	DefaultBaseURL = "https://api.themoviedb.org/3"

	defaultRequestsPerSecond = 40
	defaultAttempts          = 2
	defaultRetryDelay        = 250 * time.Millisecond
	maxErrorBody             = 512
)

// Cache lifetimes per kind of response. Paginated listings are never cached.
const (
	TTLGenres          = 24 * time.Hour
	TTLCertification   = 24 * time.Hour
	TTLWatchProviders  = 24 * time.Hour
	TTLReviews         = time.Hour
	TTLRecommendations = time.Hour
	TTLPerson          = 5 * time.Minute
	TTLDetails         = 5 * time.Minute
)

// ErrUnsupportedMediaType is returned when an endpoint is called with a media
// type it does not serve.
var ErrUnsupportedMediaType = errors.New("unsupported media type")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tmdb %s: status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tmdb %s: status %d", e.Path, e.StatusCode)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      cache.Cache
	attempts   uint
	retryDelay time.Duration
	logger     *slog.Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(baseURL, "/") }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outgoing requests per second. Zero disables limiting.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithCache enables response caching.
func WithCache(cc cache.Cache) Option {
	return func(c *Client) { c.cache = cc }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) { c.retryDelay = d }
}

func NewClient(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		limiter:    rate.NewLimiter(defaultRequestsPerSecond, defaultRequestsPerSecond),
		attempts:   defaultAttempts,
		retryDelay: defaultRetryDelay,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get fetches path and decodes the JSON body into out. A positive ttl reads
// and fills the response cache.
func (c *Client) get(ctx context.Context, path string, params url.Values, ttl time.Duration, out any) error {
	if params == nil {
		params = url.Values{}
	}
	cacheKey := path
	if len(params) > 0 {
		cacheKey += "?" + params.Encode()
	}

	if ttl > 0 && c.cache != nil {
		cached, ok, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			c.logger.Warn("Cache read failed", slog.String("key", cacheKey), slog.Any("error", err))
		} else if ok {
			if err := json.Unmarshal(cached, out); err == nil {
				return nil
			}
		}
	}

	body, err := c.fetch(ctx, path, params)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", path, err)
	}

	if ttl > 0 && c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, body, ttl); err != nil {
			c.logger.Warn("Cache write failed", slog.String("key", cacheKey), slog.Any("error", err))
		}
	}
	return nil
}

// fetch performs the request, retrying once on transient failures.
func (c *Client) fetch(ctx context.Context, path string, params url.Values) ([]byte, error) {
	query := url.Values{}
	for k, v := range params {
		query[k] = v
	}
	query.Set("api_key", c.apiKey)
	endpoint := c.baseURL + path + "?" + query.Encode()

	return retry.DoWithData(
		func() ([]byte, error) {
			if c.limiter != nil {
				if err := c.limiter.Wait(ctx); err != nil {
					return nil, retry.Unrecoverable(err)
				}
			}
			return c.do(ctx, path, endpoint)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warn("Retrying catalog request", slog.String("path", path), slog.Uint64("attempt", uint64(n+1)), slog.Any("error", err))
		}),
	)
}

func (c *Client) do(ctx context.Context, path, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var payload struct {
			StatusMessage string `json:"status_message"`
		}
		if json.Unmarshal(snippet, &payload) == nil {
			apiErr.Message = payload.StatusMessage
		}
		return nil, apiErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}

// isTransient reports whether a failed request is worth repeating.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests || apiErr.StatusCode >= 500
	}
	return true
}

func pageParams(page int) url.Values {
	if page < 1 {
		page = 1
	}
	return url.Values{"page": {fmt.Sprint(page)}}
}

func titlePath(mediaType models.MediaType) (string, error) {
	if mediaType.IsTitle() {
		return "/" + string(mediaType), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMediaType, mediaType)
}
