package rainforest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/dealscout/internal/domain"
	"github.com/kitbuilder587/dealscout/internal/metrics"
	"github.com/kitbuilder587/dealscout/internal/provider"
)

type Config struct {
	APIKey       string
	BaseURL      string
	AmazonDomain string
	Timeout      time.Duration
	Retry        provider.RetryConfig
}

type Client struct {
	cfg     Config
	client  *http.Client
	limiter provider.RateLimiter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, limiter provider.RateLimiter, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.rainforestapi.com"
	}
	if cfg.AmazonDomain == "" {
		cfg.AmazonDomain = "amazon.com"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	cfg.Retry = cfg.Retry.WithDefaults()

	return &Client{
		cfg:     cfg,
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger,
		metrics: m,
	}
}

func (c *Client) Kind() domain.ProviderKind {
	return domain.ProviderRainforest
}

func (c *Client) Configured() bool {
	return c.cfg.APIKey != ""
}

// FetchPage выполняет один постраничный запрос с повторами на
// транзиентных статусах. Страница возвращается целиком либо никак.
func (c *Client) FetchPage(ctx context.Context, query string, page int) ([]domain.Product, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingCredentials
	}

	params := url.Values{}
	params.Set("api_key", c.cfg.APIKey)
	params.Set("type", "search")
	params.Set("amazon_domain", c.cfg.AmazonDomain)
	params.Set("search_term", query)
	params.Set("page", strconv.Itoa(page))
	endpoint := c.cfg.BaseURL + "/request?" + params.Encode()

	var lastErr *provider.UpstreamError
	backoff := c.cfg.Retry.InitialBackoff

	for attempt := 1; attempt <= c.cfg.Retry.MaxAttempts; attempt++ {
		if attempt > 1 {
			if c.metrics != nil {
				c.metrics.RecordUpstreamRetry(string(c.Kind()))
			}
			if err := provider.SleepBackoff(ctx, backoff, c.cfg.Retry.MaxJitter); err != nil {
				return nil, err
			}
			backoff = time.Duration(float64(backoff) * c.cfg.Retry.Growth)
		}

		waitStart := time.Now()
		c.limiter.Acquire()
		if c.metrics != nil {
			c.metrics.RecordRateLimitWait(time.Since(waitStart))
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("rainforest request failed",
				zap.Error(err),
				zap.Int("attempt", attempt),
			)
			lastErr = &provider.UpstreamError{
				Provider:  string(c.Kind()),
				Body:      err.Error(),
				Retryable: true,
				Attempts:  attempt,
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = &provider.UpstreamError{
				Provider:  string(c.Kind()),
				Body:      fmt.Sprintf("read response: %v", err),
				Retryable: true,
				Attempts:  attempt,
			}
			continue
		}

		status := resp.StatusCode
		switch {
		case status >= 200 && status < 300:
			return c.decodePage(status, respBody, attempt)

		case provider.RetryableStatus(status):
			c.logger.Warn("rainforest retryable status",
				zap.Int("status", status),
				zap.Int("attempt", attempt),
			)
			lastErr = &provider.UpstreamError{
				Provider:   string(c.Kind()),
				StatusCode: status,
				Body:       provider.CompactBody(respBody),
				Retryable:  true,
				Attempts:   attempt,
			}

		default:
			return nil, &provider.UpstreamError{
				Provider:   string(c.Kind()),
				StatusCode: status,
				Body:       provider.CompactBody(respBody),
				Attempts:   attempt,
			}
		}
	}

	lastErr.Attempts = c.cfg.Retry.MaxAttempts
	return nil, lastErr
}

func (c *Client) decodePage(status int, respBody []byte, attempt int) ([]domain.Product, error) {
	var parsed searchResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &provider.UpstreamError{
			Provider:   string(c.Kind()),
			StatusCode: status,
			Body:       fmt.Sprintf("malformed response body: %v", err),
			Attempts:   attempt,
		}
	}

	// 2xx с success=false - семантический отказ провайдера, не повторяем
	if parsed.RequestInfo != nil && parsed.RequestInfo.Success != nil && !*parsed.RequestInfo.Success {
		return nil, &provider.UpstreamError{
			Provider:   string(c.Kind()),
			StatusCode: status,
			Body:       parsed.RequestInfo.Message,
			Attempts:   attempt,
		}
	}

	products := make([]domain.Product, 0, len(parsed.SearchResults))
	for _, r := range parsed.SearchResults {
		p := normalize(r)
		if p == nil {
			if c.metrics != nil {
				c.metrics.RecordNormalizeDrop(string(c.Kind()))
			}
			c.logger.Debug("dropped unnormalizable item", zap.String("provider", string(c.Kind())))
			continue
		}
		products = append(products, *p)
	}
	return products, nil
}
