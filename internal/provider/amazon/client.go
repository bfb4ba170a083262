package amazon

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"go.uber.org/zap"

	"github.com/kitbuilder587/dealscout/internal/domain"
	"github.com/kitbuilder587/dealscout/internal/metrics"
	"github.com/kitbuilder587/dealscout/internal/provider"
)

const (
	serviceName = "ProductAdvertisingAPI"
	searchPath  = "/paapi5/searchitems"
	amzTarget   = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.SearchItems"
)

// searchResources - запрошенный набор полей PA-API; определяет,
// какие уровни rawItem вообще приходят в ответе.
var searchResources = []string{
	"Images.Primary.Large", "Images.Variants.Large",
	"ItemInfo.Title", "ItemInfo.Features", "ItemInfo.ByLineInfo",
	"ItemInfo.ProductInfo", "ItemInfo.Classifications", "ItemInfo.ExternalIds",
	"Offers.Listings.Price", "Offers.Listings.SavingBasis", "Offers.Listings.Savings",
	"Offers.Listings.MerchantInfo",
	"Offers.Listings.DeliveryInfo.IsPrimeEligible",
	"Offers.Listings.DeliveryInfo.IsFreeShippingEligible",
	"Offers.Listings.DeliveryInfo.IsAmazonFulfilled",
	"Offers.Listings.Availability.Message",
	"CustomerReviews.Count", "CustomerReviews.StarRating",
}

type Config struct {
	AccessKey   string
	SecretKey   string
	PartnerTag  string
	Host        string
	Region      string
	Marketplace string
	PageSize    int
	Timeout     time.Duration
	Retry       provider.RetryConfig

	// BaseURL переопределяет endpoint в тестах; по умолчанию https://<Host>
	BaseURL string
}

type Client struct {
	cfg     Config
	creds   aws.Credentials
	signer  *v4.Signer
	client  *http.Client
	limiter provider.RateLimiter
	logger  *zap.Logger
	metrics *metrics.Metrics
}

func New(cfg Config, limiter provider.RateLimiter, logger *zap.Logger, m *metrics.Metrics) *Client {
	if cfg.Host == "" {
		cfg.Host = "webservices.amazon.com"
	}
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.Marketplace == "" {
		cfg.Marketplace = "www.amazon.com"
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 10
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	cfg.Retry = cfg.Retry.WithDefaults()

	return &Client{
		cfg: cfg,
		creds: aws.Credentials{
			AccessKeyID:     cfg.AccessKey,
			SecretAccessKey: cfg.SecretKey,
		},
		signer:  v4.NewSigner(),
		client:  &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger,
		metrics: m,
	}
}

func (c *Client) Kind() domain.ProviderKind {
	return domain.ProviderAmazon
}

func (c *Client) Configured() bool {
	return c.cfg.AccessKey != "" && c.cfg.SecretKey != "" && c.cfg.PartnerTag != ""
}

// FetchPage выполняет один постраничный SearchItems с повторами.
// Каждая попытка заново занимает слот rate limiter-а и заново
// подписывается: подпись SigV4 привязана ко времени запроса.
func (c *Client) FetchPage(ctx context.Context, query string, page int) ([]domain.Product, error) {
	if !c.Configured() {
		return nil, domain.ErrMissingCredentials
	}

	body, err := json.Marshal(searchItemsRequest{
		PartnerTag:  c.cfg.PartnerTag,
		PartnerType: "Associates",
		Marketplace: c.cfg.Marketplace,
		Keywords:    query,
		ItemPage:    page,
		ItemCount:   c.cfg.PageSize,
		Resources:   searchResources,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

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

		status, respBody, err := c.doSigned(ctx, body)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			// транспортная ошибка - транзиентная, как и 5xx
			c.logger.Warn("paapi request failed",
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

		if status >= 200 && status < 300 {
			return c.decodePage(status, respBody, attempt)
		}

		if provider.RetryableStatus(status) {
			c.logger.Warn("paapi retryable status",
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
			continue
		}

		return nil, &provider.UpstreamError{
			Provider:   string(c.Kind()),
			StatusCode: status,
			Body:       provider.CompactBody(respBody),
			Attempts:   attempt,
		}
	}

	lastErr.Attempts = c.cfg.Retry.MaxAttempts
	return nil, lastErr
}

func (c *Client) doSigned(ctx context.Context, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+searchPath, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Encoding", "amz-1.0")
	req.Header.Set("X-Amz-Target", amzTarget)

	hash := sha256.Sum256(body)
	if err := c.signer.SignHTTP(ctx, c.creds, req, hex.EncodeToString(hash[:]), serviceName, c.cfg.Region, time.Now()); err != nil {
		return 0, nil, fmt.Errorf("sign request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// decodePage разбирает 2xx-ответ: вложенный список логических ошибок
// означает, что провайдер отверг запрос семантически - это фатально
// и не повторяется.
func (c *Client) decodePage(status int, respBody []byte, attempt int) ([]domain.Product, error) {
	var parsed searchItemsResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, &provider.UpstreamError{
			Provider:   string(c.Kind()),
			StatusCode: status,
			Body:       fmt.Sprintf("malformed response body: %v", err),
			Attempts:   attempt,
		}
	}

	if len(parsed.Errors) > 0 {
		msgs, _ := json.Marshal(parsed.Errors)
		return nil, &provider.UpstreamError{
			Provider:   string(c.Kind()),
			StatusCode: status,
			Body:       string(msgs),
			Attempts:   attempt,
		}
	}

	var items []rawItem
	if parsed.SearchResult != nil {
		items = parsed.SearchResult.Items
	} else if parsed.ItemsResult != nil {
		items = parsed.ItemsResult.Items
	}

	products := make([]domain.Product, 0, len(items))
	for _, it := range items {
		p := normalize(it)
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
