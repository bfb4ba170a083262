package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kitbuilder587/dealscout/internal/cache"
	"github.com/kitbuilder587/dealscout/internal/domain"
	"github.com/kitbuilder587/dealscout/internal/metrics"
	"github.com/kitbuilder587/dealscout/internal/provider"
)

type SearchService interface {
	Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error)
}

type Config struct {
	CacheTTL     time.Duration
	PageDelay    time.Duration
	TotalTimeout time.Duration
}

// Deps - зависимости оркестратора. Кеш и rate limiter (внутри
// провайдеров) приходят снаружи: никаких process-wide синглтонов,
// тесты собирают изолированные экземпляры.
type Deps struct {
	Providers map[domain.ProviderKind]provider.Provider
	Cache     cache.Cache
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
	Config    Config
}

type searchService struct {
	providers map[domain.ProviderKind]provider.Provider
	cache     cache.Cache
	logger    *zap.Logger
	metrics   *metrics.Metrics
	config    Config
}

func NewSearchService(deps Deps) SearchService {
	if deps.Config.CacheTTL == 0 {
		deps.Config.CacheTTL = 180 * time.Second
	}
	if deps.Config.PageDelay == 0 {
		deps.Config.PageDelay = 200 * time.Millisecond
	}
	if deps.Config.TotalTimeout == 0 {
		deps.Config.TotalTimeout = 60 * time.Second
	}

	return &searchService{
		providers: deps.Providers,
		cache:     deps.Cache,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		config:    deps.Config,
	}
}

// Search гонит страницы 1..Pages строго по порядку: кеш, иначе
// провайдер + кеширование нормализованного списка. Первая упавшая
// страница останавливает пагинацию, но не отменяет уже собранное -
// частичный результат возвращается вместе со списком ошибок.
func (s *searchService) Search(ctx context.Context, req *domain.SearchRequest) (*domain.SearchResponse, error) {
	startTime := time.Now()

	if s.metrics != nil {
		s.metrics.IncRequestsInFlight()
		defer s.metrics.DecRequestsInFlight()
	}

	if err := req.Validate(); err != nil {
		if s.metrics != nil {
			s.metrics.RecordRequest("validation_error", time.Since(startTime))
		}
		return nil, err
	}
	req.Sanitize()

	prov, ok := s.providers[req.Provider]
	if !ok {
		if s.metrics != nil {
			s.metrics.RecordRequest("validation_error", time.Since(startTime))
		}
		return nil, domain.ErrUnknownProvider
	}

	if s.config.TotalTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.TotalTimeout)
		defer cancel()
	}

	s.logger.Info("processing search",
		zap.String("provider", string(req.Provider)),
		zap.Int("pages", req.Pages),
		zap.Int("query_length", len(req.Query)),
	)

	var accumulated []domain.Product
	var errs []string

pages:
	for page := 1; page <= req.Pages; page++ {
		products, err := s.fetchPage(ctx, prov, req.Query, page)
		if err != nil {
			errs = append(errs, err.Error())
			s.logger.Warn("page fetch failed, stopping pagination",
				zap.Error(err),
				zap.Int("page", page),
			)
			break
		}
		accumulated = append(accumulated, products...)

		if page < req.Pages && s.config.PageDelay > 0 {
			select {
			case <-ctx.Done():
				errs = append(errs, fmt.Sprintf("page %d: %v", page+1, ctx.Err()))
				break pages
			case <-time.After(s.config.PageDelay):
			}
		}
	}

	products := s.rank(s.filter(accumulated, req.Filters), req.Filters.MaxPrice)

	status := "success"
	if len(products) == 0 && len(errs) > 0 {
		status = "upstream_error"
	}
	if s.metrics != nil {
		s.metrics.RecordRequest(status, time.Since(startTime))
	}

	s.logger.Info("search processed",
		zap.String("provider", string(req.Provider)),
		zap.Int("accumulated", len(accumulated)),
		zap.Int("returned", len(products)),
		zap.Int("errors", len(errs)),
	)

	return &domain.SearchResponse{
		Criteria:  req.Criteria(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Products:  products,
		Errors:    errs,
	}, nil
}

// fetchPage отдает нормализованную страницу из кеша либо от
// провайдера. Гонка холодного кеша намеренно не схлопывается в
// один upstream-вызов: дубли допустимы и ограничены rate limiter-ом.
func (s *searchService) fetchPage(ctx context.Context, prov provider.Provider, query string, page int) ([]domain.Product, error) {
	key := s.cacheKey(prov.Kind(), query, page)

	if cached, ok := s.cache.Get(key); ok {
		if products, ok := cached.([]domain.Product); ok {
			if s.metrics != nil {
				s.metrics.RecordCacheHit()
			}
			return products, nil
		}
	}

	if s.metrics != nil {
		s.metrics.RecordCacheMiss()
	}

	fetchStart := time.Now()
	products, err := prov.FetchPage(ctx, query, page)
	if err != nil {
		if s.metrics != nil {
			s.metrics.RecordUpstreamRequest(string(prov.Kind()), "error", time.Since(fetchStart))
		}
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.RecordUpstreamRequest(string(prov.Kind()), "success", time.Since(fetchStart))
	}

	// кешируются нормализованные товары, не сырые payload-ы
	s.cache.Set(key, products, s.config.CacheTTL)

	return products, nil
}

// Ключ - (операция, провайдер, нормализованный запрос, страница).
// Провайдер входит в ключ, чтобы выдачи amazon и rainforest по
// одному запросу не перемешивались.
func (s *searchService) cacheKey(kind domain.ProviderKind, query string, page int) string {
	return fmt.Sprintf("search:%s:%s:%d", kind, normalizeQuery(query), page)
}

func normalizeQuery(q string) string {
	q = strings.ToLower(strings.TrimSpace(q))
	return strings.Join(strings.Fields(q), " ")
}

func (s *searchService) filter(products []domain.Product, f domain.Filters) []domain.Product {
	filtered := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// rank сортирует по убыванию score; при равенстве сохраняется
// порядок накопления (стабильная сортировка). Хвост обрезается
// после сортировки.
func (s *searchService) rank(products []domain.Product, priceCeiling *float64) []domain.Product {
	scores := make([]float64, len(products))
	for i, p := range products {
		scores[i] = domain.Score(p, priceCeiling)
	}

	idx := make([]int, len(products))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return scores[idx[a]] > scores[idx[b]]
	})

	ranked := make([]domain.Product, 0, len(products))
	for _, i := range idx {
		ranked = append(ranked, products[i])
	}
	if len(ranked) > domain.MaxProducts {
		ranked = ranked[:domain.MaxProducts]
	}
	return ranked
}
