package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/kitbuilder587/dealscout/internal/cache"
	"github.com/kitbuilder587/dealscout/internal/domain"
	"github.com/kitbuilder587/dealscout/internal/provider"
	"github.com/kitbuilder587/dealscout/internal/service"
)

type Handler struct {
	search    service.SearchService
	providers map[domain.ProviderKind]provider.Provider
	cache     cache.Cache
	cacheTTL  time.Duration
}

type HandlerDeps struct {
	Search    service.SearchService
	Providers map[domain.ProviderKind]provider.Provider
	Cache     cache.Cache
	CacheTTL  time.Duration
}

func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		search:    deps.Search,
		providers: deps.Providers,
		cache:     deps.Cache,
		cacheTTL:  deps.CacheTTL,
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// Search - единственная клиентская операция. Кривые числовые и
// булевые параметры молча трактуются как отсутствующие, ошибкой
// является только пустой q и неизвестный провайдер.
func (h *Handler) Search(c echo.Context) error {
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "missing required query param 'q'"})
	}

	prov, err := domain.ParseProvider(c.QueryParam("provider"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	req := &domain.SearchRequest{
		Query:    q,
		Provider: prov,
		Pages:    queryInt(c, "pages", domain.DefaultPages),
		Filters: domain.Filters{
			MinPrice:  queryFloat(c, "min_price"),
			MaxPrice:  queryFloat(c, "max_price"),
			MinRating: queryFloat(c, "min_rating"),
			Brand:     strings.TrimSpace(c.QueryParam("brand")),
			PrimeOnly: queryBool(c, "prime_only"),
		},
	}

	resp, err := h.search.Search(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrEmptyQuery) || errors.Is(err, domain.ErrUnknownProvider) {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
	}

	status := http.StatusOK
	if len(resp.Products) == 0 && len(resp.Errors) > 0 {
		status = http.StatusBadGateway
	}
	return c.JSON(status, resp)
}

type healthResponse struct {
	OK              bool   `json:"ok"`
	Time            string `json:"time"`
	HasAmazon       bool   `json:"has_amazon"`
	HasRainforest   bool   `json:"has_rainforest"`
	CacheEntries    int    `json:"cache_entries"`
	CacheTTLSeconds int    `json:"cache_ttl_seconds"`
}

// Health - read-only проба: настроены ли креды и что с кешем.
func (h *Handler) Health(c echo.Context) error {
	resp := healthResponse{
		OK:              true,
		Time:            time.Now().UTC().Format(time.RFC3339),
		CacheTTLSeconds: int(h.cacheTTL.Seconds()),
	}
	if p, ok := h.providers[domain.ProviderAmazon]; ok {
		resp.HasAmazon = p.Configured()
	}
	if p, ok := h.providers[domain.ProviderRainforest]; ok {
		resp.HasRainforest = p.Configured()
	}
	if h.cache != nil {
		resp.CacheEntries = h.cache.Len()
	}
	return c.JSON(http.StatusOK, resp)
}

func queryFloat(c echo.Context, name string) *float64 {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryInt(c echo.Context, name string, defaultValue int) int {
	raw := strings.TrimSpace(c.QueryParam(name))
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return defaultValue
	}
	return v
}

func queryBool(c echo.Context, name string) bool {
	switch strings.ToLower(strings.TrimSpace(c.QueryParam(name))) {
	case "1", "true", "yes", "y":
		return true
	}
	return false
}
