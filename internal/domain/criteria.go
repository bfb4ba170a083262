package domain

import "strings"

type ProviderKind string

const (
	ProviderAmazon     ProviderKind = "amazon"
	ProviderRainforest ProviderKind = "rainforest"
)

// ParseProvider маппит пользовательский селектор на провайдера.
// Пустая строка - rainforest, как в публичном API.
func ParseProvider(s string) (ProviderKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rainforest":
		return ProviderRainforest, nil
	case "amazon", "paapi":
		return ProviderAmazon, nil
	default:
		return "", ErrUnknownProvider
	}
}

// Filters - независимые предикаты; товар проходит, только если проходит все.
// Отсутствующее значение не проходит ограничивающий фильтр.
type Filters struct {
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
	Brand     string
	PrimeOnly bool
}

func (f Filters) Match(p Product) bool {
	if f.MinPrice != nil && (p.Price == nil || *p.Price < *f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && (p.Price == nil || *p.Price > *f.MaxPrice) {
		return false
	}
	if f.MinRating != nil && (p.Rating == nil || *p.Rating < *f.MinRating) {
		return false
	}
	if f.Brand != "" {
		if p.Brand == "" || !strings.Contains(strings.ToLower(p.Brand), strings.ToLower(f.Brand)) {
			return false
		}
	}
	if f.PrimeOnly && (p.IsPrime == nil || !*p.IsPrime) {
		return false
	}
	return true
}

type SearchRequest struct {
	Query    string
	Provider ProviderKind
	Pages    int
	Filters  Filters
}

func (r *SearchRequest) Validate() error {
	if strings.TrimSpace(r.Query) == "" {
		return ErrEmptyQuery
	}
	return nil
}

func (r *SearchRequest) Sanitize() {
	r.Query = strings.TrimSpace(r.Query)
	if r.Pages <= 0 {
		r.Pages = DefaultPages
	}
	if r.Pages > MaxPages {
		r.Pages = MaxPages
	}
	if r.Provider == "" {
		r.Provider = ProviderRainforest
	}
}

// SearchCriteria - нормализованные критерии, эхом возвращаются клиенту.
type SearchCriteria struct {
	Query     string       `json:"q"`
	Provider  ProviderKind `json:"provider"`
	Pages     int          `json:"pages"`
	MinPrice  *float64     `json:"min_price"`
	MaxPrice  *float64     `json:"max_price"`
	MinRating *float64     `json:"min_rating"`
	Brand     string       `json:"brand"`
	PrimeOnly bool         `json:"prime_only"`
}

func (r SearchRequest) Criteria() SearchCriteria {
	return SearchCriteria{
		Query:     r.Query,
		Provider:  r.Provider,
		Pages:     r.Pages,
		MinPrice:  r.Filters.MinPrice,
		MaxPrice:  r.Filters.MaxPrice,
		MinRating: r.Filters.MinRating,
		Brand:     r.Filters.Brand,
		PrimeOnly: r.Filters.PrimeOnly,
	}
}

type SearchResponse struct {
	Criteria  SearchCriteria `json:"criteria"`
	Timestamp string         `json:"timestamp"`
	Products  []Product      `json:"products"`
	Errors    []string       `json:"errors,omitempty"`
}
