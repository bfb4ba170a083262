package rainforest

import "github.com/kitbuilder587/dealscout/internal/domain"

// Плоская форма результата Rainforest-а.
type searchResponse struct {
	RequestInfo   *requestInfo `json:"request_info"`
	SearchResults []rawResult  `json:"search_results"`
}

type requestInfo struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
}

type rawResult struct {
	ASIN         string        `json:"asin"`
	Title        string        `json:"title"`
	Brand        string        `json:"brand"`
	Link         string        `json:"link"`
	Image        string        `json:"image"`
	Rating       *float64      `json:"rating"`
	RatingsTotal *int          `json:"ratings_total"`
	Price        *rawPrice     `json:"price"`
	IsPrime      *bool         `json:"is_prime"`
	Delivery     *rawDelivery  `json:"delivery"`
}

type rawPrice struct {
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
}

type rawDelivery struct {
	Tagline string `json:"tagline"`
	Date    string `json:"date"`
}

// normalize маппит плоский результат в каноничный Product.
// nil при отсутствии ASIN.
func normalize(r rawResult) *domain.Product {
	if r.ASIN == "" {
		return nil
	}

	p := &domain.Product{
		ID:           r.ASIN,
		ASIN:         r.ASIN,
		Name:         r.Title,
		Brand:        r.Brand,
		Currency:     "USD",
		Rating:       r.Rating,
		ReviewCount:  r.RatingsTotal,
		IsPrime:      r.IsPrime,
		Image:        r.Image,
		AffiliateURL: r.Link,
	}

	if r.Price != nil {
		p.Price = r.Price.Value
		if r.Price.Currency != "" {
			p.Currency = r.Price.Currency
		}
	}

	if r.Delivery != nil {
		p.StockMessage = r.Delivery.Tagline
		p.DeliveryDate = domain.TruncateDate(r.Delivery.Date)
	}

	return p
}
