package domain

import "math"

const (
	// лимиты на размер ответа, не на корректность
	MaxFeatures  = 6
	MaxImages    = 5
	MaxProducts  = 50
	MaxPages     = 10
	DefaultPages = 5
)

// Product - каноничная форма товара, общая для всех провайдеров.
// Поля-указатели кодируют "значение неизвестно": отсутствие не равно false/0.
type Product struct {
	ID                    string       `json:"id"`
	ASIN                  string       `json:"asin"`
	Name                  string       `json:"name,omitempty"`
	Brand                 string       `json:"brand,omitempty"`
	Category              string       `json:"category,omitempty"`
	Price                 *float64     `json:"price,omitempty"`
	ListPrice             *float64     `json:"list_price,omitempty"`
	SavingsAmount         *float64     `json:"savings_amount,omitempty"`
	SavingsPercent        *int         `json:"savings_percent,omitempty"`
	Currency              string       `json:"currency,omitempty"`
	Rating                *float64     `json:"rating,omitempty"`
	ReviewCount           *int         `json:"review_count,omitempty"`
	StockMessage          string       `json:"stock_message,omitempty"`
	IsPrime               *bool        `json:"is_prime,omitempty"`
	IsFreeShipping        *bool        `json:"is_free_shipping,omitempty"`
	IsFulfilledByProvider *bool        `json:"is_fulfilled_by_provider,omitempty"`
	DeliveryDate          string       `json:"delivery_date,omitempty"`
	Features              []string     `json:"features,omitempty"`
	Image                 string       `json:"image,omitempty"`
	Images                []string     `json:"images,omitempty"`
	ExternalIDs           *ExternalIDs `json:"external_ids,omitempty"`
	AffiliateURL          string       `json:"affiliate_url,omitempty"`
}

type ExternalIDs struct {
	UPC []string `json:"upc,omitempty"`
	EAN []string `json:"ean,omitempty"`
}

// Savings считает экономию по цене и зачеркнутой цене.
// Оба результата отсутствуют, если отсутствует любой из входов;
// процент дополнительно требует listPrice > 0.
func Savings(price, listPrice *float64) (*float64, *int) {
	if price == nil || listPrice == nil {
		return nil, nil
	}
	amount := *listPrice - *price
	if amount < 0 {
		amount = 0
	}
	var percent *int
	if *listPrice > 0 {
		p := int(math.Round(100 * amount / *listPrice))
		percent = &p
	}
	return &amount, percent
}

// TruncateDate обрезает дату-подобную строку до календарной формы YYYY-MM-DD.
func TruncateDate(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

// CapStrings ограничивает список сверху, сохраняя порядок провайдера.
func CapStrings(in []string, max int) []string {
	if len(in) > max {
		return in[:max]
	}
	return in
}
