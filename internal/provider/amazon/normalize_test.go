package amazon

import (
	"encoding/json"
	"testing"
)

// полный item в том виде, как его отдает PA-API
const fullItemJSON = `{
	"ASIN": "B08XYZ",
	"DetailPageURL": "https://www.amazon.com/dp/B08XYZ?tag=test-tag",
	"ItemInfo": {
		"Title": {"DisplayValue": "Wireless Headphones"},
		"ByLineInfo": {"Brand": {"DisplayValue": "Sony"}},
		"Classifications": {"Binding": {"DisplayValue": "Electronics"}},
		"Features": {"DisplayValues": ["f1", "f2", "f3", "f4", "f5", "f6", "f7", "f8"]},
		"ExternalIds": {"UPCs": {"DisplayValues": ["027242920568"]}, "EANs": {"DisplayValues": ["0027242920568"]}}
	},
	"Offers": {
		"Listings": [{
			"Price": {"Amount": 199.99, "Currency": "USD"},
			"SavingBasis": {"Amount": 249.99, "Currency": "USD"},
			"Availability": {"Message": "In Stock"},
			"DeliveryInfo": {"IsPrimeEligible": true, "IsFreeShippingEligible": true, "IsAmazonFulfilled": true}
		}]
	},
	"CustomerReviews": {"StarRating": {"DisplayValue": 4.6}, "Count": 12345},
	"Images": {
		"Primary": {"Large": {"URL": "https://img/primary.jpg"}},
		"Variants": [
			{"Large": {"URL": "https://img/v1.jpg"}},
			{"Large": {"URL": "https://img/v2.jpg"}},
			{"Large": {"URL": "https://img/v3.jpg"}},
			{"Large": {"URL": "https://img/v4.jpg"}},
			{"Large": {"URL": "https://img/v5.jpg"}},
			{"Large": {"URL": "https://img/v6.jpg"}}
		]
	}
}`

func decodeItem(t *testing.T, raw string) rawItem {
	t.Helper()
	var it rawItem
	if err := json.Unmarshal([]byte(raw), &it); err != nil {
		t.Fatalf("unmarshal test item: %v", err)
	}
	return it
}

func TestNormalize_FullItem(t *testing.T) {
	p := normalize(decodeItem(t, fullItemJSON))
	if p == nil {
		t.Fatal("normalize() = nil for a valid item")
	}

	if p.ID != "B08XYZ" || p.ASIN != "B08XYZ" {
		t.Errorf("id/asin = %q/%q, want B08XYZ", p.ID, p.ASIN)
	}
	if p.Name != "Wireless Headphones" || p.Brand != "Sony" || p.Category != "Electronics" {
		t.Errorf("display fields = %q/%q/%q", p.Name, p.Brand, p.Category)
	}
	if p.Price == nil || *p.Price != 199.99 {
		t.Errorf("price = %v, want 199.99", p.Price)
	}
	if p.ListPrice == nil || *p.ListPrice != 249.99 {
		t.Errorf("list price = %v, want 249.99", p.ListPrice)
	}
	if p.SavingsAmount == nil || *p.SavingsAmount != 50 {
		t.Errorf("savings amount = %v, want 50", p.SavingsAmount)
	}
	if p.SavingsPercent == nil || *p.SavingsPercent != 20 {
		t.Errorf("savings percent = %v, want 20", p.SavingsPercent)
	}
	if p.Rating == nil || *p.Rating != 4.6 {
		t.Errorf("rating = %v, want 4.6", p.Rating)
	}
	if p.ReviewCount == nil || *p.ReviewCount != 12345 {
		t.Errorf("review count = %v, want 12345", p.ReviewCount)
	}
	if p.StockMessage != "In Stock" {
		t.Errorf("stock message = %q", p.StockMessage)
	}
	if p.IsPrime == nil || !*p.IsPrime {
		t.Error("is_prime should be true")
	}
	if p.IsFulfilledByProvider == nil || !*p.IsFulfilledByProvider {
		t.Error("is_fulfilled_by_provider should be true")
	}
	if len(p.Features) != 6 {
		t.Errorf("features capped at 6, got %d", len(p.Features))
	}
	if p.Features[0] != "f1" {
		t.Errorf("features should keep provider order, got %v", p.Features)
	}
	if p.Image != "https://img/primary.jpg" {
		t.Errorf("image = %q", p.Image)
	}
	if len(p.Images) != 5 {
		t.Errorf("images capped at 5, got %d", len(p.Images))
	}
	if p.ExternalIDs == nil || len(p.ExternalIDs.UPC) != 1 {
		t.Errorf("external ids = %+v", p.ExternalIDs)
	}
	if p.AffiliateURL == "" {
		t.Error("affiliate url missing")
	}
}

func TestNormalize_MissingASINDropsItem(t *testing.T) {
	if p := normalize(rawItem{}); p != nil {
		t.Errorf("normalize() = %+v, want nil when ASIN is missing", p)
	}
	if p := normalize(decodeItem(t, `{"ItemInfo": {"Title": {"DisplayValue": "No id"}}}`)); p != nil {
		t.Errorf("normalize() = %+v, want nil when ASIN is missing", p)
	}
}

func TestNormalize_MissingNestedLevelsDegradeFieldsOnly(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"only asin", `{"ASIN": "B1"}`},
		{"empty item info", `{"ASIN": "B1", "ItemInfo": {}}`},
		{"empty offers", `{"ASIN": "B1", "Offers": {}}`},
		{"listing without price", `{"ASIN": "B1", "Offers": {"Listings": [{}]}}`},
		{"reviews without rating", `{"ASIN": "B1", "CustomerReviews": {"Count": 3}}`},
		{"images without primary", `{"ASIN": "B1", "Images": {"Variants": [{}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := normalize(decodeItem(t, tt.raw))
			if p == nil {
				t.Fatal("normalize() = nil, partial item should survive")
			}
			if p.ID != "B1" {
				t.Errorf("id = %q, want B1", p.ID)
			}
			if p.Price != nil && tt.name != "listing without price" {
				t.Errorf("price = %v, want absent", p.Price)
			}
		})
	}
}

func TestNormalize_NoSavingsWithoutListPrice(t *testing.T) {
	p := normalize(decodeItem(t, `{"ASIN": "B1", "Offers": {"Listings": [{"Price": {"Amount": 10}}]}}`))
	if p == nil {
		t.Fatal("normalize() = nil")
	}
	if p.SavingsAmount != nil || p.SavingsPercent != nil {
		t.Errorf("savings = %v/%v, want absent without list price", p.SavingsAmount, p.SavingsPercent)
	}
}
