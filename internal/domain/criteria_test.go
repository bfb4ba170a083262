package domain

import "testing"

func TestParseProvider(t *testing.T) {
	tests := []struct {
		in      string
		want    ProviderKind
		wantErr error
	}{
		{"", ProviderRainforest, nil},
		{"rainforest", ProviderRainforest, nil},
		{"amazon", ProviderAmazon, nil},
		{"paapi", ProviderAmazon, nil},
		{"  Amazon  ", ProviderAmazon, nil},
		{"ebay", "", ErrUnknownProvider},
	}

	for _, tt := range tests {
		got, err := ParseProvider(tt.in)
		if err != tt.wantErr {
			t.Errorf("ParseProvider(%q) error = %v, want %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseProvider(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFilters_Match_Price(t *testing.T) {
	item := Product{ID: "A1", Price: f64(120)}

	if (Filters{MaxPrice: f64(100)}).Match(item) {
		t.Error("price 120 should be excluded by ceiling 100")
	}
	if !(Filters{MaxPrice: f64(150)}).Match(item) {
		t.Error("price 120 should pass ceiling 150")
	}
	if !(Filters{}).Match(item) {
		t.Error("absent ceiling should pass everything")
	}

	noPrice := Product{ID: "A2"}
	if (Filters{MaxPrice: f64(100)}).Match(noPrice) {
		t.Error("missing price should fail a price ceiling")
	}
	if (Filters{MinPrice: f64(10)}).Match(noPrice) {
		t.Error("missing price should fail a price floor")
	}
}

func TestFilters_Match_Rating(t *testing.T) {
	if (Filters{MinRating: f64(4)}).Match(Product{ID: "A", Rating: f64(3.9)}) {
		t.Error("rating below minimum should fail")
	}
	if !(Filters{MinRating: f64(4)}).Match(Product{ID: "A", Rating: f64(4)}) {
		t.Error("rating at minimum should pass")
	}
	if (Filters{MinRating: f64(4)}).Match(Product{ID: "A"}) {
		t.Error("missing rating should fail a rating filter")
	}
}

func TestFilters_Match_Brand(t *testing.T) {
	item := Product{ID: "A", Brand: "Sony Electronics"}

	if !(Filters{Brand: "sony"}).Match(item) {
		t.Error("brand match should be case-insensitive containment")
	}
	if (Filters{Brand: "bose"}).Match(item) {
		t.Error("non-matching brand should fail")
	}
	if (Filters{Brand: "sony"}).Match(Product{ID: "B"}) {
		t.Error("missing brand should fail a brand filter")
	}
}

func TestFilters_Match_PrimeOnly(t *testing.T) {
	prime := true
	notPrime := false

	if !(Filters{PrimeOnly: true}).Match(Product{ID: "A", IsPrime: &prime}) {
		t.Error("prime item should pass prime_only")
	}
	if (Filters{PrimeOnly: true}).Match(Product{ID: "B", IsPrime: &notPrime}) {
		t.Error("non-prime item should fail prime_only")
	}
	// unknown - не false, но ограничивающий фильтр его не пропускает
	if (Filters{PrimeOnly: true}).Match(Product{ID: "C"}) {
		t.Error("unknown prime status should fail prime_only")
	}
	if !(Filters{}).Match(Product{ID: "C"}) {
		t.Error("unknown prime status should pass without prime_only")
	}
}

func TestSearchRequest_Validate(t *testing.T) {
	req := SearchRequest{Query: "   "}
	if err := req.Validate(); err != ErrEmptyQuery {
		t.Errorf("Validate() = %v, want ErrEmptyQuery", err)
	}

	req.Query = "headphones"
	if err := req.Validate(); err != nil {
		t.Errorf("Validate() unexpected error = %v", err)
	}
}

func TestSearchRequest_Sanitize(t *testing.T) {
	req := SearchRequest{Query: "  headphones  ", Pages: 0}
	req.Sanitize()

	if req.Query != "headphones" {
		t.Errorf("Sanitize() query = %q, want trimmed", req.Query)
	}
	if req.Pages != DefaultPages {
		t.Errorf("Sanitize() pages = %d, want default %d", req.Pages, DefaultPages)
	}
	if req.Provider != ProviderRainforest {
		t.Errorf("Sanitize() provider = %q, want rainforest", req.Provider)
	}

	req.Pages = 99
	req.Sanitize()
	if req.Pages != MaxPages {
		t.Errorf("Sanitize() pages = %d, want clamped to %d", req.Pages, MaxPages)
	}
}
