package amazon

import "github.com/kitbuilder587/dealscout/internal/domain"

// normalize маппит один сырой item PA-API в каноничный Product.
// Чистая функция: без побочных эффектов, безопасна для конкурентных
// вызовов. Возвращает nil, когда у item нет ASIN - такой товар
// выбрасывается целиком, частичных записей не бывает.
func normalize(it rawItem) *domain.Product {
	if it.ASIN == "" {
		return nil
	}

	p := &domain.Product{
		ID:           it.ASIN,
		ASIN:         it.ASIN,
		Currency:     "USD",
		AffiliateURL: it.DetailPageURL,
	}

	if info := it.ItemInfo; info != nil {
		if info.Title != nil {
			p.Name = info.Title.DisplayValue
		}
		if info.ByLineInfo != nil && info.ByLineInfo.Brand != nil {
			p.Brand = info.ByLineInfo.Brand.DisplayValue
		}
		if info.Classifications != nil && info.Classifications.Binding != nil {
			p.Category = info.Classifications.Binding.DisplayValue
		}
		if info.Features != nil {
			p.Features = domain.CapStrings(info.Features.DisplayValues, domain.MaxFeatures)
		}
		if ids := info.ExternalIds; ids != nil {
			ext := &domain.ExternalIDs{}
			if ids.UPCs != nil {
				ext.UPC = ids.UPCs.DisplayValues
			}
			if ids.EANs != nil {
				ext.EAN = ids.EANs.DisplayValues
			}
			if len(ext.UPC) > 0 || len(ext.EAN) > 0 {
				p.ExternalIDs = ext
			}
		}
	}

	if it.Offers != nil && len(it.Offers.Listings) > 0 {
		l := it.Offers.Listings[0]
		if l.Price != nil {
			p.Price = l.Price.Amount
			if l.Price.Currency != "" {
				p.Currency = l.Price.Currency
			}
		}
		if l.SavingBasis != nil {
			p.ListPrice = l.SavingBasis.Amount
		}
		if l.Availability != nil {
			p.StockMessage = l.Availability.Message
		}
		if d := l.DeliveryInfo; d != nil {
			p.IsPrime = d.IsPrimeEligible
			p.IsFreeShipping = d.IsFreeShippingEligible
			p.IsFulfilledByProvider = d.IsAmazonFulfilled
		}
	}
	p.SavingsAmount, p.SavingsPercent = domain.Savings(p.Price, p.ListPrice)

	if r := it.CustomerReviews; r != nil {
		if r.StarRating != nil {
			p.Rating = r.StarRating.DisplayValue
		}
		p.ReviewCount = r.Count
	}

	if imgs := it.Images; imgs != nil {
		if imgs.Primary != nil && imgs.Primary.Large != nil {
			p.Image = imgs.Primary.Large.URL
		}
		var variants []string
		for _, v := range imgs.Variants {
			if v.Large != nil && v.Large.URL != "" {
				variants = append(variants, v.Large.URL)
			}
		}
		p.Images = domain.CapStrings(variants, domain.MaxImages)
	}

	return p
}
