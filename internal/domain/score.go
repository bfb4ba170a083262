package domain

import "math"

const primeBonus = 0.2

// Score ранжирует товар для сортировки (не для фильтрации):
//
//	score = 2*rating + log10(reviewCount+1) + priceFit + primeBonus
//
// Отсутствующие rating/reviewCount считаются нулем. priceFit поощряет
// товары заметно дешевле потолка цены и равен нулю, когда потолок или
// цена неизвестны.
func Score(p Product, priceCeiling *float64) float64 {
	var rating, reviews float64
	if p.Rating != nil {
		rating = *p.Rating
	}
	if p.ReviewCount != nil {
		reviews = float64(*p.ReviewCount)
	}

	score := 2*rating + math.Log10(reviews+1)

	if priceCeiling != nil && p.Price != nil && *priceCeiling > 0 {
		fit := *p.Price / *priceCeiling
		if fit > 1 {
			fit = 1
		}
		if fit < 0 {
			fit = 0
		}
		score += 1 - fit
	}

	if p.IsPrime != nil && *p.IsPrime {
		score += primeBonus
	}

	return score
}
