package amazon

// Типизированное представление ответа PA-API v5 SearchItems.
// Все вложенные уровни - указатели: строгий парсинг вместо
// защитного обхода слабо типизированного документа, отсутствие
// любого уровня деградирует только соответствующее поле.

type searchItemsRequest struct {
	PartnerTag  string   `json:"PartnerTag"`
	PartnerType string   `json:"PartnerType"`
	Marketplace string   `json:"Marketplace"`
	Keywords    string   `json:"Keywords"`
	ItemPage    int      `json:"ItemPage"`
	ItemCount   int      `json:"ItemCount"`
	Resources   []string `json:"Resources"`
}

type searchItemsResponse struct {
	SearchResult *itemsResult `json:"SearchResult"`
	ItemsResult  *itemsResult `json:"ItemsResult"`
	Errors       []apiError   `json:"Errors"`
}

type itemsResult struct {
	Items []rawItem `json:"Items"`
}

type apiError struct {
	Code    string `json:"Code"`
	Message string `json:"Message"`
}

type rawItem struct {
	ASIN            string           `json:"ASIN"`
	DetailPageURL   string           `json:"DetailPageURL"`
	ItemInfo        *itemInfo        `json:"ItemInfo"`
	Offers          *offers          `json:"Offers"`
	CustomerReviews *customerReviews `json:"CustomerReviews"`
	Images          *itemImages      `json:"Images"`
}

type itemInfo struct {
	Title           *displayValue    `json:"Title"`
	ByLineInfo      *byLineInfo      `json:"ByLineInfo"`
	Classifications *classifications `json:"Classifications"`
	Features        *displayValues   `json:"Features"`
	ExternalIds     *externalIds     `json:"ExternalIds"`
}

type displayValue struct {
	DisplayValue string `json:"DisplayValue"`
}

type displayValues struct {
	DisplayValues []string `json:"DisplayValues"`
}

type byLineInfo struct {
	Brand *displayValue `json:"Brand"`
}

type classifications struct {
	Binding *displayValue `json:"Binding"`
}

type externalIds struct {
	UPCs *displayValues `json:"UPCs"`
	EANs *displayValues `json:"EANs"`
}

type offers struct {
	Listings []listing `json:"Listings"`
}

type listing struct {
	Price        *money        `json:"Price"`
	SavingBasis  *money        `json:"SavingBasis"`
	Availability *availability `json:"Availability"`
	DeliveryInfo *deliveryInfo `json:"DeliveryInfo"`
}

type money struct {
	Amount   *float64 `json:"Amount"`
	Currency string   `json:"Currency"`
}

type availability struct {
	Message string `json:"Message"`
}

type deliveryInfo struct {
	IsPrimeEligible        *bool `json:"IsPrimeEligible"`
	IsFreeShippingEligible *bool `json:"IsFreeShippingEligible"`
	IsAmazonFulfilled      *bool `json:"IsAmazonFulfilled"`
}

type customerReviews struct {
	StarRating *starRating `json:"StarRating"`
	Count      *int        `json:"Count"`
}

type starRating struct {
	DisplayValue *float64 `json:"DisplayValue"`
}

type itemImages struct {
	Primary  *imageSet  `json:"Primary"`
	Variants []imageSet `json:"Variants"`
}

type imageSet struct {
	Large *imageDetail `json:"Large"`
}

type imageDetail struct {
	URL string `json:"URL"`
}
