package models

type SearchMetadata struct {
	SearchID           string   `json:"search_id"`
	TotalResults       int      `json:"total_results"`
	ProvidersQueried   int      `json:"providers_queried"`
	ProvidersSucceeded int      `json:"providers_succeeded"`
	ProvidersFailed    int      `json:"providers_failed"`
	FailedProviders    []string `json:"failed_providers,omitempty"`
	OffersDropped      int      `json:"offers_dropped"`
	HubsTried          []string `json:"hubs_tried,omitempty"`
	HubsFailed         int      `json:"hubs_failed"`
	SelfTransferOffers int      `json:"self_transfer_offers"`
	SearchTimeMs       int64    `json:"search_time_ms"`
	CacheHit           bool     `json:"cache_hit"`
}

type SearchCriteria struct {
	Origin        string         `json:"origin"`
	Destination   string         `json:"destination"`
	DepartureDate string         `json:"departure_date"`
	Adults        int            `json:"adults"`
	Children      int            `json:"children"`
	Infants       int            `json:"infants"`
	CabinClass    string         `json:"cabin_class"`
	Currency      string         `json:"currency"`
	SelfTransfer  bool           `json:"self_transfer"`
	Filters       *SearchFilters `json:"filters,omitempty"`
	SortBy        string         `json:"sort_by"`
	SortOrder     string         `json:"sort_order"`
}

func NewSearchCriteria(req SearchRequest) SearchCriteria {
	return SearchCriteria{
		Origin:        req.Origin,
		Destination:   req.Destination,
		DepartureDate: req.DepartureDate,
		Adults:        req.Adults,
		Children:      req.Children,
		Infants:       req.Infants,
		CabinClass:    req.CabinClass,
		Currency:      req.Currency,
		SelfTransfer:  req.SelfTransfer,
		Filters:       req.Filters,
		SortBy:        req.SortBy,
		SortOrder:     req.SortOrder,
	}
}

type ScoredOffer struct {
	Offer          Offer       `json:"offer"`
	Score          ScoreResult `json:"score"`
	Forecast       *Forecast   `json:"forecast,omitempty"`
	BestValueScore float64     `json:"best_value_score"`
}

type SearchResponse struct {
	Status         string         `json:"status"`
	SearchCriteria SearchCriteria `json:"search_criteria"`
	Metadata       SearchMetadata `json:"metadata"`
	Market         MarketStats    `json:"market"`
	Offers         []ScoredOffer  `json:"offers"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}
