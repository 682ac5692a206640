package models

type MarketStats struct {
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	AvgPrice     float64 `json:"avg_price"`
	MedianPrice  float64 `json:"median_price"`
	StdDev       float64 `json:"std_dev"`
	TotalFlights int     `json:"total_flights"`
}

type Adjustment struct {
	Label string  `json:"label"`
	Delta float64 `json:"delta"`
}

type ScoreResult struct {
	Score     float64      `json:"score"`
	Pros      []string     `json:"pros"`
	Penalties []string     `json:"penalties"`
	Breakdown []Adjustment `json:"breakdown"`
}

type Action string

const (
	ActionBuyNow  Action = "BUY_NOW"
	ActionWait    Action = "WAIT"
	ActionMonitor Action = "MONITOR"
)

type Trend string

const (
	TrendRising  Trend = "RISING"
	TrendFalling Trend = "FALLING"
	TrendStable  Trend = "STABLE"
)

type Impact string

const (
	ImpactHigh   Impact = "high"
	ImpactMedium Impact = "medium"
	ImpactLow    Impact = "low"
)

type Confidence string

const (
	ConfidenceHigh Confidence = "HIGH"
	ConfidenceLow  Confidence = "LOW"
)

type Reason struct {
	Code   string  `json:"code"`
	Text   string  `json:"text"`
	Impact Impact  `json:"impact"`
	Weight float64 `json:"weight"`
}

type Forecast struct {
	Action     Action     `json:"action"`
	Urgent     bool       `json:"urgent"`
	RiskScore  float64    `json:"risk_score"`
	Trend      Trend      `json:"trend"`
	Reasons    []Reason   `json:"reasons"`
	Confidence Confidence `json:"confidence"`
	Strategy   string     `json:"strategy"`
}

type AnalysisResult struct {
	RouteID       string  `json:"route_id,omitempty"`
	HasEnoughData bool    `json:"has_enough_data"`
	Observations  int     `json:"observations"`
	CurrentPrice  float64 `json:"current_price"`
	Mean          float64 `json:"mean"`
	StdDev        float64 `json:"std_dev"`
	DealScore     float64 `json:"deal_score"`
	DropPercent   float64 `json:"drop_percent"`
	IsAnomaly     bool    `json:"is_anomaly"`
	Explanation   string  `json:"explanation,omitempty"`
}
