package models

// ReportFormat identifies an export rendering.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// PricedOccasionRow is one calendar row expanded with pricing output. Derived
// per request, never persisted.
type PricedOccasionRow struct {
	OccasionRow
	InSeasonNow    bool `json:"in_season_now"`
	SuggestedPrice int  `json:"suggested_price"`
	Low            int  `json:"low"`
	High           int  `json:"high"`
	ConfidencePct  int  `json:"confidence_pct"`
}

// PricingReport is the full response of one pricing computation.
//
// ConfidencePct is an additive heuristic score (70 base, +5 for premium
// material on a well-kept item, +5 for gowns), not a statistical confidence
// interval.
type PricingReport struct {
	BasePrice    float64             `json:"base_price"`
	Rows         []PricedOccasionRow `json:"rows"`
	Standard     int                 `json:"standard"`
	Conservative int                 `json:"conservative"`
	Premium      int                 `json:"premium"`
	UsedDefaults bool                `json:"used_defaults"`
}
