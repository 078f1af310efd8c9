package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

const eventDateLayout = "2006-01-02"

// Confidence heuristic: additive score, capped by construction at 80.
const (
	confidenceBase     = 70
	confidenceStep     = 5
	premiumConditionAt = 4
)

// PricingReportRequest is the full payload of one pricing computation.
type PricingReportRequest struct {
	OriginalPrice float64 `json:"original_price" validate:"required,gte=1,lte=10000"`
	Condition     int     `json:"condition" validate:"required,min=1,max=5"`
	Material      string  `json:"material"`
	Silhouette    string  `json:"silhouette"`
	Color         string  `json:"color"`
	Notes         string  `json:"notes"`

	BasePct    float64 `json:"base_pct" validate:"required,gte=5,lte=60"`
	RushPct    float64 `json:"rush_pct" validate:"gte=0,lte=60"`
	WeekendPct float64 `json:"weekend_pct" validate:"gte=0,lte=60"`

	EventDate string `json:"event_date,omitempty"`
	Segment   string `json:"user_segment,omitempty"`
}

// PricingService turns an item, pricing knobs and the calendar snapshot into
// a priced, seasonally annotated occasion table. Pure aside from the optional
// report cache: identical inputs against an unchanged snapshot produce
// identical output.
type PricingService struct {
	calendars *CalendarService
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger

	cacheTTL time.Duration
	now      func() time.Time
}

// NewPricingService constructs the service.
func NewPricingService(calendars *CalendarService, cache *CacheService, validate *validator.Validate, cacheTTL time.Duration, logger *zap.Logger) *PricingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PricingService{
		calendars: calendars,
		cache:     cache,
		validator: validate,
		logger:    logger,
		cacheTTL:  cacheTTL,
		now:       time.Now,
	}
}

// ComputeReport runs the deterministic pricing computation.
func (s *PricingService) ComputeReport(ctx context.Context, req PricingReportRequest) (*models.PricingReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid pricing request")
	}

	event := models.EventContext{}
	if req.EventDate != "" {
		parsed, err := time.Parse(eventDateLayout, req.EventDate)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "event_date must be formatted YYYY-MM-DD")
		}
		event.EventDate = &parsed
	}

	snapshot, err := s.calendars.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	cacheKey := s.cacheKey(req, snapshot.LoadedAt)
	if s.cache.Enabled() {
		var cached models.PricingReport
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	report, err := s.compute(req, event, snapshot)
	if err != nil {
		return nil, err
	}

	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, report, s.cacheTTL)
	}

	return report, nil
}

func (s *PricingService) compute(req PricingReportRequest, event models.EventContext, snapshot *models.CalendarSnapshot) (*models.PricingReport, error) {
	rows := snapshot.SegmentRows(req.Segment)
	if len(rows) == 0 {
		return nil, appErrors.Clone(appErrors.ErrEmptyCalendar, "no usable occasion rows to price against")
	}

	material := models.ParseMaterial(req.Material)
	silhouette := models.ParseSilhouette(req.Silhouette)

	basePrice, err := s.basePrice(req, material, silhouette, event)
	if err != nil {
		return nil, err
	}

	month := s.now().Month()
	confidence := confidenceFor(material, req.Condition, silhouette)

	priced := make([]models.PricedOccasionRow, len(rows))
	for i, row := range rows {
		suggested := roundToInt(basePrice * row.Multiplier)
		priced[i] = models.PricedOccasionRow{
			OccasionRow:    row,
			InSeasonNow:    row.InSeason(month),
			SuggestedPrice: suggested,
			Low:            roundToInt(float64(suggested) * 0.90),
			High:           roundToInt(float64(suggested) * 1.10),
			ConfidencePct:  confidence,
		}
	}

	standard := summaryStandard(priced)
	report := &models.PricingReport{
		BasePrice:    basePrice,
		Rows:         priced,
		Standard:     standard,
		Conservative: maxInt(1, roundToInt(float64(standard)*0.90)),
		Premium:      roundToInt(float64(standard) * 1.10),
		UsedDefaults: snapshot.UsedDefaults,
	}
	return report, nil
}

// basePrice applies the multiplicative adjustment chain: base percentage,
// material, condition, silhouette, then the rush/weekend multiplier.
func (s *PricingService) basePrice(req PricingReportRequest, material models.Material, silhouette models.Silhouette, event models.EventContext) (float64, error) {
	conditionFactor, err := models.ConditionFactor(req.Condition)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid condition score")
	}

	price := req.OriginalPrice * (req.BasePct / 100.0)
	price *= material.Factor()
	price *= conditionFactor
	price *= silhouette.Factor()
	price *= s.rushWeekendMultiplier(req, event)
	return price, nil
}

// rushWeekendMultiplier compounds the rush and weekend markups. An event
// within 4 days counts as rush; a past event date also counts as rush.
func (s *PricingService) rushWeekendMultiplier(req PricingReportRequest, event models.EventContext) float64 {
	m := 1.0
	if days, ok := event.DaysToEvent(s.now()); ok && days <= 4 {
		m *= 1 + req.RushPct/100.0
	}
	if event.IsWeekend() {
		m *= 1 + req.WeekendPct/100.0
	}
	return m
}

func confidenceFor(material models.Material, condition int, silhouette models.Silhouette) int {
	confidence := confidenceBase
	if material.Premium() && condition >= premiumConditionAt {
		confidence += confidenceStep
	}
	if silhouette == models.SilhouetteGown {
		confidence += confidenceStep
	}
	return confidence
}

// summaryStandard takes the median suggested price over in-season rows,
// falling back to the whole table when nothing is currently in season.
func summaryStandard(rows []models.PricedOccasionRow) int {
	inSeason := make([]int, 0, len(rows))
	all := make([]int, 0, len(rows))
	for _, row := range rows {
		all = append(all, row.SuggestedPrice)
		if row.InSeasonNow {
			inSeason = append(inSeason, row.SuggestedPrice)
		}
	}
	if len(inSeason) > 0 {
		return roundToInt(median(inSeason))
	}
	return roundToInt(median(all))
}

// median over ints; even counts average the two middle values, matching the
// original report's summary arithmetic.
func median(values []int) float64 {
	sorted := make([]int, len(values))
	copy(sorted, values)
	sort.Ints(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return float64(sorted[n/2])
	}
	return float64(sorted[n/2-1]+sorted[n/2]) / 2.0
}

func (s *PricingService) cacheKey(req PricingReportRequest, loadedAt time.Time) string {
	payload, _ := json.Marshal(req)
	sum := sha256.Sum256(append(payload, []byte(loadedAt.UTC().Format(time.RFC3339Nano))...))
	return fmt.Sprintf("pricing:report:%s", hex.EncodeToString(sum[:16]))
}

func roundToInt(f float64) int {
	return int(math.Round(f))
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
