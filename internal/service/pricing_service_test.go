package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

type stubCalendarSource struct {
	snapshot *models.CalendarSnapshot
	err      error
	loads    int
}

func (s *stubCalendarSource) Load(ctx context.Context) (*models.CalendarSnapshot, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.snapshot, nil
}

type memCacheRepo struct {
	entries map[string][]byte
	gets    int
	hits    int
}

func newMemCacheRepo() *memCacheRepo {
	return &memCacheRepo{entries: map[string][]byte{}}
}

func (m *memCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	m.hits++
	return json.Unmarshal(raw, dest)
}

func (m *memCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.entries[key] = raw
	return nil
}

func (m *memCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	m.entries = map[string][]byte{}
	return nil
}

func snapshotWith(rows []models.OccasionRow, hasSegments bool) *models.CalendarSnapshot {
	return &models.CalendarSnapshot{
		Rows:        rows,
		HasSegments: hasSegments,
		LoadedAt:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newTestPricingService(snapshot *models.CalendarSnapshot, now time.Time) *PricingService {
	calendars := NewCalendarService(&stubCalendarSource{snapshot: snapshot}, nil, nil)
	svc := NewPricingService(calendars, nil, nil, 0, nil)
	svc.now = func() time.Time { return now }
	return svc
}

func baseRequest() PricingReportRequest {
	return PricingReportRequest{
		OriginalPrice: 250,
		Condition:     5,
		Material:      "Silk",
		Silhouette:    "gown",
		BasePct:       30,
		RushPct:       10,
		WeekendPct:    5,
	}
}

func TestComputeReportRushWeekendScenario(t *testing.T) {
	// Wednesday; the event lands 3 days later on a Saturday.
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "prom", UserType: "highschool", StartMonth: 3, EndMonth: 5, Multiplier: 1.25},
	}
	svc := newTestPricingService(snapshotWith(rows, true), now)

	req := baseRequest()
	req.EventDate = "2025-06-07"

	report, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	assert.InDelta(t, 115.06, report.BasePrice, 0.01)
	require.Len(t, report.Rows, 1)

	row := report.Rows[0]
	assert.Equal(t, 144, row.SuggestedPrice)
	assert.Equal(t, 130, row.Low)
	assert.Equal(t, 158, row.High)
	assert.Equal(t, 80, row.ConfidencePct)
	assert.False(t, row.InSeasonNow)

	assert.Equal(t, 144, report.Standard)
	assert.Equal(t, 130, report.Conservative)
	assert.Equal(t, 158, report.Premium)
}

func TestComputeReportNoEventDateNoSurcharge(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "formals", StartMonth: 11, EndMonth: 4, Multiplier: 1.0},
	}
	svc := newTestPricingService(snapshotWith(rows, false), now)

	req := baseRequest()

	report, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	// 250 * 0.30 * 1.10 * 1.05 * 1.15, no rush or weekend markup.
	assert.InDelta(t, 99.61875, report.BasePrice, 0.0001)
	assert.Equal(t, 100, report.Rows[0].SuggestedPrice)
}

func TestComputeReportIdempotent(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	svc := newTestPricingService(snapshotWith(models.DefaultCalendarRows(), true), now)

	req := baseRequest()
	req.EventDate = "2025-06-07"

	first, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestComputeReportConditionMonotonic(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "prom", StartMonth: 3, EndMonth: 5, Multiplier: 1.35},
	}
	svc := newTestPricingService(snapshotWith(rows, false), now)

	prev := 0
	for condition := 1; condition <= 5; condition++ {
		req := baseRequest()
		req.Condition = condition

		report, err := svc.ComputeReport(context.Background(), req)
		require.NoError(t, err)

		suggested := report.Rows[0].SuggestedPrice
		assert.GreaterOrEqual(t, suggested, prev, "condition %d", condition)
		prev = suggested
	}
}

func TestComputeReportRushWindowBoundary(t *testing.T) {
	// Monday. Friday is 4 days out (rush), Saturday is 5 days out (no rush).
	now := time.Date(2025, 6, 2, 9, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "rush_week", StartMonth: 8, EndMonth: 8, Multiplier: 1.0},
	}
	svc := newTestPricingService(snapshotWith(rows, false), now)

	req := baseRequest()
	req.RushPct = 50
	req.WeekendPct = 0

	req.EventDate = "2025-06-06"
	withRush, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	req.EventDate = "2025-06-07"
	withoutRush, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	assert.InDelta(t, withoutRush.BasePrice*1.5, withRush.BasePrice, 0.0001)
}

func TestComputeReportPastEventStillRush(t *testing.T) {
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "prom", StartMonth: 3, EndMonth: 5, Multiplier: 1.0},
	}
	svc := newTestPricingService(snapshotWith(rows, false), now)

	req := baseRequest()
	req.RushPct = 50
	req.WeekendPct = 0
	req.EventDate = "2025-06-03" // a past Tuesday

	report, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	noEvent := req
	noEvent.EventDate = ""
	baseline, err := svc.ComputeReport(context.Background(), noEvent)
	require.NoError(t, err)

	assert.InDelta(t, baseline.BasePrice*1.5, report.BasePrice, 0.0001)
}

func TestComputeReportEmptyCalendar(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	svc := newTestPricingService(snapshotWith(nil, false), now)

	_, err := svc.ComputeReport(context.Background(), baseRequest())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrEmptyCalendar.Code, appErr.Code)
}

func TestComputeReportSegmentFiltering(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestPricingService(snapshotWith(models.DefaultCalendarRows(), true), now)

	req := baseRequest()
	req.Segment = "college"

	report, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	require.Len(t, report.Rows, 4)
	for _, row := range report.Rows {
		assert.Equal(t, "college", row.UserType)
	}
}

func TestComputeReportSegmentFallsBackWithoutColumn(t *testing.T) {
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "homecoming", StartMonth: 9, EndMonth: 10, Multiplier: 1.25},
		{Occasion: "prom", StartMonth: 3, EndMonth: 5, Multiplier: 1.35},
	}
	svc := newTestPricingService(snapshotWith(rows, false), now)

	req := baseRequest()
	req.Segment = "college"

	report, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, report.Rows, 2)
}

func TestComputeReportSummaryUsesInSeasonMedian(t *testing.T) {
	// October: homecoming (9..10) and date_parties (10..4) are in season,
	// prom (3..5) is not. Median over the two in-season suggestions averages
	// the middle pair.
	now := time.Date(2025, 10, 15, 12, 0, 0, 0, time.UTC)
	rows := []models.OccasionRow{
		{Occasion: "homecoming", StartMonth: 9, EndMonth: 10, Multiplier: 1.25},
		{Occasion: "date_parties", StartMonth: 10, EndMonth: 4, Multiplier: 1.10},
		{Occasion: "prom", StartMonth: 3, EndMonth: 5, Multiplier: 10.0},
	}
	svc := newTestPricingService(snapshotWith(rows, false), now)

	req := baseRequest()
	report, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)

	// base 99.61875: in-season suggestions are round(124.52)=125 and
	// round(109.58)=110, median = 117.5 -> 118. The out-of-season outlier
	// multiplier must not leak into the summary.
	assert.Equal(t, 118, report.Standard)
	assert.Equal(t, 106, report.Conservative)
	assert.Equal(t, 130, report.Premium)
}

func TestComputeReportValidation(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	svc := newTestPricingService(snapshotWith(models.DefaultCalendarRows(), true), now)

	cases := map[string]func(*PricingReportRequest){
		"zero price":         func(r *PricingReportRequest) { r.OriginalPrice = 0 },
		"condition too high": func(r *PricingReportRequest) { r.Condition = 6 },
		"base pct too low":   func(r *PricingReportRequest) { r.BasePct = 1 },
		"rush pct negative":  func(r *PricingReportRequest) { r.RushPct = -5 },
		"bad event date":     func(r *PricingReportRequest) { r.EventDate = "06/07/2025" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := baseRequest()
			mutate(&req)

			_, err := svc.ComputeReport(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestComputeReportUsesCache(t *testing.T) {
	now := time.Date(2025, 6, 4, 12, 0, 0, 0, time.UTC)
	repo := newMemCacheRepo()
	cacheSvc := NewCacheService(repo, nil, time.Minute, nil, true)

	calendars := NewCalendarService(&stubCalendarSource{snapshot: snapshotWith(models.DefaultCalendarRows(), true)}, nil, nil)
	svc := NewPricingService(calendars, cacheSvc, nil, time.Minute, nil)
	svc.now = func() time.Time { return now }

	req := baseRequest()
	first, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 0, repo.hits)

	second, err := svc.ComputeReport(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.hits)
	assert.Equal(t, first.Standard, second.Standard)
	assert.Equal(t, len(first.Rows), len(second.Rows))
}

func TestCacheKeyChangesWithSnapshot(t *testing.T) {
	svc := newTestPricingService(snapshotWith(nil, false), time.Now())
	req := baseRequest()

	a := svc.cacheKey(req, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	b := svc.cacheKey(req, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, a, b)

	req.Condition = 3
	c := svc.cacheKey(req, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	assert.NotEqual(t, a, c)
}
