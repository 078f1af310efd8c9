package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

type calendarSource interface {
	Load(ctx context.Context) (*models.CalendarSnapshot, error)
}

// CalendarService owns the process-wide occasion calendar snapshot. The
// snapshot is loaded lazily on first use, shared read-only by every pricing
// request and replaced wholesale on Reload.
type CalendarService struct {
	source  calendarSource
	metrics *MetricsService
	logger  *zap.Logger

	mu       sync.RWMutex
	snapshot *models.CalendarSnapshot
}

// NewCalendarService constructs the service.
func NewCalendarService(source calendarSource, metrics *MetricsService, logger *zap.Logger) *CalendarService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarService{source: source, metrics: metrics, logger: logger}
}

// Snapshot returns the current calendar snapshot, loading it on first call.
func (s *CalendarService) Snapshot(ctx context.Context) (*models.CalendarSnapshot, error) {
	s.mu.RLock()
	if s.snapshot != nil {
		snap := s.snapshot
		s.mu.RUnlock()
		return snap, nil
	}
	s.mu.RUnlock()

	return s.Reload(ctx)
}

// Reload fetches the calendar from its source and swaps the snapshot. The
// previous snapshot stays valid for requests already holding it.
func (s *CalendarService) Reload(ctx context.Context) (*models.CalendarSnapshot, error) {
	snapshot, err := s.source.Load(ctx)
	if err != nil {
		return nil, appErrors.FromError(err)
	}

	s.mu.Lock()
	s.snapshot = snapshot
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordCalendarLoad(snapshot.UsedDefaults, snapshot.DroppedRows)
	}

	s.logger.Info("calendar snapshot loaded",
		zap.Int("rows", len(snapshot.Rows)),
		zap.Int("dropped", snapshot.DroppedRows),
		zap.Bool("used_defaults", snapshot.UsedDefaults),
		zap.Bool("has_segments", snapshot.HasSegments),
	)

	return snapshot, nil
}
