package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

func TestCalendarServiceSnapshotLoadsLazilyOnce(t *testing.T) {
	source := &stubCalendarSource{snapshot: snapshotWith(models.DefaultCalendarRows(), true)}
	svc := NewCalendarService(source, nil, nil)

	first, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	second, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, source.loads)
}

func TestCalendarServiceReloadSwapsSnapshot(t *testing.T) {
	source := &stubCalendarSource{snapshot: snapshotWith(models.DefaultCalendarRows(), true)}
	svc := NewCalendarService(source, nil, nil)

	first, err := svc.Snapshot(context.Background())
	require.NoError(t, err)

	replacement := snapshotWith([]models.OccasionRow{
		{Occasion: "gala", StartMonth: 6, EndMonth: 6, Multiplier: 1.4},
	}, false)
	replacement.LoadedAt = time.Now().UTC()
	source.snapshot = replacement

	reloaded, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, reloaded)
	assert.Len(t, reloaded.Rows, 1)

	current, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Same(t, reloaded, current)
}

func TestCalendarServiceReloadPropagatesError(t *testing.T) {
	source := &stubCalendarSource{err: errors.New("boom")}
	svc := NewCalendarService(source, nil, nil)

	_, err := svc.Reload(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestCalendarServiceReloadKeepsTypedError(t *testing.T) {
	source := &stubCalendarSource{err: appErrors.Clone(appErrors.ErrCalendarConfig, "missing columns")}
	svc := NewCalendarService(source, nil, nil)

	_, err := svc.Snapshot(context.Background())
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrCalendarConfig.Code, appErrors.FromError(err).Code)
}
