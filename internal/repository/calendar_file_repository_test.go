package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

func writeCalendar(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "calendar.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFileRepositoryNormalizesHeaderSynonyms(t *testing.T) {
	path := writeCalendar(t, ""+
		"Event, School_Level ,Start,End,Factor,Comment\n"+
		"prom,highschool,3,5,1.35,spring peak\n"+
		"rush,college,8,8,1.20,\n")

	repo := NewCalendarFileRepository(path, nil)
	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snapshot.Rows, 2)
	assert.True(t, snapshot.HasSegments)
	assert.False(t, snapshot.UsedDefaults)
	assert.Equal(t, 0, snapshot.DroppedRows)

	prom := snapshot.Rows[0]
	assert.Equal(t, "prom", prom.Occasion)
	assert.Equal(t, "highschool", prom.UserType)
	assert.Equal(t, 3, prom.StartMonth)
	assert.Equal(t, 5, prom.EndMonth)
	assert.Equal(t, 1.35, prom.Multiplier)
	assert.Equal(t, "spring peak", prom.Notes)
}

func TestFileRepositoryMissingRequiredColumns(t *testing.T) {
	path := writeCalendar(t, ""+
		"occasion,start_month,notes\n"+
		"prom,3,\n")

	repo := NewCalendarFileRepository(path, nil)
	_, err := repo.Load(context.Background())
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrCalendarConfig.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "end_month")
	assert.Contains(t, appErr.Message, "multiplier")
}

func TestFileRepositoryDropsUnusableRows(t *testing.T) {
	path := writeCalendar(t, ""+
		"occasion,start_month,end_month,multiplier\n"+
		"prom,3,5,1.35\n"+
		",9,10,1.25\n"+ // blank occasion
		"bad_month,13,10,1.25\n"+
		"bad_multiplier,9,10,0\n"+
		"not_numeric,abc,10,1.25\n"+
		"fractional_month,9.5,10,1.25\n"+
		"whole_float,9.0,10.0,1.25\n")

	repo := NewCalendarFileRepository(path, nil)
	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 5, snapshot.DroppedRows)
	require.Len(t, snapshot.Rows, 2)
	assert.Equal(t, "prom", snapshot.Rows[0].Occasion)
	assert.Equal(t, "whole_float", snapshot.Rows[1].Occasion)
	assert.Equal(t, 9, snapshot.Rows[1].StartMonth)
	assert.False(t, snapshot.HasSegments)
}

func TestFileRepositoryMissingFileFallsBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")

	repo := NewCalendarFileRepository(path, nil)
	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)

	assert.True(t, snapshot.UsedDefaults)
	assert.True(t, snapshot.HasSegments)
	assert.Len(t, snapshot.Rows, 7)
}

func TestFileRepositoryMemoizesOnModTime(t *testing.T) {
	path := writeCalendar(t, ""+
		"occasion,start_month,end_month,multiplier\n"+
		"prom,3,5,1.35\n")

	repo := NewCalendarFileRepository(path, nil)

	first, err := repo.Load(context.Background())
	require.NoError(t, err)
	second, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, second)

	require.NoError(t, os.WriteFile(path, []byte(""+
		"occasion,start_month,end_month,multiplier\n"+
		"prom,3,5,1.35\n"+
		"rush,8,8,1.20\n"), 0o644))
	bumped := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, bumped, bumped))

	third, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, first, third)
	assert.Len(t, third.Rows, 2)
}

func TestFileRepositoryRecoversWhenFileAppears(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "calendar.csv")

	repo := NewCalendarFileRepository(path, nil)
	defaults, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.True(t, defaults.UsedDefaults)

	require.NoError(t, os.WriteFile(path, []byte(""+
		"occasion,start_month,end_month,multiplier\n"+
		"gala,6,6,1.40\n"), 0o644))

	snapshot, err := repo.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, snapshot.UsedDefaults)
	require.Len(t, snapshot.Rows, 1)
	assert.Equal(t, "gala", snapshot.Rows[0].Occasion)
}
