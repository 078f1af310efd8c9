package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

// CalendarSQLRepository reads the occasion calendar from a Postgres table
// with the canonical column set. The same row-level validation as the file
// source applies after the fetch.
type CalendarSQLRepository struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

// NewCalendarSQLRepository constructs the repository.
func NewCalendarSQLRepository(db *sqlx.DB, table string, logger *zap.Logger) *CalendarSQLRepository {
	if table == "" {
		table = "occasion_calendar"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarSQLRepository{db: db, table: table, logger: logger}
}

type occasionRecord struct {
	Occasion   string          `db:"occasion"`
	UserType   sql.NullString  `db:"user_type"`
	StartMonth sql.NullInt64   `db:"start_month"`
	EndMonth   sql.NullInt64   `db:"end_month"`
	Multiplier sql.NullFloat64 `db:"multiplier"`
	Notes      sql.NullString  `db:"notes"`
}

// Load fetches and normalizes the calendar table.
func (r *CalendarSQLRepository) Load(ctx context.Context) (*models.CalendarSnapshot, error) {
	query := fmt.Sprintf(
		"SELECT occasion, user_type, start_month, end_month, multiplier, notes FROM %s ORDER BY occasion",
		r.table,
	)

	var records []occasionRecord
	if err := r.db.SelectContext(ctx, &records, query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCalendarConfig.Code, appErrors.ErrCalendarConfig.Status, "query occasion calendar")
	}

	snapshot := &models.CalendarSnapshot{
		HasSegments: true,
		LoadedAt:    time.Now().UTC(),
	}

	for _, rec := range records {
		row, ok := rec.toRow()
		if !ok {
			snapshot.DroppedRows++
			continue
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}

	if snapshot.DroppedRows > 0 {
		r.logger.Warn("dropped unusable calendar rows",
			zap.String("table", r.table),
			zap.Int("dropped", snapshot.DroppedRows),
			zap.Int("kept", len(snapshot.Rows)),
		)
	}

	return snapshot, nil
}

func (rec occasionRecord) toRow() (models.OccasionRow, bool) {
	if rec.Occasion == "" {
		return models.OccasionRow{}, false
	}
	if !rec.StartMonth.Valid || !rec.EndMonth.Valid || !rec.Multiplier.Valid {
		return models.OccasionRow{}, false
	}
	start := int(rec.StartMonth.Int64)
	end := int(rec.EndMonth.Int64)
	if start < 1 || start > 12 || end < 1 || end > 12 {
		return models.OccasionRow{}, false
	}
	if rec.Multiplier.Float64 <= 0 {
		return models.OccasionRow{}, false
	}
	return models.OccasionRow{
		Occasion:   rec.Occasion,
		UserType:   rec.UserType.String,
		StartMonth: start,
		EndMonth:   end,
		Multiplier: rec.Multiplier.Float64,
		Notes:      rec.Notes.String,
	}, true
}
