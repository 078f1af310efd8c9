package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dresscirc/pricing-api/internal/models"
	appErrors "github.com/dresscirc/pricing-api/pkg/errors"
)

// Canonical calendar columns and their accepted header synonyms. Matching is
// case-insensitive and whitespace-trimmed; the first synonym present wins.
var columnSynonyms = map[string][]string{
	"occasion":    {"occasion", "event", "season"},
	"user_type":   {"user_type", "segment", "school_level"},
	"start_month": {"start_month", "start"},
	"end_month":   {"end_month", "end"},
	"multiplier":  {"multiplier", "factor"},
	"notes":       {"notes", "comment"},
}

var requiredColumns = []string{"occasion", "start_month", "end_month", "multiplier"}

// CalendarFileRepository loads the occasion calendar from a CSV file. Loads
// are memoized on (path, mtime): an unchanged file is never re-read. A
// missing file yields the built-in default dataset.
type CalendarFileRepository struct {
	path   string
	logger *zap.Logger

	mu       sync.Mutex
	cached   *models.CalendarSnapshot
	cachedAt time.Time
}

// NewCalendarFileRepository constructs the repository.
func NewCalendarFileRepository(path string, logger *zap.Logger) *CalendarFileRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CalendarFileRepository{path: path, logger: logger}
}

// Load returns the normalized calendar snapshot for the configured file.
func (r *CalendarFileRepository) Load(ctx context.Context) (*models.CalendarSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, err := os.Stat(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			if r.cached != nil && r.cached.UsedDefaults {
				return r.cached, nil
			}
			r.logger.Warn("calendar file absent, using built-in defaults", zap.String("path", r.path))
			r.cached = defaultSnapshot()
			r.cachedAt = time.Time{}
			return r.cached, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrCalendarConfig.Code, appErrors.ErrCalendarConfig.Status, "stat calendar file")
	}

	if r.cached != nil && !r.cached.UsedDefaults && info.ModTime().Equal(r.cachedAt) {
		return r.cached, nil
	}

	file, err := os.Open(r.path)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCalendarConfig.Code, appErrors.ErrCalendarConfig.Status, "open calendar file")
	}
	defer file.Close() //nolint:errcheck

	snapshot, err := parseCalendar(file)
	if err != nil {
		return nil, err
	}

	if snapshot.DroppedRows > 0 {
		r.logger.Warn("dropped unusable calendar rows",
			zap.String("path", r.path),
			zap.Int("dropped", snapshot.DroppedRows),
			zap.Int("kept", len(snapshot.Rows)),
		)
	}

	r.cached = snapshot
	r.cachedAt = info.ModTime()
	return snapshot, nil
}

func defaultSnapshot() *models.CalendarSnapshot {
	return &models.CalendarSnapshot{
		Rows:         models.DefaultCalendarRows(),
		HasSegments:  true,
		UsedDefaults: true,
		LoadedAt:     time.Now().UTC(),
	}
}

// parseCalendar normalizes headers, coerces types and drops unusable rows.
func parseCalendar(src io.Reader) (*models.CalendarSnapshot, error) {
	reader := csv.NewReader(src)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrCalendarConfig.Code, appErrors.ErrCalendarConfig.Status, "read calendar header")
	}

	columns := resolveColumns(header)
	missing := missingRequired(columns)
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrCalendarConfig,
			fmt.Sprintf("calendar missing required column(s): %s", strings.Join(missing, ", ")))
	}

	_, hasSegments := columns["user_type"]

	snapshot := &models.CalendarSnapshot{
		HasSegments: hasSegments,
		LoadedAt:    time.Now().UTC(),
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrCalendarConfig.Code, appErrors.ErrCalendarConfig.Status, "read calendar row")
		}

		row, ok := coerceRow(record, columns)
		if !ok {
			snapshot.DroppedRows++
			continue
		}
		snapshot.Rows = append(snapshot.Rows, row)
	}

	return snapshot, nil
}

// resolveColumns maps canonical column names to record indexes.
func resolveColumns(header []string) map[string]int {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	columns := make(map[string]int, len(columnSynonyms))
	for canonical, synonyms := range columnSynonyms {
		for _, synonym := range synonyms {
			if idx, ok := indexOf(normalized, synonym); ok {
				columns[canonical] = idx
				break
			}
		}
	}
	return columns
}

func indexOf(values []string, want string) (int, bool) {
	for i, v := range values {
		if v == want {
			return i, true
		}
	}
	return 0, false
}

func missingRequired(columns map[string]int) []string {
	missing := make([]string, 0)
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}

// coerceRow converts one CSV record into an OccasionRow. Rows with a blank
// occasion, a failed numeric coercion, a month outside 1..12 or a
// non-positive multiplier are unusable and get dropped.
func coerceRow(record []string, columns map[string]int) (models.OccasionRow, bool) {
	cell := func(name string) (string, bool) {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return "", false
		}
		return strings.TrimSpace(record[idx]), true
	}

	occasion, _ := cell("occasion")
	if occasion == "" {
		return models.OccasionRow{}, false
	}

	startRaw, _ := cell("start_month")
	endRaw, _ := cell("end_month")
	multRaw, _ := cell("multiplier")

	start, ok := parseMonth(startRaw)
	if !ok {
		return models.OccasionRow{}, false
	}
	end, ok := parseMonth(endRaw)
	if !ok {
		return models.OccasionRow{}, false
	}
	mult, err := strconv.ParseFloat(multRaw, 64)
	if err != nil || mult <= 0 {
		return models.OccasionRow{}, false
	}

	row := models.OccasionRow{
		Occasion:   occasion,
		StartMonth: start,
		EndMonth:   end,
		Multiplier: mult,
	}
	if userType, ok := cell("user_type"); ok {
		row.UserType = userType
	}
	if notes, ok := cell("notes"); ok {
		row.Notes = notes
	}
	return row, true
}

// parseMonth accepts integers and whole floats ("9", "9.0") in 1..12.
func parseMonth(raw string) (int, bool) {
	if raw == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	if f != math.Trunc(f) {
		return 0, false
	}
	month := int(f)
	if month < 1 || month > 12 {
		return 0, false
	}
	return month, true
}
