package models

import (
	"strings"
	"time"
)

// OccasionRow is one normalized entry of the occasion calendar.
type OccasionRow struct {
	Occasion   string  `db:"occasion" json:"occasion"`
	UserType   string  `db:"user_type" json:"user_type,omitempty"`
	StartMonth int     `db:"start_month" json:"start_month"`
	EndMonth   int     `db:"end_month" json:"end_month"`
	Multiplier float64 `db:"multiplier" json:"multiplier"`
	Notes      string  `db:"notes" json:"notes,omitempty"`
}

// InSeason reports whether the given month falls inside the row's inclusive
// month range. Ranges where start > end wrap the year boundary (e.g. 12..1
// covers December and January).
func (r OccasionRow) InSeason(month time.Month) bool {
	m := int(month)
	if r.StartMonth <= r.EndMonth {
		return m >= r.StartMonth && m <= r.EndMonth
	}
	return m >= r.StartMonth || m <= r.EndMonth
}

// MatchesSegment compares the row's user type case-insensitively.
func (r OccasionRow) MatchesSegment(segment string) bool {
	return strings.EqualFold(strings.TrimSpace(r.UserType), strings.TrimSpace(segment))
}

// CalendarSnapshot is the immutable result of one calendar load. It is built
// once, shared by reference and never mutated by pricing requests.
type CalendarSnapshot struct {
	Rows         []OccasionRow `json:"rows"`
	HasSegments  bool          `json:"has_segments"`
	UsedDefaults bool          `json:"used_defaults"`
	DroppedRows  int           `json:"dropped_rows"`
	LoadedAt     time.Time     `json:"loaded_at"`
}

// SegmentRows returns the rows matching the requested segment. When the
// calendar carries no segment column, or nothing matches, the entire table is
// returned instead of an empty slice: unfiltered suggestions beat none.
func (s *CalendarSnapshot) SegmentRows(segment string) []OccasionRow {
	if !s.HasSegments || strings.TrimSpace(segment) == "" {
		return s.Rows
	}
	matched := make([]OccasionRow, 0, len(s.Rows))
	for _, row := range s.Rows {
		if row.MatchesSegment(segment) {
			matched = append(matched, row)
		}
	}
	if len(matched) == 0 {
		return s.Rows
	}
	return matched
}

// DefaultCalendarRows is the built-in occasion dataset used when no external
// calendar source is available.
func DefaultCalendarRows() []OccasionRow {
	return []OccasionRow{
		{Occasion: "homecoming", UserType: "highschool", StartMonth: 9, EndMonth: 10, Multiplier: 1.25},
		{Occasion: "prom", UserType: "highschool", StartMonth: 3, EndMonth: 5, Multiplier: 1.35},
		{Occasion: "winter_formal", UserType: "highschool", StartMonth: 12, EndMonth: 1, Multiplier: 1.15},
		{Occasion: "football_season", UserType: "college", StartMonth: 9, EndMonth: 11, Multiplier: 1.15},
		{Occasion: "date_parties", UserType: "college", StartMonth: 10, EndMonth: 4, Multiplier: 1.10},
		{Occasion: "formals", UserType: "college", StartMonth: 11, EndMonth: 4, Multiplier: 1.25},
		{Occasion: "rush", UserType: "college", StartMonth: 8, EndMonth: 8, Multiplier: 1.20},
	}
}
