package models

import (
	"fmt"
	"strings"
	"time"
)

// Material is the item's fabric category. Each recognized material carries a
// fixed price adjustment factor; anything else resolves to MaterialUnknown.
type Material string

const (
	MaterialUnknown   Material = "Unknown"
	MaterialSilk      Material = "Silk"
	MaterialSatin     Material = "Satin"
	MaterialCotton    Material = "Cotton"
	MaterialLace      Material = "Lace"
	MaterialPolyester Material = "Polyester"
	MaterialSequin    Material = "Sequin"
	MaterialOther     Material = "Other"
)

// ParseMaterial maps free-form input onto a known material, defaulting to
// MaterialUnknown for anything unrecognized.
func ParseMaterial(raw string) Material {
	switch Material(canonical(raw)) {
	case MaterialSilk:
		return MaterialSilk
	case MaterialSatin:
		return MaterialSatin
	case MaterialCotton:
		return MaterialCotton
	case MaterialLace:
		return MaterialLace
	case MaterialPolyester:
		return MaterialPolyester
	case MaterialSequin:
		return MaterialSequin
	case MaterialOther:
		return MaterialOther
	default:
		return MaterialUnknown
	}
}

// Factor returns the material price adjustment.
func (m Material) Factor() float64 {
	switch m {
	case MaterialSilk:
		return 1.10
	case MaterialSatin:
		return 1.07
	case MaterialLace:
		return 1.05
	case MaterialSequin:
		return 1.12
	case MaterialPolyester:
		return 0.98
	case MaterialCotton, MaterialOther, MaterialUnknown:
		return 1.00
	default:
		return 1.00
	}
}

// Premium reports whether the material lifts suggestion confidence.
func (m Material) Premium() bool {
	return m == MaterialSilk || m == MaterialSequin
}

// Silhouette is the item's cut category.
type Silhouette string

const (
	SilhouetteUnknown  Silhouette = "Unknown"
	SilhouetteMini     Silhouette = "mini"
	SilhouetteMidi     Silhouette = "midi"
	SilhouetteGown     Silhouette = "gown"
	SilhouetteSet      Silhouette = "set"
	SilhouetteJumpsuit Silhouette = "jumpsuit"
)

// ParseSilhouette maps free-form input onto a known silhouette, defaulting to
// SilhouetteUnknown for anything unrecognized.
func ParseSilhouette(raw string) Silhouette {
	switch Silhouette(strings.ToLower(strings.TrimSpace(raw))) {
	case SilhouetteMini:
		return SilhouetteMini
	case SilhouetteMidi:
		return SilhouetteMidi
	case SilhouetteGown:
		return SilhouetteGown
	case SilhouetteSet:
		return SilhouetteSet
	case SilhouetteJumpsuit:
		return SilhouetteJumpsuit
	default:
		return SilhouetteUnknown
	}
}

// Factor returns the silhouette price adjustment.
func (s Silhouette) Factor() float64 {
	switch s {
	case SilhouetteMidi:
		return 1.05
	case SilhouetteGown:
		return 1.15
	case SilhouetteSet:
		return 1.02
	case SilhouetteJumpsuit:
		return 0.95
	case SilhouetteMini, SilhouetteUnknown:
		return 1.00
	default:
		return 1.00
	}
}

// ConditionFactor maps the 1..5 condition score to its price adjustment.
// Scores outside the scale are rejected, never clamped.
func ConditionFactor(score int) (float64, error) {
	switch score {
	case 1:
		return 0.75, nil
	case 2:
		return 0.85, nil
	case 3:
		return 0.93, nil
	case 4:
		return 1.00, nil
	case 5:
		return 1.05, nil
	default:
		return 0, fmt.Errorf("condition %d outside 1..5", score)
	}
}

// ItemDescriptor captures one item being priced. Inputs are ephemeral: they
// live for a single pricing request.
type ItemDescriptor struct {
	OriginalPrice float64    `json:"original_price"`
	Condition     int        `json:"condition"`
	Material      Material   `json:"material"`
	Silhouette    Silhouette `json:"silhouette"`
	Color         string     `json:"color,omitempty"`
	Notes         string     `json:"notes,omitempty"`
}

// PricingKnobs are the per-request tuning percentages.
type PricingKnobs struct {
	BasePct    float64 `json:"base_pct"`
	RushPct    float64 `json:"rush_pct"`
	WeekendPct float64 `json:"weekend_pct"`
}

// EventContext carries the optional upcoming event date.
type EventContext struct {
	EventDate *time.Time `json:"event_date,omitempty"`
}

// DaysToEvent returns the whole-day distance from today to the event date,
// or false when no event date is set. Past events yield negative values.
func (e EventContext) DaysToEvent(now time.Time) (int, bool) {
	if e.EventDate == nil {
		return 0, false
	}
	today := midnight(now)
	event := midnight(*e.EventDate)
	return int(event.Sub(today).Hours() / 24), true
}

// IsWeekend reports whether the event date falls on Saturday or Sunday.
// Absent event date means false.
func (e EventContext) IsWeekend() bool {
	if e.EventDate == nil {
		return false
	}
	wd := e.EventDate.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// canonical title-cases a single word so "silk", "SILK" and "Silk" agree.
func canonical(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	return strings.ToUpper(raw[:1]) + strings.ToLower(raw[1:])
}
