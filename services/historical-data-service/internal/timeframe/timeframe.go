// Package timeframe holds the closed set of candle timeframes the platform serves
// and the per-timeframe date range limits applied before candles are fetched.
package timeframe

import (
	"sort"
	"strings"
)

// Supported timeframe keys
const (
	OneHour   = "1h"
	FourHours = "4h"
	OneDay    = "1d"
	OneWeek   = "1w"
	OneMonth  = "1m"
)

// fallbackKey is the record handed out for keys outside the closed set
const fallbackKey = OneDay

// Limit describes how much history may be requested for one timeframe
type Limit struct {
	MaxMonths          int    `json:"max_months"`
	Description        string `json:"description"`
	SuggestedTimeframe string `json:"suggested_timeframe,omitempty"`
	MaxDataPoints      int    `json:"max_data_points"`
	DefaultVisibleDays int    `json:"default_visible_days"`
}

type definition struct {
	label   string
	minutes int
	limit   Limit
}

var definitions = map[string]definition{
	OneHour: {
		label:   "1 Hour",
		minutes: 60,
		limit: Limit{
			MaxMonths:          3,
			Description:        "3 months",
			SuggestedTimeframe: FourHours,
			MaxDataPoints:      2200,
			DefaultVisibleDays: 7,
		},
	},
	FourHours: {
		label:   "4 Hours",
		minutes: 240,
		limit: Limit{
			MaxMonths:          12,
			Description:        "1 year",
			SuggestedTimeframe: OneDay,
			MaxDataPoints:      2200,
			DefaultVisibleDays: 30,
		},
	},
	OneDay: {
		label:   "1 Day",
		minutes: 1440,
		limit: Limit{
			MaxMonths:          60,
			Description:        "5 years",
			SuggestedTimeframe: OneWeek,
			MaxDataPoints:      1830,
			DefaultVisibleDays: 180,
		},
	},
	OneWeek: {
		label:   "1 Week",
		minutes: 10080,
		limit: Limit{
			MaxMonths:          120,
			Description:        "10 years",
			SuggestedTimeframe: OneMonth,
			MaxDataPoints:      520,
			DefaultVisibleDays: 730,
		},
	},
	OneMonth: {
		label:   "1 Month",
		minutes: 43200,
		limit: Limit{
			MaxMonths:          240,
			Description:        "20 years",
			MaxDataPoints:      240,
			DefaultVisibleDays: 1825,
		},
	},
}

// Normalize lower-cases and trims a timeframe key
func Normalize(tf string) string {
	return strings.ToLower(strings.TrimSpace(tf))
}

// IsKnown reports whether tf belongs to the supported set
func IsKnown(tf string) bool {
	_, ok := definitions[Normalize(tf)]
	return ok
}

// Lookup returns the limit for tf
func Lookup(tf string) (Limit, bool) {
	def, ok := definitions[Normalize(tf)]
	if !ok {
		return Limit{}, false
	}
	return def.limit, true
}

// Keys returns the supported keys ordered from the finest to the coarsest candle
func Keys() []string {
	keys := make([]string, 0, len(definitions))
	for k := range definitions {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return definitions[keys[i]].minutes < definitions[keys[j]].minutes
	})
	return keys
}

// Minutes returns the candle length in minutes, 0 for unknown keys.
// Monthly candles count as 30 days.
func Minutes(tf string) int {
	return definitions[Normalize(tf)].minutes
}

// Label formats a timeframe key for display, e.g. "4h" -> "4 Hours"
func Label(tf string) string {
	if def, ok := definitions[Normalize(tf)]; ok {
		return def.label
	}
	return strings.ToUpper(strings.TrimSpace(tf))
}

// DisplayKey is the upper-cased key used in user-facing messages
func DisplayKey(tf string) string {
	return strings.ToUpper(Normalize(tf))
}

// DefaultVisibleDays returns how many days a chart shows initially for tf
func DefaultVisibleDays(tf string) int {
	if def, ok := definitions[Normalize(tf)]; ok {
		return def.limit.DefaultVisibleDays
	}
	return definitions[fallbackKey].limit.DefaultVisibleDays
}
