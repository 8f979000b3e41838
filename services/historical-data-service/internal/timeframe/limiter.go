package timeframe

import (
	"fmt"
	"time"
)

const messageDateLayout = "2006-01-02"

// DateRangeValidation is the outcome of checking a requested span against the
// limit of its timeframe. AdjustedEnd always equals OriginalEnd; only the start
// is ever pulled forward.
type DateRangeValidation struct {
	IsValid        bool      `json:"is_valid"`
	OriginalStart  time.Time `json:"original_start_date"`
	OriginalEnd    time.Time `json:"original_end_date"`
	AdjustedStart  time.Time `json:"adjusted_start_date"`
	AdjustedEnd    time.Time `json:"adjusted_end_date"`
	WasAdjusted    bool      `json:"was_adjusted"`
	Message        string    `json:"message,omitempty"`
	Limit          Limit     `json:"limit"`
	SelectedMonths int       `json:"selected_months"`
}

// Validate checks start..end against the limit for tf and clamps the start when
// the span is too long.
//
// Keys outside the supported set are let through untouched with the daily limit
// attached as a placeholder and SelectedMonths = 0.
func Validate(start, end time.Time, tf string) DateRangeValidation {
	limit, ok := Lookup(tf)
	if !ok {
		return DateRangeValidation{
			IsValid:       true,
			OriginalStart: start,
			OriginalEnd:   end,
			AdjustedStart: start,
			AdjustedEnd:   end,
			Limit:         definitions[fallbackKey].limit,
		}
	}

	selected := MonthsBetween(start, end)
	if selected <= limit.MaxMonths {
		return DateRangeValidation{
			IsValid:        true,
			OriginalStart:  start,
			OriginalEnd:    end,
			AdjustedStart:  start,
			AdjustedEnd:    end,
			Limit:          limit,
			SelectedMonths: selected,
		}
	}

	adjustedStart := SubMonths(end, limit.MaxMonths)
	return DateRangeValidation{
		IsValid:        false,
		OriginalStart:  start,
		OriginalEnd:    end,
		AdjustedStart:  adjustedStart,
		AdjustedEnd:    end,
		WasAdjusted:    true,
		Message:        adjustmentMessage(tf, limit, adjustedStart, end),
		Limit:          limit,
		SelectedMonths: selected,
	}
}

func adjustmentMessage(tf string, limit Limit, start, end time.Time) string {
	msg := fmt.Sprintf("Date range limited to %s for %s timeframe. Showing data from %s to %s.",
		limit.Description,
		DisplayKey(tf),
		start.Format(messageDateLayout),
		end.Format(messageDateLayout),
	)
	if limit.SuggestedTimeframe != "" {
		msg += fmt.Sprintf(" Consider the %s timeframe for longer periods.", DisplayKey(limit.SuggestedTimeframe))
	}
	return msg
}

// DefaultVisibleRange returns the window a chart frames initially: the last
// DefaultVisibleDays(tf) days up to end
func DefaultVisibleRange(end time.Time, tf string) (time.Time, time.Time) {
	return end.AddDate(0, 0, -DefaultVisibleDays(tf)), end
}
