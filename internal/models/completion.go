package models

import (
	"time"
)

type AmountKind string

const (
	AmountNone      AmountKind = "none"
	AmountCount     AmountKind = "count"
	AmountWordCount AmountKind = "word_count"
)

// Amount is the value logged for a day: Count(n), WordCount(n) or None.
type Amount struct {
	Kind  AmountKind `json:"kind"`
	Value int        `json:"value,omitempty"`
}

func Count(n int) Amount     { return Amount{Kind: AmountCount, Value: n} }
func WordCount(n int) Amount { return Amount{Kind: AmountWordCount, Value: n} }
func NoAmount() Amount       { return Amount{Kind: AmountNone} }

// Units returns the amount contributed to counter totals. Negative values count as zero.
func (a Amount) Units() int {
	switch a.Kind {
	case AmountCount, AmountWordCount:
		if a.Value < 0 {
			return 0
		}
		return a.Value
	default:
		return 0
	}
}

// AmountFor selects the amount variant from the habit type. Boolean habits never carry an amount.
func AmountFor(t HabitType, n int, words bool) Amount {
	if t != HabitCounter {
		return NoAmount()
	}
	if words {
		return WordCount(n)
	}
	return Count(n)
}

// CompletionRecord is one day's logged activity on a habit
type CompletionRecord struct {
	Date      string    `json:"date"` // YYYY-MM-DD format
	Amount    Amount    `json:"amount"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// ToggleCompletion removes the record for rec.Date when present, otherwise appends rec.
// The input slice is not modified. It never produces two records for the same date.
func ToggleCompletion(records []CompletionRecord, rec CompletionRecord) ([]CompletionRecord, bool) {
	out := make([]CompletionRecord, 0, len(records)+1)
	removed := false
	for _, r := range records {
		if r.Date == rec.Date {
			removed = true
			continue
		}
		out = append(out, r)
	}
	if removed {
		return out, false
	}
	return append(out, rec), true
}
