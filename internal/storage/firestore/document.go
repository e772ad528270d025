package firestore

import (
	"sort"
	"time"

	"github.com/julianstephens/habitual/internal/models"
)

// habitDoc is the stored shape of a habit document. Older documents only carry
// completedDates; newer ones also carry completions with per-day metadata.
type habitDoc struct {
	Name           string          `firestore:"name"`
	Type           string          `firestore:"type,omitempty"`
	CreatedAt      time.Time       `firestore:"createdAt"`
	CompletedDates []string        `firestore:"completedDates"`
	Completions    []completionDoc `firestore:"completions"`
	Metadata       *habitMetadata  `firestore:"metadata,omitempty"`
}

type habitMetadata struct {
	Goal *goalDoc `firestore:"goal,omitempty"`
}

type goalDoc struct {
	Target    int    `firestore:"target"`
	Period    string `firestore:"period"`
	Frequency int    `firestore:"frequency,omitempty"`
}

type completionDoc struct {
	Date      string              `firestore:"date"`
	Metadata  *completionMetadata `firestore:"metadata,omitempty"`
	CreatedAt time.Time           `firestore:"createdAt,omitempty"`
}

type completionMetadata struct {
	Count     *int   `firestore:"count,omitempty"`
	WordCount *int   `firestore:"wordCount,omitempty"`
	Notes     string `firestore:"notes,omitempty"`
}

func toHabit(id string, d habitDoc) models.Habit {
	h := models.Habit{
		ID:          id,
		Name:        d.Name,
		Type:        models.HabitType(d.Type),
		CreatedAt:   d.CreatedAt,
		Completions: []models.CompletionRecord{},
	}

	if d.Metadata != nil && d.Metadata.Goal != nil {
		g := models.Goal{Target: d.Metadata.Goal.Target, Period: models.Period(d.Metadata.Goal.Period)}
		// documents written with an empty goal field store target 0
		if g.Valid() {
			h.Goal = &g
		}
	}

	seen := make(map[string]struct{})
	if len(d.Completions) > 0 {
		for _, c := range d.Completions {
			if _, dup := seen[c.Date]; dup {
				continue
			}
			seen[c.Date] = struct{}{}
			h.Completions = append(h.Completions, toRecord(c))
		}
	} else {
		for _, day := range d.CompletedDates {
			if _, dup := seen[day]; dup {
				continue
			}
			seen[day] = struct{}{}
			h.Completions = append(h.Completions, models.CompletionRecord{Date: day, Amount: models.NoAmount()})
		}
	}

	if h.Type == "" {
		h.Type = inferType(h.Completions)
	}
	return h
}

func inferType(recs []models.CompletionRecord) models.HabitType {
	for _, r := range recs {
		if r.Amount.Kind != models.AmountNone {
			return models.HabitCounter
		}
	}
	return models.HabitBoolean
}

func toRecord(c completionDoc) models.CompletionRecord {
	rec := models.CompletionRecord{Date: c.Date, Amount: models.NoAmount(), CreatedAt: c.CreatedAt}
	if c.Metadata == nil {
		return rec
	}
	rec.Note = c.Metadata.Notes
	switch {
	case c.Metadata.WordCount != nil:
		rec.Amount = models.WordCount(*c.Metadata.WordCount)
	case c.Metadata.Count != nil:
		rec.Amount = models.Count(*c.Metadata.Count)
	}
	return rec
}

func fromRecord(r models.CompletionRecord) completionDoc {
	c := completionDoc{Date: r.Date, CreatedAt: r.CreatedAt}
	var md completionMetadata
	switch r.Amount.Kind {
	case models.AmountCount:
		v := r.Amount.Value
		md.Count = &v
	case models.AmountWordCount:
		v := r.Amount.Value
		md.WordCount = &v
	}
	md.Notes = r.Note
	if md.Count != nil || md.WordCount != nil || md.Notes != "" {
		c.Metadata = &md
	}
	return c
}

func fromGoal(g *models.Goal) *goalDoc {
	if g == nil {
		return nil
	}
	return &goalDoc{Target: g.Target, Period: string(g.Period), Frequency: 1}
}

// completionFields renders records as both the completions array and the
// legacy completedDates list so older readers keep working.
func completionFields(recs []models.CompletionRecord) ([]completionDoc, []string) {
	docs := make([]completionDoc, 0, len(recs))
	dates := make([]string, 0, len(recs))
	for _, r := range recs {
		docs = append(docs, fromRecord(r))
		dates = append(dates, r.Date)
	}
	return docs, dates
}

func fromHabit(h models.Habit) habitDoc {
	docs, dates := completionFields(h.Completions)
	d := habitDoc{
		Name:           h.Name,
		Type:           string(h.Type),
		CreatedAt:      h.CreatedAt,
		CompletedDates: dates,
		Completions:    docs,
	}
	if g := fromGoal(h.Goal); g != nil {
		d.Metadata = &habitMetadata{Goal: g}
	}
	return d
}

func sortHabits(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if !habits[i].CreatedAt.Equal(habits[j].CreatedAt) {
			return habits[i].CreatedAt.Before(habits[j].CreatedAt)
		}
		return habits[i].Name < habits[j].Name
	})
}
