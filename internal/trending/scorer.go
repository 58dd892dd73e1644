// Package trending ranks events by recent clicks and saves.
package trending

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	ClickWeight = 1
	SaveWeight  = 4
	ClickWindow = 14 * 24 * time.Hour
)

// Counter aggregates popularity signals per event.
type Counter interface {
	CountClicksSince(ctx context.Context, eventIDs []uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
	CountActiveSaves(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error)
}

type Scorer struct {
	counter Counter
	now     func() time.Time
}

func NewScorer(counter Counter) *Scorer {
	return &Scorer{counter: counter, now: time.Now}
}

// ScoreEvents returns clicks in the trailing window plus weighted all-time
// saves for every id. Events without activity score 0.
func (s *Scorer) ScoreEvents(ctx context.Context, eventIDs []uuid.UUID) (map[uuid.UUID]int, error) {
	scores := make(map[uuid.UUID]int, len(eventIDs))
	if len(eventIDs) == 0 {
		return scores, nil
	}

	clicks, err := s.counter.CountClicksSince(ctx, eventIDs, s.now().Add(-ClickWindow))
	if err != nil {
		return nil, err
	}
	saves, err := s.counter.CountActiveSaves(ctx, eventIDs)
	if err != nil {
		return nil, err
	}

	for _, id := range eventIDs {
		scores[id] = clicks[id]*ClickWeight + saves[id]*SaveWeight
	}
	return scores, nil
}

// Rank stable-sorts items by descending score, so ties keep their incoming order.
func Rank[T any](items []T, id func(T) uuid.UUID, scores map[uuid.UUID]int) {
	sort.SliceStable(items, func(i, j int) bool {
		return scores[id(items[i])] > scores[id(items[j])]
	})
}
