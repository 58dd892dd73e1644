package trending

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCounter struct {
	ClickFn func(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
	SaveFn  func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

func (m *mockCounter) CountClicksSince(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	return m.ClickFn(ctx, ids, since)
}

func (m *mockCounter) CountActiveSaves(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	return m.SaveFn(ctx, ids)
}

func TestScoreEvents(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

	var gotSince time.Time
	counter := &mockCounter{
		ClickFn: func(_ context.Context, _ []uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
			gotSince = since
			return map[uuid.UUID]int{a: 5, b: 1}, nil
		},
		SaveFn: func(context.Context, []uuid.UUID) (map[uuid.UUID]int, error) {
			return map[uuid.UUID]int{b: 2}, nil
		},
	}
	s := NewScorer(counter)
	s.now = func() time.Time { return now }

	scores, err := s.ScoreEvents(context.Background(), []uuid.UUID{a, b, c})

	require.NoError(t, err)
	assert.Equal(t, 5, scores[a])
	assert.Equal(t, 9, scores[b])
	assert.Equal(t, 0, scores[c])
	assert.Contains(t, scores, c)
	assert.Equal(t, now.Add(-14*24*time.Hour), gotSince)
}

func TestScoreEvents_Empty(t *testing.T) {
	s := NewScorer(&mockCounter{})
	scores, err := s.ScoreEvents(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, scores)
}

func TestScoreEvents_CounterError(t *testing.T) {
	counter := &mockCounter{
		ClickFn: func(context.Context, []uuid.UUID, time.Time) (map[uuid.UUID]int, error) {
			return nil, errors.New("db down")
		},
	}
	_, err := NewScorer(counter).ScoreEvents(context.Background(), []uuid.UUID{uuid.New()})
	assert.Error(t, err)
}

func TestRank_StableOnTies(t *testing.T) {
	a, b, c, d := uuid.New(), uuid.New(), uuid.New(), uuid.New()
	items := []uuid.UUID{a, b, c, d}

	Rank(items, func(id uuid.UUID) uuid.UUID { return id }, map[uuid.UUID]int{b: 4, c: 9, d: 4})

	assert.Equal(t, []uuid.UUID{c, b, d, a}, items)
}
