package slug

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Dhaka Jazz Night", "dhaka-jazz-night"},
		{"  Rock & Roll: Live!  ", "rock-roll-live"},
		{"Food -- Fest", "food-fest"},
		{"!!!", "event"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Slugify(tt.in), tt.in)
	}
}

func TestSlugify_CapsLength(t *testing.T) {
	long := ""
	for i := 0; i < 20; i++ {
		long += "words "
	}
	got := Slugify(long)
	assert.LessOrEqual(t, len(got), maxLength)
	assert.NotEqual(t, '-', rune(got[len(got)-1]))
}

func TestResolveUnique(t *testing.T) {
	assert.Equal(t, "dhaka-jazz-night", ResolveUnique("dhaka-jazz-night", nil))
	assert.Equal(t, "dhaka-jazz-night-2", ResolveUnique("dhaka-jazz-night", []string{"dhaka-jazz-night"}))
	assert.Equal(t, "dhaka-jazz-night-3",
		ResolveUnique("dhaka-jazz-night", []string{"dhaka-jazz-night", "dhaka-jazz-night-2"}))
}

func TestResolveUnique_Lowercases(t *testing.T) {
	assert.Equal(t, "mixed-2", ResolveUnique("MIXED", []string{"mixed"}))
}

func TestResolveUnique_ExistingSlugsIgnoreCase(t *testing.T) {
	assert.Equal(t, "jazz-night-2", ResolveUnique("jazz-night", []string{"Jazz-Night"}))
	assert.Equal(t, "jazz-night-3",
		ResolveUnique("Jazz-Night", []string{"JAZZ-NIGHT", "Jazz-Night-2"}))
}

func TestResolve_FallsBackToClockSuffix(t *testing.T) {
	set := setLookup{"busy": {}}
	for n := 2; n < maxSuffix; n++ {
		set[fmt.Sprintf("busy-%d", n)] = struct{}{}
	}
	r := NewResolver(set)
	r.now = func() time.Time { return time.UnixMilli(1_700_000_123_456) }

	got, err := r.Resolve(context.Background(), "busy")

	require.NoError(t, err)
	assert.Equal(t, "busy-123456", got)
}

type failingLookup struct{}

func (failingLookup) SlugExists(context.Context, string) (bool, error) {
	return false, errors.New("db down")
}

func TestResolve_PropagatesLookupError(t *testing.T) {
	_, err := NewResolver(failingLookup{}).Resolve(context.Background(), "x")
	assert.EqualError(t, err, "db down")
}
