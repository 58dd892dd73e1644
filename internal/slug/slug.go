// Package slug derives URL slugs for events and resolves collisions.
package slug

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
)

const (
	maxLength     = 72
	maxSuffix     = 5000
	fallbackWidth = 1000000
)

var (
	disallowed = regexp.MustCompile(`[^a-z0-9\s-]`)
	whitespace = regexp.MustCompile(`\s+`)
	dashes     = regexp.MustCompile(`-+`)
)

// Slugify lowercases title, drops anything that is not alphanumeric,
// whitespace or a dash, and joins words with single dashes.
func Slugify(title string) string {
	s := strings.ToLower(strings.TrimSpace(title))
	s = disallowed.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, "-")
	s = dashes.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	if s == "" {
		s = "event"
	}
	return s
}

// Lookup reports whether a slug is already taken.
type Lookup interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

type Resolver struct {
	lookup Lookup
	now    func() time.Time
}

func NewResolver(lookup Lookup) *Resolver {
	return &Resolver{lookup: lookup, now: time.Now}
}

// Resolve returns base if free, otherwise base-2, base-3 and so on. Past
// the suffix cap it appends the last six digits of the current unix
// millisecond clock until a free slug is found.
func (r *Resolver) Resolve(ctx context.Context, base string) (string, error) {
	base = strings.ToLower(base)

	taken, err := r.lookup.SlugExists(ctx, base)
	if err != nil {
		return "", err
	}
	if !taken {
		return base, nil
	}

	for n := 2; n < maxSuffix; n++ {
		candidate := fmt.Sprintf("%s-%d", base, n)
		taken, err := r.lookup.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		candidate := fmt.Sprintf("%s-%06d", base, r.now().UnixMilli()%fallbackWidth)
		taken, err := r.lookup.SlugExists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
}

type setLookup map[string]struct{}

func (s setLookup) SlugExists(_ context.Context, slug string) (bool, error) {
	_, ok := s[strings.ToLower(slug)]
	return ok, nil
}

// ResolveUnique resolves base against an in-memory set of existing slugs.
// Comparison ignores case, so a legacy "Jazz-Night" blocks "jazz-night".
func ResolveUnique(base string, existing []string) string {
	set := make(setLookup, len(existing))
	for _, s := range existing {
		set[strings.ToLower(s)] = struct{}{}
	}
	out, _ := NewResolver(set).Resolve(context.Background(), base)
	return out
}
