// Package dedup flags organizer submissions that likely duplicate an
// already published event.
package dedup

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Titles above this similarity on the same day and venue are duplicates.
const SimilarityThreshold = 0.8

// CandidateWindow is how far either side of the submitted start date the
// caller should look for existing events.
const CandidateWindow = 30 * 24 * time.Hour

type Candidate struct {
	ID        uuid.UUID
	Slug      string
	Title     string
	StartDate time.Time
	VenueName string
}

type Result struct {
	IsDuplicate bool
	Similarity  float64
	Matched     *Candidate
}

type Detector struct {
	loc *time.Location
}

// NewDetector compares calendar dates in loc.
func NewDetector(loc *time.Location) *Detector {
	if loc == nil {
		loc = time.UTC
	}
	return &Detector{loc: loc}
}

// Check looks for an exact title/date/venue match first and falls back to
// fuzzy title matching among candidates on the same date and venue.
func (d *Detector) Check(title string, startDate time.Time, venueName string, pool []Candidate) Result {
	title = strings.ToLower(title)
	venue := strings.ToLower(venueName)
	day := d.dayKey(startDate)

	for i := range pool {
		c := &pool[i]
		if strings.ToLower(c.Title) == title && d.dayKey(c.StartDate) == day && strings.ToLower(c.VenueName) == venue {
			return Result{IsDuplicate: true, Similarity: 1.0, Matched: c}
		}
	}

	for i := range pool {
		c := &pool[i]
		if d.dayKey(c.StartDate) != day || strings.ToLower(c.VenueName) != venue {
			continue
		}
		if sim := Similarity(strings.ToLower(c.Title), title); sim > SimilarityThreshold {
			return Result{IsDuplicate: true, Similarity: sim, Matched: c}
		}
	}

	return Result{}
}

func (d *Detector) dayKey(t time.Time) string {
	return t.In(d.loc).Format("2006-01-02")
}

// Similarity is the normalized Levenshtein similarity of a and b:
// (longer - distance) / longer, or 1 when both are empty.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	longer := len(ra)
	if len(rb) > longer {
		longer = len(rb)
	}
	if longer == 0 {
		return 1.0
	}
	return float64(longer-Levenshtein(ra, rb)) / float64(longer)
}

func Levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1]
				continue
			}
			curr[j] = 1 + min(prev[j-1], prev[j], curr[j-1])
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
