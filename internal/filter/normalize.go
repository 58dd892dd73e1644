// Package filter turns raw browse query parameters into a canonical filter set.
package filter

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100

	searchMaxLength = 80
	dateLayout      = "2006-01-02"
)

type Sort string

const (
	SortSoonest  Sort = "soonest"
	SortTrending Sort = "trending"
	SortRecent   Sort = "recent"
)

type TimeSlot string

const (
	SlotMorning   TimeSlot = "morning"
	SlotAfternoon TimeSlot = "afternoon"
	SlotEvening   TimeSlot = "evening"
	SlotNight     TimeSlot = "night"
)

// Bounds returns the [from, to) start-time range of the slot as "HH:MM".
// Night wraps past midnight, so from > to.
func (s TimeSlot) Bounds() (from, to string) {
	switch s {
	case SlotMorning:
		return "05:00", "12:00"
	case SlotAfternoon:
		return "12:00", "17:00"
	case SlotEvening:
		return "17:00", "21:00"
	case SlotNight:
		return "21:00", "05:00"
	}
	return "", ""
}

// FilterSet is the normalized browse query. Empty fields mean "no filter".
// Sort is left empty when unset; the query layer picks the default.
type FilterSet struct {
	Categories   []string
	Areas        []string
	Subcategory  string
	DateFrom     string
	DateTo       string
	PriceType    string
	TimeSlot     TimeSlot
	ThisWeekend  bool
	VerifiedOnly bool
	Search       string
	Sort         Sort
	Page         int
	Limit        int
}

func (f FilterSet) Offset() int {
	return (f.Page - 1) * f.Limit
}

// Normalize parses raw query parameters. It never fails: anything invalid
// is dropped or replaced by its default.
func Normalize(q url.Values, now time.Time) FilterSet {
	f := FilterSet{
		Categories:   multi(q, "categories", "category"),
		Areas:        multi(q, "areas", "area"),
		Subcategory:  strings.TrimSpace(q.Get("subcategory")),
		DateFrom:     date(q.Get("date_from")),
		DateTo:       date(q.Get("date_to")),
		VerifiedOnly: q.Get("verified_only") == "true",
		ThisWeekend:  q.Get("this_weekend") == "true",
		Search:       SanitizeQuery(q.Get("search"), searchMaxLength),
		Page:         positive(q.Get("page"), DefaultPage),
		Limit:        positive(q.Get("limit"), DefaultLimit),
	}
	// Oversized limits are treated as garbage, not clamped.
	if f.Limit > MaxLimit {
		f.Limit = DefaultLimit
	}

	switch strings.ToLower(q.Get("date_preset")) {
	case "today":
		today := now.Format(dateLayout)
		f.DateFrom, f.DateTo = today, today
	case "weekend":
		f.ThisWeekend = true
	}

	switch p := q.Get("price_type"); p {
	case "free", "paid":
		f.PriceType = p
	}

	switch s := TimeSlot(q.Get("time_slot")); s {
	case SlotMorning, SlotAfternoon, SlotEvening, SlotNight:
		f.TimeSlot = s
	}

	switch s := Sort(q.Get("sort")); s {
	case SortSoonest, SortTrending, SortRecent:
		f.Sort = s
	}

	return f
}

// WeekendWindow returns the upcoming Saturday 00:00 through Sunday
// 23:59:59.999 in now's location. On a Saturday it is the current weekend;
// on a Sunday it is already the next one.
func WeekendWindow(now time.Time) (time.Time, time.Time) {
	daysUntilSaturday := 6 - int(now.Weekday())
	y, m, d := now.Date()
	saturday := time.Date(y, m, d+daysUntilSaturday, 0, 0, 0, 0, now.Location())
	sunday := time.Date(y, m, d+daysUntilSaturday+1, 23, 59, 59, int(999*time.Millisecond), now.Location())
	return saturday, sunday
}

func multi(q url.Values, plural, singular string) []string {
	var out []string
	for _, item := range strings.Split(q.Get(plural), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) > 0 {
		return out
	}
	if v := strings.TrimSpace(q.Get(singular)); v != "" {
		return []string{v}
	}
	return nil
}

func date(v string) string {
	if _, err := time.Parse(dateLayout, v); err != nil {
		return ""
	}
	return v
}

func positive(v string, fallback int) int {
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

var (
	controlChars = regexp.MustCompile(`[\x00-\x1F\x7F]`)
	angles       = regexp.MustCompile(`[<>]`)
	spaces       = regexp.MustCompile(`\s+`)
	queryUnsafe  = regexp.MustCompile(`[^\w\s\-&,.:/]`)
)

// SanitizeText strips control characters and angle brackets, collapses
// whitespace and caps the result at maxLength runes.
func SanitizeText(input string, maxLength int) string {
	s := controlChars.ReplaceAllString(input, " ")
	s = angles.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaces.ReplaceAllString(s, " "))
	if r := []rune(s); len(r) > maxLength {
		s = string(r[:maxLength])
	}
	return s
}

// SanitizeQuery is SanitizeText restricted to characters that are safe inside
// a search pattern.
func SanitizeQuery(input string, maxLength int) string {
	return queryUnsafe.ReplaceAllString(SanitizeText(input, maxLength), "")
}
