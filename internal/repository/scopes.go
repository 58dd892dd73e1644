package repository

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/models"
)

// PublicScope restricts events to what anonymous visitors may see:
// not deleted, published and not yet ended.
func PublicScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("events.deleted_at IS NULL AND events.status = ? AND events.end_date >= ?", models.StatusPublished, now)
	}
}

// FilterScope applies a normalized browse filter. Calendar dates are
// interpreted in loc.
func FilterScope(f filter.FilterSet, now time.Time, loc *time.Location) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if len(f.Categories) > 0 {
			db = db.Where("events.category IN ?", f.Categories)
		}
		if len(f.Areas) > 0 {
			db = db.Where("events.area IN ?", f.Areas)
		}
		if f.Subcategory != "" {
			db = db.Where("events.subcategory = ?", f.Subcategory)
		}
		if from, ok := dayStart(f.DateFrom, loc); ok {
			db = db.Where("events.start_date >= ?", from)
		}
		if to, ok := dayStart(f.DateTo, loc); ok {
			db = db.Where("events.end_date < ?", to.AddDate(0, 0, 1))
		}
		if f.PriceType != "" {
			db = db.Where("events.price_type = ?", f.PriceType)
		}
		if from, to := f.TimeSlot.Bounds(); from != "" {
			if from < to {
				db = db.Where("events.start_time >= ? AND events.start_time < ?", from, to)
			} else {
				db = db.Where("(events.start_time >= ? OR events.start_time < ?)", from, to)
			}
		}
		if f.ThisWeekend {
			sat, sun := filter.WeekendWindow(now.In(loc))
			db = db.Where("events.start_date >= ? AND events.end_date <= ?", sat, sun)
		}
		if f.VerifiedOnly {
			db = db.Where("events.verified = ?", true)
		}
		if f.Search != "" {
			pattern := "%" + escapeLike(f.Search) + "%"
			db = db.Where("(events.title ILIKE ? OR events.venue_name ILIKE ?)", pattern, pattern)
		}
		return db
	}
}

func dayStart(v string, loc *time.Location) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation("2006-01-02", v, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
