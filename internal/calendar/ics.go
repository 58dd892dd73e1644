// Package calendar renders events as iCalendar files.
package calendar

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/eventsdhaka/discovery/internal/models"
)

const (
	ProductID   = "-//Events Dhaka//EN"
	UIDDomain   = "eventsdhaka.com"
	ContentType = "text/calendar; charset=utf-8"
)

type Export struct {
	Filename string
	Body     []byte
}

// Render builds a single-VEVENT calendar for e. Start times are read in loc;
// host, when set, becomes the event URL.
func Render(e *models.Event, loc *time.Location, host string, now time.Time) Export {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	ev := cal.AddEvent(e.ID.String() + "@" + UIDDomain)
	ev.SetDtStampTime(now.UTC())
	start := e.StartsAt(loc).UTC()
	ev.SetStartAt(start)
	end := e.EndDate.UTC()
	if end.IsZero() || end.Before(start) {
		end = start
	}
	ev.SetEndAt(end)

	title := e.Title
	if strings.TrimSpace(title) == "" {
		title = "Event"
	}
	ev.SetSummary(title)
	if e.Description != "" {
		ev.SetDescription(e.Description)
	}
	if loc := location(e); loc != "" {
		ev.SetLocation(loc)
	}
	if host != "" && e.Slug != "" {
		ev.SetURL("https://" + strings.TrimSuffix(host, "/") + "/events/" + e.Slug)
	}

	return Export{
		Filename: filename(e),
		Body:     []byte(cal.Serialize()),
	}
}

func location(e *models.Event) string {
	switch {
	case e.VenueAddress == "" || e.VenueAddress == e.VenueName:
		return e.VenueName
	case e.VenueName == "":
		return e.VenueAddress
	}
	return e.VenueName + ", " + e.VenueAddress
}

func filename(e *models.Event) string {
	if e.Slug == "" {
		return "event.ics"
	}
	return e.Slug + ".ics"
}
