// Package lifecycle holds the event and report state machines.
package lifecycle

import (
	"fmt"

	"github.com/eventsdhaka/discovery/internal/models"
)

type Actor string

const (
	ActorAdmin     Actor = "admin"
	ActorOrganizer Actor = "organizer"
)

// Result is the outcome of a transition check. Message is set only when the
// transition is rejected.
type Result struct {
	Valid   bool
	Message string
}

var adminTransitions = map[models.EventStatus][]models.EventStatus{
	models.StatusDraft:     {models.StatusPending, models.StatusArchived},
	models.StatusPending:   {models.StatusPublished, models.StatusArchived},
	models.StatusPublished: {models.StatusExpired, models.StatusArchived},
	models.StatusExpired:   {models.StatusArchived},
	models.StatusArchived:  {},
}

// Organizers may only submit their drafts for review.
var organizerTransitions = map[models.EventStatus][]models.EventStatus{
	models.StatusDraft: {models.StatusPending},
}

// ValidateTransition reports whether actor may move an event from one status
// to another. Staying in the same status is always allowed.
func ValidateTransition(from, to models.EventStatus, actor Actor) Result {
	if !from.Valid() {
		return Result{Message: fmt.Sprintf("unknown current status %q", from)}
	}
	if !to.Valid() {
		return Result{Message: fmt.Sprintf("unknown requested status %q", to)}
	}
	if from == to {
		return Result{Valid: true}
	}

	var table map[models.EventStatus][]models.EventStatus
	switch actor {
	case ActorAdmin:
		table = adminTransitions
	case ActorOrganizer:
		table = organizerTransitions
	default:
		return Result{Message: fmt.Sprintf("invalid transition %s -> %s: unknown actor %q", from, to, actor)}
	}

	for _, next := range table[from] {
		if next == to {
			return Result{Valid: true}
		}
	}
	return Result{Message: fmt.Sprintf("invalid transition %s -> %s for %s", from, to, actor)}
}

// AllowedTargets lists the statuses actor can move an event to from the given status.
func AllowedTargets(from models.EventStatus, actor Actor) []models.EventStatus {
	var table map[models.EventStatus][]models.EventStatus
	switch actor {
	case ActorAdmin:
		table = adminTransitions
	case ActorOrganizer:
		table = organizerTransitions
	}
	out := make([]models.EventStatus, len(table[from]))
	copy(out, table[from])
	return out
}
