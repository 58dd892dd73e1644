package lifecycle

import (
	"errors"

	"github.com/eventsdhaka/discovery/internal/models"
)

// ErrUnknownReportStatus is returned for a requested status outside open,
// reviewed and resolved.
var ErrUnknownReportStatus = errors.New("unknown report status")

var reportTransitions = map[models.ReportStatus][]models.ReportStatus{
	models.ReportOpen:     {models.ReportReviewed, models.ReportResolved},
	models.ReportReviewed: {models.ReportResolved},
	models.ReportResolved: {},
}

// CanTransitionReport reports whether a report may move from one status to
// another. Reports only move forward; staying put is allowed.
func CanTransitionReport(from, to models.ReportStatus) bool {
	if _, ok := reportTransitions[from]; !ok {
		return false
	}
	if _, ok := reportTransitions[to]; !ok {
		return false
	}
	if from == to {
		return true
	}
	for _, next := range reportTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NormalizeReportStatus maps a requested status to a report status. An absent
// value means "resolve"; any other unrecognized value is rejected rather than
// silently escalated to the terminal state.
func NormalizeReportStatus(input string) (models.ReportStatus, error) {
	switch models.ReportStatus(input) {
	case "":
		return models.ReportResolved, nil
	case models.ReportOpen, models.ReportReviewed, models.ReportResolved:
		return models.ReportStatus(input), nil
	}
	return "", ErrUnknownReportStatus
}
