package lifecycle

import (
	"testing"

	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCanTransitionReport(t *testing.T) {
	tests := []struct {
		name     string
		from, to models.ReportStatus
		want     bool
	}{
		{"open to reviewed", models.ReportOpen, models.ReportReviewed, true},
		{"open to resolved", models.ReportOpen, models.ReportResolved, true},
		{"reviewed to resolved", models.ReportReviewed, models.ReportResolved, true},
		{"reviewed to open", models.ReportReviewed, models.ReportOpen, false},
		{"resolved to reviewed", models.ReportResolved, models.ReportReviewed, false},
		{"resolved to open", models.ReportResolved, models.ReportOpen, false},
		{"resolved stays", models.ReportResolved, models.ReportResolved, true},
		{"open stays", models.ReportOpen, models.ReportOpen, true},
		{"unknown target", models.ReportOpen, "closed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransitionReport(tt.from, tt.to))
		})
	}
}

func TestNormalizeReportStatus(t *testing.T) {
	s, err := NormalizeReportStatus("")
	assert.NoError(t, err)
	assert.Equal(t, models.ReportResolved, s)

	s, err = NormalizeReportStatus("reviewed")
	assert.NoError(t, err)
	assert.Equal(t, models.ReportReviewed, s)

	_, err = NormalizeReportStatus("dismissed")
	assert.ErrorIs(t, err, ErrUnknownReportStatus)
}
