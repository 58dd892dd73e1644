package lifecycle

import (
	"testing"

	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestValidateTransition_SelfIsAlwaysValid(t *testing.T) {
	for _, s := range models.EventStatuses {
		for _, actor := range []Actor{ActorAdmin, ActorOrganizer} {
			res := ValidateTransition(s, s, actor)
			assert.True(t, res.Valid, "%s -> %s as %s", s, s, actor)
			assert.Empty(t, res.Message)
		}
	}
}

func TestValidateTransition_OrganizerOnlySubmitsDrafts(t *testing.T) {
	for _, from := range models.EventStatuses {
		for _, to := range models.EventStatuses {
			want := from == to || (from == models.StatusDraft && to == models.StatusPending)
			res := ValidateTransition(from, to, ActorOrganizer)
			assert.Equal(t, want, res.Valid, "%s -> %s", from, to)
		}
	}
}

func TestValidateTransition_Admin(t *testing.T) {
	tests := []struct {
		from, to models.EventStatus
		valid    bool
	}{
		{models.StatusDraft, models.StatusPending, true},
		{models.StatusDraft, models.StatusArchived, true},
		{models.StatusDraft, models.StatusPublished, false},
		{models.StatusPending, models.StatusPublished, true},
		{models.StatusPending, models.StatusArchived, true},
		{models.StatusPending, models.StatusDraft, false},
		{models.StatusPublished, models.StatusExpired, true},
		{models.StatusPublished, models.StatusArchived, true},
		{models.StatusPublished, models.StatusDraft, false},
		{models.StatusExpired, models.StatusArchived, true},
		{models.StatusExpired, models.StatusPublished, false},
		{models.StatusArchived, models.StatusDraft, false},
		{models.StatusArchived, models.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			res := ValidateTransition(tt.from, tt.to, ActorAdmin)
			assert.Equal(t, tt.valid, res.Valid)
			if !tt.valid {
				assert.Contains(t, res.Message, string(tt.from)+" -> "+string(tt.to))
				assert.Contains(t, res.Message, "admin")
			}
		})
	}
}

func TestValidateTransition_UnknownStatus(t *testing.T) {
	res := ValidateTransition(models.StatusDraft, "live", ActorAdmin)
	assert.False(t, res.Valid)
	assert.Contains(t, res.Message, "live")
}

func TestValidateTransition_UnknownActor(t *testing.T) {
	res := ValidateTransition(models.StatusDraft, models.StatusPending, Actor("user"))
	assert.False(t, res.Valid)
}

func TestAllowedTargets(t *testing.T) {
	assert.Equal(t, []models.EventStatus{models.StatusPending}, AllowedTargets(models.StatusDraft, ActorOrganizer))
	assert.Empty(t, AllowedTargets(models.StatusPublished, ActorOrganizer))
	assert.Empty(t, AllowedTargets(models.StatusArchived, ActorAdmin))
}

// Organizer submits, admin publishes, organizer cannot pull it back, admin
// expires and finally archives.
func TestLifecycleScenario(t *testing.T) {
	status := models.StatusPending

	res := ValidateTransition(status, models.StatusPublished, ActorAdmin)
	assert.True(t, res.Valid)
	status = models.StatusPublished

	res = ValidateTransition(status, models.StatusDraft, ActorOrganizer)
	assert.False(t, res.Valid)
	assert.Equal(t, "invalid transition published -> draft for organizer", res.Message)

	res = ValidateTransition(status, models.StatusExpired, ActorAdmin)
	assert.True(t, res.Valid)
	status = models.StatusExpired

	res = ValidateTransition(status, models.StatusArchived, ActorAdmin)
	assert.True(t, res.Valid)
	status = models.StatusArchived

	for _, to := range models.EventStatuses {
		if to == status {
			continue
		}
		assert.False(t, ValidateTransition(status, to, ActorAdmin).Valid)
	}
}
