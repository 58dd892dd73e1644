package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/models"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestEventRepo_UpdateStatus_Applied(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec(`UPDATE "events" SET .*"status"=.* WHERE \(id = \$\d+ AND status = \$\d+\) AND "events"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateStatus(context.Background(), uuid.New(), models.StatusPending, models.StatusPublished)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_UpdateStatus_Conflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec(`UPDATE "events" SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.UpdateStatus(context.Background(), uuid.New(), models.StatusPending, models.StatusPublished)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventRepo_UpdateDetails_GuardsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	event := &models.Event{ID: uuid.New(), Title: "Dhaka Jazz Night", Status: models.StatusPending}

	mock.ExpectExec(`UPDATE "events" SET .*"title"=.* WHERE \(id = \$\d+ AND status = \$\d+\) AND "events"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ok, err := repo.UpdateDetails(context.Background(), event, models.StatusDraft)

	require.NoError(t, err)
	assert.True(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_SoftDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	id := uuid.New()

	mock.ExpectExec(`UPDATE "events" SET "deleted_at"=\$1 WHERE \(id = \$2 AND status = \$3\) AND "events"."deleted_at" IS NULL`).
		WithArgs(sqlmock.AnyArg(), id.String(), "draft").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SoftDelete(context.Background(), id, models.StatusDraft)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_SetVerified_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectExec(`UPDATE "events" SET .*"verified"=`).WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.SetVerified(context.Background(), uuid.New(), true)

	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEventRepo_SlugsWithPrefix(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`SELECT "slug" FROM "events" WHERE lower\(slug\) = \$1 OR lower\(slug\) LIKE \$2`).
		WithArgs("dhaka-jazz-night", "dhaka-jazz-night-%").
		WillReturnRows(sqlmock.NewRows([]string{"slug"}).
			AddRow("Dhaka-Jazz-Night").
			AddRow("dhaka-jazz-night-2"))

	slugs, err := repo.SlugsWithPrefix(context.Background(), "Dhaka-Jazz-Night")

	require.NoError(t, err)
	assert.Equal(t, []string{"Dhaka-Jazz-Night", "dhaka-jazz-night-2"}, slugs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEventRepo_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)

	mock.ExpectQuery(`SELECT \* FROM "events" WHERE id = \$1 AND "events"."deleted_at" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.FindByID(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestEventRepo_Search_AppliesPublicScopeAndFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEventRepository(db)
	now := time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC)
	id := uuid.New()

	f := filter.FilterSet{
		Categories:   []string{"music", "theatre"},
		VerifiedOnly: true,
		Search:       "jazz",
		Page:         2,
		Limit:        10,
	}

	mock.ExpectQuery(`SELECT count\(\*\) FROM "events" WHERE .*events.status = .*events.end_date >= .*events.category IN .*events.verified = .*ILIKE`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))
	mock.ExpectQuery(`SELECT \* FROM "events" WHERE .*ORDER BY events.start_date ASC,events.id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "slug", "title", "status"}).
			AddRow(id, "dhaka-jazz-night", "Dhaka Jazz Night", "published"))

	events, total, err := repo.Search(context.Background(), f, SearchOptions{
		Now:    now,
		Loc:    time.UTC,
		Order:  OrderSoonest,
		Offset: f.Offset(),
		Limit:  f.Limit,
	})

	require.NoError(t, err)
	assert.Equal(t, int64(11), total)
	require.Len(t, events, 1)
	assert.Equal(t, id, events[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepo_ClaimLead(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	mock.ExpectExec(`UPDATE "reminders" SET "status_24h"=\$1,"updated_at"=\$2 WHERE id = \$3 AND "status_24h" = \$4 AND "reminders"."deleted_at" IS NULL`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE "reminders" SET "status_3h"=`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.ClaimLead(context.Background(), uuid.New(), models.Lead24h)
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.ClaimLead(context.Background(), uuid.New(), models.Lead3h)
	require.NoError(t, err)
	assert.False(t, won)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepo_MarkFailed(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)

	mock.ExpectExec(`UPDATE "reminders" SET "status_3h"=\$1`).
		WithArgs(string(models.ReminderFailed), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.MarkFailed(context.Background(), uuid.New(), models.Lead3h))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReminderRepo_ListActive(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReminderRepository(db)
	id, userID, eventID := uuid.New(), uuid.New(), uuid.New()
	start := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`(?s)SELECT reminders\.\*.*AS user_email FROM .?reminders.? JOIN events ON .*JOIN users ON .*WHERE reminders.deleted_at IS NULL ORDER BY reminders.id ASC LIMIT`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "user_id", "event_id", "reminder_24h", "reminder_3h", "sent_24h", "sent_3h",
			"status_24h", "status_3h", "status", "timezone",
			"event_title", "event_slug", "event_status", "event_start_date", "event_start_time", "event_venue", "user_email",
		}).AddRow(
			id, userID, eventID, true, false, false, false,
			"pending", "pending", "pending", "Asia/Dhaka",
			"Dhaka Jazz Night", "dhaka-jazz-night", "published", start, "19:30", "Alliance Francaise", "user@example.com",
		))

	rows, err := repo.ListActive(context.Background(), 0, 200)

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, id, rows[0].ID)
	assert.True(t, rows[0].Reminder24h)
	assert.Equal(t, models.ReminderPending, rows[0].Status24h)
	assert.Equal(t, models.StatusPublished, rows[0].EventStatus)
	assert.Equal(t, "19:30", rows[0].EventStartTime)
	assert.Equal(t, "user@example.com", rows[0].UserEmail)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReportRepo_Resolve(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReportRepository(db)

	mock.ExpectExec(`UPDATE "event_reports" SET .*"reviewed_at"=.*"reviewed_by"=.*"status"=.* WHERE id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ok, err := repo.Resolve(context.Background(), uuid.New(), models.ReportOpen, models.ReportResolved, uuid.New(), time.Now())

	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClickRepo_CountClicksSince(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewClickRepository(db)
	a, b := uuid.New(), uuid.New()

	mock.ExpectQuery(`SELECT event_id, COUNT\(\*\) AS count FROM "event_clicks" WHERE event_id IN \(\$1,\$2\) AND created_at >= \$3 GROUP BY`).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "count"}).AddRow(a.String(), 7))

	counts, err := repo.CountClicksSince(context.Background(), []uuid.UUID{a, b}, time.Now().Add(-14*24*time.Hour))

	require.NoError(t, err)
	assert.Equal(t, 7, counts[a])
	assert.Equal(t, 0, counts[b])
}

func TestSaveRepo_CountActiveSavesExcludesDeleted(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSaveRepository(db, NewReminderRepository(db))
	a := uuid.New()

	mock.ExpectQuery(`SELECT event_id, COUNT\(\*\) AS count FROM "saved_events" WHERE event_id IN \(\$1\) AND "saved_events"."deleted_at" IS NULL GROUP BY`).
		WillReturnRows(sqlmock.NewRows([]string{"event_id", "count"}).AddRow(a.String(), 3))

	counts, err := repo.CountActiveSaves(context.Background(), []uuid.UUID{a})

	require.NoError(t, err)
	assert.Equal(t, 3, counts[a])
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% off\_now`, escapeLike("50% off_now"))
}
