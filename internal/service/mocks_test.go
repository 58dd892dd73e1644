package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/repository"
)

// --- Mock EventRepository ---

type mockEventRepo struct {
	createFn              func(ctx context.Context, event *models.Event) error
	findByIDFn            func(ctx context.Context, id uuid.UUID) (*models.Event, error)
	findPublicByIDFn      func(ctx context.Context, id uuid.UUID, now time.Time) (*models.Event, error)
	findPublicBySlugFn    func(ctx context.Context, slug string, now time.Time) (*models.Event, error)
	updateStatusFn        func(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error)
	setVerifiedFn         func(ctx context.Context, id uuid.UUID, verified bool) (bool, error)
	updateDetailsFn       func(ctx context.Context, event *models.Event, from models.EventStatus) (bool, error)
	softDeleteFn          func(ctx context.Context, id uuid.UUID, from models.EventStatus) (bool, error)
	slugsWithPrefixFn     func(ctx context.Context, base string) ([]string, error)
	duplicateCandidatesFn func(ctx context.Context, start time.Time, window time.Duration, now time.Time) ([]models.Event, error)
	searchFn              func(ctx context.Context, f filter.FilterSet, opts repository.SearchOptions) ([]models.Event, int64, error)
	listByOrganizerFn     func(ctx context.Context, organizerID uuid.UUID, offset, limit int) ([]models.Event, int64, error)
	adminListFn           func(ctx context.Context, f repository.AdminFilter, offset, limit int) ([]models.Event, int64, error)
}

func (m *mockEventRepo) Create(ctx context.Context, event *models.Event) error {
	return m.createFn(ctx, event)
}
func (m *mockEventRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Event, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockEventRepo) FindPublicByID(ctx context.Context, id uuid.UUID, now time.Time) (*models.Event, error) {
	return m.findPublicByIDFn(ctx, id, now)
}
func (m *mockEventRepo) FindPublicBySlug(ctx context.Context, slug string, now time.Time) (*models.Event, error) {
	return m.findPublicBySlugFn(ctx, slug, now)
}
func (m *mockEventRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.EventStatus) (bool, error) {
	return m.updateStatusFn(ctx, id, from, to)
}
func (m *mockEventRepo) SetVerified(ctx context.Context, id uuid.UUID, verified bool) (bool, error) {
	return m.setVerifiedFn(ctx, id, verified)
}
func (m *mockEventRepo) UpdateDetails(ctx context.Context, event *models.Event, from models.EventStatus) (bool, error) {
	return m.updateDetailsFn(ctx, event, from)
}
func (m *mockEventRepo) SoftDelete(ctx context.Context, id uuid.UUID, from models.EventStatus) (bool, error) {
	return m.softDeleteFn(ctx, id, from)
}
func (m *mockEventRepo) SlugsWithPrefix(ctx context.Context, base string) ([]string, error) {
	return m.slugsWithPrefixFn(ctx, base)
}
func (m *mockEventRepo) DuplicateCandidates(ctx context.Context, start time.Time, window time.Duration, now time.Time) ([]models.Event, error) {
	return m.duplicateCandidatesFn(ctx, start, window, now)
}
func (m *mockEventRepo) Search(ctx context.Context, f filter.FilterSet, opts repository.SearchOptions) ([]models.Event, int64, error) {
	return m.searchFn(ctx, f, opts)
}
func (m *mockEventRepo) ListByOrganizer(ctx context.Context, organizerID uuid.UUID, offset, limit int) ([]models.Event, int64, error) {
	return m.listByOrganizerFn(ctx, organizerID, offset, limit)
}
func (m *mockEventRepo) AdminList(ctx context.Context, f repository.AdminFilter, offset, limit int) ([]models.Event, int64, error) {
	return m.adminListFn(ctx, f, offset, limit)
}

// --- Mock UserRepository ---

type mockUserRepo struct {
	findByIDFn              func(ctx context.Context, id uuid.UUID) (*models.User, error)
	findOrganizerByUserIDFn func(ctx context.Context, userID uuid.UUID) (*models.Organizer, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockUserRepo) FindOrganizerByUserID(ctx context.Context, userID uuid.UUID) (*models.Organizer, error) {
	return m.findOrganizerByUserIDFn(ctx, userID)
}

// --- Mock ClickRepository ---

type mockClickRepo struct {
	createFn           func(ctx context.Context, click *models.EventClick) error
	countClicksSinceFn func(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]int, error)
}

func (m *mockClickRepo) Create(ctx context.Context, click *models.EventClick) error {
	return m.createFn(ctx, click)
}
func (m *mockClickRepo) CountClicksSince(ctx context.Context, ids []uuid.UUID, since time.Time) (map[uuid.UUID]int, error) {
	return m.countClicksSinceFn(ctx, ids, since)
}

// --- Mock SaveRepository ---

type mockSaveRepo struct {
	saveFn             func(ctx context.Context, userID, eventID uuid.UUID, build repository.ReminderBuilder) (*models.SavedEvent, *models.Reminder, error)
	unsaveFn           func(ctx context.Context, userID, eventID uuid.UUID) error
	listByUserFn       func(ctx context.Context, userID uuid.UUID) ([]models.SavedEvent, error)
	countActiveSavesFn func(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error)
}

func (m *mockSaveRepo) Save(ctx context.Context, userID, eventID uuid.UUID, build repository.ReminderBuilder) (*models.SavedEvent, *models.Reminder, error) {
	return m.saveFn(ctx, userID, eventID, build)
}
func (m *mockSaveRepo) Unsave(ctx context.Context, userID, eventID uuid.UUID) error {
	return m.unsaveFn(ctx, userID, eventID)
}
func (m *mockSaveRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.SavedEvent, error) {
	return m.listByUserFn(ctx, userID)
}
func (m *mockSaveRepo) CountActiveSaves(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]int, error) {
	return m.countActiveSavesFn(ctx, ids)
}

// --- Mock ReminderRepository ---

type mockReminderRepo struct {
	db                      *gorm.DB
	findByUserEventFn       func(ctx context.Context, userID, eventID uuid.UUID) (*models.Reminder, error)
	upsertFn                func(ctx context.Context, reminder *models.Reminder) error
	softDeleteOwnedFn       func(ctx context.Context, id, userID uuid.UUID) (bool, error)
	softDeleteByUserEventFn func(ctx context.Context, userID, eventID uuid.UUID) error
}

func (m *mockReminderRepo) GetDB() *gorm.DB { return m.db }
func (m *mockReminderRepo) FindByUserEvent(ctx context.Context, _ *gorm.DB, userID, eventID uuid.UUID) (*models.Reminder, error) {
	return m.findByUserEventFn(ctx, userID, eventID)
}
func (m *mockReminderRepo) Upsert(ctx context.Context, _ *gorm.DB, reminder *models.Reminder) error {
	return m.upsertFn(ctx, reminder)
}
func (m *mockReminderRepo) SoftDeleteByUserEvent(ctx context.Context, _ *gorm.DB, userID, eventID uuid.UUID) error {
	return m.softDeleteByUserEventFn(ctx, userID, eventID)
}
func (m *mockReminderRepo) SoftDeleteOwned(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	return m.softDeleteOwnedFn(ctx, id, userID)
}
func (m *mockReminderRepo) ListActive(context.Context, int, int) ([]models.DueReminder, error) {
	return nil, nil
}
func (m *mockReminderRepo) ClaimLead(context.Context, uuid.UUID, models.Lead) (bool, error) {
	return false, nil
}
func (m *mockReminderRepo) MarkDelivered(context.Context, uuid.UUID, models.Lead) error { return nil }
func (m *mockReminderRepo) MarkFailed(context.Context, uuid.UUID, models.Lead) error    { return nil }
func (m *mockReminderRepo) UpdateAggregate(context.Context, uuid.UUID, models.ReminderStatus) error {
	return nil
}

// --- Mock ReportRepository ---

type mockReportRepo struct {
	createFn   func(ctx context.Context, report *models.EventReport) error
	findByIDFn func(ctx context.Context, id uuid.UUID) (*models.EventReport, error)
	resolveFn  func(ctx context.Context, id uuid.UUID, from, to models.ReportStatus, reviewer uuid.UUID, at time.Time) (bool, error)
	listFn     func(ctx context.Context, status *models.ReportStatus) ([]models.EventReport, error)
}

func (m *mockReportRepo) Create(ctx context.Context, report *models.EventReport) error {
	return m.createFn(ctx, report)
}
func (m *mockReportRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.EventReport, error) {
	return m.findByIDFn(ctx, id)
}
func (m *mockReportRepo) Resolve(ctx context.Context, id uuid.UUID, from, to models.ReportStatus, reviewer uuid.UUID, at time.Time) (bool, error) {
	return m.resolveFn(ctx, id, from, to, reviewer, at)
}
func (m *mockReportRepo) List(ctx context.Context, status *models.ReportStatus) ([]models.EventReport, error) {
	return m.listFn(ctx, status)
}

// --- Recording publisher ---

type published struct {
	key     string
	payload any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(routingKey string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{key: routingKey, payload: payload})
	return nil
}

func (p *recordingPublisher) keys() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.key
	}
	return out
}

// --- Fixtures ---

var (
	adminID     = uuid.MustParse("0a000000-0000-0000-0000-000000000001")
	organizerID = uuid.MustParse("0b000000-0000-0000-0000-000000000002")
	userID      = uuid.MustParse("0c000000-0000-0000-0000-000000000003")
	orgProfile  = uuid.MustParse("0d000000-0000-0000-0000-000000000004")

	admin     = Identity{UserID: adminID, Role: models.RoleAdmin}
	organizer = Identity{UserID: organizerID, Role: models.RoleOrganizer}
	member    = Identity{UserID: userID, Role: models.RoleUser}
	anonymous = Identity{}

	fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
)

func publishedEvent() *models.Event {
	owner := orgProfile
	return &models.Event{
		ID:          uuid.MustParse("0e000000-0000-0000-0000-000000000005"),
		Slug:        "dhaka-jazz-night",
		Title:       "Dhaka Jazz Night",
		VenueName:   "Alliance Francaise",
		Status:      models.StatusPublished,
		StartDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 3, 14, 23, 59, 59, 0, time.UTC),
		OrganizerID: &owner,
	}
}

func organizerProfiles() *mockUserRepo {
	return &mockUserRepo{
		findOrganizerByUserIDFn: func(ctx context.Context, uid uuid.UUID) (*models.Organizer, error) {
			if uid == organizerID {
				return &models.Organizer{ID: orgProfile, UserID: organizerID, Name: "Jazz Collective"}, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
	}
}
