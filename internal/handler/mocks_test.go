package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/eventsdhaka/discovery/internal/calendar"
	"github.com/eventsdhaka/discovery/internal/filter"
	"github.com/eventsdhaka/discovery/internal/models"
	"github.com/eventsdhaka/discovery/internal/reminder"
	"github.com/eventsdhaka/discovery/internal/repository"
	"github.com/eventsdhaka/discovery/internal/service"
)

// --- Mock EventService ---

type mockEventService struct {
	getFn          func(ctx context.Context, idOrSlug string) (*models.Event, error)
	browseFn       func(ctx context.Context, f filter.FilterSet) (service.Page[models.Event], error)
	changeStatusFn func(ctx context.Context, who service.Identity, id uuid.UUID, to models.EventStatus) (*models.Event, error)
	setVerifiedFn  func(ctx context.Context, who service.Identity, id uuid.UUID, verified bool) (*models.Event, error)
	submitFn       func(ctx context.Context, who service.Identity, in service.Submission) (*service.Created, error)
	draftFn        func(ctx context.Context, who service.Identity, in service.Submission) (*service.Created, error)
	qualityFn      func(ctx context.Context, in service.Submission) (*service.QualityReport, error)
	listOwnFn      func(ctx context.Context, who service.Identity, page, limit int) (service.Page[models.Event], error)
	updateOwnFn    func(ctx context.Context, who service.Identity, id uuid.UUID, edit service.EventEdit) (*models.Event, error)
	deleteOwnFn    func(ctx context.Context, who service.Identity, id uuid.UUID) error
	adminListFn    func(ctx context.Context, who service.Identity, f repository.AdminFilter, page, limit int) (service.Page[models.Event], error)
	digestFn       func(ctx context.Context, who service.Identity) (*service.Digest, error)
	exportFn       func(ctx context.Context, idOrSlug string) (*calendar.Export, error)
	clickFn        func(ctx context.Context, who service.Identity, id uuid.UUID, source string) error
}

func (m *mockEventService) Get(ctx context.Context, idOrSlug string) (*models.Event, error) {
	return m.getFn(ctx, idOrSlug)
}
func (m *mockEventService) Browse(ctx context.Context, f filter.FilterSet) (service.Page[models.Event], error) {
	return m.browseFn(ctx, f)
}
func (m *mockEventService) ChangeStatus(ctx context.Context, who service.Identity, id uuid.UUID, to models.EventStatus) (*models.Event, error) {
	return m.changeStatusFn(ctx, who, id, to)
}
func (m *mockEventService) SetVerified(ctx context.Context, who service.Identity, id uuid.UUID, verified bool) (*models.Event, error) {
	return m.setVerifiedFn(ctx, who, id, verified)
}
func (m *mockEventService) SubmitAsOrganizer(ctx context.Context, who service.Identity, in service.Submission) (*service.Created, error) {
	return m.submitFn(ctx, who, in)
}
func (m *mockEventService) CreateDraft(ctx context.Context, who service.Identity, in service.Submission) (*service.Created, error) {
	return m.draftFn(ctx, who, in)
}
func (m *mockEventService) CheckQuality(ctx context.Context, in service.Submission) (*service.QualityReport, error) {
	return m.qualityFn(ctx, in)
}
func (m *mockEventService) ListOwn(ctx context.Context, who service.Identity, page, limit int) (service.Page[models.Event], error) {
	return m.listOwnFn(ctx, who, page, limit)
}
func (m *mockEventService) UpdateOwn(ctx context.Context, who service.Identity, id uuid.UUID, edit service.EventEdit) (*models.Event, error) {
	return m.updateOwnFn(ctx, who, id, edit)
}
func (m *mockEventService) DeleteOwn(ctx context.Context, who service.Identity, id uuid.UUID) error {
	return m.deleteOwnFn(ctx, who, id)
}
func (m *mockEventService) AdminList(ctx context.Context, who service.Identity, f repository.AdminFilter, page, limit int) (service.Page[models.Event], error) {
	return m.adminListFn(ctx, who, f, page, limit)
}
func (m *mockEventService) WeekendDigest(ctx context.Context, who service.Identity) (*service.Digest, error) {
	return m.digestFn(ctx, who)
}
func (m *mockEventService) ExportCalendar(ctx context.Context, idOrSlug string) (*calendar.Export, error) {
	return m.exportFn(ctx, idOrSlug)
}
func (m *mockEventService) RecordClick(ctx context.Context, who service.Identity, id uuid.UUID, source string) error {
	return m.clickFn(ctx, who, id, source)
}

// --- Mock ReportService ---

type mockReportService struct {
	createFn  func(ctx context.Context, who service.Identity, eventID uuid.UUID, reason, description string) (*models.EventReport, error)
	resolveFn func(ctx context.Context, who service.Identity, id uuid.UUID, status string) (*models.EventReport, error)
	listFn    func(ctx context.Context, who service.Identity, status string) ([]models.EventReport, error)
}

func (m *mockReportService) Create(ctx context.Context, who service.Identity, eventID uuid.UUID, reason, description string) (*models.EventReport, error) {
	return m.createFn(ctx, who, eventID, reason, description)
}
func (m *mockReportService) Resolve(ctx context.Context, who service.Identity, id uuid.UUID, status string) (*models.EventReport, error) {
	return m.resolveFn(ctx, who, id, status)
}
func (m *mockReportService) List(ctx context.Context, who service.Identity, status string) ([]models.EventReport, error) {
	return m.listFn(ctx, who, status)
}

// --- Mock SaveService ---

type mockSaveService struct {
	saveFn   func(ctx context.Context, who service.Identity, eventID uuid.UUID) (*models.SavedEvent, *models.Reminder, error)
	unsaveFn func(ctx context.Context, who service.Identity, eventID uuid.UUID) error
	listFn   func(ctx context.Context, who service.Identity) ([]models.SavedEvent, error)
}

func (m *mockSaveService) Save(ctx context.Context, who service.Identity, eventID uuid.UUID) (*models.SavedEvent, *models.Reminder, error) {
	return m.saveFn(ctx, who, eventID)
}
func (m *mockSaveService) Unsave(ctx context.Context, who service.Identity, eventID uuid.UUID) error {
	return m.unsaveFn(ctx, who, eventID)
}
func (m *mockSaveService) ListSaves(ctx context.Context, who service.Identity) ([]models.SavedEvent, error) {
	return m.listFn(ctx, who)
}

// --- Mock ReminderService ---

type mockReminderService struct {
	upsertFn func(ctx context.Context, who service.Identity, req service.ReminderRequest) (*models.Reminder, error)
	deleteFn func(ctx context.Context, who service.Identity, id uuid.UUID) error
}

func (m *mockReminderService) Upsert(ctx context.Context, who service.Identity, req service.ReminderRequest) (*models.Reminder, error) {
	return m.upsertFn(ctx, who, req)
}
func (m *mockReminderService) Delete(ctx context.Context, who service.Identity, id uuid.UUID) error {
	return m.deleteFn(ctx, who, id)
}

type mockDispatcher struct {
	runFn func(ctx context.Context) (reminder.Summary, error)
}

func (m *mockDispatcher) Run(ctx context.Context) (reminder.Summary, error) {
	return m.runFn(ctx)
}
