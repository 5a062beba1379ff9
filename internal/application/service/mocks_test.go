package service

import (
	"context"
	"fmt"
	"time"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/application/dispatcher"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/event"
)

// Mock implementations shared across service tests.

type testLogger struct{}

func (testLogger) Info(msg string, keysAndValues ...interface{})  {}
func (testLogger) Warn(msg string, keysAndValues ...interface{})  {}
func (testLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockTxManager struct {
	beginErr error
	calls    int
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.beginErr != nil {
		return m.beginErr
	}
	m.calls++
	return fn(ctx)
}

type mockDispatcher struct {
	events []*event.Event
}

func (m *mockDispatcher) Subscribe(eventType event.Type, name string, handler dispatcher.Handler) {}

func (m *mockDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	m.events = append(m.events, evt)
	return nil
}

func (m *mockDispatcher) Close() error { return nil }

func (m *mockDispatcher) eventsOfType(t event.Type) []*event.Event {
	var out []*event.Event
	for _, evt := range m.events {
		if evt.Type == t {
			out = append(out, evt)
		}
	}
	return out
}

type mockOfferRepo struct {
	offers     map[int64]*entity.Offer
	nextID     int64
	admitCalls int
	updateErr  error
}

func newMockOfferRepo() *mockOfferRepo {
	return &mockOfferRepo{offers: make(map[int64]*entity.Offer), nextID: 1}
}

func (m *mockOfferRepo) Create(ctx context.Context, offer *entity.Offer) error {
	offer.ID = m.nextID
	m.nextID++
	m.offers[offer.ID] = offer
	return nil
}

func (m *mockOfferRepo) GetByID(ctx context.Context, id int64) (*entity.Offer, error) {
	offer, ok := m.offers[id]
	if !ok {
		return nil, fmt.Errorf("offer %d: %w", id, entity.ErrNotFound)
	}
	return offer, nil
}

func (m *mockOfferRepo) ListPublished(ctx context.Context, limit, offset int) ([]*entity.Offer, error) {
	var out []*entity.Offer
	for _, o := range m.offers {
		if o.Status == entity.OfferStatusPublished {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *mockOfferRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	offer, ok := m.offers[id]
	if !ok {
		return fmt.Errorf("offer %d: %w", id, entity.ErrNotFound)
	}
	offer.Status = status
	return nil
}

func (m *mockOfferRepo) Delete(ctx context.Context, id int64) error {
	delete(m.offers, id)
	return nil
}

func (m *mockOfferRepo) AdmitOne(ctx context.Context, id int64) error {
	m.admitCalls++
	offer, ok := m.offers[id]
	if !ok {
		return fmt.Errorf("offer %d: %w", id, entity.ErrNotFound)
	}
	if offer.Status != entity.OfferStatusPublished || offer.FilledPositions >= offer.Positions {
		return fmt.Errorf("offer %d: %w", id, entity.ErrCapacityExceeded)
	}
	offer.FilledPositions++
	return nil
}

func (m *mockOfferRepo) ReleaseOne(ctx context.Context, id int64) error {
	if offer, ok := m.offers[id]; ok && offer.FilledPositions > 0 {
		offer.FilledPositions--
	}
	return nil
}

type mockApplicationRepo struct {
	applications map[int64]*entity.Application
	nextID       int64
	createErr    error
	blocking     int
	deleted      []int64
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{applications: make(map[int64]*entity.Application), nextID: 1}
}

func (m *mockApplicationRepo) Create(ctx context.Context, app *entity.Application) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.applications {
		if existing.StudentID == app.StudentID && existing.OfferID == app.OfferID {
			return fmt.Errorf("application exists: %w", entity.ErrDuplicateApplication)
		}
	}
	app.ID = m.nextID
	m.nextID++
	m.applications[app.ID] = app
	return nil
}

func (m *mockApplicationRepo) GetByID(ctx context.Context, id int64) (*entity.Application, error) {
	app, ok := m.applications[id]
	if !ok {
		return nil, fmt.Errorf("application %d: %w", id, entity.ErrNotFound)
	}
	return app, nil
}

func (m *mockApplicationRepo) GetByStudentAndOffer(ctx context.Context, studentID, offerID int64) (*entity.Application, error) {
	for _, app := range m.applications {
		if app.StudentID == studentID && app.OfferID == offerID {
			return app, nil
		}
	}
	return nil, fmt.Errorf("application: %w", entity.ErrNotFound)
}

func (m *mockApplicationRepo) ListByOffer(ctx context.Context, offerID int64) ([]*entity.Application, error) {
	var out []*entity.Application
	for _, app := range m.applications {
		if app.OfferID == offerID {
			out = append(out, app)
		}
	}
	return out, nil
}

func (m *mockApplicationRepo) UpdateStatus(ctx context.Context, app *entity.Application) error {
	stored, ok := m.applications[app.ID]
	if !ok {
		return fmt.Errorf("application %d: %w", app.ID, entity.ErrNotFound)
	}
	*stored = *app
	return nil
}

func (m *mockApplicationRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.applications[id]; !ok {
		return fmt.Errorf("application %d: %w", id, entity.ErrNotFound)
	}
	delete(m.applications, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockApplicationRepo) CountBlockingDeletion(ctx context.Context, offerID int64) (int, error) {
	return m.blocking, nil
}

type mockHistoryRepo struct {
	entries   []*entity.ApplicationHistory
	createErr error
}

func (m *mockHistoryRepo) Create(ctx context.Context, history *entity.ApplicationHistory) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, history)
	return nil
}

func (m *mockHistoryRepo) ListByApplicationID(ctx context.Context, applicationID int64) ([]*entity.ApplicationHistory, error) {
	var out []*entity.ApplicationHistory
	for _, h := range m.entries {
		if h.ApplicationID == applicationID {
			out = append(out, h)
		}
	}
	return out, nil
}

type mockInternshipRepo struct {
	internships map[int64]*entity.Internship
	nextID      int64
	createErr   error
	hoursAdded  map[int64]float64
	promoted    int64
	completed   int64
}

func newMockInternshipRepo() *mockInternshipRepo {
	return &mockInternshipRepo{
		internships: make(map[int64]*entity.Internship),
		hoursAdded:  make(map[int64]float64),
		nextID:      1,
	}
}

func (m *mockInternshipRepo) Create(ctx context.Context, internship *entity.Internship) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.internships {
		if existing.ApplicationID == internship.ApplicationID {
			return fmt.Errorf("internship exists for application %d: %w",
				internship.ApplicationID, entity.ErrInvalidState)
		}
	}
	internship.ID = m.nextID
	m.nextID++
	m.internships[internship.ID] = internship
	return nil
}

func (m *mockInternshipRepo) GetByID(ctx context.Context, id int64) (*entity.Internship, error) {
	internship, ok := m.internships[id]
	if !ok {
		return nil, fmt.Errorf("internship %d: %w", id, entity.ErrNotFound)
	}
	return internship, nil
}

func (m *mockInternshipRepo) GetByApplicationID(ctx context.Context, applicationID int64) (*entity.Internship, error) {
	for _, internship := range m.internships {
		if internship.ApplicationID == applicationID {
			return internship, nil
		}
	}
	return nil, fmt.Errorf("internship for application %d: %w", applicationID, entity.ErrNotFound)
}

func (m *mockInternshipRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	internship, ok := m.internships[id]
	if !ok {
		return fmt.Errorf("internship %d: %w", id, entity.ErrNotFound)
	}
	internship.Status = status
	return nil
}

func (m *mockInternshipRepo) AddCompletedHours(ctx context.Context, id int64, hours float64) error {
	internship, ok := m.internships[id]
	if !ok {
		return fmt.Errorf("internship %d: %w", id, entity.ErrNotFound)
	}
	internship.CompletedHours += hours
	m.hoursAdded[id] += hours
	return nil
}

func (m *mockInternshipRepo) PromoteStarted(ctx context.Context, now time.Time) (int64, error) {
	return m.promoted, nil
}

func (m *mockInternshipRepo) CompleteEnded(ctx context.Context, now time.Time) (int64, error) {
	return m.completed, nil
}

type mockAttendanceRepo struct {
	records   map[int64]*entity.AttendanceRecord
	nextID    int64
	validated []*entity.AttendanceRecord
	timeCalls int
	createErr error
}

func newMockAttendanceRepo() *mockAttendanceRepo {
	return &mockAttendanceRepo{records: make(map[int64]*entity.AttendanceRecord), nextID: 1}
}

func (m *mockAttendanceRepo) Create(ctx context.Context, record *entity.AttendanceRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = m.nextID
	m.nextID++
	m.records[record.ID] = record
	return nil
}

func (m *mockAttendanceRepo) GetByID(ctx context.Context, id int64) (*entity.AttendanceRecord, error) {
	record, ok := m.records[id]
	if !ok {
		return nil, fmt.Errorf("attendance record %d: %w", id, entity.ErrNotFound)
	}
	return record, nil
}

func (m *mockAttendanceRepo) GetByInternshipAndDate(ctx context.Context, internshipID int64, date time.Time) (*entity.AttendanceRecord, error) {
	for _, record := range m.records {
		if record.InternshipID == internshipID && record.Date.Equal(date) {
			return record, nil
		}
	}
	return nil, fmt.Errorf("attendance record: %w", entity.ErrNotFound)
}

func (m *mockAttendanceRepo) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.AttendanceRecord, error) {
	var out []*entity.AttendanceRecord
	for _, record := range m.records {
		if record.InternshipID == internshipID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (m *mockAttendanceRepo) UpdateTimes(ctx context.Context, id int64, checkIn, checkOut *string, notes string) error {
	m.timeCalls++
	record, ok := m.records[id]
	if !ok {
		return fmt.Errorf("attendance record %d: %w", id, entity.ErrNotFound)
	}
	if checkIn != nil {
		record.CheckIn = checkIn
	}
	if checkOut != nil {
		record.CheckOut = checkOut
	}
	if notes != "" {
		record.Notes = notes
	}
	return nil
}

func (m *mockAttendanceRepo) UpdateValidation(ctx context.Context, record *entity.AttendanceRecord) error {
	stored, ok := m.records[record.ID]
	if !ok {
		return fmt.Errorf("attendance record %d: %w", record.ID, entity.ErrNotFound)
	}
	*stored = *record
	m.validated = append(m.validated, record)
	return nil
}

type mockLogbookRepo struct {
	entries map[int64]*entity.LogbookEntry
	nextID  int64
	deleted []int64
}

func newMockLogbookRepo() *mockLogbookRepo {
	return &mockLogbookRepo{entries: make(map[int64]*entity.LogbookEntry), nextID: 1}
}

func (m *mockLogbookRepo) Create(ctx context.Context, entry *entity.LogbookEntry) error {
	entry.ID = m.nextID
	m.nextID++
	m.entries[entry.ID] = entry
	return nil
}

func (m *mockLogbookRepo) GetByID(ctx context.Context, id int64) (*entity.LogbookEntry, error) {
	entry, ok := m.entries[id]
	if !ok {
		return nil, fmt.Errorf("logbook entry %d: %w", id, entity.ErrNotFound)
	}
	return entry, nil
}

func (m *mockLogbookRepo) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.LogbookEntry, error) {
	var out []*entity.LogbookEntry
	for _, entry := range m.entries {
		if entry.InternshipID == internshipID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (m *mockLogbookRepo) Update(ctx context.Context, entry *entity.LogbookEntry) error {
	stored, ok := m.entries[entry.ID]
	if !ok {
		return fmt.Errorf("logbook entry %d: %w", entry.ID, entity.ErrNotFound)
	}
	*stored = *entry
	return nil
}

func (m *mockLogbookRepo) UpdateReview(ctx context.Context, entry *entity.LogbookEntry) error {
	return m.Update(ctx, entry)
}

func (m *mockLogbookRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.entries[id]; !ok {
		return fmt.Errorf("logbook entry %d: %w", id, entity.ErrNotFound)
	}
	delete(m.entries, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type mockEvaluationRepo struct {
	evaluations map[int64]*entity.Evaluation
	nextID      int64
}

func newMockEvaluationRepo() *mockEvaluationRepo {
	return &mockEvaluationRepo{evaluations: make(map[int64]*entity.Evaluation), nextID: 1}
}

func (m *mockEvaluationRepo) Create(ctx context.Context, evaluation *entity.Evaluation) error {
	evaluation.ID = m.nextID
	m.nextID++
	m.evaluations[evaluation.ID] = evaluation
	return nil
}

func (m *mockEvaluationRepo) GetByID(ctx context.Context, id int64) (*entity.Evaluation, error) {
	evaluation, ok := m.evaluations[id]
	if !ok {
		return nil, fmt.Errorf("evaluation %d: %w", id, entity.ErrNotFound)
	}
	return evaluation, nil
}

func (m *mockEvaluationRepo) ListByInternship(ctx context.Context, internshipID int64) ([]*entity.Evaluation, error) {
	var out []*entity.Evaluation
	for _, evaluation := range m.evaluations {
		if evaluation.InternshipID == internshipID {
			out = append(out, evaluation)
		}
	}
	return out, nil
}

func (m *mockEvaluationRepo) Update(ctx context.Context, evaluation *entity.Evaluation) error {
	stored, ok := m.evaluations[evaluation.ID]
	if !ok {
		return fmt.Errorf("evaluation %d: %w", evaluation.ID, entity.ErrNotFound)
	}
	*stored = *evaluation
	return nil
}

type mockNotificationRepo struct {
	notifications []*entity.Notification
	nextID        int64
}

func (m *mockNotificationRepo) Create(ctx context.Context, notification *entity.Notification) error {
	m.nextID++
	notification.ID = m.nextID
	m.notifications = append(m.notifications, notification)
	return nil
}

func (m *mockNotificationRepo) ListByUser(ctx context.Context, userID int64, unreadOnly bool, limit, offset int) ([]*entity.Notification, error) {
	var out []*entity.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (m *mockNotificationRepo) MarkRead(ctx context.Context, id, userID int64) error {
	for _, n := range m.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
			return nil
		}
	}
	return fmt.Errorf("notification %d: %w", id, entity.ErrNotFound)
}

func (m *mockNotificationRepo) CountUnread(ctx context.Context, userID int64) (int, error) {
	count := 0
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

type mockPreferenceRepo struct {
	prefs map[int64]*entity.NotificationPreference
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[int64]*entity.NotificationPreference)}
}

func (m *mockPreferenceRepo) GetByUserID(ctx context.Context, userID int64) (*entity.NotificationPreference, error) {
	if pref, ok := m.prefs[userID]; ok {
		return pref, nil
	}
	return &entity.NotificationPreference{
		UserID:            userID,
		EmailEnabled:      true,
		ApplicationEmails: true,
		LogbookEmails:     true,
		EvaluationEmails:  true,
		SecurityEmails:    true,
	}, nil
}

func (m *mockPreferenceRepo) Upsert(ctx context.Context, pref *entity.NotificationPreference) error {
	m.prefs[pref.UserID] = pref
	return nil
}

type mockServiceRepo struct {
	services map[int64]*entity.HospitalService
}

func newMockServiceRepo() *mockServiceRepo {
	return &mockServiceRepo{services: make(map[int64]*entity.HospitalService)}
}

func (m *mockServiceRepo) GetByID(ctx context.Context, id int64) (*entity.HospitalService, error) {
	svc, ok := m.services[id]
	if !ok {
		return nil, fmt.Errorf("hospital service %d: %w", id, entity.ErrNotFound)
	}
	return svc, nil
}

type mockEmailEnqueuer struct {
	sent []string
}

func (m *mockEmailEnqueuer) Enqueue(userID int64, subject, body string) {
	m.sent = append(m.sent, fmt.Sprintf("%d:%s", userID, subject))
}
