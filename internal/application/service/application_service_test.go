package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/event"
)

type applicationFixture struct {
	svc        ApplicationService
	offerRepo  *mockOfferRepo
	appRepo    *mockApplicationRepo
	history    *mockHistoryRepo
	internRepo *mockInternshipRepo
	tx         *mockTxManager
	dispatcher *mockDispatcher
}

func newApplicationFixture() *applicationFixture {
	f := &applicationFixture{
		offerRepo:  newMockOfferRepo(),
		appRepo:    newMockApplicationRepo(),
		history:    &mockHistoryRepo{},
		internRepo: newMockInternshipRepo(),
		tx:         &mockTxManager{},
		dispatcher: &mockDispatcher{},
	}
	f.svc = NewApplicationService(f.appRepo, f.offerRepo, f.history, f.internRepo, f.tx, f.dispatcher, testLogger{})
	return f
}

func (f *applicationFixture) seedOffer(offer *entity.Offer) *entity.Offer {
	if offer.Title == "" {
		offer.Title = "Cardiology rotation"
	}
	if offer.Positions == 0 {
		offer.Positions = 2
	}
	if offer.StartDate.IsZero() {
		offer.StartDate = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		offer.EndDate = time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	}
	offer.ID = f.offerRepo.nextID
	f.offerRepo.nextID++
	f.offerRepo.offers[offer.ID] = offer
	return offer
}

func (f *applicationFixture) seedApplication(app *entity.Application) *entity.Application {
	app.ID = f.appRepo.nextID
	f.appRepo.nextID++
	f.appRepo.applications[app.ID] = app
	return app
}

func TestApplicationCreate(t *testing.T) {
	ctx := context.Background()
	student := entity.Actor{ID: 7, Role: entity.RoleStudent}

	t.Run("creates pending application with audit row", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})

		app, err := f.svc.Create(ctx, student, CreateApplicationInput{OfferID: offer.ID, Motivation: "keen"})
		require.NoError(t, err)

		assert.Equal(t, entity.ApplicationStatusPending, app.Status)
		assert.Equal(t, student.ID, app.StudentID)
		require.Len(t, f.history.entries, 1)
		assert.Equal(t, "", f.history.entries[0].PreviousStatus)
		assert.Equal(t, entity.ApplicationStatusPending, f.history.entries[0].NewStatus)

		events := f.dispatcher.eventsOfType(event.TypeApplicationSubmitted)
		require.Len(t, events, 1)
		assert.Equal(t, offer.HospitalID, events[0].GetInt("hospital_id"))
	})

	t.Run("rejects non-student actors", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{Status: entity.OfferStatusPublished})

		_, err := f.svc.Create(ctx, entity.Actor{ID: 2, Role: entity.RoleHospital, HospitalID: 3},
			CreateApplicationInput{OfferID: offer.ID})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("rejects unpublished offers", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{Status: entity.OfferStatusDraft})

		_, err := f.svc.Create(ctx, student, CreateApplicationInput{OfferID: offer.ID})
		assert.ErrorIs(t, err, entity.ErrInvalidState)
		assert.Empty(t, f.history.entries)
	})

	t.Run("rejects full offers", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{Status: entity.OfferStatusPublished, Positions: 1, FilledPositions: 1})

		_, err := f.svc.Create(ctx, student, CreateApplicationInput{OfferID: offer.ID})
		assert.ErrorIs(t, err, entity.ErrCapacityExceeded)
	})

	t.Run("rejects duplicate application", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{Status: entity.OfferStatusPublished})
		f.seedApplication(&entity.Application{StudentID: student.ID, OfferID: offer.ID, Status: entity.ApplicationStatusPending})

		_, err := f.svc.Create(ctx, student, CreateApplicationInput{OfferID: offer.ID})
		assert.ErrorIs(t, err, entity.ErrDuplicateApplication)
	})

	t.Run("rejects missing offer", func(t *testing.T) {
		f := newApplicationFixture()
		_, err := f.svc.Create(ctx, student, CreateApplicationInput{OfferID: 99})
		assert.ErrorIs(t, err, entity.ErrNotFound)
	})
}

func TestApplicationSetStatus(t *testing.T) {
	ctx := context.Background()
	hospital := entity.Actor{ID: 20, Role: entity.RoleHospital, HospitalID: 3}

	t.Run("acceptance claims capacity and creates internship", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{
			HospitalID: 3,
			Status:     entity.OfferStatusPublished,
			Positions:  2,
			StartDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
			EndDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusPending})

		err := f.svc.SetStatus(ctx, hospital, app.ID, SetApplicationStatusInput{Status: entity.ApplicationStatusAccepted})
		require.NoError(t, err)

		assert.Equal(t, entity.ApplicationStatusAccepted, app.Status)
		assert.Equal(t, 1, offer.FilledPositions)
		assert.Equal(t, 1, f.offerRepo.admitCalls)
		assert.Equal(t, 1, f.tx.calls)

		internship, err := f.internRepo.GetByApplicationID(ctx, app.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(7), internship.StudentID)
		assert.Equal(t, offer.HospitalID, internship.HospitalID)
		assert.Equal(t, entity.InternshipStatusActive, internship.Status)

		require.Len(t, f.history.entries, 1)
		assert.Equal(t, entity.ApplicationStatusPending, f.history.entries[0].PreviousStatus)
		assert.Equal(t, entity.ApplicationStatusAccepted, f.history.entries[0].NewStatus)

		events := f.dispatcher.eventsOfType(event.TypeApplicationAccepted)
		require.Len(t, events, 1)
		assert.Equal(t, internship.ID, events[0].GetInt("internship_id"))
	})

	t.Run("acceptance reuses an existing internship", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished, Positions: 2})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusReviewing})
		existing := &entity.Internship{ApplicationID: app.ID, StudentID: 7, HospitalID: 3, Status: entity.InternshipStatusUpcoming}
		require.NoError(t, f.internRepo.Create(ctx, existing))

		err := f.svc.SetStatus(ctx, hospital, app.ID, SetApplicationStatusInput{Status: entity.ApplicationStatusAccepted})
		require.NoError(t, err)

		assert.Len(t, f.internRepo.internships, 1)
		events := f.dispatcher.eventsOfType(event.TypeApplicationAccepted)
		require.Len(t, events, 1)
		assert.Equal(t, existing.ID, events[0].GetInt("internship_id"))
	})

	t.Run("rejection stores the reason", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusReviewing})

		err := f.svc.SetStatus(ctx, hospital, app.ID, SetApplicationStatusInput{
			Status:          entity.ApplicationStatusRejected,
			RejectionReason: "position filled internally",
		})
		require.NoError(t, err)

		require.NotNil(t, app.RejectionReason)
		assert.Equal(t, "position filled internally", *app.RejectionReason)
		assert.Zero(t, f.offerRepo.admitCalls)

		events := f.dispatcher.eventsOfType(event.TypeApplicationRejected)
		require.Len(t, events, 1)
		assert.Equal(t, "position filled internally", events[0].GetString("rejection_reason"))
	})

	t.Run("rejects transitions out of terminal status", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusAccepted})

		err := f.svc.SetStatus(ctx, hospital, app.ID, SetApplicationStatusInput{Status: entity.ApplicationStatusRejected})
		assert.ErrorIs(t, err, entity.ErrInvalidState)
		assert.Empty(t, f.history.entries)
	})

	t.Run("rejects unknown target status", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusPending})

		err := f.svc.SetStatus(ctx, hospital, app.ID, SetApplicationStatusInput{Status: "pending"})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("rejects another hospital's review", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusPending})

		other := entity.Actor{ID: 21, Role: entity.RoleHospital, HospitalID: 9}
		err := f.svc.SetStatus(ctx, other, app.ID, SetApplicationStatusInput{Status: entity.ApplicationStatusReviewing})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})
}

func TestApplicationWithdraw(t *testing.T) {
	ctx := context.Background()
	student := entity.Actor{ID: 7, Role: entity.RoleStudent}

	t.Run("deletes the row and keeps the tombstone", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusPending})

		err := f.svc.Withdraw(ctx, student, app.ID)
		require.NoError(t, err)

		assert.Contains(t, f.appRepo.deleted, app.ID)
		require.Len(t, f.history.entries, 1)
		assert.Equal(t, entity.ApplicationStatusWithdrawn, f.history.entries[0].NewStatus)
		assert.Equal(t, entity.ApplicationStatusPending, f.history.entries[0].PreviousStatus)

		assert.Len(t, f.dispatcher.eventsOfType(event.TypeApplicationWithdrawn), 1)
	})

	t.Run("rejects withdrawal after acceptance", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusAccepted})

		err := f.svc.Withdraw(ctx, student, app.ID)
		assert.ErrorIs(t, err, entity.ErrInvalidState)
		assert.Empty(t, f.appRepo.deleted)
	})

	t.Run("rejects another student's withdrawal", func(t *testing.T) {
		f := newApplicationFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		app := f.seedApplication(&entity.Application{StudentID: 8, OfferID: offer.ID, Status: entity.ApplicationStatusPending})

		err := f.svc.Withdraw(ctx, student, app.ID)
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})
}
