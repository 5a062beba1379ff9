package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
)

type internshipFixture struct {
	svc        InternshipService
	internRepo *mockInternshipRepo
	appRepo    *mockApplicationRepo
	offerRepo  *mockOfferRepo
	tx         *mockTxManager
}

func newInternshipFixture(status string) (*internshipFixture, *entity.Internship, *entity.Offer) {
	f := &internshipFixture{
		internRepo: newMockInternshipRepo(),
		appRepo:    newMockApplicationRepo(),
		offerRepo:  newMockOfferRepo(),
		tx:         &mockTxManager{},
	}
	f.svc = NewInternshipService(f.internRepo, f.appRepo, f.offerRepo, f.tx, testLogger{})

	offer := &entity.Offer{
		ID:              1,
		HospitalID:      3,
		Status:          entity.OfferStatusPublished,
		Positions:       2,
		FilledPositions: 1,
	}
	f.offerRepo.offers[offer.ID] = offer
	f.offerRepo.nextID = 2

	app := &entity.Application{ID: 1, StudentID: 7, OfferID: offer.ID, Status: entity.ApplicationStatusAccepted}
	f.appRepo.applications[app.ID] = app
	f.appRepo.nextID = 2

	internship := &entity.Internship{ID: 1, ApplicationID: app.ID, StudentID: 7, HospitalID: 3, Status: status}
	f.internRepo.internships[internship.ID] = internship
	f.internRepo.nextID = 2

	return f, internship, offer
}

func TestInternshipCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("owning hospital cancels and the position is released", func(t *testing.T) {
		f, internship, offer := newInternshipFixture(entity.InternshipStatusActive)

		hospital := entity.Actor{ID: 20, Role: entity.RoleHospital, HospitalID: 3}
		require.NoError(t, f.svc.Cancel(ctx, hospital, internship.ID))

		assert.Equal(t, entity.InternshipStatusCancelled, internship.Status)
		assert.Zero(t, offer.FilledPositions)
		assert.Equal(t, 1, f.tx.calls)
	})

	t.Run("admin cancels an upcoming internship", func(t *testing.T) {
		f, internship, offer := newInternshipFixture(entity.InternshipStatusUpcoming)

		admin := entity.Actor{ID: 1, Role: entity.RoleAdmin}
		require.NoError(t, f.svc.Cancel(ctx, admin, internship.ID))
		assert.Zero(t, offer.FilledPositions)
	})

	t.Run("rejects other hospitals and students", func(t *testing.T) {
		f, internship, offer := newInternshipFixture(entity.InternshipStatusActive)

		err := f.svc.Cancel(ctx, entity.Actor{ID: 21, Role: entity.RoleHospital, HospitalID: 9}, internship.ID)
		assert.ErrorIs(t, err, entity.ErrForbidden)

		err = f.svc.Cancel(ctx, entity.Actor{ID: 7, Role: entity.RoleStudent}, internship.ID)
		assert.ErrorIs(t, err, entity.ErrForbidden)

		assert.Equal(t, 1, offer.FilledPositions)
	})

	t.Run("rejects terminal internships", func(t *testing.T) {
		f, internship, offer := newInternshipFixture(entity.InternshipStatusCompleted)

		admin := entity.Actor{ID: 1, Role: entity.RoleAdmin}
		err := f.svc.Cancel(ctx, admin, internship.ID)
		assert.ErrorIs(t, err, entity.ErrInvalidState)
		assert.Equal(t, 1, offer.FilledPositions)
	})
}
