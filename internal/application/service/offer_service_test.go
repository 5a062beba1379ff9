package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AymenZahed/pgsm-internship-management-sub002/internal/domain/entity"
)

type offerFixture struct {
	svc       OfferService
	offerRepo *mockOfferRepo
	appRepo   *mockApplicationRepo
}

func newOfferFixture() *offerFixture {
	f := &offerFixture{
		offerRepo: newMockOfferRepo(),
		appRepo:   newMockApplicationRepo(),
	}
	f.svc = NewOfferService(f.offerRepo, f.appRepo, testLogger{})
	return f
}

func (f *offerFixture) seedOffer(offer *entity.Offer) *entity.Offer {
	offer.ID = f.offerRepo.nextID
	f.offerRepo.nextID++
	f.offerRepo.offers[offer.ID] = offer
	return offer
}

func TestOfferCreate(t *testing.T) {
	ctx := context.Background()
	hospital := entity.Actor{ID: 20, Role: entity.RoleHospital, HospitalID: 3}

	t.Run("creates a draft offer for the actor's hospital", func(t *testing.T) {
		f := newOfferFixture()

		offer, err := f.svc.Create(ctx, hospital, CreateOfferInput{
			Title:     "Cardiology rotation",
			Positions: 2,
			StartDate: "2026-10-01",
			EndDate:   "2027-03-31",
		})
		require.NoError(t, err)

		assert.Equal(t, entity.OfferStatusDraft, offer.Status)
		assert.Equal(t, hospital.HospitalID, offer.HospitalID)
		assert.Zero(t, offer.FilledPositions)
	})

	t.Run("rejects students", func(t *testing.T) {
		f := newOfferFixture()
		_, err := f.svc.Create(ctx, entity.Actor{ID: 7, Role: entity.RoleStudent}, CreateOfferInput{
			Title:     "Cardiology rotation",
			Positions: 2,
			StartDate: "2026-10-01",
			EndDate:   "2027-03-31",
		})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("rejects an end date before the start date", func(t *testing.T) {
		f := newOfferFixture()
		_, err := f.svc.Create(ctx, hospital, CreateOfferInput{
			Title:     "Cardiology rotation",
			Positions: 2,
			StartDate: "2027-03-31",
			EndDate:   "2026-10-01",
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("rejects zero positions", func(t *testing.T) {
		f := newOfferFixture()
		_, err := f.svc.Create(ctx, hospital, CreateOfferInput{
			Title:     "Cardiology rotation",
			StartDate: "2026-10-01",
			EndDate:   "2027-03-31",
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}

func TestOfferSetStatus(t *testing.T) {
	ctx := context.Background()
	hospital := entity.Actor{ID: 20, Role: entity.RoleHospital, HospitalID: 3}

	t.Run("publishes a draft", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusDraft})

		require.NoError(t, f.svc.SetStatus(ctx, hospital, offer.ID, entity.OfferStatusPublished))
		assert.Equal(t, entity.OfferStatusPublished, offer.Status)
	})

	t.Run("closes a published offer", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})

		require.NoError(t, f.svc.SetStatus(ctx, hospital, offer.ID, entity.OfferStatusClosed))
		assert.Equal(t, entity.OfferStatusClosed, offer.Status)
	})

	t.Run("rejects reopening a closed offer", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusClosed})

		err := f.svc.SetStatus(ctx, hospital, offer.ID, entity.OfferStatusPublished)
		assert.ErrorIs(t, err, entity.ErrInvalidState)
	})

	t.Run("rejects unknown target statuses", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusDraft})

		err := f.svc.SetStatus(ctx, hospital, offer.ID, "draft")
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("rejects another hospital", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 9, Status: entity.OfferStatusDraft})

		err := f.svc.SetStatus(ctx, hospital, offer.ID, entity.OfferStatusPublished)
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("admin may transition any offer", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 9, Status: entity.OfferStatusDraft})

		admin := entity.Actor{ID: 1, Role: entity.RoleAdmin}
		require.NoError(t, f.svc.SetStatus(ctx, admin, offer.ID, entity.OfferStatusCancelled))
		assert.Equal(t, entity.OfferStatusCancelled, offer.Status)
	})
}

func TestOfferDelete(t *testing.T) {
	ctx := context.Background()
	hospital := entity.Actor{ID: 20, Role: entity.RoleHospital, HospitalID: 3}

	t.Run("deletes an offer without active applications", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusDraft})

		require.NoError(t, f.svc.Delete(ctx, hospital, offer.ID))
		assert.NotContains(t, f.offerRepo.offers, offer.ID)
	})

	t.Run("refuses while active applications exist", func(t *testing.T) {
		f := newOfferFixture()
		offer := f.seedOffer(&entity.Offer{HospitalID: 3, Status: entity.OfferStatusPublished})
		f.appRepo.blocking = 2

		err := f.svc.Delete(ctx, hospital, offer.ID)
		assert.ErrorIs(t, err, entity.ErrInvalidState)
		assert.Contains(t, f.offerRepo.offers, offer.ID)
	})
}
