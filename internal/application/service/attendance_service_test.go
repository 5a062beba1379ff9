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

type attendanceFixture struct {
	svc        AttendanceService
	attendance *mockAttendanceRepo
	internRepo *mockInternshipRepo
	services   *mockServiceRepo
	tx         *mockTxManager
	dispatcher *mockDispatcher
}

func newAttendanceFixture() *attendanceFixture {
	f := &attendanceFixture{
		attendance: newMockAttendanceRepo(),
		internRepo: newMockInternshipRepo(),
		services:   newMockServiceRepo(),
		tx:         &mockTxManager{},
		dispatcher: &mockDispatcher{},
	}
	f.svc = NewAttendanceService(f.attendance, f.internRepo, f.services, f.tx, f.dispatcher, testLogger{})
	return f
}

func (f *attendanceFixture) seedInternship(internship *entity.Internship) *entity.Internship {
	if internship.StartDate.IsZero() {
		internship.StartDate = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
		internship.EndDate = time.Date(2026, 12, 20, 0, 0, 0, 0, time.UTC)
	}
	internship.ID = f.internRepo.nextID
	f.internRepo.nextID++
	f.internRepo.internships[internship.ID] = internship
	return internship
}

func (f *attendanceFixture) seedRecord(record *entity.AttendanceRecord) *entity.AttendanceRecord {
	record.ID = f.attendance.nextID
	f.attendance.nextID++
	f.attendance.records[record.ID] = record
	return record
}

func TestAttendanceRecord(t *testing.T) {
	ctx := context.Background()
	student := entity.Actor{ID: 7, Role: entity.RoleStudent}

	t.Run("first submission creates a pending record", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, Status: entity.InternshipStatusActive})

		record, err := f.svc.Record(ctx, student, RecordAttendanceInput{
			InternshipID: internship.ID,
			Date:         "2026-03-10",
			CheckIn:      strPtr("08:30"),
		})
		require.NoError(t, err)

		assert.Equal(t, entity.AttendanceStatusPending, record.Status)
		require.NotNil(t, record.CheckIn)
		assert.Equal(t, "08:30", *record.CheckIn)
		assert.Nil(t, record.CheckOut)
		assert.Zero(t, f.attendance.timeCalls)
	})

	t.Run("second submission fills in the missing time", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, Status: entity.InternshipStatusActive})
		existing := f.seedRecord(&entity.AttendanceRecord{
			InternshipID: internship.ID,
			StudentID:    7,
			Date:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			CheckIn:      strPtr("08:30"),
			Status:       entity.AttendanceStatusPending,
		})

		record, err := f.svc.Record(ctx, student, RecordAttendanceInput{
			InternshipID: internship.ID,
			Date:         "2026-03-10",
			CheckOut:     strPtr("17:00"),
		})
		require.NoError(t, err)

		assert.Equal(t, existing.ID, record.ID)
		assert.Equal(t, 1, f.attendance.timeCalls)
		require.NotNil(t, record.CheckIn)
		assert.Equal(t, "08:30", *record.CheckIn)
		require.NotNil(t, record.CheckOut)
		assert.Equal(t, "17:00", *record.CheckOut)
		assert.Len(t, f.attendance.records, 1)
	})

	t.Run("rejects another student's internship", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 8, Status: entity.InternshipStatusActive})

		_, err := f.svc.Record(ctx, student, RecordAttendanceInput{InternshipID: internship.ID, Date: "2026-03-10"})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("rejects inactive internships", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, Status: entity.InternshipStatusUpcoming})

		_, err := f.svc.Record(ctx, student, RecordAttendanceInput{InternshipID: internship.ID, Date: "2026-03-10"})
		assert.ErrorIs(t, err, entity.ErrInvalidState)
	})

	t.Run("rejects dates outside the internship period", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, Status: entity.InternshipStatusActive})

		_, err := f.svc.Record(ctx, student, RecordAttendanceInput{InternshipID: internship.ID, Date: "2027-01-01"})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("rejects malformed clock times", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, Status: entity.InternshipStatusActive})

		_, err := f.svc.Record(ctx, student, RecordAttendanceInput{
			InternshipID: internship.ID,
			Date:         "2026-03-10",
			CheckIn:      strPtr("8h30"),
		})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})
}

func strPtr(s string) *string { return &s }

func TestAttendanceValidate(t *testing.T) {
	ctx := context.Background()

	pendingRecord := func(f *attendanceFixture, internshipID int64) *entity.AttendanceRecord {
		return f.seedRecord(&entity.AttendanceRecord{
			InternshipID: internshipID,
			StudentID:    7,
			Date:         time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
			CheckIn:      strPtr("08:30"),
			CheckOut:     strPtr("17:00"),
			Status:       entity.AttendanceStatusPending,
		})
	}

	t.Run("approval computes hours and accrues them", func(t *testing.T) {
		f := newAttendanceFixture()
		tutorID := int64(30)
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, TutorID: &tutorID, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)

		tutor := entity.Actor{ID: 30, Role: entity.RoleDoctor}
		err := f.svc.Validate(ctx, tutor, record.ID, ValidateAttendanceInput{Status: entity.AttendanceStatusApproved})
		require.NoError(t, err)

		assert.Equal(t, entity.AttendanceStatusApproved, record.Status)
		require.NotNil(t, record.HoursWorked)
		assert.InDelta(t, 8.5, *record.HoursWorked, 0.001)
		assert.InDelta(t, 8.5, internship.CompletedHours, 0.001)
		assert.Equal(t, 1, f.tx.calls)

		events := f.dispatcher.eventsOfType(event.TypeAttendanceValidated)
		require.Len(t, events, 1)
		assert.InDelta(t, 8.5, events[0].GetFloat("hours_worked"), 0.001)
	})

	t.Run("absence accrues nothing", func(t *testing.T) {
		f := newAttendanceFixture()
		tutorID := int64(30)
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, TutorID: &tutorID, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)

		tutor := entity.Actor{ID: 30, Role: entity.RoleDoctor}
		err := f.svc.Validate(ctx, tutor, record.ID, ValidateAttendanceInput{Status: entity.AttendanceStatusAbsent})
		require.NoError(t, err)

		assert.Equal(t, entity.AttendanceStatusAbsent, record.Status)
		assert.Zero(t, internship.CompletedHours)
	})

	t.Run("head doctor of the service may validate", func(t *testing.T) {
		f := newAttendanceFixture()
		serviceID, headDoctorID := int64(5), int64(40)
		f.services.services[serviceID] = &entity.HospitalService{ID: serviceID, HospitalID: 3, HeadDoctorID: &headDoctorID}
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, ServiceID: &serviceID, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)

		headDoctor := entity.Actor{ID: 40, Role: entity.RoleDoctor}
		err := f.svc.Validate(ctx, headDoctor, record.ID, ValidateAttendanceInput{Status: entity.AttendanceStatusPresent})
		require.NoError(t, err)
		assert.InDelta(t, 8.5, internship.CompletedHours, 0.001)
	})

	t.Run("rejects unrelated doctors", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)

		stranger := entity.Actor{ID: 99, Role: entity.RoleDoctor}
		err := f.svc.Validate(ctx, stranger, record.ID, ValidateAttendanceInput{Status: entity.AttendanceStatusApproved})
		assert.ErrorIs(t, err, entity.ErrForbidden)
	})

	t.Run("rejects the owning hospital", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)

		hospital := entity.Actor{ID: 20, Role: entity.RoleHospital, HospitalID: 3}
		err := f.svc.Validate(ctx, hospital, record.ID, ValidateAttendanceInput{Status: entity.AttendanceStatusApproved})
		assert.ErrorIs(t, err, entity.ErrForbidden)
		assert.Equal(t, entity.AttendanceStatusPending, record.Status)
	})

	t.Run("rejects a second validation", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)
		record.Status = entity.AttendanceStatusApproved

		admin := entity.Actor{ID: 1, Role: entity.RoleAdmin}
		err := f.svc.Validate(ctx, admin, record.ID, ValidateAttendanceInput{Status: entity.AttendanceStatusRejected})
		assert.ErrorIs(t, err, entity.ErrInvalidState)
	})

	t.Run("rejects unknown target statuses", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)

		admin := entity.Actor{ID: 1, Role: entity.RoleAdmin}
		err := f.svc.Validate(ctx, admin, record.ID, ValidateAttendanceInput{Status: "pending"})
		assert.ErrorIs(t, err, entity.ErrValidation)
	})

	t.Run("appends validator notes", func(t *testing.T) {
		f := newAttendanceFixture()
		internship := f.seedInternship(&entity.Internship{StudentID: 7, HospitalID: 3, Status: entity.InternshipStatusActive})
		record := pendingRecord(f, internship.ID)
		record.Notes = "on ward rounds"

		admin := entity.Actor{ID: 1, Role: entity.RoleAdmin}
		err := f.svc.Validate(ctx, admin, record.ID, ValidateAttendanceInput{
			Status: entity.AttendanceStatusApproved,
			Notes:  "confirmed by shift lead",
		})
		require.NoError(t, err)
		assert.Equal(t, "on ward rounds\nconfirmed by shift lead", record.Notes)
	})
}
