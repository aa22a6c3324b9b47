package service_test

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAppointmentService(db *gorm.DB) *service.AppointmentService {
	return service.NewAppointmentService(repository.NewAppointmentRepository(db), zap.NewNop())
}

func TestAppointmentService_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)
	user, _ := testutil.CreateTestPerson(t, db, "Elena")
	ctx := accountContext(user)

	created, err := svc.Create(ctx, &domain.AppointmentRequest{
		Date:       "2025-03-09",
		Time:       "9:05",
		AnimalName: "Toby",
		Reason:     "Revisión anual",
	})
	require.NoError(t, err)
	assert.Equal(t, "09:05", created.Time)
	assert.Equal(t, "09/03/2025", created.DisplayDate)
	assert.Equal(t, "09:05", created.DisplayTime)

	got, err := svc.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Toby", got.AnimalName)
	assert.Equal(t, "2025-03-09", got.Date)
}

func TestAppointmentService_Create_Validation(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)
	user, _ := testutil.CreateTestPerson(t, db, "Elena")
	ctx := accountContext(user)

	tests := []struct {
		name  string
		req   domain.AppointmentRequest
		field string
	}{
		{"hour too large", domain.AppointmentRequest{Date: "2025-03-09", Time: "24:00", AnimalName: "Toby", Reason: "x"}, "time"},
		{"minute too large", domain.AppointmentRequest{Date: "2025-03-09", Time: "10:60", AnimalName: "Toby", Reason: "x"}, "time"},
		{"not a time", domain.AppointmentRequest{Date: "2025-03-09", Time: "ab:cd", AnimalName: "Toby", Reason: "x"}, "time"},
		{"bad date", domain.AppointmentRequest{Date: "09/03/2025", Time: "10:00", AnimalName: "Toby", Reason: "x"}, "date"},
		{"missing animal", domain.AppointmentRequest{Date: "2025-03-09", Time: "10:00", Reason: "x"}, "animalName"},
		{"missing reason", domain.AppointmentRequest{Date: "2025-03-09", Time: "10:00", AnimalName: "Toby"}, "reason"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.req)
			var ve *service.ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Contains(t, ve.Fields, tt.field)
		})
	}

	t.Run("boundaries are accepted", func(t *testing.T) {
		for _, clock := range []string{"00:00", "23:59"} {
			_, err := svc.Create(ctx, &domain.AppointmentRequest{Date: "2025-03-09", Time: clock, AnimalName: "Toby", Reason: "x"})
			assert.NoError(t, err, clock)
		}
	})
}

func TestAppointmentService_ListAndHighlightedDates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)
	user, _ := testutil.CreateTestPerson(t, db, "Elena")
	other, _ := testutil.CreateTestPerson(t, db, "Otra")
	ctx := accountContext(user)

	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 9), "16:30", "Toby")
	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 9), "09:00", "Luna")
	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 20), "11:00", "Toby")
	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.April, 2), "11:00", "Toby")
	testutil.CreateTestAppointment(t, db, other.ID, testutil.Date(2025, time.March, 15), "11:00", "Kira")

	t.Run("all appointments ordered by date and time", func(t *testing.T) {
		list, err := svc.List(ctx, "")
		require.NoError(t, err)
		require.Len(t, list, 4)
		assert.Equal(t, "Luna", list[0].AnimalName)
		assert.Equal(t, "16:30", list[1].Time)
		assert.Equal(t, "2025-04-02", list[3].Date)
	})

	t.Run("day filter", func(t *testing.T) {
		list, err := svc.List(ctx, "2025-03-09")
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "09:00", list[0].Time)
	})

	t.Run("invalid day filter", func(t *testing.T) {
		_, err := svc.List(ctx, "March")
		var ve *service.ValidationError
		assert.ErrorAs(t, err, &ve)
	})

	t.Run("highlighted dates of a month", func(t *testing.T) {
		resp, err := svc.HighlightedDates(ctx, "2025-03")
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-03-09", "2025-03-20"}, resp.Dates)
	})

	t.Run("highlighted dates without month", func(t *testing.T) {
		resp, err := svc.HighlightedDates(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, []string{"2025-03-09", "2025-03-20", "2025-04-02"}, resp.Dates)
	})
}

func TestAppointmentService_OtherUsersAppointmentsAreNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)
	owner, _ := testutil.CreateTestPerson(t, db, "Elena")
	intruder, _ := testutil.CreateTestPerson(t, db, "Intrusa")
	appointment := testutil.CreateTestAppointment(t, db, owner.ID, testutil.Date(2025, time.March, 9), "10:00", "Toby")
	ctx := accountContext(intruder)

	_, err := svc.GetByID(ctx, appointment.ID)
	assert.ErrorIs(t, err, service.ErrAppointmentNotFound)

	_, err = svc.Update(ctx, appointment.ID, &domain.AppointmentRequest{Date: "2025-03-10", Time: "10:00", AnimalName: "X", Reason: "X"})
	assert.ErrorIs(t, err, service.ErrAppointmentNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, appointment.ID), service.ErrAppointmentNotFound)
	assert.ErrorIs(t, svc.Delete(accountContext(owner), uuid.New()), service.ErrAppointmentNotFound)

	_, err = svc.GetByID(accountContext(owner), appointment.ID)
	assert.NoError(t, err)
}

func TestAppointmentService_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)
	user, _ := testutil.CreateTestPerson(t, db, "Elena")
	appointment := testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 9), "10:00", "Toby")
	ctx := accountContext(user)

	updated, err := svc.Update(ctx, appointment.ID, &domain.AppointmentRequest{
		Date:       "2025-03-11",
		Time:       "18:15",
		AnimalName: "Toby",
		Reason:     "Vacuna de la rabia",
	})
	require.NoError(t, err)
	assert.Equal(t, "11/03/2025", updated.DisplayDate)
	assert.Equal(t, "Vacuna de la rabia", updated.Reason)

	require.NoError(t, svc.Delete(ctx, appointment.ID))
	_, err = svc.GetByID(ctx, appointment.ID)
	assert.ErrorIs(t, err, service.ErrAppointmentNotFound)
}

func TestAppointmentService_ExportICS(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)
	user, _ := testutil.CreateTestPerson(t, db, "Elena")
	appointment := testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 9), "16:30", "Toby, el grande")

	var buf bytes.Buffer
	require.NoError(t, svc.ExportICS(accountContext(user), &buf))
	ics := buf.String()

	assert.True(t, strings.HasPrefix(ics, "BEGIN:VCALENDAR\r\nVERSION:2.0\r\n"))
	assert.True(t, strings.HasSuffix(ics, "END:VCALENDAR\r\n"))
	assert.Contains(t, ics, "UID:"+appointment.ID.String()+"@petsafe\r\n")
	assert.Contains(t, ics, "DTSTART:20250309T163000\r\n")
	assert.Contains(t, ics, "DTEND:20250309T170000\r\n")
	assert.Contains(t, ics, `SUMMARY:Toby\, el grande`)
	assert.Equal(t, 1, strings.Count(ics, "BEGIN:VEVENT"))
}

func TestAppointmentService_RequiresAccount(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := createAppointmentService(db)

	_, err := svc.List(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)

	_, err = svc.List(adminContext(), "")
	assert.ErrorIs(t, err, service.ErrUnauthorized)
}
