package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/petsafe/petsafe-api/internal/domain"
	"github.com/petsafe/petsafe-api/internal/http/handler"
	"github.com/petsafe/petsafe-api/internal/repository"
	"github.com/petsafe/petsafe-api/internal/service"
	"github.com/petsafe/petsafe-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func createAppointmentHandler(db *gorm.DB) *handler.AppointmentHandler {
	svc := service.NewAppointmentService(repository.NewAppointmentRepository(db), zap.NewNop())
	return handler.NewAppointmentHandler(svc, zap.NewNop())
}

func TestAppointmentHandler_CreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAppointmentHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Lola")

	rr := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/api/v1/appointments", domain.AppointmentRequest{
		Date:       "2025-03-08",
		Time:       "9:30",
		AnimalName: "Toby",
		Reason:     "Revisión anual",
	})
	h.Create(rr, asAccount(req, user))

	require.Equal(t, http.StatusCreated, rr.Code)
	var created domain.AppointmentDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, "09:30", created.Time)
	assert.Equal(t, "08/03/2025", created.DisplayDate)
	assert.Equal(t, "/api/v1/appointments/"+created.ID.String(), rr.Header().Get("Location"))

	t.Run("owner reads it", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+created.ID.String(), nil), user)
		h.GetByID(rr, withURLParam(req, "id", created.ID.String()))
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("another user gets not found", func(t *testing.T) {
		other, _ := testutil.CreateTestPerson(t, db, "Otro")
		rr := httptest.NewRecorder()
		req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/"+created.ID.String(), nil), other)
		h.GetByID(rr, withURLParam(req, "id", created.ID.String()))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("invalid id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		req := asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/abc", nil), user)
		h.GetByID(rr, withURLParam(req, "id", "abc"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestAppointmentHandler_CreateRejectsBadClock(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAppointmentHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Lola")

	rr := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPost, "/api/v1/appointments", domain.AppointmentRequest{
		Date:       "2025-03-08",
		Time:       "24:10",
		AnimalName: "Toby",
		Reason:     "Vacuna",
	})
	h.Create(rr, asAccount(req, user))

	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeAPIError(t, rr).Errors, "time")
}

func TestAppointmentHandler_ListAndHighlightedDates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAppointmentHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Lola")

	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 8), "11:00", "Toby")
	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 8), "09:00", "Misi")
	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.April, 2), "10:00", "Toby")

	t.Run("day filter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments?date=2025-03-08", nil), user))

		require.Equal(t, http.StatusOK, rr.Code)
		var list []domain.AppointmentDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
		require.Len(t, list, 2)
		assert.Equal(t, "09:00", list[0].Time)
	})

	t.Run("bad day filter", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.List(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments?date=08/03/2025", nil), user))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("highlighted dates of a month", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.HighlightedDates(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/highlighted-dates?month=2025-03", nil), user))

		require.Equal(t, http.StatusOK, rr.Code)
		var resp domain.HighlightedDatesResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, []string{"2025-03-08"}, resp.Dates)
	})
}

func TestAppointmentHandler_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAppointmentHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Lola")
	appointment := testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 8), "11:00", "Toby")
	id := appointment.ID.String()

	rr := httptest.NewRecorder()
	req := jsonRequest(t, http.MethodPut, "/api/v1/appointments/"+id, domain.AppointmentRequest{
		Date:       "2025-03-09",
		Time:       "12:15",
		AnimalName: "Toby",
		Reason:     "Desparasitar",
	})
	h.Update(rr, withURLParam(asAccount(req, user), "id", id))
	require.Equal(t, http.StatusOK, rr.Code)

	var updated domain.AppointmentDTO
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, "2025-03-09", updated.Date)
	assert.Equal(t, "Desparasitar", updated.Reason)

	rr = httptest.NewRecorder()
	h.Delete(rr, withURLParam(asAccount(httptest.NewRequest(http.MethodDelete, "/api/v1/appointments/"+id, nil), user), "id", id))
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	missing := uuid.NewString()
	h.Delete(rr, withURLParam(asAccount(httptest.NewRequest(http.MethodDelete, "/api/v1/appointments/"+missing, nil), user), "id", missing))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAppointmentHandler_ExportICS(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := createAppointmentHandler(db)
	user, _ := testutil.CreateTestPerson(t, db, "Lola")
	testutil.CreateTestAppointment(t, db, user.ID, testutil.Date(2025, time.March, 8), "11:00", "Toby")

	rr := httptest.NewRecorder()
	h.ExportICS(rr, asAccount(httptest.NewRequest(http.MethodGet, "/api/v1/appointments/export.ics", nil), user))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.HasPrefix(rr.Header().Get("Content-Type"), "text/calendar"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "agenda.ics")
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCALENDAR\r\n"))
	assert.Contains(t, body, "DTSTART:20250308T110000\r\n")
	assert.Contains(t, body, "SUMMARY:Toby\r\n")

	t.Run("unauthenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ExportICS(rr, httptest.NewRequest(http.MethodGet, "/api/v1/appointments/export.ics", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}
