package reschedule_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func TestToUseCaseRequest(t *testing.T) {
	loc := time.FixedZone("MSK", 3*3600)

	r := RescheduleAppointmentRequest{Date: "2026-11-02", StartTime: "10:00", DurationMinutes: 45}
	req, err := r.ToUseCaseRequest(5, 9, loc)
	require.NoError(t, err)
	assert.Equal(t, int64(5), req.AppointmentID)
	assert.Equal(t, int64(9), req.ActorID)
	assert.True(t, req.NewStart.Equal(time.Date(2026, 11, 2, 10, 0, 0, 0, loc)))
	assert.True(t, req.NewEnd.Equal(time.Date(2026, 11, 2, 10, 45, 0, 0, loc)))

	start := time.Date(2026, 11, 2, 7, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	r = RescheduleAppointmentRequest{NewStart: &start, NewEnd: &end}
	req, err = r.ToUseCaseRequest(5, 9, loc)
	require.NoError(t, err)
	assert.Equal(t, start, req.NewStart)
	assert.Equal(t, end, req.NewEnd)

	_, err = (&RescheduleAppointmentRequest{Date: "2026-11-02"}).ToUseCaseRequest(5, 9, loc)
	assert.ErrorIs(t, err, errMissingInterval)
}

type useCaseStub struct {
	err error
}

func (s *useCaseStub) Execute(_ context.Context, req *rescheduleAppointment.Request) (*rescheduleAppointment.Response, error) {
	if s.err != nil {
		return nil, s.err
	}
	interval, err := domain.IntervalFromRange(req.NewStart, req.NewEnd, time.UTC)
	if err != nil {
		return nil, err
	}
	return &rescheduleAppointment.Response{Appointment: &domain.Appointment{
		ID:       req.AppointmentID,
		Interval: interval,
		Status:   domain.StatusConfirmed,
	}}, nil
}

func serve(h *Handler, id, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/reschedule", strings.NewReader(body))
	req = mux.SetURLVars(req, map[string]string{"id": id})
	req = req.WithContext(middleware.WithUserID(req.Context(), 9))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	body := `{"date":"2026-11-02","startTime":"10:00","durationMinutes":30}`

	rec := serve(NewHandler(&useCaseStub{}, time.UTC, logger.NewNop()), "5", body)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"startTime":"10:00"`)

	rec = serve(NewHandler(&useCaseStub{}, time.UTC, logger.NewNop()), "x", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(NewHandler(&useCaseStub{}, time.UTC, logger.NewNop()), "5", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(NewHandler(&useCaseStub{err: domain.NewPatientConflict(3)}, time.UTC, logger.NewNop()), "5", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "patient_conflict")

	rec = serve(NewHandler(&useCaseStub{err: rescheduleAppointment.ErrAppointmentNotFound}, time.UTC, logger.NewNop()), "5", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(NewHandler(&useCaseStub{err: domain.ErrInvalidState}, time.UTC, logger.NewNop()), "5", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}
