package create_appointment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type useCaseStub struct {
	got *createAppointment.Request
	err error
}

func (s *useCaseStub) Execute(_ context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	interval, err := domain.NewInterval(req.Date, req.StartTime, req.DurationMinutes)
	if err != nil {
		return nil, err
	}
	return &createAppointment.Response{Appointment: &domain.Appointment{
		ID:               42,
		DoctorID:         req.DoctorID,
		PatientID:        req.PatientID,
		Interval:         interval,
		Status:           domain.StatusPending,
		ConsultationType: domain.ConsultationInClinic,
	}}, nil
}

func serve(h *Handler, body string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle_Created(t *testing.T) {
	stub := &useCaseStub{}
	h := NewHandler(stub, time.UTC, logger.NewNop())

	rec := serve(h, `{"doctorId":10,"date":"2026-11-02","startTime":"09:30","durationMinutes":30,"reason":"cough"}`, 20)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, stub.got)
	assert.Equal(t, int64(20), stub.got.ActorID)
	assert.Equal(t, int64(20), stub.got.PatientID, "patient defaults to the caller")
	assert.Equal(t, types.TimeString("09:30"), stub.got.StartTime)

	var resp models.AppointmentResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, int64(42), resp.ID)
	assert.Equal(t, "2026-11-02", resp.Date)
	assert.Equal(t, "09:30", resp.StartTime)
	assert.Equal(t, "10:00", resp.EndTime)
	assert.Equal(t, "pending", resp.Status)
}

func TestHandle_BadRequests(t *testing.T) {
	h := NewHandler(&useCaseStub{}, time.UTC, logger.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `{`},
		{name: "missing doctor", body: `{"date":"2026-11-02","startTime":"09:30","durationMinutes":30}`},
		{name: "bad date", body: `{"doctorId":10,"date":"02.11.2026","startTime":"09:30","durationMinutes":30}`},
		{name: "signed time", body: `{"doctorId":10,"date":"2026-11-02","startTime":"+9:00","durationMinutes":30}`},
		{name: "bad time", body: `{"doctorId":10,"date":"2026-11-02","startTime":"9h","durationMinutes":30}`},
		{name: "unknown consultation", body: `{"doctorId":10,"date":"2026-11-02","startTime":"09:30","durationMinutes":30,"consultationType":"x"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(h, tt.body, 20)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHandle_Unauthorized(t *testing.T) {
	h := NewHandler(&useCaseStub{}, time.UTC, logger.NewNop())
	rec := serve(h, `{}`, 0)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_Conflict(t *testing.T) {
	h := NewHandler(&useCaseStub{err: domain.NewDoctorConflict(7)}, time.UTC, logger.NewNop())

	rec := serve(h, `{"doctorId":10,"date":"2026-11-02","startTime":"09:30","durationMinutes":30}`, 20)
	require.Equal(t, http.StatusConflict, rec.Code)

	var resp handlers.ConflictResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "doctor_conflict", resp.Kind)
	require.NotNil(t, resp.ConflictingAppointmentID)
	assert.Equal(t, int64(7), *resp.ConflictingAppointmentID)
}

func TestHandle_UseCaseErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: createAppointment.ErrTooLateToBook, want: http.StatusBadRequest},
		{err: createAppointment.ErrConsultationTypeNotOffered, want: http.StatusBadRequest},
		{err: createAppointment.ErrDoctorNotFound, want: http.StatusNotFound},
		{err: createAppointment.ErrForbidden, want: http.StatusForbidden},
		{err: createAppointment.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewHandler(&useCaseStub{err: tt.err}, time.UTC, logger.NewNop())
			rec := serve(h, `{"doctorId":10,"date":"2026-11-02","startTime":"09:30","durationMinutes":30}`, 20)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}
