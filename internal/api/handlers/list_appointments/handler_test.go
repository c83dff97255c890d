package list_appointments

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func TestParseListRequest(t *testing.T) {
	query := url.Values{
		"status":    {"confirmed"},
		"doctorId":  {"10"},
		"startDate": {"2026-11-01"},
		"endDate":   {"2026-11-30"},
		"limit":     {"10000"},
		"offset":    {"20"},
	}

	req, err := ParseListRequest(query, 5)
	require.NoError(t, err)

	assert.Equal(t, int64(5), req.ActorID)
	require.NotNil(t, req.Status)
	assert.Equal(t, "confirmed", *req.Status)
	require.NotNil(t, req.DoctorID)
	assert.Equal(t, int64(10), *req.DoctorID)
	assert.Nil(t, req.PatientID)
	assert.Nil(t, req.Date)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), *req.StartDate)
	assert.Equal(t, uint64(maxLimit), req.Limit)
	assert.Equal(t, uint64(20), req.Offset)
}

func TestParseListRequest_Invalid(t *testing.T) {
	tests := []url.Values{
		{"doctorId": {"abc"}},
		{"patientId": {"-3"}},
		{"date": {"2026/11/01"}},
		{"startDate": {"2026-11-10"}, "endDate": {"2026-11-01"}},
		{"limit": {"-1"}},
	}

	for _, query := range tests {
		_, err := ParseListRequest(query, 1)
		assert.Error(t, err, query.Encode())
	}
}

type serviceStub struct {
	got *models.ListAppointmentsRequest
	err error
}

func (s *serviceStub) List(_ context.Context, req *models.ListAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.got = req
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentListResponse{Appointments: []models.AppointmentResponse{{ID: 1}}}, nil
}

func TestHandle(t *testing.T) {
	stub := &serviceStub{}
	h := NewHandler(stub, logger.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?patientId=7", nil)
	req = req.WithContext(middleware.WithUserID(req.Context(), 7))
	rec := httptest.NewRecorder()
	h.Handle(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stub.got.PatientID)
	assert.Equal(t, int64(7), *stub.got.PatientID)

	stub.err = domain.ErrForbidden
	rec = httptest.NewRecorder()
	h.Handle(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	bad := httptest.NewRequest(http.MethodGet, "/api/v1/appointments?limit=x", nil)
	h.Handle(rec, bad.WithContext(middleware.WithUserID(bad.Context(), 7)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
