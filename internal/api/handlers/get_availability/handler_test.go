package get_availability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/service/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type serviceStub struct {
	err error
}

func (s *serviceStub) Get(_ context.Context, doctorID int64) (*models.AvailabilityResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.AvailabilityResponse{DoctorID: doctorID}, nil
}

func serve(h *Handler, doctorID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/doctors/"+doctorID+"/availability", nil)
	req = mux.SetURLVars(req, map[string]string{"doctorId": doctorID})
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	rec := serve(NewHandler(&serviceStub{}, logger.NewNop()), "10")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"doctorId":10`)

	assert.Equal(t, http.StatusBadRequest, serve(NewHandler(&serviceStub{}, logger.NewNop()), "ten").Code)
	assert.Equal(t, http.StatusNotFound,
		serve(NewHandler(&serviceStub{err: availability.ErrAvailabilityNotFound}, logger.NewNop()), "10").Code)
}
