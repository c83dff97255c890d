package confirm_appointment

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type serviceStub struct {
	actorID int64
	err     error
}

func (s *serviceStub) Confirm(_ context.Context, id int64, actorID int64) (*models.AppointmentResponse, error) {
	s.actorID = actorID
	if s.err != nil {
		return nil, s.err
	}
	return &models.AppointmentResponse{ID: id, Status: string(domain.StatusConfirmed)}, nil
}

func serve(h *Handler, id string, userID int64) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/appointments/"+id+"/confirm", nil)
	req = mux.SetURLVars(req, map[string]string{"id": id})
	if userID != 0 {
		req = req.WithContext(middleware.WithUserID(req.Context(), userID))
	}
	rec := httptest.NewRecorder()
	h.Handle(rec, req)
	return rec
}

func TestHandle(t *testing.T) {
	stub := &serviceStub{}
	rec := serve(NewHandler(stub, logger.NewNop()), "4", 10)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(10), stub.actorID)
	assert.Contains(t, rec.Body.String(), `"status":"confirmed"`)

	assert.Equal(t, http.StatusUnauthorized, serve(NewHandler(stub, logger.NewNop()), "4", 0).Code)
	assert.Equal(t, http.StatusBadRequest, serve(NewHandler(stub, logger.NewNop()), "0", 10).Code)
}

func TestHandle_Errors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{err: domain.ErrForbidden, want: http.StatusForbidden},
		{err: domain.ErrInvalidState, want: http.StatusConflict},
		{err: domain.ErrNotFound, want: http.StatusNotFound},
		{err: domain.ErrInternal, want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		rec := serve(NewHandler(&serviceStub{err: tt.err}, logger.NewNop()), "4", 10)
		assert.Equal(t, tt.want, rec.Code, tt.err.Error())
	}
}
