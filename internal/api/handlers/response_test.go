package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestRespondDomainError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: fmt.Errorf("uc: %w: bad", domain.ErrValidation), want: http.StatusBadRequest},
		{name: "not found", err: fmt.Errorf("uc: %w", domain.ErrNotFound), want: http.StatusNotFound},
		{name: "forbidden", err: fmt.Errorf("uc: %w", domain.ErrForbidden), want: http.StatusForbidden},
		{name: "invalid state", err: fmt.Errorf("uc: %w", domain.ErrInvalidState), want: http.StatusConflict},
		{name: "internal", err: fmt.Errorf("uc: %w", domain.ErrInternal), want: http.StatusInternalServerError},
		{name: "unknown", err: fmt.Errorf("boom"), want: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			assert.Equal(t, tt.want, RespondDomainError(rec, tt.err, "не найдено"))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRespondDomainError_Conflict(t *testing.T) {
	rec := httptest.NewRecorder()
	status := RespondDomainError(rec, fmt.Errorf("wrap: %w", domain.NewPatientConflict(7)), "")
	assert.Equal(t, http.StatusConflict, status)

	var body ConflictResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "patient_conflict", body.Kind)
	require.NotNil(t, body.ConflictingAppointmentID)
	assert.Equal(t, int64(7), *body.ConflictingAppointmentID)

	rec = httptest.NewRecorder()
	RespondDomainError(rec, domain.NewDoctorConflict(0), "")
	body = ConflictResponse{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "doctor_conflict", body.Kind)
	assert.Nil(t, body.ConflictingAppointmentID)
}

type payload struct {
	Name  string `json:"name" validate:"required"`
	Count int    `json:"count" validate:"min=1,max=5"`
}

func TestDecodeAndValidate(t *testing.T) {
	var p payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","count":2}`))
	require.NoError(t, DecodeAndValidate(req, &p))
	assert.Equal(t, payload{Name: "x", Count: 2}, p)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"","count":9}`))
	err := DecodeAndValidate(req, &payload{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "payload.Name: required")
	assert.Contains(t, err.Error(), "payload.Count: max")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","count":1,"extra":true}`))
	assert.Error(t, DecodeAndValidate(req, &payload{}))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x","count":1}{}`))
	assert.Error(t, DecodeJSON(req, &payload{}))
}

func TestPathInt64(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"id": "15", "bad": "-1"})

	id, err := PathInt64(req, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(15), id)

	_, err = PathInt64(req, "bad")
	assert.Error(t, err)

	_, err = PathInt64(req, "missing")
	assert.Error(t, err)
}
