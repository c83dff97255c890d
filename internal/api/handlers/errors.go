package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

const (
	msgDoctorConflict  = "у врача уже есть запись на это время"
	msgPatientConflict = "у пациента уже есть запись на это время"
	msgForbidden       = "доступ запрещен"
	msgInvalidState    = "действие недопустимо в текущем статусе записи"
)

// RespondDomainError отвечает по таксономии ошибок домена и возвращает отправленный HTTP статус.
// notFoundMessage используется для domain.ErrNotFound
func RespondDomainError(w http.ResponseWriter, err error, notFoundMessage string) int {
	if conflict, ok := domain.AsConflict(err); ok {
		msg := msgDoctorConflict
		if conflict.Kind == domain.PatientConflict {
			msg = msgPatientConflict
		}
		RespondConflict(w, msg, conflict)
		return http.StatusConflict
	}

	switch {
	case errors.Is(err, domain.ErrValidation):
		RespondBadRequest(w, err.Error())
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		RespondNotFound(w, notFoundMessage)
		return http.StatusNotFound
	case errors.Is(err, domain.ErrForbidden):
		RespondForbidden(w, msgForbidden)
		return http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidState):
		RespondError(w, http.StatusConflict, msgInvalidState)
		return http.StatusConflict
	default:
		RespondInternalError(w)
		return http.StatusInternalServerError
	}
}

// PathInt64 извлекает положительный int64 из переменной пути gorilla/mux
func PathInt64(r *http.Request, name string) (int64, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, fmt.Errorf("missing path variable %q", name)
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("invalid path variable %q: %s", name, raw)
	}
	return value, nil
}
