package get_availability

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const (
	msgInvalidDoctorID      = "некорректный ID врача"
	msgAvailabilityNotFound = "расписание врача не найдено"
)

type Handler struct {
	service AvailabilityService
	logger  Logger
}

func NewHandler(service AvailabilityService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathInt64(r, "doctorId")
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/availability - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	result, err := h.service.Get(r.Context(), doctorID)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAvailabilityNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("GET /doctors/{id}/availability - Failed: doctor_id=%d, error=%v", doctorID, err)
		} else {
			h.logger.Warn("GET /doctors/{id}/availability - Rejected: doctor_id=%d, status=%d", doctorID, status)
		}
		return
	}

	h.logger.Info("GET /doctors/{id}/availability - Availability retrieved: doctor_id=%d", doctorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
