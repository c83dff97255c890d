package get_available_slots

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidDoctorID      = "некорректный ID врача"
	msgMissingDate          = "дата обязательна"
	msgInvalidParams        = "некорректная дата или длительность, ожидается YYYY-MM-DD и число минут"
	msgAvailabilityNotFound = "расписание врача не найдено"
)

type Handler struct {
	useCase  GetAvailableSlotsUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/available-slots
// Query params: date (required, YYYY-MM-DD), duration (optional, минуты)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathInt64(r, "doctorId")
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/available-slots - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /doctors/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	useCaseReq, err := ToUseCaseRequest(doctorID, dateStr, r.URL.Query().Get("duration"))
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/available-slots - Invalid params: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAvailabilityNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("GET /doctors/{id}/available-slots - Failed to get slots: doctor_id=%d, error=%v", doctorID, err)
		} else {
			h.logger.Warn("GET /doctors/{id}/available-slots - Rejected: doctor_id=%d, status=%d, error=%v", doctorID, status, err)
		}
		return
	}

	response := models.FromSlots(result.DoctorID, result.Date, result.DurationMinutes, result.Slots, h.location)

	h.logger.Info("GET /doctors/{id}/available-slots - Slots retrieved: doctor_id=%d, date=%s, slots_count=%d",
		doctorID, dateStr, len(response.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
