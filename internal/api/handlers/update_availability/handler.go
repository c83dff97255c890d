package update_availability

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/availability/models"
)

const (
	msgInvalidDoctorID    = "некорректный ID врача"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgDoctorNotFound     = "врач не найден"
	msgUnauthorized       = "пользователь не определен"
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

// Handle PUT /api/v1/doctors/{doctorId}/availability
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	doctorID, err := handlers.PathInt64(r, "doctorId")
	if err != nil {
		h.logger.Warn("PUT /doctors/{id}/availability - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	var req models.UpsertAvailabilityRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT /doctors/{id}/availability - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}
	req.ActorID = actorID
	req.DoctorID = doctorID

	result, err := h.service.Upsert(r.Context(), &req)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgDoctorNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("PUT /doctors/{id}/availability - Failed: doctor_id=%d, error=%v", doctorID, err)
		} else {
			h.logger.Warn("PUT /doctors/{id}/availability - Rejected: doctor_id=%d, actor_id=%d, status=%d, error=%v",
				doctorID, actorID, status, err)
		}
		return
	}

	h.logger.Info("PUT /doctors/{id}/availability - Availability updated: doctor_id=%d, actor_id=%d", doctorID, actorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
