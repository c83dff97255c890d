package get_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgUnauthorized         = "пользователь не определен"
)

type Handler struct {
	service AppointmentService
	logger  Logger
}

func NewHandler(service AppointmentService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/appointments/{id}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("GET /appointments/{id} - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.GetByID(r.Context(), id, actorID)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAppointmentNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("GET /appointments/{id} - Failed to get appointment: id=%d, error=%v", id, err)
		} else {
			h.logger.Warn("GET /appointments/{id} - Rejected: id=%d, actor_id=%d, status=%d", id, actorID, status)
		}
		return
	}

	h.logger.Info("GET /appointments/{id} - Appointment retrieved: id=%d", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}
