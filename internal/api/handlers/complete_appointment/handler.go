package complete_appointment

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

// Handle PATCH /api/v1/appointments/{id}/complete
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/complete - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	result, err := h.service.Complete(r.Context(), id, actorID)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAppointmentNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /appointments/{id}/complete - Failed: id=%d, actor_id=%d, error=%v", id, actorID, err)
		} else {
			h.logger.Warn("PATCH /appointments/{id}/complete - Rejected: id=%d, actor_id=%d, status=%d, error=%v", id, actorID, status, err)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/complete - Appointment completed: id=%d, actor_id=%d", id, actorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
