package cancel_appointment

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
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

// Handle PATCH /api/v1/appointments/{id}/cancel
// Тело запроса опционально: {"reason": "..."}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	req := models.CancelRequest{}
	if r.ContentLength != 0 {
		if err := handlers.DecodeJSON(r, &req); err != nil {
			h.logger.Warn("PATCH /appointments/{id}/cancel - Invalid request body: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)
			return
		}
	}
	req.ActorID = actorID

	result, err := h.service.Cancel(r.Context(), id, &req)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAppointmentNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /appointments/{id}/cancel - Failed: id=%d, actor_id=%d, error=%v", id, actorID, err)
		} else {
			h.logger.Warn("PATCH /appointments/{id}/cancel - Rejected: id=%d, actor_id=%d, status=%d, error=%v", id, actorID, status, err)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/cancel - Appointment cancelled: id=%d, actor_id=%d", id, actorID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
