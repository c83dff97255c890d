package add_admin_notes

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

// Handle PATCH /api/v1/appointments/{id}/notes
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/notes - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req models.AdminNotesRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/notes - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.ActorID = actorID

	result, err := h.service.AddAdminNotes(r.Context(), id, &req)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAppointmentNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /appointments/{id}/notes - Failed: id=%d, error=%v", id, err)
		} else {
			h.logger.Warn("PATCH /appointments/{id}/notes - Rejected: id=%d, actor_id=%d, status=%d", id, actorID, status)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/notes - Admin notes saved: id=%d", id)
	handlers.RespondJSON(w, http.StatusOK, result)
}
