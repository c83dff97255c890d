package list_appointments

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
)

const (
	msgInvalidQuery = "некорректные параметры фильтра"
	msgUnauthorized = "пользователь не определен"
	msgNotFound     = "пользователь не найден"
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

// Handle GET /api/v1/appointments
// Query params: status, date, startDate, endDate, doctorId, patientId, limit, offset
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	req, err := ParseListRequest(r.URL.Query(), actorID)
	if err != nil {
		h.logger.Warn("GET /appointments - Invalid query: %v", err)
		handlers.RespondBadRequest(w, msgInvalidQuery+": "+err.Error())
		return
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("GET /appointments - Failed to list appointments: actor_id=%d, error=%v", actorID, err)
		} else {
			h.logger.Warn("GET /appointments - Rejected: actor_id=%d, status=%d, error=%v", actorID, status, err)
		}
		return
	}

	h.logger.Info("GET /appointments - Appointments retrieved: actor_id=%d, count=%d", actorID, len(result.Appointments))
	handlers.RespondJSON(w, http.StatusOK, result)
}
