package reschedule_appointment

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidAppointmentID = "некорректный ID записи"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgInvalidInterval      = "некорректный новый интервал записи"
	msgAppointmentNotFound  = "запись не найдена"
	msgUnauthorized         = "пользователь не определен"
)

type Handler struct {
	useCase  RescheduleAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle PATCH /api/v1/appointments/{id}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	id, err := handlers.PathInt64(r, "id")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(id, actorID, h.location)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid interval: %v", err)
		handlers.RespondBadRequest(w, msgInvalidInterval)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgAppointmentNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed: id=%d, actor_id=%d, error=%v", id, actorID, err)
		} else {
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Rejected: id=%d, actor_id=%d, status=%d, error=%v", id, actorID, status, err)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment rescheduled: id=%d, interval=%s", id, result.Appointment.Interval)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainAppointment(result.Appointment, h.location))
}
