package create_appointment

import (
	"net/http"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateTime    = "некорректная дата или время, ожидается YYYY-MM-DD и HH:MM"
	msgUnauthorized       = "пользователь не определен"
	msgNotFound           = "врач или пациент не найден"
)

type Handler struct {
	useCase  CreateAppointmentUseCase
	location *time.Location
	logger   Logger
}

func NewHandler(useCase CreateAppointmentUseCase, location *time.Location, logger Logger) *Handler {
	return &Handler{
		useCase:  useCase,
		location: location,
		logger:   logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(actorID)
	if err != nil {
		h.logger.Warn("POST /appointments - Failed to parse date/time: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateTime)
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		status := handlers.RespondDomainError(w, err, msgNotFound)
		if status == http.StatusInternalServerError {
			h.logger.Error("POST /appointments - Failed to create appointment: doctor_id=%d, patient_id=%d, error=%v",
				useCaseReq.DoctorID, useCaseReq.PatientID, err)
		} else {
			h.logger.Warn("POST /appointments - Rejected: doctor_id=%d, patient_id=%d, status=%d, error=%v",
				useCaseReq.DoctorID, useCaseReq.PatientID, status, err)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created: id=%d, doctor_id=%d, patient_id=%d",
		result.Appointment.ID, result.Appointment.DoctorID, result.Appointment.PatientID)
	handlers.RespondJSON(w, http.StatusCreated, models.FromDomainAppointment(result.Appointment, h.location))
}
