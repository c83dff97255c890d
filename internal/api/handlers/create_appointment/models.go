package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	DoctorID         int64   `json:"doctorId" validate:"required,gt=0"`
	PatientID        int64   `json:"patientId,omitempty" validate:"gte=0"` // 0 = текущий пользователь
	Date             string  `json:"date" validate:"required"`             // "2026-10-15"
	StartTime        string  `json:"startTime" validate:"required"`        // "10:00"
	DurationMinutes  int     `json:"durationMinutes" validate:"required,gt=0"`
	ConsultationType string  `json:"consultationType,omitempty" validate:"omitempty,oneof=in_clinic online home_visit"`
	Reason           *string `json:"reason,omitempty"`
	Notes            *string `json:"notes,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actorID int64) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	patientID := r.PatientID
	if patientID == 0 {
		patientID = actorID
	}

	return &createAppointment.Request{
		ActorID:          actorID,
		DoctorID:         r.DoctorID,
		PatientID:        patientID,
		Date:             date,
		StartTime:        startTime,
		DurationMinutes:  r.DurationMinutes,
		ConsultationType: domain.ConsultationType(r.ConsultationType),
		Reason:           r.Reason,
		Notes:            r.Notes,
	}, nil
}
