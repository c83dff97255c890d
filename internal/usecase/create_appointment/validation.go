package create_appointment

import (
	"fmt"
	"unicode/utf8"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.DoctorID <= 0 {
		return fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}

	if req.PatientID <= 0 {
		return fmt.Errorf("%w: patientID must be positive", ErrInvalidInput)
	}

	if req.DoctorID == req.PatientID {
		return fmt.Errorf("%w: doctor and patient must be different users", ErrInvalidInput)
	}

	if req.ActorID < 0 {
		return fmt.Errorf("%w: actorID must not be negative", ErrInvalidInput)
	}

	// Проверяем, что дата не является нулевой
	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Проверяем, что время начала указано
	if req.StartTime.IsZero() {
		return fmt.Errorf("%w: startTime is required", ErrInvalidInput)
	}

	// Валидируем формат времени
	if err := req.StartTime.Validate(); err != nil {
		return fmt.Errorf("%w: invalid startTime format: %v", ErrInvalidInput, err)
	}

	if req.DurationMinutes < domain.MinAppointmentDurationMinutes || req.DurationMinutes > domain.MaxAppointmentDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinAppointmentDurationMinutes, domain.MaxAppointmentDurationMinutes)
	}

	if req.ConsultationType != "" && !req.ConsultationType.IsValid() {
		return fmt.Errorf("%w: unknown consultation type %q", ErrInvalidInput, req.ConsultationType)
	}

	if req.Reason != nil && utf8.RuneCountInString(*req.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason must be at most %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	if req.Notes != nil && utf8.RuneCountInString(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes must be at most %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}

	return nil
}
