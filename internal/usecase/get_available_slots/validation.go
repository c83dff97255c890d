package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные запроса
func validateRequest(req *Request) error {
	if req.DoctorID <= 0 {
		return fmt.Errorf("%w: doctorID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// 0 означает длительность из расписания врача
	if req.DurationMinutes != 0 &&
		(req.DurationMinutes < domain.MinAppointmentDurationMinutes || req.DurationMinutes > domain.MaxAppointmentDurationMinutes) {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinAppointmentDurationMinutes, domain.MaxAppointmentDurationMinutes)
	}

	return nil
}
