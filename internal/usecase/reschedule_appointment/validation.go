package reschedule_appointment

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// validateRequest валидирует входные данные и строит новый интервал
func validateRequest(req *Request, loc *time.Location) (domain.Interval, error) {
	if req.AppointmentID <= 0 {
		return domain.Interval{}, fmt.Errorf("%w: appointmentID must be positive", ErrInvalidInput)
	}

	if req.NewStart.IsZero() || req.NewEnd.IsZero() {
		return domain.Interval{}, fmt.Errorf("%w: newStart and newEnd are required", ErrInvalidInput)
	}

	interval, err := domain.IntervalFromRange(req.NewStart, req.NewEnd, loc)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	duration := interval.DurationMinutes()
	if duration < domain.MinAppointmentDurationMinutes || duration > domain.MaxAppointmentDurationMinutes {
		return domain.Interval{}, fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinAppointmentDurationMinutes, domain.MaxAppointmentDurationMinutes)
	}

	return interval, nil
}
