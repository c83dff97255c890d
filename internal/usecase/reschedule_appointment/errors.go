package reschedule_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("reschedule_appointment: %w: invalid input data", domain.ErrValidation)

	// ErrTooLateToBook возвращается, когда до нового начала приема меньше минимального времени
	ErrTooLateToBook = fmt.Errorf("reschedule_appointment: %w: too late to book", domain.ErrValidation)

	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = fmt.Errorf("reschedule_appointment: %w: appointment", domain.ErrNotFound)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("reschedule_appointment: %w", domain.ErrInternal)
)
