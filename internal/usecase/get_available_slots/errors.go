package get_available_slots

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrAvailabilityNotFound возвращается, когда у врача нет расписания
	ErrAvailabilityNotFound = fmt.Errorf("get_available_slots: %w: doctor availability", domain.ErrNotFound)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("get_available_slots: %w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("get_available_slots: %w", domain.ErrInternal)
)
