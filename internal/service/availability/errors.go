package availability

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrAvailabilityNotFound возвращается, когда у врача нет расписания
	ErrAvailabilityNotFound = fmt.Errorf("availability service: %w: availability", domain.ErrNotFound)

	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = fmt.Errorf("availability service: %w: doctor", domain.ErrNotFound)

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = fmt.Errorf("availability service: %w: access denied", domain.ErrForbidden)

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("availability service: %w: invalid input data", domain.ErrValidation)

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = fmt.Errorf("availability service: %w", domain.ErrInternal)
)
