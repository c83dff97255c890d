package create_appointment

import (
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = fmt.Errorf("create_appointment: %w: invalid input data", domain.ErrValidation)

	// ErrTooLateToBook возвращается, когда до начала приема меньше минимального времени (lead time)
	ErrTooLateToBook = fmt.Errorf("create_appointment: %w: too late to book", domain.ErrValidation)

	// ErrConsultationTypeNotOffered возвращается, когда врач не ведет прием выбранного типа
	ErrConsultationTypeNotOffered = fmt.Errorf("create_appointment: %w: consultation type is not offered by the doctor", domain.ErrValidation)

	// ErrDoctorNotFound возвращается, когда врач не найден или пользователь не является врачом
	ErrDoctorNotFound = fmt.Errorf("create_appointment: %w: doctor", domain.ErrNotFound)

	// ErrPatientNotFound возвращается, когда пациент не найден или пользователь не является пациентом
	ErrPatientNotFound = fmt.Errorf("create_appointment: %w: patient", domain.ErrNotFound)

	// ErrForbidden возвращается, когда актор записывает другого пациента, не будучи администратором
	ErrForbidden = fmt.Errorf("create_appointment: %w", domain.ErrForbidden)

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = fmt.Errorf("create_appointment: %w", domain.ErrInternal)
)
