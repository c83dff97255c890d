package appointment

import (
	"errors"
	"fmt"

	"github.com/lib/pq"
)

var (
	// ErrAppointmentNotFound возвращается, когда запись не найдена
	ErrAppointmentNotFound = errors.New("appointment.repository: appointment not found")

	// ErrSlotTaken возвращается, когда интервал пересекается с активной записью (ограничение EXCLUDE)
	ErrSlotTaken = errors.New("appointment.repository: slot taken")

	// ErrDoctorSlotTaken пересечение по врачу
	ErrDoctorSlotTaken = fmt.Errorf("%w: doctor", ErrSlotTaken)

	// ErrPatientSlotTaken пересечение по пациенту
	ErrPatientSlotTaken = fmt.Errorf("%w: patient", ErrSlotTaken)

	// ErrSerialization возвращается, когда сериализуемая транзакция не смогла зафиксироваться
	ErrSerialization = errors.New("appointment.repository: serialization failure")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("appointment.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("appointment.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("appointment.repository: failed to scan row")
)

// Коды ошибок PostgreSQL
const (
	pqExclusionViolation   = "23P01"
	pqSerializationFailure = "40001"
	pqDeadlockDetected     = "40P01"
)

// Имена ограничений из migrations/001_init.sql
const (
	doctorOverlapConstraint  = "appointments_doctor_no_overlap"
	patientOverlapConstraint = "appointments_patient_no_overlap"
)

// ClassifyError переводит ошибку PostgreSQL в ошибку репозитория.
// Возвращает nil, если ошибка не распознана
func ClassifyError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}

	switch pqErr.Code {
	case pqExclusionViolation:
		switch pqErr.Constraint {
		case patientOverlapConstraint:
			return ErrPatientSlotTaken
		case doctorOverlapConstraint:
			return ErrDoctorSlotTaken
		default:
			return ErrSlotTaken
		}
	case pqSerializationFailure, pqDeadlockDetected:
		return fmt.Errorf("%w: %v", ErrSerialization, pqErr.Message)
	}
	return nil
}
