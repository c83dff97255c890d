package domain

import (
	"errors"
	"fmt"
)

// Таксономия ошибок движка бронирования.
// Ошибки пакетов usecase/service оборачивают эти значения, поэтому
// вызывающий код может проверять их через errors.Is
var (
	// ErrValidation некорректные входные данные, интервал с start >= end, нарушение lead time
	ErrValidation = errors.New("validation error")

	// ErrConflict интервал пересекается с активной записью врача или пациента
	ErrConflict = errors.New("conflict")

	// ErrNotFound неизвестный врач, пациент или запись
	ErrNotFound = errors.New("not found")

	// ErrForbidden у актора нет роли или владения, необходимых для действия
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidState переход недопустим из текущего статуса
	ErrInvalidState = errors.New("invalid state")

	// ErrInternal непредвиденная ошибка хранилища или интеграции
	ErrInternal = errors.New("internal error")
)

// ConflictKind сторона, на которой найдено пересечение
type ConflictKind string

const (
	DoctorConflict  ConflictKind = "doctor_conflict"
	PatientConflict ConflictKind = "patient_conflict"
)

// ConflictError пересечение с конкретной активной записью.
// AppointmentID может быть 0, если пересечение обнаружено ограничением БД
type ConflictError struct {
	Kind          ConflictKind
	AppointmentID int64
}

func (e *ConflictError) Error() string {
	if e.AppointmentID == 0 {
		return fmt.Sprintf("%s: %s", ErrConflict, e.Kind)
	}
	return fmt.Sprintf("%s: %s with appointment id=%d", ErrConflict, e.Kind, e.AppointmentID)
}

// Is позволяет проверять errors.Is(err, ErrConflict)
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewDoctorConflict создает ошибку пересечения на стороне врача
func NewDoctorConflict(appointmentID int64) *ConflictError {
	return &ConflictError{Kind: DoctorConflict, AppointmentID: appointmentID}
}

// NewPatientConflict создает ошибку пересечения на стороне пациента
func NewPatientConflict(appointmentID int64) *ConflictError {
	return &ConflictError{Kind: PatientConflict, AppointmentID: appointmentID}
}

// AsConflict достает *ConflictError из цепочки ошибок
func AsConflict(err error) (*ConflictError, bool) {
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
