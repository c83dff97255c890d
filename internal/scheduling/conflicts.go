package scheduling

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentReader читает активные записи врача и пациента за дату
type AppointmentReader interface {
	ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error)
	ListActiveByPatientAndDate(ctx context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error)
}

// Proposal предлагаемый интервал записи.
// ExcludeID - id переносимой записи (0 при создании)
type Proposal struct {
	DoctorID  int64
	PatientID int64
	Interval  domain.Interval
	ExcludeID int64
}

// ConflictChecker проверяет пересечение интервала с активными записями врача и пациента.
// Проверка только читает данные и сама по себе не дает эксклюзивности
// при конкурентных вызовах: вызывающий код держит блокировки и транзакцию.
type ConflictChecker struct {
	repo AppointmentReader
}

// NewConflictChecker создает новый ConflictChecker
func NewConflictChecker(repo AppointmentReader) *ConflictChecker {
	return &ConflictChecker{repo: repo}
}

// Check возвращает *domain.ConflictError при пересечении на стороне врача или пациента.
// Сначала проверяется врач, затем пациент (по всем врачам)
func (c *ConflictChecker) Check(ctx context.Context, p Proposal) error {
	date := domain.DateOnly(p.Interval.Date)

	doctorAppointments, err := c.repo.ListActiveByDoctorAndDate(ctx, p.DoctorID, date)
	if err != nil {
		return fmt.Errorf("%w: failed to list doctor appointments: %v", domain.ErrInternal, err)
	}
	if conflict := FindConflict(doctorAppointments, p.Interval, p.ExcludeID); conflict != nil {
		return domain.NewDoctorConflict(conflict.ID)
	}

	patientAppointments, err := c.repo.ListActiveByPatientAndDate(ctx, p.PatientID, date)
	if err != nil {
		return fmt.Errorf("%w: failed to list patient appointments: %v", domain.ErrInternal, err)
	}
	if conflict := FindConflict(patientAppointments, p.Interval, p.ExcludeID); conflict != nil {
		return domain.NewPatientConflict(conflict.ID)
	}

	return nil
}

// FindConflict возвращает первую активную запись, пересекающуюся с интервалом, или nil
func FindConflict(appointments []*domain.Appointment, interval domain.Interval, excludeID int64) *domain.Appointment {
	for _, a := range appointments {
		if excludeID != 0 && a.ID == excludeID {
			continue
		}
		if !a.IsActive() {
			continue
		}
		if a.Interval.Overlaps(interval) {
			return a
		}
	}
	return nil
}

// DoctorLockKey ключ блокировки записей врача
func DoctorLockKey(doctorID int64) string {
	return "doctor:" + strconv.FormatInt(doctorID, 10)
}

// PatientLockKey ключ блокировки записей пациента
func PatientLockKey(patientID int64) string {
	return "patient:" + strconv.FormatInt(patientID, 10)
}
