package domain

import (
	"fmt"
	"time"
)

// transitions допустимые ребра автомата статусов.
// Терминальные статусы не имеют исходящих ребер
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// CanTransition проверяет, есть ли ребро from -> to
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NewAppointment создает запись в статусе pending с первой записью истории
func NewAppointment(doctorID, patientID int64, interval Interval, consultationType ConsultationType, reason, notes *string, createdBy int64, at time.Time) *Appointment {
	a := &Appointment{
		DoctorID:         doctorID,
		PatientID:        patientID,
		Interval:         interval,
		DurationMinutes:  interval.DurationMinutes(),
		Status:           StatusPending,
		ConsultationType: consultationType,
		Reason:           reason,
		Notes:            notes,
		CreatedAt:        at,
		UpdatedAt:        at,
	}
	a.appendHistory(StatusPending, createdBy, at, nil)
	return a
}

// Transition переводит запись в статус to и добавляет запись в историю.
// Проверки актора выполняются вызывающим кодом до вызова Transition
func (a *Appointment) Transition(to AppointmentStatus, actorID int64, at time.Time, notes *string) (StatusHistoryEntry, error) {
	if !CanTransition(a.Status, to) {
		return StatusHistoryEntry{}, fmt.Errorf("%w: cannot move appointment id=%d from %s to %s",
			ErrInvalidState, a.ID, a.Status, to)
	}

	a.Status = to
	a.UpdatedAt = at
	if to == StatusCancelled {
		cancelledAt := at
		a.CancelledAt = &cancelledAt
		a.CancellationReason = notes
	}

	return a.appendHistory(to, actorID, at, notes), nil
}

// Reschedule переносит запись на новый интервал без смены статуса.
// В историю пишется запись с текущим статусом и описанием переноса
func (a *Appointment) Reschedule(interval Interval, actorID int64, at time.Time) (StatusHistoryEntry, error) {
	if !a.IsActive() {
		return StatusHistoryEntry{}, fmt.Errorf("%w: cannot reschedule appointment id=%d in status %s",
			ErrInvalidState, a.ID, a.Status)
	}

	note := fmt.Sprintf("rescheduled from %s to %s", a.Interval, interval)
	a.Interval = interval
	a.DurationMinutes = interval.DurationMinutes()
	a.UpdatedAt = at

	return a.appendHistory(a.Status, actorID, at, &note), nil
}

func (a *Appointment) appendHistory(status AppointmentStatus, actorID int64, at time.Time, notes *string) StatusHistoryEntry {
	entry := StatusHistoryEntry{
		AppointmentID: a.ID,
		Status:        status,
		ChangedAt:     at,
		ChangedBy:     actorID,
		Notes:         notes,
	}
	a.History = append(a.History, entry)
	return entry
}
