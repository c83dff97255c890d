package domain

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusNoShow    AppointmentStatus = "no_show"
)

// IsValid returns true if the status is one of the known statuses
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActive returns true if an appointment in this status occupies the doctor's and patient's time
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal returns true if no transition leaves this status
func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

// ConsultationType represents how the consultation takes place
type ConsultationType string

const (
	ConsultationOnline    ConsultationType = "online"
	ConsultationInClinic  ConsultationType = "in_clinic"
	ConsultationHomeVisit ConsultationType = "home_visit"
)

// IsValid returns true if the consultation type is known
func (c ConsultationType) IsValid() bool {
	switch c {
	case ConsultationOnline, ConsultationInClinic, ConsultationHomeVisit:
		return true
	}
	return false
}

// StatusHistoryEntry is one record of the append-only status log
type StatusHistoryEntry struct {
	ID            int64
	AppointmentID int64
	Status        AppointmentStatus
	ChangedAt     time.Time
	ChangedBy     int64 // 0 = system
	Notes         *string
}

// Appointment represents a patient's appointment with a doctor
type Appointment struct {
	ID               int64
	DoctorID         int64
	PatientID        int64
	Interval         Interval
	DurationMinutes  int
	Status           AppointmentStatus
	ConsultationType ConsultationType
	Reason           *string
	Notes            *string
	AdminNotes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	History []StatusHistoryEntry

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the appointment is pending or confirmed
func (a *Appointment) IsActive() bool {
	return a.Status.IsActive()
}

// IsTerminal returns true if the appointment is completed, cancelled or marked as no-show
func (a *Appointment) IsTerminal() bool {
	return a.Status.IsTerminal()
}

// IsParticipant returns true if the user is the appointment's patient or doctor
func (a *Appointment) IsParticipant(userID int64) bool {
	return userID != 0 && (a.PatientID == userID || a.DoctorID == userID)
}

// StartAt returns the absolute start time in the operating location
func (a *Appointment) StartAt(loc *time.Location) time.Time {
	return a.Interval.StartAt(loc)
}

// EndAt returns the absolute end time in the operating location
func (a *Appointment) EndAt(loc *time.Location) time.Time {
	return a.Interval.EndAt(loc)
}

// AppointmentsFilter фильтр для получения списка записей
type AppointmentsFilter struct {
	DoctorID  *int64             // Фильтр по врачу (опционально)
	PatientID *int64             // Фильтр по пациенту (опционально)
	Date      *time.Time         // Конкретная дата (опционально)
	StartDate *time.Time         // Начало периода (опционально)
	EndDate   *time.Time         // Конец периода (опционально)
	Status    *AppointmentStatus // Фильтр по статусу (опционально)
	Limit     uint64             // 0 = без ограничения
	Offset    uint64
}
