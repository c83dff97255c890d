package domain

import "time"

// Default configuration values
const (
	DefaultSlotDurationMinutes = 15
	DefaultMaxBookingsPerSlot  = 1
	DefaultLeadTime            = 24 * time.Hour
	DefaultNoShowGrace         = 30 * time.Minute
)

// Business validation constants
const (
	MinSlotDurationMinutes        = 5
	MaxSlotDurationMinutes        = 120
	MinAppointmentDurationMinutes = 5
	MaxAppointmentDurationMinutes = 240
	MinBookingsPerSlot            = 1
	MaxBookingsPerSlot            = 10
	MaxReasonLength               = 500
	MaxNotesLength                = 1000
	MaxCancellationReasonLength   = 500
)

// SystemActorID автор записей в истории статусов, сделанных самим сервисом (no-show sweep)
const SystemActorID int64 = 0

// DateFormat формат даты YYYY-MM-DD
const DateFormat = "2006-01-02"

// ActiveStatuses статусы, которые занимают время врача и пациента.
// Используется при проверке пересечений и генерации слотов
var ActiveStatuses = []AppointmentStatus{
	StatusPending,
	StatusConfirmed,
}
