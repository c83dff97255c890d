package appointment

import (
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
)

// Переиспользуем интерфейсы из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor
type TxExecutor = dbmetrics.TxExecutor

const (
	appointmentsTable = "appointments"
	historyTable      = "appointment_status_history"
)

// appointmentColumns порядок колонок совпадает с порядком полей в scanAppointment
var appointmentColumns = []string{
	"id",
	"doctor_id",
	"patient_id",
	"appointment_date",
	"start_time",
	"end_time",
	"duration_minutes",
	"status",
	"consultation_type",
	"reason",
	"notes",
	"admin_notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

var historyColumns = []string{
	"id",
	"appointment_id",
	"status",
	"changed_at",
	"changed_by",
	"notes",
}
