package appointment

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с записями на прием
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория записей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Create создает запись и ее историю статусов.
// Вызывать внутри транзакции: вставка записи и истории должна быть атомарной.
// Пересечение с активной записью, пойманное ограничением EXCLUDE, возвращается как ErrDoctorSlotTaken / ErrPatientSlotTaken
func (r *Repository) Create(ctx context.Context, appointment *domain.Appointment) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildInsertQuery(appointment)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&appointment.ID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if classified := ClassifyError(err); classified != nil {
			return nil, classified
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	appointment.CreatedAt = createdAt.Time
	appointment.UpdatedAt = updatedAt.Time

	for i := range appointment.History {
		appointment.History[i].AppointmentID = appointment.ID
		if err := r.insertHistory(ctx, &appointment.History[i]); err != nil {
			return nil, err
		}
	}

	return appointment, nil
}

// GetByID получает запись по ID вместе с историей статусов.
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildGetByIDQuery(id, dbmetrics.IsInTransaction(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	appointment, err := scanAppointment(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAppointmentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan appointment: %v", ErrScanRow, err)
	}

	history, err := r.ListHistory(ctx, id)
	if err != nil {
		return nil, err
	}
	appointment.History = history

	return appointment, nil
}

// List получает записи по фильтру (без истории статусов)
func (r *Repository) List(ctx context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildListQuery(filter)
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// CountByFilter возвращает число записей по фильтру (Limit и Offset не учитываются)
func (r *Repository) CountByFilter(ctx context.Context, filter domain.AppointmentsFilter) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildCountQuery(filter)
	if err != nil {
		return 0, fmt.Errorf("%w: CountByFilter - build count query: %v", ErrBuildQuery, err)
	}

	var total int64
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("%w: CountByFilter - scan total: %v", ErrScanRow, err)
	}
	return total, nil
}

// ListActiveByDoctorAndDate получает активные (pending, confirmed) записи врача на дату.
// Внутри транзакции строки блокируются (FOR UPDATE)
func (r *Repository) ListActiveByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.listActiveByDate(ctx, "doctor_id", doctorID, date)
}

// ListActiveByPatientAndDate получает активные записи пациента на дату (у любых врачей)
func (r *Repository) ListActiveByPatientAndDate(ctx context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error) {
	return r.listActiveByDate(ctx, "patient_id", patientID, date)
}

func (r *Repository) listActiveByDate(ctx context.Context, column string, id int64, date time.Time) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildListActiveByDateQuery(column, id, date, dbmetrics.IsInTransaction(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: listActiveByDate(%s) - build select query: %v", ErrBuildQuery, column, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listActiveByDate(%s) - execute query: %v", ErrExecQuery, column, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// ListOverdueConfirmed получает подтвержденные записи, окончившиеся раньше cutoff.
// cutoff сравнивается с локальным временем записи в операционной таймзоне loc
func (r *Repository) ListOverdueConfirmed(ctx context.Context, cutoff time.Time, loc *time.Location) ([]*domain.Appointment, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildOverdueQuery(cutoff, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverdueConfirmed - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListOverdueConfirmed - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanAppointments(rows)
}

// SaveTransition сохраняет новый статус записи и добавляет запись истории
func (r *Repository) SaveTransition(ctx context.Context, appointment *domain.Appointment, entry domain.StatusHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(appointmentsTable).
		Set("status", appointment.Status).
		Set("cancellation_reason", appointment.CancellationReason).
		Set("cancelled_at", appointment.CancelledAt).
		Set("updated_at", appointment.UpdatedAt).
		Where(squirrel.Eq{"id": appointment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveTransition - build update query: %v", ErrBuildQuery, err)
	}

	if err := execAffectingOne(ctx, executor, "SaveTransition", query, args); err != nil {
		return err
	}

	entry.AppointmentID = appointment.ID
	return r.insertHistory(ctx, &entry)
}

// SaveInterval сохраняет новый интервал записи и добавляет запись истории.
// Пересечение, пойманное ограничением EXCLUDE, возвращается как ErrDoctorSlotTaken / ErrPatientSlotTaken
func (r *Repository) SaveInterval(ctx context.Context, appointment *domain.Appointment, entry domain.StatusHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(appointmentsTable).
		Set("appointment_date", appointment.Interval.Date).
		Set("start_time", appointment.Interval.Start).
		Set("end_time", appointment.Interval.End).
		Set("duration_minutes", appointment.DurationMinutes).
		Set("updated_at", appointment.UpdatedAt).
		Where(squirrel.Eq{"id": appointment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: SaveInterval - build update query: %v", ErrBuildQuery, err)
	}

	if err := execAffectingOne(ctx, executor, "SaveInterval", query, args); err != nil {
		return err
	}

	entry.AppointmentID = appointment.ID
	return r.insertHistory(ctx, &entry)
}

// UpdateAdminNotes обновляет административные заметки (допустимо в любом статусе)
func (r *Repository) UpdateAdminNotes(ctx context.Context, id int64, notes *string, updatedAt time.Time) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update(appointmentsTable).
		Set("admin_notes", notes).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: UpdateAdminNotes - build update query: %v", ErrBuildQuery, err)
	}

	return execAffectingOne(ctx, executor, "UpdateAdminNotes", query, args)
}

// ListHistory получает историю статусов записи в хронологическом порядке
func (r *Repository) ListHistory(ctx context.Context, appointmentID int64) ([]domain.StatusHistoryEntry, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(historyColumns...).
		From(historyTable).
		Where(squirrel.Eq{"appointment_id": appointmentID}).
		OrderBy("changed_at ASC, id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListHistory - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	history := make([]domain.StatusHistoryEntry, 0)
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.AppointmentID,
			&entry.Status,
			&entry.ChangedAt,
			&entry.ChangedBy,
			&entry.Notes,
		); err != nil {
			return nil, fmt.Errorf("%w: ListHistory - scan row: %v", ErrScanRow, err)
		}
		history = append(history, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListHistory - rows error: %v", ErrScanRow, err)
	}

	return history, nil
}

func (r *Repository) insertHistory(ctx context.Context, entry *domain.StatusHistoryEntry) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(historyTable).
		Columns("appointment_id", "status", "changed_at", "changed_by", "notes").
		Values(entry.AppointmentID, entry.Status, entry.ChangedAt, entry.ChangedBy, entry.Notes).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: insertHistory - build insert query: %v", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("%w: insertHistory - execute insert: %v", ErrExecQuery, err)
	}
	return nil
}

func execAffectingOne(ctx context.Context, executor DBExecutor, op, query string, args []interface{}) error {
	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		if classified := ClassifyError(err); classified != nil {
			return classified
		}
		return fmt.Errorf("%w: %s - execute update: %v", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %v", ErrExecQuery, op, err)
	}
	if rowsAffected == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

func buildInsertQuery(a *domain.Appointment) (string, []interface{}, error) {
	return psqlbuilder.Insert(appointmentsTable).
		Columns(
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
			"created_at",
			"updated_at",
		).
		Values(
			a.DoctorID,
			a.PatientID,
			a.Interval.Date,
			a.Interval.Start,
			a.Interval.End,
			a.DurationMinutes,
			a.Status,
			a.ConsultationType,
			a.Reason,
			a.Notes,
			a.CreatedAt,
			a.UpdatedAt,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
}

func buildGetByIDQuery(id int64, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(squirrel.Eq{"id": id})

	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	return builder.ToSql()
}

func buildListActiveByDateQuery(column string, id int64, date time.Time, forUpdate bool) (string, []interface{}, error) {
	builder := psqlbuilder.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(squirrel.Eq{column: id}).
		Where(squirrel.Eq{"appointment_date": domain.DateOnly(date)}).
		Where(squirrel.Eq{"status": statusStrings(domain.ActiveStatuses)}).
		OrderBy("start_time ASC")

	// Блокируем строки внутри транзакции, чтобы параллельные создание и перенос
	// на ту же дату выстраивались в очередь
	if forUpdate {
		builder = builder.Suffix("FOR UPDATE")
	}
	return builder.ToSql()
}

func buildListQuery(filter domain.AppointmentsFilter) (string, []interface{}, error) {
	builder := applyListFilter(psqlbuilder.Select(appointmentColumns...).From(appointmentsTable), filter).
		OrderBy("appointment_date ASC", "start_time ASC", "id ASC")

	if filter.Limit > 0 {
		builder = builder.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		builder = builder.Offset(filter.Offset)
	}

	return builder.ToSql()
}

// buildCountQuery использует те же условия, что и buildListQuery, без пагинации
func buildCountQuery(filter domain.AppointmentsFilter) (string, []interface{}, error) {
	return applyListFilter(psqlbuilder.Select("COUNT(*)").From(appointmentsTable), filter).ToSql()
}

func applyListFilter(builder squirrel.SelectBuilder, filter domain.AppointmentsFilter) squirrel.SelectBuilder {
	if filter.DoctorID != nil {
		builder = builder.Where(squirrel.Eq{"doctor_id": *filter.DoctorID})
	}
	if filter.PatientID != nil {
		builder = builder.Where(squirrel.Eq{"patient_id": *filter.PatientID})
	}
	if filter.Date != nil {
		builder = builder.Where(squirrel.Eq{"appointment_date": domain.DateOnly(*filter.Date)})
	}
	if filter.StartDate != nil {
		builder = builder.Where(squirrel.GtOrEq{"appointment_date": domain.DateOnly(*filter.StartDate)})
	}
	if filter.EndDate != nil {
		builder = builder.Where(squirrel.LtOrEq{"appointment_date": domain.DateOnly(*filter.EndDate)})
	}
	if filter.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": *filter.Status})
	}
	return builder
}

func buildOverdueQuery(cutoff time.Time, loc *time.Location) (string, []interface{}, error) {
	return psqlbuilder.Select(appointmentColumns...).
		From(appointmentsTable).
		Where(squirrel.Eq{"status": domain.StatusConfirmed}).
		Where(squirrel.Lt{"end_at": wallClock(cutoff, loc)}).
		OrderBy("end_at ASC").
		ToSql()
}

// wallClock переводит момент времени в "настенное" время операционной таймзоны.
// Колонки start_at/end_at имеют тип timestamp without time zone
func wallClock(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), local.Minute(), local.Second(), 0, time.UTC)
}

func statusStrings(statuses []domain.AppointmentStatus) []string {
	result := make([]string, len(statuses))
	for i, s := range statuses {
		result[i] = string(s)
	}
	return result
}

func scanAppointment(row rowScanner) (*domain.Appointment, error) {
	var a domain.Appointment
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Interval.Date,
		&a.Interval.Start,
		&a.Interval.End,
		&a.DurationMinutes,
		&a.Status,
		&a.ConsultationType,
		&a.Reason,
		&a.Notes,
		&a.AdminNotes,
		&a.CancellationReason,
		&a.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	a.Interval.Date = domain.DateOnly(a.Interval.Date)
	a.CreatedAt = createdAt.Time
	a.UpdatedAt = updatedAt.Time

	return &a, nil
}

func scanAppointments(rows *sql.Rows) ([]*domain.Appointment, error) {
	appointments := make([]*domain.Appointment, 0)

	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanAppointments - scan row: %v", ErrScanRow, err)
		}
		appointments = append(appointments, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: scanAppointments - rows error: %v", ErrScanRow, err)
	}

	return appointments, nil
}
