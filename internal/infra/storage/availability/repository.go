package availability

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

// Переиспользуем интерфейс из dbmetrics для работы с БД
type DBExecutor = dbmetrics.DBExecutor

const (
	availabilityTable = "doctor_availability"
	windowsTable      = "doctor_availability_windows"
)

// Repository репозиторий расписаний врачей
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписаний
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetByDoctorID получает расписание врача вместе с окнами приема
func (r *Repository) GetByDoctorID(ctx context.Context, doctorID int64) (*domain.DoctorAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"doctor_id",
		"available_days",
		"slot_duration_minutes",
		"max_bookings_per_slot",
		"consultation_types",
		"created_at",
		"updated_at",
	).
		From(availabilityTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorID - build select query: %v", ErrBuildQuery, err)
	}

	var availability domain.DoctorAvailability
	var days pq.Int64Array
	var consultationTypes pq.StringArray
	var createdAt, updatedAt sql.NullTime

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&availability.DoctorID,
		&days,
		&availability.SlotDurationMinutes,
		&availability.MaxBookingsPerSlot,
		&consultationTypes,
		&createdAt,
		&updatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAvailabilityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByDoctorID - scan availability: %v", ErrScanRow, err)
	}

	availability.AvailableDays = weekdaysFromInts(days)
	availability.ConsultationTypes = consultationTypesFromStrings(consultationTypes)
	availability.CreatedAt = createdAt.Time
	availability.UpdatedAt = updatedAt.Time

	windows, err := r.listWindows(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	availability.Windows = windows

	return &availability, nil
}

// Upsert создает или заменяет расписание врача целиком.
// Вызывать внутри транзакции: окна заменяются удалением и вставкой
func (r *Repository) Upsert(ctx context.Context, availability *domain.DoctorAvailability) (*domain.DoctorAvailability, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := buildUpsertQuery(availability)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	if err := executor.QueryRowContext(ctx, query, args...).Scan(&createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: Upsert - execute insert: %v", ErrExecQuery, err)
	}
	availability.CreatedAt = createdAt.Time
	availability.UpdatedAt = updatedAt.Time

	deleteQuery, deleteArgs, err := psqlbuilder.Delete(windowsTable).
		Where(squirrel.Eq{"doctor_id": availability.DoctorID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build delete windows query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
		return nil, fmt.Errorf("%w: Upsert - delete windows: %v", ErrExecQuery, err)
	}

	if len(availability.Windows) == 0 {
		return availability, nil
	}

	insertQuery, insertArgs, err := buildInsertWindowsQuery(availability.DoctorID, availability.Windows)
	if err != nil {
		return nil, fmt.Errorf("%w: Upsert - build insert windows query: %v", ErrBuildQuery, err)
	}
	if _, err := executor.ExecContext(ctx, insertQuery, insertArgs...); err != nil {
		return nil, fmt.Errorf("%w: Upsert - insert windows: %v", ErrExecQuery, err)
	}

	return availability, nil
}

func (r *Repository) listWindows(ctx context.Context, doctorID int64) ([]domain.TimeWindow, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("start_time", "end_time").
		From(windowsTable).
		Where(squirrel.Eq{"doctor_id": doctorID}).
		OrderBy("position ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: listWindows - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: listWindows - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]domain.TimeWindow, 0)
	for rows.Next() {
		var w domain.TimeWindow
		if err := rows.Scan(&w.Start, &w.End); err != nil {
			return nil, fmt.Errorf("%w: listWindows - scan row: %v", ErrScanRow, err)
		}
		windows = append(windows, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: listWindows - rows error: %v", ErrScanRow, err)
	}

	return windows, nil
}

func buildUpsertQuery(a *domain.DoctorAvailability) (string, []interface{}, error) {
	now := a.UpdatedAt
	if now.IsZero() {
		now = time.Now()
	}

	return psqlbuilder.Insert(availabilityTable).
		Columns("doctor_id", "available_days", "slot_duration_minutes", "max_bookings_per_slot", "consultation_types", "updated_at").
		Values(a.DoctorID, pq.Array(weekdaysToInts(a.AvailableDays)), a.SlotDurationMinutes, a.MaxBookingsPerSlot,
			pq.Array(consultationTypesToStrings(a.ConsultationTypes)), now).
		Suffix(`ON CONFLICT (doctor_id) DO UPDATE SET
			available_days = EXCLUDED.available_days,
			slot_duration_minutes = EXCLUDED.slot_duration_minutes,
			max_bookings_per_slot = EXCLUDED.max_bookings_per_slot,
			consultation_types = EXCLUDED.consultation_types,
			updated_at = EXCLUDED.updated_at
			RETURNING created_at, updated_at`).
		ToSql()
}

func buildInsertWindowsQuery(doctorID int64, windows []domain.TimeWindow) (string, []interface{}, error) {
	builder := psqlbuilder.Insert(windowsTable).
		Columns("doctor_id", "position", "start_time", "end_time")

	for i, w := range windows {
		builder = builder.Values(doctorID, i, w.Start, w.End)
	}
	return builder.ToSql()
}

func weekdaysToInts(days []time.Weekday) []int64 {
	result := make([]int64, len(days))
	for i, d := range days {
		result[i] = int64(d)
	}
	return result
}

func weekdaysFromInts(days []int64) []time.Weekday {
	result := make([]time.Weekday, 0, len(days))
	for _, d := range days {
		if d >= int64(time.Sunday) && d <= int64(time.Saturday) {
			result = append(result, time.Weekday(d))
		}
	}
	return result
}

func consultationTypesToStrings(offered []domain.ConsultationType) []string {
	result := make([]string, len(offered))
	for i, t := range offered {
		result[i] = string(t)
	}
	return result
}

func consultationTypesFromStrings(values []string) []domain.ConsultationType {
	result := make([]domain.ConsultationType, 0, len(values))
	for _, v := range values {
		result = append(result, domain.ConsultationType(v))
	}
	return result
}
