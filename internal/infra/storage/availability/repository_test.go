package availability

import (
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func TestBuildUpsertQuery(t *testing.T) {
	a := &domain.DoctorAvailability{
		DoctorID:            4,
		AvailableDays:       []time.Weekday{time.Monday, time.Friday},
		SlotDurationMinutes: 20,
		MaxBookingsPerSlot:  1,
		ConsultationTypes:   []domain.ConsultationType{domain.ConsultationInClinic, domain.ConsultationOnline},
		UpdatedAt:           time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC),
	}

	query, args, err := buildUpsertQuery(a)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO doctor_availability")
	assert.Contains(t, query, "ON CONFLICT (doctor_id) DO UPDATE")
	assert.Contains(t, query, "RETURNING created_at, updated_at")
	assert.Contains(t, query, "consultation_types = EXCLUDED.consultation_types")
	require.Len(t, args, 6)
	assert.Equal(t, int64(4), args[0])
	assert.Equal(t, 20, args[2])
	assert.Equal(t, pq.Array([]string{"in_clinic", "online"}), args[4])
}

func TestBuildInsertWindowsQuery(t *testing.T) {
	windows := []domain.TimeWindow{
		{Start: "09:00", End: "12:00"},
		{Start: "14:00", End: "18:00"},
	}

	query, args, err := buildInsertWindowsQuery(4, windows)
	require.NoError(t, err)

	assert.Contains(t, query, "INSERT INTO doctor_availability_windows (doctor_id,position,start_time,end_time)")
	assert.Contains(t, query, "($1,$2,$3,$4),($5,$6,$7,$8)")
	assert.Equal(t, []interface{}{int64(4), 0, windows[0].Start, windows[0].End, int64(4), 1, windows[1].Start, windows[1].End}, args)
}

func TestWeekdayConversion(t *testing.T) {
	days := []time.Weekday{time.Sunday, time.Wednesday, time.Saturday}

	assert.Equal(t, []int64{0, 3, 6}, weekdaysToInts(days))
	assert.Equal(t, days, weekdaysFromInts([]int64{0, 3, 6}))
	assert.Equal(t, []time.Weekday{time.Monday}, weekdaysFromInts([]int64{1, 9, -1}))
}

func TestConsultationTypeConversion(t *testing.T) {
	offered := []domain.ConsultationType{domain.ConsultationOnline, domain.ConsultationHomeVisit}

	assert.Equal(t, []string{"online", "home_visit"}, consultationTypesToStrings(offered))
	assert.Equal(t, offered, consultationTypesFromStrings([]string{"online", "home_visit"}))
}
