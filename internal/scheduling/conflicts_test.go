package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeReader struct {
	appointments []*domain.Appointment
	err          error
}

func (f *fakeReader) list(match func(a *domain.Appointment) bool, date time.Time) ([]*domain.Appointment, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*domain.Appointment
	for _, a := range f.appointments {
		if match(a) && a.IsActive() && a.Interval.Date.Equal(date) {
			result = append(result, a)
		}
	}
	return result, nil
}

func (f *fakeReader) ListActiveByDoctorAndDate(_ context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error) {
	return f.list(func(a *domain.Appointment) bool { return a.DoctorID == doctorID }, date)
}

func (f *fakeReader) ListActiveByPatientAndDate(_ context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error) {
	return f.list(func(a *domain.Appointment) bool { return a.PatientID == patientID }, date)
}

func appt(id, doctorID, patientID int64, start, end types.TimeString, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:        id,
		DoctorID:  doctorID,
		PatientID: patientID,
		Interval:  domain.Interval{Date: nextMonday, Start: start, End: end},
		Status:    status,
	}
}

func proposal(doctorID, patientID int64, start, end types.TimeString) Proposal {
	return Proposal{
		DoctorID:  doctorID,
		PatientID: patientID,
		Interval:  domain.Interval{Date: nextMonday, Start: start, End: end},
	}
}

func TestConflictChecker_Check(t *testing.T) {
	reader := &fakeReader{appointments: []*domain.Appointment{
		appt(1, 100, 200, "09:00", "09:15", domain.StatusPending),
		appt(2, 101, 201, "10:00", "10:30", domain.StatusConfirmed),
		appt(3, 100, 202, "11:00", "11:15", domain.StatusCancelled),
	}}
	checker := NewConflictChecker(reader)
	ctx := context.Background()

	tests := []struct {
		name     string
		p        Proposal
		kind     domain.ConflictKind
		conflict int64
	}{
		{"doctor overlap", proposal(100, 300, "09:05", "09:20"), domain.DoctorConflict, 1},
		{"patient overlap across doctors", proposal(102, 201, "10:15", "10:45"), domain.PatientConflict, 2},
		{"doctor checked before patient", proposal(100, 200, "09:00", "09:15"), domain.DoctorConflict, 1},
		{"touching is free", proposal(100, 300, "09:15", "09:30"), "", 0},
		{"cancelled is ignored", proposal(100, 300, "11:00", "11:15"), "", 0},
		{"other date is free", Proposal{
			DoctorID: 100, PatientID: 200,
			Interval: domain.Interval{Date: nextMonday.AddDate(0, 0, 7), Start: "09:00", End: "09:15"},
		}, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checker.Check(ctx, tt.p)
			if tt.kind == "" {
				assert.NoError(t, err)
				return
			}
			require.True(t, errors.Is(err, domain.ErrConflict))
			conflict, ok := domain.AsConflict(err)
			require.True(t, ok)
			assert.Equal(t, tt.kind, conflict.Kind)
			assert.Equal(t, tt.conflict, conflict.AppointmentID)
		})
	}
}

func TestConflictChecker_ExcludesOwnAppointment(t *testing.T) {
	reader := &fakeReader{appointments: []*domain.Appointment{
		appt(1, 100, 200, "09:00", "09:30", domain.StatusConfirmed),
	}}
	checker := NewConflictChecker(reader)

	p := proposal(100, 200, "09:15", "09:45")
	p.ExcludeID = 1
	assert.NoError(t, checker.Check(context.Background(), p))

	p.ExcludeID = 0
	assert.True(t, errors.Is(checker.Check(context.Background(), p), domain.ErrConflict))
}

func TestConflictChecker_StorageError(t *testing.T) {
	checker := NewConflictChecker(&fakeReader{err: errors.New("connection reset")})

	err := checker.Check(context.Background(), proposal(1, 2, "09:00", "09:15"))
	assert.True(t, errors.Is(err, domain.ErrInternal))
	assert.False(t, errors.Is(err, domain.ErrConflict))
}
