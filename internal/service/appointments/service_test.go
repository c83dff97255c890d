package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment/appointmenttest"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	adminID  int64 = 1
	doctorA  int64 = 10
	doctorB  int64 = 11
	patientP int64 = 20
	patientQ int64 = 21
)

var monday = time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)

type countingMetrics struct {
	transitions map[string]int
}

func (m *countingMetrics) IncAppointmentTransition(status string) {
	m.transitions[status]++
}

type fixture struct {
	svc     *Service
	store   *appointmenttest.Store
	users   *appointmenttest.Users
	clock   *appointmenttest.Clock
	metrics *countingMetrics
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: appointmenttest.NewStore(),
		users: appointmenttest.NewUsers(map[int64]domain.Role{
			adminID:  domain.RoleAdmin,
			doctorA:  domain.RoleDoctor,
			doctorB:  domain.RoleDoctor,
			patientP: domain.RolePatient,
			patientQ: domain.RolePatient,
		}),
		clock:   appointmenttest.NewClock(monday.Add(-72 * time.Hour)),
		metrics: &countingMetrics{transitions: map[string]int{}},
	}
	f.svc = NewService(f.store, f.users, &appointmenttest.TxManager{}, f.metrics,
		Settings{Location: time.UTC, NoShowGrace: 30 * time.Minute}, logger.NewNop()).
		WithTimeProvider(f.clock)
	return f
}

func (f *fixture) seed(t *testing.T, doctorID, patientID int64, start string, duration int, statuses ...domain.AppointmentStatus) *domain.Appointment {
	t.Helper()
	iv, err := domain.NewInterval(monday, types.TimeString(start), duration)
	require.NoError(t, err)
	a := domain.NewAppointment(doctorID, patientID, iv, domain.ConsultationInClinic, nil, nil, patientID, f.clock.Now())
	for _, status := range statuses {
		_, err := a.Transition(status, doctorID, f.clock.Now(), nil)
		require.NoError(t, err)
	}
	return f.store.Put(a)
}

func TestConfirmAndComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, doctorA, patientP, "09:00", 30)

	resp, err := f.svc.Confirm(ctx, a.ID, doctorA)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)

	f.clock.Set(monday.Add(9*time.Hour + 40*time.Minute))
	resp, err = f.svc.Complete(ctx, a.ID, doctorA)
	require.NoError(t, err)
	assert.Equal(t, "completed", resp.Status)

	stored := f.store.Get(a.ID)
	require.Len(t, stored.History, 3)
	assert.Equal(t, domain.StatusConfirmed, stored.History[1].Status)
	assert.Equal(t, doctorA, stored.History[1].ChangedBy)
	assert.Equal(t, domain.StatusCompleted, stored.History[2].Status)
	assert.Equal(t, 1, f.metrics.transitions["confirmed"])
	assert.Equal(t, 1, f.metrics.transitions["completed"])
}

func TestConfirm_OtherDoctorIsForbidden(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, doctorA, patientP, "09:00", 30)

	_, err := f.svc.Confirm(context.Background(), a.ID, doctorB)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.True(t, errors.Is(err, ErrAccessDenied))

	stored := f.store.Get(a.ID)
	assert.Equal(t, domain.StatusPending, stored.Status)
	assert.Len(t, stored.History, 1)
}

func TestConfirm_PatientIsForbiddenAdminAllowed(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, doctorA, patientP, "09:00", 30)

	_, err := f.svc.Confirm(ctx, a.ID, patientP)
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	resp, err := f.svc.Confirm(ctx, a.ID, adminID)
	require.NoError(t, err)
	assert.Equal(t, "confirmed", resp.Status)
	assert.Equal(t, adminID, f.store.Get(a.ID).History[1].ChangedBy)
}

func TestComplete_RequiresConfirmed(t *testing.T) {
	f := newFixture(t)
	a := f.seed(t, doctorA, patientP, "09:00", 30)

	_, err := f.svc.Complete(context.Background(), a.ID, doctorA)
	assert.True(t, errors.Is(err, domain.ErrInvalidState))
	assert.Equal(t, domain.StatusPending, f.store.Get(a.ID).Status)
}

func TestCancel_Policy(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantState bool
	}{
		{name: "23 hours before start", now: monday.Add(9*time.Hour - 23*time.Hour)},
		{name: "one minute before start", now: monday.Add(9*time.Hour - time.Minute)},
		{name: "at start", now: monday.Add(9 * time.Hour), wantState: true},
		{name: "after start", now: monday.Add(9*time.Hour + 10*time.Minute), wantState: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			a := f.seed(t, doctorA, patientP, "09:00", 30, domain.StatusConfirmed)
			f.clock.Set(tt.now)

			resp, err := f.svc.Cancel(context.Background(), a.ID, &models.CancelRequest{
				ActorID: patientP,
				Reason:  ptr.Ptr("feeling better"),
			})
			if tt.wantState {
				assert.True(t, errors.Is(err, domain.ErrInvalidState), "got %v", err)
				assert.Equal(t, domain.StatusConfirmed, f.store.Get(a.ID).Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "cancelled", resp.Status)
			require.NotNil(t, resp.CancellationReason)
			assert.Equal(t, "feeling better", *resp.CancellationReason)
			assert.NotNil(t, resp.CancelledAt)
		})
	}
}

func TestCancel_TerminalStates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cancelled := f.seed(t, doctorA, patientP, "09:00", 30, domain.StatusCancelled)
	completed := f.seed(t, doctorA, patientP, "10:00", 30, domain.StatusConfirmed, domain.StatusCompleted)

	for _, a := range []*domain.Appointment{cancelled, completed} {
		_, err := f.svc.Cancel(ctx, a.ID, &models.CancelRequest{ActorID: patientP})
		assert.True(t, errors.Is(err, domain.ErrInvalidState), "appointment %d: got %v", a.ID, err)
		assert.Len(t, f.store.Get(a.ID).History, len(a.History))
	}
}

func TestCancel_Actors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	byDoctor := f.seed(t, doctorA, patientP, "09:00", 30)
	_, err := f.svc.Cancel(ctx, byDoctor.ID, &models.CancelRequest{ActorID: doctorA})
	require.NoError(t, err)

	byStranger := f.seed(t, doctorA, patientP, "10:00", 30)
	_, err = f.svc.Cancel(ctx, byStranger.ID, &models.CancelRequest{ActorID: patientQ})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.Cancel(ctx, byStranger.ID, &models.CancelRequest{ActorID: 0})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	long := string(make([]rune, domain.MaxCancellationReasonLength+1))
	_, err = f.svc.Cancel(ctx, byStranger.ID, &models.CancelRequest{ActorID: patientP, Reason: &long})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestGetByID_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, doctorA, patientP, "09:00", 30)

	for _, actor := range []int64{patientP, doctorA, adminID} {
		resp, err := f.svc.GetByID(ctx, a.ID, actor)
		require.NoError(t, err, "actor %d", actor)
		assert.Equal(t, "2026-11-02", resp.Date)
		assert.Equal(t, "09:00", resp.StartTime)
		assert.Equal(t, "09:30", resp.EndTime)
		assert.Equal(t, "2026-11-02T09:00:00Z", resp.StartAt)
		assert.Equal(t, "2026-11-02T09:30:00Z", resp.EndAt)
		assert.Len(t, resp.History, 1)
	}

	for _, actor := range []int64{patientQ, doctorB} {
		_, err := f.svc.GetByID(ctx, a.ID, actor)
		assert.True(t, errors.Is(err, domain.ErrForbidden), "actor %d", actor)
	}

	_, err := f.svc.GetByID(ctx, 404, patientP)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestList_RestrictsByRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seed(t, doctorA, patientP, "09:00", 30)
	f.seed(t, doctorB, patientQ, "09:00", 30)
	f.seed(t, doctorA, patientQ, "11:00", 30, domain.StatusConfirmed)

	resp, err := f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: patientQ})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 2)

	resp, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: doctorA, Status: ptr.Ptr("confirmed")})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 1)
	assert.Equal(t, patientQ, resp.Appointments[0].PatientID)
	assert.Nil(t, resp.Appointments[0].History)

	resp, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: adminID})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 3)

	_, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: doctorA, DoctorID: ptr.Ptr(doctorB)})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: patientP, PatientID: ptr.Ptr(patientQ)})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: 404})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	_, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: adminID, Status: ptr.Ptr("lost")})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestList_Meta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, start := range []string{"08:00", "09:00", "10:00", "11:00", "12:00"} {
		f.seed(t, doctorA, patientP, start, 30)
	}
	f.seed(t, doctorB, patientQ, "09:00", 30)

	resp, err := f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: patientP, Limit: 2, Offset: 2})
	require.NoError(t, err)
	require.Len(t, resp.Appointments, 2)
	assert.Equal(t, "10:00", resp.Appointments[0].StartTime)
	assert.Equal(t, models.ListMeta{Total: 5, Limit: 2, Offset: 2, Page: 2, TotalPages: 3}, resp.Meta)

	resp, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: adminID})
	require.NoError(t, err)
	assert.Equal(t, models.ListMeta{Total: 6, Page: 1, TotalPages: 1}, resp.Meta)

	resp, err = f.svc.List(ctx, &models.ListAppointmentsRequest{ActorID: adminID, Status: ptr.Ptr("completed"), Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, resp.Appointments)
	assert.Equal(t, models.ListMeta{Total: 0, Limit: 10, Page: 1, TotalPages: 0}, resp.Meta)
}

func TestGetHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, doctorA, patientP, "09:00", 30)

	_, err := f.svc.Confirm(ctx, a.ID, doctorA)
	require.NoError(t, err)

	resp, err := f.svc.GetHistory(ctx, a.ID, patientP)
	require.NoError(t, err)
	require.Len(t, resp.History, 2)
	assert.Equal(t, "pending", resp.History[0].Status)
	assert.Equal(t, "confirmed", resp.History[1].Status)

	_, err = f.svc.GetHistory(ctx, a.ID, patientQ)
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestAddAdminNotes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.seed(t, doctorA, patientP, "09:00", 30, domain.StatusConfirmed, domain.StatusCompleted)

	_, err := f.svc.AddAdminNotes(ctx, a.ID, &models.AdminNotesRequest{ActorID: doctorA, Notes: "x"})
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	resp, err := f.svc.AddAdminNotes(ctx, a.ID, &models.AdminNotesRequest{ActorID: adminID, Notes: "billing checked"})
	require.NoError(t, err)
	require.NotNil(t, resp.AdminNotes)
	assert.Equal(t, "billing checked", *resp.AdminNotes)
	assert.Equal(t, "completed", resp.Status)

	stored := f.store.Get(a.ID)
	assert.Equal(t, "billing checked", *stored.AdminNotes)
	assert.Equal(t, domain.StatusCompleted, stored.Status)
	assert.Len(t, stored.History, 3)
}

func TestSweepNoShows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	overdue := f.seed(t, doctorA, patientP, "09:00", 30, domain.StatusConfirmed)
	withinGrace := f.seed(t, doctorA, patientQ, "10:00", 30, domain.StatusConfirmed)
	pending := f.seed(t, doctorB, patientQ, "08:00", 30)
	completed := f.seed(t, doctorB, patientP, "07:00", 30, domain.StatusConfirmed, domain.StatusCompleted)

	// 10:45: первая запись закончилась в 09:30 (больше 30 минут назад), вторая в 10:30
	f.clock.Set(monday.Add(10*time.Hour + 45*time.Minute))

	marked, err := f.svc.SweepNoShows(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, marked)

	stored := f.store.Get(overdue.ID)
	assert.Equal(t, domain.StatusNoShow, stored.Status)
	last := stored.History[len(stored.History)-1]
	assert.Equal(t, domain.SystemActorID, last.ChangedBy)
	assert.Equal(t, domain.StatusNoShow, last.Status)

	assert.Equal(t, domain.StatusConfirmed, f.store.Get(withinGrace.ID).Status)
	assert.Equal(t, domain.StatusPending, f.store.Get(pending.ID).Status)
	assert.Equal(t, domain.StatusCompleted, f.store.Get(completed.ID).Status)
	assert.Equal(t, 1, f.metrics.transitions["no_show"])

	// Повторный проход ничего не меняет
	marked, err = f.svc.SweepNoShows(ctx)
	require.NoError(t, err)
	assert.Zero(t, marked)
}

func TestSweepNoShows_RepositoryError(t *testing.T) {
	f := newFixture(t)
	f.store.ListErr = errors.New("db is down")

	_, err := f.svc.SweepNoShows(context.Background())
	assert.True(t, errors.Is(err, domain.ErrInternal))
}

func TestSweepNoShows_CommitFailureIsNotCounted(t *testing.T) {
	f := newFixture(t)
	f.seed(t, doctorA, patientP, "09:00", 30, domain.StatusConfirmed)
	f.clock.Set(monday.Add(12 * time.Hour))

	tx := &appointmenttest.TxManager{CommitErr: errors.New("could not serialize access")}
	svc := NewService(f.store, f.users, tx, f.metrics,
		Settings{Location: time.UTC, NoShowGrace: 30 * time.Minute}, logger.NewNop()).
		WithTimeProvider(f.clock)

	marked, err := svc.SweepNoShows(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInternal))
	assert.Zero(t, marked)
	assert.Zero(t, f.metrics.transitions["no_show"])
	assert.EqualValues(t, 1, tx.Calls.Load())
}
