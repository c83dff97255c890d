// Package appointmenttest содержит хранилище записей в памяти для тестов use case и сервисов.
package appointmenttest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
)

// Store хранилище записей в памяти.
// При EnforceExclusion ведет себя как ограничения EXCLUDE в Postgres:
// пересекающаяся активная запись врача или пациента не сохраняется
type Store struct {
	mu               sync.Mutex
	nextID           int64
	nextHistoryID    int64
	items            map[int64]*domain.Appointment
	EnforceExclusion bool

	// ListErr возвращается из всех чтений списков, если задана
	ListErr error
	// BeforeCreate вызывается перед вставкой (для имитации гонки)
	BeforeCreate func()
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{items: make(map[int64]*domain.Appointment)}
}

// Put сохраняет запись как есть, назначая ID при необходимости
func (s *Store) Put(a *domain.Appointment) *domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == 0 {
		s.nextID++
		a.ID = s.nextID
	} else if a.ID > s.nextID {
		s.nextID = a.ID
	}
	for i := range a.History {
		a.History[i].AppointmentID = a.ID
	}
	s.items[a.ID] = clone(a)
	return a
}

// Get возвращает копию записи (nil, если нет)
func (s *Store) Get(id int64) *domain.Appointment {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil
	}
	return clone(a)
}

// Count количество записей
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *Store) Create(_ context.Context, a *domain.Appointment) (*domain.Appointment, error) {
	if s.BeforeCreate != nil {
		s.BeforeCreate()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.exclusion(a); err != nil {
		return nil, err
	}

	s.nextID++
	a.ID = s.nextID
	for i := range a.History {
		s.nextHistoryID++
		a.History[i].ID = s.nextHistoryID
		a.History[i].AppointmentID = a.ID
	}
	s.items[a.ID] = clone(a)
	return a, nil
}

func (s *Store) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return nil, appointment.ErrAppointmentNotFound
	}
	return clone(a), nil
}

func (s *Store) List(_ context.Context, filter domain.AppointmentsFilter) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	result := s.matching(filter)
	if filter.Offset > 0 {
		if filter.Offset >= uint64(len(result)) {
			return nil, nil
		}
		result = result[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < uint64(len(result)) {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) CountByFilter(_ context.Context, filter domain.AppointmentsFilter) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return 0, s.ListErr
	}
	return int64(len(s.matching(filter))), nil
}

func (s *Store) matching(filter domain.AppointmentsFilter) []*domain.Appointment {
	var result []*domain.Appointment
	for _, a := range s.sorted() {
		if filter.DoctorID != nil && a.DoctorID != *filter.DoctorID {
			continue
		}
		if filter.PatientID != nil && a.PatientID != *filter.PatientID {
			continue
		}
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.Date != nil && !a.Interval.Date.Equal(domain.DateOnly(*filter.Date)) {
			continue
		}
		if filter.StartDate != nil && a.Interval.Date.Before(domain.DateOnly(*filter.StartDate)) {
			continue
		}
		if filter.EndDate != nil && a.Interval.Date.After(domain.DateOnly(*filter.EndDate)) {
			continue
		}
		result = append(result, clone(a))
	}
	return result
}

func (s *Store) ListActiveByDoctorAndDate(_ context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error) {
	return s.listActive(func(a *domain.Appointment) bool { return a.DoctorID == doctorID }, date)
}

func (s *Store) ListActiveByPatientAndDate(_ context.Context, patientID int64, date time.Time) ([]*domain.Appointment, error) {
	return s.listActive(func(a *domain.Appointment) bool { return a.PatientID == patientID }, date)
}

func (s *Store) ListOverdueConfirmed(_ context.Context, cutoff time.Time, loc *time.Location) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	var result []*domain.Appointment
	for _, a := range s.sorted() {
		if a.Status == domain.StatusConfirmed && a.EndAt(loc).Before(cutoff) {
			result = append(result, clone(a))
		}
	}
	return result, nil
}

func (s *Store) SaveTransition(_ context.Context, a *domain.Appointment, entry domain.StatusHistoryEntry) error {
	return s.save(a, entry, false)
}

func (s *Store) SaveInterval(_ context.Context, a *domain.Appointment, entry domain.StatusHistoryEntry) error {
	return s.save(a, entry, true)
}

func (s *Store) UpdateAdminNotes(_ context.Context, id int64, notes *string, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[id]
	if !ok {
		return appointment.ErrAppointmentNotFound
	}
	a.AdminNotes = notes
	a.UpdatedAt = updatedAt
	return nil
}

func (s *Store) ListHistory(_ context.Context, appointmentID int64) ([]domain.StatusHistoryEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.items[appointmentID]
	if !ok {
		return nil, nil
	}
	return append([]domain.StatusHistoryEntry(nil), a.History...), nil
}

func (s *Store) save(a *domain.Appointment, entry domain.StatusHistoryEntry, checkExclusion bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[a.ID]; !ok {
		return appointment.ErrAppointmentNotFound
	}
	if checkExclusion {
		if err := s.exclusion(a); err != nil {
			return err
		}
	}

	stored := clone(a)
	if n := len(stored.History); n > 0 {
		s.nextHistoryID++
		entry.ID = s.nextHistoryID
		entry.AppointmentID = a.ID
		stored.History[n-1] = entry
	}
	s.items[a.ID] = stored
	return nil
}

func (s *Store) exclusion(a *domain.Appointment) error {
	if !s.EnforceExclusion || !a.IsActive() {
		return nil
	}
	for _, other := range s.items {
		if other.ID == a.ID || !other.IsActive() || !other.Interval.Overlaps(a.Interval) {
			continue
		}
		if other.DoctorID == a.DoctorID {
			return appointment.ErrDoctorSlotTaken
		}
		if other.PatientID == a.PatientID {
			return appointment.ErrPatientSlotTaken
		}
	}
	return nil
}

func (s *Store) listActive(match func(*domain.Appointment) bool, date time.Time) ([]*domain.Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ListErr != nil {
		return nil, s.ListErr
	}

	day := domain.DateOnly(date)
	var result []*domain.Appointment
	for _, a := range s.sorted() {
		if match(a) && a.IsActive() && a.Interval.Date.Equal(day) {
			result = append(result, clone(a))
		}
	}
	return result, nil
}

func (s *Store) sorted() []*domain.Appointment {
	result := make([]*domain.Appointment, 0, len(s.items))
	for _, a := range s.items {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result
}

func clone(a *domain.Appointment) *domain.Appointment {
	c := *a
	c.History = append([]domain.StatusHistoryEntry(nil), a.History...)
	return &c
}
