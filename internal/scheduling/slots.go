package scheduling

import (
	"fmt"
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// SlotQuery входные данные генератора слотов
type SlotQuery struct {
	Calendar        *domain.DoctorAvailability
	Date            time.Time
	DurationMinutes int               // 0 = длительность слота из календаря врача
	Booked          []domain.Interval // активные (pending, confirmed) интервалы врача на эту дату
	Now             time.Time
	Location        *time.Location // операционная таймзона, nil = UTC
}

// GenerateSlots возвращает ленивую конечную последовательность свободных слотов врача на дату.
//
// Для каждого окна дня недели слоты идут с начала окна с шагом duration:
//   - хвостовой слот, выходящий за конец окна, отбрасывается
//   - слот, начало которого уже прошло, отбрасывается
//   - слот, пересекающийся с любым занятым интервалом, отбрасывается (полуоткрытые интервалы)
//
// Пересекающиеся окна календаря могут дать дубли, они не удаляются.
// Последовательность можно обходить повторно, каждый обход считается заново по входным данным.
func GenerateSlots(q SlotQuery) (iter.Seq[domain.Interval], error) {
	if q.Calendar == nil {
		return nil, fmt.Errorf("%w: calendar is required", domain.ErrValidation)
	}
	if q.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", domain.ErrValidation)
	}

	duration := q.DurationMinutes
	if duration == 0 {
		duration = q.Calendar.SlotDurationMinutes
	}
	if duration < domain.MinAppointmentDurationMinutes || duration > domain.MaxAppointmentDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes",
			domain.ErrValidation, domain.MinAppointmentDurationMinutes, domain.MaxAppointmentDurationMinutes)
	}

	loc := q.Location
	if loc == nil {
		loc = time.UTC
	}

	date := domain.DateOnly(q.Date)
	windows := q.Calendar.WindowsFor(date.Weekday())
	booked := append([]domain.Interval(nil), q.Booked...)
	now := q.Now

	return func(yield func(domain.Interval) bool) {
		for _, w := range windows {
			for start := w.Start; start.IsBefore(w.End); {
				end, err := start.AddMinutes(duration)
				if err != nil || end.IsAfter(w.End) {
					break
				}

				slot := domain.Interval{Date: date, Start: start, End: end}
				if !slot.StartAt(loc).Before(now) && !overlapsAny(slot, booked) {
					if !yield(slot) {
						return
					}
				}

				start = end
			}
		}
	}, nil
}

// CollectSlots материализует последовательность слотов в срез
func CollectSlots(seq iter.Seq[domain.Interval]) []domain.Interval {
	slots := make([]domain.Interval, 0)
	for slot := range seq {
		slots = append(slots, slot)
	}
	return slots
}

func overlapsAny(slot domain.Interval, booked []domain.Interval) bool {
	for _, b := range booked {
		if slot.Overlaps(b) {
			return true
		}
	}
	return false
}

// BookedIntervals возвращает интервалы активных записей
func BookedIntervals(appointments []*domain.Appointment) []domain.Interval {
	intervals := make([]domain.Interval, 0, len(appointments))
	for _, a := range appointments {
		if a.IsActive() {
			intervals = append(intervals, a.Interval)
		}
	}
	return intervals
}
