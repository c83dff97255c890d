package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Interval полуоткрытый интервал [Start, End) в пределах одной календарной даты.
// Единственное внутреннее представление времени записи: внешние форматы
// (date + HH:MM или пара timestamp'ов) конвертируются только на границе API
type Interval struct {
	Date  time.Time // Дата (время суток игнорируется, хранится как полночь UTC)
	Start types.TimeString
	End   types.TimeString
}

// DateOnly отбрасывает время суток и локацию, оставляя календарную дату
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NewInterval создает интервал по дате, времени начала и длительности
func NewInterval(date time.Time, start types.TimeString, durationMinutes int) (Interval, error) {
	if err := start.Validate(); err != nil {
		return Interval{}, fmt.Errorf("%w: invalid start time: %v", ErrValidation, err)
	}
	if durationMinutes <= 0 {
		return Interval{}, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	end, err := start.AddMinutes(durationMinutes)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: interval must end on the same day", ErrValidation)
	}

	iv := Interval{Date: DateOnly(date), Start: start, End: end}
	return iv, iv.Validate()
}

// IntervalFromRange создает интервал из пары моментов времени в операционной локации.
// Начало и конец должны приходиться на одну дату (конец может быть ровно полночью следующего дня)
func IntervalFromRange(start, end time.Time, loc *time.Location) (Interval, error) {
	start = start.In(loc)
	end = end.In(loc)

	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: start must be before end", ErrValidation)
	}
	if start.Second() != 0 || start.Nanosecond() != 0 || end.Second() != 0 || end.Nanosecond() != 0 {
		return Interval{}, fmt.Errorf("%w: interval must be aligned to minutes", ErrValidation)
	}

	date := DateOnly(start)
	startTS := types.NewTimeString(start)

	var endTS types.TimeString
	switch {
	case DateOnly(end).Equal(date):
		endTS = types.NewTimeString(end)
	case DateOnly(end).Equal(date.AddDate(0, 0, 1)) && end.Hour() == 0 && end.Minute() == 0:
		endTS = "24:00"
	default:
		return Interval{}, fmt.Errorf("%w: interval must not span several days", ErrValidation)
	}

	iv := Interval{Date: date, Start: startTS, End: endTS}
	return iv, iv.Validate()
}

// Validate проверяет, что start < end и оба значения корректны
func (i Interval) Validate() error {
	if i.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrValidation)
	}
	if err := i.Start.Validate(); err != nil {
		return fmt.Errorf("%w: invalid start: %v", ErrValidation, err)
	}
	if err := i.End.Validate(); err != nil {
		return fmt.Errorf("%w: invalid end: %v", ErrValidation, err)
	}
	if !i.Start.IsBefore(i.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrValidation, i.Start, i.End)
	}
	return nil
}

// DurationMinutes длительность интервала в минутах
func (i Interval) DurationMinutes() int {
	return i.End.Minutes() - i.Start.Minutes()
}

// Overlaps проверяет пересечение полуоткрытых интервалов: a0 < b1 && b0 < a1.
// Соприкасающиеся интервалы (a1 == b0) не пересекаются
func (i Interval) Overlaps(other Interval) bool {
	if !DateOnly(i.Date).Equal(DateOnly(other.Date)) {
		return false
	}
	return i.Start.Minutes() < other.End.Minutes() && other.Start.Minutes() < i.End.Minutes()
}

// StartAt момент начала в операционной локации
func (i Interval) StartAt(loc *time.Location) time.Time {
	return i.Start.On(i.Date, loc)
}

// EndAt момент окончания в операционной локации
func (i Interval) EndAt(loc *time.Location) time.Time {
	return i.End.On(i.Date, loc)
}

// Equal сравнивает интервалы
func (i Interval) Equal(other Interval) bool {
	return DateOnly(i.Date).Equal(DateOnly(other.Date)) && i.Start == other.Start && i.End == other.End
}

func (i Interval) String() string {
	return fmt.Sprintf("%s %s-%s", i.Date.Format(DateFormat), i.Start, i.End)
}
