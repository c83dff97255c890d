package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// TimeWindow is a daily availability window [Start, End)
type TimeWindow struct {
	Start types.TimeString
	End   types.TimeString
}

// Validate checks that the window is well-formed and start < end
func (w TimeWindow) Validate() error {
	if err := w.Start.Validate(); err != nil {
		return fmt.Errorf("%w: invalid window start: %v", ErrValidation, err)
	}
	if err := w.End.Validate(); err != nil {
		return fmt.Errorf("%w: invalid window end: %v", ErrValidation, err)
	}
	if !w.Start.IsBefore(w.End) {
		return fmt.Errorf("%w: window start %s must be before end %s", ErrValidation, w.Start, w.End)
	}
	return nil
}

// DoctorAvailability represents a doctor's recurring weekly availability.
// The same list of windows applies to every enabled weekday.
// Windows are not required to be disjoint.
type DoctorAvailability struct {
	DoctorID            int64
	AvailableDays       []time.Weekday
	Windows             []TimeWindow
	SlotDurationMinutes int
	MaxBookingsPerSlot  int // stored only, capacity is always treated as 1
	ConsultationTypes   []ConsultationType
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// IsDayAvailable returns true if the doctor receives patients on the weekday
func (a *DoctorAvailability) IsDayAvailable(day time.Weekday) bool {
	for _, d := range a.AvailableDays {
		if d == day {
			return true
		}
	}
	return false
}

// Offers returns true if the doctor provides the consultation type
func (a *DoctorAvailability) Offers(t ConsultationType) bool {
	for _, c := range a.ConsultationTypes {
		if c == t {
			return true
		}
	}
	return false
}

// WindowsFor returns the ordered windows for the weekday, or nil if the day is not enabled
func (a *DoctorAvailability) WindowsFor(day time.Weekday) []TimeWindow {
	if !a.IsDayAvailable(day) {
		return nil
	}
	windows := make([]TimeWindow, len(a.Windows))
	copy(windows, a.Windows)
	return windows
}

// Validate checks windows, slot duration, booking capacity, consultation types and weekday uniqueness
func (a *DoctorAvailability) Validate() error {
	seen := make(map[time.Weekday]struct{}, len(a.AvailableDays))
	for _, d := range a.AvailableDays {
		if d < time.Sunday || d > time.Saturday {
			return fmt.Errorf("%w: invalid weekday %d", ErrValidation, d)
		}
		if _, ok := seen[d]; ok {
			return fmt.Errorf("%w: duplicate weekday %s", ErrValidation, FormatWeekday(d))
		}
		seen[d] = struct{}{}
	}

	for i, w := range a.Windows {
		if err := w.Validate(); err != nil {
			return fmt.Errorf("window #%d: %w", i, err)
		}
	}

	if a.SlotDurationMinutes < MinSlotDurationMinutes || a.SlotDurationMinutes > MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slot duration must be between %d and %d minutes",
			ErrValidation, MinSlotDurationMinutes, MaxSlotDurationMinutes)
	}

	if a.MaxBookingsPerSlot < MinBookingsPerSlot || a.MaxBookingsPerSlot > MaxBookingsPerSlot {
		return fmt.Errorf("%w: max bookings per slot must be between %d and %d",
			ErrValidation, MinBookingsPerSlot, MaxBookingsPerSlot)
	}

	if len(a.ConsultationTypes) == 0 {
		return fmt.Errorf("%w: at least one consultation type is required", ErrValidation)
	}
	offered := make(map[ConsultationType]struct{}, len(a.ConsultationTypes))
	for _, c := range a.ConsultationTypes {
		if !c.IsValid() {
			return fmt.Errorf("%w: invalid consultation type %q", ErrValidation, c)
		}
		if _, ok := offered[c]; ok {
			return fmt.Errorf("%w: duplicate consultation type %q", ErrValidation, c)
		}
		offered[c] = struct{}{}
	}

	return nil
}

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday,
	"mon": time.Monday,
	"tue": time.Tuesday,
	"wed": time.Wednesday,
	"thu": time.Thursday,
	"fri": time.Friday,
	"sat": time.Saturday,
}

// ParseWeekday parses short ("Mon") or full ("Monday") weekday names, case-insensitive
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if len(name) >= 3 {
		if d, ok := weekdayNames[name[:3]]; ok && (len(name) == 3 || strings.EqualFold(name, d.String())) {
			return d, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown weekday %q", ErrValidation, s)
}

// FormatWeekday returns the short weekday name ("Mon")
func FormatWeekday(d time.Weekday) string {
	return d.String()[:3]
}
