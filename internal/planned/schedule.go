package planned

import (
	"slices"
	"time"
)

// DateOf returns the calendar day of t as seen in loc, at midnight UTC.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}

	y, m, d := t.In(loc).Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// calendarDate drops the time of day, keeping t's own Y/M/D.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOrNil(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}

	d := calendarDate(*t)

	return &d
}

// NextExecutionDate returns the date of the payment's next occurrence, or nil
// when nothing more is scheduled.
//
// lastExecuted is the date of the most recent execution, nil if the payment
// never ran. today anchors recurrent payments that have neither executed nor
// got a start date.
func NextExecutionDate(p *PlannedPayment, lastExecuted *time.Time, today time.Time) *time.Time {
	switch p.Frequency {
	case FrequencyOneTime:
		if lastExecuted != nil {
			return nil
		}

		return dateOrNil(p.ScheduledDate)

	case FrequencyRecurrent:
		next, ok := nextOccurrence(p, lastExecuted, today)
		if !ok {
			return nil
		}

		if p.EndDate != nil && next.After(calendarDate(*p.EndDate)) {
			return nil
		}

		return &next
	}

	return nil
}

func nextOccurrence(p *PlannedPayment, lastExecuted *time.Time, today time.Time) (time.Time, bool) {
	if lastExecuted == nil {
		return firstOccurrence(p, today)
	}

	base := calendarDate(*lastExecuted)

	switch p.RecurrenceType {
	case RecurrenceDaily:
		return base.AddDate(0, 0, 1), true

	case RecurrenceWeekly:
		if d, ok := scanWeekdays(base, p.WeeklyDays, 1); ok {
			return d, true
		}

		return base.AddDate(0, 0, 7), true

	case RecurrenceMonthly:
		return base.AddDate(0, monthlyInterval(p), 0), true

	case RecurrenceYearly:
		return base.AddDate(1, 0, 0), true
	}

	return time.Time{}, false
}

// firstOccurrence is the start date itself (or today without one); weekly
// payments with configured days move forward to the first matching day.
func firstOccurrence(p *PlannedPayment, today time.Time) (time.Time, bool) {
	anchor := calendarDate(today)
	if p.StartDate != nil {
		anchor = calendarDate(*p.StartDate)
	}

	switch p.RecurrenceType {
	case RecurrenceDaily, RecurrenceMonthly, RecurrenceYearly:
		return anchor, true

	case RecurrenceWeekly:
		if d, ok := scanWeekdays(anchor, p.WeeklyDays, 0); ok {
			return d, true
		}

		return anchor, true
	}

	return time.Time{}, false
}

// scanWeekdays walks seven days starting at from+offset and returns the first
// day whose weekday is in days.
func scanWeekdays(from time.Time, days []time.Weekday, offset int) (time.Time, bool) {
	if len(days) == 0 {
		return time.Time{}, false
	}

	for i := offset; i < offset+7; i++ {
		d := from.AddDate(0, 0, i)
		if slices.Contains(days, d.Weekday()) {
			return d, true
		}
	}

	return time.Time{}, false
}

func monthlyInterval(p *PlannedPayment) int {
	if p.MonthlyInterval < 1 {
		return 1
	}

	return p.MonthlyInterval
}
