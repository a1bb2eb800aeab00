package planned_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/pennywise/internal/planned"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestNextExecutionDate(t *testing.T) {
	today := date(2024, 3, 10)

	type testCase struct {
		name         string
		payment      planned.PlannedPayment
		lastExecuted *time.Time
		want         *time.Time
	}

	tests := []testCase{
		{
			name: "OneTimeNeverExecuted",
			payment: planned.PlannedPayment{
				Frequency:     planned.FrequencyOneTime,
				ScheduledDate: datePtr(2024, 3, 15),
			},
			want: datePtr(2024, 3, 15),
		},
		{
			name: "OneTimeExecuted",
			payment: planned.PlannedPayment{
				Frequency:     planned.FrequencyOneTime,
				ScheduledDate: datePtr(2024, 3, 15),
			},
			lastExecuted: datePtr(2024, 3, 15),
		},
		{
			name:    "OneTimeWithoutDate",
			payment: planned.PlannedPayment{Frequency: planned.FrequencyOneTime},
		},
		{
			name: "DailyFromLastExecution",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceDaily,
			},
			lastExecuted: datePtr(2024, 3, 10),
			want:         datePtr(2024, 3, 11),
		},
		{
			name: "DailyAcrossYearEnd",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceDaily,
			},
			lastExecuted: datePtr(2023, 12, 31),
			want:         datePtr(2024, 1, 1),
		},
		{
			name: "NeverExecutedStartsOnStartDate",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceMonthly,
				StartDate:      datePtr(2024, 1, 5),
			},
			want: datePtr(2024, 1, 5),
		},
		{
			name: "NeverExecutedWithoutStartDateStartsToday",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceDaily,
			},
			want: datePtr(2024, 3, 10),
		},
		{
			name: "WeeklyNextSelectedDay",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceWeekly,
				WeeklyDays:     []time.Weekday{time.Monday, time.Thursday},
			},
			// 2024-03-11 is a Monday.
			lastExecuted: datePtr(2024, 3, 11),
			want:         datePtr(2024, 3, 14),
		},
		{
			name: "WeeklyWrapsToNextWeek",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceWeekly,
				WeeklyDays:     []time.Weekday{time.Monday, time.Thursday},
			},
			lastExecuted: datePtr(2024, 3, 14),
			want:         datePtr(2024, 3, 18),
		},
		{
			name: "WeeklySingleDayIsSevenDaysLater",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceWeekly,
				WeeklyDays:     []time.Weekday{time.Monday},
			},
			lastExecuted: datePtr(2024, 3, 11),
			want:         datePtr(2024, 3, 18),
		},
		{
			name: "WeeklyWithoutDays",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceWeekly,
			},
			lastExecuted: datePtr(2024, 3, 13),
			want:         datePtr(2024, 3, 20),
		},
		{
			name: "WeeklyFirstOccurrenceOnMatchingDay",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceWeekly,
				WeeklyDays:     []time.Weekday{time.Friday},
				StartDate:      datePtr(2024, 3, 11),
			},
			want: datePtr(2024, 3, 15),
		},
		{
			name: "MonthlyDefaultInterval",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceMonthly,
			},
			lastExecuted: datePtr(2024, 1, 5),
			want:         datePtr(2024, 2, 5),
		},
		{
			name: "MonthlyEveryThreeMonths",
			payment: planned.PlannedPayment{
				Frequency:       planned.FrequencyRecurrent,
				RecurrenceType:  planned.RecurrenceMonthly,
				MonthlyInterval: 3,
			},
			lastExecuted: datePtr(2024, 1, 15),
			want:         datePtr(2024, 4, 15),
		},
		{
			name: "MonthlyOverflowNormalizes",
			payment: planned.PlannedPayment{
				Frequency:       planned.FrequencyRecurrent,
				RecurrenceType:  planned.RecurrenceMonthly,
				MonthlyInterval: 1,
			},
			lastExecuted: datePtr(2024, 1, 31),
			want:         datePtr(2024, 3, 2),
		},
		{
			name: "MonthlyNonPositiveIntervalIsOne",
			payment: planned.PlannedPayment{
				Frequency:       planned.FrequencyRecurrent,
				RecurrenceType:  planned.RecurrenceMonthly,
				MonthlyInterval: -2,
			},
			lastExecuted: datePtr(2024, 5, 1),
			want:         datePtr(2024, 6, 1),
		},
		{
			name: "Yearly",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceYearly,
			},
			lastExecuted: datePtr(2023, 6, 1),
			want:         datePtr(2024, 6, 1),
		},
		{
			name: "YearlyLeapDay",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceYearly,
			},
			lastExecuted: datePtr(2024, 2, 29),
			want:         datePtr(2025, 3, 1),
		},
		{
			name: "UnknownRecurrenceType",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: "fortnightly",
			},
			lastExecuted: datePtr(2024, 3, 1),
		},
		{
			name: "UnknownFrequency",
			payment: planned.PlannedPayment{
				Frequency: "sometimes",
			},
		},
		{
			name: "PastEndDate",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceMonthly,
				EndDate:        datePtr(2024, 2, 28),
			},
			lastExecuted: datePtr(2024, 2, 1),
		},
		{
			name: "OnEndDate",
			payment: planned.PlannedPayment{
				Frequency:      planned.FrequencyRecurrent,
				RecurrenceType: planned.RecurrenceMonthly,
				EndDate:        datePtr(2024, 3, 1),
			},
			lastExecuted: datePtr(2024, 2, 1),
			want:         datePtr(2024, 3, 1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planned.NextExecutionDate(&tt.payment, tt.lastExecuted, today)

			if tt.want == nil {
				assert.Nil(t, got)
				return
			}

			require.NotNil(t, got)
			assert.Equal(t, *tt.want, *got)
		})
	}
}

func TestNextExecutionDate_Chained(t *testing.T) {
	p := &planned.PlannedPayment{
		Frequency:      planned.FrequencyRecurrent,
		RecurrenceType: planned.RecurrenceWeekly,
		WeeklyDays:     []time.Weekday{time.Tuesday, time.Saturday},
	}

	// 2024-03-05 is a Tuesday.
	last := date(2024, 3, 5)
	want := []time.Time{
		date(2024, 3, 9),
		date(2024, 3, 12),
		date(2024, 3, 16),
		date(2024, 3, 19),
	}

	for _, w := range want {
		next := planned.NextExecutionDate(p, &last, last)
		require.NotNil(t, next)
		assert.Equal(t, w, *next)

		last = *next
	}
}

func TestDateOf(t *testing.T) {
	lisbon, err := time.LoadLocation("Europe/Lisbon")
	require.NoError(t, err)

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	instant := time.Date(2024, 6, 30, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, date(2024, 6, 30), planned.DateOf(instant, time.UTC))
	assert.Equal(t, date(2024, 7, 1), planned.DateOf(instant, lisbon))
	assert.Equal(t, date(2024, 7, 1), planned.DateOf(instant, tokyo))
	assert.Equal(t, date(2024, 6, 30), planned.DateOf(instant, nil))
}
