// Package accounting derives the overtime balance, the month heat map and
// the allowed clock actions from server aggregates. It performs no I/O.
package accounting

import (
	"fmt"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
)

// OvertimeBalance is the signed balance and the sums it was built from.
type OvertimeBalance struct {
	BalanceMinutes  int
	ExpectedMinutes int
	WorkedMinutes   int
}

// Overtime folds days up to and including today. Days after today, days
// before the configured overtime start date and absence days are skipped.
// Weekends expect zero minutes, other days the daily target.
func Overtime(status domain.DailyStatus, days []domain.DayAggregate) OvertimeBalance {
	start := overtimeStart(status)
	var out OvertimeBalance
	for _, d := range days {
		if d.DateLocal > status.DateLocal {
			continue
		}
		if start != "" && d.DateLocal < start {
			continue
		}
		if d.Absence != nil {
			continue
		}
		expected := status.TargetMinutes
		if IsWeekend(d.DateLocal) {
			expected = 0
		}
		out.ExpectedMinutes += expected
		out.WorkedMinutes += d.WorkedMinutes
		out.BalanceMinutes += d.WorkedMinutes - expected
	}
	return out
}

func overtimeStart(status domain.DailyStatus) string {
	if status.OvertimeStartDate == nil {
		return ""
	}
	return *status.OvertimeStartDate
}

// IsWeekend reports whether the local calendar date (YYYY-MM-DD) is a
// Saturday or Sunday. The weekday comes from the date itself, never from a
// UTC instant. Unparseable dates are not weekends.
func IsWeekend(dateLocal string) bool {
	d, err := time.Parse(time.DateOnly, dateLocal)
	if err != nil {
		return false
	}
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// FormatMinutes renders a non-negative duration as "7h 05m".
func FormatMinutes(min int) string {
	if min < 0 {
		min = -min
	}
	return fmt.Sprintf("%dh %02dm", min/60, min%60)
}

// FormatBalance renders a signed balance as "+7h 05m" or "-0h 30m".
func FormatBalance(min int) string {
	if min < 0 {
		return "-" + FormatMinutes(-min)
	}
	return "+" + FormatMinutes(min)
}
