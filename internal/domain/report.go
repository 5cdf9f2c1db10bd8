package domain

// WorkState is the server's view of what the user is currently doing.
type WorkState string

const (
	StateOff     WorkState = "OFF"
	StateWorking WorkState = "WORKING"
	StateBreak   WorkState = "BREAK"
)

// AbsenceReason names why a day is an absence.
type AbsenceReason struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Absence is a date range the user is not expected to work.
type Absence struct {
	ID        int64         `json:"id"`
	StartDate string        `json:"start_date"`
	EndDate   string        `json:"end_date"`
	Reason    AbsenceReason `json:"reason"`
}

// DailyStatus is today's aggregate as computed by the backend.
type DailyStatus struct {
	DateLocal string    `json:"date_local"`
	Timezone  string    `json:"timezone"`
	State     WorkState `json:"state"`

	WorkedMinutes        int `json:"worked_minutes"`
	TargetMinutes        int `json:"target_minutes"`
	RemainingWorkMinutes int `json:"remaining_work_minutes"`

	BreakMinutes          int `json:"break_minutes"`
	RequiredBreakMinutes  int `json:"required_break_minutes"`
	RemainingBreakMinutes int `json:"remaining_break_minutes"`

	RequiredContinuousBreakMinutes  int `json:"required_continuous_break_minutes"`
	MaxContinuousBreakMinutes       int `json:"max_continuous_break_minutes"`
	RemainingContinuousBreakMinutes int `json:"remaining_continuous_break_minutes"`

	LastEventType  *string `json:"last_event_type"`
	LastEventTsUTC *string `json:"last_event_ts_utc"`

	MaxDailyWorkExceeded bool `json:"max_daily_work_exceeded"`
	RestPeriodMinutes    *int `json:"rest_period_minutes"`
	RestPeriodViolation  bool `json:"rest_period_violation"`

	Absence           *Absence `json:"absence,omitempty"`
	OvertimeStartDate *string  `json:"overtime_start_date,omitempty"`
}

// DayAggregate is one day of a week or month report. It is never mutated
// client-side.
type DayAggregate struct {
	DateLocal     string `json:"date_local"`
	WorkedMinutes int    `json:"worked_minutes"`
	BreakMinutes  int    `json:"break_minutes"`

	RequiredBreakMinutes           int  `json:"required_break_minutes"`
	BreakCompliantTotal            bool `json:"break_compliant_total"`
	RequiredContinuousBreakMinutes int  `json:"required_continuous_break_minutes"`
	MaxContinuousBreakMinutes      int  `json:"max_continuous_break_minutes"`
	BreakCompliantContinuous       bool `json:"break_compliant_continuous"`
	HasOpenInterval                bool `json:"has_open_interval"`

	HomeMinutes   int `json:"home_minutes"`
	OfficeMinutes int `json:"office_minutes"`

	MaxDailyWorkExceeded bool `json:"max_daily_work_exceeded"`
	RestPeriodMinutes    *int `json:"rest_period_minutes"`
	RestPeriodViolation  bool `json:"rest_period_violation"`

	Absence *Absence `json:"absence,omitempty"`
	HasNote bool     `json:"has_note"`
}

// MonthReport is the per-month aggregate feed.
type MonthReport struct {
	MonthStartLocal        string         `json:"month_start_local"`
	MonthEndLocalExclusive string         `json:"month_end_local_exclusive"`
	Timezone               string         `json:"timezone"`
	TotalWorkedMinutes     int            `json:"total_worked_minutes"`
	TotalBreakMinutes      int            `json:"total_break_minutes"`
	WorkedDays             int            `json:"worked_days"`
	HomeOfficeDays         int            `json:"home_office_days"`
	HomeOfficeRatio        float64        `json:"home_office_ratio"`
	HomeOfficeTargetRatio  float64        `json:"home_office_target_ratio"`
	Days                   []DayAggregate `json:"days"`
}

// WeekReport is the per-week aggregate feed.
type WeekReport struct {
	WeekStartLocal        string         `json:"week_start_local"`
	WeekEndLocalExclusive string         `json:"week_end_local_exclusive"`
	Timezone              string         `json:"timezone"`
	TotalWorkedMinutes    int            `json:"total_worked_minutes"`
	TotalBreakMinutes     int            `json:"total_break_minutes"`
	Days                  []DayAggregate `json:"days"`
}

// DayNote is a free-text note attached to a local date.
type DayNote struct {
	ID        int64  `json:"id"`
	DateLocal string `json:"date_local"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}
