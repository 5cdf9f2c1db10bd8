package service

import (
	"context"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/observability"
)

// TodayView is today's status with the derived action gate and the number
// of queued actions.
type TodayView struct {
	Status  domain.DailyStatus
	Gate    accounting.ActionGate
	Pending int
}

// MonthView is one month's report with its heat map and the overtime
// balance up to today.
type MonthView struct {
	Status   domain.DailyStatus
	Report   domain.MonthReport
	Cells    []accounting.HeatCell
	Overtime accounting.OvertimeBalance
}

type dashboardService struct {
	api      ReportAPI
	pending  PendingCounter
	observer observability.UseCaseObserver
}

func NewDashboardService(api ReportAPI, pending PendingCounter, observers ...observability.UseCaseObserver) DashboardService {
	return &dashboardService{api: api, pending: pending, observer: firstObserver(observers)}
}

func (s *dashboardService) Today(ctx context.Context) (view *TodayView, err error) {
	done := observability.Track(ctx, s.observer, "dashboard.today", nil)
	defer func() { done(err) }()

	status, err := s.api.Today(ctx)
	if err != nil {
		return nil, err
	}
	n, err := s.pending.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &TodayView{Status: *status, Gate: accounting.Gate(*status), Pending: n}, nil
}

// Month loads today's status and the month report. The status supplies the
// daily target, today's date and the overtime start date.
func (s *dashboardService) Month(ctx context.Context, month string) (view *MonthView, err error) {
	done := observability.Track(ctx, s.observer, "dashboard.month", map[string]any{"month": month})
	defer func() { done(err) }()

	status, err := s.api.Today(ctx)
	if err != nil {
		return nil, err
	}
	report, err := s.api.Month(ctx, month)
	if err != nil {
		return nil, err
	}
	return &MonthView{
		Status:   *status,
		Report:   *report,
		Cells:    accounting.HeatMap(*status, report.Days),
		Overtime: accounting.Overtime(*status, report.Days),
	}, nil
}

func (s *dashboardService) Week(ctx context.Context, start string) (*domain.WeekReport, error) {
	return s.api.Week(ctx, start)
}
