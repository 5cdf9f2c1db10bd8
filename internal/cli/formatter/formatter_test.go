package formatter

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/alexanderramin/punchclock/internal/testutil"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestCSSColor(t *testing.T) {
	assert.Equal(t, lipgloss.Color("#22c55e"), CSSColor("rgb(34 197 94)"))
	assert.Equal(t, lipgloss.Color("#facc15"), CSSColor(accounting.AbsenceColor))
	assert.Equal(t, ColorDim, CSSColor("#123456"))
}

func TestRenderTable_AlignsColumns(t *testing.T) {
	out := stripANSI(RenderTable([]string{"ID", "NAME"}, [][]string{{"1", "alpha"}, {"22", "b"}}))
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 4)
	assert.Equal(t, "ID  NAME", strings.TrimRight(lines[0], " "))
	assert.Equal(t, "1   alpha", lines[2])
	assert.Equal(t, "22  b", lines[3])
	assert.Empty(t, RenderTable(nil, nil))
}

func TestRenderWorkBar(t *testing.T) {
	assert.Contains(t, stripANSI(RenderWorkBar(240, 480, 10)), "[█████░░░░░]  50%")
	assert.Contains(t, stripANSI(RenderWorkBar(600, 480, 4)), "[████] 125%")
	assert.Contains(t, stripANSI(RenderWorkBar(10, 0, 4)), "[░░░░]   0%")
}

func TestHumanTimestamp(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "just now", HumanTimestamp(now.Add(-10*time.Second), now))
	assert.Equal(t, "5m ago", HumanTimestamp(now.Add(-5*time.Minute), now))
	assert.Equal(t, "2h ago", HumanTimestamp(now.Add(-2*time.Hour), now))
}

func TestKindLabel(t *testing.T) {
	home := domain.LocationHome
	assert.Equal(t, "Arrive (home office)", KindLabel(i18n.EN, domain.ClockArrive, &home))
	assert.Equal(t, "Kommen Büro", KindLabel(i18n.DE, domain.ClockArrive, nil))
	assert.Equal(t, "Pause Ende", KindLabel(i18n.DE, domain.ClockBreakEnd, nil))
}

func TestFormatToday(t *testing.T) {
	status := testutil.NewTestStatus("2026-10-16", 480)
	status.State = domain.StateWorking
	status.WorkedMinutes = 245
	status.MaxDailyWorkExceeded = true
	view := &service.TodayView{Status: status, Gate: accounting.Gate(status), Pending: 2}

	out := stripANSI(FormatToday(view, i18n.EN))

	assert.Contains(t, out, "WORKING")
	assert.Contains(t, out, "4h 05m")
	assert.Contains(t, out, "Warning: worked > 10h")
	assert.Contains(t, out, "2 queued")
	assert.Contains(t, out, "punch clock break-start")
	assert.Contains(t, out, "punch clock depart")
	assert.NotContains(t, out, "punch clock arrive")
}

func TestHeatGrid_StartsOnWeekday(t *testing.T) {
	status := testutil.NewTestStatus("2026-10-16", 480)
	days := []domain.DayAggregate{
		testutil.NewTestDay("2026-10-01", 480, testutil.WithNote()),
		testutil.NewTestDay("2026-10-02", 480),
	}

	out := stripANSI(HeatGrid(accounting.HeatMap(status, days), i18n.EN))
	lines := strings.Split(out, "\n")

	assert.Equal(t, "Mo  Tu  We  Th  Fr  Sa  Su", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], strings.Repeat(" ", 12)+" 1* "), lines[1])
	assert.Contains(t, lines[1], " 2  ")
}

func TestFormatMonth(t *testing.T) {
	status := testutil.NewTestStatus("2026-10-16", 480)
	days := testutil.MonthDays(2026, time.October, func(time.Time) int { return 0 })
	view := &service.MonthView{
		Status:   status,
		Report:   domain.MonthReport{MonthStartLocal: "2026-10-01", Days: days},
		Cells:    accounting.HeatMap(status, days),
		Overtime: accounting.Overtime(status, days),
	}

	out := stripANSI(FormatMonth(view, i18n.DE))

	assert.Contains(t, out, "2026-10")
	assert.Contains(t, out, "Stundenkonto (bis heute): -96h 00m")
	assert.Contains(t, out, "31")
}

func TestFormatQueue(t *testing.T) {
	now := time.Now()
	a := testutil.NewTestAction(testutil.WithActionID("evt-1"), testutil.WithCreatedAtMs(now.Add(-3*time.Minute).UnixMilli()))

	out := stripANSI(FormatQueue([]*domain.PendingAction{a}, i18n.EN, now))
	assert.Contains(t, out, "evt-1")
	assert.Contains(t, out, "Leave")
	assert.Contains(t, out, "3m ago")

	assert.Contains(t, FormatQueue(nil, i18n.EN, now), "Queue is empty.")
}

func TestFormatWeek(t *testing.T) {
	day := testutil.NewTestDay("2026-10-12", 600)
	day.MaxDailyWorkExceeded = true
	out := stripANSI(FormatWeek(&domain.WeekReport{
		WeekStartLocal:     "2026-10-12",
		TotalWorkedMinutes: 600,
		Days:               []domain.DayAggregate{day},
	}, i18n.EN))

	assert.Contains(t, out, "10h 00m")
	assert.Contains(t, out, ">10h")
}
