package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/service"
	"github.com/charmbracelet/lipgloss"
)

var weekdayHeader = map[i18n.Lang]string{
	i18n.EN: "Mo  Tu  We  Th  Fr  Sa  Su",
	i18n.DE: "Mo  Di  Mi  Do  Fr  Sa  So",
}

// HeatCell renders one day as a colored block. Notes are marked with "*".
func HeatCell(c accounting.HeatCell) string {
	day := c.Date
	if d, err := time.Parse(time.DateOnly, c.Date); err == nil {
		day = fmt.Sprintf("%2d", d.Day())
	}
	mark := " "
	if c.HasNote {
		mark = "*"
	}
	return lipgloss.NewStyle().
		Background(CSSColor(c.Color)).
		Foreground(ColorInk).
		Render(day+mark) + " "
}

// HeatGrid lays cells out as a Monday-first calendar.
func HeatGrid(cells []accounting.HeatCell, lang i18n.Lang) string {
	header, ok := weekdayHeader[lang]
	if !ok {
		header = weekdayHeader[i18n.EN]
	}
	var b strings.Builder
	b.WriteString(Dim(header) + "\n")
	if len(cells) == 0 {
		return b.String()
	}

	col := 0
	if first, err := time.Parse(time.DateOnly, cells[0].Date); err == nil {
		col = (int(first.Weekday()) + 6) % 7
	}
	b.WriteString(strings.Repeat("    ", col))
	for _, c := range cells {
		b.WriteString(HeatCell(c))
		col++
		if col == 7 {
			b.WriteString("\n")
			col = 0
		}
	}
	if col != 0 {
		b.WriteString("\n")
	}
	return b.String()
}

func legend(lang i18n.Lang) string {
	swatch := func(css, label string) string {
		return lipgloss.NewStyle().Background(CSSColor(css)).Render("  ") + " " + Dim(label)
	}
	return strings.Join([]string{
		swatch(accounting.ColorForRatio(0, false), "0%"),
		swatch(accounting.ColorForRatio(1, false), "100%"),
		swatch(accounting.ColorForRatio(1.35, false), "135%+"),
		swatch(accounting.AbsenceColor, lang.T(i18n.HeatAbsence)),
		swatch(accounting.BeforeStartColor, lang.T(i18n.HeatBeforeStart)),
		Dim("* " + lang.T(i18n.HeatNote)),
	}, "  ")
}

// FormatBalance colors a signed overtime balance.
func FormatBalance(minutes int) string {
	text := accounting.FormatBalance(minutes)
	if minutes < 0 {
		return StyleRed.Render(text)
	}
	return StyleGreen.Render(text)
}

// FormatMonth renders the heat map, its legend and the overtime balance.
func FormatMonth(view *service.MonthView, lang i18n.Lang) string {
	var b strings.Builder
	title := view.Report.MonthStartLocal
	if len(title) >= 7 {
		title = title[:7]
	}
	fmt.Fprintf(&b, "%s\n\n", Bold(title))
	b.WriteString(HeatGrid(view.Cells, lang))
	b.WriteString("\n" + legend(lang) + "\n\n")

	fmt.Fprintf(&b, "%s: %s\n", lang.T(i18n.OvertimeBalance), FormatBalance(view.Overtime.BalanceMinutes))
	fmt.Fprintf(&b, "%s", Dim(fmt.Sprintf("%s %s / %s %s",
		lang.T(i18n.Worked), accounting.FormatMinutes(view.Overtime.WorkedMinutes),
		lang.T(i18n.Target), accounting.FormatMinutes(view.Overtime.ExpectedMinutes))))
	return RenderBox(lang.T(i18n.Month), b.String())
}

// FormatWeek renders one row per day with worked time and compliance flags.
func FormatWeek(report *domain.WeekReport, lang i18n.Lang) string {
	headers := []string{"DATE", strings.ToUpper(lang.T(i18n.Worked)), strings.ToUpper(lang.T(i18n.Break)), ""}
	rows := make([][]string, 0, len(report.Days))
	for _, d := range report.Days {
		var flags []string
		if d.Absence != nil {
			flags = append(flags, StyleYellow.Render(d.Absence.Reason.Name))
		}
		if !d.BreakCompliantTotal || !d.BreakCompliantContinuous {
			flags = append(flags, StyleRed.Render("break"))
		}
		if d.MaxDailyWorkExceeded {
			flags = append(flags, StyleRed.Render(">10h"))
		}
		if d.RestPeriodViolation {
			flags = append(flags, StyleRed.Render("rest<11h"))
		}
		if d.HasNote {
			flags = append(flags, Dim(lang.T(i18n.HeatNote)))
		}
		date := d.DateLocal
		if accounting.IsWeekend(d.DateLocal) {
			date = Dim(date)
		}
		rows = append(rows, []string{
			date,
			accounting.FormatMinutes(d.WorkedMinutes),
			accounting.FormatMinutes(d.BreakMinutes),
			strings.Join(flags, " "),
		})
	}
	total := fmt.Sprintf("\n%s %s", lang.T(i18n.Worked), Bold(accounting.FormatMinutes(report.TotalWorkedMinutes)))
	return RenderBox(report.WeekStartLocal, RenderTable(headers, rows)+total)
}
