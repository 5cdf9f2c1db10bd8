package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/punchclock/internal/accounting"
	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
	"github.com/alexanderramin/punchclock/internal/service"
)

const workBarWidth = 20

// KindLabel returns the localized button label of a clock action.
func KindLabel(lang i18n.Lang, kind domain.ClockKind, loc *domain.WorkLocation) string {
	switch kind {
	case domain.ClockArrive:
		if loc != nil && *loc == domain.LocationHome {
			return lang.T(i18n.ArriveHome)
		}
		return lang.T(i18n.ArriveOffice)
	case domain.ClockDepart:
		return lang.T(i18n.Depart)
	case domain.ClockBreakStart:
		return lang.T(i18n.BreakStart)
	case domain.ClockBreakEnd:
		return lang.T(i18n.BreakEnd)
	}
	return string(kind)
}

// GateHints lists the actions the gate allows with their CLI spelling.
func GateHints(lang i18n.Lang, g accounting.ActionGate) []string {
	var out []string
	if g.CanArrive {
		office, home := domain.LocationOffice, domain.LocationHome
		out = append(out,
			KindLabel(lang, domain.ClockArrive, &office)+Dim("  punch clock arrive"),
			KindLabel(lang, domain.ClockArrive, &home)+Dim("  punch clock arrive --location home"))
	}
	if g.CanBreakStart {
		out = append(out, KindLabel(lang, domain.ClockBreakStart, nil)+Dim("  punch clock break-start"))
	}
	if g.CanBreakEnd {
		out = append(out, KindLabel(lang, domain.ClockBreakEnd, nil)+Dim("  punch clock break-end"))
	}
	if g.CanDepart {
		out = append(out, KindLabel(lang, domain.ClockDepart, nil)+Dim("  punch clock depart"))
	}
	return out
}

// FormatToday renders today's status, warnings, queue size and the
// actions currently allowed.
func FormatToday(view *service.TodayView, lang i18n.Lang) string {
	s := view.Status
	var b strings.Builder

	fmt.Fprintf(&b, "%s  %s\n\n", Bold(s.DateLocal), StatePill(s.State))
	rows := [][]string{
		{lang.T(i18n.Worked), accounting.FormatMinutes(s.WorkedMinutes) + "  " + RenderWorkBar(s.WorkedMinutes, s.TargetMinutes, workBarWidth)},
		{lang.T(i18n.Target), accounting.FormatMinutes(s.TargetMinutes)},
		{lang.T(i18n.Remaining), accounting.FormatMinutes(s.RemainingWorkMinutes)},
		{lang.T(i18n.Break), fmt.Sprintf("%s / %s", accounting.FormatMinutes(s.BreakMinutes), accounting.FormatMinutes(s.RequiredBreakMinutes))},
		{lang.T(i18n.BreakRemaining), accounting.FormatMinutes(s.RemainingBreakMinutes)},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "%-18s %s\n", r[0], r[1])
	}

	if s.Absence != nil {
		fmt.Fprintf(&b, "\n%s\n", StyleYellow.Render(fmt.Sprintf("%s: %s", lang.T(i18n.AbsenceFullDay), s.Absence.Reason.Name)))
	}
	if s.MaxDailyWorkExceeded {
		fmt.Fprintf(&b, "\n%s\n", StyleRed.Render(lang.T(i18n.WarnOver10h)))
	}
	if s.RestPeriodViolation {
		fmt.Fprintf(&b, "\n%s\n", StyleRed.Render(lang.T(i18n.WarnRest11h)))
	}
	if view.Pending > 0 {
		fmt.Fprintf(&b, "\n%s\n", StyleYellow.Render(lang.T(i18n.Pending, view.Pending)))
	}
	if hints := GateHints(lang, view.Gate); len(hints) > 0 {
		b.WriteString("\n")
		for _, h := range hints {
			fmt.Fprintf(&b, "  %s\n", h)
		}
	}
	return RenderBox(lang.T(i18n.Today), strings.TrimRight(b.String(), "\n"))
}
