package formatter

import (
	"strconv"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/i18n"
)

// FormatQueue lists pending actions oldest first.
func FormatQueue(actions []*domain.PendingAction, lang i18n.Lang, now time.Time) string {
	if len(actions) == 0 {
		return Dim(lang.T(i18n.Empty)) + "\n"
	}
	headers := []string{"ID", "ACTION", "QUEUED"}
	rows := make([][]string, 0, len(actions))
	for _, a := range actions {
		rows = append(rows, []string{
			a.ID,
			KindLabel(lang, a.Payload.Kind, a.Payload.Location),
			HumanTimestamp(time.UnixMilli(a.CreatedAtMs), now),
		})
	}
	return RenderBox(lang.T(i18n.Queue), RenderTable(headers, rows))
}

// FormatEvents lists recorded clock events.
func FormatEvents(events []domain.ClockEventRecord, lang i18n.Lang) string {
	headers := []string{"ID", "TIME", "ACTION", "GEO"}
	rows := make([][]string, 0, len(events))
	for _, e := range events {
		ts := e.TsUTC
		if t, err := time.Parse(time.RFC3339Nano, e.TsUTC); err == nil {
			ts = t.Local().Format("2006-01-02 15:04")
		}
		geo := Dim("--")
		if e.Geo != nil {
			geo = strconv.FormatFloat(e.Geo.Lat, 'f', 4, 64) + "," + strconv.FormatFloat(e.Geo.Lng, 'f', 4, 64)
		}
		rows = append(rows, []string{
			strconv.FormatInt(e.ID, 10),
			ts,
			KindLabel(lang, e.Kind, e.Location),
			geo,
		})
	}
	return RenderTable(headers, rows)
}
