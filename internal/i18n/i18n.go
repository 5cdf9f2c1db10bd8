// Package i18n holds the user-facing strings of the punch client in English
// and German.
package i18n

import (
	"fmt"
	"strings"
)

// Lang is a supported interface language.
type Lang string

const (
	EN Lang = "en"
	DE Lang = "de"
)

// Detect picks the language from an explicit setting, falling back to a
// POSIX locale value such as "de_DE.UTF-8". Anything not German is English.
func Detect(explicit, locale string) Lang {
	for _, v := range []string{explicit, locale} {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
			continue
		}
		if strings.HasPrefix(v, "de") {
			return DE
		}
		return EN
	}
	return EN
}

// Key identifies one message.
type Key string

const (
	SessionExpired  Key = "auth.sessionExpired"
	OfflineQueued   Key = "errors.offlineQueued"
	Generic         Key = "errors.generic"
	OfflineBanner   Key = "dashboard.offlineBanner"
	Queue           Key = "dashboard.queue"
	Sync            Key = "dashboard.sync"
	Today           Key = "dashboard.today"
	Month           Key = "dashboard.month"
	Status          Key = "dashboard.status"
	Worked          Key = "dashboard.worked"
	Remaining       Key = "dashboard.remaining"
	Break           Key = "dashboard.break"
	BreakRemaining  Key = "dashboard.breakRemaining"
	WarnOver10h     Key = "dashboard.warningOver10h"
	WarnRest11h     Key = "dashboard.warningRest11h"
	ArriveOffice    Key = "dashboard.comeOffice"
	ArriveHome      Key = "dashboard.comeHome"
	Depart          Key = "dashboard.go"
	BreakStart      Key = "dashboard.breakStart"
	BreakEnd        Key = "dashboard.breakEnd"
	AbsenceFullDay  Key = "dashboard.absenceFullDay"
	OvertimeBalance Key = "dashboard.overtimeBalanceToDate"
	HeatBeforeStart Key = "dashboard.heatmap.beforeOvertimeStart"
	HeatAbsence     Key = "dashboard.heatmap.absence"
	HeatNote        Key = "dashboard.heatmap.note"
	LoginTitle      Key = "auth.login.title"
	RegisterTitle   Key = "auth.register.title"
	Email           Key = "auth.login.email"
	Password        Key = "auth.login.password"
	PasswordMin     Key = "auth.register.password"
	SignedInAs      Key = "auth.signedInAs"
	SignedOut       Key = "auth.signedOut"
	Unverified      Key = "auth.unverified"
	Recorded        Key = "clock.recorded"
	Flushed         Key = "queue.flushed"
	Empty           Key = "queue.empty"
	NoteSaved       Key = "notes.saved"
	NoteDeleted     Key = "notes.deleted"
	NoNote          Key = "notes.none"
	NotSignedIn     Key = "auth.notSignedIn"
	Pending         Key = "queue.pending"
	Target          Key = "dashboard.target"
	NotAllowed      Key = "clock.notAllowed"
)

var catalog = map[Lang]map[Key]string{
	EN: {
		SessionExpired:  "Session expired. Please sign in again.",
		OfflineQueued:   "Offline: action queued",
		Generic:         "Error",
		OfflineBanner:   "Offline, actions will be queued.",
		Queue:           "Queue",
		Sync:            "Sync",
		Today:           "Today",
		Month:           "Month",
		Status:          "Status",
		Worked:          "Worked",
		Remaining:       "Remaining",
		Break:           "Break",
		BreakRemaining:  "Break remaining",
		WarnOver10h:     "Warning: worked > 10h",
		WarnRest11h:     "Warning: rest period < 11h",
		ArriveOffice:    "Arrive (office)",
		ArriveHome:      "Arrive (home office)",
		Depart:          "Leave",
		BreakStart:      "Start break",
		BreakEnd:        "End break",
		AbsenceFullDay:  "Full-day absence",
		OvertimeBalance: "Overtime balance (to date)",
		HeatBeforeStart: "before overtime start date",
		HeatAbsence:     "absence",
		HeatNote:        "note",
		LoginTitle:      "Please sign in.",
		RegisterTitle:   "Create account.",
		Email:           "Email",
		Password:        "Password",
		PasswordMin:     "Password (min. 8 chars)",
		SignedInAs:      "Signed in as %s",
		SignedOut:       "Signed out.",
		Unverified:      "offline, not verified",
		Recorded:        "Recorded %s.",
		Flushed:         "Sent %d, %d still queued.",
		Empty:           "Queue is empty.",
		NoteSaved:       "Note saved.",
		NoteDeleted:     "Note deleted.",
		NoNote:          "No note for %s.",
		NotSignedIn:     "Not signed in. Run \"punch login\" first.",
		Pending:         "%d queued",
		Target:          "Target",
		NotAllowed:      "Not possible right now.",
	},
	DE: {
		SessionExpired:  "Session abgelaufen. Bitte erneut anmelden.",
		OfflineQueued:   "Offline: Aktion wurde in Queue gespeichert",
		Generic:         "Fehler",
		OfflineBanner:   "Offline, Aktionen werden zwischengespeichert.",
		Queue:           "Queue",
		Sync:            "Sync",
		Today:           "Heute",
		Month:           "Monat",
		Status:          "Status",
		Worked:          "Gearbeitet",
		Remaining:       "Noch",
		Break:           "Pause",
		BreakRemaining:  "Pause noch",
		WarnOver10h:     "Warnung: > 10h gearbeitet",
		WarnRest11h:     "Warnung: Ruhezeit < 11h",
		ArriveOffice:    "Kommen Büro",
		ArriveHome:      "Kommen Home Office",
		Depart:          "Gehen",
		BreakStart:      "Pause Beginn",
		BreakEnd:        "Pause Ende",
		AbsenceFullDay:  "Ganztägige Abwesenheit",
		OvertimeBalance: "Stundenkonto (bis heute)",
		HeatBeforeStart: "vor Startdatum Stundenkonto",
		HeatAbsence:     "Abwesenheit",
		HeatNote:        "Notiz",
		LoginTitle:      "Bitte anmelden.",
		RegisterTitle:   "Account erstellen.",
		Email:           "E-Mail",
		Password:        "Passwort",
		PasswordMin:     "Passwort (min. 8 Zeichen)",
		SignedInAs:      "Angemeldet als %s",
		SignedOut:       "Abgemeldet.",
		Unverified:      "offline, nicht bestätigt",
		Recorded:        "%s gespeichert.",
		Flushed:         "%d gesendet, %d noch in der Queue.",
		Empty:           "Queue ist leer.",
		NoteSaved:       "Notiz gespeichert.",
		NoteDeleted:     "Notiz gelöscht.",
		NoNote:          "Keine Notiz für %s.",
		NotSignedIn:     "Nicht angemeldet. Bitte zuerst \"punch login\" ausführen.",
		Pending:         "%d in der Queue",
		Target:          "Soll",
		NotAllowed:      "Gerade nicht möglich.",
	},
}

// T returns the message for key in l, formatted with args when given.
// Unknown languages use English; unknown keys return the key itself.
func (l Lang) T(key Key, args ...any) string {
	msgs, ok := catalog[l]
	if !ok {
		msgs = catalog[EN]
	}
	msg, ok := msgs[key]
	if !ok {
		msg, ok = catalog[EN][key]
		if !ok {
			return string(key)
		}
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
