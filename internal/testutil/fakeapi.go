package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/bytedance/sonic"
)

const refreshCookie = "tt_refresh"

// FakeBackend is an in-process time-tracking backend for tests. It issues
// opaque access tokens, rotates the refresh cookie, deduplicates clock
// events by client_event_id and can be switched offline.
type FakeBackend struct {
	Server *httptest.Server

	RefreshCalls      atomic.Int32
	ClockCalls        atomic.Int32
	UnauthorizedCalls atomic.Int32

	mu            sync.Mutex
	offline       bool
	users         map[string]fakeUser
	accessTokens  map[string]int64
	refreshTokens map[string]int64
	events        []domain.ClockEventRecord
	byClientID    map[string]int
	rejectClock   map[string]fakeRejection
	notes         map[string]domain.DayNote
	status        domain.DailyStatus
	month         domain.MonthReport
	week          domain.WeekReport
	refreshGate   chan struct{}
	seq           int64
}

type fakeUser struct {
	identity domain.Identity
	password string
}

type fakeRejection struct {
	status int
	detail string
}

// NewFakeBackend starts a fake backend that is closed with the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		users:         make(map[string]fakeUser),
		accessTokens:  make(map[string]int64),
		refreshTokens: make(map[string]int64),
		byClientID:    make(map[string]int),
		rejectClock:   make(map[string]fakeRejection),
		notes:         make(map[string]domain.DayNote),
	}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", f.handleRegister)
	mux.HandleFunc("POST /auth/login", f.handleLogin)
	mux.HandleFunc("POST /auth/refresh", f.handleRefresh)
	mux.HandleFunc("POST /auth/logout", f.handleLogout)
	mux.HandleFunc("GET /auth/me", f.authed(f.handleMe))
	mux.HandleFunc("POST /clock/events", f.authed(f.handleClock))
	mux.HandleFunc("GET /clock/events", f.authed(f.handleListEvents))
	mux.HandleFunc("GET /dashboard/today", f.authed(f.handleToday))
	mux.HandleFunc("GET /reports/month", f.authed(f.handleMonth))
	mux.HandleFunc("GET /reports/week", f.authed(f.handleWeek))
	mux.HandleFunc("GET /notes/{date}", f.authed(f.handleGetNote))
	mux.HandleFunc("PUT /notes/{date}", f.authed(f.handlePutNote))
	mux.HandleFunc("DELETE /notes/{date}", f.authed(f.handleDeleteNote))

	f.Server = httptest.NewServer(f.offlineGuard(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the base URL of the fake.
func (f *FakeBackend) URL() string { return f.Server.URL }

// SetOffline makes every request fail at the connection level.
func (f *FakeBackend) SetOffline(offline bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = offline
}

// AddUser registers a user directly and returns its identity.
func (f *FakeBackend) AddUser(email, password string) domain.Identity {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password)
}

func (f *FakeBackend) addUserLocked(email, password string) domain.Identity {
	id := domain.Identity{ID: int64(len(f.users) + 1), Email: email, Timezone: "Europe/Berlin"}
	f.users[email] = fakeUser{identity: id, password: password}
	return id
}

// ExpireAccessTokens invalidates every issued access token so the next
// authenticated call gets 401.
func (f *FakeBackend) ExpireAccessTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accessTokens = make(map[string]int64)
}

// RevokeRefreshTokens makes the next refresh answer 401.
func (f *FakeBackend) RevokeRefreshTokens() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshTokens = make(map[string]int64)
}

// HoldRefresh blocks refresh handlers until the returned release is called.
func (f *FakeBackend) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.refreshGate = gate
	f.mu.Unlock()
	var once sync.Once
	return func() { once.Do(func() { close(gate) }) }
}

// RejectClockEvent answers status/detail for the given client_event_id
// until cleared with status 0.
func (f *FakeBackend) RejectClockEvent(clientEventID string, status int, detail string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if status == 0 {
		delete(f.rejectClock, clientEventID)
		return
	}
	f.rejectClock[clientEventID] = fakeRejection{status: status, detail: detail}
}

// Events returns the accepted clock events in acceptance order.
func (f *FakeBackend) Events() []domain.ClockEventRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.ClockEventRecord(nil), f.events...)
}

// SetStatus sets the /dashboard/today payload.
func (f *FakeBackend) SetStatus(s domain.DailyStatus) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.status = s
}

// SetMonth sets the /reports/month payload.
func (f *FakeBackend) SetMonth(m domain.MonthReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.month = m
}

// SetWeek sets the /reports/week payload.
func (f *FakeBackend) SetWeek(w domain.WeekReport) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.week = w
}

func (f *FakeBackend) offlineGuard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		offline := f.offline
		f.mu.Unlock()
		if offline {
			hj, ok := w.(http.Hijacker)
			if !ok {
				panic("fake backend: response writer cannot hijack")
			}
			conn, _, err := hj.Hijack()
			if err == nil {
				conn.Close()
			}
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeBackend) authed(h func(w http.ResponseWriter, r *http.Request, userID int64)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		f.mu.Lock()
		userID, ok := f.accessTokens[token]
		f.mu.Unlock()
		if !ok {
			f.UnauthorizedCalls.Add(1)
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		h(w, r, userID)
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authBody struct {
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
	User domain.Identity `json:"user"`
}

func (f *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(r, &c); err != nil || len(c.Password) < 8 {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid registration")
		return
	}
	f.mu.Lock()
	if _, exists := f.users[c.Email]; exists {
		f.mu.Unlock()
		writeDetail(w, http.StatusConflict, "Email already registered")
		return
	}
	id := f.addUserLocked(c.Email, c.Password)
	f.mu.Unlock()
	f.issue(w, id)
}

func (f *FakeBackend) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := decodeBody(r, &c); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	f.mu.Lock()
	u, ok := f.users[c.Email]
	f.mu.Unlock()
	if !ok || u.password != c.Password {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	f.issue(w, u.identity)
}

func (f *FakeBackend) handleRefresh(w http.ResponseWriter, r *http.Request) {
	f.RefreshCalls.Add(1)
	f.mu.Lock()
	gate := f.refreshGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}

	c, err := r.Cookie(refreshCookie)
	if err != nil {
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	f.mu.Lock()
	userID, ok := f.refreshTokens[c.Value]
	delete(f.refreshTokens, c.Value)
	var id domain.Identity
	for _, u := range f.users {
		if u.identity.ID == userID {
			id = u.identity
		}
	}
	f.mu.Unlock()
	if !ok {
		http.SetCookie(w, &http.Cookie{Name: refreshCookie, Path: "/auth", MaxAge: -1})
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	f.issue(w, id)
}

func (f *FakeBackend) handleLogout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(refreshCookie); err == nil {
		f.mu.Lock()
		delete(f.refreshTokens, c.Value)
		f.mu.Unlock()
	}
	http.SetCookie(w, &http.Cookie{Name: refreshCookie, Path: "/auth", MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (f *FakeBackend) issue(w http.ResponseWriter, id domain.Identity) {
	f.mu.Lock()
	f.seq++
	access := fmt.Sprintf("at-%d", f.seq)
	refresh := fmt.Sprintf("rt-%d", f.seq)
	f.accessTokens[access] = id.ID
	f.refreshTokens[refresh] = id.ID
	f.mu.Unlock()

	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    refresh,
		Path:     "/auth",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
	})
	var body authBody
	body.Token.AccessToken = access
	body.User = id
	writeJSON(w, http.StatusOK, body)
}

func (f *FakeBackend) handleMe(w http.ResponseWriter, _ *http.Request, userID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.identity.ID == userID {
			writeJSON(w, http.StatusOK, u.identity)
			return
		}
	}
	writeDetail(w, http.StatusUnauthorized, "Not authenticated")
}

func (f *FakeBackend) handleClock(w http.ResponseWriter, r *http.Request, _ int64) {
	f.ClockCalls.Add(1)
	var ev domain.ClockEvent
	if err := decodeBody(r, &ev); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid body")
		return
	}
	if err := ev.Validate(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if rej, ok := f.rejectClock[ev.ClientEventID]; ok {
		writeDetail(w, rej.status, rej.detail)
		return
	}
	if i, ok := f.byClientID[ev.ClientEventID]; ok && ev.ClientEventID != "" {
		writeJSON(w, http.StatusOK, f.events[i])
		return
	}

	ts := time.Now().UTC()
	if ev.TsUTC != nil {
		ts = ev.TsUTC.UTC()
	}
	rec := domain.ClockEventRecord{
		ID:       int64(len(f.events) + 1),
		TsUTC:    ts.Format(time.RFC3339Nano),
		Kind:     ev.Kind,
		Location: ev.Location,
		Geo:      ev.Geo,
	}
	if ev.ClientEventID != "" {
		id := ev.ClientEventID
		rec.ClientEventID = &id
		f.byClientID[id] = len(f.events)
	}
	f.events = append(f.events, rec)
	writeJSON(w, http.StatusOK, rec)
}

func (f *FakeBackend) handleListEvents(w http.ResponseWriter, _ *http.Request, _ int64) {
	writeJSON(w, http.StatusOK, f.Events())
}

func (f *FakeBackend) handleToday(w http.ResponseWriter, _ *http.Request, _ int64) {
	f.mu.Lock()
	s := f.status
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, s)
}

func (f *FakeBackend) handleMonth(w http.ResponseWriter, r *http.Request, _ int64) {
	f.mu.Lock()
	m := f.month
	f.mu.Unlock()
	if month := r.URL.Query().Get("month"); month != "" && !strings.HasPrefix(m.MonthStartLocal, month) {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid month")
		return
	}
	writeJSON(w, http.StatusOK, m)
}

func (f *FakeBackend) handleWeek(w http.ResponseWriter, _ *http.Request, _ int64) {
	f.mu.Lock()
	wk := f.week
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, wk)
}

func (f *FakeBackend) handleGetNote(w http.ResponseWriter, r *http.Request, _ int64) {
	f.mu.Lock()
	n, ok := f.notes[r.PathValue("date")]
	f.mu.Unlock()
	if !ok {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (f *FakeBackend) handlePutNote(w http.ResponseWriter, r *http.Request, _ int64) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil || len(body.Content) > 4000 {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid note")
		return
	}
	date := r.PathValue("date")
	f.mu.Lock()
	n := domain.DayNote{
		ID:        int64(len(f.notes) + 1),
		DateLocal: date,
		Content:   body.Content,
		UpdatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	f.notes[date] = n
	f.mu.Unlock()
	writeJSON(w, http.StatusOK, n)
}

func (f *FakeBackend) handleDeleteNote(w http.ResponseWriter, r *http.Request, _ int64) {
	f.mu.Lock()
	_, ok := f.notes[r.PathValue("date")]
	delete(f.notes, r.PathValue("date"))
	f.mu.Unlock()
	if !ok {
		writeDetail(w, http.StatusNotFound, "Note not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodeBody(r *http.Request, v any) error {
	return sonic.ConfigStd.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = sonic.ConfigStd.NewEncoder(w).Encode(v)
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
