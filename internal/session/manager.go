package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/alexanderramin/punchclock/internal/domain"
	"github.com/alexanderramin/punchclock/internal/observability"
	"github.com/alexanderramin/punchclock/internal/repository"
	"github.com/alexanderramin/punchclock/internal/transport"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"
)

// ErrSessionEnded is returned by Refresh when Logout or an expiry ended the
// session while the refresh was in flight. Its result is discarded.
var ErrSessionEnded = errors.New("session ended during refresh")

// Sender performs one backend call with an optional bearer token.
type Sender interface {
	Send(ctx context.Context, req *transport.Request, bearer string, out any) error
}

// Options tunes a Manager.
type Options struct {
	// RefreshTimeout bounds a refresh independently of the caller that
	// started it. Zero uses 10s.
	RefreshTimeout time.Duration

	// ExpiredMessage is stored as the sign-in flash when the backend
	// rejects the refresh credential.
	ExpiredMessage string

	Observer observability.UseCaseObserver
}

// Manager owns the bearer token and the authentication state. It is the
// only writer of either.
type Manager struct {
	client         Sender
	store          repository.IdentityStore
	refreshTimeout time.Duration
	expiredMessage string
	observer       observability.UseCaseObserver

	flight singleflight.Group

	// authMu orders sign-in against sign-out so the identity store never
	// ends up holding a session that was already ended.
	authMu sync.Mutex

	mu        sync.Mutex
	gen       uint64
	token     string
	state     State
	expired   bool
	listeners map[int]func(State)
	nextSubID int
}

// NewManager creates a Manager in the loading state.
func NewManager(client Sender, store repository.IdentityStore, opts Options) *Manager {
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 10 * time.Second
	}
	return &Manager{
		client:         client,
		store:          store,
		refreshTimeout: opts.RefreshTimeout,
		expiredMessage: opts.ExpiredMessage,
		observer:       observability.OrNoop(opts.Observer),
		state:          loading(),
		listeners:      make(map[int]func(State)),
	}
}

type authResponse struct {
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
	User domain.Identity `json:"user"`
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// State returns the current snapshot.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Token returns the current bearer token, "" when none.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *Manager) generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// TokenExpiry reads the exp claim of the current token without verifying
// its signature. ok is false when there is no token or no readable claim.
func (m *Manager) TokenExpiry() (exp time.Time, ok bool) {
	tok := m.Token()
	if tok == "" {
		return time.Time{}, false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(tok, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}

// Subscribe calls fn with the current state and again after every change.
// Calls happen on the goroutine that caused the change.
func (m *Manager) Subscribe(fn func(State)) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.listeners[id] = fn
	current := m.state
	m.mu.Unlock()

	fn(current)
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	fns := make([]func(State), 0, len(m.listeners))
	for id := 0; id < m.nextSubID; id++ {
		if fn, ok := m.listeners[id]; ok {
			fns = append(fns, fn)
		}
	}
	m.mu.Unlock()

	for _, fn := range fns {
		fn(s)
	}
}

// Do performs an authenticated request. On 401 it refreshes once and, if
// that succeeds, resubmits the request exactly once with refresh disabled.
// When the refresh itself is rejected with 401 the session expires.
func (m *Manager) Do(ctx context.Context, req *transport.Request, out any) error {
	sent := m.Token()
	err := m.client.Send(ctx, req, sent, out)
	if err == nil || req.SkipRefresh || !errors.Is(err, transport.ErrUnauthorized) {
		return err
	}

	// A refresh that finished while this request was in flight already
	// produced a newer token.
	if current := m.Token(); current == "" || current == sent {
		ok, refreshErr := m.Refresh(ctx)
		if !ok {
			if errors.Is(refreshErr, transport.ErrUnauthorized) {
				m.expire(ctx)
			}
			return err
		}
	}

	retry := *req
	retry.SkipRefresh = true
	return m.client.Send(ctx, &retry, m.Token(), out)
}

// Refresh exchanges the refresh cookie for a new token. Concurrent callers
// share one outstanding request; the next call after it completes starts a
// new one. The request runs detached from ctx so one caller giving up does
// not fail the others.
func (m *Manager) Refresh(ctx context.Context) (bool, error) {
	ch := m.flight.DoChan("refresh", func() (any, error) {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.refreshTimeout)
		defer cancel()
		gen := m.generation()

		done := observability.Track(rctx, m.observer, "session.refresh", nil)
		var resp authResponse
		err := m.client.Send(rctx, &transport.Request{
			Method:      http.MethodPost,
			Path:        "/auth/refresh",
			SkipRefresh: true,
		}, "", &resp)
		done(err)
		if err != nil {
			return false, err
		}
		if !m.signIn(rctx, resp, gen) {
			return false, ErrSessionEnded
		}
		return true, nil
	})

	select {
	case <-ctx.Done():
		return false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return false, res.Err
		}
		return res.Val.(bool), nil
	}
}

// Restore runs at process start. A cached identity is shown immediately as
// unverified, then Revalidate decides.
func (m *Manager) Restore(ctx context.Context) error {
	if cached, err := m.store.LoadIdentity(ctx); err == nil {
		m.setState(authenticated(*cached, false))
	} else if !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("loading cached identity: %w", err)
	}
	return m.Revalidate(ctx)
}

// Revalidate refreshes the session. Success authenticates and 401 expires
// the session. Any other failure leaves an authenticated session as it is,
// and otherwise falls back to the cached identity or anonymous.
func (m *Manager) Revalidate(ctx context.Context) error {
	ok, err := m.Refresh(ctx)
	if ok {
		return nil
	}
	if errors.Is(err, transport.ErrUnauthorized) {
		m.expire(ctx)
		return nil
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if m.State().Authenticated() {
		return nil
	}

	cached, lerr := m.store.LoadIdentity(ctx)
	if lerr == nil {
		m.setState(authenticated(*cached, false))
		return nil
	}
	m.mu.Lock()
	m.token = ""
	m.mu.Unlock()
	m.setState(anonymous())
	if !errors.Is(lerr, repository.ErrNotFound) {
		return fmt.Errorf("loading cached identity: %w", lerr)
	}
	return nil
}

// Login authenticates with email and password. It never triggers a refresh.
func (m *Manager) Login(ctx context.Context, email, password string) (*domain.Identity, error) {
	return m.authenticate(ctx, "/auth/login", "session.login", email, password)
}

// Register creates an account and signs it in.
func (m *Manager) Register(ctx context.Context, email, password string) (*domain.Identity, error) {
	return m.authenticate(ctx, "/auth/register", "session.register", email, password)
}

func (m *Manager) authenticate(ctx context.Context, path, useCase, email, password string) (*domain.Identity, error) {
	done := observability.Track(ctx, m.observer, useCase, nil)
	gen := m.generation()
	var resp authResponse
	err := m.client.Send(ctx, &transport.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        credentials{Email: email, Password: password},
		SkipRefresh: true,
	}, "", &resp)
	done(err)
	if err != nil {
		return nil, err
	}
	if !m.signIn(ctx, resp, gen) {
		return nil, ErrSessionEnded
	}
	id := resp.User
	return &id, nil
}

// Logout notifies the backend on a best-effort basis and then clears the
// token and cached identity whatever the outcome. Only a local storage
// failure is returned.
func (m *Manager) Logout(ctx context.Context) error {
	done := observability.Track(ctx, m.observer, "session.logout", nil)
	sendErr := m.client.Send(ctx, &transport.Request{
		Method:      http.MethodPost,
		Path:        "/auth/logout",
		SkipRefresh: true,
	}, m.Token(), nil)
	done(sendErr)

	m.authMu.Lock()
	defer m.authMu.Unlock()
	m.mu.Lock()
	m.gen++
	m.token = ""
	m.mu.Unlock()
	clearErr := m.store.ClearIdentity(ctx)
	m.setState(anonymous())
	return clearErr
}

// TakeFlash returns the pending sign-in message once.
func (m *Manager) TakeFlash(ctx context.Context) (string, error) {
	return m.store.TakeFlash(ctx)
}

// signIn installs resp unless the session generation moved past gen since
// the request was sent.
func (m *Manager) signIn(ctx context.Context, resp authResponse, gen uint64) bool {
	m.authMu.Lock()
	defer m.authMu.Unlock()

	m.mu.Lock()
	if m.gen != gen {
		m.mu.Unlock()
		return false
	}
	m.token = resp.Token.AccessToken
	m.expired = false
	m.mu.Unlock()

	if err := m.store.SaveIdentity(ctx, resp.User); err != nil {
		m.observer.ObserveUseCase(ctx, observability.UseCaseEvent{
			Name: "session.persist_identity", Err: err, StartedAt: time.Now(),
		})
	}
	m.setState(authenticated(resp.User, true))
	return true
}

// expire drops the session after the backend rejected the refresh
// credential. The flash message is written once per expiry, and only when
// there was a session to lose.
func (m *Manager) expire(ctx context.Context) {
	m.authMu.Lock()
	defer m.authMu.Unlock()

	m.mu.Lock()
	already := m.expired
	hadSession := m.state.Authenticated()
	m.expired = true
	m.gen++
	m.token = ""
	m.mu.Unlock()

	if !already && hadSession && m.expiredMessage != "" {
		if err := m.store.SetFlash(ctx, m.expiredMessage); err != nil {
			m.observer.ObserveUseCase(ctx, observability.UseCaseEvent{
				Name: "session.flash", Err: err, StartedAt: time.Now(),
			})
		}
	}
	if err := m.store.ClearIdentity(ctx); err != nil {
		m.observer.ObserveUseCase(ctx, observability.UseCaseEvent{
			Name: "session.clear_identity", Err: err, StartedAt: time.Now(),
		})
	}
	m.setState(anonymous())
}

// WatchOnline revalidates a session warm-started from the cache whenever
// connectivity returns, until ctx ends. Verified and anonymous sessions are
// left alone.
func (m *Manager) WatchOnline(ctx context.Context, online <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-online:
			if !ok {
				return
			}
			if st := m.State(); !st.Authenticated() || st.Verified {
				continue
			}
			_ = m.Revalidate(ctx)
		}
	}
}
