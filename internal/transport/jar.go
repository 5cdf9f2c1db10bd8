package transport

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path"
	"sync"
	"time"

	"github.com/alexanderramin/punchclock/internal/repository"
	"golang.org/x/net/publicsuffix"
)

// PersistentJar is an http.CookieJar whose contents survive process
// restarts. Cookies received from a host are mirrored into a CookieStore
// and replayed into the in-memory jar on construction.
type PersistentJar struct {
	jar   *cookiejar.Jar
	store repository.CookieStore
	onErr func(error)

	mu     sync.Mutex
	mirror map[string]map[string]*http.Cookie
}

// NewPersistentJar loads stored cookies into a fresh jar. onErr receives
// store write failures from SetCookies, which has no error return; nil
// ignores them.
func NewPersistentJar(ctx context.Context, store repository.CookieStore, onErr func(error)) (*PersistentJar, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	if onErr == nil {
		onErr = func(error) {}
	}
	pj := &PersistentJar{
		jar:    jar,
		store:  store,
		onErr:  onErr,
		mirror: make(map[string]map[string]*http.Cookie),
	}

	stored, err := store.LoadAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading cookies: %w", err)
	}
	for _, sc := range stored {
		scheme := "http"
		if sc.Cookie.Secure {
			scheme = "https"
		}
		jar.SetCookies(&url.URL{Scheme: scheme, Host: sc.Host, Path: "/"}, []*http.Cookie{sc.Cookie})
		pj.hostCookies(sc.Host)[cookieKey(sc.Cookie)] = sc.Cookie
	}
	return pj, nil
}

func (j *PersistentJar) Cookies(u *url.URL) []*http.Cookie {
	return j.jar.Cookies(u)
}

func (j *PersistentJar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.jar.SetCookies(u, cookies)

	host := u.Hostname()
	now := time.Now()

	j.mu.Lock()
	byKey := j.hostCookies(host)
	for _, c := range cookies {
		key := c.Name + ";" + cookiePath(c, u)
		if stored := normalizeCookie(c, u, now); stored != nil {
			byKey[key] = stored
		} else {
			delete(byKey, key)
		}
	}
	snapshot := make([]*http.Cookie, 0, len(byKey))
	for _, c := range byKey {
		snapshot = append(snapshot, c)
	}
	j.mu.Unlock()

	if err := j.store.ReplaceHost(context.Background(), host, snapshot); err != nil {
		j.onErr(err)
	}
}

// hostCookies must be called with mu held or before the jar is shared.
func (j *PersistentJar) hostCookies(host string) map[string]*http.Cookie {
	byKey, ok := j.mirror[host]
	if !ok {
		byKey = make(map[string]*http.Cookie)
		j.mirror[host] = byKey
	}
	return byKey
}

// normalizeCookie returns the cookie as it should be persisted, or nil when
// the server asked for its removal. Max-Age is folded into Expires.
func normalizeCookie(c *http.Cookie, u *url.URL, now time.Time) *http.Cookie {
	if c.MaxAge < 0 {
		return nil
	}
	out := &http.Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Path:     cookiePath(c, u),
		Expires:  c.Expires,
		Secure:   c.Secure,
		HttpOnly: c.HttpOnly,
	}
	if c.MaxAge > 0 {
		out.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
	}
	if !out.Expires.IsZero() && !out.Expires.After(now) {
		return nil
	}
	return out
}

// cookiePath applies the RFC 6265 default-path rule.
func cookiePath(c *http.Cookie, u *url.URL) string {
	if c.Path != "" && c.Path[0] == '/' {
		return c.Path
	}
	dir := path.Dir(u.Path)
	if u.Path == "" || u.Path[0] != '/' || dir == "." {
		return "/"
	}
	return dir
}

func cookieKey(c *http.Cookie) string {
	return c.Name + ";" + c.Path
}
