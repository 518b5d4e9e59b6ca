package agent

import (
	"sync"
	"time"
)

// Cookie and session-storage keys used by the tag.
const (
	cookieStored   = "mcclickid-store"   // policy-governed stored identity
	cookiePaid     = "mccid-paid"        // paid-only identity
	sessionKey     = "mcclickid"         // per-tab fallback identity
	sessionViewReg = "mcview-registered" // "register view once" marker
)

// CookieStore abstracts the browser's durable cookies and session-scoped
// storage so the agent's state machine can be driven without a browser.
type CookieStore interface {
	GetCookie(name string) string
	SetCookie(name, value, domain string, maxAge time.Duration)
	GetSession(key string) string
	SetSession(key, value string)
}

type memoryCookie struct {
	value     string
	expiresAt time.Time // zero means no expiry
}

// MemoryCookieStore is the in-memory CookieStore used by embedding programs
// and tests. Cookie expiry is honored on read.
type MemoryCookieStore struct {
	mu      sync.RWMutex
	cookies map[string]memoryCookie
	session map[string]string
}

func NewMemoryCookieStore() *MemoryCookieStore {
	return &MemoryCookieStore{
		cookies: make(map[string]memoryCookie),
		session: make(map[string]string),
	}
}

func (s *MemoryCookieStore) GetCookie(name string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.cookies[name]
	if !ok {
		return ""
	}
	if !c.expiresAt.IsZero() && time.Now().After(c.expiresAt) {
		return ""
	}
	return c.value
}

func (s *MemoryCookieStore) SetCookie(name, value, domain string, maxAge time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := memoryCookie{value: value}
	if maxAge > 0 {
		c.expiresAt = time.Now().Add(maxAge)
	}
	s.cookies[name] = c
}

func (s *MemoryCookieStore) GetSession(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session[key]
}

func (s *MemoryCookieStore) SetSession(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session[key] = value
}

// ClearSession models a new tab/session; durable cookies survive.
func (s *MemoryCookieStore) ClearSession() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = make(map[string]string)
}
