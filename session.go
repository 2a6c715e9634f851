package relay

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/minus-twelve/relay/storage"
	"github.com/minus-twelve/relay/types"
)

// ErrSessionExpired is returned when refreshing a session that is already
// expired or destroyed.
var ErrSessionExpired = errors.New("session expired")

const (
	idBytes        = 32
	createAttempts = 3
)

// SessionManager is the process-wide session cache. It owns the Store, the
// expiry policy and the background sweep. Once a session is past its expiry
// every method treats it as absent, whether or not the sweep has removed it
// yet.
type SessionManager struct {
	store        Store
	config       types.SessionConfig
	logger       *slog.Logger
	now          func() time.Time
	shutdownChan chan struct{}
	closeOnce    sync.Once
	wg           sync.WaitGroup
}

type Option func(*SessionManager)

// WithClock replaces time.Now for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(sm *SessionManager) {
		sm.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(sm *SessionManager) {
		sm.logger = logger
	}
}

// NewManager starts the sweep goroutine; call Close to stop it.
func NewManager(store Store, config types.SessionConfig, opts ...Option) *SessionManager {
	if store == nil {
		store = storage.NewMemoryStore(0)
	}
	if config.TTL <= 0 {
		config.TTL = DefaultSessionTTL
	}
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	if config.SweepInterval <= 0 {
		config.SweepInterval = DefaultSweepInterval
	}

	manager := &SessionManager{
		store:        store,
		config:       config,
		now:          time.Now,
		shutdownChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(manager)
	}
	if manager.logger == nil {
		manager.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	manager.wg.Add(1)
	go manager.sweepLoop()

	return manager
}

func (sm *SessionManager) sweepLoop() {
	defer sm.wg.Done()

	ticker := time.NewTicker(sm.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := sm.Sweep(context.Background()); err != nil {
				sm.logger.Warn("session sweep failed", "error", err)
			}
		case <-sm.shutdownChan:
			return
		}
	}
}

// Sweep removes every expired session once.
func (sm *SessionManager) Sweep(ctx context.Context) (int, error) {
	removed, err := sm.store.Cleanup(ctx, sm.now())
	if err != nil {
		return removed, fmt.Errorf("cleanup: %w", err)
	}
	if removed > 0 {
		sm.logger.Debug("swept expired sessions", "removed", removed)
	}
	return removed, nil
}

// Close stops the sweep and waits for it to exit. It is safe to call more
// than once.
func (sm *SessionManager) Close() error {
	sm.closeOnce.Do(func() {
		close(sm.shutdownChan)
	})
	sm.wg.Wait()
	return nil
}

// Get returns the session for id unless it is unknown or expired.
func (sm *SessionManager) Get(ctx context.Context, id string) (*types.Session, bool) {
	if id == "" {
		return nil, false
	}
	session, err := sm.store.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			sm.logger.Warn("session lookup failed", "error", err)
		}
		return nil, false
	}
	if session.Expired(sm.now()) {
		return nil, false
	}
	return session, true
}

// ResolveFromCookie looks up the session named by the cookie header.
func (sm *SessionManager) ResolveFromCookie(ctx context.Context, cookieHeader string) (*types.Session, bool) {
	id, ok := ParseCookieHeader(cookieHeader)[sm.config.CookieName]
	if !ok {
		return nil, false
	}
	return sm.Get(ctx, id)
}

// GetOrCreate refreshes and returns the session named by the cookie header,
// or creates a new one when the cookie is missing, unknown or stale. It only
// fails when the store itself does.
func (sm *SessionManager) GetOrCreate(ctx context.Context, cookieHeader string) (*types.Session, error) {
	if session, ok := sm.ResolveFromCookie(ctx, cookieHeader); ok {
		err := sm.Refresh(ctx, session, 0)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, ErrSessionExpired) {
			return nil, err
		}
	}
	return sm.Create(ctx)
}

// Create allocates a session with a fresh random id and empty data.
func (sm *SessionManager) Create(ctx context.Context) (*types.Session, error) {
	for attempt := 0; attempt < createAttempts; attempt++ {
		id, err := GenerateID()
		if err != nil {
			return nil, err
		}

		session := types.NewSession(id, sm.now(), sm.config.TTL)
		err = sm.store.Create(ctx, session)
		if err == nil {
			return session, nil
		}
		if !errors.Is(err, storage.ErrExists) {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}
	return nil, errors.New("create session: could not allocate a unique id")
}

// Refresh extends the expiry to now+window; a zero window uses the
// configured TTL.
func (sm *SessionManager) Refresh(ctx context.Context, session *types.Session, window time.Duration) error {
	if window <= 0 {
		window = sm.config.TTL
	}
	now := sm.now()
	if session.Expired(now) || !session.Refresh(now, window) {
		return ErrSessionExpired
	}
	if err := sm.store.Save(ctx, session); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrSessionExpired
		}
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

// Destroy clears the session and expires it immediately. The entry stays in
// the store until the next sweep but Get reports it absent from now on.
func (sm *SessionManager) Destroy(ctx context.Context, session *types.Session) error {
	session.Destroy(sm.now())
	if err := sm.store.Save(ctx, session); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("destroy session: %w", err)
	}
	return nil
}

// Rotate moves the data of session to a new id and destroys the old one.
// The caller must issue the cookie of the returned session.
func (sm *SessionManager) Rotate(ctx context.Context, session *types.Session) (*types.Session, error) {
	if session.Expired(sm.now()) {
		return nil, ErrSessionExpired
	}
	fresh, err := sm.Create(ctx)
	if err != nil {
		return nil, err
	}
	for k, v := range session.Data() {
		fresh.Set(k, v)
	}
	if err := sm.store.Save(ctx, fresh); err != nil {
		return nil, fmt.Errorf("rotate session: %w", err)
	}
	if err := sm.Destroy(ctx, session); err != nil {
		return nil, err
	}
	return fresh, nil
}

// Commit persists data written to the session during a request. A session
// that expired or was removed meanwhile is left gone.
func (sm *SessionManager) Commit(ctx context.Context, session *types.Session) error {
	if session.Expired(sm.now()) {
		return nil
	}
	if err := sm.store.Save(ctx, session); err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("commit session: %w", err)
	}
	return nil
}

// Cookie returns the cookie descriptor for session.
func (sm *SessionManager) Cookie(session *types.Session) types.Cookie {
	return session.Cookie(sm.config.CookieName)
}

// Len counts stored sessions, including expired ones the sweep has not
// removed yet.
func (sm *SessionManager) Len(ctx context.Context) (int, error) {
	return sm.store.Len(ctx)
}

func (sm *SessionManager) CookieName() string {
	return sm.config.CookieName
}

func (sm *SessionManager) SessionTTL() time.Duration {
	return sm.config.TTL
}

func (sm *SessionManager) SecureCookie() bool {
	return sm.config.SecureCookie
}

// GenerateID returns 32 random bytes, base64url encoded without padding.
func GenerateID() (string, error) {
	b := make([]byte, idBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("session: failed to generate id: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
