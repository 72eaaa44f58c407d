// Package session owns the process-wide authenticated state: it gates
// protected views on the persisted credential and implements the sign-in,
// registration, OAuth callback and logout flows.
//
// The credential and the profile snapshot are always written and cleared
// together inside one transaction.
package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/docchat/internal/client/client"
	"github.com/dmitrijs2005/docchat/internal/client/models"
	"github.com/dmitrijs2005/docchat/internal/client/repositories/conversations"
	"github.com/dmitrijs2005/docchat/internal/client/repositories/files"
	"github.com/dmitrijs2005/docchat/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/docchat/internal/common"
	"github.com/dmitrijs2005/docchat/internal/dbx"
	"github.com/dmitrijs2005/docchat/internal/logging"
)

type Manager struct {
	db   *sql.DB
	meta metadata.Repository
	auth client.AuthAPI
	nav  Navigator
	log  logging.Logger
	now  func() time.Time

	mu      sync.RWMutex
	current *models.Session
}

func NewManager(db *sql.DB, auth client.AuthAPI, nav Navigator, log logging.Logger) *Manager {
	return &Manager{
		db:   db,
		meta: metadata.NewSQLiteRepository(db),
		auth: auth,
		nav:  nav,
		log:  log,
		now:  time.Now,
	}
}

// Token returns the current credential or "" when signed out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return ""
	}
	return m.current.Token
}

// Current returns a copy of the session, nil when signed out.
func (m *Manager) Current() *models.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneSession(m.current)
}

// IsAdmin reports the admin flag of the hydrated profile.
func (m *Manager) IsAdmin() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current.IsAdmin()
}

// RequireSession reads the persisted credential on entry to a protected
// view. When it is absent or expired the sign-in view is requested and
// common.ErrUnauthenticated returned; callers must stop initializing.
// Without a profile snapshot a credential-only session is returned.
func (m *Manager) RequireSession(ctx context.Context) (*models.Session, error) {
	s, err := m.load(ctx)
	if err != nil {
		return nil, err
	}
	if s == nil {
		m.setCurrent(nil)
		m.nav.Navigate(ViewSignIn)
		return nil, common.ErrUnauthenticated
	}

	m.setCurrent(s)
	return cloneSession(s), nil
}

func (m *Manager) load(ctx context.Context) (*models.Session, error) {
	raw, err := m.meta.Get(ctx, metadata.KeyCredential)
	if err != nil {
		return nil, fmt.Errorf("read credential: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	token := string(raw)
	if m.expired(token) {
		m.log.Info(ctx, "persisted credential expired, clearing session")
		if err := m.clear(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	s := &models.Session{Token: token}

	profile, err := m.meta.Get(ctx, metadata.KeyProfile)
	if err != nil {
		return nil, fmt.Errorf("read profile snapshot: %w", err)
	}
	if len(profile) > 0 {
		var u models.User
		if err := sonic.Unmarshal(profile, &u); err != nil {
			// a corrupt snapshot degrades to a credential-only session
			m.log.Warn(ctx, "discarding unreadable profile snapshot", "error", err)
		} else {
			s.User = &u
		}
	}
	return s, nil
}

// expired inspects the exp claim without verifying the signature; the
// server stays the authority on validity. Opaque tokens never expire here.
func (m *Manager) expired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return !m.now().Before(claims.ExpiresAt.Time)
}

func (m *Manager) SignIn(ctx context.Context, email, password string) (*models.Session, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	user := res.User
	return m.establish(ctx, res.AccessToken, &user)
}

func (m *Manager) Register(ctx context.Context, username, email, password string) (*models.Session, error) {
	res, err := m.auth.Register(ctx, username, email, password)
	if err != nil {
		return nil, err
	}
	user := res.User
	return m.establish(ctx, res.AccessToken, &user)
}

// CompleteOAuth adopts a credential handed back by the browser flow. The
// profile is fetched with it; if that fails the token is kept alone.
func (m *Manager) CompleteOAuth(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if m.expired(token) {
		return nil, fmt.Errorf("oauth credential already expired: %w", common.ErrUnauthenticated)
	}

	user, err := m.auth.ProfileWithToken(ctx, token)
	if err != nil {
		m.log.Warn(ctx, "oauth profile fetch failed, keeping credential only", "error", err)
		user = nil
	}
	return m.establish(ctx, token, user)
}

// Hydrate fetches the profile for a credential-only session.
func (m *Manager) Hydrate(ctx context.Context) (*models.Session, error) {
	token := m.Token()
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	if cur := m.Current(); cur.Hydrated() {
		return cur, nil
	}

	user, err := m.auth.ProfileWithToken(ctx, token)
	if err != nil {
		return nil, m.Guard(ctx, err)
	}
	return m.establish(ctx, token, user)
}

// UpdateSnapshot replaces the persisted profile of the signed-in user.
func (m *Manager) UpdateSnapshot(ctx context.Context, user models.User) error {
	token := m.Token()
	if token == "" {
		return common.ErrUnauthenticated
	}
	_, err := m.establish(ctx, token, &user)
	return err
}

func (m *Manager) establish(ctx context.Context, token string, user *models.User) (*models.Session, error) {
	var profile []byte
	if user != nil {
		var err error
		if profile, err = sonic.Marshal(user); err != nil {
			return nil, fmt.Errorf("encode profile snapshot: %w", err)
		}
	}

	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, metadata.KeyCredential, []byte(token)); err != nil {
			return err
		}
		if profile == nil {
			return repo.Delete(ctx, metadata.KeyProfile)
		}
		return repo.Set(ctx, metadata.KeyProfile, profile)
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w", err)
	}

	s := &models.Session{Token: token, User: user}
	m.setCurrent(s)
	m.log.Info(ctx, "session established", "username", s.Username(), "hydrated", s.Hydrated())
	return cloneSession(s), nil
}

// Logout clears the credential, the profile snapshot and the offline caches
// in one transaction, then requests the sign-in view.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.clear(ctx); err != nil {
		return err
	}
	m.log.Info(ctx, "signed out")
	m.nav.Navigate(ViewSignIn)
	return nil
}

// Guard escalates authentication failures: the session is torn down and the
// sign-in view requested. err is returned unchanged.
func (m *Manager) Guard(ctx context.Context, err error) error {
	if err == nil || !errors.Is(err, common.ErrUnauthenticated) {
		return err
	}
	m.log.Warn(ctx, "credential rejected, tearing down session", "error", err)
	if clearErr := m.clear(ctx); clearErr != nil {
		m.log.Error(ctx, "failed to clear session", "error", clearErr)
	}
	m.nav.Navigate(ViewSignIn)
	return err
}

func (m *Manager) clear(ctx context.Context) error {
	err := dbx.WithTx(ctx, m.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := metadata.NewSQLiteRepository(tx).Delete(ctx, metadata.KeyCredential, metadata.KeyProfile); err != nil {
			return err
		}
		if err := conversations.NewSQLiteRepository(tx).Clear(ctx); err != nil {
			return err
		}
		return files.NewSQLiteRepository(tx).Clear(ctx)
	})
	if err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	m.setCurrent(nil)
	return nil
}

func (m *Manager) setCurrent(s *models.Session) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

func cloneSession(s *models.Session) *models.Session {
	if s == nil {
		return nil
	}
	out := &models.Session{Token: s.Token}
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	return out
}
