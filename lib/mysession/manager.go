package mysession

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/MarcGrol/insightsbackend/lib/myerrors"
	"github.com/MarcGrol/insightsbackend/lib/mylog"
	"github.com/MarcGrol/insightsbackend/lib/mystore"
	"github.com/MarcGrol/insightsbackend/lib/mytime"
	"github.com/MarcGrol/insightsbackend/lib/myuuid"
)

const (
	DefaultCookieName = "insights_session"

	// touchInterval bounds how often a read-only request rewrites the session to move its idle deadline.
	touchInterval = time.Minute
)

type Config struct {
	CookieName   string        `env:"SESSION_COOKIE_NAME" envDefault:"insights_session" validate:"required"`
	SecureCookie bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
	MaxAge       time.Duration `env:"SESSION_MAX_AGE" envDefault:"24h" validate:"gte=0"`
}

type Manager struct {
	store  mystore.Store[StoredSession]
	uuider myuuid.UUIDer
	nower  mytime.Nower
	logger mylog.Logger
	config Config
}

func NewManager(store mystore.Store[StoredSession], uuider myuuid.UUIDer, nower mytime.Nower, config Config) *Manager {
	if config.CookieName == "" {
		config.CookieName = DefaultCookieName
	}
	return &Manager{
		store:  store,
		uuider: uuider,
		nower:  nower,
		logger: mylog.New("session"),
		config: config,
	}
}

// Load returns the session identified by the request cookie, or starts a new one and sets its cookie.
func (m *Manager) Load(c context.Context, w http.ResponseWriter, r *http.Request) (Session, error) {
	now := m.nower.Now()

	cookie, err := r.Cookie(m.config.CookieName)
	if err == nil && cookie.Value != "" {
		stored, exists, err := m.store.Get(c, cookie.Value)
		if err != nil {
			return nil, myerrors.NewInternalError(fmt.Errorf("error fetching session: %s", err))
		}

		if exists && !m.isExpired(stored, now) {
			s := fromStored(stored)
			if now.Sub(stored.LastModified) > touchInterval {
				s.dirty = true
			}
			// MaxAge is an idle timeout: every visit pushes the browser deadline forward
			http.SetCookie(w, m.cookie(s.uid))
			return s, nil
		}

		if exists {
			m.logger.Log(c, stored.UID, mylog.SeverityInfo, "Session %s expired", stored.UID)
			err = m.store.Delete(c, stored.UID)
			if err != nil {
				return nil, myerrors.NewInternalError(fmt.Errorf("error deleting expired session: %s", err))
			}
		}
	}

	uid := m.uuider.Create()
	http.SetCookie(w, m.cookie(uid))

	m.logger.Log(c, uid, mylog.SeverityDebug, "Started session %s", uid)

	return newMemorySession(uid, now), nil
}

// Save persists the session when it was modified during the request.
func (m *Manager) Save(c context.Context, s Session) error {
	ms, ok := s.(*memorySession)
	if !ok {
		return myerrors.NewInternalError(fmt.Errorf("unsupported session type %T", s))
	}

	if !ms.dirty {
		return nil
	}

	if len(ms.values) == 0 {
		err := m.store.Delete(c, ms.uid)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error deleting session %s: %s", ms.uid, err))
		}
		ms.dirty = false
		return nil
	}

	err := m.store.Put(c, ms.uid, toStored(ms, m.nower.Now()))
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing session %s: %s", ms.uid, err))
	}
	ms.dirty = false

	return nil
}

func (m *Manager) isExpired(stored StoredSession, now time.Time) bool {
	if m.config.MaxAge <= 0 {
		return false
	}
	return now.Sub(stored.LastModified) > m.config.MaxAge
}

func (m *Manager) cookie(uid string) *http.Cookie {
	return &http.Cookie{
		Name:     m.config.CookieName,
		Value:    uid,
		Path:     "/",
		MaxAge:   int(m.config.MaxAge.Seconds()),
		Secure:   m.config.SecureCookie,
		HttpOnly: true,
		// Lax: the browser must send the cookie on the top-level redirect back from the provider
		SameSite: http.SameSiteLaxMode,
	}
}
