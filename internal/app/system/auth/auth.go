// internal/app/system/auth/auth.go
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"

	"github.com/d0x2f/retro.tools-backend/internal/domain/models"
)

const participantIDKey = "participant_id"

// ParticipantStore is the slice of the participant store the session
// resolver needs. Get returns (nil, nil) when no participant exists for
// the given id.
type ParticipantStore interface {
	Get(ctx context.Context, id string) (*models.Participant, error)
	Create(ctx context.Context) (*models.Participant, error)
}

type ctxKey string

const currentParticipantKey ctxKey = "currentParticipant"

// CurrentParticipant returns the resolved participant id for this
// request and a "found?" flag. It is only present after the
// SessionManager.Resolve middleware has run.
func CurrentParticipant(r *http.Request) (string, bool) {
	id, ok := r.Context().Value(currentParticipantKey).(string)
	return id, ok && id != ""
}

// SessionManager resolves inbound requests to a participant id,
// creating anonymous participants on first contact.
//
// Every caller becomes a known participant: there is no "unauthenticated"
// outcome, only storage failures. The cookie value is an opaque
// participant id and is treated as a bearer credential — it is never
// logged.
type SessionManager struct {
	store        *sessions.CookieStore
	participants ParticipantStore
	name         string
	legacyName   string
	log          *zap.Logger
}

// NewSessionManager builds a SessionManager on a signed cookie store.
//
// sessionKey signs the cookie; in production it must be a strong secret.
// An empty key is tolerated for local development only — a random key is
// generated, which invalidates sessions across restarts.
//
// In production (secure=true) cookies are Secure + SameSite=None so the
// SPA frontend can be served from a different origin. In dev, Lax.
func NewSessionManager(sessionKey, name, legacyName, domain string, maxAge time.Duration, secure bool, participants ParticipantStore, logger *zap.Logger) (*SessionManager, error) {
	key := []byte(sessionKey)
	if len(key) == 0 {
		if secure {
			return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
		}
		logger.Warn("session key is empty; generating a throwaway dev key")
		key = securecookie.GenerateRandomKey(32)
	} else if len(key) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(key)))
	}

	store := sessions.NewCookieStore(key)
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session manager initialized",
		zap.String("cookie", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{
		store:        store,
		participants: participants,
		name:         name,
		legacyName:   legacyName,
		log:          logger,
	}, nil
}

// Resolve is the session middleware. It turns the request's session
// cookie (or legacy cookie) into a participant id, creating a new
// participant record on first contact, and injects the id into the
// request context.
//
// The resolution order is fixed:
//
//  1. Legacy cookie. Its bare value is a participant id from the old
//     backend; if it still resolves to a participant it is authoritative
//     and left in place (idempotent fallback, nothing is invalidated).
//  2. Current signed session cookie, if its id resolves to a participant.
//  3. Otherwise a new participant is created and a fresh session cookie
//     is issued.
//
// At most one participant insert and one Set-Cookie happen per request,
// and resolution runs once — handlers and guards reuse the context value.
func (sm *SessionManager) Resolve(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Already resolved (nested routers); reuse the result.
		if _, ok := CurrentParticipant(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		id, err := sm.resolve(w, r)
		if err != nil {
			sm.log.Error("session resolution failed", zap.Error(err))
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		next.ServeHTTP(w, withParticipant(r, id))
	})
}

func (sm *SessionManager) resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	ctx := r.Context()

	// Migration path: the old backend stored the bare participant id in
	// its own cookie. Decoded first; on success it stays authoritative.
	if c, err := r.Cookie(sm.legacyName); err == nil && c.Value != "" {
		p, err := sm.participants.Get(ctx, c.Value)
		if err != nil {
			return "", err
		}
		if p != nil {
			return p.ID, nil
		}
	}

	sess, _ := sm.store.Get(r, sm.name)
	if id, ok := sess.Values[participantIDKey].(string); ok && id != "" {
		p, err := sm.participants.Get(ctx, id)
		if err != nil {
			return "", err
		}
		if p != nil {
			return p.ID, nil
		}
		// Stale session: the id no longer resolves. Fall through and
		// bootstrap a fresh participant.
	}

	p, err := sm.participants.Create(ctx)
	if err != nil {
		return "", err
	}
	sess.Values[participantIDKey] = p.ID
	if err := sess.Save(r, w); err != nil {
		return "", err
	}
	return p.ID, nil
}

// helpers

func withParticipant(r *http.Request, id string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentParticipantKey, id))
}

// WithTestParticipant injects a participant id directly into the request
// context, bypassing cookie resolution. Test use only.
func WithTestParticipant(r *http.Request, id string) *http.Request {
	return withParticipant(r, id)
}
