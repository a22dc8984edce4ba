package auth

import (
	"context"
	"sync"

	"github.com/epeers/stocktrack/internal/models"
	log "github.com/sirupsen/logrus"
)

// Session is one device's sign-in state. Start runs the bootstrap policy:
// reuse the identity behind a presented token, otherwise sign in anonymously.
type Session struct {
	provider *Provider

	mu        sync.Mutex
	user      *models.User
	token     string
	listeners map[int]func(*models.User)
	nextID    int
}

// NewSession creates a signed-out session
func (p *Provider) NewSession() *Session {
	return &Session{
		provider:  p,
		listeners: make(map[int]func(*models.User)),
	}
}

// CurrentUser returns the signed-in user, or nil
func (s *Session) CurrentUser() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// UserID returns the signed-in user id, or "" when signed out
func (s *Session) UserID() string {
	if u := s.CurrentUser(); u != nil {
		return u.ID
	}
	return ""
}

// Ready reports whether an identity has been obtained
func (s *Session) Ready() bool {
	return s.CurrentUser() != nil
}

// Token returns the token that resumes this session's identity
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// OnAuthStateChanged registers fn to be called with the current user now and
// after every sign-in. The returned func unregisters it.
func (s *Session) OnAuthStateChanged(fn func(*models.User)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	u := s.user
	s.mu.Unlock()

	fn(u)

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

// SignInAnonymously replaces the session identity with a new anonymous one
func (s *Session) SignInAnonymously(ctx context.Context) error {
	u, token, err := s.provider.SignInAnonymously(ctx)
	if err != nil {
		return err
	}
	s.setUser(u, token)
	return nil
}

// SignInWithToken resumes the identity behind token
func (s *Session) SignInWithToken(ctx context.Context, token string) error {
	u, err := s.provider.SignInWithToken(ctx, token)
	if err != nil {
		return err
	}
	s.setUser(u, token)
	return nil
}

// Start obtains an identity for the session. A session that already has a
// user is left as is. Errors are fatal for the session.
func (s *Session) Start(ctx context.Context, token string) error {
	if s.Ready() {
		return nil
	}
	if token != "" {
		return s.SignInWithToken(ctx, token)
	}
	return s.SignInAnonymously(ctx)
}

func (s *Session) setUser(u *models.User, token string) {
	s.mu.Lock()
	s.user = u
	s.token = token
	listeners := make([]func(*models.User), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	log.WithField("user_id", u.ID).Debug("auth state changed")
	for _, fn := range listeners {
		fn(u)
	}
}
