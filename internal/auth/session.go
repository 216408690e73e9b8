package auth

import (
	"context"
	"sync"

	"gallery/internal/domain"
	"gallery/internal/domain/models"
	"gallery/internal/domain/services"
)

// Session holds the signed-in identity of one interactive client and
// publishes every change to its subscribers.
type Session struct {
	provider services.IdentityProvider

	mu          sync.RWMutex
	current     *models.Identity
	subscribers map[int]chan *models.Identity
	hooks       map[int]func(prev, next *models.Identity)
	nextID      int

	// changeMu serializes sign-in and sign-out so hooks see changes in order.
	changeMu sync.Mutex
}

// NewSession creates a signed-out session backed by provider.
func NewSession(provider services.IdentityProvider) *Session {
	return &Session{
		provider:    provider,
		subscribers: make(map[int]chan *models.Identity),
		hooks:       make(map[int]func(prev, next *models.Identity)),
	}
}

// CurrentUser returns the signed-in identity, or nil.
func (s *Session) CurrentUser() *models.Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	identity := *s.current
	return &identity
}

// SignIn authenticates with the provider and makes the result current.
// Change hooks have run by the time it returns.
func (s *Session) SignIn(ctx context.Context, creds models.Credentials) (*models.Identity, error) {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	identity, err := s.provider.SignIn(ctx, creds)
	if err != nil {
		return nil, err
	}

	s.change(identity)

	out := *identity
	return &out, nil
}

// SignOut ends the session. Signing out while signed out is an error.
// Change hooks have run by the time it returns.
func (s *Session) SignOut(ctx context.Context) error {
	s.changeMu.Lock()
	defer s.changeMu.Unlock()

	current := s.CurrentUser()
	if current == nil {
		return &domain.UnauthorizedError{Message: "not signed in"}
	}
	if err := s.provider.SignOut(ctx, current); err != nil {
		return err
	}

	s.change(nil)
	return nil
}

// OnChange registers fn to run synchronously on every sign-in and sign-out,
// with the previous and the new identity (nil when signed out). Hooks run
// outside the session lock, in no particular order. Call the returned func
// to remove the hook.
func (s *Session) OnChange(fn func(prev, next *models.Identity)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.hooks[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.hooks, id)
			s.mu.Unlock()
		})
	}
}

// change makes next current, publishes it and runs the hooks.
// Caller holds changeMu.
func (s *Session) change(next *models.Identity) {
	s.mu.Lock()
	prev := s.current
	s.current = next
	s.publishLocked(next)
	hooks := make([]func(prev, next *models.Identity), 0, len(s.hooks))
	for _, fn := range s.hooks {
		hooks = append(hooks, fn)
	}
	s.mu.Unlock()

	for _, fn := range hooks {
		fn(copyIdentity(prev), copyIdentity(next))
	}
}

func copyIdentity(identity *models.Identity) *models.Identity {
	if identity == nil {
		return nil
	}
	copied := *identity
	return &copied
}

// Subscribe returns a channel that receives the identity after every
// sign-in and nil after every sign-out. A slow subscriber only ever sees the
// latest value. Call the returned func to unsubscribe.
func (s *Session) Subscribe() (<-chan *models.Identity, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	ch := make(chan *models.Identity, 1)
	s.subscribers[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subscribers, id)
			s.mu.Unlock()
			close(ch)
		})
	}
}

// publishLocked must be called with mu held.
func (s *Session) publishLocked(identity *models.Identity) {
	for _, ch := range s.subscribers {
		value := copyIdentity(identity)
		// Drop a stale pending value so the send never blocks
		select {
		case <-ch:
		default:
		}
		ch <- value
	}
}
