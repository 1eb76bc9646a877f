package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"shopazon/internal/api"
	"shopazon/internal/localstore"
	"shopazon/internal/models"
)

// State is the resolution phase of the session store.
type State int

const (
	StateUnresolved State = iota
	StateHydrating
	StateVerifying
	StateResolved
)

// keepStaleOnVerifyError names the reconciliation policy for a failed
// background re-verification: the hydrated cache is left untouched so a
// transient network error does not force a logout. Flipping this to false
// makes a failed verification clear the session instead.
const keepStaleOnVerifyError = true

// Store holds the process-wide session user. Exactly one user value is
// visible to all consumers at any time; mutation happens only through
// Hydrate, Login, Logout and Register.
type Store struct {
	api    *api.Client
	cache  *localstore.Store
	logger *zap.Logger

	mu     sync.RWMutex
	state  State
	user   *models.User
	cached *models.User
	subs   []func(*models.User)
}

// NewStore creates a session store. Call Hydrate to resolve it.
func NewStore(client *api.Client, cache *localstore.Store, logger *zap.Logger) *Store {
	return &Store{
		api:    client,
		cache:  cache,
		logger: logger,
	}
}

// Hydrate loads the persisted user as an optimistic current value, then
// reconciles against the server's session probe. On success the server copy
// wins and is re-persisted; on failure the hydrated user is kept per the
// keepStaleOnVerifyError policy. The store always ends up resolved.
func (s *Store) Hydrate(ctx context.Context) {
	s.mu.Lock()
	s.state = StateHydrating
	cached := s.cache.LoadUser()
	s.cached = cached
	if cached != nil {
		s.user = cached
	}
	s.state = StateVerifying
	s.mu.Unlock()

	verified, err := s.api.CurrentUser(ctx)

	s.mu.Lock()
	switch {
	case err == nil:
		s.user = verified
		if saveErr := s.cache.SaveUser(verified); saveErr != nil {
			s.logger.Warn("persisting verified user failed", zap.Error(saveErr))
		}
	case keepStaleOnVerifyError:
		// Hydrated user, if any, stays current until an explicit logout.
		s.logger.Debug("session verification failed, keeping cached user", zap.Error(err))
	default:
		s.user = nil
		if clearErr := s.cache.ClearUser(); clearErr != nil {
			s.logger.Warn("clearing cached user failed", zap.Error(clearErr))
		}
	}
	s.state = StateResolved
	user := s.user
	s.mu.Unlock()

	s.notify(user)
}

// Login posts credentials and, on success, stores and persists the returned
// user. Errors propagate to the caller untouched.
func (s *Store) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.api.Login(ctx, models.LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	s.adopt(user)
	return user, nil
}

// Register posts a registration request; same contract as Login.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	user, err := s.api.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	s.adopt(user)
	return user, nil
}

// Logout posts a best-effort logout request, then unconditionally clears the
// in-memory and persisted user.
func (s *Store) Logout(ctx context.Context) {
	if err := s.api.Logout(ctx); err != nil {
		s.logger.Warn("logout request failed", zap.Error(err))
	}

	s.mu.Lock()
	s.user = nil
	s.cached = nil
	s.state = StateResolved
	if err := s.cache.ClearUser(); err != nil {
		s.logger.Warn("clearing cached user failed", zap.Error(err))
	}
	s.mu.Unlock()

	s.notify(nil)
}

func (s *Store) adopt(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.cached = user
	s.state = StateResolved
	if err := s.cache.SaveUser(user); err != nil {
		s.logger.Warn("persisting user failed", zap.Error(err))
	}
	s.mu.Unlock()

	s.notify(user)
}

// Current returns the session user, or nil when anonymous.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// CachedUser returns the user hydrated from local storage, if any. The route
// guard consults it while resolution is still in flight.
func (s *Store) CachedUser() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cached != nil {
		return s.cached
	}
	return s.cache.LoadUser()
}

// State returns the resolution state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Resolved reports whether session resolution has finished.
func (s *Store) Resolved() bool {
	return s.State() == StateResolved
}

// OnChange registers a callback invoked whenever the session user changes or
// resolution finishes. Callbacks run synchronously on the mutating goroutine.
func (s *Store) OnChange(fn func(*models.User)) {
	s.mu.Lock()
	s.subs = append(s.subs, fn)
	s.mu.Unlock()
}

func (s *Store) notify(user *models.User) {
	s.mu.RLock()
	subs := make([]func(*models.User), len(s.subs))
	copy(subs, s.subs)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(user)
	}
}
