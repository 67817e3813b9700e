// Package session holds the current principal of a dashboard session and
// persists the selected role across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/edudash/edudash/internal/access"
)

// Store is the single source of truth for the current principal. Writes
// (Login, Logout and Init) are serialised and reads never block.
type Store struct {
	slot   Slot
	logger *slog.Logger

	mu       sync.Mutex
	current  atomic.Pointer[access.Principal]
	resolved chan struct{}
	once     sync.Once
	init     singleflight.Group
	done     chan struct{}

	// notifying is taken before mu is released so subscribers see changes
	// in the order they were made.
	notifying sync.Mutex

	subs     map[int]func(access.Principal)
	nextSub  int
	disposed bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for rehydration warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// New constructs an unresolved Store over slot.
func New(slot Slot, opts ...Option) *Store {
	s := &Store{
		slot:     slot,
		resolved: make(chan struct{}),
		done:     make(chan struct{}),
		subs:     make(map[int]func(access.Principal)),
	}
	for _, opt := range opts {
		opt(s)
	}
	anon := access.Anonymous()
	s.current.Store(&anon)
	return s
}

// Init rehydrates the principal from the persisted role. Concurrent callers
// share a single load. Once resolved, further calls are no-ops.
func (s *Store) Init(ctx context.Context) error {
	if s.Resolved() {
		return nil
	}
	_, err, _ := s.init.Do("init", func() (any, error) {
		return nil, s.rehydrate(ctx)
	})
	return err
}

func (s *Store) rehydrate(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	if s.Resolved() {
		s.mu.Unlock()
		return nil
	}

	principal := access.Anonymous()
	raw, err := s.slot.Load(ctx)
	switch {
	case errors.Is(err, ErrEmptySlot):
	case err != nil:
		s.mu.Unlock()
		return fmt.Errorf("session: rehydrate: %w", err)
	default:
		role, perr := access.ParseRole(raw)
		if perr != nil {
			s.warn("discarding persisted role", slog.String("value", raw))
			if cerr := s.slot.Clear(ctx); cerr != nil {
				s.warn("clear persisted role", slog.Any("error", cerr))
			}
			break
		}
		principal = SeedPrincipal(role)
	}

	subs := s.swap(principal)
	s.notifying.Lock()
	s.mu.Unlock()
	s.notify(subs, principal)
	return nil
}

// Login materialises the mock principal for role, persists the role and
// makes it current. An unknown role returns access.ErrUnknownRole and leaves
// the prior state untouched.
func (s *Store) Login(ctx context.Context, rawRole string) (access.Principal, error) {
	role, err := access.ParseRole(rawRole)
	if err != nil {
		return access.Principal{}, err
	}
	principal := SeedPrincipal(role)

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return access.Principal{}, ErrDisposed
	}
	if err := s.slot.Save(ctx, string(role)); err != nil {
		s.mu.Unlock()
		return access.Principal{}, fmt.Errorf("session: persist role: %w", err)
	}
	subs := s.swap(principal)
	s.notifying.Lock()
	s.mu.Unlock()

	s.notify(subs, principal)
	return principal, nil
}

// Logout clears the persisted role and returns the store to role None.
func (s *Store) Logout(ctx context.Context) error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return ErrDisposed
	}
	if err := s.slot.Clear(ctx); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("session: clear role: %w", err)
	}
	anon := access.Anonymous()
	subs := s.swap(anon)
	s.notifying.Lock()
	s.mu.Unlock()

	s.notify(subs, anon)
	return nil
}

// Current returns a snapshot of the current principal.
func (s *Store) Current() access.Principal {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return access.Anonymous()
}

// Resolved reports whether rehydration, a login or a logout has completed.
func (s *Store) Resolved() bool {
	select {
	case <-s.resolved:
		return true
	default:
		return false
	}
}

// Wait blocks until the store is resolved or ctx is done. A store disposed
// before it resolved returns ErrDisposed.
func (s *Store) Wait(ctx context.Context) error {
	select {
	case <-s.resolved:
		return nil
	case <-s.done:
		if s.Resolved() {
			return nil
		}
		return ErrDisposed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn to be called synchronously after every change.
// fn must not call Init, Login or Logout. The returned func removes the
// subscription.
func (s *Store) Subscribe(fn func(access.Principal)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed || fn == nil {
		return func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Dispose drops all subscribers and releases waiters. Later mutations
// return ErrDisposed.
func (s *Store) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.disposed {
		close(s.done)
	}
	s.disposed = true
	s.subs = make(map[int]func(access.Principal))
}

// swap must be called with mu held.
func (s *Store) swap(p access.Principal) []func(access.Principal) {
	snapshot := p
	s.current.Store(&snapshot)
	s.once.Do(func() { close(s.resolved) })
	subs := make([]func(access.Principal), 0, len(s.subs))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func (s *Store) warn(msg string, attrs ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, attrs...)
	}
}

// notify releases notifying once every subscriber has run.
func (s *Store) notify(subs []func(access.Principal), p access.Principal) {
	defer s.notifying.Unlock()
	for _, fn := range subs {
		fn(p)
	}
}
