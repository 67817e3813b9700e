package auth

import (
	"context"
	"errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/edudash/edudash/internal/access"
	"github.com/edudash/edudash/internal/session"
)

// ErrNoSession indicates the request carries no session store.
var ErrNoSession = errors.New("auth: no session")

// Service wraps the mock login flow. There is no credential check: picking
// a role is the whole login.
type Service struct {
	policy *access.Policy
}

// NewService constructs a new Service.
func NewService(policy *access.Policy) *Service {
	return &Service{policy: policy}
}

// Login switches store to role.
func (s *Service) Login(ctx context.Context, store *session.Store, role string) (access.Principal, error) {
	if store == nil {
		return access.Principal{}, ErrNoSession
	}
	return store.Login(ctx, role)
}

// Logout returns store to role None.
func (s *Service) Logout(ctx context.Context, store *session.Store) error {
	if store == nil {
		return ErrNoSession
	}
	return store.Logout(ctx)
}

// Profile builds the capability set of p for every resource kind, so the
// shell never branches on role names itself.
func (s *Service) Profile(p access.Principal) Profile {
	caps := make(map[string][]string, len(access.Kinds()))
	for _, kind := range access.Kinds() {
		if set := s.policy.Capabilities(p, kind); len(set.List()) > 0 {
			caps[string(kind)] = set.Names()
		}
	}
	return Profile{
		Principal:    p,
		RoleLabel:    cases.Title(language.English).String(p.Role.String()),
		Scopes:       s.policy.Scopes(p),
		Capabilities: caps,
	}
}
