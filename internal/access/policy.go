// Package access holds the dashboard authorization core: the rule table,
// the policy evaluator and the row-level scope filter. Everything here is
// pure and safe for concurrent use.
package access

import "fmt"

// Observer receives every decision made by a Policy. err is nil on allow.
type Observer func(p Principal, kind ResourceKind, action Action, err error)

// Option configures a Policy.
type Option func(*Policy)

// WithObserver installs a decision observer.
func WithObserver(fn Observer) Option {
	return func(p *Policy) {
		p.observer = fn
	}
}

// Policy evaluates permissions against a static rule table.
type Policy struct {
	rules    Rules
	observer Observer
}

// NewPolicy validates rules and returns a Policy over a private copy.
func NewPolicy(rules Rules, opts ...Option) (*Policy, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	p := &Policy{rules: rules.Clone()}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// DefaultPolicy returns a Policy over DefaultRules.
func DefaultPolicy(opts ...Option) *Policy {
	p, err := NewPolicy(DefaultRules(), opts...)
	if err != nil {
		panic(fmt.Sprintf("access: default rules invalid: %v", err))
	}
	return p
}

// Decide returns nil when principal may perform action on kind, otherwise
// one of ErrUnauthenticated, ErrForbidden or ErrMisconfiguredRule. ownerID
// is the owner of the target record; empty means none was supplied.
func (p *Policy) Decide(principal Principal, kind ResourceKind, action Action, ownerID string) error {
	err := p.decide(principal, kind, action, ownerID)
	if p != nil && p.observer != nil {
		p.observer(principal, kind, action, err)
	}
	return err
}

func (p *Policy) decide(principal Principal, kind ResourceKind, action Action, ownerID string) error {
	if !principal.Role.Valid() {
		return ErrUnauthenticated
	}
	if p == nil || !kind.Known() || !action.known() {
		return fmt.Errorf("%w: %s.%s", ErrMisconfiguredRule, kind, action)
	}
	kinds, ok := p.rules[principal.Role]
	if !ok {
		return fmt.Errorf("%w: no rules for role %s", ErrMisconfiguredRule, principal.Role)
	}
	if !kinds[kind].Has(action) {
		return ErrForbidden
	}
	if OwnedKind(kind) && principal.Role == RoleStudent {
		// Students only ever touch their own rows; a missing owner fails closed.
		if ownerID == "" || principal.ID == "" || ownerID != principal.ID {
			return ErrForbidden
		}
	}
	return nil
}

// Can reports whether principal may perform action on kind.
func (p *Policy) Can(principal Principal, kind ResourceKind, action Action, ownerID string) bool {
	return p.Decide(principal, kind, action, ownerID) == nil
}

// Capabilities returns the actions the principal's role grants on kind,
// before any ownership check. Presentation code uses it to decide which
// controls to offer.
func (p *Policy) Capabilities(principal Principal, kind ResourceKind) ActionSet {
	if p == nil || !principal.Role.Valid() || !kind.Known() {
		return 0
	}
	return p.rules[principal.Role][kind]
}

// Scopes lists the dotted permission names granted to the principal.
func (p *Policy) Scopes(principal Principal) []string {
	if p == nil || !principal.Role.Valid() {
		return []string{}
	}
	return p.rules.Scopes(principal.Role)
}
