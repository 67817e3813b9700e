package access

import "errors"

var (
	// ErrUnauthenticated indicates a gated action attempted without a role.
	ErrUnauthenticated = errors.New("access: unauthenticated")
	// ErrForbidden indicates the role lacks the permission.
	ErrForbidden = errors.New("access: forbidden")
	// ErrMisconfiguredRule indicates a kind/action pair missing from the rule table.
	ErrMisconfiguredRule = errors.New("access: misconfigured rule")
	// ErrUnknownRole indicates a role name outside the closed set.
	ErrUnknownRole = errors.New("access: unknown role")
)
