package access

import (
	"fmt"
	"strings"
)

// Role is the closed set of dashboard roles.
type Role string

const (
	// RoleNone marks an unauthenticated session.
	RoleNone    Role = ""
	RoleAdmin   Role = "admin"
	RoleTeacher Role = "teacher"
	RoleStudent Role = "student"
)

// Roles lists every role a principal can log in as.
func Roles() []Role {
	return []Role{RoleAdmin, RoleTeacher, RoleStudent}
}

// ParseRole normalises and validates a role name.
func ParseRole(raw string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(raw))); r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return r, nil
	default:
		return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

// Valid reports whether r is one of the login roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleTeacher, RoleStudent:
		return true
	}
	return false
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// ResourceKind identifies a collection of dashboard records.
type ResourceKind string

const (
	KindAttendance  ResourceKind = "attendance"
	KindResults     ResourceKind = "results"
	KindLessonPlans ResourceKind = "lesson_plans"
	KindRecordings  ResourceKind = "recordings"
	KindContacts    ResourceKind = "contacts"
	KindEvents      ResourceKind = "events"
)

// Kinds lists all known resource kinds.
func Kinds() []ResourceKind {
	return []ResourceKind{KindAttendance, KindResults, KindLessonPlans, KindRecordings, KindContacts, KindEvents}
}

// Known reports whether k is a recognised kind.
func (k ResourceKind) Known() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// OwnedKind reports whether records of kind k pertain to a single principal.
func OwnedKind(k ResourceKind) bool {
	return k == KindAttendance || k == KindResults
}

// Action is an operation on a resource kind.
type Action uint8

const (
	ActionRead Action = 1 << iota
	ActionCreate
	ActionUpdate
	ActionDelete
	ActionPublish
)

var actionNames = []struct {
	action Action
	name   string
}{
	{ActionRead, "read"},
	{ActionCreate, "create"},
	{ActionUpdate, "update"},
	{ActionDelete, "delete"},
	{ActionPublish, "publish"},
}

// Actions lists every action in a stable order.
func Actions() []Action {
	out := make([]Action, 0, len(actionNames))
	for _, a := range actionNames {
		out = append(out, a.action)
	}
	return out
}

// ParseAction resolves an action by name.
func ParseAction(raw string) (Action, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, a := range actionNames {
		if a.name == name {
			return a.action, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown action %q", ErrMisconfiguredRule, raw)
}

func (a Action) String() string {
	for _, n := range actionNames {
		if n.action == a {
			return n.name
		}
	}
	return fmt.Sprintf("action(%d)", uint8(a))
}

// known reports whether a is exactly one defined action.
func (a Action) known() bool {
	for _, n := range actionNames {
		if n.action == a {
			return true
		}
	}
	return false
}

// ActionSet is a bitset of actions.
type ActionSet uint8

// NewActionSet builds a set from the given actions.
func NewActionSet(actions ...Action) ActionSet {
	var s ActionSet
	for _, a := range actions {
		s |= ActionSet(a)
	}
	return s
}

// Has reports whether a is in the set.
func (s ActionSet) Has(a Action) bool {
	return a != 0 && s&ActionSet(a) == ActionSet(a)
}

// List returns the actions in the set in declaration order.
func (s ActionSet) List() []Action {
	out := make([]Action, 0, len(actionNames))
	for _, a := range actionNames {
		if s.Has(a.action) {
			out = append(out, a.action)
		}
	}
	return out
}

// Names returns the action names in the set.
func (s ActionSet) Names() []string {
	actions := s.List()
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, a.String())
	}
	return out
}

// Principal describes the actor of the current session. It is a value type;
// copies never alias session state.
type Principal struct {
	ID                string `json:"id"`
	Role              Role   `json:"role"`
	DisplayName       string `json:"display_name"`
	Email             string `json:"email"`
	ClassOrDepartment string `json:"class_or_department,omitempty"`
}

// Anonymous returns the principal of a session nobody is logged into.
func Anonymous() Principal {
	return Principal{Role: RoleNone}
}

// Authenticated reports whether the principal holds a login role.
func (p Principal) Authenticated() bool {
	return p.Role.Valid()
}

// Record is any dashboard record subject to row-level visibility.
// OwnerID is empty for records that do not pertain to a single principal.
type Record interface {
	OwnerID() string
}
