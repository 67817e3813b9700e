package access

import (
	"fmt"
	"sort"
)

// Rules maps a role and resource kind to the actions it may perform.
// Absent entries deny.
type Rules map[Role]map[ResourceKind]ActionSet

var (
	readOnly  = NewActionSet(ActionRead)
	editable  = NewActionSet(ActionRead, ActionCreate, ActionUpdate)
	fullCRUD  = NewActionSet(ActionRead, ActionCreate, ActionUpdate, ActionDelete)
	publisher = NewActionSet(ActionPublish)
)

// DefaultRules returns the dashboard rule table.
func DefaultRules() Rules {
	return Rules{
		RoleAdmin: {
			KindAttendance:  fullCRUD,
			KindResults:     fullCRUD | publisher,
			KindLessonPlans: fullCRUD,
			KindRecordings:  fullCRUD,
			KindContacts:    fullCRUD,
			KindEvents:      fullCRUD,
		},
		RoleTeacher: {
			KindAttendance:  editable,
			KindResults:     editable | publisher,
			KindLessonPlans: fullCRUD,
			KindRecordings:  fullCRUD,
			KindContacts:    readOnly,
			KindEvents:      NewActionSet(ActionRead, ActionCreate),
		},
		RoleStudent: {
			KindAttendance:  readOnly,
			KindResults:     readOnly,
			KindLessonPlans: readOnly,
			KindRecordings:  readOnly,
			KindEvents:      readOnly,
		},
	}
}

// Validate checks that every entry names a login role, a known kind and
// only defined actions.
func (r Rules) Validate() error {
	var all ActionSet
	for _, a := range Actions() {
		all |= ActionSet(a)
	}
	for role, kinds := range r {
		if !role.Valid() {
			return fmt.Errorf("%w: role %q", ErrMisconfiguredRule, role)
		}
		for kind, set := range kinds {
			if !kind.Known() {
				return fmt.Errorf("%w: role %s kind %q", ErrMisconfiguredRule, role, kind)
			}
			if set&^all != 0 {
				return fmt.Errorf("%w: role %s kind %s has undefined actions", ErrMisconfiguredRule, role, kind)
			}
		}
	}
	return nil
}

// Clone returns a deep copy so a Policy never shares its table with callers.
func (r Rules) Clone() Rules {
	out := make(Rules, len(r))
	for role, kinds := range r {
		inner := make(map[ResourceKind]ActionSet, len(kinds))
		for kind, set := range kinds {
			inner[kind] = set
		}
		out[role] = inner
	}
	return out
}

// Permission renders a kind/action pair as a dotted permission name.
func Permission(kind ResourceKind, action Action) string {
	return string(kind) + "." + action.String()
}

// Scopes lists the permission names granted to role, sorted.
func (r Rules) Scopes(role Role) []string {
	kinds := r[role]
	scopes := make([]string, 0, len(kinds)*2)
	for kind, set := range kinds {
		for _, a := range set.List() {
			scopes = append(scopes, Permission(kind, a))
		}
	}
	sort.Strings(scopes)
	return scopes
}
