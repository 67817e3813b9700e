package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ID    string
	Owner string
}

func (r row) OwnerID() string { return r.Owner }

func TestScopeStudentScenario(t *testing.T) {
	policy := DefaultPolicy()
	student := Principal{Role: RoleStudent, ID: "student-1"}
	records := []row{
		{ID: "a", Owner: "student-1"},
		{ID: "b", Owner: "student-2"},
	}

	got := Scope(policy, student, KindAttendance, records)
	assert.Equal(t, []row{{ID: "a", Owner: "student-1"}}, got)
}

func TestScopeStudentKeepsExactlyOwnRowsInOrder(t *testing.T) {
	policy := DefaultPolicy()
	student := Principal{Role: RoleStudent, ID: "student-1"}
	records := []row{
		{ID: "1", Owner: "student-1"},
		{ID: "2", Owner: "student-3"},
		{ID: "3", Owner: "student-1"},
		{ID: "4", Owner: ""},
		{ID: "5", Owner: "student-2"},
		{ID: "6", Owner: "student-1"},
	}
	before := append([]row(nil), records...)

	for _, kind := range []ResourceKind{KindAttendance, KindResults} {
		got := Scope(policy, student, kind, records)
		want := make([]row, 0)
		for _, r := range records {
			if r.Owner == student.ID {
				want = append(want, r)
			}
		}
		assert.Equal(t, want, got)
	}
	assert.Equal(t, before, records, "input must not be mutated")
}

func TestScopeStaffSeesEverything(t *testing.T) {
	policy := DefaultPolicy()
	records := []row{{ID: "1", Owner: "student-1"}, {ID: "2", Owner: "student-2"}}
	for _, role := range []Role{RoleAdmin, RoleTeacher} {
		got := Scope(policy, principalFor(role), KindResults, records)
		assert.Equal(t, records, got)
	}
}

func TestScopeDeniedKindIsEmpty(t *testing.T) {
	policy := DefaultPolicy()
	records := []row{{ID: "c1"}, {ID: "c2"}}
	got := Scope(policy, principalFor(RoleStudent), KindContacts, records)
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestScopeAnonymousIsEmpty(t *testing.T) {
	policy := DefaultPolicy()
	records := []row{{ID: "1", Owner: "student-1"}}
	assert.Empty(t, Scope(policy, Anonymous(), KindAttendance, records))
}

func TestScopeEmptyInput(t *testing.T) {
	policy := DefaultPolicy()
	got := Scope(policy, principalFor(RoleAdmin), KindEvents, []row(nil))
	require.NotNil(t, got)
	assert.Len(t, got, 0)
}

func TestScopeResultDoesNotAliasInput(t *testing.T) {
	policy := DefaultPolicy()
	records := []row{{ID: "1"}, {ID: "2"}}
	got := Scope(policy, principalFor(RoleAdmin), KindEvents, records)
	got[0].ID = "changed"
	assert.Equal(t, "1", records[0].ID)
}
