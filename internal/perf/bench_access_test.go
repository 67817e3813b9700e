package perf

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/edudash/edudash/internal/access"
)

type row struct {
	id    int
	owner string
}

func (r row) OwnerID() string { return r.owner }

func rows(n, owners int) []row {
	out := make([]row, n)
	for i := range out {
		out[i] = row{id: i, owner: fmt.Sprintf("student-%d", i%owners)}
	}
	return out
}

// Dashboard lists are filtered on every request, so a large table must stay
// well inside one request budget.
func TestScopeLatencyTargets(t *testing.T) {
	policy := access.DefaultPolicy()
	data := rows(20000, 50)
	scenarios := []struct {
		name      string
		principal access.Principal
		want      int
		threshold time.Duration
	}{
		{"student", access.Principal{ID: "student-7", Role: access.RoleStudent}, 400, 250 * time.Millisecond},
		{"teacher", access.Principal{ID: "teacher-1", Role: access.RoleTeacher}, 20000, 250 * time.Millisecond},
		{"anonymous", access.Anonymous(), 0, 250 * time.Millisecond},
	}

	for _, scenario := range scenarios {
		samples := make([]time.Duration, 0, 10)
		for i := 0; i < 10; i++ {
			start := time.Now()
			got := access.Scope(policy, scenario.principal, access.KindAttendance, data)
			samples = append(samples, time.Since(start))
			if len(got) != scenario.want {
				t.Fatalf("%s: scoped %d rows, want %d", scenario.name, len(got), scenario.want)
			}
		}
		if p95 := percentile95(samples); p95 > scenario.threshold {
			t.Fatalf("%s scope latency regression: p95=%s threshold=%s", scenario.name, p95, scenario.threshold)
		}
	}
}

func BenchmarkDecide(b *testing.B) {
	policy := access.DefaultPolicy()
	p := access.Principal{ID: "student-1", Role: access.RoleStudent}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = policy.Decide(p, access.KindResults, access.ActionRead, "student-1")
	}
}

func BenchmarkScopeStudent(b *testing.B) {
	policy := access.DefaultPolicy()
	data := rows(10000, 100)
	p := access.Principal{ID: "student-3", Role: access.RoleStudent}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = access.Scope(policy, p, access.KindAttendance, data)
	}
}

func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), samples...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	index := int(float64(len(sorted)-1) * 0.95)
	if index < 0 {
		index = 0
	}
	if index >= len(sorted) {
		index = len(sorted) - 1
	}
	return sorted[index]
}
