package school

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/edudash/edudash/internal/access"
)

// Resource serves one record kind. Every read goes through access.Scope and
// every mutation through the policy before the collection is touched.
type Resource[T Entity[T]] struct {
	kind     access.ResourceKind
	policy   *access.Policy
	items    *Collection[T]
	validate *validator.Validate
	newID    func() string

	// visible narrows what a principal may read beyond the policy.
	visible func(access.Principal, T) bool
	// prepare normalises a write; existing is nil on create.
	prepare func(p access.Principal, existing *T, incoming T) T
}

func newResource[T Entity[T]](kind access.ResourceKind, policy *access.Policy, items *Collection[T], validate *validator.Validate, newID func() string) *Resource[T] {
	return &Resource[T]{kind: kind, policy: policy, items: items, validate: validate, newID: newID}
}

// Kind returns the resource kind served.
func (r *Resource[T]) Kind() access.ResourceKind {
	return r.kind
}

// Capabilities returns the controls the principal may be offered.
func (r *Resource[T]) Capabilities(p access.Principal) access.ActionSet {
	return r.policy.Capabilities(p, r.kind)
}

// List returns the records visible to p in stored order.
func (r *Resource[T]) List(ctx context.Context, p access.Principal) []T {
	rows := access.Scope(r.policy, p, r.kind, r.items.List(ctx))
	if r.visible == nil {
		return rows
	}
	out := rows[:0]
	for _, row := range rows {
		if r.visible(p, row) {
			out = append(out, row)
		}
	}
	return out
}

// Get returns one record, or ErrNotFound when it is absent or not visible.
func (r *Resource[T]) Get(ctx context.Context, p access.Principal, id string) (T, error) {
	var zero T
	if err := r.precheck(p, access.ActionRead); err != nil {
		return zero, err
	}
	item, err := r.items.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if !r.policy.Can(p, r.kind, access.ActionRead, item.OwnerID()) {
		return zero, ErrNotFound
	}
	if r.visible != nil && !r.visible(p, item) {
		return zero, ErrNotFound
	}
	return item, nil
}

// Create validates and stores a new record.
func (r *Resource[T]) Create(ctx context.Context, p access.Principal, item T) (T, error) {
	var zero T
	if err := r.policy.Decide(p, r.kind, access.ActionCreate, item.OwnerID()); err != nil {
		return zero, err
	}
	if r.prepare != nil {
		item = r.prepare(p, nil, item)
	}
	if err := r.check(item); err != nil {
		return zero, err
	}
	item = item.WithID(r.newID())
	r.items.Insert(ctx, item)
	return item, nil
}

// Update replaces the record id with item.
func (r *Resource[T]) Update(ctx context.Context, p access.Principal, id string, item T) (T, error) {
	var zero T
	existing, err := r.authorize(ctx, p, access.ActionUpdate, id)
	if err != nil {
		return zero, err
	}
	item = item.WithID(id)
	if r.prepare != nil {
		item = r.prepare(p, &existing, item)
	}
	// A staff update may reassign a record, so the target owner is checked too.
	if err := r.policy.Decide(p, r.kind, access.ActionUpdate, item.OwnerID()); err != nil {
		return zero, err
	}
	if err := r.check(item); err != nil {
		return zero, err
	}
	if err := r.items.Replace(ctx, item); err != nil {
		return zero, err
	}
	return item, nil
}

// Delete removes the record id.
func (r *Resource[T]) Delete(ctx context.Context, p access.Principal, id string) error {
	if _, err := r.authorize(ctx, p, access.ActionDelete, id); err != nil {
		return err
	}
	return r.items.Delete(ctx, id)
}

// authorize checks the role grant before looking the record up, so callers
// without the capability learn nothing about which IDs exist.
func (r *Resource[T]) authorize(ctx context.Context, p access.Principal, action access.Action, id string) (T, error) {
	var zero T
	if err := r.precheck(p, action); err != nil {
		return zero, err
	}
	existing, err := r.items.Get(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := r.policy.Decide(p, r.kind, action, existing.OwnerID()); err != nil {
		return zero, err
	}
	return existing, nil
}

func (r *Resource[T]) precheck(p access.Principal, action access.Action) error {
	if r.policy.Capabilities(p, r.kind).Has(action) {
		return nil
	}
	return r.policy.Decide(p, r.kind, action, "")
}

func (r *Resource[T]) check(item T) error {
	if err := r.validate.Struct(item); err != nil {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return nil
}

// Results serves exam results, adding publication.
type Results struct {
	*Resource[ExamResult]
}

// Publish makes a draft result visible to its owning student.
func (r *Results) Publish(ctx context.Context, p access.Principal, id string) (ExamResult, error) {
	existing, err := r.authorize(ctx, p, access.ActionPublish, id)
	if err != nil {
		return ExamResult{}, err
	}
	if existing.Published() {
		return existing, nil
	}
	existing.Visibility = VisibilityPublished
	if err := r.items.Replace(ctx, existing); err != nil {
		return ExamResult{}, err
	}
	return existing, nil
}

// GradeFor maps a percentage score to a letter grade.
func GradeFor(score float64) string {
	switch {
	case score >= 80:
		return "A"
	case score >= 70:
		return "B"
	case score >= 60:
		return "C"
	case score >= 50:
		return "D"
	default:
		return "E"
	}
}

// Service exposes every dashboard resource.
type Service struct {
	Attendance  *Resource[AttendanceEntry]
	Results     *Results
	LessonPlans *Resource[LessonPlan]
	Recordings  *Resource[Recording]
	Contacts    *Resource[Contact]
	Events      *Resource[Event]
}

// NewService wires resources over repo, all judged by policy.
func NewService(repo *Repository, policy *access.Policy) *Service {
	validate := validator.New(validator.WithRequiredStructEnabled())
	newID := uuid.NewString

	attendance := newResource(access.KindAttendance, policy, repo.Attendance, validate, newID)
	attendance.prepare = func(p access.Principal, existing *AttendanceEntry, in AttendanceEntry) AttendanceEntry {
		in.MarkedBy = p.ID
		return in
	}

	results := newResource(access.KindResults, policy, repo.Results, validate, newID)
	results.visible = func(p access.Principal, r ExamResult) bool {
		return p.Role != access.RoleStudent || r.Published()
	}
	results.prepare = func(p access.Principal, existing *ExamResult, in ExamResult) ExamResult {
		// Publication only happens through Publish.
		in.Visibility = VisibilityDraft
		if existing != nil {
			in.Visibility = existing.Visibility
		}
		in.Grade = GradeFor(in.Score)
		return in
	}

	lessonPlans := newResource(access.KindLessonPlans, policy, repo.LessonPlans, validate, newID)
	lessonPlans.prepare = func(p access.Principal, existing *LessonPlan, in LessonPlan) LessonPlan {
		if existing != nil {
			in.TeacherID = existing.TeacherID
		} else if in.TeacherID == "" {
			in.TeacherID = p.ID
		}
		return in
	}

	recordings := newResource(access.KindRecordings, policy, repo.Recordings, validate, newID)
	recordings.prepare = func(p access.Principal, existing *Recording, in Recording) Recording {
		if existing != nil {
			in.TeacherID = existing.TeacherID
			in.RecordedAt = existing.RecordedAt
		} else if in.TeacherID == "" {
			in.TeacherID = p.ID
		}
		return in
	}

	return &Service{
		Attendance:  attendance,
		Results:     &Results{Resource: results},
		LessonPlans: lessonPlans,
		Recordings:  recordings,
		Contacts:    newResource(access.KindContacts, policy, repo.Contacts, validate, newID),
		Events:      newResource(access.KindEvents, policy, repo.Events, validate, newID),
	}
}
