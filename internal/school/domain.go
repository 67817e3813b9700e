package school

import (
	"errors"
	"time"
)

var (
	// ErrNotFound indicates the record does not exist or is not visible.
	ErrNotFound = errors.New("school: not found")
	// ErrValidation indicates an invalid record payload.
	ErrValidation = errors.New("school: validation failed")
)

// AttendanceStatus enumerates attendance marks.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// Visibility controls whether a student can see an exam result.
type Visibility string

const (
	VisibilityDraft     Visibility = "draft"
	VisibilityPublished Visibility = "published"
)

// AttendanceEntry records one student's attendance for a day.
type AttendanceEntry struct {
	ID          string           `json:"id"`
	StudentID   string           `json:"student_id" validate:"required"`
	StudentName string           `json:"student_name"`
	ClassName   string           `json:"class_name" validate:"required"`
	Date        time.Time        `json:"date" validate:"required"`
	Status      AttendanceStatus `json:"status" validate:"required,oneof=present absent late excused"`
	MarkedBy    string           `json:"marked_by,omitempty"`
}

func (a AttendanceEntry) OwnerID() string { return a.StudentID }
func (a AttendanceEntry) Key() string     { return a.ID }

func (a AttendanceEntry) WithID(id string) AttendanceEntry {
	a.ID = id
	return a
}

// ExamResult is a student's score for one subject in one exam.
type ExamResult struct {
	ID          string     `json:"id"`
	StudentID   string     `json:"student_id" validate:"required"`
	StudentName string     `json:"student_name"`
	Exam        string     `json:"exam" validate:"required"`
	Subject     string     `json:"subject" validate:"required"`
	Score       float64    `json:"score" validate:"gte=0,lte=100"`
	Grade       string     `json:"grade"`
	Visibility  Visibility `json:"visibility" validate:"omitempty,oneof=draft published"`
}

func (r ExamResult) OwnerID() string { return r.StudentID }
func (r ExamResult) Key() string     { return r.ID }

func (r ExamResult) WithID(id string) ExamResult {
	r.ID = id
	return r
}

// Published reports whether the owning student may see the result.
func (r ExamResult) Published() bool {
	return r.Visibility == VisibilityPublished
}

// LessonPlan is a teacher's plan for a class.
type LessonPlan struct {
	ID         string `json:"id"`
	Title      string `json:"title" validate:"required,max=200"`
	Subject    string `json:"subject" validate:"required"`
	ClassName  string `json:"class_name" validate:"required"`
	Week       int    `json:"week" validate:"gte=1,lte=53"`
	TeacherID  string `json:"teacher_id"`
	Objectives string `json:"objectives"`
}

func (l LessonPlan) OwnerID() string { return "" }
func (l LessonPlan) Key() string     { return l.ID }

func (l LessonPlan) WithID(id string) LessonPlan {
	l.ID = id
	return l
}

// Recording is a recorded lesson.
type Recording struct {
	ID         string    `json:"id"`
	Title      string    `json:"title" validate:"required,max=200"`
	Subject    string    `json:"subject" validate:"required"`
	URL        string    `json:"url" validate:"required,url"`
	Minutes    int       `json:"minutes" validate:"gte=0"`
	RecordedAt time.Time `json:"recorded_at"`
	TeacherID  string    `json:"teacher_id"`
}

func (r Recording) OwnerID() string { return "" }
func (r Recording) Key() string     { return r.ID }

func (r Recording) WithID(id string) Recording {
	r.ID = id
	return r
}

// Contact is a school directory entry.
type Contact struct {
	ID       string `json:"id"`
	Name     string `json:"name" validate:"required"`
	Position string `json:"position"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone"`
}

func (c Contact) OwnerID() string { return "" }
func (c Contact) Key() string     { return c.ID }

func (c Contact) WithID(id string) Contact {
	c.ID = id
	return c
}

// Event is a calendar entry.
type Event struct {
	ID          string    `json:"id"`
	Title       string    `json:"title" validate:"required,max=200"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at" validate:"required"`
	EndsAt      time.Time `json:"ends_at" validate:"required,gtefield=StartsAt"`
}

func (e Event) OwnerID() string { return "" }
func (e Event) Key() string     { return e.ID }

func (e Event) WithID(id string) Event {
	e.ID = id
	return e
}
