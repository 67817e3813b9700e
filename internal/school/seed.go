package school

import "time"

func day(year int, month time.Month, d, hour int) time.Time {
	return time.Date(year, month, d, hour, 0, 0, 0, time.UTC)
}

// NewSeededRepository returns a repository filled with the dashboard's mock
// data. Student IDs match the mock identities of the session seeds.
func NewSeededRepository() *Repository {
	return &Repository{
		Attendance: NewCollection(
			AttendanceEntry{ID: "att-1", StudentID: "student-1", StudentName: "Grace Wanjiru", ClassName: "Grade 10A", Date: day(2026, 9, 1, 0), Status: AttendancePresent, MarkedBy: "teacher-1"},
			AttendanceEntry{ID: "att-2", StudentID: "student-2", StudentName: "Brian Otieno", ClassName: "Grade 10A", Date: day(2026, 9, 1, 0), Status: AttendanceAbsent, MarkedBy: "teacher-1"},
			AttendanceEntry{ID: "att-3", StudentID: "student-3", StudentName: "Lucy Achieng", ClassName: "Grade 10B", Date: day(2026, 9, 1, 0), Status: AttendanceLate, MarkedBy: "teacher-1"},
			AttendanceEntry{ID: "att-4", StudentID: "student-1", StudentName: "Grace Wanjiru", ClassName: "Grade 10A", Date: day(2026, 9, 2, 0), Status: AttendanceExcused, MarkedBy: "teacher-1"},
			AttendanceEntry{ID: "att-5", StudentID: "student-2", StudentName: "Brian Otieno", ClassName: "Grade 10A", Date: day(2026, 9, 2, 0), Status: AttendancePresent, MarkedBy: "teacher-1"},
		),
		Results: NewCollection(
			ExamResult{ID: "res-1", StudentID: "student-1", StudentName: "Grace Wanjiru", Exam: "Midterm", Subject: "Mathematics", Score: 88, Grade: "A", Visibility: VisibilityPublished},
			ExamResult{ID: "res-2", StudentID: "student-2", StudentName: "Brian Otieno", Exam: "Midterm", Subject: "Mathematics", Score: 64, Grade: "C", Visibility: VisibilityPublished},
			ExamResult{ID: "res-3", StudentID: "student-1", StudentName: "Grace Wanjiru", Exam: "Midterm", Subject: "Chemistry", Score: 71, Grade: "B", Visibility: VisibilityDraft},
			ExamResult{ID: "res-4", StudentID: "student-3", StudentName: "Lucy Achieng", Exam: "Midterm", Subject: "Mathematics", Score: 93, Grade: "A", Visibility: VisibilityDraft},
		),
		LessonPlans: NewCollection(
			LessonPlan{ID: "lp-1", Title: "Quadratic equations", Subject: "Mathematics", ClassName: "Grade 10A", Week: 3, TeacherID: "teacher-1", Objectives: "Factorise and solve quadratics"},
			LessonPlan{ID: "lp-2", Title: "Acids and bases", Subject: "Chemistry", ClassName: "Grade 10B", Week: 4, TeacherID: "teacher-2", Objectives: "Identify pH of common substances"},
		),
		Recordings: NewCollection(
			Recording{ID: "rec-1", Title: "Completing the square", Subject: "Mathematics", URL: "https://media.school.edu/rec-1.mp4", Minutes: 42, RecordedAt: day(2026, 9, 3, 10), TeacherID: "teacher-1"},
			Recording{ID: "rec-2", Title: "Titration walkthrough", Subject: "Chemistry", URL: "https://media.school.edu/rec-2.mp4", Minutes: 35, RecordedAt: day(2026, 9, 4, 11), TeacherID: "teacher-2"},
		),
		Contacts: NewCollection(
			Contact{ID: "con-1", Name: "Amina Okafor", Position: "Principal", Email: "admin@school.edu", Phone: "+254 700 000 001"},
			Contact{ID: "con-2", Name: "Daniel Mwangi", Position: "Mathematics teacher", Email: "teacher@school.edu", Phone: "+254 700 000 002"},
			Contact{ID: "con-3", Name: "Mercy Njeri", Position: "Bursar", Email: "bursar@school.edu", Phone: "+254 700 000 003"},
		),
		Events: NewCollection(
			Event{ID: "evt-1", Title: "Parents' day", Description: "Term one parent-teacher meetings", Location: "Main hall", StartsAt: day(2026, 10, 24, 9), EndsAt: day(2026, 10, 24, 15)},
			Event{ID: "evt-2", Title: "Science fair", Location: "Labs", StartsAt: day(2026, 11, 7, 8), EndsAt: day(2026, 11, 7, 16)},
		),
	}
}
