package school

import (
	"time"
)

// Attendance statuses
const (
	StatusPresent = "Present"
	StatusAbsent  = "Absent"
)

// DateLayout is the calendar-day granularity used by attendance records.
const DateLayout = "2006-01-02"

// Student is the 1:1 student extension of an Account, listed with the joined
// account fields.
type Student struct {
	ID        int    `json:"id"`
	AccountID int    `json:"user_id"`
	Grade     string `json:"grade"`

	// joined account fields, read only
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Teacher is the 1:1 teacher extension of an Account; Specialty is mandatory.
type Teacher struct {
	ID        int       `json:"id"`
	AccountID int       `json:"user_id"`
	Specialty string    `json:"specialty"`
	CreatedAt time.Time `json:"created_at"`

	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Telefono string `json:"telefono,omitempty"`
	Role     string `json:"role,omitempty"`
}

type Course struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	TeacherID   *int      `json:"teacher_id"`
	CreatedAt   time.Time `json:"created_at"`

	TeacherName  string `json:"teacher_name,omitempty"`
	TeacherEmail string `json:"teacher_email,omitempty"`
}

// Topic is an ordered sub-unit of a Course. OrderIndex defines the display
// order within the course and is not required to be unique.
type Topic struct {
	ID          int    `json:"id"`
	CourseID    int    `json:"course_id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	OrderIndex  int    `json:"order_index"`
}

// Enrollment links a Student to a Course.
type Enrollment struct {
	ID        int `json:"id"`
	StudentID int `json:"student_id"`
	CourseID  int `json:"course_id"`

	StudentGrade string `json:"grade,omitempty"`
	CourseTitle  string `json:"course_title,omitempty"`
}

// AttendanceRecord holds one attendance mark. At most one record exists per
// (StudentID, CourseID, Date); repeated submissions for the same key replace
// the stored status.
type AttendanceRecord struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	CourseID  int       `json:"course_id"`
	Date      time.Time `json:"date"`
	Status    string    `json:"status"`
	TopicID   *int      `json:"topic_id,omitempty"`

	StudentName string `json:"student,omitempty"`
	CourseTitle string `json:"course,omitempty"`
}

// GradeRecord holds one assessment result. A student may have many grade
// records per course, one per assessment event.
type GradeRecord struct {
	ID        int       `json:"id"`
	StudentID int       `json:"student_id"`
	CourseID  int       `json:"course_id"`
	Grade     float64   `json:"grade"`
	GradeType string    `json:"grade_type"`
	CreatedAt time.Time `json:"created_at"`

	StudentName string `json:"student_name,omitempty"`
	CourseTitle string `json:"course_title,omitempty"`
}

// DashboardStats are the aggregate counts shown on the landing dashboard.
type DashboardStats struct {
	Students    int `json:"students"`
	Teachers    int `json:"teachers"`
	Courses     int `json:"courses"`
	Enrollments int `json:"enrollments"`
}

// Query filters

type TopicFilter struct {
	CourseID int `query:"course_id"`
}

type AttendanceFilter struct {
	StudentID int
}

type GradeFilter struct {
	StudentID int
}
