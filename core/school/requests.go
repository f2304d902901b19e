package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/aulahq/aula/core"
)

// Typed request bodies, validated at the API boundary before any business
// logic runs.

type NewStudent struct {
	AccountID int    `json:"user_id" validate:"required"`
	Grade     string `json:"grade"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Grade = core.CleanString(ns.Grade)
	return validate.Struct(ns)
}

type UpdateStudent struct {
	Grade string `json:"grade"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Grade = core.CleanString(us.Grade)
	return validate.Struct(us)
}

type NewTeacher struct {
	AccountID int    `json:"user_id" validate:"required"`
	Specialty string `json:"specialty" validate:"required"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Specialty = core.CleanString(nt.Specialty)
	return validate.Struct(nt)
}

type UpdateTeacher struct {
	Specialty string `json:"specialty" validate:"required"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.Specialty = core.CleanString(ut.Specialty)
	return validate.Struct(ut)
}

type NewCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TeacherID   *int   `json:"teacher_id"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}

type UpdateCourse struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	TeacherID   *int   `json:"teacher_id"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	uc.Title = core.CleanString(uc.Title)
	uc.Description = core.CleanString(uc.Description)
	return validate.Struct(uc)
}

type NewTopic struct {
	CourseID    int    `json:"course_id" validate:"required"`
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
}

func (nt *NewTopic) Validate(validate *validator.Validate) error {
	nt.Title = core.CleanString(nt.Title)
	nt.Description = core.CleanString(nt.Description)
	return validate.Struct(nt)
}

type UpdateTopic struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	OrderIndex  int    `json:"order_index"`
}

func (ut *UpdateTopic) Validate(validate *validator.Validate) error {
	ut.Title = core.CleanString(ut.Title)
	ut.Description = core.CleanString(ut.Description)
	return validate.Struct(ut)
}

type NewEnrollment struct {
	StudentID int `json:"student_id" validate:"required"`
	CourseID  int `json:"course_id" validate:"required"`
}

func (ne *NewEnrollment) Validate(validate *validator.Validate) error {
	return validate.Struct(ne)
}

// NewAttendance is the attendance submission. StudentID is overridden with the
// caller's own student profile when the caller is a student; it is required
// for admin and teacher callers.
type NewAttendance struct {
	StudentID int    `json:"student_id"`
	CourseID  int    `json:"course_id" validate:"required"`
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	Status    string `json:"status" validate:"required,oneof=Present Absent"`
	TopicID   *int   `json:"topic_id"`
}

func (na *NewAttendance) Validate(validate *validator.Validate) error {
	na.Status = core.CleanString(na.Status)
	na.Date = core.CleanString(na.Date)
	return validate.Struct(na)
}

// Day returns the parsed calendar day. Validate must have succeeded first.
func (na *NewAttendance) Day() time.Time {
	day, _ := time.Parse(DateLayout, na.Date)
	return day
}

type NewGrade struct {
	StudentID int     `json:"student_id" validate:"required"`
	CourseID  int     `json:"course_id" validate:"required"`
	Grade     float64 `json:"grade"`
	GradeType string  `json:"grade_type" validate:"required"`
}

func (ng *NewGrade) Validate(validate *validator.Validate) error {
	ng.GradeType = core.CleanString(ng.GradeType)
	return validate.Struct(ng)
}

type UpdateGrade struct {
	StudentID int     `json:"student_id" validate:"required"`
	CourseID  int     `json:"course_id" validate:"required"`
	Grade     float64 `json:"grade"`
	GradeType string  `json:"grade_type" validate:"required"`
}

func (ug *UpdateGrade) Validate(validate *validator.Validate) error {
	ug.GradeType = core.CleanString(ug.GradeType)
	return validate.Struct(ug)
}
