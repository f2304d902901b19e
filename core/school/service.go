package school

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/aulahq/aula/core"
)

var (
	// errors
	ErrNotFound = errors.New("not found")

	errStudentUnknown = errors.New("student profile not found")
)

type (
	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		QueryStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByAccountID(ctx context.Context, accountID int) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids ...int) error

		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		QueryTeachers(ctx context.Context) ([]Teacher, error)
		GetTeacherByID(ctx context.Context, id int) (Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids ...int) error

		CreateCourse(ctx context.Context, crs Course) (Course, error)
		QueryCourses(ctx context.Context) ([]Course, error)
		GetCourseByID(ctx context.Context, id int) (Course, error)
		UpdateCourse(ctx context.Context, crs Course) (Course, error)
		DeleteCoursesByID(ctx context.Context, ids ...int) error

		CreateTopic(ctx context.Context, tpc Topic) (Topic, error)
		// QueryTopics returns topics ordered by order_index, then id.
		QueryTopics(ctx context.Context, filter TopicFilter) ([]Topic, error)
		GetTopicByID(ctx context.Context, id int) (Topic, error)
		UpdateTopic(ctx context.Context, tpc Topic) (Topic, error)
		DeleteTopicsByID(ctx context.Context, ids ...int) error

		CreateEnrollment(ctx context.Context, enr Enrollment) (Enrollment, error)
		QueryEnrollments(ctx context.Context) ([]Enrollment, error)

		// UpsertAttendance inserts the record or, when a record already exists
		// for (StudentID, CourseID, Date), replaces its status and topic in a
		// single atomic statement.
		UpsertAttendance(ctx context.Context, rec AttendanceRecord) (AttendanceRecord, error)
		QueryAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error)

		CreateGrade(ctx context.Context, grd GradeRecord) (GradeRecord, error)
		QueryGrades(ctx context.Context, filter GradeFilter) ([]GradeRecord, error)
		GetGradeByID(ctx context.Context, id int) (GradeRecord, error)
		UpdateGrade(ctx context.Context, grd GradeRecord) (GradeRecord, error)
		DeleteGradesByID(ctx context.Context, ids ...int) error

		GetDashboardStats(ctx context.Context) (DashboardStats, error)
	}

	Service struct {
		repo   Repository
		logger core.Logger
	}
)

func NewService(repo Repository, logger core.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Students

func (svc *Service) CreateStudent(ctx context.Context, ns NewStudent) (Student, error) {
	return svc.repo.CreateStudent(ctx, Student{AccountID: ns.AccountID, Grade: ns.Grade})
}

func (svc *Service) QueryStudents(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryStudents(ctx)
}

func (svc *Service) GetStudentByAccountID(ctx context.Context, accountID int) (Student, error) {
	return svc.repo.GetStudentByAccountID(ctx, accountID)
}

func (svc *Service) UpdateStudent(ctx context.Context, id int, us UpdateStudent) (Student, error) {
	return svc.repo.UpdateStudent(ctx, Student{ID: id, Grade: us.Grade})
}

func (svc *Service) DeleteStudents(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteStudentsByID(ctx, ids...)
}

// Teachers

func (svc *Service) CreateTeacher(ctx context.Context, nt NewTeacher) (Teacher, error) {
	tch := Teacher{AccountID: nt.AccountID, Specialty: nt.Specialty, CreatedAt: time.Now().UTC()}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *Service) QueryTeachers(ctx context.Context) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx)
}

func (svc *Service) UpdateTeacher(ctx context.Context, id int, ut UpdateTeacher) (Teacher, error) {
	return svc.repo.UpdateTeacher(ctx, Teacher{ID: id, Specialty: ut.Specialty})
}

func (svc *Service) DeleteTeachers(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteTeachersByID(ctx, ids...)
}

// Courses

func (svc *Service) CreateCourse(ctx context.Context, nc NewCourse) (Course, error) {
	crs := Course{Title: nc.Title, Description: nc.Description, TeacherID: nc.TeacherID, CreatedAt: time.Now().UTC()}
	return svc.repo.CreateCourse(ctx, crs)
}

func (svc *Service) QueryCourses(ctx context.Context) ([]Course, error) {
	return svc.repo.QueryCourses(ctx)
}

func (svc *Service) UpdateCourse(ctx context.Context, id int, uc UpdateCourse) (Course, error) {
	crs := Course{ID: id, Title: uc.Title, Description: uc.Description, TeacherID: uc.TeacherID}
	return svc.repo.UpdateCourse(ctx, crs)
}

func (svc *Service) DeleteCourses(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteCoursesByID(ctx, ids...)
}

// Topics

func (svc *Service) CreateTopic(ctx context.Context, nt NewTopic) (Topic, error) {
	tpc := Topic{CourseID: nt.CourseID, Title: nt.Title, Description: nt.Description, OrderIndex: nt.OrderIndex}
	return svc.repo.CreateTopic(ctx, tpc)
}

func (svc *Service) QueryTopics(ctx context.Context, filter TopicFilter) ([]Topic, error) {
	return svc.repo.QueryTopics(ctx, filter)
}

func (svc *Service) UpdateTopic(ctx context.Context, id int, ut UpdateTopic) (Topic, error) {
	tpc := Topic{ID: id, Title: ut.Title, Description: ut.Description, OrderIndex: ut.OrderIndex}
	return svc.repo.UpdateTopic(ctx, tpc)
}

func (svc *Service) DeleteTopics(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteTopicsByID(ctx, ids...)
}

// Enrollments

func (svc *Service) CreateEnrollment(ctx context.Context, ne NewEnrollment) (Enrollment, error) {
	return svc.repo.CreateEnrollment(ctx, Enrollment{StudentID: ne.StudentID, CourseID: ne.CourseID})
}

func (svc *Service) QueryEnrollments(ctx context.Context) ([]Enrollment, error) {
	return svc.repo.QueryEnrollments(ctx)
}

// Attendance

// RecordAttendance upserts the attendance mark for (studentID, course, day).
// The target student must resolve to an existing student profile.
func (svc *Service) RecordAttendance(ctx context.Context, studentID int, na NewAttendance) (AttendanceRecord, error) {
	if _, err := svc.repo.GetStudentByID(ctx, studentID); err != nil {
		if errors.Cause(err) == ErrNotFound {
			return AttendanceRecord{}, core.NewValidationError(
				errStudentUnknown, core.FieldError{Field: "student_id", Error: errStudentUnknown.Error()})
		}
		return AttendanceRecord{}, errors.Wrap(err, "resolving student profile")
	}

	rec := AttendanceRecord{
		StudentID: studentID,
		CourseID:  na.CourseID,
		Date:      na.Day(),
		Status:    na.Status,
		TopicID:   na.TopicID,
	}
	return svc.repo.UpsertAttendance(ctx, rec)
}

func (svc *Service) QueryAttendance(ctx context.Context, filter AttendanceFilter) ([]AttendanceRecord, error) {
	return svc.repo.QueryAttendance(ctx, filter)
}

// Grades

func (svc *Service) CreateGrade(ctx context.Context, ng NewGrade) (GradeRecord, error) {
	grd := GradeRecord{
		StudentID: ng.StudentID,
		CourseID:  ng.CourseID,
		Grade:     ng.Grade,
		GradeType: ng.GradeType,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateGrade(ctx, grd)
}

func (svc *Service) QueryGrades(ctx context.Context, filter GradeFilter) ([]GradeRecord, error) {
	return svc.repo.QueryGrades(ctx, filter)
}

func (svc *Service) UpdateGrade(ctx context.Context, id int, ug UpdateGrade) (GradeRecord, error) {
	grd := GradeRecord{ID: id, StudentID: ug.StudentID, CourseID: ug.CourseID, Grade: ug.Grade, GradeType: ug.GradeType}
	return svc.repo.UpdateGrade(ctx, grd)
}

func (svc *Service) DeleteGrades(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteGradesByID(ctx, ids...)
}

// Dashboard

func (svc *Service) GetDashboardStats(ctx context.Context) (DashboardStats, error) {
	return svc.repo.GetDashboardStats(ctx)
}
