package inmemdb

import (
	"context"
	"sort"

	"github.com/aulahq/aula/core/school"
)

type schoolRepository struct {
	db *DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *DB) *schoolRepository {
	return &schoolRepository{db: db}
}

// joinAccount must be called with db.mu held.
func (repo *schoolRepository) joinAccount(accountID int) (name, email, telefono, role string) {
	if acct, ok := repo.db.accounts[accountID]; ok {
		return acct.Name, acct.Email, acct.Telefono, acct.Role
	}
	return "", "", "", ""
}

// Students

func (repo *schoolRepository) hydrateStudent(std school.Student) school.Student {
	std.Name, std.Email, std.Telefono, std.Role = repo.joinAccount(std.AccountID)
	return std
}

func (repo *schoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	std.ID = repo.db.nextID("student")
	repo.db.students[std.ID] = &std
	return repo.hydrateStudent(std), nil
}

func (repo *schoolRepository) QueryStudents(ctx context.Context) ([]school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	students := make([]school.Student, 0, len(repo.db.students))
	for _, std := range repo.db.students {
		students = append(students, repo.hydrateStudent(*std))
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}

func (repo *schoolRepository) GetStudentByID(ctx context.Context, id int) (school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if std, ok := repo.db.students[id]; ok {
		return repo.hydrateStudent(*std), nil
	}
	return school.Student{}, school.ErrNotFound
}

func (repo *schoolRepository) GetStudentByAccountID(ctx context.Context, accountID int) (school.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, std := range repo.db.students {
		if std.AccountID == accountID {
			return repo.hydrateStudent(*std), nil
		}
	}
	return school.Student{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.students[std.ID]
	if !ok {
		return school.Student{}, school.ErrNotFound
	}
	orig.Grade = std.Grade
	return repo.hydrateStudent(*orig), nil
}

func (repo *schoolRepository) DeleteStudentsByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.students, id)
	}
	return nil
}

// Teachers

func (repo *schoolRepository) hydrateTeacher(tch school.Teacher) school.Teacher {
	tch.Name, tch.Email, tch.Telefono, tch.Role = repo.joinAccount(tch.AccountID)
	return tch
}

func (repo *schoolRepository) CreateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tch.ID = repo.db.nextID("teacher")
	repo.db.teachers[tch.ID] = &tch
	return repo.hydrateTeacher(tch), nil
}

func (repo *schoolRepository) QueryTeachers(ctx context.Context) ([]school.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	teachers := make([]school.Teacher, 0, len(repo.db.teachers))
	for _, tch := range repo.db.teachers {
		teachers = append(teachers, repo.hydrateTeacher(*tch))
	}
	sort.Slice(teachers, func(i, j int) bool { return teachers[i].ID < teachers[j].ID })
	return teachers, nil
}

func (repo *schoolRepository) GetTeacherByID(ctx context.Context, id int) (school.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tch, ok := repo.db.teachers[id]; ok {
		return repo.hydrateTeacher(*tch), nil
	}
	return school.Teacher{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.teachers[tch.ID]
	if !ok {
		return school.Teacher{}, school.ErrNotFound
	}
	orig.Specialty = tch.Specialty
	return repo.hydrateTeacher(*orig), nil
}

func (repo *schoolRepository) DeleteTeachersByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.teachers, id)
	}
	return nil
}

// Courses

func (repo *schoolRepository) hydrateCourse(crs school.Course) school.Course {
	if crs.TeacherID != nil {
		if tch, ok := repo.db.teachers[*crs.TeacherID]; ok {
			crs.TeacherName, crs.TeacherEmail, _, _ = repo.joinAccount(tch.AccountID)
		}
	}
	return crs
}

func (repo *schoolRepository) CreateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	crs.ID = repo.db.nextID("course")
	repo.db.courses[crs.ID] = &crs
	return repo.hydrateCourse(crs), nil
}

func (repo *schoolRepository) QueryCourses(ctx context.Context) ([]school.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	courses := make([]school.Course, 0, len(repo.db.courses))
	for _, crs := range repo.db.courses {
		courses = append(courses, repo.hydrateCourse(*crs))
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *schoolRepository) GetCourseByID(ctx context.Context, id int) (school.Course, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if crs, ok := repo.db.courses[id]; ok {
		return repo.hydrateCourse(*crs), nil
	}
	return school.Course{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.courses[crs.ID]
	if !ok {
		return school.Course{}, school.ErrNotFound
	}
	orig.Title = crs.Title
	orig.Description = crs.Description
	orig.TeacherID = crs.TeacherID
	return repo.hydrateCourse(*orig), nil
}

func (repo *schoolRepository) DeleteCoursesByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.courses, id)
	}
	return nil
}

// Topics

func (repo *schoolRepository) CreateTopic(ctx context.Context, tpc school.Topic) (school.Topic, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tpc.ID = repo.db.nextID("topic")
	repo.db.topics[tpc.ID] = &tpc
	return tpc, nil
}

func (repo *schoolRepository) QueryTopics(ctx context.Context, filter school.TopicFilter) ([]school.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	topics := make([]school.Topic, 0, len(repo.db.topics))
	for _, tpc := range repo.db.topics {
		if filter.CourseID != 0 && tpc.CourseID != filter.CourseID {
			continue
		}
		topics = append(topics, *tpc)
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].OrderIndex != topics[j].OrderIndex {
			return topics[i].OrderIndex < topics[j].OrderIndex
		}
		return topics[i].ID < topics[j].ID
	})
	return topics, nil
}

func (repo *schoolRepository) GetTopicByID(ctx context.Context, id int) (school.Topic, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if tpc, ok := repo.db.topics[id]; ok {
		return *tpc, nil
	}
	return school.Topic{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateTopic(ctx context.Context, tpc school.Topic) (school.Topic, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.topics[tpc.ID]
	if !ok {
		return school.Topic{}, school.ErrNotFound
	}
	orig.Title = tpc.Title
	orig.Description = tpc.Description
	orig.OrderIndex = tpc.OrderIndex
	return *orig, nil
}

func (repo *schoolRepository) DeleteTopicsByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.topics, id)
	}
	return nil
}

// Enrollments

func (repo *schoolRepository) CreateEnrollment(ctx context.Context, enr school.Enrollment) (school.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	enr.ID = repo.db.nextID("enrollment")
	repo.db.enrollments[enr.ID] = &enr
	return enr, nil
}

func (repo *schoolRepository) QueryEnrollments(ctx context.Context) ([]school.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrollments := make([]school.Enrollment, 0, len(repo.db.enrollments))
	for _, enr := range repo.db.enrollments {
		e := *enr
		if std, ok := repo.db.students[e.StudentID]; ok {
			e.StudentGrade = std.Grade
		}
		if crs, ok := repo.db.courses[e.CourseID]; ok {
			e.CourseTitle = crs.Title
		}
		enrollments = append(enrollments, e)
	}
	sort.Slice(enrollments, func(i, j int) bool { return enrollments[i].ID < enrollments[j].ID })
	return enrollments, nil
}

// Attendance

func (repo *schoolRepository) hydrateAttendance(rec school.AttendanceRecord) school.AttendanceRecord {
	if std, ok := repo.db.students[rec.StudentID]; ok {
		rec.StudentName, _, _, _ = repo.joinAccount(std.AccountID)
	}
	if crs, ok := repo.db.courses[rec.CourseID]; ok {
		rec.CourseTitle = crs.Title
	}
	return rec
}

func (repo *schoolRepository) UpsertAttendance(ctx context.Context, rec school.AttendanceRecord) (school.AttendanceRecord, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// check-then-write under a single lock hold
	for _, existing := range repo.db.attendance {
		if existing.StudentID == rec.StudentID && existing.CourseID == rec.CourseID && existing.Date.Equal(rec.Date) {
			existing.Status = rec.Status
			existing.TopicID = rec.TopicID
			return repo.hydrateAttendance(*existing), nil
		}
	}

	rec.ID = repo.db.nextID("attendance")
	repo.db.attendance[rec.ID] = &rec
	return repo.hydrateAttendance(rec), nil
}

func (repo *schoolRepository) QueryAttendance(ctx context.Context, filter school.AttendanceFilter) ([]school.AttendanceRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	records := make([]school.AttendanceRecord, 0, len(repo.db.attendance))
	for _, rec := range repo.db.attendance {
		if filter.StudentID != 0 && rec.StudentID != filter.StudentID {
			continue
		}
		records = append(records, repo.hydrateAttendance(*rec))
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date.After(records[j].Date) })
	return records, nil
}

// Grades

func (repo *schoolRepository) hydrateGrade(grd school.GradeRecord) school.GradeRecord {
	if std, ok := repo.db.students[grd.StudentID]; ok {
		grd.StudentName, _, _, _ = repo.joinAccount(std.AccountID)
	}
	if crs, ok := repo.db.courses[grd.CourseID]; ok {
		grd.CourseTitle = crs.Title
	}
	return grd
}

func (repo *schoolRepository) CreateGrade(ctx context.Context, grd school.GradeRecord) (school.GradeRecord, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grd.ID = repo.db.nextID("grade")
	repo.db.grades[grd.ID] = &grd
	return repo.hydrateGrade(grd), nil
}

func (repo *schoolRepository) QueryGrades(ctx context.Context, filter school.GradeFilter) ([]school.GradeRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grades := make([]school.GradeRecord, 0, len(repo.db.grades))
	for _, grd := range repo.db.grades {
		if filter.StudentID != 0 && grd.StudentID != filter.StudentID {
			continue
		}
		grades = append(grades, repo.hydrateGrade(*grd))
	}
	sort.Slice(grades, func(i, j int) bool { return grades[i].CreatedAt.After(grades[j].CreatedAt) })
	return grades, nil
}

func (repo *schoolRepository) GetGradeByID(ctx context.Context, id int) (school.GradeRecord, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if grd, ok := repo.db.grades[id]; ok {
		return repo.hydrateGrade(*grd), nil
	}
	return school.GradeRecord{}, school.ErrNotFound
}

func (repo *schoolRepository) UpdateGrade(ctx context.Context, grd school.GradeRecord) (school.GradeRecord, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.grades[grd.ID]
	if !ok {
		return school.GradeRecord{}, school.ErrNotFound
	}
	orig.Grade = grd.Grade
	orig.GradeType = grd.GradeType
	orig.StudentID = grd.StudentID
	orig.CourseID = grd.CourseID
	return repo.hydrateGrade(*orig), nil
}

func (repo *schoolRepository) DeleteGradesByID(ctx context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()
	for _, id := range ids {
		delete(repo.db.grades, id)
	}
	return nil
}

// Dashboard

func (repo *schoolRepository) GetDashboardStats(ctx context.Context) (school.DashboardStats, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	return school.DashboardStats{
		Students:    len(repo.db.students),
		Teachers:    len(repo.db.teachers),
		Courses:     len(repo.db.courses),
		Enrollments: len(repo.db.enrollments),
	}, nil
}
