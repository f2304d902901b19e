package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/aulahq/aula/core/school"
)

type schoolRepository struct {
	db *sqlx.DB
}

var _ school.Repository = (*schoolRepository)(nil) // interface compliance check

func NewSchoolRepository(db *sql.DB) *schoolRepository {
	return &schoolRepository{db: sqlx.NewDb(db, "postgres")}
}

// trapSchoolNoRowsErr maps psql "no rows" err to school.ErrNotFound
func trapSchoolNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return school.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

// Students

type dbStudent struct {
	ID        int    `db:"id"`
	AccountID int    `db:"account_id"`
	Grade     string `db:"grade"`
	Name      string `db:"name"`
	Email     string `db:"email"`
	Telefono  string `db:"telefono"`
	Role      string `db:"role"`
}

func (s dbStudent) toCore() school.Student {
	return school.Student{
		ID:        s.ID,
		AccountID: s.AccountID,
		Grade:     s.Grade,
		Name:      s.Name,
		Email:     s.Email,
		Telefono:  s.Telefono,
		Role:      s.Role,
	}
}

const studentQuery = `
SELECT s.id, s.account_id, s.grade, a.name, a.email, a.telefono, a.role
FROM student s
JOIN account a ON s.account_id = a.id`

func (repo schoolRepository) CreateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	err := repo.db.QueryRowxContext(
		ctx, "INSERT INTO student (account_id, grade) VALUES ($1, $2) RETURNING id",
		std.AccountID, std.Grade,
	).Scan(&std.ID)
	if err != nil {
		return school.Student{}, errors.Wrap(err, "inserting student")
	}
	return std, nil
}

func (repo schoolRepository) QueryStudents(ctx context.Context) ([]school.Student, error) {
	var rows []dbStudent
	if err := repo.db.SelectContext(ctx, &rows, studentQuery+" ORDER BY a.name ASC"); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	students := make([]school.Student, 0, len(rows))
	for _, row := range rows {
		students = append(students, row.toCore())
	}
	return students, nil
}

func (repo schoolRepository) GetStudentByID(ctx context.Context, id int) (school.Student, error) {
	var row dbStudent
	if err := repo.db.GetContext(ctx, &row, studentQuery+" WHERE s.id = $1", id); err != nil {
		return school.Student{}, trapSchoolNoRowsErr(err, "finding student by ID")
	}
	return row.toCore(), nil
}

func (repo schoolRepository) GetStudentByAccountID(ctx context.Context, accountID int) (school.Student, error) {
	var row dbStudent
	if err := repo.db.GetContext(ctx, &row, studentQuery+" WHERE s.account_id = $1", accountID); err != nil {
		return school.Student{}, trapSchoolNoRowsErr(err, "finding student by account ID")
	}
	return row.toCore(), nil
}

func (repo schoolRepository) UpdateStudent(ctx context.Context, std school.Student) (school.Student, error) {
	err := repo.db.QueryRowxContext(
		ctx, "UPDATE student SET grade = $1 WHERE id = $2 RETURNING account_id",
		std.Grade, std.ID,
	).Scan(&std.AccountID)
	if err != nil {
		return school.Student{}, trapSchoolNoRowsErr(err, "updating student")
	}
	return std, nil
}

func (repo schoolRepository) DeleteStudentsByID(ctx context.Context, ids ...int) error {
	return repo.deleteByID(ctx, "student", ids)
}

// Teachers

type dbTeacher struct {
	ID        int       `db:"id"`
	AccountID int       `db:"account_id"`
	Specialty string    `db:"specialty"`
	CreatedAt time.Time `db:"created_at"`
	Name      string    `db:"name"`
	Email     string    `db:"email"`
	Telefono  string    `db:"telefono"`
	Role      string    `db:"role"`
}

func (t dbTeacher) toCore() school.Teacher {
	return school.Teacher{
		ID:        t.ID,
		AccountID: t.AccountID,
		Specialty: t.Specialty,
		CreatedAt: t.CreatedAt,
		Name:      t.Name,
		Email:     t.Email,
		Telefono:  t.Telefono,
		Role:      t.Role,
	}
}

const teacherQuery = `
SELECT t.id, t.account_id, t.specialty, t.created_at, a.name, a.email, a.telefono, a.role
FROM teacher t
JOIN account a ON t.account_id = a.id`

func (repo schoolRepository) CreateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	err := repo.db.QueryRowxContext(
		ctx, "INSERT INTO teacher (account_id, specialty, created_at) VALUES ($1, $2, $3) RETURNING id",
		tch.AccountID, tch.Specialty, tch.CreatedAt,
	).Scan(&tch.ID)
	if err != nil {
		return school.Teacher{}, errors.Wrap(err, "inserting teacher")
	}
	return tch, nil
}

func (repo schoolRepository) QueryTeachers(ctx context.Context) ([]school.Teacher, error) {
	var rows []dbTeacher
	if err := repo.db.SelectContext(ctx, &rows, teacherQuery+" ORDER BY t.id ASC"); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]school.Teacher, 0, len(rows))
	for _, row := range rows {
		teachers = append(teachers, row.toCore())
	}
	return teachers, nil
}

func (repo schoolRepository) GetTeacherByID(ctx context.Context, id int) (school.Teacher, error) {
	var row dbTeacher
	if err := repo.db.GetContext(ctx, &row, teacherQuery+" WHERE t.id = $1", id); err != nil {
		return school.Teacher{}, trapSchoolNoRowsErr(err, "finding teacher by ID")
	}
	return row.toCore(), nil
}

func (repo schoolRepository) UpdateTeacher(ctx context.Context, tch school.Teacher) (school.Teacher, error) {
	err := repo.db.QueryRowxContext(
		ctx, "UPDATE teacher SET specialty = $1 WHERE id = $2 RETURNING account_id, created_at",
		tch.Specialty, tch.ID,
	).Scan(&tch.AccountID, &tch.CreatedAt)
	if err != nil {
		return school.Teacher{}, trapSchoolNoRowsErr(err, "updating teacher")
	}
	return tch, nil
}

func (repo schoolRepository) DeleteTeachersByID(ctx context.Context, ids ...int) error {
	return repo.deleteByID(ctx, "teacher", ids)
}

// Courses

type dbCourse struct {
	ID           int            `db:"id"`
	Title        string         `db:"title"`
	Description  string         `db:"description"`
	TeacherID    sql.NullInt64  `db:"teacher_id"`
	CreatedAt    time.Time      `db:"created_at"`
	TeacherName  sql.NullString `db:"teacher_name"`
	TeacherEmail sql.NullString `db:"teacher_email"`
}

func (c dbCourse) toCore() school.Course {
	crs := school.Course{
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		CreatedAt:    c.CreatedAt,
		TeacherName:  c.TeacherName.String,
		TeacherEmail: c.TeacherEmail.String,
	}
	if c.TeacherID.Valid {
		id := int(c.TeacherID.Int64)
		crs.TeacherID = &id
	}
	return crs
}

const courseQuery = `
SELECT c.id, c.title, c.description, c.teacher_id, c.created_at,
       a.name AS teacher_name, a.email AS teacher_email
FROM course c
LEFT JOIN teacher t ON c.teacher_id = t.id
LEFT JOIN account a ON t.account_id = a.id`

func (repo schoolRepository) CreateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	var teacherID sql.NullInt64
	if crs.TeacherID != nil {
		teacherID = sql.NullInt64{Int64: int64(*crs.TeacherID), Valid: true}
	}
	err := repo.db.QueryRowxContext(
		ctx, "INSERT INTO course (title, description, teacher_id, created_at) VALUES ($1, $2, $3, $4) RETURNING id",
		crs.Title, crs.Description, teacherID, crs.CreatedAt,
	).Scan(&crs.ID)
	if err != nil {
		return school.Course{}, errors.Wrap(err, "inserting course")
	}
	return crs, nil
}

func (repo schoolRepository) QueryCourses(ctx context.Context) ([]school.Course, error) {
	var rows []dbCourse
	if err := repo.db.SelectContext(ctx, &rows, courseQuery+" ORDER BY c.id ASC"); err != nil {
		return nil, errors.Wrap(err, "querying courses")
	}
	courses := make([]school.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, row.toCore())
	}
	return courses, nil
}

func (repo schoolRepository) GetCourseByID(ctx context.Context, id int) (school.Course, error) {
	var row dbCourse
	if err := repo.db.GetContext(ctx, &row, courseQuery+" WHERE c.id = $1", id); err != nil {
		return school.Course{}, trapSchoolNoRowsErr(err, "finding course by ID")
	}
	return row.toCore(), nil
}

func (repo schoolRepository) UpdateCourse(ctx context.Context, crs school.Course) (school.Course, error) {
	var teacherID sql.NullInt64
	if crs.TeacherID != nil {
		teacherID = sql.NullInt64{Int64: int64(*crs.TeacherID), Valid: true}
	}
	err := repo.db.QueryRowxContext(
		ctx, "UPDATE course SET title = $1, description = $2, teacher_id = $3 WHERE id = $4 RETURNING created_at",
		crs.Title, crs.Description, teacherID, crs.ID,
	).Scan(&crs.CreatedAt)
	if err != nil {
		return school.Course{}, trapSchoolNoRowsErr(err, "updating course")
	}
	return crs, nil
}

func (repo schoolRepository) DeleteCoursesByID(ctx context.Context, ids ...int) error {
	return repo.deleteByID(ctx, "course", ids)
}

// Topics

type dbTopic struct {
	ID          int    `db:"id"`
	CourseID    int    `db:"course_id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	OrderIndex  int    `db:"order_index"`
}

func (t dbTopic) toCore() school.Topic {
	return school.Topic(t)
}

func (repo schoolRepository) CreateTopic(ctx context.Context, tpc school.Topic) (school.Topic, error) {
	err := repo.db.QueryRowxContext(
		ctx, "INSERT INTO topic (course_id, title, description, order_index) VALUES ($1, $2, $3, $4) RETURNING id",
		tpc.CourseID, tpc.Title, tpc.Description, tpc.OrderIndex,
	).Scan(&tpc.ID)
	if err != nil {
		return school.Topic{}, errors.Wrap(err, "inserting topic")
	}
	return tpc, nil
}

func (repo schoolRepository) QueryTopics(ctx context.Context, filter school.TopicFilter) ([]school.Topic, error) {
	query := "SELECT id, course_id, title, description, order_index FROM topic"
	args := make([]interface{}, 0, 1)
	if filter.CourseID != 0 {
		query += " WHERE course_id = $1"
		args = append(args, filter.CourseID)
	}
	query += " ORDER BY order_index ASC, id ASC"

	var rows []dbTopic
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying topics")
	}
	topics := make([]school.Topic, 0, len(rows))
	for _, row := range rows {
		topics = append(topics, row.toCore())
	}
	return topics, nil
}

func (repo schoolRepository) GetTopicByID(ctx context.Context, id int) (school.Topic, error) {
	var row dbTopic
	err := repo.db.GetContext(ctx, &row, "SELECT id, course_id, title, description, order_index FROM topic WHERE id = $1", id)
	if err != nil {
		return school.Topic{}, trapSchoolNoRowsErr(err, "finding topic by ID")
	}
	return row.toCore(), nil
}

func (repo schoolRepository) UpdateTopic(ctx context.Context, tpc school.Topic) (school.Topic, error) {
	err := repo.db.QueryRowxContext(
		ctx, "UPDATE topic SET title = $1, description = $2, order_index = $3 WHERE id = $4 RETURNING course_id",
		tpc.Title, tpc.Description, tpc.OrderIndex, tpc.ID,
	).Scan(&tpc.CourseID)
	if err != nil {
		return school.Topic{}, trapSchoolNoRowsErr(err, "updating topic")
	}
	return tpc, nil
}

func (repo schoolRepository) DeleteTopicsByID(ctx context.Context, ids ...int) error {
	return repo.deleteByID(ctx, "topic", ids)
}

// Enrollments

type dbEnrollment struct {
	ID           int    `db:"id"`
	StudentID    int    `db:"student_id"`
	CourseID     int    `db:"course_id"`
	StudentGrade string `db:"student_grade"`
	CourseTitle  string `db:"course_title"`
}

func (repo schoolRepository) CreateEnrollment(ctx context.Context, enr school.Enrollment) (school.Enrollment, error) {
	err := repo.db.QueryRowxContext(
		ctx, "INSERT INTO enrollment (student_id, course_id) VALUES ($1, $2) RETURNING id",
		enr.StudentID, enr.CourseID,
	).Scan(&enr.ID)
	if err != nil {
		return school.Enrollment{}, errors.Wrap(err, "inserting enrollment")
	}
	return enr, nil
}

func (repo schoolRepository) QueryEnrollments(ctx context.Context) ([]school.Enrollment, error) {
	var rows []dbEnrollment
	err := repo.db.SelectContext(
		ctx, &rows,
		`SELECT e.id, e.student_id, e.course_id, s.grade AS student_grade, c.title AS course_title
		 FROM enrollment e
		 JOIN student s ON e.student_id = s.id
		 JOIN course c ON e.course_id = c.id
		 ORDER BY e.id ASC`,
	)
	if err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrollments := make([]school.Enrollment, 0, len(rows))
	for _, row := range rows {
		enrollments = append(enrollments, school.Enrollment{
			ID:           row.ID,
			StudentID:    row.StudentID,
			CourseID:     row.CourseID,
			StudentGrade: row.StudentGrade,
			CourseTitle:  row.CourseTitle,
		})
	}
	return enrollments, nil
}

// Attendance

type dbAttendance struct {
	ID          int            `db:"id"`
	StudentID   int            `db:"student_id"`
	CourseID    int            `db:"course_id"`
	Date        time.Time      `db:"date"`
	Status      string         `db:"status"`
	TopicID     sql.NullInt64  `db:"topic_id"`
	StudentName sql.NullString `db:"student_name"`
	CourseTitle sql.NullString `db:"course_title"`
}

func (a dbAttendance) toCore() school.AttendanceRecord {
	rec := school.AttendanceRecord{
		ID:          a.ID,
		StudentID:   a.StudentID,
		CourseID:    a.CourseID,
		Date:        a.Date,
		Status:      a.Status,
		StudentName: a.StudentName.String,
		CourseTitle: a.CourseTitle.String,
	}
	if a.TopicID.Valid {
		id := int(a.TopicID.Int64)
		rec.TopicID = &id
	}
	return rec
}

// UpsertAttendance relies on the UNIQUE (student_id, course_id, date)
// constraint: concurrent submissions for the same key cannot produce a
// duplicate row, the last write's status wins.
func (repo schoolRepository) UpsertAttendance(ctx context.Context, rec school.AttendanceRecord) (school.AttendanceRecord, error) {
	var topicID sql.NullInt64
	if rec.TopicID != nil {
		topicID = sql.NullInt64{Int64: int64(*rec.TopicID), Valid: true}
	}
	err := repo.db.QueryRowxContext(
		ctx,
		`INSERT INTO attendance (student_id, course_id, date, status, topic_id)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (student_id, course_id, date)
		 DO UPDATE SET status = EXCLUDED.status, topic_id = EXCLUDED.topic_id
		 RETURNING id`,
		rec.StudentID, rec.CourseID, rec.Date, rec.Status, topicID,
	).Scan(&rec.ID)
	if err != nil {
		return school.AttendanceRecord{}, errors.Wrap(err, "upserting attendance")
	}
	return rec, nil
}

func (repo schoolRepository) QueryAttendance(ctx context.Context, filter school.AttendanceFilter) ([]school.AttendanceRecord, error) {
	query := `
		SELECT att.id, att.student_id, att.course_id, att.date, att.status, att.topic_id,
		       a.name AS student_name, c.title AS course_title
		FROM attendance att
		JOIN student s ON att.student_id = s.id
		JOIN account a ON s.account_id = a.id
		JOIN course c ON att.course_id = c.id`
	args := make([]interface{}, 0, 1)
	if filter.StudentID != 0 {
		query += " WHERE att.student_id = $1"
		args = append(args, filter.StudentID)
	}
	query += " ORDER BY att.date DESC"

	var rows []dbAttendance
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance")
	}
	records := make([]school.AttendanceRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.toCore())
	}
	return records, nil
}

// Grades

type dbGrade struct {
	ID          int            `db:"id"`
	StudentID   int            `db:"student_id"`
	CourseID    int            `db:"course_id"`
	Grade       float64        `db:"grade"`
	GradeType   string         `db:"grade_type"`
	CreatedAt   time.Time      `db:"created_at"`
	StudentName sql.NullString `db:"student_name"`
	CourseTitle sql.NullString `db:"course_title"`
}

func (g dbGrade) toCore() school.GradeRecord {
	return school.GradeRecord{
		ID:          g.ID,
		StudentID:   g.StudentID,
		CourseID:    g.CourseID,
		Grade:       g.Grade,
		GradeType:   g.GradeType,
		CreatedAt:   g.CreatedAt,
		StudentName: g.StudentName.String,
		CourseTitle: g.CourseTitle.String,
	}
}

const gradeQuery = `
SELECT g.id, g.student_id, g.course_id, g.grade, g.grade_type, g.created_at,
       a.name AS student_name, c.title AS course_title
FROM grade g
JOIN student s ON g.student_id = s.id
JOIN account a ON s.account_id = a.id
JOIN course c ON g.course_id = c.id`

func (repo schoolRepository) CreateGrade(ctx context.Context, grd school.GradeRecord) (school.GradeRecord, error) {
	err := repo.db.QueryRowxContext(
		ctx,
		`INSERT INTO grade (student_id, course_id, grade, grade_type, created_at)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		grd.StudentID, grd.CourseID, grd.Grade, grd.GradeType, grd.CreatedAt,
	).Scan(&grd.ID)
	if err != nil {
		return school.GradeRecord{}, errors.Wrap(err, "inserting grade")
	}
	return grd, nil
}

func (repo schoolRepository) QueryGrades(ctx context.Context, filter school.GradeFilter) ([]school.GradeRecord, error) {
	query := gradeQuery
	args := make([]interface{}, 0, 1)
	if filter.StudentID != 0 {
		query += " WHERE g.student_id = $1"
		args = append(args, filter.StudentID)
	}
	query += " ORDER BY g.created_at DESC"

	var rows []dbGrade
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying grades")
	}
	grades := make([]school.GradeRecord, 0, len(rows))
	for _, row := range rows {
		grades = append(grades, row.toCore())
	}
	return grades, nil
}

func (repo schoolRepository) GetGradeByID(ctx context.Context, id int) (school.GradeRecord, error) {
	var row dbGrade
	if err := repo.db.GetContext(ctx, &row, gradeQuery+" WHERE g.id = $1", id); err != nil {
		return school.GradeRecord{}, trapSchoolNoRowsErr(err, "finding grade by ID")
	}
	return row.toCore(), nil
}

func (repo schoolRepository) UpdateGrade(ctx context.Context, grd school.GradeRecord) (school.GradeRecord, error) {
	err := repo.db.QueryRowxContext(
		ctx,
		`UPDATE grade SET grade = $1, grade_type = $2, student_id = $3, course_id = $4
		 WHERE id = $5 RETURNING created_at`,
		grd.Grade, grd.GradeType, grd.StudentID, grd.CourseID, grd.ID,
	).Scan(&grd.CreatedAt)
	if err != nil {
		return school.GradeRecord{}, trapSchoolNoRowsErr(err, "updating grade")
	}
	return grd, nil
}

func (repo schoolRepository) DeleteGradesByID(ctx context.Context, ids ...int) error {
	return repo.deleteByID(ctx, "grade", ids)
}

// Dashboard

func (repo schoolRepository) GetDashboardStats(ctx context.Context) (school.DashboardStats, error) {
	var stats school.DashboardStats
	err := repo.db.QueryRowxContext(
		ctx,
		`SELECT (SELECT COUNT(*) FROM student),
		        (SELECT COUNT(*) FROM teacher),
		        (SELECT COUNT(*) FROM course),
		        (SELECT COUNT(*) FROM enrollment)`,
	).Scan(&stats.Students, &stats.Teachers, &stats.Courses, &stats.Enrollments)
	if err != nil {
		return school.DashboardStats{}, errors.Wrap(err, "querying dashboard stats")
	}
	return stats, nil
}

// deleteByID deletes rows from table by primary key. table is always one of
// our own identifiers, never user input.
func (repo schoolRepository) deleteByID(ctx context.Context, table string, ids []int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In("DELETE FROM "+table+" WHERE id IN (?)", ids)
	if err != nil {
		return errors.Wrap(err, "expanding "+table+" IDs")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		return errors.Wrap(err, "deleting from "+table)
	}
	return nil
}
