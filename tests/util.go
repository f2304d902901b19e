package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/aulahq/aula/core/account"
	"github.com/aulahq/aula/core/school"
)

// CreateAccount persists an account along with its role profile (student or
// teacher row). specialtyOrGrade is the teacher's specialty or the student's
// grade depending on role; it is ignored for admins.
func CreateAccount(
	t *testing.T,
	repo account.Repository,
	name, email, pwd, role, specialtyOrGrade string,
) account.Account {
	t.Helper()

	now := time.Now().UTC()
	acct := account.Account{
		Name:      name,
		Email:     email,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if pwd != "" {
		if err := acct.SetPassword(pwd); err != nil {
			t.Fatalf("CreateAccount() failed: %v", err)
		}
	}

	var specialty, grade string
	switch role {
	case account.RoleTeacher:
		specialty = specialtyOrGrade
	case account.RoleStudent:
		grade = specialtyOrGrade
	}

	acct, err := repo.CreateAccount(context.Background(), acct, specialty, grade)
	if err != nil {
		t.Fatalf("CreateAccount() failed: %v", err)
	}
	return acct
}

// GetStudentProfile resolves the student row created alongside an account.
func GetStudentProfile(t *testing.T, repo school.Repository, acct account.Account) school.Student {
	t.Helper()

	std, err := repo.GetStudentByAccountID(context.Background(), acct.ID)
	if err != nil {
		t.Fatalf("GetStudentProfile() failed: %v", err)
	}
	return std
}

func CreateCourse(t *testing.T, repo school.Repository, title string, teacherID *int) school.Course {
	t.Helper()

	crs, err := repo.CreateCourse(context.Background(), school.Course{
		Title:     title,
		TeacherID: teacherID,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCourse() failed: %v", err)
	}
	return crs
}

func CreateTopic(t *testing.T, repo school.Repository, courseID int, title string, orderIndex int) school.Topic {
	t.Helper()

	tpc, err := repo.CreateTopic(context.Background(), school.Topic{
		CourseID:   courseID,
		Title:      title,
		OrderIndex: orderIndex,
	})
	if err != nil {
		t.Fatalf("CreateTopic() failed: %v", err)
	}
	return tpc
}

func CreateEnrollment(t *testing.T, repo school.Repository, studentID, courseID int) school.Enrollment {
	t.Helper()

	enr, err := repo.CreateEnrollment(context.Background(), school.Enrollment{
		StudentID: studentID,
		CourseID:  courseID,
	})
	if err != nil {
		t.Fatalf("CreateEnrollment() failed: %v", err)
	}
	return enr
}

func CreateGrade(t *testing.T, repo school.Repository, studentID, courseID int, grade float64, gradeType string) school.GradeRecord {
	t.Helper()

	grd, err := repo.CreateGrade(context.Background(), school.GradeRecord{
		StudentID: studentID,
		CourseID:  courseID,
		Grade:     grade,
		GradeType: gradeType,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateGrade() failed: %v", err)
	}
	return grd
}

func RecordAttendance(t *testing.T, repo school.Repository, studentID, courseID int, day time.Time, status string) school.AttendanceRecord {
	t.Helper()

	rec, err := repo.UpsertAttendance(context.Background(), school.AttendanceRecord{
		StudentID: studentID,
		CourseID:  courseID,
		Date:      day,
		Status:    status,
	})
	if err != nil {
		t.Fatalf("RecordAttendance() failed: %v", err)
	}
	return rec
}
