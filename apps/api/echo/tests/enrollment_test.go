package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/aulahq/aula/core/account"
	"github.com/aulahq/aula/core/school"
	testutil "github.com/aulahq/aula/tests"
)

func Test_enrollmentApi(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, acctRepo, "Admin", "admin@test.cd", "secret1", account.RoleAdmin, "")
	anaAcct := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")
	ana := testutil.GetStudentProfile(t, schoolRepo, anaAcct)
	math := testutil.CreateCourse(t, schoolRepo, "Mathematics", nil)

	adminToken := getToken(t, admin)
	anaToken := getToken(t, anaAcct)

	t.Run("create requires admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/enrollments", anaToken,
			[]byte(fmt.Sprintf(`{"student_id": %d, "course_id": %d}`, ana.ID, math.ID)))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/enrollments", adminToken,
			[]byte(fmt.Sprintf(`{"student_id": %d, "course_id": %d}`, ana.ID, math.ID)))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp school.Enrollment
		decodeBody(t, rec, &resp)
		if resp.StudentID != ana.ID || resp.CourseID != math.ID {
			t.Errorf("unexpected enrollment: %+v", resp)
		}
	})

	t.Run("create missing course_id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/enrollments", adminToken,
			[]byte(fmt.Sprintf(`{"student_id": %d}`, ana.ID)))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("list joins course title", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/enrollments", anaToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var enrollments []school.Enrollment
		decodeBody(t, rec, &enrollments)
		if len(enrollments) != 1 {
			t.Fatalf("expected 1 enrollment, got %d", len(enrollments))
		}
		if enrollments[0].CourseTitle != math.Title {
			t.Errorf("course title not joined: %+v", enrollments[0])
		}
	})
}
