package tests

import (
	"net/http"
	"testing"

	"github.com/aulahq/aula/core/account"
	"github.com/aulahq/aula/core/school"
	testutil "github.com/aulahq/aula/tests"
)

func Test_dashboardApi_stats(t *testing.T) {
	app := setup(t)

	anaAcct := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")
	bobAcct := testutil.CreateAccount(t, acctRepo, "Bob", "bob@test.cd", "secret1", account.RoleStudent, "5th")
	testutil.CreateAccount(t, acctRepo, "Li Wei", "li@test.cd", "secret1", account.RoleTeacher, "Physics")
	ana := testutil.GetStudentProfile(t, schoolRepo, anaAcct)
	bob := testutil.GetStudentProfile(t, schoolRepo, bobAcct)
	math := testutil.CreateCourse(t, schoolRepo, "Mathematics", nil)
	testutil.CreateEnrollment(t, schoolRepo, ana.ID, math.ID)
	testutil.CreateEnrollment(t, schoolRepo, bob.ID, math.ID)

	t.Run("Auth required", func(t *testing.T) {
		req, rec := newRequest(http.MethodGet, "/api/dashboard-stats")
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusUnauthorized)
		}
	})

	t.Run("counts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/dashboard-stats", getToken(t, anaAcct))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var stats school.DashboardStats
		decodeBody(t, rec, &stats)
		want := school.DashboardStats{Students: 2, Teachers: 1, Courses: 1, Enrollments: 2}
		if stats != want {
			t.Errorf("stats = %+v; want %+v", stats, want)
		}
	})
}
