package tests

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/aulahq/aula/core/account"
	"github.com/aulahq/aula/core/school"
	testutil "github.com/aulahq/aula/tests"
)

func Test_courseApi(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateAccount(t, acctRepo, "Admin", "admin@test.cd", "secret1", account.RoleAdmin, "")
	anaAcct := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")
	adminToken := getToken(t, admin)
	anaToken := getToken(t, anaAcct)

	var created school.Course

	t.Run("create", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/courses", adminToken,
			[]byte(`{"title": "Mathematics", "description": "Numbers"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &created)
		if created.Title != "Mathematics" {
			t.Errorf("unexpected course: %+v", created)
		}
	})

	t.Run("create requires admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/courses", anaToken, []byte(`{"title": "Biology"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("create requires title", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/api/courses", adminToken, []byte(`{"description": "No title"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("any authenticated role can list", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/api/courses", anaToken)
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var courses []school.Course
		decodeBody(t, rec, &courses)
		if len(courses) != 1 {
			t.Errorf("expected 1 course, got %d", len(courses))
		}
	})

	t.Run("list joins owning teacher", func(t *testing.T) {
		liAcct := testutil.CreateAccount(t, acctRepo, "Li Wei", "li@test.cd", "secret1", account.RoleTeacher, "Physics")
		req, rec := newAuthRequest(http.MethodGet, "/api/teachers", adminToken)
		app.ServeHTTP(rec, req)
		var teachers []school.Teacher
		decodeBody(t, rec, &teachers)
		if len(teachers) != 1 {
			t.Fatalf("expected 1 teacher, got %d", len(teachers))
		}

		physics := testutil.CreateCourse(t, schoolRepo, "Physics 101", &teachers[0].ID)

		req, rec = newAuthRequest(http.MethodGet, "/api/courses", adminToken)
		app.ServeHTTP(rec, req)
		var courses []school.Course
		decodeBody(t, rec, &courses)

		var found bool
		for _, crs := range courses {
			if crs.ID == physics.ID {
				found = true
				if crs.TeacherName != liAcct.Name || crs.TeacherEmail != liAcct.Email {
					t.Errorf("teacher not joined: %+v", crs)
				}
			}
		}
		if !found {
			t.Error("created course missing from listing")
		}
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/courses/%d", created.ID), adminToken,
			[]byte(`{"title": "Advanced Mathematics"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp school.Course
		decodeBody(t, rec, &resp)
		if resp.Title != "Advanced Mathematics" {
			t.Errorf("title not updated: %+v", resp)
		}
	})

	t.Run("update unknown id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/api/courses/999", adminToken, []byte(`{"title": "Ghost"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("delete requires admin", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/courses/%d", created.ID), anaToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/courses/%d", created.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNoContent)
		}
	})
}
