package tests

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/aulahq/aula/core/account"
	echoapi "github.com/aulahq/aula/apps/api/echo"
	testutil "github.com/aulahq/aula/tests"
)

func Test_accountApi_register(t *testing.T) {
	app := setup(t)

	payload := func(name, email, pwd, role, specialty string) []byte {
		return []byte(fmt.Sprintf(
			`{"name": %q, "email": %q, "password": %q, "role": %q, "specialty": %q}`,
			name, email, pwd, role, specialty,
		))
	}

	t.Run("student happy path", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/register", payload("Ana Diaz", "ana@test.cd", "secret1", "student", ""))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
		var resp echoapi.TokenResponse
		decodeBody(t, rec, &resp)
		if resp.Token == "" {
			t.Error("expected a token in response")
		}
		if resp.User.Email != "ana@test.cd" || resp.User.Role != account.RoleStudent {
			t.Errorf("unexpected user in response: %+v", resp.User)
		}
		if strings.Contains(rec.Body.String(), "password") || strings.Contains(rec.Body.String(), "$2a$") {
			t.Error("password material leaked in response body")
		}

		// the student profile row exists
		std := testutil.GetStudentProfile(t, schoolRepo, resp.User)
		if std.AccountID != resp.User.ID {
			t.Errorf("student profile not linked; got %+v", std)
		}
	})

	t.Run("teacher without specialty is atomic", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/register", payload("Li Wei", "li@test.cd", "secret1", "teacher", ""))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("failed! code = %v; want %v; body = %s", rec.Code, http.StatusBadRequest, rec.Body.String())
		}
		// no account row may survive the failed registration
		if _, err := acctRepo.GetAccountByEmail(context.Background(), "li@test.cd"); err != account.ErrNotFound {
			t.Errorf("expected no persisted account, got err = %v", err)
		}
	})

	t.Run("teacher with specialty", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/register", payload("Li Wei", "li@test.cd", "secret1", "teacher", "Physics"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; want %v; body = %s", rec.Code, http.StatusCreated, rec.Body.String())
		}
	})

	tests := []httpTest{
		{name: "duplicate email", body: payload("Ana Two", "ana@test.cd", "secret1", "student", ""), wantCode: http.StatusBadRequest},
		{name: "unknown role", body: payload("Bob", "bob@test.cd", "secret1", "director", ""), wantCode: http.StatusBadRequest},
		{name: "missing email", body: payload("Bob", "", "secret1", "student", ""), wantCode: http.StatusBadRequest},
		{name: "password too short", body: payload("Bob", "bob@test.cd", "ab1", "student", ""), wantCode: http.StatusBadRequest},
		{name: "password all numeric", body: payload("Bob", "bob@test.cd", "12345678", "student", ""), wantCode: http.StatusBadRequest},
		{name: "password with whitespace", body: payload("Bob", "bob@test.cd", "sec ret1", "student", ""), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/register", tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_accountApi_login(t *testing.T) {
	app := setup(t)

	testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")

	payload := func(email, pwd string) []byte {
		return []byte(fmt.Sprintf(`{"email": %q, "password": %q}`, email, pwd))
	}

	t.Run("happy path", func(t *testing.T) {
		req, rec := newRequest(http.MethodPost, "/api/login", payload("ana@test.cd", "secret1"))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; want %v; body = %s", rec.Code, http.StatusOK, rec.Body.String())
		}
		var resp echoapi.TokenResponse
		decodeBody(t, rec, &resp)
		if resp.Token == "" {
			t.Error("expected a token in response")
		}
		if resp.User.Email != "ana@test.cd" {
			t.Errorf("unexpected user in response: %+v", resp.User)
		}
	})

	tests := []httpTest{
		{name: "wrong password", body: payload("ana@test.cd", "nope123"), wantCode: http.StatusUnauthorized},
		{name: "unknown email", body: payload("ghost@test.cd", "secret1"), wantCode: http.StatusUnauthorized},
		{name: "missing password", body: payload("ana@test.cd", ""), wantCode: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/api/login", tt.body)
			app.ServeHTTP(rec, req)
			if rec.Code != tt.wantCode {
				t.Errorf("failed! code = %v; wantCode %v; body = %s", rec.Code, tt.wantCode, rec.Body.String())
			}
		})
	}
}

func Test_accountApi_me(t *testing.T) {
	app := setup(t)

	ana := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Expired token", token: getExpiredToken(t, ana), wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "token has expired"}),
		},
		{
			name: "Garbage token", token: "lol.lol.lol", wantCode: http.StatusUnauthorized,
			wantData: marchallObj(t, httpErr{Message: "invalid token"}),
		},
		{name: "Me", token: getToken(t, ana), wantCode: http.StatusOK, wantData: marchallObj(t, ana)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/me", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_accountApi_query(t *testing.T) {
	app := setup(t)

	ana := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")
	admin := testutil.CreateAccount(t, acctRepo, "Admin", "admin@test.cd", "secret1", account.RoleAdmin, "")

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", token: getToken(t, ana), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallList(t, admin, ana)}, // ordered by name
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/api/users", tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_accountApi_update(t *testing.T) {
	app := setup(t)

	ana := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")
	bob := testutil.CreateAccount(t, acctRepo, "Bob", "bob@test.cd", "secret1", account.RoleStudent, "5th")
	admin := testutil.CreateAccount(t, acctRepo, "Admin", "admin@test.cd", "secret1", account.RoleAdmin, "")

	t.Run("self can update own name", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", ana.ID), getToken(t, ana),
			[]byte(`{"name": "Ana D."}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp account.Account
		decodeBody(t, rec, &resp)
		if resp.Name != "Ana D." {
			t.Errorf("name not updated: %+v", resp)
		}
	})

	t.Run("non-admin cannot change role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", ana.ID), getToken(t, ana),
			[]byte(`{"role": "admin"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp account.Account
		decodeBody(t, rec, &resp)
		if resp.Role != account.RoleStudent {
			t.Errorf("role must not change for non-admin caller: %+v", resp)
		}
	})

	t.Run("non-self non-admin forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", bob.ID), getToken(t, ana),
			[]byte(`{"name": "Hacked"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("admin can change role", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", bob.ID), getToken(t, admin),
			[]byte(`{"role": "teacher"}`))
		app.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}
		var resp account.Account
		decodeBody(t, rec, &resp)
		if resp.Role != account.RoleTeacher {
			t.Errorf("role not updated by admin: %+v", resp)
		}
	})

	t.Run("password rehashed only when provided", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, fmt.Sprintf("/api/users/%d", ana.ID), getToken(t, ana),
			[]byte(`{"name": "Ana Again"}`))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body = %s", rec.Code, rec.Body.String())
		}

		refreshed, err := acctRepo.GetAccountByID(context.Background(), ana.ID)
		if err != nil {
			t.Fatalf("GetAccountByID() failed: %v", err)
		}
		if err := refreshed.CheckPassword("secret1"); err != nil {
			t.Error("password must survive an update without a password field")
		}
	})
}

func Test_accountApi_destroy(t *testing.T) {
	app := setup(t)

	ana := testutil.CreateAccount(t, acctRepo, "Ana Diaz", "ana@test.cd", "secret1", account.RoleStudent, "5th")
	admin := testutil.CreateAccount(t, acctRepo, "Admin", "admin@test.cd", "secret1", account.RoleAdmin, "")
	adminToken := getToken(t, admin)

	t.Run("admin required", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), getToken(t, ana))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("no self delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusForbidden {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusForbidden)
		}
	})

	t.Run("delete", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", ana.ID), adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; want %v; body = %s", rec.Code, http.StatusNoContent, rec.Body.String())
		}
		if _, err := acctRepo.GetAccountByID(context.Background(), ana.ID); err != account.ErrNotFound {
			t.Errorf("expected account gone, got err = %v", err)
		}
	})

	t.Run("unknown id", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/api/users/999", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; want %v", rec.Code, http.StatusNotFound)
		}
	})
}

// register → login → me, end to end
func Test_accountApi_scenario(t *testing.T) {
	app := setup(t)

	req, rec := newRequest(http.MethodPost, "/api/register",
		[]byte(`{"name": "Eva", "email": "eva@test.cd", "password": "secret1", "role": "student", "grade": "6th"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}

	req, rec = newRequest(http.MethodPost, "/api/login", []byte(`{"email": "eva@test.cd", "password": "secret1"}`))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var resp echoapi.TokenResponse
	decodeBody(t, rec, &resp)

	req, rec = newAuthRequest(http.MethodGet, "/api/me", resp.Token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("me failed! code = %v; body = %s", rec.Code, rec.Body.String())
	}
	var me account.Account
	decodeBody(t, rec, &me)
	if me.Email != "eva@test.cd" || me.ID != resp.User.ID {
		t.Errorf("unexpected me response: %+v", me)
	}

	req, rec = newRequest(http.MethodPost, "/api/logout")
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("logout failed! code = %v", rec.Code)
	}
}
