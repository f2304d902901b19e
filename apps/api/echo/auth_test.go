package echoapi

import (
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/aulahq/aula/core"
	"github.com/aulahq/aula/core/account"
)

func testConfig() *core.Config {
	return &core.Config{
		AppName:   "Aula",
		SecretKey: []byte("secret"),
		Server:    core.ServerConfig{JWTExpirationDelta: time.Hour},
	}
}

func TestGetAccountClaims(t *testing.T) {
	conf := testConfig()
	acct := account.Account{ID: 42, Name: "Ana Diaz", Email: "ana@test.cd", Role: account.RoleStudent}

	claims := GetAccountClaims(conf, acct)

	if claims.Subject != "42" || claims.AccountID() != 42 {
		t.Errorf("unexpected subject: %q", claims.Subject)
	}
	if claims.Role != account.RoleStudent || !claims.IsStudent() || claims.IsAdmin() {
		t.Errorf("unexpected role claims: %+v", claims)
	}
	if claims.Issuer != conf.AppName {
		t.Errorf("unexpected issuer: %q", claims.Issuer)
	}
	if claims.Id == "" {
		t.Error("expected a jti claim")
	}
	wantExp := time.Now().Add(conf.Server.JWTExpirationDelta).Unix()
	if delta := claims.ExpiresAt - wantExp; delta < -5 || delta > 5 {
		t.Errorf("unexpected expiry: %d, want ~%d", claims.ExpiresAt, wantExp)
	}
}

func TestGenerateToken(t *testing.T) {
	conf := testConfig()
	acct := account.Account{ID: 1, Name: "Ana", Email: "ana@test.cd", Role: account.RoleAdmin}

	token, err := GenerateToken(conf, GetAccountClaims(conf, acct))
	if err != nil {
		t.Fatalf("GenerateToken() failed: %v", err)
	}

	parsed, err := jwt.ParseWithClaims(token, new(Claims), func(tkn *jwt.Token) (interface{}, error) {
		return conf.SecretKey, nil
	})
	if err != nil {
		t.Fatalf("ParseWithClaims() failed: %v", err)
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		t.Fatalf("unexpected token: %+v", parsed)
	}
	if claims.AccountID() != 1 || !claims.IsAdmin() {
		t.Errorf("unexpected claims: %+v", claims)
	}

	// a token signed with another key must not verify
	if _, err = jwt.ParseWithClaims(token, new(Claims), func(tkn *jwt.Token) (interface{}, error) {
		return []byte("other"), nil
	}); err == nil {
		t.Error("expected signature verification to fail")
	}
}
