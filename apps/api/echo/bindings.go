package echoapi

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/aulahq/aula/core/account"
)

type (
	// TokenResponse is returned on successful registration and login.
	TokenResponse struct {
		Token string          `json:"token"`
		User  account.Account `json:"user"`
	}

	MessageResponse struct {
		Message string `json:"message"`
	}
)

// intParam parses a numeric path parameter; a malformed id behaves like an
// absent resource.
func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
