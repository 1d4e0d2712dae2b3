package jwtx

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	jwtutil "bookborrow/util/jwt"
)

// BorrowerIDFromContext returns the opaque borrower id carried in the
// token's subject.
func BorrowerIDFromContext(c echo.Context) (string, error) {
	tok, ok := c.Get("user").(*jwt.Token)
	if !ok || tok == nil {
		return "", errors.New("no jwt token in context")
	}
	return jwtutil.Subject(tok.Claims)
}
