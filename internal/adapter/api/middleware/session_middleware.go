package middleware

import (
	"github.com/labstack/echo/v4"

	"webshop/internal/domain/session"
	"webshop/pkg/errors"
	"webshop/pkg/response"
)

type SessionMiddleware struct {
	session *session.Session
}

func NewSessionMiddleware(sess *session.Session) *SessionMiddleware {
	return &SessionMiddleware{
		session: sess,
	}
}

// Authenticate rejects the request unless a user is logged in, and puts the
// user's email in the context under "uid".
func (m *SessionMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email := m.session.Email()
		if email == "" {
			return response.Error(c, errors.Unauthorized("Please log in first", nil))
		}

		c.Set("uid", email)
		return next(c)
	}
}
