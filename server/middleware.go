package server

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		auth := c.Request().Header.Get("Authorization")
		if auth == "" {
			return errorJSON(c, http.StatusUnauthorized, "authorization required")
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth {
			return errorJSON(c, http.StatusUnauthorized, "invalid authorization format")
		}

		session, err := s.store.FindSession(c.Request().Context(), token)
		if err != nil {
			return errorJSON(c, http.StatusUnauthorized, "invalid token")
		}

		if s.now().After(session.ExpiresAt) {
			return errorJSON(c, http.StatusUnauthorized, "token expired")
		}

		c.Set("user_id", session.UserID)
		c.Set("token", token)
		return next(c)
	}
}
