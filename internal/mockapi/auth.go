package mockapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// requireAuth accepts a signed, unexpired, unrevoked bearer token.
func (s *Server) requireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token, ok := bearerToken(c.Request().Header.Get("Authorization"))
		if !ok {
			return c.JSON(http.StatusUnauthorized, messageBody{Message: "Missing bearer token"})
		}
		if s.isRevoked(token) {
			return c.JSON(http.StatusUnauthorized, messageBody{Message: "Session expired"})
		}
		claims, err := s.tokens.Verify(token)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, messageBody{Message: "Session expired"})
		}
		c.Set(ctxKeyToken, token)
		c.Set(ctxKeyUserID, claims.Subject)
		return next(c)
	}
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
