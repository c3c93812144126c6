package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/MrEthical07/goSession/internal/rate"
)

const (
	ctxKeyToken  = "token"
	ctxKeyUserID = "userID"
)

type userBody struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResult struct {
	Token string   `json:"token"`
	User  userBody `json:"user"`
}

type messageBody struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var body loginBody
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, messageBody{Error: "malformed request body"})
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		return c.JSON(http.StatusBadRequest, messageBody{Error: "email and password required"})
	}

	ctx := c.Request().Context()
	subject := strings.ToLower(strings.TrimSpace(body.Email))
	if s.limiter != nil {
		if err := s.limiter.Check(ctx, subject); err != nil {
			return s.throttled(c, err)
		}
	}

	acc, err := s.creds.verify(body.Email, body.Password)
	if err != nil {
		if !errors.Is(err, errUnknownUser) && !errors.Is(err, errWrongPassword) {
			s.logger.Error().Err(err).Msg("verifying credentials failed")
		}
		if s.limiter != nil {
			if err := s.limiter.Fail(ctx, subject); err != nil {
				return s.throttled(c, err)
			}
		}
		return c.JSON(http.StatusUnauthorized, messageBody{Message: "Invalid credentials"})
	}
	if s.limiter != nil {
		if err := s.limiter.Reset(ctx, subject); err != nil {
			s.logger.Warn().Err(err).Msg("resetting login attempts failed")
		}
	}

	token, err := s.tokens.Issue(acc.id, acc.email)
	if err != nil {
		s.logger.Error().Err(err).Msg("issuing token failed")
		return c.JSON(http.StatusInternalServerError, messageBody{Message: "Could not issue token"})
	}
	s.logger.Debug().Str("user_id", acc.id).Msg("login")
	return c.JSON(http.StatusOK, loginResult{Token: token, User: userBody{ID: acc.id, Email: acc.email}})
}

func (s *Server) throttled(c echo.Context, err error) error {
	if errors.Is(err, rate.ErrRateLimited) {
		return c.JSON(http.StatusTooManyRequests, messageBody{Message: "Too many login attempts"})
	}
	s.logger.Error().Err(err).Msg("login limiter failed")
	return c.JSON(http.StatusServiceUnavailable, messageBody{Message: "Login temporarily unavailable"})
}

func (s *Server) handleLogout(c echo.Context) error {
	token, _ := c.Get(ctxKeyToken).(string)
	s.revoke(token)
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleMe(c echo.Context) error {
	id, _ := c.Get(ctxKeyUserID).(string)
	acc, ok := s.creds.byID(id)
	if !ok {
		return c.JSON(http.StatusUnauthorized, messageBody{Message: "Unknown user"})
	}
	return c.JSON(http.StatusOK, userBody{ID: acc.id, Email: acc.email})
}

func (s *Server) handleFail(c echo.Context) error {
	status, err := strconv.Atoi(c.Param("status"))
	if err != nil || status < 400 || status > 599 {
		return c.JSON(http.StatusBadRequest, messageBody{Error: "status must be 4xx or 5xx"})
	}
	if msg := c.QueryParam("message"); msg != "" {
		return c.JSON(status, messageBody{Message: msg})
	}
	return c.NoContent(status)
}
