package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/existflow/tasksync/internal/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Username == "" || req.Email == "" || req.Password == "" {
		return errorJSON(c, http.StatusBadRequest, "username, email, and password required")
	}

	if len(req.Password) < 8 {
		return errorJSON(c, http.StatusBadRequest, "password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.Logger().Error("bcrypt error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	ctx := c.Request().Context()
	userID, err := s.store.CreateUser(ctx, req.Username, req.Email, string(hash))
	if errors.Is(err, ErrConflict) {
		return errorJSON(c, http.StatusConflict, "username or email already exists")
	}
	if err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	return s.respondWithSession(c, userID, "User registered", req.Username)
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request")
	}

	user, err := s.store.FindUserByUsername(c.Request().Context(), req.Username)
	if err != nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return errorJSON(c, http.StatusUnauthorized, "invalid credentials")
	}

	return s.respondWithSession(c, user.ID, "User logged in", req.Username)
}

// handleLogout ends the current session
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("token").(string)
	if err := s.store.DeleteSession(c.Request().Context(), token); err != nil {
		c.Logger().Error("db error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "logged out"})
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	userID := c.Get("user_id").(string)

	user, err := s.store.FindUserByID(c.Request().Context(), userID)
	if err != nil {
		return errorJSON(c, http.StatusNotFound, "user not found")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"id":       user.ID,
		"username": user.Username,
		"email":    user.Email,
	})
}

func (s *Server) respondWithSession(c echo.Context, userID, event, username string) error {
	token, expiresAt, err := s.createSession(c, userID)
	if err != nil {
		c.Logger().Error("session error:", err)
		return errorJSON(c, http.StatusInternalServerError, "internal error")
	}

	c.Logger().Infof("%s: %s", event, username)

	return c.JSON(http.StatusOK, authResponse{
		Token:     token,
		ExpiresAt: expiresAt.Format(time.RFC3339),
		UserID:    userID,
	})
}

// createSession creates a new session for a user
func (s *Server) createSession(c echo.Context, userID string) (string, time.Time, error) {
	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", time.Time{}, err
	}
	token := hex.EncodeToString(tokenBytes)
	expiresAt := s.now().Add(sessionTTL)

	err := s.store.CreateSession(c.Request().Context(), model.Session{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	return token, expiresAt, err
}
