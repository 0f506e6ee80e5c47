package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/existflow/tasksync/internal/logger"
	"github.com/existflow/tasksync/internal/model"
)

// HTTPStore is a Store backed by tasksync-server
type HTTPStore struct {
	serverURL  string
	creds      *CredentialsFile
	session    Credentials
	httpClient *http.Client
}

// NewHTTPStore creates a client for the server at serverURL.
// A saved session is reused only if it belongs to the same server.
func NewHTTPStore(serverURL string, creds *CredentialsFile, timeout time.Duration) (*HTTPStore, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	s := &HTTPStore{
		serverURL:  strings.TrimRight(serverURL, "/"),
		creds:      creds,
		httpClient: &http.Client{Timeout: timeout},
	}

	if creds != nil {
		saved, err := creds.Load()
		if err != nil {
			return nil, err
		}
		if saved.ServerURL == "" || strings.TrimRight(saved.ServerURL, "/") == s.serverURL {
			s.session = saved
		} else {
			logger.Warn("Ignoring session for a different server",
				logger.F("saved", saved.ServerURL), logger.F("configured", s.serverURL))
		}
	}
	s.session.ServerURL = s.serverURL

	return s, nil
}

// ServerURL returns the configured server
func (s *HTTPStore) ServerURL() string {
	return s.serverURL
}

// IsLoggedIn returns true if a session token is present
func (s *HTTPStore) IsLoggedIn() bool {
	return s.session.Token != ""
}

// UserID returns the logged in user, if any
func (s *HTTPStore) UserID() string {
	return s.session.UserID
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	UserID    string `json:"user_id"`
}

// Register creates a new account and stores the session
func (s *HTTPStore) Register(ctx context.Context, username, email, password string) error {
	var result authResponse
	err := s.do(ctx, http.MethodPost, "/api/v1/register", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	return s.saveSession(result)
}

// Login authenticates with username and password and stores the session
func (s *HTTPStore) Login(ctx context.Context, username, password string) error {
	var result authResponse
	err := s.do(ctx, http.MethodPost, "/api/v1/login", map[string]string{
		"username": username,
		"password": password,
	}, &result)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return s.saveSession(result)
}

// Logout ends the session on the server (best effort) and forgets it locally
func (s *HTTPStore) Logout(ctx context.Context) error {
	if s.IsLoggedIn() {
		if err := s.do(ctx, http.MethodPost, "/api/v1/logout", nil, nil); err != nil {
			logger.Warn("Server logout failed", logger.F("error", err))
		}
	}
	s.session = Credentials{ServerURL: s.serverURL}
	return s.persist()
}

func (s *HTTPStore) saveSession(r authResponse) error {
	s.session = Credentials{ServerURL: s.serverURL, Token: r.Token, UserID: r.UserID}
	return s.persist()
}

func (s *HTTPStore) persist() error {
	if s.creds == nil {
		return nil
	}
	return s.creds.Save(s.session)
}

type taskBody struct {
	Task      string `json:"task"`
	Completed bool   `json:"completed"`
	Timestamp int64  `json:"timestamp"`
}

type listResponse struct {
	Tasks []model.Document `json:"tasks"`
}

// Upsert implements Store
func (s *HTTPStore) Upsert(ctx context.Context, doc model.Document) error {
	return s.do(ctx, http.MethodPut, taskPath(doc.ID), taskBody{
		Task:      doc.Task,
		Completed: doc.Completed,
		Timestamp: doc.Timestamp,
	}, nil)
}

// Get implements Store
func (s *HTTPStore) Get(ctx context.Context, id string) (model.Document, error) {
	var doc model.Document
	if err := s.do(ctx, http.MethodGet, taskPath(id), nil, &doc); err != nil {
		return model.Document{}, err
	}
	return doc, nil
}

// List implements Store
func (s *HTTPStore) List(ctx context.Context) ([]model.Document, error) {
	var result listResponse
	if err := s.do(ctx, http.MethodGet, "/api/v1/tasks", nil, &result); err != nil {
		return nil, err
	}
	return result.Tasks, nil
}

// Delete implements Store
func (s *HTTPStore) Delete(ctx context.Context, id string) error {
	err := s.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// Clear removes every document of the current user
func (s *HTTPStore) Clear(ctx context.Context) error {
	return s.do(ctx, http.MethodPost, "/api/v1/clear", nil, nil)
}

// Ping implements Store using the unauthenticated health endpoint
func (s *HTTPStore) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/health", nil, nil)
}

// Close implements Store
func (s *HTTPStore) Close() error {
	s.httpClient.CloseIdleConnections()
	return nil
}

func taskPath(id string) string {
	return "/api/v1/tasks/" + url.PathEscape(id)
}

// do sends a JSON request and decodes a JSON response into out (if non-nil)
func (s *HTTPStore) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	endpoint := s.serverURL + path
	logger.Debug("HTTP Request", logger.F("method", method), logger.F("url", endpoint))

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.session.Token)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		logger.Debug("HTTP request failed", logger.F("error", err), logger.F("url", endpoint))
		return unavailable(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	logger.Debug("HTTP Response", logger.F("status", resp.StatusCode), logger.F("url", endpoint))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	}

	msg := errorMessage(resp.Body)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, msg)
	case resp.StatusCode >= 500:
		return unavailable(fmt.Errorf("server error %d: %s", resp.StatusCode, msg))
	default:
		return fmt.Errorf("server error %d: %s", resp.StatusCode, msg)
	}
}

// errorMessage extracts {"error": "..."} from a failed response
func errorMessage(r io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(r, 4096))
	var body struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}
