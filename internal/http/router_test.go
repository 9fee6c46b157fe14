package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"profile-auth/internal/domain"
	"profile-auth/internal/repository"
	"profile-auth/internal/service"
)

type captureSender struct {
	tokens map[string]string
}

func (s *captureSender) SendEmailConfirmation(_ context.Context, toEmail, _, token string) error {
	s.tokens[toEmail] = token
	return nil
}

type testServer struct {
	router *gin.Engine
	repo   *repository.MemoryProfileRepository
	sender *captureSender
}

func newTestServer(t *testing.T) testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := repository.NewMemoryProfileRepository()
	sender := &captureSender{tokens: make(map[string]string)}
	hasher := service.BcryptHasher{Cost: 4}
	profiles := service.NewProfileService(nil, repo, hasher, sender)
	auth := service.NewAuthenticationService(nil, repo, hasher, service.NewJWTService("secret", "profile-auth", time.Hour), nil, service.AuthOptions{})
	router := NewRouter(nil, NewProfileHandler(nil, profiles), NewSessionHandler(nil, auth), auth)
	return testServer{router: router, repo: repo, sender: sender}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (s testServer) do(t *testing.T, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec.Code, env
}

func signUpBody(email string) map[string]string {
	return map[string]string{
		"emailAddress": email,
		"password":     "P@ssw0rd",
		"fullName":     "Test User",
		"birthday":     "1990-01-02",
	}
}

// signUpAndLogOn crea, confirma e inicia sesion; devuelve el token.
func (s testServer) signUpAndLogOn(t *testing.T, email string) string {
	t.Helper()
	if code, env := s.do(t, http.MethodPost, "/v1/profile", "", signUpBody(email)); code != http.StatusCreated {
		t.Fatalf("create profile: %d %+v", code, env)
	}
	confirm := map[string]string{"emailAddress": email, "confirmationToken": s.sender.tokens[email]}
	if code, env := s.do(t, http.MethodPatch, "/v1/profile", "", confirm); code != http.StatusOK {
		t.Fatalf("confirm email: %d %+v", code, env)
	}
	code, env := s.do(t, http.MethodPost, "/v1/session", "", map[string]string{"emailAddress": email, "password": "P@ssw0rd"})
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("log on: %d %+v", code, env)
	}
	var result domain.LogOnResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		t.Fatalf("decode log-on result: %v", err)
	}
	return result.Token
}

func TestCreateProfile_Statuses(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(t, http.MethodPost, "/v1/profile", "", signUpBody("user@example.com"))
	if code != http.StatusCreated || !env.Success {
		t.Fatalf("expected 201 success, got %d %+v", code, env)
	}

	code, env = s.do(t, http.MethodPost, "/v1/profile", "", signUpBody("user@example.com"))
	if code != http.StatusConflict || env.Success {
		t.Fatalf("expected 409, got %d %+v", code, env)
	}
	want := "An account with this e-mail address already exists. The e-mail address for this account has not been confirmed yet."
	if env.Message != want {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	overlong := signUpBody("long@example.com")
	overlong["password"] = strings.Repeat("p", 80)
	code, _ = s.do(t, http.MethodPost, "/v1/profile", "", overlong)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for overlong password, got %d", code)
	}

	missing := signUpBody("other@example.com")
	delete(missing, "fullName")
	code, _ = s.do(t, http.MethodPost, "/v1/profile", "", missing)
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestConfirmEmail_Statuses(t *testing.T) {
	s := newTestServer(t)
	if code, _ := s.do(t, http.MethodPost, "/v1/profile", "", signUpBody("user@example.com")); code != http.StatusCreated {
		t.Fatalf("create failed: %d", code)
	}

	code, _ := s.do(t, http.MethodPatch, "/v1/profile", "", map[string]string{"emailAddress": "user@example.com", "confirmationToken": "bad"})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for wrong token, got %d", code)
	}

	token := s.sender.tokens["user@example.com"]
	code, _ = s.do(t, http.MethodPatch, "/v1/profile", "", map[string]string{"emailAddress": "user@example.com", "confirmationToken": token})
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}

	code, _ = s.do(t, http.MethodPatch, "/v1/profile", "", map[string]string{"emailAddress": "user@example.com", "confirmationToken": token})
	if code != http.StatusConflict {
		t.Fatalf("expected 409 for already confirmed, got %d", code)
	}
}

func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)
	token := s.signUpAndLogOn(t, "user@example.com")

	code, env := s.do(t, http.MethodGet, "/v1/session", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var session domain.Session
	if err := json.Unmarshal(env.Data, &session); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if session.Email != "user@example.com" || session.FullName != "Test User" || session.ProfileID == "" {
		t.Fatalf("unexpected session: %+v", session)
	}

	code, env = s.do(t, http.MethodDelete, "/v1/session", token, nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 log out, got %d %+v", code, env)
	}

	code, _ = s.do(t, http.MethodGet, "/v1/session", token, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after log out, got %d", code)
	}
}

func TestLogOn_WrongPassword(t *testing.T) {
	s := newTestServer(t)
	s.signUpAndLogOn(t, "user@example.com")

	code, env := s.do(t, http.MethodPost, "/v1/session", "", map[string]string{"emailAddress": "user@example.com", "password": "nope"})
	if code != http.StatusUnauthorized || env.Success {
		t.Fatalf("expected 401, got %d %+v", code, env)
	}
	if env.Message != "Authentication failed. E-mail address or password incorrect." {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestProfileEndpoints_RequireSession(t *testing.T) {
	s := newTestServer(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		code, _ := s.do(t, method, "/v1/profile", "", nil)
		if code != http.StatusUnauthorized {
			t.Fatalf("%s /v1/profile: expected 401, got %d", method, code)
		}
	}
	code, _ := s.do(t, http.MethodGet, "/v1/profile", "garbage", nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for invalid token, got %d", code)
	}
}

func TestGetProfile_HidesSecrets(t *testing.T) {
	s := newTestServer(t)
	token := s.signUpAndLogOn(t, "user@example.com")

	code, env := s.do(t, http.MethodGet, "/v1/profile", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	var fields map[string]any
	if err := json.Unmarshal(env.Data, &fields); err != nil {
		t.Fatalf("decode profile: %v", err)
	}
	for _, secret := range []string{"password", "passwordHash", "PasswordHash", "emailConfirmationToken", "EmailConfirmationToken"} {
		if _, ok := fields[secret]; ok {
			t.Fatalf("client profile leaked %s", secret)
		}
	}
	if fields["email"] != "user@example.com" {
		t.Fatalf("unexpected profile: %+v", fields)
	}
}

func TestUpdateAndDeactivateProfile(t *testing.T) {
	s := newTestServer(t)
	token := s.signUpAndLogOn(t, "user@example.com")

	code, env := s.do(t, http.MethodPut, "/v1/profile", token, map[string]string{"fullName": "Renamed"})
	if code != http.StatusOK || !env.Success {
		t.Fatalf("expected 200 update, got %d %+v", code, env)
	}
	stored, err := s.repo.GetByEmail(context.Background(), "user@example.com")
	if err != nil {
		t.Fatalf("reload profile: %v", err)
	}
	if stored.FullName != "Renamed" {
		t.Fatalf("expected renamed profile, got %q", stored.FullName)
	}

	code, _ = s.do(t, http.MethodPut, "/v1/profile", token, map[string]string{"fullName": "  "})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank field, got %d", code)
	}

	code, _ = s.do(t, http.MethodDelete, "/v1/profile", token, nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200 deactivate, got %d", code)
	}

	code, _ = s.do(t, http.MethodGet, "/v1/profile", token, nil)
	if code != http.StatusUnauthorized {
		t.Fatalf("expected 401 once deactivated, got %d", code)
	}
}

type brokenResolver struct{}

func (brokenResolver) ResolveSession(context.Context, string) (domain.Profile, service.Claims, error) {
	return domain.Profile{}, service.Claims{}, errors.New("redis down")
}

func TestSessionAuthMiddleware_InfraErrorIs500(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/protected", SessionAuthMiddleware(nil, brokenResolver{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
