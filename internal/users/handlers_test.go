package users

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/microlearning/microlearn/internal/auth"
	"github.com/microlearning/microlearn/internal/config"
	"github.com/microlearning/microlearn/internal/models"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	issuer := auth.NewTokenIssuer("test-secret", 30*time.Minute)
	cfg := &config.UserServerConfig{Host: "localhost", Port: 0}
	return NewServer(NewMemoryStore(), issuer, cfg, zap.NewNop())
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func registerUser(t *testing.T, handler http.Handler, username, role string) models.User {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/users/register", models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "long-enough-password",
		Role:     role,
	}, "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var user models.User
	if err := json.Unmarshal(rec.Body.Bytes(), &user); err != nil {
		t.Fatal(err)
	}
	return user
}

func loginUser(t *testing.T, handler http.Handler, username string) string {
	t.Helper()
	rec := doJSON(t, handler, http.MethodPost, "/api/users/login", models.LoginRequest{
		Username: username,
		Password: "long-enough-password",
	}, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("login %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var resp models.TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	return resp.AccessToken
}

func TestRegisterAndLogin(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Router()

	user := registerUser(t, handler, "alice", "teacher")
	if user.Role != "teacher" || !user.IsActive {
		t.Errorf("registered user = %+v", user)
	}

	token := loginUser(t, handler, "alice")
	rec := doJSON(t, handler, http.MethodGet, "/api/users/me", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: status %d", rec.Code)
	}
	var me models.User
	_ = json.Unmarshal(rec.Body.Bytes(), &me)
	if me.Username != "alice" {
		t.Errorf("me = %+v", me)
	}
}

func TestRegister_DefaultRoleStudent(t *testing.T) {
	srv := newTestServer(t)
	user := registerUser(t, srv.Router(), "bob", "")
	if user.Role != models.RoleStudent {
		t.Errorf("role = %s, want student", user.Role)
	}
}

func TestRegister_DuplicateUsername(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Router()
	registerUser(t, handler, "carol", "")
	rec := doJSON(t, handler, http.MethodPost, "/api/users/register", models.RegisterRequest{
		Username: "carol",
		Email:    "other@example.com",
		Password: "long-enough-password",
	}, "")
	if rec.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", rec.Code)
	}
}

func TestRegister_Invalid(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Router()
	rec := doJSON(t, handler, http.MethodPost, "/api/users/register", models.RegisterRequest{
		Username: "dave",
		Email:    "not-an-email",
		Password: "short",
	}, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Router()
	registerUser(t, handler, "erin", "")
	rec := doJSON(t, handler, http.MethodPost, "/api/users/login", models.LoginRequest{
		Username: "erin",
		Password: "wrong-password-entirely",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListUsers_AdminOnly(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Router()
	registerUser(t, handler, "student1", "")
	registerUser(t, handler, "boss", "admin")

	studentToken := loginUser(t, handler, "student1")
	rec := doJSON(t, handler, http.MethodGet, "/api/users", nil, studentToken)
	if rec.Code != http.StatusForbidden {
		t.Errorf("student list: status = %d, want 403", rec.Code)
	}

	adminToken := loginUser(t, handler, "boss")
	rec = doJSON(t, handler, http.MethodGet, "/api/users", nil, adminToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin list: status = %d", rec.Code)
	}
	var list []*models.User
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 2 {
		t.Errorf("expected 2 users, got %d", len(list))
	}
}

func TestMe_Unauthenticated(t *testing.T) {
	srv := newTestServer(t)
	rec := doJSON(t, srv.Router(), http.MethodGet, "/api/users/me", nil, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestListUsers_NegativeOffset(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Router()
	registerUser(t, handler, "pager", "admin")

	token := loginUser(t, handler, "pager")
	rec := doJSON(t, handler, http.MethodGet, "/api/users?offset=-1", nil, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var list []*models.User
	_ = json.Unmarshal(rec.Body.Bytes(), &list)
	if len(list) != 1 {
		t.Errorf("expected 1 user, got %d", len(list))
	}
}
