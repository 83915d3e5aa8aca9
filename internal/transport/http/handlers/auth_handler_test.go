package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	redrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/redis"
	authsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/auth"
)

type memOwnerStore struct {
	nextID int64
	byMail map[string]pgrepo.OwnerRecord
}

func (s *memOwnerStore) Create(_ context.Context, email, passwordHash, displayName string) (int64, error) {
	if _, ok := s.byMail[email]; ok {
		return 0, pgrepo.ErrEmailTaken
	}
	s.nextID++
	s.byMail[email] = pgrepo.OwnerRecord{
		ID:           s.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
	}
	return s.nextID, nil
}

func (s *memOwnerStore) GetByEmail(_ context.Context, email string) (pgrepo.OwnerRecord, error) {
	owner, ok := s.byMail[email]
	if !ok {
		return pgrepo.OwnerRecord{}, pgrepo.ErrOwnerNotFound
	}
	return owner, nil
}

type memAdminStore struct {
	admins map[string]pgrepo.AdminRecord
}

func (s *memAdminStore) GetByEmail(_ context.Context, email string) (pgrepo.AdminRecord, error) {
	admin, ok := s.admins[email]
	if !ok {
		return pgrepo.AdminRecord{}, pgrepo.ErrAdminNotFound
	}
	return admin, nil
}

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = redisClient.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("admin-secret-1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}

	svc := authsvc.NewService(
		authsvc.NewJWTManager("test-secret", 15*time.Minute),
		redrepo.NewSessionRepo(redisClient),
		&memOwnerStore{byMail: map[string]pgrepo.OwnerRecord{}},
		&memAdminStore{admins: map[string]pgrepo.AdminRecord{
			"admin@netanya.live": {ID: 1, Email: "admin@netanya.live", PasswordHash: string(hash)},
		}},
		7*24*time.Hour,
	)
	return NewAuthHandler(svc)
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body map[string]any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeTokens(t *testing.T, rec *httptest.ResponseRecorder) (access, refresh string) {
	t.Helper()

	var resp struct {
		AccessToken  string `json:"access_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresInSec int64  `json:"expires_in_sec"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode tokens: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatalf("expected tokens, got %+v", resp)
	}
	if resp.ExpiresInSec <= 0 {
		t.Fatalf("expected positive expiry, got %d", resp.ExpiresInSec)
	}
	return resp.AccessToken, resp.RefreshToken
}

func TestOwnerRegisterLoginRefresh(t *testing.T) {
	h := newAuthHandler(t)

	rec := postJSON(t, h.OwnerRegister, "/auth/owner/register", map[string]any{
		"email":        "yossi@example.com",
		"password":     "long-enough-pass",
		"display_name": "Yossi",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register: unexpected status %d, body %s", rec.Code, rec.Body.String())
	}
	decodeTokens(t, rec)

	rec = postJSON(t, h.OwnerRegister, "/auth/owner/register", map[string]any{
		"email":    "yossi@example.com",
		"password": "long-enough-pass",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected conflict for duplicate email, got %d", rec.Code)
	}

	rec = postJSON(t, h.OwnerLogin, "/auth/owner/login", map[string]any{
		"email":    "Yossi@Example.com",
		"password": "long-enough-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: unexpected status %d", rec.Code)
	}
	_, refresh := decodeTokens(t, rec)

	rec = postJSON(t, h.Refresh, "/auth/refresh", map[string]any{"refresh_token": refresh})
	if rec.Code != http.StatusOK {
		t.Fatalf("refresh: unexpected status %d", rec.Code)
	}
	decodeTokens(t, rec)

	// Rotation invalidates the old refresh token.
	rec = postJSON(t, h.Refresh, "/auth/refresh", map[string]any{"refresh_token": refresh})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized for reused refresh token, got %d", rec.Code)
	}
}

func TestOwnerLoginWrongPassword(t *testing.T) {
	h := newAuthHandler(t)

	rec := postJSON(t, h.OwnerRegister, "/auth/owner/register", map[string]any{
		"email":    "yossi@example.com",
		"password": "long-enough-pass",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("register: unexpected status %d", rec.Code)
	}

	rec = postJSON(t, h.OwnerLogin, "/auth/owner/login", map[string]any{
		"email":    "yossi@example.com",
		"password": "wrong-password",
	})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected unauthorized, got %d", rec.Code)
	}
}

func TestAdminLogin(t *testing.T) {
	h := newAuthHandler(t)

	rec := postJSON(t, h.AdminLogin, "/auth/admin/login", map[string]any{
		"email":    "admin@netanya.live",
		"password": "admin-secret-1",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("admin login: unexpected status %d", rec.Code)
	}

	var resp struct {
		Me struct {
			Role string `json:"role"`
		} `json:"me"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Me.Role != "admin" {
		t.Fatalf("expected admin role, got %q", resp.Me.Role)
	}
}
