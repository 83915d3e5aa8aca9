package auth_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"

	pgrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/postgres"
	redrepo "github.com/MichaelMishaev/netanyaLife-sub002/internal/repo/redis"
	authsvc "github.com/MichaelMishaev/netanyaLife-sub002/internal/services/auth"
)

type fakeOwnerStore struct {
	mu     sync.Mutex
	nextID int64
	owners map[string]pgrepo.OwnerRecord
}

func newFakeOwnerStore() *fakeOwnerStore {
	return &fakeOwnerStore{nextID: 1, owners: map[string]pgrepo.OwnerRecord{}}
}

func (s *fakeOwnerStore) Create(_ context.Context, email, passwordHash, displayName string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.owners[email]; ok {
		return 0, pgrepo.ErrEmailTaken
	}
	id := s.nextID
	s.nextID++
	s.owners[email] = pgrepo.OwnerRecord{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  displayName,
		CreatedAt:    time.Now(),
	}
	return id, nil
}

func (s *fakeOwnerStore) GetByEmail(_ context.Context, email string) (pgrepo.OwnerRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owner, ok := s.owners[email]
	if !ok {
		return pgrepo.OwnerRecord{}, pgrepo.ErrOwnerNotFound
	}
	return owner, nil
}

type fakeAdminStore struct {
	admins map[string]pgrepo.AdminRecord
}

func (s *fakeAdminStore) GetByEmail(_ context.Context, email string) (pgrepo.AdminRecord, error) {
	admin, ok := s.admins[email]
	if !ok {
		return pgrepo.AdminRecord{}, pgrepo.ErrAdminNotFound
	}
	return admin, nil
}

func newTestService(t *testing.T) (*authsvc.Service, *fakeOwnerStore, func()) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	sessions := redrepo.NewSessionRepo(client)
	owners := newFakeOwnerStore()

	adminHash, err := bcrypt.GenerateFromPassword([]byte("admin-secret-1"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash admin password: %v", err)
	}
	admins := &fakeAdminStore{admins: map[string]pgrepo.AdminRecord{
		"admin@example.com": {ID: 42, Email: "admin@example.com", PasswordHash: string(adminHash)},
	}}

	jwtManager := authsvc.NewJWTManager("test-secret", 15*time.Minute)
	svc := authsvc.NewService(jwtManager, sessions, owners, admins, 7*24*time.Hour)

	cleanup := func() {
		_ = client.Close()
		mini.Close()
	}
	return svc, owners, cleanup
}

func TestRegisterOwnerAndLogin(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()

	result, err := svc.RegisterOwner(ctx, "Yossi@Example.com", "password123", "Yossi")
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}
	if result.AccessToken == "" || result.RefreshToken == "" {
		t.Fatal("expected tokens on register")
	}
	if result.Me.Role != "owner" {
		t.Fatalf("expected owner role, got %q", result.Me.Role)
	}
	if result.Me.Email != "yossi@example.com" {
		t.Fatalf("expected lowercased email, got %q", result.Me.Email)
	}

	if _, err := svc.RegisterOwner(ctx, "yossi@example.com", "password123", "Other"); !errors.Is(err, authsvc.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}

	login, err := svc.LoginOwner(ctx, "yossi@example.com", "password123")
	if err != nil {
		t.Fatalf("login owner: %v", err)
	}
	claims, err := svc.ValidateAccessToken(ctx, login.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}
	if claims.SubjectID != result.Me.ID {
		t.Fatalf("expected subject %d, got %d", result.Me.ID, claims.SubjectID)
	}
}

func TestLoginOwnerWrongPassword(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.RegisterOwner(ctx, "anna@example.com", "password123", "Anna"); err != nil {
		t.Fatalf("register owner: %v", err)
	}

	if _, err := svc.LoginOwner(ctx, "anna@example.com", "wrong-password"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if _, err := svc.LoginOwner(ctx, "nobody@example.com", "password123"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown email, got %v", err)
	}
	if _, err := svc.LoginOwner(ctx, "anna@example.com", "   "); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank password, got %v", err)
	}
}

func TestRegisterOwnerRejectsBadInput(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := svc.RegisterOwner(ctx, "not-an-email", "password123", ""); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad email, got %v", err)
	}
	if _, err := svc.RegisterOwner(ctx, "short@example.com", "short", ""); !errors.Is(err, authsvc.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for short password, got %v", err)
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	result, err := svc.RegisterOwner(ctx, "dana@example.com", "password123", "Dana")
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, result.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if refreshed.RefreshToken == result.RefreshToken {
		t.Fatal("expected a new refresh token")
	}

	if _, err := svc.Refresh(ctx, result.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected old refresh token to be rejected, got %v", err)
	}
	if _, err := svc.Refresh(ctx, refreshed.RefreshToken); err != nil {
		t.Fatalf("refresh with rotated token: %v", err)
	}
}

func TestLogoutRevokesAccess(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	result, err := svc.RegisterOwner(ctx, "lev@example.com", "password123", "Lev")
	if err != nil {
		t.Fatalf("register owner: %v", err)
	}

	claims, err := svc.ValidateAccessToken(ctx, result.AccessToken)
	if err != nil {
		t.Fatalf("validate access token: %v", err)
	}

	if err := svc.Logout(ctx, claims.SID); err != nil {
		t.Fatalf("logout: %v", err)
	}

	if _, err := svc.ValidateAccessToken(ctx, result.AccessToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected access token to be revoked, got %v", err)
	}
	if _, err := svc.Refresh(ctx, result.RefreshToken); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected refresh token to be revoked, got %v", err)
	}
}

func TestLoginAdmin(t *testing.T) {
	svc, _, cleanup := newTestService(t)
	defer cleanup()

	ctx := context.Background()
	result, err := svc.LoginAdmin(ctx, "admin@example.com", "admin-secret-1")
	if err != nil {
		t.Fatalf("login admin: %v", err)
	}
	if result.Me.Role != "admin" {
		t.Fatalf("expected admin role, got %q", result.Me.Role)
	}

	if _, err := svc.LoginAdmin(ctx, "admin@example.com", "wrong"); !errors.Is(err, authsvc.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}
