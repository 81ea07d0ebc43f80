package auth

import (
	"context"
	"errors"
	"testing"
	"time"
	"vintnercrm/domain"
	"vintnercrm/pkg/utils"

	"github.com/go-playground/validator/v10"
)

const testRefreshKey = "0123456789abcdef"

type fakeUserRepo struct {
	users  map[string]domain.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]domain.User{}, nextID: 1}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.nextID
	r.nextID++
	r.users[user.Email] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uint) (domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, errors.New("user not found")
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	if u, ok := r.users[email]; ok {
		return u, nil
	}
	return domain.User{}, errors.New("user not found")
}

type fakeTokenStore struct {
	sessions map[string]string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{sessions: map[string]string{}}
}

func (s *fakeTokenStore) StoreSession(_ context.Context, userID, refreshToken string, _ time.Duration) error {
	s.sessions[userID] = refreshToken
	return nil
}

func (s *fakeTokenStore) SessionRefreshToken(_ context.Context, userID string) (string, error) {
	if tok, ok := s.sessions[userID]; ok {
		return tok, nil
	}
	return "", errors.New("session not found or expired")
}

func (s *fakeTokenStore) DeleteSession(_ context.Context, userID string) error {
	delete(s.sessions, userID)
	return nil
}

func newTestService() (*authService, *fakeUserRepo, *fakeTokenStore) {
	utils.InitJWT("test-secret")
	userRepo := newFakeUserRepo()
	tokenStore := newFakeTokenStore()
	svc := NewAuthService(userRepo, tokenStore, validator.New(), testRefreshKey)
	return svc, userRepo, tokenStore
}

func TestRegisterValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.User{FullName: "A", Email: "not-an-email", Password: "longenough"}); err == nil {
		t.Fatal("expected invalid email to fail")
	}
	if _, err := svc.Register(ctx, &domain.User{FullName: "A", Email: "a@example.com", Password: "short"}); err == nil {
		t.Fatal("expected short password to fail")
	}
}

func TestRegisterThenLogin(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	created, err := svc.Register(ctx, &domain.User{FullName: "Alex", Email: "alex@example.com", Password: "supersecret"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if created.Password != "" {
		t.Fatal("password leaked in register response")
	}
	if created.Role != RoleOperator {
		t.Fatalf("default role = %s, want operator", created.Role)
	}

	pair, user, err := svc.Login(ctx, "alex@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("missing tokens")
	}
	if user.Password != "" {
		t.Fatal("password leaked in login response")
	}

	if _, _, err := svc.Login(ctx, "alex@example.com", "wrongpass"); err == nil {
		t.Fatal("wrong password must fail")
	}
}

func TestRefreshRotatesToken(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.User{FullName: "Alex", Email: "alex@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, _, err := svc.Login(ctx, "alex@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	next, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if next.RefreshToken == pair.RefreshToken {
		t.Fatal("refresh token not rotated")
	}

	// the superseded token no longer matches the stored session
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("stale refresh token must be rejected")
	}

	// garbage tokens are rejected without touching the store
	if _, err := svc.Refresh(ctx, "not-a-token"); err == nil {
		t.Fatal("garbage refresh token must be rejected")
	}

	_ = store
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, store := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, &domain.User{FullName: "Alex", Email: "alex@example.com", Password: "supersecret"}); err != nil {
		t.Fatalf("Register: %v", err)
	}
	pair, user, err := svc.Login(ctx, "alex@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	userID := "1"
	if user.ID != 1 {
		t.Fatalf("unexpected user id %d", user.ID)
	}
	if err := svc.Logout(ctx, userID); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := store.sessions[userID]; ok {
		t.Fatal("session survived logout")
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); err == nil {
		t.Fatal("refresh after logout must fail")
	}
}
