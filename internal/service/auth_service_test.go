package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"result-generator/backend/config"
	"result-generator/backend/internal/dto"
	"result-generator/backend/internal/model"
	"result-generator/backend/pkg/jwt"
)

// ── Mock TokenBlacklist ──

type mockBlacklist struct {
	revoked map[string]time.Duration
}

func newMockBlacklist() *mockBlacklist {
	return &mockBlacklist{revoked: make(map[string]time.Duration)}
}

func (b *mockBlacklist) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	b.revoked[jti] = ttl
	return nil
}

func (b *mockBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	_, ok := b.revoked[jti]
	return ok, nil
}

// ── 测试辅助 ──

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-tests",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 24 * time.Hour,
			BcryptCost:      bcrypt.MinCost,
		},
		Grading: config.GradingConfig{DefaultSession: "2024-25", DefaultSubjects: []string{"English"}},
	}
}

func setupTestAuthService() (AuthService, *mockRepos, *mockBlacklist, *jwt.Manager) {
	cfg := testConfig()
	repo, m := newMockRepository()
	jwtMgr := jwt.NewManager(&cfg.Auth)
	bl := newMockBlacklist()
	return NewAuthService(cfg, repo, jwtMgr, bl, zap.NewNop()), m, bl, jwtMgr
}

func createTestUser(m *mockRepos, email, password, role string, active bool) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &model.User{
		Name:         "Test " + role,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		IsActive:     active,
	}
	_ = m.users.Create(context.Background(), u)
	return u
}

// ── Login 测试 ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, m, _, jwtMgr := setupTestAuthService()
	u := createTestUser(m, "staff@school.test", "Passw0rd!", model.RoleStaff, true)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: " Staff@School.test ", Password: "Passw0rd!"})
	if err != nil {
		t.Fatalf("期望登录成功，实际: %v", err)
	}
	if resp.User.ID != u.UserID || resp.ExpiresIn != 900 {
		t.Errorf("响应不符: %+v", resp)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 解析失败: %v", err)
	}
	if claims.UserID != u.UserID || claims.Role != model.RoleStaff || claims.TokenType != "access" {
		t.Errorf("Claims 不符: %+v", claims)
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, m, _, _ := setupTestAuthService()
	createTestUser(m, "staff@school.test", "Passw0rd!", model.RoleStaff, true)
	createTestUser(m, "old@school.test", "Passw0rd!", model.RoleStaff, false)
	ctx := context.Background()

	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "staff@school.test", Password: "wrong"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("错误密码期望 ErrInvalidCredentials，实际: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "nobody@school.test", Password: "x"}); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("不存在的邮箱期望 ErrInvalidCredentials，实际: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "old@school.test", Password: "Passw0rd!"}); !errors.Is(err, ErrUserDisabled) {
		t.Errorf("停用账号期望 ErrUserDisabled，实际: %v", err)
	}
}

// ── RefreshToken / Logout 测试 ──

func TestAuthService_RefreshToken_Rotates(t *testing.T) {
	svc, m, bl, jwtMgr := setupTestAuthService()
	createTestUser(m, "staff@school.test", "Passw0rd!", model.RoleStaff, true)
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Email: "staff@school.test", Password: "Passw0rd!"})

	refreshed, err := svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("期望刷新成功，实际: %v", err)
	}
	if refreshed.RefreshToken == "" {
		t.Fatal("期望返回新的 RefreshToken")
	}

	old, _ := jwtMgr.ParseToken(login.RefreshToken)
	if _, ok := bl.revoked[old.ID]; !ok {
		t.Error("旧 RefreshToken 应被加入黑名单")
	}

	if _, err := svc.RefreshToken(ctx, login.RefreshToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("重复使用旧 RefreshToken 期望 ErrInvalidRefreshToken，实际: %v", err)
	}
}

func TestAuthService_RefreshToken_RejectsAccessToken(t *testing.T) {
	svc, m, _, _ := setupTestAuthService()
	createTestUser(m, "staff@school.test", "Passw0rd!", model.RoleStaff, true)

	login, _ := svc.Login(context.Background(), &dto.LoginRequest{Email: "staff@school.test", Password: "Passw0rd!"})
	if _, err := svc.RefreshToken(context.Background(), login.AccessToken); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Errorf("AccessToken 不能用于刷新，实际: %v", err)
	}
}

func TestAuthService_Logout_BlacklistsBoth(t *testing.T) {
	svc, m, bl, jwtMgr := setupTestAuthService()
	createTestUser(m, "staff@school.test", "Passw0rd!", model.RoleStaff, true)
	ctx := context.Background()

	login, _ := svc.Login(ctx, &dto.LoginRequest{Email: "staff@school.test", Password: "Passw0rd!"})
	access, _ := jwtMgr.ParseToken(login.AccessToken)

	if err := svc.Logout(ctx, access, login.RefreshToken); err != nil {
		t.Fatalf("登出失败: %v", err)
	}
	if len(bl.revoked) != 2 {
		t.Errorf("期望两个 Token 加入黑名单，实际 %d", len(bl.revoked))
	}
	if ttl := bl.revoked[access.ID]; ttl <= 0 || ttl > 15*time.Minute {
		t.Errorf("黑名单 TTL 应为剩余有效期，实际 %v", ttl)
	}
}

func TestAuthService_Logout_WithoutBlacklist(t *testing.T) {
	cfg := testConfig()
	repo, _ := newMockRepository()
	svc := NewAuthService(cfg, repo, jwt.NewManager(&cfg.Auth), nil, zap.NewNop())

	if err := svc.Logout(context.Background(), &jwt.Claims{}, ""); err != nil {
		t.Errorf("未配置黑名单时登出应成功，实际: %v", err)
	}
}

// ── ChangePassword / Register 测试 ──

func TestAuthService_ChangePassword(t *testing.T) {
	svc, m, _, _ := setupTestAuthService()
	u := createTestUser(m, "staff@school.test", "Passw0rd!", model.RoleStaff, true)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, u.UserID, &dto.ChangePasswordRequest{OldPassword: "bad", NewPassword: "NewPassw0rd"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际: %v", err)
	}

	if err := svc.ChangePassword(ctx, u.UserID, &dto.ChangePasswordRequest{OldPassword: "Passw0rd!", NewPassword: "NewPassw0rd"}); err != nil {
		t.Fatalf("修改密码失败: %v", err)
	}
	if _, err := svc.Login(ctx, &dto.LoginRequest{Email: "staff@school.test", Password: "NewPassw0rd"}); err != nil {
		t.Errorf("新密码应可登录，实际: %v", err)
	}
}

func TestAuthService_Register_StudentLink(t *testing.T) {
	svc, m, _, _ := setupTestAuthService()
	s := m.seedStudent("Asha", "ADM001", "5", "A")
	ctx := context.Background()

	_, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Asha", Email: "asha@school.test", Password: "Passw0rd!", Role: model.RoleStudent,
	}, "admin-1")
	if !errors.Is(err, ErrStudentLinkRequired) {
		t.Errorf("期望 ErrStudentLinkRequired，实际: %v", err)
	}

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Name: "Asha", Email: "asha@school.test", Password: "Passw0rd!", Role: model.RoleStudent, StudentID: "missing",
	}, "admin-1")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}

	resp, err := svc.Register(ctx, &dto.RegisterRequest{
		Name: "Asha", Email: "Asha@School.test", Password: "Passw0rd!", Role: model.RoleStudent, StudentID: s.StudentID,
	}, "admin-1")
	if err != nil {
		t.Fatalf("期望注册成功，实际: %v", err)
	}
	if resp.StudentID != s.StudentID || resp.Email != "asha@school.test" {
		t.Errorf("响应不符: %+v", resp)
	}

	_, err = svc.Register(ctx, &dto.RegisterRequest{
		Name: "Dup", Email: "asha@school.test", Password: "Passw0rd!", Role: model.RoleStaff,
	}, "admin-1")
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("期望 ErrEmailExists，实际: %v", err)
	}
}

func TestAuthService_GetCurrentUser_NotFound(t *testing.T) {
	svc, _, _, _ := setupTestAuthService()

	if _, err := svc.GetCurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}
