package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"edusen/backend/config"
	"edusen/backend/internal/dto"
	"edusen/backend/pkg/jwt"
)

// ── 测试辅助 ──

func setupTestAuthService(t *testing.T) (AuthService, *school, *jwt.Manager) {
	t.Helper()
	s := newSchool(t)
	cfg := &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	return NewAuthService(cfg, s.repo, jwtMgr, nil, zap.NewNop()), s, jwtMgr
}

// ── Login ──

func TestAuthService_Login_Success(t *testing.T) {
	svc, s, jwtMgr := setupTestAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{Email: "diop@ecole.sn", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}
	if resp.User.ProfileID != s.teacher.TeacherID {
		t.Errorf("期望 profile_id=%s，实际=%s", s.teacher.TeacherID, resp.User.ProfileID)
	}
	if resp.ExpiresIn != 1800 {
		t.Errorf("期望 expires_in=1800，实际=%d", resp.ExpiresIn)
	}

	claims, err := jwtMgr.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("AccessToken 无法解析: %v", err)
	}
	if claims.Role != "professeur" || claims.TokenType != jwt.TokenTypeAccess {
		t.Errorf("Claims 不正确: role=%s type=%s", claims.Role, claims.TokenType)
	}
	if s.db.users["user-prof"].LastLoginAt == nil {
		t.Error("登录后应记录最后登录时间")
	}
}

func TestAuthService_Login_Failures(t *testing.T) {
	svc, s, _ := setupTestAuthService(t)
	s.db.users["user-prof"].IsActive = false

	tests := []struct {
		name    string
		req     dto.LoginRequest
		wantErr error
	}{
		{"邮箱不存在", dto.LoginRequest{Email: "nobody@ecole.sn", Password: "password123"}, ErrInvalidCredentials},
		{"密码错误", dto.LoginRequest{Email: "diop@ecole.sn", Password: "wrong-password"}, ErrInvalidCredentials},
		{"账号停用", dto.LoginRequest{Email: "diop@ecole.sn", Password: "password123"}, ErrUserInactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), &tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("期望 %v，实际 %v", tt.wantErr, err)
			}
		})
	}
}

// ── RefreshToken ──

func TestAuthService_RefreshToken(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, &dto.LoginRequest{Email: "diop@ecole.sn", Password: "password123"})
	if err != nil {
		t.Fatalf("Login 应成功: %v", err)
	}

	if _, err := svc.RefreshToken(ctx, login.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("AccessToken 不能用于刷新，实际: %v", err)
	}

	resp, err := svc.RefreshToken(ctx, login.RefreshToken)
	if err != nil {
		t.Fatalf("RefreshToken 应成功: %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Error("刷新后应返回新的 Token 对")
	}
}

func TestAuthService_Logout_RequiresJTI(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	if err := svc.Logout(context.Background(), "", time.Now().Add(time.Hour)); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("期望 ErrInvalidToken，实际 %v", err)
	}
	// 未配置 Redis 时注销直接成功
	if err := svc.Logout(context.Background(), "jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Errorf("无 Redis 时 Logout 应成功: %v", err)
	}
}

// ── ChangePassword ──

func TestAuthService_ChangePassword(t *testing.T) {
	svc, s, _ := setupTestAuthService(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, "user-prof", &dto.ChangePasswordRequest{OldPassword: "bad", NewPassword: "newpassword1"})
	if !errors.Is(err, ErrWrongPassword) {
		t.Errorf("期望 ErrWrongPassword，实际 %v", err)
	}

	err = svc.ChangePassword(ctx, "user-prof", &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "password123"})
	if !errors.Is(err, ErrSamePassword) {
		t.Errorf("期望 ErrSamePassword，实际 %v", err)
	}

	err = svc.ChangePassword(ctx, "user-prof", &dto.ChangePasswordRequest{OldPassword: "password123", NewPassword: "newpassword1"})
	if err != nil {
		t.Fatalf("ChangePassword 应成功: %v", err)
	}
	hash := s.db.users["user-prof"].PasswordHash
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("newpassword1")) != nil {
		t.Error("新密码未生效")
	}
}

func TestAuthService_GetCurrentUser_NotFound(t *testing.T) {
	svc, _, _ := setupTestAuthService(t)
	if _, err := svc.GetCurrentUser(context.Background(), "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际 %v", err)
	}
}
