package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"edusen/backend/config"
	"edusen/backend/internal/api/handler"
	"edusen/backend/internal/model"
	"edusen/backend/internal/service"
	"edusen/backend/pkg/jwt"
)

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func setupRouter(t *testing.T) (http.Handler, *jwt.Manager) {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Port: 5000, BodyLimit: 1 << 20},
		Auth: config.AuthConfig{
			JWTSecret:       "test-secret-key-for-unit-testing-2026",
			AccessTokenTTL:  30 * time.Minute,
			RefreshTokenTTL: time.Hour,
		},
	}
	jwtMgr := jwt.NewManager(&cfg.Auth)
	// 服务全部为空：只验证在进入 handler 之前就被拦截的请求
	h := handler.NewHandler(&service.Service{}, handler.Deps{
		Upgrader: websocket.Upgrader{},
		DB:       okPinger{},
		Logger:   zap.NewNop(),
	})

	r, err := Setup(cfg, h, jwtMgr, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("Setup 失败: %v", err)
	}
	return r, jwtMgr
}

func TestRouter_Health(t *testing.T) {
	r, _ := setupRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("缺少 X-Request-ID 响应头")
	}
}

func TestRouter_AccessControl(t *testing.T) {
	r, jwtMgr := setupRouter(t)
	eleve, _ := jwtMgr.GenerateAccessToken("user-e", model.RoleEleve, "stu-1")
	prof, _ := jwtMgr.GenerateAccessToken("user-p", model.RoleProfesseur, "prof-1")

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		wantCode int
	}{
		{"未登录访问学生列表", "GET", "/api/eleves", "", http.StatusUnauthorized},
		{"学生访问学生列表", "GET", "/api/eleves", eleve, http.StatusForbidden},
		{"教师创建学生", "POST", "/api/eleves", prof, http.StatusForbidden},
		{"教师创建课程", "POST", "/api/cours", prof, http.StatusForbidden},
		{"学生录入成绩", "POST", "/api/notes", eleve, http.StatusForbidden},
		{"教师生成成绩单", "POST", "/api/bulletins/generate", prof, http.StatusForbidden},
		{"学生群发通知", "POST", "/api/notifications", eleve, http.StatusForbidden},
		{"学生删除学期", "DELETE", "/api/semestres/t-1", eleve, http.StatusForbidden},
		{"未登录访问 WebSocket", "GET", "/api/notifications/ws", "", http.StatusUnauthorized},
		{"未知路由", "GET", "/api/unknown", prof, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			r.ServeHTTP(w, req)
			if w.Code != tt.wantCode {
				t.Errorf("expected %d, got %d", tt.wantCode, w.Code)
			}
		})
	}
}
