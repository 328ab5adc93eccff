package config

import (
	"strings"
	"testing"
)

func validConfig() *Config {
	return &Config{
		Server:    ServerConfig{Port: 5000},
		Database:  DatabaseConfig{Driver: DriverMySQL},
		Auth:      AuthConfig{JWTSecret: "0123456789abcdef0123"},
		Timetable: TimetableConfig{DaysPerWeek: 6, SlotsPerDay: 10},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"合法配置", func(c *Config) {}, ""},
		{"缺少密钥", func(c *Config) { c.Auth.JWTSecret = "" }, "jwt_secret 不能为空"},
		{"密钥过短", func(c *Config) { c.Auth.JWTSecret = "short" }, "不能少于 16"},
		{"端口越界", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"未知驱动", func(c *Config) { c.Database.Driver = "sqlite" }, "db.driver"},
		{"天数为零", func(c *Config) { c.Timetable.DaysPerWeek = 0 }, "days_per_week"},
		{"节数过多", func(c *Config) { c.Timetable.SlotsPerDay = 30 }, "slots_per_day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("期望通过校验，实际: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("期望错误包含 %q，实际: %v", tt.wantErr, err)
			}
		})
	}
}

func TestDSN(t *testing.T) {
	c := DatabaseConfig{Driver: DriverMySQL, Host: "db", Port: 3306, User: "root", Password: "pw", Name: "edusen"}
	dsn := c.DSN()
	if !strings.HasPrefix(dsn, "root:pw@tcp(db:3306)/edusen?") {
		t.Errorf("MySQL DSN 格式错误: %s", dsn)
	}
	if !strings.Contains(dsn, "parseTime=True") || !strings.Contains(dsn, "multiStatements=true") {
		t.Errorf("MySQL DSN 缺少必要参数: %s", dsn)
	}

	c.Driver = DriverPostgres
	c.Port = 5432
	c.SSLMode = "disable"
	c.Timezone = "UTC"
	if got := c.DSN(); !strings.Contains(got, "host=db port=5432") || !strings.Contains(got, "dbname=edusen") {
		t.Errorf("PostgreSQL DSN 格式错误: %s", got)
	}
}

func TestLoad_EnvAliases(t *testing.T) {
	t.Setenv("JWT_SECRET", "a-very-long-secret-value")
	t.Setenv("DB_HOST", "mysql.internal")
	t.Setenv("DB_PORT", "3307")
	t.Setenv("PORT", "8081")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load 应成功: %v", err)
	}
	if cfg.Database.Host != "mysql.internal" {
		t.Errorf("期望 db.host=mysql.internal，实际=%s", cfg.Database.Host)
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("期望 db.port=3307，实际=%d", cfg.Database.Port)
	}
	if cfg.Server.Port != 8081 {
		t.Errorf("期望 server.port=8081，实际=%d", cfg.Server.Port)
	}
	if cfg.Timetable.SlotsPerDay != 10 {
		t.Errorf("期望默认 slots_per_day=10，实际=%d", cfg.Timetable.SlotsPerDay)
	}
}
