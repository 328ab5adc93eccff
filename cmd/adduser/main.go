// adduser 创建管理员账号，用于首次部署；教师与学生账号通过 API 随档案一起创建
//
//	go run ./cmd/adduser --email admin@edusen.sn --password 'Secret123' --nom Diallo --prenom Fatou
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"edusen/backend/config"
	"edusen/backend/internal/model"
	"edusen/backend/internal/repository"
	"edusen/backend/pkg/database"
	applogger "edusen/backend/pkg/logger"
)

func main() {
	var (
		cfgPath  = pflag.String("config", "", "配置文件路径")
		email    = pflag.String("email", "", "登录邮箱（必填）")
		password = pflag.String("password", "", "初始密码，至少 8 位（必填）")
		nom      = pflag.String("nom", "Admin", "姓")
		prenom   = pflag.String("prenom", "EduSen", "名")
	)
	pflag.Parse()

	if err := run(*cfgPath, *email, *password, *nom, *prenom); err != nil {
		fmt.Fprintf(os.Stderr, "创建账号失败: %v\n", err)
		os.Exit(1)
	}
}

func run(cfgPath, email, password, nom, prenom string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || len(password) < 8 {
		return errors.New("--email 必填，--password 至少 8 位")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		return err
	}
	defer logger.Sync()

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if err := database.RunMigrations(sqlDB, cfg.Database.Driver, logger); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	repo := repository.NewRepository(db)
	if _, err := repo.User.GetByEmail(ctx, email); err == nil {
		return fmt.Errorf("邮箱 %s 已存在", email)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	user := &model.User{
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleAdmin,
		Nom:          nom,
		Prenom:       prenom,
		IsActive:     true,
	}
	if err := repo.User.Create(ctx, user); err != nil {
		return err
	}

	logger.Info("管理员账号已创建", zap.String("user_id", user.UserID), zap.String("email", email))
	return nil
}
