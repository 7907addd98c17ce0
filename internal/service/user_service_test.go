package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
)

// ── 测试辅助 ──

func setupTestUserService() (UserService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewUserService(repo, zap.NewNop())
	return svc, mocks
}

func seedUser(mocks *mockRepos, userID, name, email, role string, deptID *string) *model.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	user := &model.User{
		UserID:       userID,
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		DepartmentID: deptID,
	}
	mocks.User.users[userID] = user
	return user
}

func seedDepartment(mocks *mockRepos, deptID, name string) *model.Department {
	dept := &model.Department{DepartmentID: deptID, UniversityID: "uni-1", Name: name}
	mocks.Department.Create(context.Background(), dept)
	return dept
}

// ── CreateUser 测试 ──

func TestUserService_CreateUser_DepartmentAdmin(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedDepartment(mocks, "dept-1", "计算机学院")

	resp, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name:         "王老师",
		Email:        "Wang@Example.com",
		Role:         model.RoleDepartmentAdmin,
		DepartmentID: "dept-1",
	}, "admin-1")

	if err != nil {
		t.Fatalf("CreateUser 应成功: %v", err)
	}
	if resp.TempPassword == "" {
		t.Error("响应应包含一次性初始密码")
	}
	if resp.User.Email != "wang@example.com" {
		t.Errorf("邮箱应归一化为小写，实际=%s", resp.User.Email)
	}

	created, _ := mocks.User.GetByID(context.Background(), resp.User.ID)
	if !created.MustChangePassword {
		t.Error("新建账号应强制首次修改密码")
	}
	if created.DepartmentID == nil || *created.DepartmentID != "dept-1" {
		t.Error("院系管理员应绑定院系")
	}
	// 初始密码可通过 bcrypt 校验
	if bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("初始密码与散列不匹配")
	}
}

func TestUserService_CreateUser_DepartmentAdminRequiresDept(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name:  "王老师",
		Email: "wang@example.com",
		Role:  model.RoleDepartmentAdmin,
	}, "admin-1")

	if !errors.Is(err, ErrDepartmentRequired) {
		t.Errorf("期望 ErrDepartmentRequired，实际: %v", err)
	}
}

func TestUserService_CreateUser_DepartmentMissing(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name:         "王老师",
		Email:        "wang@example.com",
		Role:         model.RoleDepartmentAdmin,
		DepartmentID: "no-such-dept",
	}, "admin-1")

	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

func TestUserService_CreateUser_EmailTaken(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "taken@example.com", model.RoleStudent, nil)

	_, err := svc.CreateUser(context.Background(), &dto.CreateUserRequest{
		Name:  "李四",
		Email: "taken@example.com",
		Role:  model.RoleSuperadmin,
	}, "admin-1")

	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

// ── List 测试 ──

func TestUserService_List_DepartmentAdminAutoScoped(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleDepartmentAdmin, strPtr("dept-1"))
	seedUser(mocks, "uid-2", "李四", "b@example.com", model.RoleDepartmentAdmin, strPtr("dept-2"))

	req := &dto.UserListRequest{}
	req.Page = 1
	req.PageSize = 20

	users, total, err := svc.List(context.Background(), req, model.RoleDepartmentAdmin, "dept-1")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Errorf("院系管理员只应看到本院系用户，期望 total=1，实际=%d", total)
	}
	if len(users) > 0 && users[0].Name != "张三" {
		t.Errorf("期望看到张三，实际=%s", users[0].Name)
	}
}

func TestUserService_List_FilterByRole(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)
	seedUser(mocks, "uid-2", "李四", "b@example.com", model.RoleDepartmentAdmin, strPtr("dept-1"))

	req := &dto.UserListRequest{}
	req.Role = model.RoleDepartmentAdmin
	req.Page = 1
	req.PageSize = 20

	users, total, err := svc.List(context.Background(), req, model.RoleSuperadmin, "")
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 1 {
		t.Errorf("期望 total=1，实际=%d", total)
	}
	if len(users) > 0 && users[0].Role != model.RoleDepartmentAdmin {
		t.Errorf("期望角色 department_admin，实际=%s", users[0].Role)
	}
}

// ── Update 测试 ──

func TestUserService_Update_SelfRename(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)

	resp, err := svc.Update(context.Background(), "uid-1", &dto.UpdateUserRequest{
		Name: strPtr("张三丰"),
	}, "uid-1", model.RoleStudent)

	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if resp.Name != "张三丰" {
		t.Errorf("期望姓名更新为 张三丰，实际=%s", resp.Name)
	}
}

func TestUserService_Update_StudentCannotUpdateOthers(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)
	seedUser(mocks, "uid-2", "李四", "b@example.com", model.RoleStudent, nil)

	_, err := svc.Update(context.Background(), "uid-2", &dto.UpdateUserRequest{
		Name: strPtr("改名"),
	}, "uid-1", model.RoleStudent)

	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestUserService_Update_NonSuperadminCannotChangeDept(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "王老师", "a@example.com", model.RoleDepartmentAdmin, strPtr("dept-1"))

	_, err := svc.Update(context.Background(), "uid-1", &dto.UpdateUserRequest{
		DepartmentID: strPtr("dept-2"),
	}, "uid-1", model.RoleDepartmentAdmin)

	if !errors.Is(err, ErrNoPermission) {
		t.Errorf("期望 ErrNoPermission，实际: %v", err)
	}
}

func TestUserService_Update_EmailConflict(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)
	seedUser(mocks, "uid-2", "李四", "b@example.com", model.RoleStudent, nil)

	_, err := svc.Update(context.Background(), "uid-1", &dto.UpdateUserRequest{
		Email: strPtr("b@example.com"),
	}, "uid-1", model.RoleStudent)

	if !errors.Is(err, ErrEmailTaken) {
		t.Errorf("期望 ErrEmailTaken，实际: %v", err)
	}
}

// ── Delete 测试 ──

func TestUserService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)

	if err := svc.Delete(context.Background(), "uid-1", "admin-1"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if _, err := mocks.User.GetByID(context.Background(), "uid-1"); err == nil {
		t.Error("删除后不应再查到用户")
	}
}

func TestUserService_Delete_Self(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleSuperadmin, nil)

	if err := svc.Delete(context.Background(), "uid-1", "uid-1"); !errors.Is(err, ErrUserSelfDelete) {
		t.Errorf("期望 ErrUserSelfDelete，实际: %v", err)
	}
}

func TestUserService_Delete_LastSuperadmin(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "管理员", "a@example.com", model.RoleSuperadmin, nil)

	err := svc.Delete(context.Background(), "uid-1", "other-admin")
	if !errors.Is(err, ErrLastSuperadmin) {
		t.Errorf("期望 ErrLastSuperadmin，实际: %v", err)
	}
}

func TestUserService_Delete_SecondSuperadminAllowed(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "管理员A", "a@example.com", model.RoleSuperadmin, nil)
	seedUser(mocks, "uid-2", "管理员B", "b@example.com", model.RoleSuperadmin, nil)

	if err := svc.Delete(context.Background(), "uid-2", "uid-1"); err != nil {
		t.Errorf("存在多名超管时删除应成功: %v", err)
	}
}

// ── AssignRole 测试 ──

func TestUserService_AssignRole_PromoteToDeptAdmin(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedDepartment(mocks, "dept-1", "计算机学院")
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)

	err := svc.AssignRole(context.Background(), "uid-1", &dto.AssignRoleRequest{
		Role:         model.RoleDepartmentAdmin,
		DepartmentID: "dept-1",
	}, "admin-1")

	if err != nil {
		t.Fatalf("AssignRole 应成功: %v", err)
	}
	user, _ := mocks.User.GetByID(context.Background(), "uid-1")
	if user.Role != model.RoleDepartmentAdmin {
		t.Errorf("期望角色 department_admin，实际=%s", user.Role)
	}
	if user.DepartmentID == nil || *user.DepartmentID != "dept-1" {
		t.Error("晋升院系管理员后应绑定院系")
	}
}

func TestUserService_AssignRole_DeptAdminWithoutDept(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)

	err := svc.AssignRole(context.Background(), "uid-1", &dto.AssignRoleRequest{
		Role: model.RoleDepartmentAdmin,
	}, "admin-1")

	if !errors.Is(err, ErrDepartmentRequired) {
		t.Errorf("期望 ErrDepartmentRequired，实际: %v", err)
	}
}

func TestUserService_AssignRole_DemoteClearsDept(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedDepartment(mocks, "dept-1", "计算机学院")
	seedUser(mocks, "uid-1", "王老师", "a@example.com", model.RoleDepartmentAdmin, strPtr("dept-1"))

	err := svc.AssignRole(context.Background(), "uid-1", &dto.AssignRoleRequest{
		Role: model.RoleStudent,
	}, "admin-1")

	if err != nil {
		t.Fatalf("AssignRole 应成功: %v", err)
	}
	user, _ := mocks.User.GetByID(context.Background(), "uid-1")
	if user.DepartmentID != nil {
		t.Error("降级为学生后应解除院系绑定")
	}
}

func TestUserService_AssignRole_Self(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "管理员", "a@example.com", model.RoleSuperadmin, nil)

	err := svc.AssignRole(context.Background(), "uid-1", &dto.AssignRoleRequest{
		Role: model.RoleStudent,
	}, "uid-1")

	if !errors.Is(err, ErrUserSelfRoleChange) {
		t.Errorf("期望 ErrUserSelfRoleChange，实际: %v", err)
	}
}

func TestUserService_AssignRole_LastSuperadminDemotion(t *testing.T) {
	svc, mocks := setupTestUserService()
	seedUser(mocks, "uid-1", "管理员", "a@example.com", model.RoleSuperadmin, nil)

	err := svc.AssignRole(context.Background(), "uid-1", &dto.AssignRoleRequest{
		Role: model.RoleStudent,
	}, "other-admin")

	if !errors.Is(err, ErrLastSuperadmin) {
		t.Errorf("期望 ErrLastSuperadmin，实际: %v", err)
	}
}

// ── ResetPassword 测试 ──

func TestUserService_ResetPassword(t *testing.T) {
	svc, mocks := setupTestUserService()
	user := seedUser(mocks, "uid-1", "张三", "a@example.com", model.RoleStudent, nil)
	oldHash := user.PasswordHash

	resp, err := svc.ResetPassword(context.Background(), "uid-1", "admin-1")
	if err != nil {
		t.Fatalf("ResetPassword 应成功: %v", err)
	}
	if resp.TempPassword == "" {
		t.Error("应返回临时密码")
	}

	stored, _ := mocks.User.GetByID(context.Background(), "uid-1")
	if stored.PasswordHash == oldHash {
		t.Error("密码散列应已更换")
	}
	if !stored.MustChangePassword {
		t.Error("重置后应强制修改密码")
	}
	if bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(resp.TempPassword)) != nil {
		t.Error("临时密码与散列不匹配")
	}
}

func TestUserService_ResetPassword_NotFound(t *testing.T) {
	svc, _ := setupTestUserService()

	_, err := svc.ResetPassword(context.Background(), "missing", "admin-1")
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

// ── 临时密码生成 ──

func TestGenerateTempPassword(t *testing.T) {
	pwd, err := generateTempPassword(10)
	if err != nil {
		t.Fatalf("生成临时密码失败: %v", err)
	}
	if len(pwd) != 10 {
		t.Errorf("期望长度 10，实际=%d", len(pwd))
	}

	hasLetter, hasDigit := false, false
	for _, c := range pwd {
		switch {
		case c >= '0' && c <= '9':
			hasDigit = true
		default:
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		t.Errorf("临时密码应同时包含字母和数字: %s", pwd)
	}
}
