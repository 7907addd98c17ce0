package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
)

// ── 测试辅助 ──

func setupTestDepartmentService() (DepartmentService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewDepartmentService(repo, zap.NewNop())
	return svc, mocks
}

func seedUniversity(mocks *mockRepos, uniID, name string) *model.University {
	uni := &model.University{UniversityID: uniID, Name: name}
	mocks.University.Create(context.Background(), uni)
	return uni
}

// seedDepartmentTree 构造院系 + 专业 + 要求的完整层级
func seedDepartmentTree(mocks *mockRepos, deptID string) {
	ctx := context.Background()
	mocks.Department.Create(ctx, &model.Department{
		DepartmentID: deptID, UniversityID: "uni-1", Name: "院系" + deptID,
	})
	mocks.Program.Create(ctx, &model.Program{
		ProgramID: deptID + "-prog-1", DepartmentID: deptID, Name: "专业A", Degree: model.DegreeBachelor,
	})
	mocks.Program.Create(ctx, &model.Program{
		ProgramID: deptID + "-prog-2", DepartmentID: deptID, Name: "专业B", Degree: model.DegreeMaster,
	})
	mocks.Requirement.Create(ctx, &model.ProgramRequirement{
		RequirementID: deptID + "-req-1", ProgramID: deptID + "-prog-1",
		Type: model.RequirementGrade, Subject: strPtr("Mathematics"), MinGrade: strPtr("B"),
	})
	mocks.Requirement.Create(ctx, &model.ProgramRequirement{
		RequirementID: deptID + "-req-2", ProgramID: deptID + "-prog-2",
		Type: model.RequirementInterview,
	})
}

// ── Create 测试 ──

func TestDepartmentService_Create_Success(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	seedUniversity(mocks, "uni-1", "测试大学")

	req := &dto.CreateDepartmentRequest{
		UniversityID: "uni-1",
		Name:         "计算机学院",
		Code:         "CS",
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "计算机学院" {
		t.Errorf("期望Name=计算机学院，实际=%s", result.Name)
	}
	if result.UniversityID != "uni-1" {
		t.Errorf("期望UniversityID=uni-1，实际=%s", result.UniversityID)
	}
}

func TestDepartmentService_Create_UniversityMissing(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		UniversityID: "no-such-uni",
		Name:         "计算机学院",
	}, "admin-001")

	if !errors.Is(err, ErrUniversityNotFound) {
		t.Errorf("期望 ErrUniversityNotFound，实际: %v", err)
	}
}

func TestDepartmentService_Create_NameExistsInSameUniversity(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	seedUniversity(mocks, "uni-1", "测试大学")
	seedUniversity(mocks, "uni-2", "另一所大学")
	mocks.Department.Create(context.Background(), &model.Department{
		DepartmentID: "dept-1", UniversityID: "uni-1", Name: "计算机学院",
	})

	// 同一大学下重名被拒绝
	_, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		UniversityID: "uni-1",
		Name:         "计算机学院",
	}, "admin-001")
	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际: %v", err)
	}

	// 不同大学下同名允许
	if _, err := svc.Create(context.Background(), &dto.CreateDepartmentRequest{
		UniversityID: "uni-2",
		Name:         "计算机学院",
	}, "admin-001"); err != nil {
		t.Errorf("不同大学下同名院系应允许: %v", err)
	}
}

// ── GetByID 测试 ──

func TestDepartmentService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	_, err := svc.GetByID(context.Background(), "missing")
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

func TestDepartmentService_GetByID_ProgramCount(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	seedDepartmentTree(mocks, "dept-1")

	result, err := svc.GetByID(context.Background(), "dept-1")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if result.ProgramCount != 2 {
		t.Errorf("期望 ProgramCount=2，实际=%d", result.ProgramCount)
	}
}

// ── Update 测试 ──

func TestDepartmentService_Update_RenameConflict(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	ctx := context.Background()
	mocks.Department.Create(ctx, &model.Department{
		DepartmentID: "dept-1", UniversityID: "uni-1", Name: "计算机学院",
	})
	mocks.Department.Create(ctx, &model.Department{
		DepartmentID: "dept-2", UniversityID: "uni-1", Name: "数学学院",
	})

	_, err := svc.Update(ctx, "dept-2", &dto.UpdateDepartmentRequest{
		Name: strPtr("计算机学院"),
	}, "admin-001")

	if !errors.Is(err, ErrDepartmentNameExists) {
		t.Errorf("期望 ErrDepartmentNameExists，实际: %v", err)
	}
}

// ── Delete 级联测试 ──

func TestDepartmentService_Delete_CascadesProgramsAndRequirements(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	seedDepartmentTree(mocks, "dept-1")
	seedDepartmentTree(mocks, "dept-2")

	if err := svc.Delete(context.Background(), "dept-1", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	// dept-1 层级全部删除
	if _, ok := mocks.Department.departments["dept-1"]; ok {
		t.Error("院系应已删除")
	}
	for pid := range mocks.Program.programs {
		if pid == "dept-1-prog-1" || pid == "dept-1-prog-2" {
			t.Errorf("专业 %s 应随院系级联删除", pid)
		}
	}
	for rid := range mocks.Requirement.requirements {
		if rid == "dept-1-req-1" || rid == "dept-1-req-2" {
			t.Errorf("要求 %s 应随院系级联删除", rid)
		}
	}

	// dept-2 层级不受影响
	if _, ok := mocks.Department.departments["dept-2"]; !ok {
		t.Error("其他院系不应被删除")
	}
	if _, ok := mocks.Program.programs["dept-2-prog-1"]; !ok {
		t.Error("其他院系的专业不应被删除")
	}
	if _, ok := mocks.Requirement.requirements["dept-2-req-1"]; !ok {
		t.Error("其他院系的要求不应被删除")
	}
}

func TestDepartmentService_Delete_BlockedByActiveApplication(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	seedDepartmentTree(mocks, "dept-1")
	mocks.Application.Create(context.Background(), &model.Application{
		StudentID: "stu-1",
		ProgramID: "dept-1-prog-1",
		Status:    model.ApplicationPending,
	})

	err := svc.Delete(context.Background(), "dept-1", "admin-001")
	if !errors.Is(err, ErrDepartmentActiveApplications) {
		t.Errorf("期望 ErrDepartmentActiveApplications，实际: %v", err)
	}
	if _, ok := mocks.Department.departments["dept-1"]; !ok {
		t.Error("删除被拒绝时院系应保留")
	}
}

func TestDepartmentService_Delete_TerminalApplicationsDoNotBlock(t *testing.T) {
	svc, mocks := setupTestDepartmentService()
	seedDepartmentTree(mocks, "dept-1")
	mocks.Application.Create(context.Background(), &model.Application{
		StudentID: "stu-1",
		ProgramID: "dept-1-prog-1",
		Status:    model.ApplicationRejected,
	})

	if err := svc.Delete(context.Background(), "dept-1", "admin-001"); err != nil {
		t.Errorf("仅有终态申请时删除应成功: %v", err)
	}
}

func TestDepartmentService_Delete_NotFound(t *testing.T) {
	svc, _ := setupTestDepartmentService()

	err := svc.Delete(context.Background(), "missing", "admin-001")
	if !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}
