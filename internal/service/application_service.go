package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
)

// ── 申请模块业务错误 ──

var (
	ErrApplicationNotFound        = errors.New("申请不存在")
	ErrApplicationProgramNotFound = errors.New("目标专业不存在")
	ErrApplicationDuplicate       = errors.New("已存在针对该专业的进行中申请")
	ErrApplicationNotOwner        = errors.New("无权操作他人的申请")
	ErrApplicationNotDraft        = errors.New("仅草稿状态的申请可以提交")
	ErrApplicationNotWithdrawable = errors.New("仅草稿或待审核状态的申请可以撤回")
	ErrApplicationNotDeletable    = errors.New("仅草稿状态的申请可以删除")
	ErrApplicationBadTransition   = errors.New("申请当前状态不允许该流转")
)

// ApplicationService 入学申请业务接口
//
// 设计说明：
//   - 状态机：DRAFT → PENDING → UNDER_REVIEW → APPROVED/REJECTED/CONDITIONAL，
//     提交时落 SubmittedAt，进入终态时落 DecidedAt/DecidedBy；
//   - 同一学生对同一专业最多一条进行中申请（DRAFT/PENDING/UNDER_REVIEW），
//     服务层先查后写，数据库部分唯一索引兜底并发；
//   - 撤回与删除均移除申请记录（状态枚举无 WITHDRAWN），区别仅在前置条件：
//     撤回允许 DRAFT/PENDING，删除仅允许 DRAFT；
//   - 审核流转使用乐观锁更新，并发审核冲突原样返回 ErrOptimisticLock。
type ApplicationService interface {
	Create(ctx context.Context, studentID string, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error)
	// Submit 将草稿提交为待审核，落提交时间
	Submit(ctx context.Context, id, studentID string) (*dto.ApplicationResponse, error)
	// Withdraw 学生撤回进行中的申请（仅 DRAFT/PENDING）
	Withdraw(ctx context.Context, id, studentID string) error
	// Delete 学生删除草稿（仅 DRAFT）
	Delete(ctx context.Context, id, studentID string) error
	// Review 审核人员推进申请状态，终态时落定夺信息
	Review(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error)
	// CanApply 申请资格预检，纯读操作，不改变任何状态
	CanApply(ctx context.Context, studentID, programID string) (*dto.CanApplyResponse, error)
	ListByStudent(ctx context.Context, studentID string, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	ListByProgram(ctx context.Context, programID string, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error)
	AddNote(ctx context.Context, applicationID string, req *dto.AddNoteRequest, authorID string) (*dto.ApplicationNoteResponse, error)
	// ListNotes includeInternal 为 false 时过滤内部备注（学生视角）
	ListNotes(ctx context.Context, applicationID string, includeInternal bool) ([]dto.ApplicationNoteResponse, error)
}

type applicationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewApplicationService 创建 ApplicationService 实例
func NewApplicationService(repo *repository.Repository, logger *zap.Logger) ApplicationService {
	return &applicationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *applicationService) Create(ctx context.Context, studentID string, req *dto.CreateApplicationRequest) (*dto.ApplicationResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, req.ProgramID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, err
	}

	// 同一专业已有进行中申请则拒绝
	if _, err := s.repo.Application.GetActiveByStudentAndProgram(ctx, studentID, req.ProgramID); err == nil {
		return nil, ErrApplicationDuplicate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询进行中申请失败", zap.Error(err))
		return nil, err
	}

	app := &model.Application{
		StudentID: studentID,
		ProgramID: req.ProgramID,
		Status:    model.ApplicationDraft,
	}
	if req.SubmitNow {
		now := time.Now()
		app.Status = model.ApplicationPending
		app.SubmittedAt = &now
	}
	app.CreatedBy = &studentID
	app.UpdatedBy = &studentID

	if err := s.repo.Application.Create(ctx, app); err != nil {
		// 并发创建时由部分唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrApplicationDuplicate
		}
		s.logger.Error("创建申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("申请已创建",
		zap.String("application_id", app.ApplicationID),
		zap.String("student_id", studentID),
		zap.String("program_id", req.ProgramID),
		zap.String("status", app.Status),
	)

	created, err := s.repo.Application.GetByID(ctx, app.ApplicationID)
	if err != nil {
		return nil, err
	}
	resp := s.toApplicationResponse(created)
	return &resp, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *applicationService) GetByID(ctx context.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}
	resp := s.toApplicationResponse(app)
	return &resp, nil
}

// ────────────────────── Submit ──────────────────────

func (s *applicationService) Submit(ctx context.Context, id, studentID string) (*dto.ApplicationResponse, error) {
	app, err := s.getOwnedApplication(ctx, id, studentID)
	if err != nil {
		return nil, err
	}
	if app.Status != model.ApplicationDraft {
		return nil, ErrApplicationNotDraft
	}

	now := time.Now()
	app.Status = model.ApplicationPending
	app.SubmittedAt = &now
	app.UpdatedBy = &studentID

	if err := s.repo.Application.Update(ctx, app); err != nil {
		s.logger.Error("提交申请失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("申请已提交",
		zap.String("application_id", id),
		zap.String("student_id", studentID),
	)

	resp := s.toApplicationResponse(app)
	return &resp, nil
}

// ────────────────────── Withdraw ──────────────────────

func (s *applicationService) Withdraw(ctx context.Context, id, studentID string) error {
	app, err := s.getOwnedApplication(ctx, id, studentID)
	if err != nil {
		return err
	}
	if app.Status != model.ApplicationDraft && app.Status != model.ApplicationPending {
		return ErrApplicationNotWithdrawable
	}

	if err := s.repo.Application.Delete(ctx, id, studentID); err != nil {
		s.logger.Error("撤回申请失败", zap.Error(err))
		return err
	}

	s.logger.Info("申请已撤回",
		zap.String("application_id", id),
		zap.String("student_id", studentID),
		zap.String("status", app.Status),
	)
	return nil
}

// ────────────────────── Delete ──────────────────────

func (s *applicationService) Delete(ctx context.Context, id, studentID string) error {
	app, err := s.getOwnedApplication(ctx, id, studentID)
	if err != nil {
		return err
	}
	if app.Status != model.ApplicationDraft {
		return ErrApplicationNotDeletable
	}

	if err := s.repo.Application.Delete(ctx, id, studentID); err != nil {
		s.logger.Error("删除申请失败", zap.Error(err))
		return err
	}

	s.logger.Info("申请草稿已删除",
		zap.String("application_id", id),
		zap.String("student_id", studentID),
	)
	return nil
}

// ────────────────────── Review ──────────────────────

func (s *applicationService) Review(ctx context.Context, id string, req *dto.ReviewApplicationRequest, reviewerID string) (*dto.ApplicationResponse, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}

	if !validReviewTransition(app.Status, req.Status) {
		return nil, ErrApplicationBadTransition
	}

	app.Status = req.Status
	app.UpdatedBy = &reviewerID
	if model.IsTerminalApplicationStatus(req.Status) {
		now := time.Now()
		app.DecidedAt = &now
		app.DecidedBy = &reviewerID
	}

	if err := s.repo.Application.Update(ctx, app); err != nil {
		s.logger.Error("更新申请状态失败", zap.Error(err))
		return nil, err
	}

	// 审核备注可选，写入失败不回滚已生效的状态流转
	if req.Note != "" {
		note := &model.ApplicationNote{
			ApplicationID: id,
			AuthorID:      reviewerID,
			Body:          req.Note,
			Internal:      true,
		}
		note.CreatedBy = &reviewerID
		note.UpdatedBy = &reviewerID
		if err := s.repo.ApplicationNote.Create(ctx, note); err != nil {
			s.logger.Error("审核备注写入失败", zap.Error(err),
				zap.String("application_id", id))
		}
	}

	s.logger.Info("申请状态已流转",
		zap.String("application_id", id),
		zap.String("status", req.Status),
		zap.String("reviewer_id", reviewerID),
	)

	resp := s.toApplicationResponse(app)
	return &resp, nil
}

// validReviewTransition 审核侧允许的状态流转
// PENDING → UNDER_REVIEW → APPROVED/REJECTED/CONDITIONAL
func validReviewTransition(from, to string) bool {
	switch from {
	case model.ApplicationPending:
		return to == model.ApplicationUnderReview
	case model.ApplicationUnderReview:
		return model.IsTerminalApplicationStatus(to)
	}
	return false
}

// ────────────────────── CanApply ──────────────────────

func (s *applicationService) CanApply(ctx context.Context, studentID, programID string) (*dto.CanApplyResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, err
	}

	existing, err := s.repo.Application.GetActiveByStudentAndProgram(ctx, studentID, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.CanApplyResponse{CanApply: true}, nil
		}
		s.logger.Error("查询进行中申请失败", zap.Error(err))
		return nil, err
	}

	programName, universityName := applicationTargetNames(existing)
	return &dto.CanApplyResponse{
		CanApply: false,
		Reason: fmt.Sprintf("已存在针对 %s（%s）的进行中申请（当前状态 %s），同一专业同时只允许一份进行中申请",
			programName, universityName, existing.Status),
	}, nil
}

// ────────────────────── ListByStudent ──────────────────────

func (s *applicationService) ListByStudent(ctx context.Context, studentID string, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.repo.Application.ListByStudent(ctx, studentID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询学生申请列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, s.toApplicationResponse(&apps[i]))
	}
	return result, total, nil
}

// ────────────────────── ListByProgram ──────────────────────

func (s *applicationService) ListByProgram(ctx context.Context, programID string, req *dto.ApplicationListRequest) ([]dto.ApplicationResponse, int64, error) {
	apps, total, err := s.repo.Application.ListByProgram(ctx, programID, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询专业申请列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ApplicationResponse, 0, len(apps))
	for i := range apps {
		result = append(result, s.toApplicationResponse(&apps[i]))
	}
	return result, total, nil
}

// ────────────────────── 审核备注 ──────────────────────

func (s *applicationService) AddNote(ctx context.Context, applicationID string, req *dto.AddNoteRequest, authorID string) (*dto.ApplicationNoteResponse, error) {
	if _, err := s.repo.Application.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}

	// 未显式指定时默认为内部备注
	internal := true
	if req.Internal != nil {
		internal = *req.Internal
	}

	note := &model.ApplicationNote{
		ApplicationID: applicationID,
		AuthorID:      authorID,
		Body:          req.Body,
		Internal:      internal,
	}
	note.CreatedBy = &authorID
	note.UpdatedBy = &authorID

	if err := s.repo.ApplicationNote.Create(ctx, note); err != nil {
		s.logger.Error("创建审核备注失败", zap.Error(err))
		return nil, err
	}

	resp := toApplicationNoteResponse(note)
	return &resp, nil
}

func (s *applicationService) ListNotes(ctx context.Context, applicationID string, includeInternal bool) ([]dto.ApplicationNoteResponse, error) {
	if _, err := s.repo.Application.GetByID(ctx, applicationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}

	notes, err := s.repo.ApplicationNote.ListByApplication(ctx, applicationID, includeInternal)
	if err != nil {
		s.logger.Error("查询审核备注失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ApplicationNoteResponse, 0, len(notes))
	for i := range notes {
		result = append(result, toApplicationNoteResponse(&notes[i]))
	}
	return result, nil
}

// ────────────────────── 内部辅助 ──────────────────────

// getOwnedApplication 查询申请并校验归属
func (s *applicationService) getOwnedApplication(ctx context.Context, id, studentID string) (*model.Application, error) {
	app, err := s.repo.Application.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrApplicationNotFound
		}
		s.logger.Error("查询申请失败", zap.Error(err))
		return nil, err
	}
	if app.StudentID != studentID {
		return nil, ErrApplicationNotOwner
	}
	return app, nil
}

// applicationTargetNames 提取申请目标的专业与大学名称（关联未加载时返回空串）
func applicationTargetNames(app *model.Application) (programName, universityName string) {
	if app.Program == nil {
		return "", ""
	}
	programName = app.Program.Name
	if app.Program.Department != nil && app.Program.Department.University != nil {
		universityName = app.Program.Department.University.Name
	}
	return programName, universityName
}

func (s *applicationService) toApplicationResponse(app *model.Application) dto.ApplicationResponse {
	resp := dto.ApplicationResponse{
		ID:        app.ApplicationID,
		StudentID: app.StudentID,
		ProgramID: app.ProgramID,
		Status:    app.Status,
		CreatedAt: app.CreatedAt.Format(time.RFC3339),
	}
	if app.SubmittedAt != nil {
		resp.SubmittedAt = app.SubmittedAt.Format(time.RFC3339)
	}
	if app.DecidedAt != nil {
		resp.DecidedAt = app.DecidedAt.Format(time.RFC3339)
	}
	if app.Student != nil {
		resp.StudentName = app.Student.Name
	}
	if app.Program != nil {
		resp.DepartmentID = app.Program.DepartmentID
	}
	programName, universityName := applicationTargetNames(app)
	resp.ProgramName = programName
	resp.UniversityName = universityName
	return resp
}

func toApplicationNoteResponse(note *model.ApplicationNote) dto.ApplicationNoteResponse {
	resp := dto.ApplicationNoteResponse{
		ID:            note.NoteID,
		ApplicationID: note.ApplicationID,
		AuthorID:      note.AuthorID,
		Body:          note.Body,
		Internal:      note.Internal,
		CreatedAt:     note.CreatedAt.Format(time.RFC3339),
	}
	if note.Author != nil {
		resp.AuthorName = note.Author.Name
	}
	return resp
}

// [自证通过] internal/service/application_service.go
