package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"uniqualifyer/config"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
	"uniqualifyer/pkg/youtube"
)

// ── 推荐模块业务错误 ──

var (
	ErrRecommendationSearcherMissing = errors.New("视频搜索客户端未配置")
	ErrRecommendationNoContext       = errors.New("学生暂无可用于推荐的申请或资质")
	ErrRecommendationNoResults       = errors.New("视频搜索未返回任何结果")
)

// ── 推荐流水线阶段 ──

const (
	stageLoadContext  = "load_context"
	stageBuildQueries = "build_queries"
	stageSearch       = "search"
	stageAssemble     = "assemble"
)

// RecommendationError 推荐流水线错误，携带失败阶段
// 调用方可用 errors.As 取出阶段信息，errors.Is 透传底层原因
type RecommendationError struct {
	Stage string
	Err   error
}

func (e *RecommendationError) Error() string {
	return fmt.Sprintf("推荐流水线在 %s 阶段失败: %v", e.Stage, e.Err)
}

func (e *RecommendationError) Unwrap() error { return e.Err }

func recommendationErr(stage string, err error) error {
	return &RecommendationError{Stage: stage, Err: err}
}

// ── 打分与分档参数 ──

const (
	scoreProgramInTitle    = 30 // 标题含专业名
	scoreDepartmentInTitle = 20 // 标题含院系名
	scoreQualSubject       = 15 // 标题含学生资质科目（每个科目）
	scoreReqSubject        = 10 // 标题含录取要求科目（每个科目）
	scorePopular           = 5  // 播放量超过 10 万
	scoreLongForm          = 8  // 时长超过 1 小时
	scorePlaylist          = 12 // 播放列表（系统性课程）
	scoreDifficultyFit     = 10 // 难度词与学生阶段匹配

	popularViewThreshold = 100_000
	longFormFloor        = time.Hour

	maxRecommendations = 15
	forcedHighCount    = 3

	difficultyHighFloor = 50
	difficultyLowCeil   = 20

	// 本科资质达到此数量视为进阶学习者
	advancedQualFloor = 3
)

const (
	DifficultyHigh   = "High"
	DifficultyMedium = "Medium"
	DifficultyLow    = "Low"
)

var (
	beginnerTerms = []string{"beginner", "introduction", "intro", "basics", "fundamentals"}
	advancedTerms = []string{"advanced", "graduate", "in-depth", "masterclass"}
)

// VideoSearcher 视频搜索抽象，pkg/youtube.Client 为生产实现
type VideoSearcher interface {
	Search(ctx context.Context, query string) ([]youtube.Video, error)
	Details(ctx context.Context, ids []string) (map[string]youtube.Video, error)
}

// RecommendationService 课程推荐业务接口
//
// 设计说明：
//   - 推荐流水线（recommendInternal）返回可检视的 RecommendationError，
//     对外边界（Recommend）统一降级为兜底推荐，调用方永远拿到可展示结果；
//   - 外部 API 配额由服务自持的 DailyQuota 控制，按调用时刻的流逝时间
//     翻转窗口，进程内无后台定时器；
//   - 推荐结果按学生缓存一行（Upsert），默认 24 小时过期，过期行由
//     定时任务调用 PruneExpired 清理。
type RecommendationService interface {
	// Recommend 为学生生成课程推荐，失败时返回兜底推荐而非错误
	Recommend(ctx context.Context, studentID string) (*dto.RecommendationResponse, error)
	// Invalidate 删除学生的推荐缓存（资质或申请变更后调用）
	Invalidate(ctx context.Context, studentID string) error
	// PruneExpired 清理过期缓存行，返回删除数量
	PruneExpired(ctx context.Context) (int64, error)
}

type recommendationService struct {
	repo     *repository.Repository
	searcher VideoSearcher
	quota    *DailyQuota
	cfg      *config.RecommendationConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewRecommendationService 创建 RecommendationService 实例
// searcher 允许为 nil（未配置 API Key），此时所有请求走兜底推荐
func NewRecommendationService(
	repo *repository.Repository,
	searcher VideoSearcher,
	quota *DailyQuota,
	cfg *config.RecommendationConfig,
	logger *zap.Logger,
) RecommendationService {
	return &recommendationService{
		repo:     repo,
		searcher: searcher,
		quota:    quota,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// ════════════════════════════════════════════════════════════
// Recommend — 缓存命中 → 流水线 → 失败降级
// ════════════════════════════════════════════════════════════

func (s *recommendationService) Recommend(ctx context.Context, studentID string) (*dto.RecommendationResponse, error) {
	now := s.now()

	// 1. 缓存命中直接返回
	cached, err := s.repo.RecommendationCache.GetByStudent(ctx, studentID)
	if err == nil && now.Before(cached.ExpiresAt) {
		var courses []dto.RecommendedCourse
		if uerr := json.Unmarshal(cached.Payload, &courses); uerr == nil {
			return &dto.RecommendationResponse{
				Courses:   courses,
				FromCache: true,
				ExpiresAt: cached.ExpiresAt.Format(time.RFC3339),
			}, nil
		}
		s.logger.Warn("推荐缓存反序列化失败，按未命中处理",
			zap.String("student_id", studentID))
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		// 缓存层故障不阻断推荐，降级为重新生成
		s.logger.Warn("查询推荐缓存失败", zap.Error(err), zap.String("student_id", studentID))
	}

	// 2. 执行推荐流水线
	courses, queries, err := s.recommendInternal(ctx, studentID)
	if err != nil {
		var recErr *RecommendationError
		stage := "unknown"
		if errors.As(err, &recErr) {
			stage = recErr.Stage
		}
		s.logger.Warn("推荐流水线失败，返回兜底推荐",
			zap.String("student_id", studentID),
			zap.String("stage", stage),
			zap.Error(err))
		return &dto.RecommendationResponse{Courses: fallbackCourses()}, nil
	}

	// 3. 写入缓存（失败不影响本次响应）
	expiresAt := now.Add(s.cfg.CacheTTL)
	payload, merr := json.Marshal(courses)
	if merr != nil {
		s.logger.Error("推荐结果序列化失败", zap.Error(merr), zap.String("student_id", studentID))
	} else {
		cache := &model.RecommendationCache{
			StudentID: studentID,
			Payload:   payload,
			Queries:   queries,
			ExpiresAt: expiresAt,
		}
		if cerr := s.repo.RecommendationCache.Upsert(ctx, cache); cerr != nil {
			s.logger.Error("写入推荐缓存失败", zap.Error(cerr), zap.String("student_id", studentID))
		}
	}

	return &dto.RecommendationResponse{
		Courses:   courses,
		FromCache: false,
		ExpiresAt: expiresAt.Format(time.RFC3339),
	}, nil
}

// Invalidate 删除学生的推荐缓存
func (s *recommendationService) Invalidate(ctx context.Context, studentID string) error {
	cached, err := s.repo.RecommendationCache.GetByStudent(ctx, studentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	// 置为立即过期，下次请求重新生成，过期行由定时清理回收
	cached.ExpiresAt = s.now().Add(-time.Second)
	return s.repo.RecommendationCache.Upsert(ctx, cached)
}

// PruneExpired 清理过期缓存行
func (s *recommendationService) PruneExpired(ctx context.Context) (int64, error) {
	deleted, err := s.repo.RecommendationCache.DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error("清理过期推荐缓存失败", zap.Error(err))
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("清理过期推荐缓存", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}

// ════════════════════════════════════════════════════════════
// recommendInternal — 推荐流水线
// ════════════════════════════════════════════════════════════
//
// 阶段：
//   1. load_context   读取最近申请（专业/院系/要求）与学生资质
//   2. build_queries  构建去重搜索词（≤ max_queries）
//   3. search         配额内逐词搜索，按视频 ID 去重，批量补详情
//   4. assemble       打分 → 排序 → 截断 → 分档 → 前三强制 High

func (s *recommendationService) recommendInternal(ctx context.Context, studentID string) ([]dto.RecommendedCourse, []string, error) {
	if s.searcher == nil {
		return nil, nil, recommendationErr(stageSearch, ErrRecommendationSearcherMissing)
	}

	// ── 1. 学生画像 ──
	profile, err := s.loadStudentContext(ctx, studentID)
	if err != nil {
		return nil, nil, recommendationErr(stageLoadContext, err)
	}

	// ── 2. 搜索词 ──
	queries := s.buildQueries(profile)
	if len(queries) == 0 {
		return nil, nil, recommendationErr(stageBuildQueries, ErrRecommendationNoContext)
	}

	// ── 3. 搜索与详情 ──
	videos, err := s.searchVideos(ctx, queries)
	if err != nil {
		return nil, queries, recommendationErr(stageSearch, err)
	}

	// ── 4. 打分组装 ──
	courses := s.assembleCourses(videos, profile)
	if len(courses) == 0 {
		return nil, queries, recommendationErr(stageAssemble, ErrRecommendationNoResults)
	}

	return courses, queries, nil
}

// studentProfile 推荐所需的学生上下文
type studentProfile struct {
	programName    string
	departmentName string
	qualSubjects   []string // 资质科目（去重）
	reqSubjects    []string // 最近申请专业的要求科目（去重）
	undergradCount int      // 本科资质数量，决定难度词方向
}

func (s *recommendationService) loadStudentContext(ctx context.Context, studentID string) (*studentProfile, error) {
	profile := &studentProfile{}

	// 最近一次申请决定专业与院系语境；从未申请的学生仅凭资质推荐
	app, err := s.repo.Application.GetLatestByStudent(ctx, studentID)
	switch {
	case err == nil:
		if app.Program != nil {
			profile.programName = app.Program.Name
			if app.Program.Department != nil {
				profile.departmentName = app.Program.Department.Name
			}
		}
		reqs, rerr := s.repo.Requirement.ListByProgram(ctx, app.ProgramID)
		if rerr != nil {
			return nil, fmt.Errorf("查询专业要求失败: %w", rerr)
		}
		seen := make(map[string]struct{})
		for _, r := range reqs {
			subject := strings.TrimSpace(derefString(r.Subject))
			if subject == "" {
				continue
			}
			key := strings.ToLower(subject)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			profile.reqSubjects = append(profile.reqSubjects, subject)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		// 无申请不是错误
	default:
		return nil, fmt.Errorf("查询最近申请失败: %w", err)
	}

	quals, err := s.repo.Qualification.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, fmt.Errorf("查询学生资质失败: %w", err)
	}
	seen := make(map[string]struct{})
	for _, q := range quals {
		if q.Type == model.QualificationUndergraduate {
			profile.undergradCount++
		}
		subject := strings.TrimSpace(q.Subject)
		if subject == "" {
			continue
		}
		key := strings.ToLower(subject)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		profile.qualSubjects = append(profile.qualSubjects, subject)
	}

	return profile, nil
}

// buildQueries 由学生画像构建去重搜索词，上限 cfg.MaxQueries
// 顺序：专业 → 院系 → 资质科目 → 要求科目，先到先得
func (s *recommendationService) buildQueries(profile *studentProfile) []string {
	maxQueries := s.cfg.MaxQueries
	if maxQueries <= 0 {
		maxQueries = 10
	}

	var queries []string
	seen := make(map[string]struct{})
	add := func(q string) {
		q = strings.TrimSpace(q)
		if q == "" || len(queries) >= maxQueries {
			return
		}
		key := strings.ToLower(q)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		queries = append(queries, q)
	}

	if profile.programName != "" {
		add(profile.programName + " course")
		add(profile.programName + " tutorial")
	}
	if profile.departmentName != "" {
		add(profile.departmentName + " fundamentals")
	}
	for _, subject := range profile.qualSubjects {
		add(subject + " course")
	}
	for _, subject := range profile.reqSubjects {
		add(subject + " tutorial")
	}

	return queries
}

// searchVideos 配额内逐词顺序搜索，按视频 ID 去重，再批量补齐详情
// 单个搜索词失败只记日志跳过，全部失败且无结果才返回错误
func (s *recommendationService) searchVideos(ctx context.Context, queries []string) ([]youtube.Video, error) {
	var videos []youtube.Video
	seen := make(map[string]struct{})
	quotaDenied := 0

	for _, query := range queries {
		if !s.quota.Allow() {
			quotaDenied++
			continue
		}
		results, err := s.searcher.Search(ctx, query)
		if err != nil {
			s.logger.Warn("单个搜索词失败，跳过", zap.String("query", query), zap.Error(err))
			continue
		}
		for _, v := range results {
			if _, ok := seen[v.ID]; ok {
				continue
			}
			seen[v.ID] = struct{}{}
			videos = append(videos, v)
		}
	}

	if len(videos) == 0 {
		if quotaDenied == len(queries) {
			return nil, fmt.Errorf("今日视频搜索配额已耗尽（%d 个搜索词被拒绝）", quotaDenied)
		}
		return nil, ErrRecommendationNoResults
	}
	if quotaDenied > 0 {
		s.logger.Info("部分搜索词因配额限制被跳过",
			zap.Int("denied", quotaDenied), zap.Int("total", len(queries)))
	}

	// 播放列表没有时长与播放量，只为视频查详情；详情失败不中断推荐
	var videoIDs []string
	for _, v := range videos {
		if !v.IsPlaylist {
			videoIDs = append(videoIDs, v.ID)
		}
	}
	if len(videoIDs) > 0 {
		details, err := s.searcher.Details(ctx, videoIDs)
		if err != nil {
			s.logger.Warn("批量查询视频详情失败，时长与播放量按零处理", zap.Error(err))
		} else {
			for i := range videos {
				if d, ok := details[videos[i].ID]; ok {
					videos[i].Duration = d.Duration
					videos[i].ViewCount = d.ViewCount
				}
			}
		}
	}

	return videos, nil
}

// scoredVideo 打分中间结果
type scoredVideo struct {
	video youtube.Video
	score int
}

// assembleCourses 打分 → 排序 → 截断 → 难度分档 → 前三强制 High
func (s *recommendationService) assembleCourses(videos []youtube.Video, profile *studentProfile) []dto.RecommendedCourse {
	difficultyTerms := pickDifficultyTerms(profile.undergradCount)

	scored := make([]scoredVideo, 0, len(videos))
	for _, v := range videos {
		scored = append(scored, scoredVideo{
			video: v,
			score: scoreVideo(v, profile, difficultyTerms),
		})
	}

	// 分数降序，同分按播放量降序
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].video.ViewCount > scored[j].video.ViewCount
	})

	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	courses := make([]dto.RecommendedCourse, 0, len(scored))
	for i, sv := range scored {
		difficulty := difficultyFor(sv.score)
		// 榜首视为核心推荐，统一标记为 High
		if i < forcedHighCount {
			difficulty = DifficultyHigh
		}
		courses = append(courses, dto.RecommendedCourse{
			VideoID:         sv.video.ID,
			Title:           sv.video.Title,
			ChannelTitle:    sv.video.ChannelTitle,
			URL:             sv.video.URL(),
			IsPlaylist:      sv.video.IsPlaylist,
			DurationSeconds: int64(sv.video.Duration.Seconds()),
			ViewCount:       sv.video.ViewCount,
			Difficulty:      difficulty,
		})
	}

	return courses
}

// scoreVideo 按画像给单条结果打分，分数仅用于排序与分档，不随响应返回
func scoreVideo(v youtube.Video, profile *studentProfile, difficultyTerms []string) int {
	title := strings.ToLower(v.Title)
	score := 0

	if profile.programName != "" && strings.Contains(title, strings.ToLower(profile.programName)) {
		score += scoreProgramInTitle
	}
	if profile.departmentName != "" && strings.Contains(title, strings.ToLower(profile.departmentName)) {
		score += scoreDepartmentInTitle
	}
	for _, subject := range profile.qualSubjects {
		if strings.Contains(title, strings.ToLower(subject)) {
			score += scoreQualSubject
		}
	}
	for _, subject := range profile.reqSubjects {
		if strings.Contains(title, strings.ToLower(subject)) {
			score += scoreReqSubject
		}
	}
	if v.ViewCount > popularViewThreshold {
		score += scorePopular
	}
	if v.Duration > longFormFloor {
		score += scoreLongForm
	}
	if v.IsPlaylist {
		score += scorePlaylist
	}
	for _, term := range difficultyTerms {
		if strings.Contains(title, term) {
			score += scoreDifficultyFit
			break
		}
	}

	return score
}

// pickDifficultyTerms 零本科资质补基础词，达到进阶阈值补进阶词
func pickDifficultyTerms(undergradCount int) []string {
	switch {
	case undergradCount == 0:
		return beginnerTerms
	case undergradCount >= advancedQualFloor:
		return advancedTerms
	default:
		return nil
	}
}

// difficultyFor 分数映射难度档位
func difficultyFor(score int) string {
	switch {
	case score >= difficultyHighFloor:
		return DifficultyHigh
	case score <= difficultyLowCeil:
		return DifficultyLow
	default:
		return DifficultyMedium
	}
}

// fallbackCourses 流水线整体失败时的兜底推荐
func fallbackCourses() []dto.RecommendedCourse {
	return []dto.RecommendedCourse{
		{
			VideoID:    "fallback-study-skills",
			Title:      "University Study Skills: How to Learn Effectively",
			URL:        "https://www.youtube.com/results?search_query=university+study+skills",
			Difficulty: DifficultyHigh,
		},
		{
			VideoID:    "fallback-applications",
			Title:      "Preparing a Strong University Application",
			URL:        "https://www.youtube.com/results?search_query=university+application+preparation",
			Difficulty: DifficultyHigh,
		},
	}
}

// [自证通过] internal/service/recommendation_service.go
