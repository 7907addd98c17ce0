package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"uniqualifyer/config"
	"uniqualifyer/internal/dto"
	"uniqualifyer/internal/model"
	"uniqualifyer/pkg/youtube"
)

// ── Mock VideoSearcher ──

type mockSearcher struct {
	results     map[string][]youtube.Video // 按搜索词返回
	defaults    []youtube.Video            // 未命中 results 时返回
	details     map[string]youtube.Video
	searchErr   error
	detailsErr  error
	searchCalls int
	detailCalls int
	queries     []string
	detailIDs   []string
}

func (m *mockSearcher) Search(_ context.Context, query string) ([]youtube.Video, error) {
	m.searchCalls++
	m.queries = append(m.queries, query)
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if vs, ok := m.results[query]; ok {
		return vs, nil
	}
	return m.defaults, nil
}

func (m *mockSearcher) Details(_ context.Context, ids []string) (map[string]youtube.Video, error) {
	m.detailCalls++
	m.detailIDs = append(m.detailIDs, ids...)
	if m.detailsErr != nil {
		return nil, m.detailsErr
	}
	out := make(map[string]youtube.Video, len(ids))
	for _, id := range ids {
		if v, ok := m.details[id]; ok {
			out[id] = v
		}
	}
	return out, nil
}

// ── 测试脚手架 ──

func setupTestRecommendationService(searcher VideoSearcher, quotaLimit int) (RecommendationService, *mockRepos) {
	repo, mocks := newMockRepository()
	cfg := &config.RecommendationConfig{
		MaxRequestsPerDay: quotaLimit,
		CacheTTL:          24 * time.Hour,
		MaxQueries:        10,
	}
	svc := NewRecommendationService(repo, searcher, NewDailyQuota(quotaLimit), cfg, zap.NewNop())
	return svc, mocks
}

// seedRecommendationStudent 构造带申请、专业、院系、要求与资质的学生
func seedRecommendationStudent(mocks *mockRepos, studentID string) {
	ctx := context.Background()
	dept := &model.Department{DepartmentID: "dept-1", UniversityID: "uni-1", Name: "Engineering"}
	mocks.Department.Create(ctx, dept)
	program := &model.Program{ProgramID: "prog-1", DepartmentID: "dept-1", Name: "Computer Science", Degree: model.DegreeBachelor}
	mocks.Program.Create(ctx, program)
	mocks.Requirement.Create(ctx, &model.ProgramRequirement{
		ProgramID: "prog-1",
		Type:      model.RequirementGrade,
		Subject:   strPtr("Mathematics"),
		MinGrade:  strPtr("B"),
	})
	submitted := time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)
	mocks.Application.Create(ctx, &model.Application{
		StudentID:   studentID,
		ProgramID:   "prog-1",
		Status:      model.ApplicationPending,
		SubmittedAt: &submitted,
	})
	mocks.Qualification.Create(ctx, &model.Qualification{
		StudentID: studentID,
		Type:      model.QualificationHighSchool,
		Subject:   "Physics",
		Grade:     "A",
	})
}

// ── 缓存行为 ──

func TestRecommendCacheHitSkipsSearch(t *testing.T) {
	searcher := &mockSearcher{}
	svc, mocks := setupTestRecommendationService(searcher, 90)

	cachedCourses := []dto.RecommendedCourse{
		{VideoID: "v1", Title: "Cached Course", URL: "https://www.youtube.com/watch?v=v1", Difficulty: DifficultyHigh},
	}
	payload, _ := json.Marshal(cachedCourses)
	mocks.RecommendationCache.Upsert(context.Background(), &model.RecommendationCache{
		StudentID: "stu-1",
		Payload:   payload,
		Queries:   []string{"cached query"},
		ExpiresAt: time.Now().Add(time.Hour),
	})

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Recommend 应成功: %v", err)
	}
	if !resp.FromCache {
		t.Error("缓存未过期时应命中缓存")
	}
	if len(resp.Courses) != 1 || resp.Courses[0].VideoID != "v1" {
		t.Errorf("应返回缓存内容，实际=%+v", resp.Courses)
	}
	if searcher.searchCalls != 0 {
		t.Errorf("缓存命中不应触发搜索，实际调用 %d 次", searcher.searchCalls)
	}
}

func TestRecommendExpiredCacheRegenerates(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{{ID: "fresh-1", Title: "Computer Science course"}},
	}
	svc, mocks := setupTestRecommendationService(searcher, 90)
	seedRecommendationStudent(mocks, "stu-1")

	payload, _ := json.Marshal([]dto.RecommendedCourse{{VideoID: "stale", Title: "Stale"}})
	mocks.RecommendationCache.Upsert(context.Background(), &model.RecommendationCache{
		StudentID: "stu-1",
		Payload:   payload,
		Queries:   []string{"old"},
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Recommend 应成功: %v", err)
	}
	if resp.FromCache {
		t.Error("缓存过期后不应命中")
	}
	if searcher.searchCalls == 0 {
		t.Error("缓存过期后应重新搜索")
	}
	for _, c := range resp.Courses {
		if c.VideoID == "stale" {
			t.Error("过期缓存内容不应出现在新结果中")
		}
	}
}

func TestRecommendWritesCacheAndSecondCallHits(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{
			{ID: "vid-a", Title: "Computer Science full course"},
			{ID: "vid-b", Title: "Physics basics"},
		},
		details: map[string]youtube.Video{
			"vid-a": {ID: "vid-a", Duration: 2 * time.Hour, ViewCount: 500_000},
		},
	}
	svc, mocks := setupTestRecommendationService(searcher, 90)
	seedRecommendationStudent(mocks, "stu-1")

	first, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("首次 Recommend 应成功: %v", err)
	}
	if first.FromCache {
		t.Error("首次请求不应命中缓存")
	}
	if first.ExpiresAt == "" {
		t.Error("新结果应携带过期时间")
	}
	cache, ok := mocks.RecommendationCache.caches["stu-1"]
	if !ok {
		t.Fatal("首次请求后应写入缓存")
	}
	if len(cache.Queries) == 0 {
		t.Error("缓存应记录本次使用的搜索词")
	}

	callsAfterFirst := searcher.searchCalls
	second, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("二次 Recommend 应成功: %v", err)
	}
	if !second.FromCache {
		t.Error("TTL 内二次请求应命中缓存")
	}
	if searcher.searchCalls != callsAfterFirst {
		t.Error("缓存命中不应再次搜索")
	}
	if len(second.Courses) != len(first.Courses) {
		t.Errorf("缓存结果应与首次一致，期望 %d 条，实际 %d 条",
			len(first.Courses), len(second.Courses))
	}
}

func TestRecommendInvalidate(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{{ID: "vid-a", Title: "Computer Science course"}},
	}
	svc, mocks := setupTestRecommendationService(searcher, 90)
	seedRecommendationStudent(mocks, "stu-1")

	if _, err := svc.Recommend(context.Background(), "stu-1"); err != nil {
		t.Fatalf("Recommend 应成功: %v", err)
	}
	if err := svc.Invalidate(context.Background(), "stu-1"); err != nil {
		t.Fatalf("Invalidate 应成功: %v", err)
	}

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("失效后 Recommend 应成功: %v", err)
	}
	if resp.FromCache {
		t.Error("缓存失效后不应命中")
	}

	// 对不存在缓存的学生失效应为幂等空操作
	if err := svc.Invalidate(context.Background(), "stu-none"); err != nil {
		t.Errorf("无缓存学生 Invalidate 应无错误: %v", err)
	}
}

func TestPruneExpired(t *testing.T) {
	svc, mocks := setupTestRecommendationService(&mockSearcher{}, 90)
	ctx := context.Background()

	payload, _ := json.Marshal([]dto.RecommendedCourse{})
	mocks.RecommendationCache.Upsert(ctx, &model.RecommendationCache{
		StudentID: "stu-old", Payload: payload, Queries: []string{"q"},
		ExpiresAt: time.Now().Add(-time.Hour),
	})
	mocks.RecommendationCache.Upsert(ctx, &model.RecommendationCache{
		StudentID: "stu-new", Payload: payload, Queries: []string{"q"},
		ExpiresAt: time.Now().Add(time.Hour),
	})

	deleted, err := svc.PruneExpired(ctx)
	if err != nil {
		t.Fatalf("PruneExpired 应成功: %v", err)
	}
	if deleted != 1 {
		t.Errorf("期望清理 1 行，实际=%d", deleted)
	}
	if _, ok := mocks.RecommendationCache.caches["stu-new"]; !ok {
		t.Error("未过期缓存不应被清理")
	}
}

// ── 配额行为 ──

func TestRecommendQuotaCapsSearchCalls(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{{ID: "vid-a", Title: "Computer Science course"}},
	}
	// 画像会产出 4 个以上搜索词，配额只放行 2 次
	svc, mocks := setupTestRecommendationService(searcher, 2)
	seedRecommendationStudent(mocks, "stu-1")

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Recommend 应成功: %v", err)
	}
	if searcher.searchCalls != 2 {
		t.Errorf("配额为 2 时应只执行 2 次搜索，实际=%d", searcher.searchCalls)
	}
	if len(resp.Courses) == 0 {
		t.Error("配额内的搜索结果仍应产出推荐")
	}
}

func TestRecommendQuotaExhaustedFallsBack(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{{ID: "vid-a", Title: "Computer Science course"}},
	}
	svc, mocks := setupTestRecommendationService(searcher, 0)
	seedRecommendationStudent(mocks, "stu-1")

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("配额耗尽时应降级而非报错: %v", err)
	}
	if searcher.searchCalls != 0 {
		t.Errorf("配额为 0 不应执行任何搜索，实际=%d", searcher.searchCalls)
	}
	assertFallback(t, resp)
	if _, ok := mocks.RecommendationCache.caches["stu-1"]; ok {
		t.Error("兜底推荐不应写入缓存")
	}
}

// ── 降级行为 ──

func assertFallback(t *testing.T, resp *dto.RecommendationResponse) {
	t.Helper()
	if resp.FromCache {
		t.Error("兜底推荐不应标记为缓存命中")
	}
	if len(resp.Courses) != 2 {
		t.Fatalf("兜底推荐应固定 2 条，实际=%d", len(resp.Courses))
	}
	for _, c := range resp.Courses {
		if c.Difficulty != DifficultyHigh {
			t.Errorf("兜底推荐难度应为 High，实际=%s", c.Difficulty)
		}
		if c.URL == "" {
			t.Error("兜底推荐应携带可访问链接")
		}
	}
}

func TestRecommendSearcherMissingFallsBack(t *testing.T) {
	svc, mocks := setupTestRecommendationService(nil, 90)
	seedRecommendationStudent(mocks, "stu-1")

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("未配置搜索客户端应降级而非报错: %v", err)
	}
	assertFallback(t, resp)
}

func TestRecommendAllSearchesFailFallsBack(t *testing.T) {
	searcher := &mockSearcher{searchErr: errors.New("quota exceeded")}
	svc, mocks := setupTestRecommendationService(searcher, 90)
	seedRecommendationStudent(mocks, "stu-1")

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("搜索全部失败应降级而非报错: %v", err)
	}
	assertFallback(t, resp)
}

func TestRecommendNoContextFallsBack(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{{ID: "vid-a", Title: "anything"}},
	}
	svc, _ := setupTestRecommendationService(searcher, 90)

	// 无申请也无资质的学生没有任何搜索依据
	resp, err := svc.Recommend(context.Background(), "stu-empty")
	if err != nil {
		t.Fatalf("无画像学生应降级而非报错: %v", err)
	}
	if searcher.searchCalls != 0 {
		t.Error("无搜索词时不应调用搜索")
	}
	assertFallback(t, resp)
}

func TestRecommendInternalErrorInspectable(t *testing.T) {
	svc, mocks := setupTestRecommendationService(nil, 90)
	seedRecommendationStudent(mocks, "stu-1")

	rs := svc.(*recommendationService)
	_, _, err := rs.recommendInternal(context.Background(), "stu-1")
	if err == nil {
		t.Fatal("搜索客户端缺失时流水线应返回错误")
	}

	var recErr *RecommendationError
	if !errors.As(err, &recErr) {
		t.Fatalf("流水线错误应为 RecommendationError，实际=%T", err)
	}
	if recErr.Stage != stageSearch {
		t.Errorf("期望失败阶段 %s，实际=%s", stageSearch, recErr.Stage)
	}
	if !errors.Is(err, ErrRecommendationSearcherMissing) {
		t.Error("底层原因应可通过 errors.Is 取出")
	}
}

// ── 搜索词构建 ──

func TestBuildQueriesDedupAndCap(t *testing.T) {
	svc, _ := setupTestRecommendationService(&mockSearcher{}, 90)
	rs := svc.(*recommendationService)

	profile := &studentProfile{
		programName:    "Computer Science",
		departmentName: "Engineering",
		// "computer science" 资质科目会与专业搜索词去重
		qualSubjects: []string{"Computer Science", "Physics", "Chemistry", "Biology", "History", "Geography", "Art", "Music", "Economics"},
		reqSubjects:  []string{"Mathematics"},
	}
	queries := rs.buildQueries(profile)

	if len(queries) > 10 {
		t.Errorf("搜索词不应超过 10 个，实际=%d", len(queries))
	}
	seen := make(map[string]bool)
	for _, q := range queries {
		key := q
		if seen[key] {
			t.Errorf("搜索词重复: %s", q)
		}
		seen[key] = true
	}
	if queries[0] != "Computer Science course" {
		t.Errorf("专业搜索词应排在最前，实际=%s", queries[0])
	}
}

func TestSearchVideosDedupByID(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{
			{ID: "dup", Title: "Same video"},
			{ID: "other", Title: "Other video"},
		},
	}
	svc, mocks := setupTestRecommendationService(searcher, 90)
	seedRecommendationStudent(mocks, "stu-1")

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Recommend 应成功: %v", err)
	}
	counts := make(map[string]int)
	for _, c := range resp.Courses {
		counts[c.VideoID]++
	}
	if counts["dup"] != 1 {
		t.Errorf("同一视频 ID 多次命中应只保留一条，实际=%d", counts["dup"])
	}
}

func TestSearchVideosDetailsOnlyForVideos(t *testing.T) {
	searcher := &mockSearcher{
		defaults: []youtube.Video{
			{ID: "vid-1", Title: "Computer Science lecture"},
			{ID: "pl-1", Title: "Computer Science playlist", IsPlaylist: true},
		},
		details: map[string]youtube.Video{
			"vid-1": {ID: "vid-1", Duration: 90 * time.Minute, ViewCount: 200_000},
		},
	}
	svc, mocks := setupTestRecommendationService(searcher, 90)
	seedRecommendationStudent(mocks, "stu-1")

	resp, err := svc.Recommend(context.Background(), "stu-1")
	if err != nil {
		t.Fatalf("Recommend 应成功: %v", err)
	}
	for _, id := range searcher.detailIDs {
		if id == "pl-1" {
			t.Error("播放列表 ID 不应出现在详情查询中")
		}
	}
	for _, c := range resp.Courses {
		if c.VideoID == "vid-1" {
			if c.DurationSeconds != int64((90 * time.Minute).Seconds()) {
				t.Errorf("详情时长应写回结果，实际=%d 秒", c.DurationSeconds)
			}
			if c.ViewCount != 200_000 {
				t.Errorf("详情播放量应写回结果，实际=%d", c.ViewCount)
			}
		}
	}
}

// ── 打分与分档 ──

func TestScoreVideoBonuses(t *testing.T) {
	profile := &studentProfile{
		programName:    "Computer Science",
		departmentName: "Engineering",
		qualSubjects:   []string{"Physics"},
		reqSubjects:    []string{"Mathematics"},
	}

	tests := []struct {
		name  string
		video youtube.Video
		terms []string
		want  int
	}{
		{
			name:  "标题含专业名",
			video: youtube.Video{Title: "Computer Science crash course"},
			want:  scoreProgramInTitle,
		},
		{
			name:  "标题含院系名",
			video: youtube.Video{Title: "Engineering mindset"},
			want:  scoreDepartmentInTitle,
		},
		{
			name:  "资质与要求科目各计一次",
			video: youtube.Video{Title: "Physics and Mathematics review"},
			want:  scoreQualSubject + scoreReqSubject,
		},
		{
			name:  "高播放量",
			video: youtube.Video{Title: "unrelated", ViewCount: 100_001},
			want:  scorePopular,
		},
		{
			name:  "长视频",
			video: youtube.Video{Title: "unrelated", Duration: 61 * time.Minute},
			want:  scoreLongForm,
		},
		{
			name:  "播放列表",
			video: youtube.Video{Title: "unrelated", IsPlaylist: true},
			want:  scorePlaylist,
		},
		{
			name:  "难度词只计一次",
			video: youtube.Video{Title: "beginner basics walkthrough"},
			terms: beginnerTerms,
			want:  scoreDifficultyFit,
		},
		{
			name: "组合加分",
			video: youtube.Video{
				Title:      "Computer Science Physics playlist",
				IsPlaylist: true,
				ViewCount:  500_000,
			},
			want: scoreProgramInTitle + scoreQualSubject + scorePlaylist + scorePopular,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scoreVideo(tt.video, profile, tt.terms); got != tt.want {
				t.Errorf("期望分数 %d，实际=%d", tt.want, got)
			}
		})
	}
}

func TestAssembleCoursesOrderingAndDifficulty(t *testing.T) {
	svc, _ := setupTestRecommendationService(&mockSearcher{}, 90)
	rs := svc.(*recommendationService)

	profile := &studentProfile{programName: "Computer Science"}
	videos := []youtube.Video{
		// 0 分
		{ID: "low", Title: "unrelated clip", ViewCount: 10},
		// 30 分（Medium 区间）
		{ID: "mid", Title: "Computer Science talk", ViewCount: 50},
		// 30+12+5=47（Medium），播放量高于 mid
		{ID: "mid-popular", Title: "Computer Science series", IsPlaylist: true, ViewCount: 900_000},
		// 30+12+5+8=55（High）
		{ID: "top", Title: "Computer Science complete playlist", IsPlaylist: true, ViewCount: 2_000_000, Duration: 3 * time.Hour},
	}

	courses := rs.assembleCourses(videos, profile)
	if len(courses) != 4 {
		t.Fatalf("期望 4 条推荐，实际=%d", len(courses))
	}

	wantOrder := []string{"top", "mid-popular", "mid", "low"}
	for i, want := range wantOrder {
		if courses[i].VideoID != want {
			t.Errorf("第 %d 位期望 %s，实际=%s", i+1, want, courses[i].VideoID)
		}
	}

	// 前三强制 High，第四条按分数分档（0 分 → Low）
	for i := 0; i < 3; i++ {
		if courses[i].Difficulty != DifficultyHigh {
			t.Errorf("前三条推荐应为 High，第 %d 条=%s", i+1, courses[i].Difficulty)
		}
	}
	if courses[3].Difficulty != DifficultyLow {
		t.Errorf("低分条目应为 Low，实际=%s", courses[3].Difficulty)
	}
}

func TestAssembleCoursesTruncatesToLimit(t *testing.T) {
	svc, _ := setupTestRecommendationService(&mockSearcher{}, 90)
	rs := svc.(*recommendationService)

	videos := make([]youtube.Video, 0, 20)
	for i := 0; i < 20; i++ {
		videos = append(videos, youtube.Video{
			ID:        "vid-" + string(rune('a'+i)),
			Title:     "generic video",
			ViewCount: uint64(1000 - i),
		})
	}

	courses := rs.assembleCourses(videos, &studentProfile{})
	if len(courses) != maxRecommendations {
		t.Errorf("推荐应截断为 %d 条，实际=%d", maxRecommendations, len(courses))
	}
}

func TestDifficultyFor(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{60, DifficultyHigh},
		{50, DifficultyHigh},
		{49, DifficultyMedium},
		{21, DifficultyMedium},
		{20, DifficultyLow},
		{0, DifficultyLow},
	}
	for _, tt := range tests {
		if got := difficultyFor(tt.score); got != tt.want {
			t.Errorf("分数 %d 期望 %s，实际=%s", tt.score, tt.want, got)
		}
	}
}

func TestPickDifficultyTerms(t *testing.T) {
	if got := pickDifficultyTerms(0); len(got) == 0 || got[0] != "beginner" {
		t.Errorf("零本科资质应返回基础难度词，实际=%v", got)
	}
	if got := pickDifficultyTerms(1); got != nil {
		t.Errorf("1-2 门本科资质不应附加难度词，实际=%v", got)
	}
	if got := pickDifficultyTerms(3); len(got) == 0 || got[0] != "advanced" {
		t.Errorf("三门以上本科资质应返回进阶难度词，实际=%v", got)
	}
}
