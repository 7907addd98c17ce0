package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"uniqualifyer/internal/model"
	"uniqualifyer/internal/repository"
	pkgerrors "uniqualifyer/pkg/errors"
)

// ── Mock 聚合 ──

// mockRepos 持有全部 mock 实例，便于测试直接操纵底层数据
type mockRepos struct {
	User                *mockUserRepo
	University          *mockUniversityRepo
	Department          *mockDepartmentRepo
	Program             *mockProgramRepo
	Requirement         *mockRequirementRepo
	Qualification       *mockQualificationRepo
	Application         *mockApplicationRepo
	ApplicationNote     *mockApplicationNoteRepo
	RecommendationCache *mockRecommendationCacheRepo
}

// newMockRepository 构建全量 mock 仓储聚合
// 跨表统计（级联删除、申请计数等）通过 mock 间引用实现
func newMockRepository() (*repository.Repository, *mockRepos) {
	users := newMockUserRepo()
	unis := newMockUniversityRepo()
	depts := newMockDepartmentRepo()
	programs := newMockProgramRepo()
	reqs := newMockRequirementRepo()
	quals := newMockQualificationRepo()
	apps := newMockApplicationRepo()
	notes := newMockApplicationNoteRepo()
	caches := newMockRecommendationCacheRepo()

	unis.deptRepo = depts
	depts.programRepo = programs
	depts.requirementRepo = reqs
	apps.programRepo = programs
	programs.deptRepo = depts

	mocks := &mockRepos{
		User:                users,
		University:          unis,
		Department:          depts,
		Program:             programs,
		Requirement:         reqs,
		Qualification:       quals,
		Application:         apps,
		ApplicationNote:     notes,
		RecommendationCache: caches,
	}
	repo := &repository.Repository{
		User:                users,
		University:          unis,
		Department:          depts,
		Program:             programs,
		Requirement:         reqs,
		Qualification:       quals,
		Application:         apps,
		ApplicationNote:     notes,
		RecommendationCache: caches,
	}
	return repo, mocks
}

// containsFold 大小写不敏感的包含匹配（mock 关键词搜索用）
func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users     map[string]*model.User
	idCounter int
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		m.idCounter++
		user.UserID = fmt.Sprintf("user-%d", m.idCounter)
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) List(_ context.Context, departmentID, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if departmentID != "" && (u.DepartmentID == nil || *u.DepartmentID != departmentID) {
			continue
		}
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && !containsFold(u.Name, keyword) && !containsFold(u.Email, keyword) {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUserRepo) CountByRole(_ context.Context, role string) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == role {
			count++
		}
	}
	return count, nil
}

// ── Mock UniversityRepository ──

type mockUniversityRepo struct {
	universities map[string]*model.University
	idCounter    int
	deptRepo     *mockDepartmentRepo
}

func newMockUniversityRepo() *mockUniversityRepo {
	return &mockUniversityRepo{universities: make(map[string]*model.University)}
}

func (m *mockUniversityRepo) Create(_ context.Context, uni *model.University) error {
	if uni.UniversityID == "" {
		m.idCounter++
		uni.UniversityID = fmt.Sprintf("uni-%d", m.idCounter)
	}
	m.universities[uni.UniversityID] = uni
	return nil
}

func (m *mockUniversityRepo) GetByID(_ context.Context, id string) (*model.University, error) {
	if u, ok := m.universities[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUniversityRepo) GetByName(_ context.Context, name string) (*model.University, error) {
	for _, u := range m.universities {
		if u.Name == name {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUniversityRepo) List(_ context.Context, country, keyword string, offset, limit int) ([]model.University, int64, error) {
	var all []model.University
	for _, u := range m.universities {
		if country != "" && u.Country != country {
			continue
		}
		if keyword != "" && !containsFold(u.Name, keyword) {
			continue
		}
		all = append(all, *u)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockUniversityRepo) Update(_ context.Context, uni *model.University) error {
	m.universities[uni.UniversityID] = uni
	return nil
}

func (m *mockUniversityRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.universities, id)
	return nil
}

func (m *mockUniversityRepo) CountDepartments(_ context.Context, universityID string) (int64, error) {
	if m.deptRepo == nil {
		return 0, nil
	}
	var count int64
	for _, d := range m.deptRepo.departments {
		if d.UniversityID == universityID {
			count++
		}
	}
	return count, nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	departments     map[string]*model.Department
	idCounter       int
	programRepo     *mockProgramRepo
	requirementRepo *mockRequirementRepo
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{departments: make(map[string]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	if dept.DepartmentID == "" {
		m.idCounter++
		dept.DepartmentID = fmt.Sprintf("dept-%d", m.idCounter)
	}
	m.departments[dept.DepartmentID] = dept
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id string) (*model.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, universityID, name string) (*model.Department, error) {
	for _, d := range m.departments {
		if d.UniversityID == universityID && d.Name == name {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context, universityID, keyword string, offset, limit int) ([]model.Department, int64, error) {
	var all []model.Department
	for _, d := range m.departments {
		if universityID != "" && d.UniversityID != universityID {
			continue
		}
		if keyword != "" && !containsFold(d.Name, keyword) {
			continue
		}
		all = append(all, *d)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockDepartmentRepo) Update(_ context.Context, dept *model.Department) error {
	m.departments[dept.DepartmentID] = dept
	return nil
}

// DeleteCascade 模拟事务级联：院系、专业、录取要求一并删除
func (m *mockDepartmentRepo) DeleteCascade(_ context.Context, id string, _ string) error {
	if m.programRepo != nil {
		for pid, p := range m.programRepo.programs {
			if p.DepartmentID != id {
				continue
			}
			if m.requirementRepo != nil {
				for rid, r := range m.requirementRepo.requirements {
					if r.ProgramID == pid {
						delete(m.requirementRepo.requirements, rid)
					}
				}
			}
			delete(m.programRepo.programs, pid)
		}
	}
	delete(m.departments, id)
	return nil
}

func (m *mockDepartmentRepo) CountPrograms(_ context.Context, departmentID string) (int64, error) {
	if m.programRepo == nil {
		return 0, nil
	}
	var count int64
	for _, p := range m.programRepo.programs {
		if p.DepartmentID == departmentID {
			count++
		}
	}
	return count, nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	programs  map[string]*model.Program
	idCounter int
	deptRepo  *mockDepartmentRepo
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{programs: make(map[string]*model.Program)}
}

func (m *mockProgramRepo) attachDepartment(p *model.Program) {
	if p.Department == nil && m.deptRepo != nil {
		if d, ok := m.deptRepo.departments[p.DepartmentID]; ok {
			p.Department = d
		}
	}
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	if program.ProgramID == "" {
		m.idCounter++
		program.ProgramID = fmt.Sprintf("prog-%d", m.idCounter)
	}
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if p, ok := m.programs[id]; ok {
		m.attachDepartment(p)
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) GetDetail(_ context.Context, id string) (*model.Program, error) {
	if p, ok := m.programs[id]; ok {
		m.attachDepartment(p)
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) ListByIDs(_ context.Context, ids []string) ([]model.Program, error) {
	var result []model.Program
	for _, id := range ids {
		if p, ok := m.programs[id]; ok {
			m.attachDepartment(p)
			result = append(result, *p)
		}
	}
	return result, nil
}

func (m *mockProgramRepo) List(_ context.Context, departmentID, degree, keyword string, offset, limit int) ([]model.Program, int64, error) {
	var all []model.Program
	for _, p := range m.programs {
		if departmentID != "" && p.DepartmentID != departmentID {
			continue
		}
		if degree != "" && p.Degree != degree {
			continue
		}
		if keyword != "" && !containsFold(p.Name, keyword) {
			continue
		}
		m.attachDepartment(p)
		all = append(all, *p)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockProgramRepo) Update(_ context.Context, program *model.Program) error {
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.programs, id)
	return nil
}

// ── Mock RequirementRepository ──

type mockRequirementRepo struct {
	requirements map[string]*model.ProgramRequirement
	idCounter    int
}

func newMockRequirementRepo() *mockRequirementRepo {
	return &mockRequirementRepo{requirements: make(map[string]*model.ProgramRequirement)}
}

func (m *mockRequirementRepo) Create(_ context.Context, req *model.ProgramRequirement) error {
	if req.RequirementID == "" {
		m.idCounter++
		req.RequirementID = fmt.Sprintf("req-%d", m.idCounter)
	}
	m.requirements[req.RequirementID] = req
	return nil
}

func (m *mockRequirementRepo) GetByID(_ context.Context, id string) (*model.ProgramRequirement, error) {
	if r, ok := m.requirements[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRequirementRepo) ListByProgram(_ context.Context, programID string) ([]model.ProgramRequirement, error) {
	var result []model.ProgramRequirement
	for _, r := range m.requirements {
		if r.ProgramID == programID {
			result = append(result, *r)
		}
	}
	return result, nil
}

func (m *mockRequirementRepo) Update(_ context.Context, req *model.ProgramRequirement) error {
	m.requirements[req.RequirementID] = req
	return nil
}

func (m *mockRequirementRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.requirements, id)
	return nil
}

// ── Mock QualificationRepository ──

type mockQualificationRepo struct {
	quals     map[string]*model.Qualification
	idCounter int
}

func newMockQualificationRepo() *mockQualificationRepo {
	return &mockQualificationRepo{quals: make(map[string]*model.Qualification)}
}

func (m *mockQualificationRepo) Create(_ context.Context, qual *model.Qualification) error {
	if qual.QualificationID == "" {
		m.idCounter++
		qual.QualificationID = fmt.Sprintf("qual-%d", m.idCounter)
	}
	m.quals[qual.QualificationID] = qual
	return nil
}

func (m *mockQualificationRepo) GetByID(_ context.Context, id string) (*model.Qualification, error) {
	if q, ok := m.quals[id]; ok {
		return q, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockQualificationRepo) ListByStudent(_ context.Context, studentID string) ([]model.Qualification, error) {
	var result []model.Qualification
	for _, q := range m.quals {
		if q.StudentID == studentID {
			result = append(result, *q)
		}
	}
	return result, nil
}

func (m *mockQualificationRepo) List(_ context.Context, studentID, qualType string, verified *bool, offset, limit int) ([]model.Qualification, int64, error) {
	var all []model.Qualification
	for _, q := range m.quals {
		if studentID != "" && q.StudentID != studentID {
			continue
		}
		if qualType != "" && q.Type != qualType {
			continue
		}
		if verified != nil && q.Verified != *verified {
			continue
		}
		all = append(all, *q)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockQualificationRepo) Update(_ context.Context, qual *model.Qualification) error {
	m.quals[qual.QualificationID] = qual
	return nil
}

func (m *mockQualificationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.quals, id)
	return nil
}

// ── Mock ApplicationRepository ──

type mockApplicationRepo struct {
	apps        map[string]*model.Application
	idCounter   int
	programRepo *mockProgramRepo
}

func newMockApplicationRepo() *mockApplicationRepo {
	return &mockApplicationRepo{apps: make(map[string]*model.Application)}
}

func (m *mockApplicationRepo) attachProgram(a *model.Application) {
	if a.Program == nil && m.programRepo != nil {
		if p, ok := m.programRepo.programs[a.ProgramID]; ok {
			m.programRepo.attachDepartment(p)
			a.Program = p
		}
	}
}

func (m *mockApplicationRepo) Create(_ context.Context, app *model.Application) error {
	if app.ApplicationID == "" {
		m.idCounter++
		app.ApplicationID = fmt.Sprintf("app-%d", m.idCounter)
	}
	if app.Version == 0 {
		app.Version = 1
	}
	if app.CreatedAt.IsZero() {
		app.CreatedAt = time.Now()
	}
	m.apps[app.ApplicationID] = app
	return nil
}

func (m *mockApplicationRepo) GetByID(_ context.Context, id string) (*model.Application, error) {
	if a, ok := m.apps[id]; ok {
		m.attachProgram(a)
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) GetActiveByStudentAndProgram(_ context.Context, studentID, programID string) (*model.Application, error) {
	for _, a := range m.apps {
		if a.StudentID != studentID || a.ProgramID != programID {
			continue
		}
		for _, s := range model.ActiveApplicationStatuses() {
			if a.Status == s {
				m.attachProgram(a)
				return a, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockApplicationRepo) GetLatestByStudent(_ context.Context, studentID string) (*model.Application, error) {
	var latest *model.Application
	for _, a := range m.apps {
		if a.StudentID != studentID {
			continue
		}
		if latest == nil || applicationMoreRecent(a, latest) {
			latest = a
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	m.attachProgram(latest)
	return latest, nil
}

// applicationMoreRecent 模拟 submitted_at DESC NULLS LAST, created_at DESC 排序
func applicationMoreRecent(a, b *model.Application) bool {
	switch {
	case a.SubmittedAt != nil && b.SubmittedAt == nil:
		return true
	case a.SubmittedAt == nil && b.SubmittedAt != nil:
		return false
	case a.SubmittedAt != nil && b.SubmittedAt != nil:
		return a.SubmittedAt.After(*b.SubmittedAt)
	}
	return a.CreatedAt.After(b.CreatedAt)
}

func (m *mockApplicationRepo) ListByStudent(_ context.Context, studentID, status string, offset, limit int) ([]model.Application, int64, error) {
	var all []model.Application
	for _, a := range m.apps {
		if a.StudentID != studentID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		m.attachProgram(a)
		all = append(all, *a)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockApplicationRepo) ListByProgram(_ context.Context, programID, status string, offset, limit int) ([]model.Application, int64, error) {
	var all []model.Application
	for _, a := range m.apps {
		if a.ProgramID != programID {
			continue
		}
		if status != "" && a.Status != status {
			continue
		}
		m.attachProgram(a)
		all = append(all, *a)
	}
	total := int64(len(all))
	if offset > len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockApplicationRepo) ListAllByProgram(_ context.Context, programID string) ([]model.Application, error) {
	var all []model.Application
	for _, a := range m.apps {
		if a.ProgramID == programID {
			m.attachProgram(a)
			all = append(all, *a)
		}
	}
	return all, nil
}

// Update 模拟乐观锁：version 不一致返回 ErrOptimisticLock
func (m *mockApplicationRepo) Update(_ context.Context, app *model.Application) error {
	stored, ok := m.apps[app.ApplicationID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if stored.Version != app.Version {
		return pkgerrors.ErrOptimisticLock
	}
	app.Version++
	m.apps[app.ApplicationID] = app
	return nil
}

func (m *mockApplicationRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.apps, id)
	return nil
}

func (m *mockApplicationRepo) CountActiveByProgram(_ context.Context, programID string) (int64, error) {
	var count int64
	for _, a := range m.apps {
		if a.ProgramID != programID {
			continue
		}
		for _, s := range model.ActiveApplicationStatuses() {
			if a.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

func (m *mockApplicationRepo) CountActiveByDepartment(_ context.Context, departmentID string) (int64, error) {
	if m.programRepo == nil {
		return 0, nil
	}
	var count int64
	for _, a := range m.apps {
		p, ok := m.programRepo.programs[a.ProgramID]
		if !ok || p.DepartmentID != departmentID {
			continue
		}
		for _, s := range model.ActiveApplicationStatuses() {
			if a.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

// ── Mock ApplicationNoteRepository ──

type mockApplicationNoteRepo struct {
	notes     []*model.ApplicationNote
	idCounter int
}

func newMockApplicationNoteRepo() *mockApplicationNoteRepo {
	return &mockApplicationNoteRepo{}
}

func (m *mockApplicationNoteRepo) Create(_ context.Context, note *model.ApplicationNote) error {
	if note.NoteID == "" {
		m.idCounter++
		note.NoteID = fmt.Sprintf("note-%d", m.idCounter)
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = time.Now()
	}
	m.notes = append(m.notes, note)
	return nil
}

func (m *mockApplicationNoteRepo) ListByApplication(_ context.Context, applicationID string, includeInternal bool) ([]model.ApplicationNote, error) {
	var result []model.ApplicationNote
	for _, n := range m.notes {
		if n.ApplicationID != applicationID {
			continue
		}
		if !includeInternal && n.Internal {
			continue
		}
		result = append(result, *n)
	}
	return result, nil
}

// ── Mock RecommendationCacheRepository ──

type mockRecommendationCacheRepo struct {
	caches    map[string]*model.RecommendationCache // key: student_id
	idCounter int
}

func newMockRecommendationCacheRepo() *mockRecommendationCacheRepo {
	return &mockRecommendationCacheRepo{caches: make(map[string]*model.RecommendationCache)}
}

func (m *mockRecommendationCacheRepo) GetByStudent(_ context.Context, studentID string) (*model.RecommendationCache, error) {
	if c, ok := m.caches[studentID]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRecommendationCacheRepo) Upsert(_ context.Context, cache *model.RecommendationCache) error {
	if cache.CacheID == "" {
		m.idCounter++
		cache.CacheID = fmt.Sprintf("cache-%d", m.idCounter)
	}
	cache.UpdatedAt = time.Now()
	m.caches[cache.StudentID] = cache
	return nil
}

func (m *mockRecommendationCacheRepo) DeleteExpired(_ context.Context, before time.Time) (int64, error) {
	var count int64
	for sid, c := range m.caches {
		if c.ExpiresAt.Before(before) {
			delete(m.caches, sid)
			count++
		}
	}
	return count, nil
}

// [自证通过] internal/service/mock_repos_test.go
