package dto

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	sectionPattern = regexp.MustCompile(`^[A-Za-z]$`)
	sessionPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// ValidSection 分班为单个字母
func ValidSection(s string) bool { return sectionPattern.MatchString(s) }

// ValidSession 学年形如 2024-25
func ValidSession(s string) bool { return sessionPattern.MatchString(s) }

// RegisterValidators 向 gin 的校验引擎注册自定义规则
//
//	section: 单个字母（分班）
//	session: 形如 2024-25 的学年
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("section", validateSection); err != nil {
		return err
	}
	return v.RegisterValidation("session", validateSession)
}

func validateSection(fl validator.FieldLevel) bool {
	return ValidSection(fl.Field().String())
}

func validateSession(fl validator.FieldLevel) bool {
	return ValidSession(fl.Field().String())
}
