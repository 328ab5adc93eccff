package dto

import (
	"strconv"

	"github.com/go-playground/validator/v10"
)

// 成绩取值范围
const (
	MinScore = 0.0
	MaxScore = 20.0
)

// RegisterValidators 注册自定义校验标签
//
//	score    成绩在 [0, 20]
//	weekday  周内第几天 [0, 6]，具体上限由课表配置再校验
//	annee    学年格式 "2025-2026"，后一年等于前一年加一
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("score", validateScore); err != nil {
		return err
	}
	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		return err
	}
	return v.RegisterValidation("annee", validateAnnee)
}

func validateScore(fl validator.FieldLevel) bool {
	f := fl.Field().Float()
	return f >= MinScore && f <= MaxScore
}

func validateWeekday(fl validator.FieldLevel) bool {
	d := fl.Field().Int()
	return d >= 0 && d <= 6
}

func validateAnnee(fl validator.FieldLevel) bool {
	return ValidAnneeScolaire(fl.Field().String())
}

// ValidAnneeScolaire 校验学年字符串
func ValidAnneeScolaire(s string) bool {
	if len(s) != 9 || s[4] != '-' {
		return false
	}
	y1, err1 := strconv.Atoi(s[:4])
	y2, err2 := strconv.Atoi(s[5:])
	return err1 == nil && err2 == nil && y2 == y1+1
}
