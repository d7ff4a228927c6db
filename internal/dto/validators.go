package dto

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"teaching-hours/backend/internal/report"
)

var registerOnce sync.Once

// RegisterValidators adds the domain tags used in dto binding rules:
// school_year_label ("2024-2025") and record_type (a known record type).
func RegisterValidators() error {
	var err error
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			err = fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
			return
		}
		if err = v.RegisterValidation("school_year_label", validateSchoolYearLabel); err != nil {
			return
		}
		err = v.RegisterValidation("record_type", validateRecordType)
	})
	return err
}

func validateSchoolYearLabel(fl validator.FieldLevel) bool {
	_, _, err := report.ParseSchoolYearLabel(fl.Field().String())
	return err == nil
}

func validateRecordType(fl validator.FieldLevel) bool {
	return report.KnownType(report.RecordType(fl.Field().String()))
}
