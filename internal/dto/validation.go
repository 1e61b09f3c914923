package dto

import (
	"regexp"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/placement-portal-api/pkg/catalog"
)

var phonePattern = regexp.MustCompile(`^[6-9]\d{9}$`)

// NewValidator returns a validator that knows the catalog tags
// branch, category, study_year, cgpa and phone_in.
func NewValidator(cat *catalog.Catalog) (*validator.Validate, error) {
	v := validator.New()
	rules := map[string]validator.Func{
		"branch": func(fl validator.FieldLevel) bool {
			return cat.HasBranch(fl.Field().String())
		},
		"category": func(fl validator.FieldLevel) bool {
			return cat.HasCategory(fl.Field().String())
		},
		"study_year": func(fl validator.FieldLevel) bool {
			return cat.HasYear(int(fl.Field().Int()))
		},
		"cgpa": func(fl validator.FieldLevel) bool {
			return cat.ValidCGPA(fl.Field().Float())
		},
		"phone_in": func(fl validator.FieldLevel) bool {
			return phonePattern.MatchString(fl.Field().String())
		},
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return nil, err
		}
	}
	return v, nil
}
