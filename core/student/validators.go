package student

import (
	"github.com/go-playground/validator/v10"

	"github.com/alrowad/institute/core"
)

var (
	gradeTrackTag  = "gradetrack"
	gradeTrackText = "invalid grade track"
)

func init() {
	_ = core.Validate.RegisterValidation(gradeTrackTag, gradeTrackValidation)
	core.RegisterCustomTranslation(core.Validate, core.Translator, gradeTrackTag, gradeTrackText)
}

// gradeTrackValidation checks that the provided grade is a known class track.
func gradeTrackValidation(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	for _, g := range Grades {
		if val == g {
			return true
		}
	}
	return false
}
