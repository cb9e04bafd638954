package common

import (
	"reflect"
	"regexp"
	"strings"

	"axiapac.com/personnel/utils"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var (
	screenIDPattern   = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
	accessCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,16}$`)
)

func init() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})
	_ = v.RegisterValidation("screenid", func(fl validator.FieldLevel) bool {
		return screenIDPattern.MatchString(fl.Field().String())
	})
	// access codes are compared case-insensitively, so validate the normalized form
	_ = v.RegisterValidation("accesscode", func(fl validator.FieldLevel) bool {
		return accessCodePattern.MatchString(utils.NormalizeCode(fl.Field().String()))
	})
}
