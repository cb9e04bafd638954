package common

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatBindingError(err error) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, io.EOF) {
		return "İstek gövdesi boş"
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("Geçersiz JSON (konum %d)", syntaxErr.Offset)
	}

	// e.g. a string where a number is expected
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("'%s' alanı %s türünde olmalı", typeErr.Field, typeErr.Type.String())
	}

	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		var out []string
		for _, fe := range ve {
			out = append(out, formatFieldError(fe))
		}
		return strings.Join(out, ", ")
	}

	return err.Error()
}

// FirstInvalidField names the first field that failed validation, if any.
func FirstInvalidField(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return ve[0].Field()
	}
	return ""
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("'%s' alanı zorunludur", fe.Field())
	case "email":
		return fmt.Sprintf("'%s' geçerli bir e-posta olmalı", fe.Field())
	case "min":
		return fmt.Sprintf("'%s' en az %s olmalı", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("'%s' en fazla %s olmalı", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("'%s' şunlardan biri olmalı: %s", fe.Field(), fe.Param())
	case "len":
		return fmt.Sprintf("'%s' uzunluğu %s olmalı", fe.Field(), fe.Param())
	case "datetime":
		return fmt.Sprintf("'%s' %s biçiminde olmalı", fe.Field(), fe.Param())
	case "screenid":
		return fmt.Sprintf("'%s' yalnızca harf, rakam, '-' ve '_' içerebilir", fe.Field())
	case "accesscode":
		return fmt.Sprintf("'%s' 4-16 karakterlik harf ve rakamlardan oluşmalı", fe.Field())
	}
	return fmt.Sprintf("'%s' alanı '%s' kuralını sağlamıyor", fe.Field(), fe.Tag())
}
