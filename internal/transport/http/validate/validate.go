// Package validate registers the custom binding rules and turns validator
// errors into per-field messages ("email invalid", "password min 8").
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"storefront-api/pkg/utils"
)

// DefaultRegion is used for phone numbers written without a +country prefix.
const DefaultRegion = "BR"

var orderByPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*_(?i:asc|desc)$`)

var once sync.Once

// Register installs the rules on gin's validator. Safe to call many times.
func Register() {
	once.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(jsonName)
		_ = v.RegisterValidation("document", isDocument)
		_ = v.RegisterValidation("phone", isPhone)
		_ = v.RegisterValidation("orderby", isOrderBy)
	})
}

func jsonName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}

func isDocument(fl validator.FieldLevel) bool { return utils.IsCPFOrCNPJ(fl.Field().String()) }

func isPhone(fl validator.FieldLevel) bool { return ValidPhone(fl.Field().String()) }

func isOrderBy(fl validator.FieldLevel) bool { return orderByPattern.MatchString(fl.Field().String()) }

func ValidPhone(s string) bool {
	num, err := phonenumbers.Parse(strings.TrimSpace(s), DefaultRegion)
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// Messages flattens validation errors. ok is false when err is not a
// validator.ValidationErrors.
func Messages(err error) (msgs []string, ok bool) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return nil, false
	}
	for _, fe := range ve {
		msgs = append(msgs, message(fe))
	}
	return msgs, true
}

func message(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " required"
	case "min", "max", "len", "gte", "lte", "gt", "lt":
		return fmt.Sprintf("%s %s %s", field, fe.Tag(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", field, fe.Param())
	case "document":
		return field + " must be a valid cpf or cnpj"
	case "orderby":
		return field + " must look like field_asc or field_desc"
	}
	return field + " invalid"
}

// Struct validates v with the same rules the HTTP binders apply.
func Struct(v any) error {
	err := binding.Validator.ValidateStruct(v)
	if msgs, ok := Messages(err); ok {
		return fmt.Errorf("invalid input: %s", strings.Join(msgs, ", "))
	}
	return err
}
