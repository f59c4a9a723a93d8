package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"artdb/proj/internal/utils"

	govalidator "github.com/go-playground/validator/v10"
)

const EarliestTitleYear = 1888

var (
	usernameRegex = regexp.MustCompile(`^[\w.@+\-]+$`)
	slugRegex     = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := reflect.TypeOf(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
		jsonName := strings.Split(tag, ",")[0]
		if jsonName != "" {
			fieldName = jsonName
		}
	} else {
		fieldName = utils.CamelToSnake(origFieldName)
	}
	return
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := reflect.TypeOf(obj)
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg == "" {
		switch err.Tag() {
		case "required":
			errorMsg = "This field is required"
		case "max":
			errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
		case "min":
			errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
		case "gte":
			errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
		case "lte":
			errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
		case "oneof":
			errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
		case "email":
			errorMsg = "Value must be a valid email address"
		case "username":
			errorMsg = "Username may contain only letters, digits and @/./+/-/_ characters"
		case "notme":
			errorMsg = "Username 'me' is reserved"
		case "titleyear":
			errorMsg = fmt.Sprintf(
				"Year must be between %d and the current year", EarliestTitleYear,
			)
		case "slug":
			errorMsg = "Value must be a valid slug (lowercase letters, digits, hyphens)"
		default:
			errorMsg = "This field is invalid"
		}
	}
	return
}

// CUSTOM VALIDATORS

func ValidateUsernameChars(fl govalidator.FieldLevel) bool {
	return usernameRegex.MatchString(fl.Field().String())
}

// ValidateNotMe rejects the reserved username "me" which collides
// with the /users/me route.
func ValidateNotMe(fl govalidator.FieldLevel) bool {
	return fl.Field().String() != "me"
}

func ValidateTitleYear(fl govalidator.FieldLevel) bool {
	year := fl.Field().Int()
	return year >= EarliestTitleYear && year <= int64(time.Now().Year())
}

func ValidateSlug(fl govalidator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}

func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("username", ValidateUsernameChars); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("notme", ValidateNotMe); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("titleyear", ValidateTitleYear); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("slug", ValidateSlug); err != nil {
		panic(err)
	}
	return v
}
