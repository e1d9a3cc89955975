package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Placement type validation
	validate.RegisterValidation("placement_type", func(fl validator.FieldLevel) bool {
		t := fl.Field().String()
		validTypes := []string{"header", "footer", "sidebar", "vertical", "between-posts", "popup", "custom"}
		for _, v := range validTypes {
			if t == v {
				return true
			}
		}
		return false
	})

	// Ad format validation
	validate.RegisterValidation("ad_format", func(fl validator.FieldLevel) bool {
		f := fl.Field().String()
		validFormats := []string{"auto", "horizontal", "vertical", "rectangle", "fluid"}
		for _, v := range validFormats {
			if f == v {
				return true
			}
		}
		return false
	})

	// Page location validation
	validate.RegisterValidation("page_location", func(fl validator.FieldLevel) bool {
		l := fl.Field().String()
		validLocations := []string{"all-pages", "home", "blog", "travel", "community"}
		for _, v := range validLocations {
			if l == v {
				return true
			}
		}
		return false
	})

	// Stat event type validation
	validate.RegisterValidation("event_type", func(fl validator.FieldLevel) bool {
		e := fl.Field().String()
		validEvents := []string{"impression", "click", "revenue"}
		for _, v := range validEvents {
			if e == v {
				return true
			}
		}
		return false
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "uuid":
			errors[field] = "Invalid identifier format"
		case "placement_type":
			errors[field] = "Invalid type. Must be: header, footer, sidebar, vertical, between-posts, popup, or custom"
		case "ad_format":
			errors[field] = "Invalid format. Must be: auto, horizontal, vertical, rectangle, or fluid"
		case "page_location":
			errors[field] = "Invalid location. Must be: all-pages, home, blog, travel, or community"
		case "event_type":
			errors[field] = "Invalid event type. Must be: impression, click, or revenue"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
