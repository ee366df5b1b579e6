package domain

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Participant holds the attendee details collected on the first checkout step.
type Participant struct {
	Civility  string `json:"civility" validate:"required,oneof=mr mme"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"required"`
	Company   string `json:"company"`
	Position  string `json:"position"`
	Source    string `json:"source,omitempty" validate:"omitempty,oneof=social search referral event other"`
}

func (p Participant) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Normalize trims every field and lowercases the e-mail.
func (p Participant) Normalize() Participant {
	p.Civility = strings.ToLower(strings.TrimSpace(p.Civility))
	p.FirstName = strings.TrimSpace(p.FirstName)
	p.LastName = strings.TrimSpace(p.LastName)
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	p.Phone = strings.TrimSpace(p.Phone)
	p.Company = strings.TrimSpace(p.Company)
	p.Position = strings.TrimSpace(p.Position)
	p.Source = strings.TrimSpace(p.Source)
	return p
}

func (p Participant) Validate() error {
	return ValidateStruct(p, "incomplete participant details")
}

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs the struct's validate tags and reports failures keyed by
// JSON field name.
func ValidateStruct(v interface{}, msg string) error {
	err := validatorInstance().Struct(v)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return &ValidationError{Message: err.Error()}
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = "this field is required"
		case "email":
			fields[fe.Field()] = "must be a valid e-mail address"
		case "oneof":
			fields[fe.Field()] = "must be one of: " + fe.Param()
		case "min":
			fields[fe.Field()] = "must be at least " + fe.Param() + " characters"
		case "eqfield":
			fields[fe.Field()] = "does not match"
		case "url":
			fields[fe.Field()] = "must be a valid URL"
		default:
			fields[fe.Field()] = "is invalid"
		}
	}
	return &ValidationError{Message: msg, Fields: fields}
}
