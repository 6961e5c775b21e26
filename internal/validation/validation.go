// Package validation checks user input for registration, login and tasks
// using go-playground/validator and reports failures per field.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/dmitrijs2005/todokeeper/internal/datemask"
	"github.com/go-playground/validator/v10"
)

// MaxTaskLength caps task text, in characters.
const MaxTaskLength = 500

// RegisterInput is the registration form.
type RegisterInput struct {
	Name            string `label:"name" validate:"required,max=100"`
	Username        string `label:"username" validate:"required,min=3,max=32,alphanum"`
	Email           string `label:"email" validate:"required,email"`
	Password        string `label:"password" validate:"required,pwd"`
	ConfirmPassword string `label:"confirm_password" validate:"required,eqfield=Password"`
}

// LoginInput is the login form.
type LoginInput struct {
	Username string `label:"username" validate:"required"`
	Password string `label:"password" validate:"required"`
}

// TaskInput is the add-task form. Date is raw digits or masked text.
type TaskInput struct {
	Date string `label:"date" validate:"required,maskdate"`
	Text string `label:"task" validate:"required,max=500"`
}

// Error carries field -> message pairs for every failed rule.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + e.Fields[k]
	}
	return "invalid input: " + strings.Join(parts, "; ")
}

var (
	once     sync.Once
	validate *validator.Validate
)

func engine() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := fld.Tag.Get("label")
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterAlias("pwd", "min=6")
		_ = v.RegisterValidation("maskdate", func(fl validator.FieldLevel) bool {
			_, err := datemask.Parse(fl.Field().String())
			return err == nil
		})
		validate = v
	})
	return validate
}

// Register trims in and validates it. Passwords are not trimmed.
func Register(in *RegisterInput) error {
	in.Name = strings.TrimSpace(in.Name)
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	return check(in)
}

// Login trims the username and validates in.
func Login(in *LoginInput) error {
	in.Username = strings.TrimSpace(in.Username)
	return check(in)
}

// Task trims in and validates it.
func Task(in *TaskInput) error {
	in.Date = strings.TrimSpace(in.Date)
	in.Text = strings.TrimSpace(in.Text)
	return check(in)
}

func check(s any) error {
	err := engine().Struct(s)
	if err == nil {
		return nil
	}
	return &Error{Fields: ToDetails(err)}
}

// ToDetails converts validator errors into a map[field]message.
func ToDetails(err error) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			out[fe.Field()] = formatFieldError(fe)
		}
		return out
	}

	return map[string]string{"input": "is invalid"}
}

func formatFieldError(fe validator.FieldError) string {
	param := fe.Param()

	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "alphanum":
		return "must contain letters and digits only"
	case "min":
		return "must be at least " + param + " characters long"
	case "max":
		return "must be at most " + param + " characters long"
	case "pwd":
		return "must be at least 6 characters long"
	case "eqfield":
		return "does not match password"
	case "maskdate":
		return "must be a valid date (dd/MM/yyyy)"
	default:
		if param != "" {
			return fmt.Sprintf("validation failed for '%s' with parameter '%s'", fe.Tag(), param)
		}
		return fmt.Sprintf("validation failed for '%s'", fe.Tag())
	}
}
