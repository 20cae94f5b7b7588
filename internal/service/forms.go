package service

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	"todo_webapp/internal/domain"

	"github.com/go-playground/validator/v10"
)

// DeadlineLayout is the datetime-local input format.
const DeadlineLayout = "2006-01-02T15:04"

// SignupForm is the raw registration input. Field order decides which
// error is reported first.
type SignupForm struct {
	Username  string `form:"username" validate:"required,max=20,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required,min=8,notnumeric"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

type LoginForm struct {
	Username string `form:"username" validate:"required"`
	Password string `form:"password" validate:"required"`
}

// TaskForm is the raw task input. It has no owner field; the owner always
// comes from the session.
type TaskForm struct {
	Title            string `form:"title" validate:"required,max=100"`
	Description      string `form:"description"`
	DeadlineDatetime string `form:"deadline_datetime" validate:"omitempty,datetime=2006-01-02T15:04"`
	Important        string `form:"important"`
}

// TaskFormFrom fills a form with the current values of t for editing.
func TaskFormFrom(t *domain.Task, loc *time.Location) TaskForm {
	f := TaskForm{Title: t.Title, Description: t.Description}
	if t.Important {
		f.Important = "on"
	}
	if t.DeadlineDatetime != nil {
		f.DeadlineDatetime = t.DeadlineDatetime.In(loc).Format(DeadlineLayout)
	}
	return f
}

type FieldError struct {
	Field   string
	Message string
}

type FieldErrors []FieldError

func (fe FieldErrors) First() string {
	if len(fe) == 0 {
		return ""
	}
	return fe[0].Message
}

// ByField returns the first message per field.
func (fe FieldErrors) ByField() map[string]string {
	m := make(map[string]string, len(fe))
	for _, e := range fe {
		if _, ok := m[e.Field]; !ok {
			m[e.Field] = e.Message
		}
	}
	return m
}

var (
	validate        = newValidator()
	usernamePattern = regexp.MustCompile(`^[\p{L}\p{N}_.@+-]+$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("notnumeric", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return strings.TrimFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) != ""
	})
	return v
}

var messages = map[string]string{
	"username.required":          "This field is required.",
	"username.max":               "Username must be 20 characters or fewer.",
	"username.username":          "Enter a valid username. It may contain only letters, numbers, and @/./+/-/_ characters.",
	"email.required":             "This field is required.",
	"email.max":                  "Enter a valid email address.",
	"email.email":                "Enter a valid email address.",
	"password1.required":         "This field is required.",
	"password1.min":              "This password is too short. It must contain at least 8 characters.",
	"password1.notnumeric":       "This password is entirely numeric.",
	"password2.required":         "This field is required.",
	"password.required":          "This field is required.",
	"password2.eqfield":          "Passwords didn't match",
	"title.required":             "This field is required.",
	"title.max":                  "Ensure this value has at most 100 characters.",
	"deadline_datetime.datetime": "Enter a valid date/time.",
}

func check(form any) FieldErrors {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{{Field: "", Message: err.Error()}}
	}
	out := make(FieldErrors, 0, len(verrs))
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = "Enter a valid value."
		}
		out = append(out, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}

// ValidateSignup checks field constraints only; uniqueness needs the store
// and is checked by AuthService.Register.
func ValidateSignup(f *SignupForm) FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)
	return check(f)
}

func ValidateLogin(f *LoginForm) FieldErrors {
	f.Username = strings.TrimSpace(f.Username)
	return check(f)
}

// ValidateTask turns raw task input into a TaskInput. The deadline is
// interpreted in loc.
func ValidateTask(f TaskForm, loc *time.Location) (domain.TaskInput, FieldErrors) {
	f.Title = strings.TrimSpace(f.Title)
	f.Description = strings.TrimSpace(f.Description)
	f.DeadlineDatetime = strings.TrimSpace(f.DeadlineDatetime)

	if errs := check(&f); len(errs) > 0 {
		return domain.TaskInput{}, errs
	}

	in := domain.TaskInput{
		Title:       f.Title,
		Description: f.Description,
		Important:   checkbox(f.Important),
	}
	if f.DeadlineDatetime != "" {
		d, err := time.ParseInLocation(DeadlineLayout, f.DeadlineDatetime, loc)
		if err != nil {
			return domain.TaskInput{}, FieldErrors{{Field: "deadline_datetime", Message: messages["deadline_datetime.datetime"]}}
		}
		in.DeadlineDatetime = &d
	}
	return in, nil
}

func checkbox(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "false", "0", "off":
		return false
	}
	return true
}
