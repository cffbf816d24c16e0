// Package validate checks authentication forms before anything is sent to
// the Auth API. Every check returns at most one *Error carrying a message
// that can be shown to the user as is.
package validate

import (
	"bytes"
	"errors"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^\+?[\d\s\-\(\)]{10,15}$`)
)

// Error is a single failed field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return common.ErrorValidation
}

type credentialsForm struct {
	Email    string `validate:"notblank,email_addr"`
	Password []byte `validate:"notblank"`
}

type registrationForm struct {
	models.Profile
	Password []byte `validate:"notblank,min=8,max=20,password_mix"`
}

type emailForm struct {
	Email string `validate:"notblank,email_addr"`
}

type otpForm struct {
	OTP string `validate:"notblank,len=6,digits"`
}

type resetForm struct {
	Email    string `validate:"notblank,email_addr"`
	Password []byte `validate:"notblank,min=8,max=20,password_mix"`
}

const passwordMixMessage = "Password must contain at least one uppercase letter, one lowercase letter, and one number"

// messages maps struct field and failing tag to what the user sees.
var messages = map[string]map[string]string{
	"FullName": {
		"notblank":    "Full name is required",
		"trimmed_min": "Full name must be at least 2 characters",
		"trimmed_max": "Full name must be less than 50 characters",
	},
	"Phone": {
		"notblank": "Phone number is required",
		"phone":    "Please enter a valid phone number",
	},
	"Email": {
		"notblank":   "Email is required",
		"email_addr": "Please enter a valid email address",
	},
	"Professional": {
		"notblank":    "Professional field is required",
		"trimmed_min": "Professional field must be at least 2 characters",
		"trimmed_max": "Professional field must be less than 100 characters",
	},
	"Password": {
		"notblank":     "Password is required",
		"min":          "Password must be at least 8 characters",
		"max":          "Password must be less than 20 characters",
		"password_mix": passwordMixMessage,
	},
	"OTP": {
		"notblank": "OTP is required",
		"len":      "OTP must be 6 digits",
		"digits":   "OTP must contain only numbers",
	},
}

var instance = sync.OnceValue(func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	mustRegister(v, "notblank", notBlank)
	mustRegister(v, "trimmed_min", trimmedLen(func(n, limit int) bool { return n >= limit }))
	mustRegister(v, "trimmed_max", trimmedLen(func(n, limit int) bool { return n <= limit }))
	mustRegister(v, "email_addr", matches(emailRe))
	mustRegister(v, "phone", matches(phoneRe))
	mustRegister(v, "digits", digits)
	mustRegister(v, "password_mix", passwordMix)
	return v
})

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

// Credentials checks the login form. The password is only required to be
// present; the policy applies to new passwords.
func Credentials(email string, password []byte) error {
	return check(credentialsForm{Email: email, Password: password})
}

// Registration checks every profile field and the password policy. confirm
// must equal password.
func Registration(p models.Profile, password, confirm []byte) error {
	if err := check(registrationForm{Profile: p, Password: password}); err != nil {
		return err
	}
	return confirmed(password, confirm)
}

func Email(email string) error {
	return check(emailForm{Email: email})
}

func OTP(code string) error {
	return check(otpForm{OTP: code})
}

// PasswordReset checks the new password against the policy and its
// confirmation.
func PasswordReset(email string, password, confirm []byte) error {
	if err := check(resetForm{Email: email, Password: password}); err != nil {
		return err
	}
	return confirmed(password, confirm)
}

// Password checks a new password against the policy alone.
func Password(password []byte) error {
	return check(struct {
		Password []byte `validate:"notblank,min=8,max=20,password_mix"`
	}{Password: password})
}

func confirmed(password, confirm []byte) error {
	if confirm != nil && !bytes.Equal(password, confirm) {
		return &Error{Field: "ConfirmPassword", Message: "Passwords do not match"}
	}
	return nil
}

func check(form any) error {
	err := instance().Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}

	fe := verrs[0]
	msg, ok := messages[fe.StructField()][fe.Tag()]
	if !ok {
		msg = fe.StructField() + " is invalid"
	}
	return &Error{Field: fe.StructField(), Message: msg}
}

func notBlank(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.String:
		return strings.TrimSpace(f.String()) != ""
	case reflect.Slice:
		return f.Len() > 0
	default:
		return !f.IsZero()
	}
}

func trimmedLen(cmp func(n, limit int) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		n := utf8.RuneCountInString(strings.TrimSpace(fl.Field().String()))
		return cmp(n, limit)
	}
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

func digits(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}

func passwordMix(fl validator.FieldLevel) bool {
	f := fl.Field()
	var b []byte
	if f.Kind() == reflect.Slice {
		b = f.Bytes()
	} else {
		b = []byte(f.String())
	}

	var lower, upper, digit bool
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		b = b[size:]
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return lower && upper && digit
}
