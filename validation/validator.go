package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"timeclock/models"
	"timeclock/utils"
)

// Errors maps a field name to its messages.
type Errors map[string][]string

func (e Errors) Add(field, msg string) {
	for _, existing := range e[field] {
		if existing == msg {
			return
		}
	}
	e[field] = append(e[field], msg)
}

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e[k], ", "))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// orNil lets callers write `if errs := ...; errs != nil`.
func (e Errors) orNil() Errors {
	if len(e) == 0 {
		return nil
	}
	return e
}

var (
	objectIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)
	digitsPattern   = regexp.MustCompile(`^[0-9]+$`)
	indexSuffix     = regexp.MustCompile(`\[\d+\]$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	mustRegister(v, "objectid", func(fl validator.FieldLevel) bool {
		return objectIDPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "digits", func(fl validator.FieldLevel) bool {
		return digitsPattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "isodate", func(fl validator.FieldLevel) bool {
		_, err := utils.ParseISODate(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "tsdate", func(fl validator.FieldLevel) bool {
		return models.ValidDate(fl.Field().String())
	})
	mustRegister(v, "hhmm", func(fl validator.FieldLevel) bool {
		return models.ValidTime(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validator: %v", tag, err))
	}
}

// Struct runs the tag rules on s and converts failures into Errors.
func Struct(s any) Errors {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return Errors{"_": {err.Error()}}
	}
	out := Errors{}
	for _, fe := range verrs {
		out.Add(indexSuffix.ReplaceAllString(fe.Field(), ""), message(fe))
	}
	return out
}

func message(fe validator.FieldError) string {
	isString := fe.Kind() == reflect.String
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		if isString {
			return fmt.Sprintf("must be at least %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		if isString {
			return fmt.Sprintf("must be at most %s characters", fe.Param())
		}
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "objectid":
		return "must be a 24-character hexadecimal id"
	case "digits":
		return "must contain digits only"
	case "isodate":
		return "must be a date in YYYY-MM-DD format"
	case "tsdate":
		return "must be a date in dd-MM-yyyy format"
	case "hhmm":
		return "must be a time in HH:mm format"
	case "latitude":
		return "must be a valid latitude"
	case "longitude":
		return "must be a valid longitude"
	}
	return "is invalid"
}

// StringList accepts either a JSON string or an array of strings and
// normalizes to a trimmed list without blanks.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*l = cleanList([]string{one})
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return errors.New("must be a string or a list of strings")
	}
	*l = cleanList(many)
	return nil
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func trimPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := strings.TrimSpace(*p)
	return &v
}
