package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/rpupo63/melba-site-backend/errs"
	"github.com/rpupo63/melba-site-backend/models"
)

var (
	// custom validation tags & texts
	emailTag   = "email_basic"
	emailText  = "Please enter a valid email address."
	emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	betweenTag  = "between"
	betweenText = "{0} must be between {1} and {2}."

	slugTag   = "slug"
	slugText  = "{0} may only contain lowercase letters, numbers, and dashes."
	slugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

	oneOfText = "{0} must be one of: {1}."
	maxText   = "{0} cannot exceed {1} characters."
)

// Messages overrides the generated text for a failed rule. Keys are either
// "<jsonField>.<tag>" or "<jsonField>".
type Messages map[string]string

// Validator applies the acceptance rules declared in model struct tags.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

func New() *Validator {
	english := en.New()
	uni := ut.New(english, english)
	translator, _ := uni.GetTranslator("en")

	validate := validator.New(validator.WithRequiredStructEnabled())
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use the human label for errors, falling back to the JSON name.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		if label := fld.Tag.Get("label"); label != "" {
			return label
		}
		return jsonName(fld)
	})

	_ = validate.RegisterValidation(emailTag, emailValidation)
	_ = validate.RegisterValidation(betweenTag, betweenValidation)
	_ = validate.RegisterValidation(slugTag, slugValidation)

	v := &Validator{validate: validate, translator: translator}
	v.registerTranslation(emailTag, emailText)
	v.registerTranslation(betweenTag, betweenText)
	v.registerTranslation(slugTag, slugText)
	v.registerTranslation("oneof", oneOfText)
	v.registerTranslation("max", maxText)
	return v
}

func (v *Validator) registerTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			params := append([]string{fe.Field()}, ruleParams(fe)...)
			s, _ := t.T(tag, params...)
			return s
		},
	)
}

// Check normalizes rec in place and validates it. Missing required fields
// short-circuit into one combined message; otherwise every failing rule
// contributes its own message. Email fields are validated as submitted and
// lower-cased only once the record is accepted.
func (v *Validator) Check(rec any, overrides Messages) error {
	Normalize(rec)

	err := v.validate.Struct(rec)
	if err == nil {
		lowerEmails(reflect.Indirect(reflect.ValueOf(rec)))
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate %T: %w", rec, err)
	}

	rt := reflect.Indirect(reflect.ValueOf(rec)).Type()

	var missing, missingFields []string
	for _, fe := range fieldErrs {
		if fe.Tag() == "required" {
			missing = append(missing, fe.Field())
			missingFields = append(missingFields, fieldName(rt, fe))
		}
	}
	if len(missing) > 0 {
		return errs.NewValidationError(missingFields, []string{RequiredMessage(missing)})
	}

	fields := make([]string, 0, len(fieldErrs))
	messages := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		name := fieldName(rt, fe)
		fields = append(fields, name)
		messages = append(messages, v.message(name, fe, overrides))
	}
	return errs.NewValidationError(fields, messages)
}

func (v *Validator) message(name string, fe validator.FieldError, overrides Messages) string {
	if msg, ok := overrides[name+"."+fe.Tag()]; ok {
		return msg
	}
	if msg, ok := overrides[name]; ok {
		return msg
	}
	return models.Capitalize(fe.Translate(v.translator))
}

// RequiredMessage joins labels into "First name, last name, and email are required."
func RequiredMessage(labels []string) string {
	var joined string
	switch len(labels) {
	case 0:
		return ""
	case 1:
		return models.Capitalize(labels[0]) + " is required."
	case 2:
		joined = labels[0] + " and " + labels[1]
	default:
		joined = strings.Join(labels[:len(labels)-1], ", ") + ", and " + labels[len(labels)-1]
	}
	return models.Capitalize(joined) + " are required."
}

// fieldName resolves the JSON name of the failing field, looking through
// embedded structs.
func fieldName(rt reflect.Type, fe validator.FieldError) string {
	if rt.Kind() == reflect.Struct {
		if sf, ok := rt.FieldByName(fe.StructField()); ok {
			if name := jsonName(sf); name != "" {
				return name
			}
		}
	}
	return fe.Field()
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}

func ruleParams(fe validator.FieldError) []string {
	switch fe.Tag() {
	case betweenTag:
		lo, hi, _ := strings.Cut(fe.Param(), ":")
		return []string{lo, hi}
	case "oneof":
		return []string{strings.Join(splitOneOf(fe.Param()), ", ")}
	default:
		return []string{fe.Param()}
	}
}

var oneOfSplit = regexp.MustCompile(`'[^']*'|\S+`)

func splitOneOf(param string) []string {
	values := oneOfSplit.FindAllString(param, -1)
	for i, value := range values {
		values[i] = strings.Trim(value, "'")
	}
	return values
}

// Custom Global Validators

func emailValidation(fl validator.FieldLevel) bool {
	return emailRegex.MatchString(fl.Field().String())
}

// betweenValidation checks an integer against an inclusive "lo:hi" range.
func betweenValidation(fl validator.FieldLevel) bool {
	lo, hi, ok := strings.Cut(fl.Param(), ":")
	if !ok {
		return false
	}
	lower, err1 := strconv.ParseInt(lo, 10, 64)
	upper, err2 := strconv.ParseInt(hi, 10, 64)
	if err1 != nil || err2 != nil {
		return false
	}
	switch fl.Field().Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n := fl.Field().Int()
		return n >= lower && n <= upper
	}
	return false
}

func slugValidation(fl validator.FieldLevel) bool {
	return slugRegex.MatchString(fl.Field().String())
}
