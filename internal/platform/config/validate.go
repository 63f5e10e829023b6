package config

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"sync"

	perr "glossarysync/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// ValidatorSvc holds a singleton validator and translator
type ValidatorSvc struct {
	Validator  *validator.Validate
	Translator ut.Translator
}

var (
	vOnce sync.Once
	vSvc  *ValidatorSvc

	dnsLabelRe = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9-]{0,61}[A-Za-z0-9])?$`)
)

// Validator returns the process-wide validator with english translations and yaml tag names
func Validator() *ValidatorSvc {
	vOnce.Do(func() {
		enLoc := en.New()
		uni := ut.New(enLoc, enLoc)
		trans, _ := uni.GetTranslator("en")

		v := validator.New(validator.WithRequiredStructEnabled())

		// messages name the yaml key the operator actually typed
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("yaml")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = en_translations.RegisterDefaultTranslations(v, trans)
		registerDNSLabel(v, trans)
		registerRequiredWithout(v, trans)

		vSvc = &ValidatorSvc{Validator: v, Translator: trans}
	})
	return vSvc
}

// Validate runs struct validation on dst and maps failures to a single validation error
// listing every offending key; the first key is attached as the error field
func Validate(dst any) error {
	svc := Validator()
	err := svc.Validator.Struct(dst)
	if err == nil {
		return nil
	}
	var inv *validator.InvalidValidationError
	if errors.As(err, &inv) {
		return perr.Wrap(inv, perr.ErrorCodeUnknown, "validator internal error")
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return perr.Wrap(err, perr.ErrorCodeValidation, "invalid configuration")
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fe.Translate(svc.Translator))
	}
	return perr.WithField(
		perr.Validationf("invalid configuration: %s", strings.Join(msgs, "; ")),
		verrs[0].Field(),
	)
}

// dns_label guards values that end up inside a hostname (the tenant id)
func registerDNSLabel(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterValidation("dns_label", func(fl validator.FieldLevel) bool {
		return dnsLabelRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterTranslation("dns_label", trans,
		func(ut ut.Translator) error {
			return ut.Add("dns_label", "{0} must be a single DNS label (letters, digits, hyphens)", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("dns_label", fe.Field())
			return msg
		},
	)
}

func registerRequiredWithout(v *validator.Validate, trans ut.Translator) {
	_ = v.RegisterTranslation("required_without", trans,
		func(ut ut.Translator) error {
			return ut.Add("required_without", "{0} is required when {1} is not set", true)
		},
		func(ut ut.Translator, fe validator.FieldError) string {
			msg, _ := ut.T("required_without", fe.Field(), toSnake(fe.Param()))
			return msg
		},
	)
}

// toSnake turns a Go field name (ClientSecretRef) into its yaml key (client_secret_ref)
func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			r += 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}
