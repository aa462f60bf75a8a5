package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/aleister1102/pagewatch/internal/checkerrors"
	"github.com/aleister1102/pagewatch/internal/common"
	"github.com/aleister1102/pagewatch/internal/models"
	"github.com/go-playground/validator/v10"
)

// newValidator returns a validator with every custom rule registered. Field
// names in errors follow the yaml keys.
func newValidator() *validator.Validate {
	validate := validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("fetchmode", oneOfRule(
		string(models.FetchModeAuto), string(models.FetchModeStatic), string(models.FetchModeDynamic)))
	_ = validate.RegisterValidation("selectortype", oneOfRule(
		string(models.SelectorTypeCSS), string(models.SelectorTypeXPath), string(models.SelectorTypeHash)))
	_ = validate.RegisterValidation("matchtype", oneOfRule(
		string(models.MatchTypeRegex), string(models.MatchTypeExact), string(models.MatchTypeContains)))
	_ = validate.RegisterValidation("statebackend", oneOfRule("json", "sqlite"))

	_ = validate.RegisterValidation("historycolumn", func(fl validator.FieldLevel) bool {
		return models.IsHistoryColumn(fl.Field().String())
	})

	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "debug", "info", "warn", "error", "fatal", "panic":
			return true
		default:
			return false
		}
	})

	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "", "console", "text", "json":
			return true
		default:
			return false
		}
	})

	validate.RegisterStructValidation(validateSelector, models.Selector{})
	validate.RegisterStructValidation(validateMonitor, models.Monitor{})
	validate.RegisterStructValidation(validateMonitorsFile, MonitorsFile{})

	return validate
}

func oneOfRule(allowed ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, a := range allowed {
			if value == a {
				return true
			}
		}
		return false
	}
}

// css and xpath selectors need a value; hash selectors fingerprint the page.
func validateSelector(sl validator.StructLevel) {
	sel := sl.Current().Interface().(models.Selector)
	if sel.Type != models.SelectorTypeHash && strings.TrimSpace(sel.Value) == "" {
		sl.ReportError(sel.Value, "value", "Value", "required_unless_hash", "")
	}
}

func validateMonitor(sl validator.StructLevel) {
	m := sl.Current().Interface().(models.Monitor)
	seen := make(map[string]bool, len(m.Selectors))
	for i, sel := range m.Selectors {
		if sel.Name == "" {
			continue
		}
		if seen[sel.Name] {
			sl.ReportError(sel.Name, fmt.Sprintf("selectors[%d].name", i), "Name", "unique", "")
		}
		seen[sel.Name] = true
	}
}

func validateMonitorsFile(sl validator.StructLevel) {
	f := sl.Current().Interface().(MonitorsFile)
	seen := make(map[string]bool, len(f.Monitors))
	for i, m := range f.Monitors {
		if m.ID == "" {
			continue
		}
		if seen[m.ID] {
			sl.ReportError(m.ID, fmt.Sprintf("monitors[%d].id", i), "ID", "unique", "")
		}
		seen[m.ID] = true
	}
}

// ValidateMonitorsFile checks a decoded monitor config. Every failed rule is
// reported in a single E103 error.
func ValidateMonitorsFile(path string, file *MonitorsFile) error {
	problems, err := collectProblems(newValidator().Struct(file))
	if err != nil {
		return common.WrapError(err, "monitor config validation error")
	}
	if len(problems) > 0 {
		return checkerrors.NewConfigValidation(path, problems)
	}
	return nil
}

// ValidateAppConfig checks an application config.
func ValidateAppConfig(cfg *AppConfig) error {
	problems, err := collectProblems(newValidator().Struct(cfg))
	if err != nil {
		return common.WrapError(err, "app config validation error")
	}
	if len(problems) > 0 {
		return common.NewError("app config validation failed:\n  %s", strings.Join(problems, "\n  "))
	}
	return nil
}

// collectProblems turns validator errors into one message per failed rule.
// Errors that are not rule failures are returned as is.
func collectProblems(err error) ([]string, error) {
	if err == nil {
		return nil, nil
	}

	var errs validator.ValidationErrors
	if !errors.As(err, &errs) {
		return nil, err
	}

	problems := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := fmt.Sprintf("Validation failed for '%s': rule '%s'", fieldPath(e.Namespace()), e.Tag())
		if e.Param() != "" {
			msg += fmt.Sprintf(" (expected: %s)", e.Param())
		}
		if e.Value() != nil && e.Value() != "" {
			msg += fmt.Sprintf(", actual: '%v'", e.Value())
		}
		problems = append(problems, msg)
	}
	return problems, nil
}

// fieldPath drops the root struct name, leaving e.g. monitors[0].url.
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}
