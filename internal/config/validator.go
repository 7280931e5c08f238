package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

var (
	validatorOnce sync.Once
	validateInst  *validator.Validate

	stepKinds = map[string]struct{}{
		KindVirtualenv: {},
		KindPipInstall: {},
		KindScript:     {},
		KindCheckout:   {},
	}
)

func validatorInstance() *validator.Validate {
	validatorOnce.Do(func() {
		v := validator.New()

		// Report the yaml field names in validation errors.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})

		validateInst = v
	})

	return validateInst
}

// ValidatePipeline performs schema validation on the loaded document. It
// runs entirely at load time: any failure here aborts the run before the
// first step executes.
func ValidatePipeline(p *Pipeline) error {
	if p == nil {
		return boxerrors.NewValidationError("pipeline", "pipeline is nil", nil)
	}

	v := validatorInstance()
	if err := v.Struct(p); err != nil {
		return convertValidationError(err)
	}

	for i, step := range p.Build.Steps {
		if err := validateStep(step, i); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(step Step, index int) error {
	if _, ok := stepKinds[step.Kind]; !ok {
		return boxerrors.NewValidationError(fieldForStep(index), fmt.Sprintf("unknown step kind %q", step.Kind), nil)
	}

	v := validatorInstance()

	switch step.Kind {
	case KindVirtualenv:
		if step.Virtualenv == nil {
			return boxerrors.NewValidationError(fieldForStep(index), "virtualenv parameters are required", nil)
		}
		if err := v.Struct(step.Virtualenv); err != nil {
			return convertValidationError(err)
		}
	case KindPipInstall:
		if step.PipInstall == nil {
			return boxerrors.NewValidationError(fieldForStep(index), "pip-install parameters are required", nil)
		}
		if err := v.Struct(step.PipInstall); err != nil {
			return convertValidationError(err)
		}
	case KindScript:
		if step.Script == nil {
			return boxerrors.NewValidationError(fieldForStep(index), "script parameters are required", nil)
		}
		if err := v.Struct(step.Script); err != nil {
			return convertValidationError(err)
		}
	case KindCheckout:
		if step.Checkout == nil {
			return boxerrors.NewValidationError(fieldForStep(index), "git-checkout parameters are required", nil)
		}
		if err := v.Struct(step.Checkout); err != nil {
			return convertValidationError(err)
		}
	}

	return nil
}

func convertValidationError(err error) error {
	if err == nil {
		return nil
	}

	if ves, ok := err.(validator.ValidationErrors); ok {
		ve := ves[0]
		field := yamlishFieldName(ve)
		msg := fmt.Sprintf("%s failed validation for tag '%s'", field, ve.Tag())
		return boxerrors.NewValidationError(field, msg, err)
	}

	return boxerrors.NewValidationError("pipeline", err.Error(), err)
}

func yamlishFieldName(fe validator.FieldError) string {
	ns := fe.StructNamespace()
	parts := strings.Split(ns, ".")
	var lowered []string
	for _, part := range parts {
		lowered = append(lowered, strings.ToLower(part))
	}
	return strings.Join(lowered, ".")
}

func fieldForStep(index int) string {
	return fmt.Sprintf("build.steps[%d]", index)
}
