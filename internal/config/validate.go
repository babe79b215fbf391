package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			return envNameFor(f.Name)
		}
		return name
	})
	return v
}

func envNameFor(field string) string {
	switch field {
	case "APIKey":
		return EnvAPIKey
	case "APISecret":
		return EnvAPISecret
	case "DockerHubToken":
		return EnvDockerHubToken
	default:
		return field
	}
}

// Validate checks required keys, value ranges and credentials.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		var missing, invalid []string
		for _, fe := range verrs {
			if fe.Tag() == "required" {
				missing = append(missing, fe.Field())
				continue
			}
			invalid = append(invalid, fmt.Sprintf("%s (%s=%s)", fe.Field(), fe.Tag(), fe.Param()))
		}
		var errs []error
		if len(missing) > 0 {
			errs = append(errs, fmt.Errorf("missing required keys: %s", strings.Join(missing, ", ")))
		}
		if len(invalid) > 0 {
			errs = append(errs, fmt.Errorf("invalid values: %s", strings.Join(invalid, ", ")))
		}
		return errors.Join(errs...)
	}
	return nil
}
