package config

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/caarlos0/env/v11"
)

// Validator is implemented by sections with constraints env tags cannot express.
type Validator interface {
	Validate() error
}

// New reads configuration from environment variables and unmarshals them into a struct of type T.
// Each binary composes its own T from the section types of this package; every section
// implementing Validator is checked after parsing.
func New[T any]() (T, error) {
	var cfg T
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}

	if err := validateSections(&cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validateSections(cfg any) error {
	v := reflect.ValueOf(cfg).Elem()
	if v.Kind() != reflect.Struct {
		return nil
	}

	var errs []error
	for i := range v.NumField() {
		field := v.Field(i)
		if !field.CanAddr() || !field.Addr().CanInterface() {
			continue
		}
		if section, ok := field.Addr().Interface().(Validator); ok {
			if err := section.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", v.Type().Field(i).Name, err))
			}
		}
	}

	return errors.Join(errs...)
}
