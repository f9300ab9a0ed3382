package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"
)

var (
	// ErrInvalidConfig is returned when cfg is not a pointer to a struct embedding EnvConfig.
	ErrInvalidConfig = errors.New("config must be a pointer to a struct embedding EnvConfig")

	// ErrVarNotSet is returned when a variable without default is not set.
	ErrVarNotSet = errors.New("env var not set")

	// ErrUnsupportedVarType is returned for fields of a kind the parser cannot fill.
	ErrUnsupportedVarType = errors.New("unsupported env var type")
)

// EnvConfig must be embedded in configuration structs passed to Parse.
type EnvConfig struct {
	namespace string
}

// Namespace returns the namespace the config was parsed with.
func (c EnvConfig) Namespace() string {
	return c.namespace
}

func getEnvConfig(cfg any) (*EnvConfig, error) {
	v := reflect.ValueOf(cfg)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, ErrInvalidConfig
	}

	v = v.Elem()
	envConfigType := reflect.TypeOf(EnvConfig{}) //nolint:exhaustruct

	for i := range v.NumField() {
		field := v.Type().Field(i)
		if field.Anonymous && field.Type == envConfigType {
			//nolint:forcetypeassert
			return v.Field(i).Addr().Interface().(*EnvConfig), nil
		}
	}

	return nil, ErrInvalidConfig
}

// Parse fills cfg from environment variables.
//
// Fields are bound with `env:"NAME"` and may carry `default:"value"`. Nested structs
// contribute `envPrefix:"PREFIX_"` to the names of their fields. The namespace is tried
// from most to least specific: for namespace "APP_SVC" the field LEVEL with prefix LOG_
// is looked up as APP_SVC_LOG_LEVEL, then APP_LOG_LEVEL.
func Parse(_ context.Context, cfg any, namespace string) error {
	envConfig, err := getEnvConfig(cfg)
	if err != nil {
		return fmt.Errorf("get env config: %w", err)
	}

	envConfig.namespace = namespace

	return parseStruct(namespace, "", reflect.ValueOf(cfg).Elem())
}

func parseStruct(namespace, prefix string, v reflect.Value) error {
	t := v.Type()

	for i := range t.NumField() {
		field := t.Field(i)
		value := v.Field(i)

		if !field.IsExported() {
			continue
		}

		if field.Type.Kind() == reflect.Struct {
			if err := parseStruct(namespace, prefix+field.Tag.Get("envPrefix"), value); err != nil {
				return err
			}

			continue
		}

		if err := parseField(namespace, prefix, field, value); err != nil {
			return fmt.Errorf("parse field: %w", err)
		}
	}

	return nil
}

func lookup(namespace, name string) (string, bool) {
	parts := strings.Split(namespace, "_")

	for i := len(parts); i > 0; i-- {
		ns := strings.Join(parts[:i], "_")
		if ns == "" {
			continue
		}

		if value, ok := os.LookupEnv(ns + "_" + name); ok {
			return value, true
		}
	}

	return os.LookupEnv(name)
}

//nolint:cyclop
func parseField(namespace, prefix string, field reflect.StructField, value reflect.Value) error {
	envTag := field.Tag.Get("env")
	if envTag == "" {
		return nil
	}

	raw, ok := lookup(namespace, prefix+envTag)
	if !ok {
		def, hasDefault := field.Tag.Lookup("default")
		if !hasDefault {
			return fmt.Errorf("%w: %s", ErrVarNotSet, prefix+envTag)
		}

		raw = def
	}

	//nolint:exhaustive
	switch field.Type.Kind() {
	case reflect.String:
		value.SetString(raw)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, field.Type.Bits())
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envTag, err)
		}

		value.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, field.Type.Bits())
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envTag, err)
		}

		value.SetUint(n)
	case reflect.Float32, reflect.Float64:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), field.Type.Bits())
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envTag, err)
		}

		value.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", envTag, err)
		}

		value.SetBool(b)
	default:
		return fmt.Errorf("%w: %s (%v)", ErrUnsupportedVarType, envTag, field.Type.Kind())
	}

	return nil
}
