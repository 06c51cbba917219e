// Package config loads typed configuration structs from the environment using viper.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/a-peyrard/gopick/option"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	Options struct {
		prefix   string
		dotEnv   []string
		defaults map[string]any
	}

	// WithDefault is implemented by config structs (or nested config structs) that fill their own
	// zero values once loaded.
	WithDefault interface {
		ApplyDefault()
	}
)

func WithEnvPrefix(prefix string) option.Option[Options] {
	return func(opts *Options) {
		opts.prefix = prefix
	}
}

// WithDotEnv loads the given .env files before reading the environment. Missing files are ignored,
// and variables already present in the environment are never overridden.
func WithDotEnv(paths ...string) option.Option[Options] {
	return func(opts *Options) {
		opts.dotEnv = append(opts.dotEnv, paths...)
	}
}

// WithDefaultValue registers a fallback for a config key, using the dotted field path ("Broker.Uri").
func WithDefaultValue(key string, value any) option.Option[Options] {
	return func(opts *Options) {
		if opts.defaults == nil {
			opts.defaults = make(map[string]any)
		}
		opts.defaults[key] = value
	}
}

// Load builds a T from environment variables named PREFIX_FIELD_NAME, nested structs adding their
// own field name as a segment (PREFIX_BROKER_URI).
func Load[T any](opts ...option.Option[Options]) (*T, error) {
	options := option.Build(&Options{}, opts...)

	if err := loadDotEnv(options.dotEnv); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix(options.prefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, value := range options.defaults {
		v.SetDefault(key, value)
	}

	var vT T
	typ := reflect.TypeOf(vT)
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("unable to load config into %T, a struct is expected", vT)
	}
	bindEnvs(v, options.prefix, typ)

	if err := v.Unmarshal(&vT); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config:\n\t%w", err)
	}

	applyDefaults(reflect.ValueOf(&vT).Elem())

	return &vT, nil
}

func loadDotEnv(paths []string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("unable to load env file %s:\n\t%w", path, err)
		}
	}
	return nil
}

func bindEnvs(v *viper.Viper, envPrefix string, typ reflect.Type, parts ...string) {
	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}
		tag, ok := field.Tag.Lookup("mapstructure")
		if !ok {
			tag = field.Name
		}
		path := append(append([]string{}, parts...), tag)

		fieldTyp := field.Type
		if fieldTyp.Kind() == reflect.Pointer {
			fieldTyp = fieldTyp.Elem()
		}
		if fieldTyp.Kind() == reflect.Struct {
			bindEnvs(v, envPrefix, fieldTyp, path...)
			continue
		}

		envParts := make([]string, len(path))
		for idx, p := range path {
			envParts[idx] = toScreamingSnakeCase(p)
		}
		_ = v.BindEnv(strings.Join(path, "."), mergeWithEnvPrefix(envPrefix, strings.Join(envParts, "_")))
	}
}

// applyDefaults allocates nil nested struct pointers then calls ApplyDefault bottom-up.
func applyDefaults(val reflect.Value) {
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			if !val.CanSet() || val.Type().Elem().Kind() != reflect.Struct {
				return
			}
			val.Set(reflect.New(val.Type().Elem()))
		}
		val = val.Elem()
	}
	if val.Kind() != reflect.Struct {
		return
	}

	for i := 0; i < val.NumField(); i++ {
		if !val.Type().Field(i).IsExported() {
			continue
		}
		field := val.Field(i)
		if field.Kind() == reflect.Struct || (field.Kind() == reflect.Pointer && field.Type().Elem().Kind() == reflect.Struct) {
			applyDefaults(field)
		}
	}

	if val.CanAddr() {
		if d, ok := val.Addr().Interface().(WithDefault); ok {
			d.ApplyDefault()
		}
	}
}

func mergeWithEnvPrefix(envPrefix string, in string) string {
	if envPrefix != "" {
		return strings.ToUpper(envPrefix + "_" + in)
	}

	return strings.ToUpper(in)
}

// toScreamingSnakeCase turns "CustomerId" into "CUSTOMER_ID".
func toScreamingSnakeCase(in string) string {
	in = strings.TrimSpace(in)

	var sb strings.Builder
	sb.Grow(len(in) + len(in)/3)
	for i, b := range []byte(in) {
		write, separate := true, false
		switch {
		case 'a' <= b && b <= 'z':
			b -= 'a' - 'A'
		case 'A' <= b && b <= 'Z', '0' <= b && b <= '9':
			separate = true
		case b == '_' || b == '-':
			write, separate = false, true
		}
		if i > 0 && separate {
			sb.WriteByte('_')
		}
		if write {
			sb.WriteByte(b)
		}
	}
	return sb.String()
}
