// Package config builds the depository's runtime configuration from
// environment variables, the same reflection-over-struct-tags approach the
// rest of the stack uses for its service configs.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strconv"
)

// Config is the top level configuration for cmd/depod.
type Config struct {
	EnvName                   string `env:"ENV_NAME"`
	ServerAddress             string `env:"SERVER_ADDRESS"`
	StoreKind                 string `env:"DEPO_STORE_KIND"`
	DSN                       string `env:"DEPO_DSN"`
	MaxPayloadSize            int    `env:"DEPO_MAX_PAYLOAD_SIZE"`
	ContinuationExpirySeconds int    `env:"DEPO_CONTINUATION_EXPIRY_SECONDS"`
	OtelServiceName           string `env:"OTEL_RESOURCE_SERVICE_NAME"`
	OtelExporterEndpoint      string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Defaults applied by FromEnv when the corresponding env var is unset or
// empty.
const (
	DefaultServerAddress             = ":4040"
	DefaultStoreKind                 = "memory"
	DefaultMaxPayloadSize            = 1 << 20 // 1 MiB
	DefaultContinuationExpirySeconds = 600
)

// FromEnv builds a Config from the process environment, applying defaults
// for anything left unset.
func FromEnv() (*Config, error) {
	cfg := &Config{}

	if err := setFromEnvVars(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfg.ServerAddress == "" {
		cfg.ServerAddress = DefaultServerAddress
	}

	if cfg.StoreKind == "" {
		cfg.StoreKind = DefaultStoreKind
	}

	if cfg.MaxPayloadSize == 0 {
		cfg.MaxPayloadSize = DefaultMaxPayloadSize
	}

	if cfg.ContinuationExpirySeconds == 0 {
		cfg.ContinuationExpirySeconds = DefaultContinuationExpirySeconds
	}

	if cfg.StoreKind == "postgres" && cfg.DSN == "" {
		return nil, errors.New("config: DEPO_DSN is required when DEPO_STORE_KIND=postgres")
	}

	return cfg, nil
}

// setFromEnvVars populates every field of s (a pointer to struct) tagged
// `env:"NAME"` from the corresponding environment variable; unset or empty
// variables leave the field untouched. Supported field kinds: string, bool,
// and the integer kinds.
func setFromEnvVars(s any) error {
	v := reflect.ValueOf(s)

	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return errors.New("setFromEnvVars: s must be a pointer to struct")
	}

	t := v.Elem().Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		name, ok := field.Tag.Lookup("env")
		if !ok || name == "" {
			continue
		}

		raw, present := os.LookupEnv(name)
		if !present || raw == "" {
			continue
		}

		fv := v.Elem().Field(i)
		if !fv.CanSet() {
			continue
		}

		switch fv.Kind() {
		case reflect.String:
			fv.SetString(raw)
		case reflect.Bool:
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}

			fv.SetBool(b)
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return fmt.Errorf("env %s: %w", name, err)
			}

			fv.SetInt(n)
		default:
			return fmt.Errorf("env %s: unsupported field kind %s", name, fv.Kind())
		}
	}

	return nil
}
