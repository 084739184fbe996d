package config

import (
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/exception"
	"github.com/tigerroll/daioe-scb/pkg/batch/support/util/logger"
)

const moduleName = "config"

// LoadConfig builds the configuration in four layers, each overriding the previous one:
// defaults from NewConfig, the embedded YAML, the optional override YAML files,
// and SURFIN_* environment variables (after loading envFilePath with godotenv).
// The result is validated before it is returned.
func LoadConfig(envFilePath string, embedded EmbeddedConfig, overrideFiles ...string) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Debugf(".env file (%s) not loaded: %v", envFilePath, err)
		}
	}

	expander := NewOsEnvironmentExpander()
	cfg := NewConfig()

	if err := unmarshalInto(cfg, embedded, expander); err != nil {
		return nil, exception.NewConfigError(moduleName, "failed to unmarshal embedded config", err)
	}
	for _, path := range overrideFiles {
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, exception.NewConfigError(moduleName, fmt.Sprintf("failed to read config file %s", path), err)
		}
		if err := unmarshalInto(cfg, raw, expander); err != nil {
			return nil, exception.NewConfigError(moduleName, fmt.Sprintf("failed to unmarshal config file %s", path), err)
		}
	}

	if err := loadStructFromEnv(reflect.ValueOf(cfg).Elem(), ""); err != nil {
		return nil, exception.NewConfigError(moduleName, "failed to load config from environment variables", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// unmarshalInto decodes raw YAML over cfg. Keys absent from raw keep their current values,
// so a boolean explicitly set to false in YAML overrides a true default.
func unmarshalInto(cfg *Config, raw []byte, expander EnvironmentExpander) error {
	if len(raw) == 0 {
		return nil
	}
	expanded, err := expander.Expand(raw)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(expanded, cfg)
}

var validate = validator.New()

// Validate checks cfg against its validate tags and reports every violation at once.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return exception.NewConfigError(moduleName, "invalid configuration", err)
	}
	var c exception.Collector
	for _, fe := range verrs {
		c.Addf("%s failed '%s' (value: %v)", fe.Namespace(), fe.Tag(), fe.Value())
	}
	return exception.NewConfigError(moduleName, "invalid configuration", c.ErrorOrNil())
}

// loadStructFromEnv overrides fields from environment variables named after their yaml tags.
// For example surfin.pipeline.min_year is read from SURFIN_PIPELINE_MIN_YEAR.
func loadStructFromEnv(val reflect.Value, prefix string) error {
	typ := val.Type()
	for i := 0; i < typ.NumField(); i++ {
		field := val.Field(i)
		fieldType := typ.Field(i)
		yamlTag := strings.Split(fieldType.Tag.Get("yaml"), ",")[0]
		if yamlTag == "" || yamlTag == "-" {
			continue
		}
		envVarName := strings.ToUpper(prefix + yamlTag)

		if field.Kind() == reflect.Struct {
			if err := loadStructFromEnv(field, envVarName+"_"); err != nil {
				return err
			}
			continue
		}

		envValue, exists := os.LookupEnv(envVarName)
		if !exists {
			continue
		}
		if err := setField(field, envValue); err != nil {
			return fmt.Errorf("failed to set field '%s' from env var '%s': %w", fieldType.Name, envVarName, err)
		}
	}
	return nil
}

// setField converts value to the kind of field. Unsupported kinds are left untouched.
func setField(field reflect.Value, value string) error {
	if !field.CanSet() {
		return nil
	}
	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return err
		}
		field.SetInt(intValue)
	case reflect.Float64, reflect.Float32:
		floatValue, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		field.SetFloat(floatValue)
	case reflect.Bool:
		boolValue, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		field.SetBool(boolValue)
	case reflect.Slice:
		if field.Type().Elem().Kind() == reflect.String {
			parts := strings.Split(value, ",")
			for i := range parts {
				parts[i] = strings.TrimSpace(parts[i])
			}
			field.Set(reflect.ValueOf(parts))
		}
	}
	return nil
}
