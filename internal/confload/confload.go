// Package confload maps TOML configuration onto tagged structs. It backs the
// file loading and "key=value" override layers of glog and fetch.
package confload

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/lixenwraith/config"
)

// Load reads the TOML file at path and copies every key under prefix into the
// toml-tagged fields of dst, a pointer to a struct. Fields without a value in the
// file keep their current contents. A missing file is not an error.
func Load(path, prefix string, dst any) error {
	v, err := structValue(dst)
	if err != nil {
		return err
	}

	loader := config.New()

	// Register the struct to enable proper unmarshaling
	if err := loader.RegisterStruct(prefix, v.Interface()); err != nil {
		return fmt.Errorf("failed to register config struct: %w", err)
	}

	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	return extract(loader, prefix, v)
}

// extract copies loader values into the struct fields
func extract(loader *config.Config, prefix string, v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := tomlTag(field)
		if tag == "" {
			continue
		}

		val, found := loader.Get(prefix + tag)
		if !found {
			continue // Keep current value
		}

		if err := SetField(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}
	return nil
}

// ApplyOverrides sets fields of dst by toml tag from typed values
func ApplyOverrides(dst any, overrides map[string]any) error {
	v, err := structValue(dst)
	if err != nil {
		return err
	}
	fields := fieldMap(v)

	for key, value := range overrides {
		fieldValue, exists := fields[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := SetField(fieldValue, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// SetString sets the field of dst tagged key from its string form
func SetString(dst any, key, value string) error {
	v, err := structValue(dst)
	if err != nil {
		return err
	}
	field, exists := fieldMap(v)[key]
	if !exists {
		return fmt.Errorf("unknown configuration key '%s'", key)
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(value)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s '%s': %w", key, value, err)
		}
		field.SetInt(n)
	case reflect.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid float value for %s '%s': %w", key, value, err)
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s '%s': %w", key, value, err)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("unsupported field type for %s: %v", key, field.Kind())
	}
	return nil
}

// SetField sets a reflect.Value with proper type conversion
func SetField(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		strVal, ok := value.(string)
		if !ok {
			return fmt.Errorf("expected string, got %T", value)
		}
		field.SetString(strVal)

	case reflect.Int, reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Float64:
		switch v := value.(type) {
		case float64:
			field.SetFloat(v)
		case int64:
			field.SetFloat(float64(v))
		default:
			return fmt.Errorf("expected float64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// ParseKeyValue splits a "key=value" string
func ParseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmt.Errorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

// CombineErrors folds override errors into one numbered error
func CombineErrors(prefix string, errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	if len(errs) == 1 {
		return errs[0]
	}

	var sb strings.Builder
	sb.WriteString(prefix)
	sb.WriteString("multiple configuration errors:")
	for i, err := range errs {
		// Drop the per-error prefix to avoid duplication
		msg := strings.TrimPrefix(err.Error(), prefix)
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, msg))
	}
	return errors.New(sb.String())
}

func structValue(dst any) (reflect.Value, error) {
	v := reflect.ValueOf(dst)
	if v.Kind() != reflect.Pointer || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return reflect.Value{}, fmt.Errorf("config target must be a non-nil struct pointer, got %T", dst)
	}
	return v.Elem(), nil
}

func fieldMap(v reflect.Value) map[string]reflect.Value {
	t := v.Type()
	fields := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := tomlTag(t.Field(i)); tag != "" {
			fields[tag] = v.Field(i)
		}
	}
	return fields
}

func tomlTag(f reflect.StructField) string {
	tag := f.Tag.Get("toml")
	if tag == "-" {
		return ""
	}
	name, _, _ := strings.Cut(tag, ",")
	return name
}
