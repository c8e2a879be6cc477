package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func boolValue(key string, value interface{}) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("invalid value type for %s: expected bool, got %T", key, value)
	}
	return b, nil
}

func stringValue(key string, value interface{}) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("invalid value type for %s: expected string, got %T", key, value)
	}
	return s, nil
}

// durationValue accepts a duration string or a number of nanoseconds.
func durationValue(key string, value interface{}) (time.Duration, error) {
	switch v := value.(type) {
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("invalid duration string for %s: %w", key, err)
		}
		return d, nil
	case float64:
		// JSON numbers come as float64
		return time.Duration(v), nil
	case int64:
		return time.Duration(v), nil
	case int:
		return time.Duration(v), nil
	default:
		return 0, fmt.Errorf("invalid value type for %s: expected string or number, got %T", key, value)
	}
}
