package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// String returns args[key] as a string. A missing key yields def.
func String(args map[string]any, key, def string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidArgType, key, v)
	}
	return s, nil
}

// RequiredString is String that rejects a missing or empty value.
func RequiredString(args map[string]any, key string) (string, error) {
	s, err := String(args, key, "")
	if err != nil {
		return "", err
	}
	if s == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingRequiredArg, key)
	}
	return s, nil
}

// Int returns args[key] as an int. JSON numbers decode as float64, so integral
// floats, json.Number and numeric strings are accepted too.
func Int(args map[string]any, key string, def int) (int, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) {
			return 0, fmt.Errorf("%w: %s must be an integer, got %v", ErrInvalidArgType, key, n)
		}
		return int(n), nil
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidArgType, key, err)
		}
		return int(i), nil
	case string:
		i, err := strconv.Atoi(n)
		if err != nil {
			return 0, fmt.Errorf("%w: %s must be an integer, got %q", ErrInvalidArgType, key, n)
		}
		return i, nil
	default:
		return 0, fmt.Errorf("%w: %s must be an integer, got %T", ErrInvalidArgType, key, v)
	}
}

// Bool returns args[key] as a bool. "true" and "false" strings are accepted.
func Bool(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return def, nil
	}
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(b)
		if err != nil {
			return false, fmt.Errorf("%w: %s must be a boolean, got %q", ErrInvalidArgType, key, b)
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidArgType, key, v)
	}
}

// checkType reports whether v fits the schema type name.
func checkType(typ string, v any) bool {
	switch typ {
	case "string":
		_, ok := v.(string)
		return ok
	case "integer":
		_, err := Int(map[string]any{"v": v}, "v", 0)
		return err == nil
	case "boolean":
		_, err := Bool(map[string]any{"v": v}, "v", false)
		return err == nil
	default:
		return true
	}
}
