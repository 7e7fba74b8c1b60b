package template

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NullValue is emitted for null or absent placeholder values.
const NullValue = "(Null)"

// ErrInvalidFormat is returned when a placeholder format spec cannot be applied.
var ErrInvalidFormat = errors.New("invalid format")

const (
	integerVerbs = "bcdoOxXU"
	floatVerbs   = "eEfFgG"
	generalVerbs = "vsqT"
)

// Stringify returns the canonical string form of a scalar event value.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return NullValue
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case fmt.Stringer:
		return val.String()
	}

	if raw, err := json.Marshal(v); err == nil {
		return string(raw)
	}
	return fmt.Sprint(v)
}

// Format applies spec to v. The spec is a fmt directive holding exactly one
// verb, such as "%05d", "%.2f" or "%-10s|"; the leading '%' may be omitted
// when the spec contains no other text. Numeric verbs accept numbers and
// numeric strings.
func Format(spec string, v any) (string, error) {
	if !strings.Contains(spec, "%") {
		spec = "%" + spec
	}

	verb, err := parseDirective(spec)
	if err != nil {
		return "", err
	}

	arg, err := coerce(v, verb)
	if err != nil {
		return "", err
	}

	out := fmt.Sprintf(spec, arg)
	if strings.Contains(out, "%!"+string(verb)+"(") {
		return "", fmt.Errorf("%w: verb %%%c does not apply to %q", ErrInvalidFormat, verb, Stringify(v))
	}
	return out, nil
}

// parseDirective checks that spec has exactly one fmt directive and returns its verb.
func parseDirective(spec string) (rune, error) {
	var verb rune
	found := false

	for i := 0; i < len(spec); i++ {
		if spec[i] != '%' {
			continue
		}
		i++
		if i < len(spec) && spec[i] == '%' {
			continue
		}
		for i < len(spec) && strings.IndexByte("+-# 0", spec[i]) >= 0 {
			i++
		}
		for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
			i++
		}
		if i < len(spec) && spec[i] == '.' {
			i++
			for i < len(spec) && spec[i] >= '0' && spec[i] <= '9' {
				i++
			}
		}
		if i >= len(spec) {
			return 0, fmt.Errorf("%w: %q ends inside a directive", ErrInvalidFormat, spec)
		}

		c := rune(spec[i])
		if !strings.ContainsRune(integerVerbs+floatVerbs+generalVerbs+"t", c) {
			return 0, fmt.Errorf("%w: unsupported verb %q in %q", ErrInvalidFormat, c, spec)
		}
		if found {
			return 0, fmt.Errorf("%w: %q has more than one directive", ErrInvalidFormat, spec)
		}
		verb, found = c, true
	}

	if !found {
		return 0, fmt.Errorf("%w: %q has no directive", ErrInvalidFormat, spec)
	}
	return verb, nil
}

// coerce converts v into an argument that suits verb.
func coerce(v any, verb rune) (any, error) {
	switch {
	case strings.ContainsRune(integerVerbs, verb):
		i, err := toInteger(v)
		if err != nil && (verb == 'x' || verb == 'X') {
			if s, ok := v.(string); ok {
				return s, nil
			}
		}
		return i, err
	case strings.ContainsRune(floatVerbs, verb):
		return toFloat(v)
	case verb == 't':
		return toBool(v)
	case verb == 'T':
		if v == nil {
			return NullValue, nil
		}
		return v, nil
	default:
		return Stringify(v), nil
	}
}

func toInteger(v any) (any, error) {
	switch val := v.(type) {
	case int, int32, int64, uint64:
		return val, nil
	case float64:
		if val == math.Trunc(val) && math.Abs(val) < math.MaxInt64 {
			return int64(val), nil
		}
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i, nil
		}
	case string:
		if i, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64); err == nil {
			return i, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not an integer", ErrInvalidFormat, Stringify(v))
}

func toFloat(v any) (any, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		if f, err := val.Float64(); err == nil {
			return f, nil
		}
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(val), 64); err == nil {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a number", ErrInvalidFormat, Stringify(v))
}

func toBool(v any) (any, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		if b, err := strconv.ParseBool(strings.TrimSpace(val)); err == nil {
			return b, nil
		}
	}
	return nil, fmt.Errorf("%w: %q is not a boolean", ErrInvalidFormat, Stringify(v))
}
