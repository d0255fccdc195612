package core

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"
)

// lookupType returns the declared type of field for kind, if any.
func lookupType(kind, field string) (TypeTag, bool) {
	c, ok := LookupClass(kind)
	if !ok {
		return "", false
	}
	f, ok := c.Field(field)
	if !ok {
		return "", false
	}
	return f.Type, true
}

// CastString converts a raw textual value for kind.field.
//
// Declared fields are parsed with their type tag and a failure is returned as
// a *CastError. Undeclared fields are inferred: a value with a '.' is tried as
// a float, otherwise as an integer, and anything else becomes the string with
// its surrounding double quotes removed.
func CastString(kind, field, raw string) (any, error) {
	if IsReadOnly(field) {
		return nil, fmt.Errorf("%w: %s", ErrReadOnlyAttribute, field)
	}
	tag, ok := lookupType(kind, field)
	if !ok {
		return infer(raw), nil
	}
	v, err := parseAs(tag, unquote(raw))
	if err != nil {
		return nil, &CastError{Kind: kind, Field: field, Type: tag, Value: raw, Err: err}
	}
	return v, nil
}

// CastValue converts a value decoded from JSON for kind.field. Strings go
// through the same parsers as CastString; other values must convert to the
// declared type without loss. Undeclared fields keep their value.
func CastValue(kind, field string, v any) (any, error) {
	if IsReadOnly(field) {
		return nil, fmt.Errorf("%w: %s", ErrReadOnlyAttribute, field)
	}
	v = Normalize(v)
	tag, ok := lookupType(kind, field)
	if !ok {
		return v, nil
	}
	if s, isString := v.(string); isString {
		out, err := parseAs(tag, unquote(s))
		if err != nil {
			return nil, &CastError{Kind: kind, Field: field, Type: tag, Value: v, Err: err}
		}
		return out, nil
	}
	if out, ok := coerce(tag, v); ok {
		return out, nil
	}
	return nil, &CastError{Kind: kind, Field: field, Type: tag, Value: v}
}

func infer(raw string) any {
	if strings.Contains(raw, ".") {
		if f, err := strconv.ParseFloat(raw, 64); err == nil && isFinite(f) {
			return f
		}
	} else if i, err := strconv.Atoi(raw); err == nil {
		return i
	}
	return unquote(raw)
}

// unquote strips one pair of surrounding double quotes.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// fitsInt reports whether the integral float f converts to int exactly.
func fitsInt(f float64) bool {
	return f == math.Trunc(f) && f >= math.MinInt && f < -float64(math.MinInt)
}

func parseFloat(s string) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if !isFinite(f) {
		return 0, fmt.Errorf("%s is not a finite number", s)
	}
	return f, nil
}

func parseAs(tag TypeTag, s string) (any, error) {
	switch tag {
	case TypeString:
		return s, nil
	case TypeInt:
		return strconv.Atoi(strings.TrimSpace(s))
	case TypeFloat:
		return parseFloat(strings.TrimSpace(s))
	case TypeBool:
		return strconv.ParseBool(strings.TrimSpace(s))
	case TypeStringList:
		return parseList(s)
	case TypeTime:
		return ParseTime(strings.TrimSpace(s))
	default:
		return nil, fmt.Errorf("unsupported type %q", tag)
	}
}

// parseList accepts a JSON array of strings (single quotes allowed) or a
// comma separated list.
func parseList(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}, nil
	}
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &out); err != nil {
			return nil, err
		}
		if out == nil {
			out = []string{}
		}
		return out, nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = unquote(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// coerce converts v to tag when no information is lost.
func coerce(tag TypeTag, v any) (any, bool) {
	switch tag {
	case TypeString:
		s, ok := v.(string)
		return s, ok
	case TypeInt:
		switch x := v.(type) {
		case int:
			return x, true
		case int64:
			return int(x), true
		case float64:
			if fitsInt(x) {
				return int(x), true
			}
		case json.Number:
			if i, err := x.Int64(); err == nil {
				return int(i), true
			}
		}
	case TypeFloat:
		switch x := v.(type) {
		case float64:
			return x, isFinite(x)
		case int:
			return float64(x), true
		case int64:
			return float64(x), true
		case json.Number:
			if f, err := x.Float64(); err == nil && isFinite(f) {
				return f, true
			}
		}
	case TypeBool:
		b, ok := v.(bool)
		return b, ok
	case TypeStringList:
		switch x := v.(type) {
		case []string:
			return slices.Clone(x), true
		case []any:
			out := make([]string, 0, len(x))
			for _, item := range x {
				s, ok := item.(string)
				if !ok {
					return nil, false
				}
				out = append(out, s)
			}
			return out, true
		}
	}
	return nil, false
}

// Normalize turns json.Number values (from a decoder with UseNumber) into int
// when integral and float64 otherwise, recursing into lists and objects.
func Normalize(v any) any {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if f, err := x.Float64(); err == nil {
			return f
		}
		return x.String()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = Normalize(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			out[k] = Normalize(item)
		}
		return out
	default:
		return v
	}
}
