package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// maxExactInt is the largest integer a float64 holds without rounding.
const maxExactInt = 1 << 53

// conformJSON decodes raw into a generic tree and aligns it with the shape of
// t. Integer fields accept integral numbers written as floats ("5.0") or as
// numeric strings ("5"). Values of the wrong JSON type are reported as
// violations and dropped so the remaining fields still decode. A nil result
// with violations means the top-level value itself had the wrong type.
func conformJSON(raw []byte, t reflect.Type) ([]byte, []Violation, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("unexpected data after top-level value at offset %d", dec.InputOffset())
	}

	var violations []Violation
	conformed, keep := conform(tree, t, "", &violations)
	if !keep {
		return nil, violations, nil
	}
	out, err := json.Marshal(conformed)
	if err != nil {
		return nil, nil, err
	}
	return out, violations, nil
}

func conform(value any, t reflect.Type, path string, violations *[]Violation) (any, bool) {
	if value == nil {
		return nil, true
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := coerceInt(value)
		if !ok {
			*violations = append(*violations, typeViolation(path, "an integer", value))
			return nil, false
		}
		return n, true
	case reflect.String:
		if _, ok := value.(string); !ok {
			*violations = append(*violations, typeViolation(path, "a string", value))
			return nil, false
		}
		return value, true
	case reflect.Slice:
		items, ok := value.([]any)
		if !ok {
			*violations = append(*violations, typeViolation(path, "an array", value))
			return nil, false
		}
		for i, item := range items {
			conformed, keep := conform(item, t.Elem(), fmt.Sprintf("%s[%d]", path, i), violations)
			if !keep {
				conformed = nil
			}
			items[i] = conformed
		}
		return items, true
	case reflect.Struct:
		obj, ok := value.(map[string]any)
		if !ok {
			*violations = append(*violations, typeViolation(path, "an object", value))
			return nil, false
		}
		for i := 0; i < t.NumField(); i++ {
			field := t.Field(i)
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "" || name == "-" {
				continue
			}
			child, present := obj[name]
			if !present {
				continue
			}
			conformed, keep := conform(child, field.Type, joinPath(path, name), violations)
			if keep {
				obj[name] = conformed
			} else {
				delete(obj, name)
			}
		}
		return obj, true
	default:
		return value, true
	}
}

// coerceInt accepts JSON integers, integral floats, and strings holding
// either. Fractional, non-finite, and out-of-range values are rejected.
func coerceInt(value any) (int64, bool) {
	var text string
	switch v := value.(type) {
	case json.Number:
		text = v.String()
	case string:
		text = strings.TrimSpace(v)
		if text == "" || strings.ContainsAny(text, "xXpP_") {
			return 0, false
		}
	default:
		return 0, false
	}
	if n, err := strconv.ParseInt(text, 10, 64); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > maxExactInt {
		return 0, false
	}
	return int64(f), true
}

func typeViolation(path, want string, value any) Violation {
	return Violation{
		Field:   path,
		Rule:    "type",
		Message: fmt.Sprintf("must be %s (got %s)", want, describeJSON(value)),
	}
}

func describeJSON(value any) string {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v)
	case json.Number:
		return "number " + v.String()
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

// mergeViolations appends validator results to the type violations, skipping
// any that sit on or under a field already reported as the wrong type.
func mergeViolations(typed, checked []Violation) []Violation {
	out := append([]Violation(nil), typed...)
	for _, v := range checked {
		if coveredBy(v.Field, typed) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func coveredBy(field string, typed []Violation) bool {
	for _, t := range typed {
		if t.Field == "" {
			continue
		}
		if field == t.Field || strings.HasPrefix(field, t.Field+".") || strings.HasPrefix(field, t.Field+"[") {
			return true
		}
	}
	return false
}
