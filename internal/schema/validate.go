package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Violation describes one failed constraint.
type Violation struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Field == "" {
		return v.Message
	}
	return v.Field + " " + v.Message
}

// ValidationError lists every constraint a payload violated.
type ValidationError struct {
	Kind       Kind
	Violations []Violation
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	noun := "violations"
	if len(parts) == 1 {
		noun = "violation"
	}
	return fmt.Sprintf("%s failed validation (%d %s): %s", e.Kind.Label(), len(parts), noun, strings.Join(parts, "; "))
}

// Fields returns the field paths of all violations in report order.
func (e *ValidationError) Fields() []string {
	if e == nil {
		return nil
	}
	fields := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		fields = append(fields, v.Field)
	}
	return fields
}

// Validate decodes raw JSON as the given kind and checks every constraint.
// The returned value is a SeasonBlueprint or an EpisodeOutline.
func Validate(raw []byte, kind Kind) (any, error) {
	switch kind {
	case KindSeasonBlueprint:
		return DecodeBlueprint(raw)
	case KindEpisodeOutline:
		return DecodeEpisode(raw)
	default:
		return nil, fmt.Errorf("unknown schema kind %q", kind)
	}
}

// DecodeBlueprint decodes and validates a season blueprint.
func DecodeBlueprint(raw []byte) (SeasonBlueprint, error) {
	var bp SeasonBlueprint
	if err := decodeAndCheck(raw, KindSeasonBlueprint, &bp); err != nil {
		return SeasonBlueprint{}, err
	}
	return bp, nil
}

// DecodeEpisode decodes and validates an episode outline.
func DecodeEpisode(raw []byte) (EpisodeOutline, error) {
	var ep EpisodeOutline
	if err := decodeAndCheck(raw, KindEpisodeOutline, &ep); err != nil {
		return EpisodeOutline{}, err
	}
	return ep, nil
}

func decodeAndCheck(raw []byte, kind Kind, target any) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return &ValidationError{Kind: kind, Violations: []Violation{{Rule: "json", Message: "payload is empty"}}}
	}
	conformed, typed, err := conformJSON(trimmed, reflect.TypeOf(target).Elem())
	if err != nil {
		return &ValidationError{Kind: kind, Violations: []Violation{decodeViolation(err)}}
	}
	if conformed == nil {
		return &ValidationError{Kind: kind, Violations: typed}
	}
	if err := json.Unmarshal(conformed, target); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return &ValidationError{Kind: kind, Violations: []Violation{decodeViolation(err)}}
		}
		typed = append(typed, decodeViolation(err))
	}

	var checked []Violation
	var verr *ValidationError
	if err := check(kind, reflect.ValueOf(target).Elem().Interface()); errors.As(err, &verr) {
		checked = verr.Violations
	}
	violations := mergeViolations(typed, checked)
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Kind: kind, Violations: violations}
}

func decodeViolation(err error) Violation {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return Violation{
			Field:   typeErr.Field,
			Rule:    "type",
			Message: fmt.Sprintf("must be %s (got %s)", typeErr.Type, typeErr.Value),
		}
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return Violation{Rule: "json", Message: fmt.Sprintf("json decode failed at offset %d: %v", syntaxErr.Offset, err)}
	}
	return Violation{Rule: "json", Message: "json decode failed: " + err.Error()}
}

func check(kind Kind, value any) error {
	err := validatorInstance().Struct(value)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Kind: kind, Violations: []Violation{{Rule: "internal", Message: err.Error()}}}
	}
	violations := make([]Violation, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, translate(fe))
	}
	return &ValidationError{Kind: kind, Violations: violations}
}

var validatorInstance = sync.OnceValue(newValidator)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	mustRegister(v, "notblank", notBlank)
	mustRegister(v, "between", between)
	v.RegisterStructValidation(episodeTitlesMatchCount, SeasonBlueprint{})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func notBlank(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.String {
		return true
	}
	return strings.TrimSpace(field.String()) != ""
}

func between(fl validator.FieldLevel) bool {
	lo, hi, ok := parseBounds(fl.Param())
	if !ok {
		return false
	}
	n, ok := measure(fl.Field())
	if !ok {
		return false
	}
	return n >= lo && n <= hi
}

func episodeTitlesMatchCount(sl validator.StructLevel) {
	bp, ok := sl.Current().Interface().(SeasonBlueprint)
	if !ok {
		return
	}
	if len(bp.EpisodeTitles) != bp.EpisodeCount {
		sl.ReportError(bp.EpisodeTitles, "episode_titles", "EpisodeTitles", "titles_match_count", strconv.Itoa(bp.EpisodeCount))
	}
}

func parseBounds(param string) (int, int, bool) {
	loText, hiText, found := strings.Cut(param, ":")
	if !found {
		return 0, 0, false
	}
	lo, err := strconv.Atoi(loText)
	if err != nil {
		return 0, 0, false
	}
	hi, err := strconv.Atoi(hiText)
	if err != nil {
		return 0, 0, false
	}
	return lo, hi, true
}

// measure returns the integer value of numeric fields or the length of
// collections and strings.
func measure(field reflect.Value) (int, bool) {
	switch field.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return int(field.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return int(field.Uint()), true
	case reflect.Slice, reflect.Array, reflect.Map:
		return field.Len(), true
	case reflect.String:
		return len([]rune(field.String())), true
	default:
		return 0, false
	}
}

func translate(fe validator.FieldError) Violation {
	field := fieldPath(fe.Namespace())
	actual, _ := measure(reflect.ValueOf(fe.Value()))
	collection := isCollection(fe.Kind())

	var msg string
	switch fe.Tag() {
	case "notblank":
		msg = "is required and must not be blank"
	case "required":
		msg = "is required"
	case "between":
		lo, hi, _ := parseBounds(fe.Param())
		if collection {
			msg = fmt.Sprintf("must contain between %d and %d items (got %d)", lo, hi, actual)
		} else {
			msg = fmt.Sprintf("must be between %d and %d (got %d)", lo, hi, actual)
		}
	case "min":
		if collection {
			msg = fmt.Sprintf("must contain at least %s item(s) (got %d)", fe.Param(), actual)
		} else {
			msg = fmt.Sprintf("must be at least %s (got %d)", fe.Param(), actual)
		}
	case "titles_match_count":
		msg = fmt.Sprintf("must contain exactly episode_count titles (expected %s, got %d)", fe.Param(), actual)
	default:
		msg = fmt.Sprintf("failed %s rule", fe.Tag())
	}
	return Violation{Field: field, Rule: fe.Tag(), Message: msg}
}

func isCollection(kind reflect.Kind) bool {
	return kind == reflect.Slice || kind == reflect.Array || kind == reflect.Map
}

// fieldPath drops the leading struct type name from a validator namespace.
func fieldPath(namespace string) string {
	_, rest, found := strings.Cut(namespace, ".")
	if !found {
		return namespace
	}
	return rest
}
