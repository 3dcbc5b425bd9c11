// Package schema turns an extracted JSON payload into a typed feature result.
//
// Validation runs in four steps, all keyed on the requested feature:
//
//  1. normalize: coerce known format variations and back-fill optional
//     fields from the request (topic, difficulty, limit)
//  2. check the normalized tree against the feature's JSON Schema
//  3. decode into the concrete feature.Result type
//  4. enforce struct invariants with go-playground/validator
//
// Any failure is reported as *Error wrapping ErrValidationFailed. Raw parsed
// JSON never leaves this package.
package schema

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/learnpath/learnpath/internal/extract"
	"github.com/learnpath/learnpath/internal/feature"
)

// ErrValidationFailed is matched by every *Error.
var ErrValidationFailed = errors.New("validation failed")

// Error describes why a payload could not be turned into a result.
type Error struct {
	Feature feature.Feature
	Stage   string // normalize, shape, decode, invariant
	Reason  string
	Err     error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s %s: %s", e.Feature, e.Stage, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is ErrValidationFailed.
func (e *Error) Is(target error) bool { return target == ErrValidationFailed }

func fail(f feature.Feature, stage, reason string, err error) *Error {
	return &Error{Feature: f, Stage: stage, Reason: reason, Err: err}
}

// Validator validates payloads for every feature. The zero value is ready to
// use and safe for concurrent use.
type Validator struct{}

// New returns a Validator.
func New() *Validator { return &Validator{} }

// Validate normalizes p for req.Feature and returns the typed result.
func (v *Validator) Validate(p extract.Payload, req feature.Request) (feature.Result, error) {
	f := req.Feature
	norm, ok := normalizers[f]
	if !ok {
		return nil, fail(f, "normalize", "unknown feature", nil)
	}

	value, err := norm(deepCopy(p.Value), req)
	if err != nil {
		return nil, err
	}

	compiled, err := compiledShape(f)
	if err != nil {
		return nil, fail(f, "shape", "compile schema", err)
	}
	if err := compiled.Validate(value); err != nil {
		return nil, fail(f, "shape", "does not match schema", err)
	}

	res, err := decode(f, value)
	if err != nil {
		return nil, fail(f, "decode", "typed decode", err)
	}

	if err := Check(res); err != nil {
		return nil, err
	}
	return res, nil
}

// Revalidate serializes res and runs it back through Validate. A result the
// pipeline hands out must always pass.
func (v *Validator) Revalidate(res feature.Result, req feature.Request) (feature.Result, error) {
	b, err := json.Marshal(res)
	if err != nil {
		return nil, fail(req.Feature, "decode", "marshal result", err)
	}
	parsed, ok := extract.Parse(string(b))
	if !ok {
		return nil, fail(req.Feature, "decode", "result is not a JSON object or array", nil)
	}
	return v.Validate(extract.Payload{Value: parsed, Strategy: extract.Direct}, req)
}

func decode(f feature.Feature, v any) (feature.Result, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var target any
	switch f {
	case feature.LearningStyle:
		target = &feature.LearningStyleResult{}
	case feature.ContentRecommendation:
		target = &feature.Recommendations{}
	case feature.WeaknessAnalysis:
		target = &feature.WeaknessAnalysisResult{}
	case feature.MistakeAnalysis:
		target = &feature.MistakeAnalysisResult{}
	case feature.AdaptiveTest:
		target = &feature.AdaptiveTestResult{}
	case feature.LearningAnalysis:
		target = &feature.LearningAnalysisResult{}
	default:
		return nil, fmt.Errorf("no result type for %q", f)
	}
	if err := json.Unmarshal(b, target); err != nil {
		return nil, err
	}

	if recs, ok := target.(*feature.Recommendations); ok {
		return *recs, nil
	}
	return target.(feature.Result), nil
}

// schemaCache caches compiled JSON schemas by feature.
var schemaCache sync.Map // map[feature.Feature]*jsonschema.Schema

// compiledShape returns a cached compiled schema or compiles and caches it.
func compiledShape(f feature.Feature) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(f); ok {
		return cached.(*jsonschema.Schema), nil
	}

	src, ok := shapes[f]
	if !ok {
		return nil, fmt.Errorf("no schema for %q", f)
	}
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://%s.json", f)
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	actual, _ := schemaCache.LoadOrStore(f, compiled)
	return actual.(*jsonschema.Schema), nil
}

var (
	structValidate *validator.Validate
	structOnce     sync.Once
)

// structValidator returns the shared validator instance.
func structValidator() *validator.Validate {
	structOnce.Do(func() {
		structValidate = validator.New(validator.WithRequiredStructEnabled())
		structValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
		structValidate.RegisterStructValidation(questionOptions, feature.Question{})
	})
	return structValidate
}

// questionOptions requires at least two options on a choice question.
func questionOptions(sl validator.StructLevel) {
	q := sl.Current().Interface().(feature.Question)
	if q.QuestionType == feature.QuestionChoice && len(q.Options) < 2 {
		sl.ReportError(q.Options, "options", "Options", "choice_options", "")
	}
}

// Check enforces the struct-level invariants of a result.
func Check(res feature.Result) error {
	if res == nil {
		return fail("", "invariant", "nil result", nil)
	}

	v := structValidator()
	var err error
	switch r := res.(type) {
	case feature.Recommendations:
		err = v.Var(r, "min=1,dive")
	default:
		err = v.Struct(r)
	}
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return fail(res.Feature(), "invariant",
			fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()), err)
	}
	return fail(res.Feature(), "invariant", "struct validation", err)
}
