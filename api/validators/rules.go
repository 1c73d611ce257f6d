package validators

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/angelmondragon/csemotors/pkg/security"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

// InvalidError marks a custom rule failure that belongs in the field's error list.
type InvalidError struct {
	Message string
}

func (e *InvalidError) Error() string { return e.Message }

// Invalid returns the error a custom rule uses to reject a value.
func Invalid(msg string) error {
	return &InvalidError{Message: msg}
}

// CustomFunc checks a sanitized value. It may consult the sanitized form so far.
type CustomFunc func(ctx context.Context, value string, form url.Values) error

type stepKind int

const (
	stepSanitize stepKind = iota
	stepCheck
	stepBail
)

type step struct {
	kind     stepKind
	sanitize func(string) string
	check    func(ctx context.Context, value string, form url.Values) error
}

// FieldRule is an ordered chain of sanitizers and checks for one form field.
type FieldRule struct {
	name   string
	secret bool
	steps  []step
}

// Field starts a rule chain for the named form field.
func Field(name string) *FieldRule {
	return &FieldRule{name: name}
}

// Name returns the field name.
func (f *FieldRule) Name() string { return f.name }

// Secret keeps the value out of the values echoed back to views.
func (f *FieldRule) Secret() *FieldRule {
	f.secret = true
	return f
}

// Trim strips surrounding whitespace.
func (f *FieldRule) Trim() *FieldRule {
	return f.sanitizer(strings.TrimSpace)
}

// NormalizeEmail trims and lowercases the value.
func (f *FieldRule) NormalizeEmail() *FieldRule {
	return f.sanitizer(func(v string) string {
		return strings.ToLower(strings.TrimSpace(v))
	})
}

// Bail stops evaluating the rest of the chain once the field has an error.
func (f *FieldRule) Bail() *FieldRule {
	f.steps = append(f.steps, step{kind: stepBail})
	return f
}

// Required rejects an empty value.
func (f *FieldRule) Required(msg string) *FieldRule {
	return f.rule(msg, func(v string) bool { return v != "" })
}

// Length bounds the number of characters. A non-positive max means unbounded.
func (f *FieldRule) Length(min, max int, msg string) *FieldRule {
	return f.rule(msg, func(v string) bool {
		n := utf8.RuneCountInString(v)
		return n >= min && (max <= 0 || n <= max)
	})
}

// Int requires a base-10 integer within [min, max].
func (f *FieldRule) Int(min, max int, msg string) *FieldRule {
	return f.rule(msg, func(v string) bool {
		n, err := strconv.Atoi(v)
		return err == nil && n >= min && n <= max
	})
}

// Float requires a decimal number no smaller than min.
func (f *FieldRule) Float(min float64, msg string) *FieldRule {
	floor := decimal.NewFromFloat(min)
	return f.rule(msg, func(v string) bool {
		if validate.Var(v, "required,numeric") != nil {
			return false
		}
		d, err := decimal.NewFromString(v)
		return err == nil && d.GreaterThanOrEqual(floor)
	})
}

// Matches requires the value to match pattern.
func (f *FieldRule) Matches(pattern *regexp.Regexp, msg string) *FieldRule {
	return f.rule(msg, pattern.MatchString)
}

// Email requires a syntactically valid address.
func (f *FieldRule) Email(msg string) *FieldRule {
	return f.tag("required,email", msg)
}

// Alphanumeric requires ASCII letters and digits only.
func (f *FieldRule) Alphanumeric(msg string) *FieldRule {
	return f.tag("required,alphanum", msg)
}

// StrongPassword enforces the password policy.
func (f *FieldRule) StrongPassword(policy security.PasswordPolicy, msg string) *FieldRule {
	return f.rule(msg, policy.Satisfied)
}

// Custom runs fn; an InvalidError becomes a field error, any other error aborts validation.
func (f *FieldRule) Custom(fn CustomFunc) *FieldRule {
	f.steps = append(f.steps, step{kind: stepCheck, check: fn})
	return f
}

func (f *FieldRule) sanitizer(fn func(string) string) *FieldRule {
	f.steps = append(f.steps, step{kind: stepSanitize, sanitize: fn})
	return f
}

func (f *FieldRule) tag(tag, msg string) *FieldRule {
	return f.rule(msg, func(v string) bool { return validate.Var(v, tag) == nil })
}

func (f *FieldRule) rule(msg string, ok func(string) bool) *FieldRule {
	f.steps = append(f.steps, step{kind: stepCheck, check: func(_ context.Context, v string, _ url.Values) error {
		if ok(v) {
			return nil
		}
		return Invalid(msg)
	}})
	return f
}

// Rules is a named set of field rules evaluated together.
type Rules struct {
	Name   string
	Fields []*FieldRule
}

// FieldError is one message attached to one field.
type FieldError struct {
	Field   string
	Message string
}

// Result holds sanitized values and the ordered error set of one evaluation.
type Result struct {
	Form    string
	values  url.Values
	secrets map[string]bool
	Errors  []FieldError
}

// Valid reports whether no field produced an error.
func (r *Result) Valid() bool {
	return r == nil || len(r.Errors) == 0
}

// Value returns the sanitized value of field.
func (r *Result) Value(field string) string {
	if r == nil {
		return ""
	}
	return r.values.Get(field)
}

// Int returns the sanitized value of field parsed as an int, or 0.
func (r *Result) Int(field string) int {
	n, err := strconv.Atoi(r.Value(field))
	if err != nil {
		return 0
	}
	return n
}

// Decimal returns the sanitized value of field as a decimal, or zero.
func (r *Result) Decimal(field string) decimal.Decimal {
	d, err := decimal.NewFromString(r.Value(field))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// PublicValues returns the submitted values safe to echo back into a form.
func (r *Result) PublicValues() map[string]string {
	out := map[string]string{}
	if r == nil {
		return out
	}
	for key := range r.values {
		if r.secrets[key] {
			continue
		}
		out[key] = r.values.Get(key)
	}
	return out
}

// Messages returns every error message in evaluation order, or nil when the form passed.
func (r *Result) Messages() []string {
	if r == nil || len(r.Errors) == 0 {
		return nil
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// FieldMessages returns the messages recorded against field.
func (r *Result) FieldMessages(field string) []string {
	if r == nil {
		return nil
	}
	var msgs []string
	for _, e := range r.Errors {
		if e.Field == field {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

// Validate evaluates every field rule against form. Multi-valued fields use their first value.
// The returned error is non-nil only when a custom rule failed for a reason other than Invalid.
func (rs Rules) Validate(ctx context.Context, form url.Values) (*Result, error) {
	res := &Result{Form: rs.Name, values: url.Values{}, secrets: map[string]bool{}}
	for key, vals := range form {
		if len(vals) > 0 {
			res.values.Set(key, vals[0])
		}
	}

	for _, field := range rs.Fields {
		if field.secret {
			res.secrets[field.name] = true
		}
		value := res.values.Get(field.name)
		failed := false
	chain:
		for _, st := range field.steps {
			switch st.kind {
			case stepSanitize:
				value = st.sanitize(value)
				res.values.Set(field.name, value)
			case stepBail:
				if failed {
					break chain
				}
			case stepCheck:
				err := st.check(ctx, value, res.values)
				if err == nil {
					continue
				}
				var invalid *InvalidError
				if !errors.As(err, &invalid) {
					return nil, fmt.Errorf("validate %s.%s: %w", rs.Name, field.name, err)
				}
				failed = true
				res.Errors = append(res.Errors, FieldError{Field: field.name, Message: invalid.Message})
			}
		}
	}
	return res, nil
}
