package employee

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var (
	ErrMalformedBody = errors.New("malformed request body")

	digitsRegex = regexp.MustCompile(`^[0-9]+$`)
)

// ValidationError carries every failing field with its catalog message.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed: %s", strings.Join(names, ", "))
}

type fieldRule struct {
	name string
	tag  string
	trim bool
}

// fieldRules lists the per-field checks in the order they are reported.
// Tags run left to right and stop at the first failure. last_name is not
// trimmed, so only the empty string counts as blank for it.
var fieldRules = []fieldRule{
	{name: FieldFirstName, tag: "notblank,max=30,min=3,alpha", trim: true},
	{name: FieldLastName, tag: "required,max=30,min=3,alpha", trim: false},
	{name: FieldEmail, tag: "notblank,email", trim: true},
	{name: FieldContact, tag: "notblank,max=10,min=10,digits", trim: true},
}

var tagConditions = map[string]Condition{
	"notblank": CondBlank,
	"required": CondBlank,
	"max":      CondMaxLength,
	"min":      CondMinLength,
	"alpha":    CondInvalid,
	"email":    CondInvalid,
	"digits":   CondInvalid,
}

// Input is a decoded request body. A nil field was absent from the payload.
type Input struct {
	FirstName *string
	LastName  *string
	Email     *string
	Contact   *string

	decodeErrs map[string]string
}

func (in *Input) field(name string) **string {
	switch name {
	case FieldFirstName:
		return &in.FirstName
	case FieldLastName:
		return &in.LastName
	case FieldEmail:
		return &in.Email
	case FieldContact:
		return &in.Contact
	}
	return nil
}

// DecodeInput reads a JSON object body. Strings are taken as-is, numbers are
// coerced to their literal text, null and any other JSON type are recorded as
// field failures. An empty body decodes to an empty input.
func DecodeInput(r io.Reader) (*Input, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	raw := map[string]interface{}{}
	if len(bytes.TrimSpace(body)) > 0 {
		dec := json.NewDecoder(bytes.NewReader(body))
		dec.UseNumber()
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
		}
		if raw == nil {
			return nil, fmt.Errorf("%w: body is not a JSON object", ErrMalformedBody)
		}
		if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: extra data after JSON object", ErrMalformedBody)
		}
	}

	in := &Input{decodeErrs: map[string]string{}}
	for _, rule := range fieldRules {
		value, present := raw[rule.name]
		if !present {
			continue
		}

		var s string
		switch v := value.(type) {
		case nil:
			in.decodeErrs[rule.name] = Message(rule.name, CondNull)
			continue
		case string:
			s = v
		case json.Number:
			s = v.String()
		default:
			in.decodeErrs[rule.name] = Message(rule.name, CondInvalid)
			continue
		}

		if rule.trim {
			s = strings.TrimSpace(s)
		}
		*in.field(rule.name) = &s
	}

	return in, nil
}

// Merge fills every field absent from the input with the stored value.
func (in *Input) Merge(e *Employee) {
	current := map[string]string{
		FieldFirstName: e.FirstName,
		FieldLastName:  e.LastName,
		FieldEmail:     e.Email,
		FieldContact:   e.Contact,
	}
	for _, rule := range fieldRules {
		if _, failed := in.decodeErrs[rule.name]; failed {
			continue
		}
		ptr := in.field(rule.name)
		if *ptr == nil {
			v := current[rule.name]
			*ptr = &v
		}
	}
}

type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	v := validator.New()
	// Both registrations only fail on an empty tag name or nil func.
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	_ = v.RegisterValidation("digits", func(fl validator.FieldLevel) bool {
		return digitsRegex.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Check runs every field rule and returns the failures keyed by field name.
// It never stops at the first failing field.
func (v *Validator) Check(in *Input) map[string]string {
	errs := map[string]string{}
	for _, rule := range fieldRules {
		if msg, failed := in.decodeErrs[rule.name]; failed {
			errs[rule.name] = msg
			continue
		}

		value := *in.field(rule.name)
		if value == nil {
			errs[rule.name] = Message(rule.name, CondRequired)
			continue
		}

		if msg := v.checkValue(rule, *value); msg != "" {
			errs[rule.name] = msg
		}
	}
	return errs
}

func (v *Validator) checkValue(rule fieldRule, value string) string {
	err := v.validate.Var(value, rule.tag)
	if err == nil {
		return ""
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return Message(rule.name, CondInvalid)
	}

	fe := verrs[0]
	cond, ok := tagConditions[fe.Tag()]
	if !ok {
		cond = CondInvalid
	}
	if cond == CondMaxLength || cond == CondMinLength {
		return Message(rule.name, cond, fe.Param())
	}
	return Message(rule.name, cond)
}
