package employee

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() map[string]interface{} {
	return map[string]interface{}{
		"first_name": "Jane",
		"last_name":  "Doe",
		"email":      "jane@x.com",
		"contact":    "1234567890",
	}
}

func checkBody(t *testing.T, body string) map[string]string {
	t.Helper()
	in, err := DecodeInput(strings.NewReader(body))
	require.NoError(t, err)
	return NewValidator().Check(in)
}

func TestValidator_ValidInput(t *testing.T) {
	errs := checkBody(t, `{"first_name":"Jane","last_name":"Doe","email":"jane@x.com","contact":"1234567890"}`)
	assert.Empty(t, errs)
}

func TestValidator_FieldRules(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value interface{}
		want  string
	}{
		{"first name too short", FieldFirstName, "Jo", "Ensure this field has at least 3 characters."},
		{"first name too long", FieldFirstName, strings.Repeat("a", 31), "Ensure this field has no more than 30 characters."},
		{"first name with digit", FieldFirstName, "Jane1", "first name must contain only alphabets"},
		{"first name blank", FieldFirstName, "   ", "first name can not be blank"},
		{"first name empty", FieldFirstName, "", "first name can not be blank"},
		{"first name null", FieldFirstName, nil, "This field may not be null."},
		{"first name bool", FieldFirstName, true, "first name must contain only alphabets"},
		{"last name leading space", FieldLastName, " Doe", "last name must contains only alphabets"},
		{"last name empty", FieldLastName, "", "last name can not be blank"},
		{"last name spaces are not blank", FieldLastName, "   ", "last name must contains only alphabets"},
		{"last name short spaces", FieldLastName, "  ", "Ensure this field has at least 3 characters."},
		{"last name too short", FieldLastName, "Do", "Ensure this field has at least 3 characters."},
		{"email malformed", FieldEmail, "not-an-email", "Enter a valid email address."},
		{"email blank", FieldEmail, "", "Email can not be blank"},
		{"email number", FieldEmail, 12345, "Enter a valid email address."},
		{"contact too short", FieldContact, "12345", "Ensure this field has at least 10 characters."},
		{"contact too long", FieldContact, "12345678901", "Ensure this field has no more than 10 characters."},
		{"contact letters", FieldContact, "12345abcde", "invalid contact"},
		{"contact blank", FieldContact, " ", "contact can not be blank"},
		{"contact object", FieldContact, map[string]interface{}{"n": 1}, "invalid contact"},
		{"contact array", FieldContact, []interface{}{"1"}, "invalid contact"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			payload[tt.field] = tt.value

			in, err := DecodeInput(strings.NewReader(toJSON(t, payload)))
			require.NoError(t, err)

			errs := NewValidator().Check(in)
			assert.Equal(t, map[string]string{tt.field: tt.want}, errs)
		})
	}
}

func TestValidator_MissingFields(t *testing.T) {
	errs := checkBody(t, `{}`)
	assert.Equal(t, map[string]string{
		FieldFirstName: "first name required",
		FieldLastName:  "last name required",
		FieldEmail:     "Email required",
		FieldContact:   "contact required",
	}, errs)
}

func TestValidator_ReportsAllFieldsTogether(t *testing.T) {
	errs := checkBody(t, `{"first_name":"J4","last_name":"Doe","email":"bad","contact":"abc"}`)
	assert.Equal(t, map[string]string{
		FieldFirstName: "Ensure this field has at least 3 characters.",
		FieldEmail:     "Enter a valid email address.",
		FieldContact:   "Ensure this field has at least 10 characters.",
	}, errs)
}

func TestDecodeInput(t *testing.T) {
	t.Run("trims all fields but last name", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(`{"first_name":" Jane ","last_name":"Doe","email":" jane@x.com ","contact":" 1234567890 "}`))
		require.NoError(t, err)

		assert.Equal(t, "Jane", *in.FirstName)
		assert.Equal(t, "Doe", *in.LastName)
		assert.Equal(t, "jane@x.com", *in.Email)
		assert.Equal(t, "1234567890", *in.Contact)
		assert.Empty(t, NewValidator().Check(in))
	})

	t.Run("numbers keep their literal text", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(`{"contact":1234567890}`))
		require.NoError(t, err)
		require.NotNil(t, in.Contact)
		assert.Equal(t, "1234567890", *in.Contact)
	})

	t.Run("unknown fields ignored", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(`{"id":99,"created_at":"2020-01-01"}`))
		require.NoError(t, err)
		assert.Nil(t, in.FirstName)
	})

	t.Run("trailing whitespace allowed", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader("{\"first_name\":\"Jane\"}\n\t "))
		require.NoError(t, err)
		assert.Equal(t, "Jane", *in.FirstName)
	})

	t.Run("empty body", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(""))
		require.NoError(t, err)
		assert.Len(t, NewValidator().Check(in), 4)
	})

	for name, body := range map[string]string{
		"syntax error": `{"first_name":`,
		"array body":   `["Jane"]`,
		"null body":    `null`,
		"string body":  `"Jane"`,
		"trailing data": `{"first_name":"Jane"} trailing`,
		"two objects":   `{"first_name":"Jane"}{"last_name":"Doe"}`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeInput(strings.NewReader(body))
			assert.ErrorIs(t, err, ErrMalformedBody)
		})
	}
}

func TestInput_Merge(t *testing.T) {
	stored := &Employee{
		ID:        1,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@x.com",
		Contact:   "1234567890",
	}

	t.Run("absent fields take stored values", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(`{"first_name":"Janet"}`))
		require.NoError(t, err)

		in.Merge(stored)

		assert.Empty(t, NewValidator().Check(in))
		assert.Equal(t, "Janet", *in.FirstName)
		assert.Equal(t, "Doe", *in.LastName)
		assert.Equal(t, "jane@x.com", *in.Email)
		assert.Equal(t, "1234567890", *in.Contact)
	})

	t.Run("explicit null is not replaced", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(`{"email":null}`))
		require.NoError(t, err)

		in.Merge(stored)

		assert.Equal(t, map[string]string{FieldEmail: "This field may not be null."}, NewValidator().Check(in))
	})

	t.Run("present values are still validated", func(t *testing.T) {
		in, err := DecodeInput(strings.NewReader(`{"contact":"123"}`))
		require.NoError(t, err)

		in.Merge(stored)

		assert.Equal(t, map[string]string{FieldContact: "Ensure this field has at least 10 characters."}, NewValidator().Check(in))
	})
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: map[string]string{FieldEmail: "x", FieldContact: "y"}}
	assert.Equal(t, "validation failed: contact, email", err.Error())
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "email already exist", Message(FieldEmail, CondExists))
	assert.Equal(t, "invalid contact", Message(FieldContact, CondInvalid))
	assert.Equal(t, "Ensure this field has no more than 30 characters.", Message(FieldFirstName, CondMaxLength, "30"))
	assert.Equal(t, "This field may not be null.", Message(FieldLastName, CondNull))
	assert.Equal(t, "unknown", Message(FieldLastName, Condition("unknown")))
}
