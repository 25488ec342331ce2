package employee

import "fmt"

// Condition names a validation failure kind within the message catalog.
type Condition string

const (
	CondRequired  Condition = "required"
	CondNull      Condition = "null"
	CondBlank     Condition = "blank"
	CondInvalid   Condition = "invalid"
	CondMaxLength Condition = "max_length"
	CondMinLength Condition = "min_length"
	CondExists    Condition = "exists"
)

const (
	FieldFirstName = "first_name"
	FieldLastName  = "last_name"
	FieldEmail     = "email"
	FieldContact   = "contact"
)

const (
	MsgCreated     = "Employee created successfully"
	MsgUpdated     = "Employee updated successfully"
	MsgDeleted     = "Employee deleted successfully"
	MsgNoEmployees = "No employees found"
	MsgNotFound    = "Not found."
	MsgParseError  = "JSON parse error"
)

var validationMessages = map[string]map[Condition]string{
	FieldFirstName: {
		CondBlank:    "first name can not be blank",
		CondInvalid:  "first name must contain only alphabets",
		CondRequired: "first name required",
	},
	FieldLastName: {
		CondBlank:    "last name can not be blank",
		CondInvalid:  "last name must contains only alphabets",
		CondRequired: "last name required",
	},
	FieldEmail: {
		CondBlank:    "Email can not be blank",
		CondRequired: "Email required",
		CondExists:   "email already exist",
		CondInvalid:  "Enter a valid email address.",
	},
	FieldContact: {
		CondBlank:    "contact can not be blank",
		CondRequired: "contact required",
		CondInvalid:  "invalid contact",
	},
}

var fallbackMessages = map[Condition]string{
	CondRequired:  "This field is required.",
	CondNull:      "This field may not be null.",
	CondBlank:     "This field may not be blank.",
	CondInvalid:   "Not a valid string.",
	CondMaxLength: "Ensure this field has no more than %s characters.",
	CondMinLength: "Ensure this field has at least %s characters.",
}

// Message resolves the catalog entry for a field and condition. Length
// conditions take the limit as their single argument.
func Message(field string, cond Condition, args ...interface{}) string {
	if msg, ok := validationMessages[field][cond]; ok {
		return msg
	}
	msg, ok := fallbackMessages[cond]
	if !ok {
		return string(cond)
	}
	if len(args) > 0 {
		return fmt.Sprintf(msg, args...)
	}
	return msg
}
