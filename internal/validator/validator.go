// Package validator collects field-level validation errors for request
// payloads before they reach the service layer.
package validator

import "regexp"

var emailRegexp = regexp.MustCompile("^[a-zA-Z0-9.!#$%&'*+/=?^_`{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)*$")

// Validator accumulates per-field error messages. The first failing check
// for a field wins; later checks for the same field are ignored.
type Validator struct {
	errors map[string]string
}

// New creates an empty Validator.
func New() *Validator {
	return &Validator{
		errors: make(map[string]string),
	}
}

// Valid reports whether no checks have failed.
func (v *Validator) Valid() bool {
	return len(v.errors) == 0
}

// Errors returns the accumulated field errors.
func (v *Validator) Errors() map[string]string {
	return v.errors
}

// Check records msg under field when cond is false.
func (v *Validator) Check(cond bool, field, msg string) {
	if cond {
		return
	}
	if _, ok := v.errors[field]; !ok {
		v.errors[field] = msg
	}
}

// CheckEmail validates a required email address field.
func (v *Validator) CheckEmail(email string) {
	v.Check(email != "", "email", "must be provided")
	v.Check(email == "" || emailRegexp.MatchString(email), "email", "must be a valid email address")
}

// CheckPassword validates a required password field.
func (v *Validator) CheckPassword(password string) {
	v.Check(password != "", "password", "must be provided")
	v.Check(password == "" || len(password) >= 8, "password", "must be at least 8 characters long")
	v.Check(len(password) <= 72, "password", "must be at most 72 characters long")
}
