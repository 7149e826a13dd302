// Package validation provides input validation for client operations.
//
// Struct tag validation (using the validator library) covers option
// structs; the programmatic Validator covers positional arguments such as
// workspace and repository slugs.
//
//	type ListOptions struct {
//	    PageLen int `validate:"omitempty,min=1,max=100"`
//	}
//	err := validation.ValidateStruct(opts)
package validation
