package audit

import "github.com/go-playground/validator/v10"

// Query is the /audit endpoint's parameter set, bound from the raw HTTP
// query string. From/To carry the time bounds as their original string
// form (parsed separately with the RFC3339 helper) so validation can
// reject an empty/oversized filter before any store round-trip.
type Query struct {
	From     string `validate:"required"`
	To       string `validate:"required"`
	Subject  string `validate:"omitempty,max=256"`
	Resource string `validate:"omitempty,max=256"`
}

var validate = validator.New()

// ValidateQuery runs go-playground/validator's struct-tag pass over q,
// ahead of the RFC3339 parse and the store query itself.
func ValidateQuery(q Query) error {
	return validate.Struct(q)
}
