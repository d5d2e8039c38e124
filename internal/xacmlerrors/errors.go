// Package xacmlerrors collects the PDP's sentinel errors: load-time and
// request-level failures the caller can match against with errors.Is,
// distinct from the Indeterminate values runtime evaluation produces.
// The loaders and pdp.Init return their own fmt.Errorf errors and do not
// wrap these values, so errors.Is against them does not match the
// errors those functions return.
package xacmlerrors

import "errors"

var (
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrDuplicatePolicyID   = errors.New("duplicate policy identifier")
	ErrUnresolvedReference = errors.New("unresolved policy reference")
	ErrInvalidPolicyXML    = errors.New("invalid policy XML")
	ErrInvalidRequestXML   = errors.New("invalid request XML")
	ErrUnknownCombiningAlg = errors.New("unknown combining algorithm")
	ErrUnknownFunction     = errors.New("unknown function")
	ErrStoreUnavailable    = errors.New("policy store unavailable")
	ErrInternal            = errors.New("internal server error")
)
