package model

import "errors"

// ErrMalformedTemplate marks a structural invariant violation in a pathway
// template. Requests carrying a malformed template are rejected before any
// search work starts.
var ErrMalformedTemplate = errors.New("malformed pathway template")
