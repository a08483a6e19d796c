package models

import "errors"

// ErrInvalidConfiguration is the only fatal condition of the core: a rule set
// or runner configuration that cannot be used. Validation errors wrap it.
var ErrInvalidConfiguration = errors.New("invalid configuration")
