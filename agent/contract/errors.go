package contract

import "errors"

// Transport and state failures never cross this boundary as Go errors:
// delivery problems come back as structured tool failures and disallowed
// dialogue moves as advisories, so only the engine and validation paths
// need sentinels.
var (
	ErrModelInvoke     = errors.New("model invoke failed")
	ErrSchemaViolation = errors.New("model response violates schema")
	ErrValidation      = errors.New("validation failed")
)
