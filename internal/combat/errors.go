package combat

import "errors"

var (
	// ErrMissingUnitProfile is a configuration error: a force references a
	// unit type the statistics table does not describe.
	ErrMissingUnitProfile = errors.New("missing unit profile")
	ErrInvalidUnitProfile = errors.New("invalid unit profile")
	ErrInvalidStance      = errors.New("invalid combat stance")
	ErrNegativeUnitCount  = errors.New("negative unit count")
	ErrInvalidRuleset     = errors.New("invalid ruleset")
	ErrUnknownStrategy    = errors.New("unknown combat strategy")
	ErrInvalidRetreat     = errors.New("invalid retreat order")
)
