package engine

import "errors"

// Invalid references. Rule violations are reported as a false result instead.
var (
	ErrUnitNotFound     = errors.New("unit not found")
	ErrUnknownUnitType  = errors.New("unknown unit type")
	ErrAbilityNotFound  = errors.New("ability not registered")
	ErrAbilityExists    = errors.New("ability already registered")
	ErrInvalidArguments = errors.New("invalid ability arguments")
)
