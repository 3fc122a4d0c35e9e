package model

import "errors"

// Construction errors. They are returned before any search starts and are
// never recoverable mid-run.
var (
	ErrNoBatteries         = errors.New("model: at least one battery is required")
	ErrNoHouses            = errors.New("model: at least one house is required")
	ErrNonPositiveOutput   = errors.New("model: house output must be positive")
	ErrNonPositiveCapacity = errors.New("model: battery capacity must be positive")
	ErrNegativeCost        = errors.New("model: cost must not be negative")
	ErrDuplicateID         = errors.New("model: duplicate id")
	ErrMalformedPoint      = errors.New("model: malformed point")
	ErrUnknownBattery      = errors.New("model: assignment references unknown battery")
	ErrUnknownHouse        = errors.New("model: assignment references unknown house")
	ErrHouseAssignedTwice  = errors.New("model: house assigned to more than one battery")
)
