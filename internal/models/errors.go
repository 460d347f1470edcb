package models

import "errors"

// Errors returned at the API boundary. State is left unchanged whenever one
// of these is returned.
var (
	ErrNegativeAmount      = errors.New("amount cannot be negative")
	ErrOverrideExceedsBill = errors.New("override exceeds remaining bill")
	ErrInvalidConfig       = errors.New("invalid bill configuration")
	ErrInvalidStep         = errors.New("invalid step")
	ErrInvalidPricingMode  = errors.New("invalid pricing mode")
	ErrInvalidQuantity     = errors.New("quantity must be at least 1")
	ErrInvalidPeopleCount  = errors.New("people count cannot be negative")
	ErrPersonNotFound      = errors.New("person not found")
	ErrItemNotFound        = errors.New("item not found")
	ErrSessionNotFound     = errors.New("session not found")
	ErrUnsupportedSchema   = errors.New("unsupported snapshot schema version")
)
