package models

// Cents is a non-negative integer amount of money in the smallest currency unit.
type Cents int64

// Float returns c as a float64 amount of cents for proportional arithmetic.
func (c Cents) Float() float64 {
	return float64(c)
}

// CentTolerance is the slack allowed when comparing float amounts of cents.
const CentTolerance = 1.0
