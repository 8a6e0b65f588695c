package models

import "errors"

// Custom errors
var (
	// ErrMissingRate indicates no forex rate exists on or before the earliest
	// date a conversion needs, so there is nothing to forward-fill from.
	ErrMissingRate = errors.New("no forex rate available to anchor forward-fill")

	// ErrNoPriorData marks leading calendar days before an asset's first
	// observation. Expected, not fatal: the usable range simply shrinks.
	ErrNoPriorData = errors.New("no prior price data to fill from")

	// ErrDegenerateWindow indicates a window too short to annualize. The
	// selector should never emit one; seeing it means an upstream invariant broke.
	ErrDegenerateWindow = errors.New("degenerate holding window")

	// ErrUndefinedRatio indicates a zero-denominator risk ratio. Recovered
	// locally by storing a nil metric, never a sentinel zero.
	ErrUndefinedRatio = errors.New("risk ratio undefined for zero denominator")

	// ErrInsufficientData indicates a series below the completeness gate.
	ErrInsufficientData = errors.New("insufficient price data for holding period")

	ErrNotFound      = errors.New("record not found")
	ErrDuplicateKey  = errors.New("duplicate key violation")
	ErrInvalidSymbol = errors.New("invalid asset symbol")
)
