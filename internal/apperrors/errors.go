package apperrors

import "errors"

// ErrDataIntegrity indicates that fetched data violates the source's own
// consistency rules (mismatched labels, implausibly few datapoints).
var ErrDataIntegrity = errors.New("data integrity violation")

// ErrNoCurrencyFlagged indicates that the registry has no currency marked
// for fetching and the run was not started in all mode.
var ErrNoCurrencyFlagged = errors.New("no currency flagged for fetching")
