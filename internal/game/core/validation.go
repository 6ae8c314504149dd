package core

import "strings"

// ErrorCode is a machine-readable reason a decision was rejected
type ErrorCode string

const (
	CodeBidTooLow          ErrorCode = "BID_TOO_LOW"
	CodeBidExceedsSpice    ErrorCode = "BID_EXCEEDS_SPICE"
	CodeHandFull           ErrorCode = "HAND_FULL"
	CodeNoForcesInTanks    ErrorCode = "NO_FORCES_IN_TANKS"
	CodeRevivalLimit       ErrorCode = "REVIVAL_LIMIT_EXCEEDED"
	CodeInsufficientSpice  ErrorCode = "INSUFFICIENT_SPICE"
	CodeInvalidTerritory   ErrorCode = "INVALID_TERRITORY"
	CodeInvalidSector      ErrorCode = "INVALID_SECTOR"
	CodeStormBlocked       ErrorCode = "STORM_BLOCKED"
	CodeStrongholdFull     ErrorCode = "STRONGHOLD_FULL"
	CodeNotAdjacent        ErrorCode = "NOT_ADJACENT"
	CodeInsufficientForces ErrorCode = "INSUFFICIENT_FORCES"
	CodeInvalidAmount      ErrorCode = "INVALID_AMOUNT"
	CodeInvalidLeader      ErrorCode = "INVALID_LEADER"
	CodeLeaderRequired     ErrorCode = "LEADER_REQUIRED"
	CodeCardNotInHand      ErrorCode = "CARD_NOT_IN_HAND"
	CodeInvalidWeapon      ErrorCode = "INVALID_WEAPON"
	CodeInvalidDefense     ErrorCode = "INVALID_DEFENSE"
	CodeVoiceViolation     ErrorCode = "VOICE_VIOLATION"
	CodeAlreadyClaimed     ErrorCode = "ALREADY_CLAIMED"
	CodeNotEligible        ErrorCode = "NOT_ELIGIBLE"
	CodeInvalidAction      ErrorCode = "INVALID_ACTION"
	CodeInvalidTarget      ErrorCode = "INVALID_TARGET"
	CodeKwisatzUnavailable ErrorCode = "KWISATZ_HADERACH_UNAVAILABLE"
	CodeNoTraitor          ErrorCode = "NO_MATCHING_TRAITOR"
	CodeShipmentRestricted ErrorCode = "SHIPMENT_RESTRICTED"
	CodeAlreadyMoved       ErrorCode = "ALREADY_ACTED"
)

// ValidationError is one reason a proposed action is illegal
type ValidationError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

func (e ValidationError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// ValidationResult is the outcome of a validation function. Context carries
// values derived while validating (computed cost, clamped counts) so callers
// do not recompute them.
type ValidationResult struct {
	Valid   bool
	Errors  []ValidationError
	Context map[string]interface{}
}

// Valid builds a successful result with the given derived context
func Valid(ctx map[string]interface{}) ValidationResult {
	if ctx == nil {
		ctx = map[string]interface{}{}
	}
	return ValidationResult{Valid: true, Context: ctx}
}

// Invalid builds a failed result carrying the given errors
func Invalid(errs ...ValidationError) ValidationResult {
	return ValidationResult{Valid: false, Errors: errs}
}

// Reject is shorthand for a single-error failed result
func Reject(code ErrorCode, message string) ValidationResult {
	return Invalid(ValidationError{Code: code, Message: message})
}

// Codes returns the error codes of the result
func (r ValidationResult) Codes() []ErrorCode {
	codes := make([]ErrorCode, len(r.Errors))
	for i, e := range r.Errors {
		codes[i] = e.Code
	}
	return codes
}

// HasCode reports whether the result contains the given code
func (r ValidationResult) HasCode(code ErrorCode) bool {
	for _, e := range r.Errors {
		if e.Code == code {
			return true
		}
	}
	return false
}

// Summary joins all error messages into a single line
func (r ValidationResult) Summary() string {
	parts := make([]string, len(r.Errors))
	for i, e := range r.Errors {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}

// Int reads an integer from the derived context
func (r ValidationResult) Int(key string) int {
	if v, ok := r.Context[key].(int); ok {
		return v
	}
	return 0
}

// Collector accumulates validation errors across several checks
type Collector struct {
	errs []ValidationError
}

// Add records an error
func (c *Collector) Add(code ErrorCode, message string) {
	c.errs = append(c.errs, ValidationError{Code: code, Message: message})
}

// Failed reports whether any error has been recorded
func (c *Collector) Failed() bool {
	return len(c.errs) > 0
}

// Result finalizes the collector into a ValidationResult
func (c *Collector) Result(ctx map[string]interface{}) ValidationResult {
	if len(c.errs) > 0 {
		return Invalid(c.errs...)
	}
	return Valid(ctx)
}
