package smp

import "errors"

// Errors returned by the SMP engine. Invalid arguments, out-of-range
// values and failed proofs are all returned as ErrCheckFailed. Differing
// secrets are not an error: the final steps report them as a false match
// result. ErrInvalidState and ErrNoAnswer are returned as they are.
var (
	// ErrCheckFailed is raised on any invalid argument or failed proof.
	ErrCheckFailed = errors.New("smp: check failed")

	// ErrMatchFailed names the case where both sides' proofs check out but
	// the secrets differ; the engine reports that case as a false match
	// result and does not return this error.
	ErrMatchFailed = errors.New("smp: secrets do not match")

	// ErrInvalidState is raised when a step is invoked out of order.
	ErrInvalidState = errors.New("smp: invalid protocol state")

	// ErrInvalidGroupElement describes a received value outside
	// [2, p-2]; the engine reports such values as ErrCheckFailed and does
	// not return this error.
	ErrInvalidGroupElement = errors.New("smp: group element out of range")

	// ErrMalformedBuffer is raised when a step buffer cannot be unpacked
	// into the expected number of items.
	ErrMalformedBuffer = errors.New("smp: malformed buffer")

	// ErrNoAnswer is raised when step2 runs before an answer has been
	// supplied for a stashed step1 buffer.
	ErrNoAnswer = errors.New("smp: no answer supplied yet")
)
