package sdk

import "errors"

// Host call failures shared by every capability client. Clients join them
// with the underlying cause, so callers of the riak and kv packages can test
// for them with errors.Is through any number of layers.
var (
	// ErrHostCall indicates that the waPC host invocation itself failed, for
	// example because the capability is not enabled for the function.
	ErrHostCall = errors.New("host call failed")

	// ErrHostResponseInvalid signals a host payload that could not be decoded
	// or carried an unknown status code.
	ErrHostResponseInvalid = errors.New("host response is invalid or unexpected")

	// ErrHostError means the host completed the call but reported a failure
	// status (bad input, missing resource or internal error).
	ErrHostError = errors.New("host returned an error status")

	// ErrHandlerNil is returned when the provided function handler is nil.
	ErrHandlerNil = errors.New("function handler cannot be nil")
)
