package riak

import "errors"

var (
	// ErrUnknownOperation is returned when a route has no template in the route table.
	ErrUnknownOperation = errors.New("unknown riak operation")

	// ErrUnresolvedPlaceholder is returned in strict mode when a template placeholder
	// was not supplied.
	ErrUnresolvedPlaceholder = errors.New("unresolved placeholder in route template")

	// ErrDecodeMultipart wraps failures while splitting a multipart response.
	ErrDecodeMultipart = errors.New("failed to decode multipart response")

	// ErrInvalidDSN indicates a base address that is not an absolute URL with a host.
	ErrInvalidDSN = errors.New("invalid riak DSN")

	// ErrInvalidOperation indicates a nil operation was passed to Do.
	ErrInvalidOperation = errors.New("invalid riak operation")

	// ErrEncodeProperties wraps failures while JSON-encoding bucket properties.
	ErrEncodeProperties = errors.New("failed to encode bucket properties")
)
