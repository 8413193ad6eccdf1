package conversation

import "errors"

// Failure taxonomy for capture and backend calls. Handlers and the merger
// collapse these into user-visible messages but keep them distinguishable
// for logs and tests via errors.Is.
var (
	ErrCaptureUnavailable = errors.New("audio capture unavailable")
	ErrNetworkUnreachable = errors.New("server unreachable")
	ErrBackendRejected    = errors.New("server rejected request")
	ErrMalformedResponse  = errors.New("malformed server response")
)
