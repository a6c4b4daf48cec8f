package remote

import "errors"

// Errors returned by the remote bridge.
var (
	// ErrMalformedMessage indicates a client message that is not a JSON
	// object with a type.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrUnknownMessage indicates a message type the bridge does not handle.
	ErrUnknownMessage = errors.New("unknown message type")

	// ErrSlowClient indicates a client that does not drain its messages.
	ErrSlowClient = errors.New("client too slow")
)
