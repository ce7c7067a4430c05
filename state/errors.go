package state

import "errors"

// The closed error taxonomy. ErrUnknownNeighbor is returned to the
// caller of core.RouterNode.ConfigureLink (and core.Bus.ConfigureLink).
// ErrInvalidSender and ErrStaleReply never propagate as a Go return
// value across the message boundary — core.RouterNode attaches them as
// the "err" attribute on the warn/debug line that drops the message and
// stops there.
var (
	// ErrUnknownNeighbor is a ConfigurationError: linking to a router
	// that the MessageBus has never heard of.
	ErrUnknownNeighbor = errors.New("unknown neighbor router")
	// ErrInvalidSender is raised when a message arrives from a node with
	// no finite link cost, i.e. not a current direct neighbor.
	ErrInvalidSender = errors.New("message from non-neighbor")
	// ErrStaleReply is raised when a Reply arrives for a destination
	// that is not currently active.
	ErrStaleReply = errors.New("reply for inactive destination")
)
