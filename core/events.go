package core

import "github.com/arvonet/dualroute/state"

// RouterEvent is a log taxonomy for DualEngine transitions: trace
// events and warn events as distinct numeric bands.
type RouterEvent int

// trace events
const (
	RoutePassive RouterEvent = iota
	RouteActive
	RouteUnreachable
	RouteAdvertised
)

// warn events
const (
	DroppedInvalidSender RouterEvent = iota + 1000
	DroppedStaleReply
	DroppedUnknownNeighbor
	SuccessorInvalidatedAsReplySource
)

func (e RouterEvent) String() string {
	switch e {
	case RoutePassive:
		return "ROUTE_PASSIVE"
	case RouteActive:
		return "ROUTE_ACTIVE"
	case RouteUnreachable:
		return "ROUTE_UNREACHABLE"
	case RouteAdvertised:
		return "ROUTE_ADVERTISED"
	case DroppedInvalidSender:
		return "DROPPED_INVALID_SENDER"
	case DroppedStaleReply:
		return "DROPPED_STALE_REPLY"
	case DroppedUnknownNeighbor:
		return "DROPPED_UNKNOWN_NEIGHBOR"
	case SuccessorInvalidatedAsReplySource:
		return "SUCCESSOR_INVALIDATED_AS_REPLY_SOURCE"
	default:
		return "UNKNOWN_EVENT"
	}
}

// Router is the side-effect sink the DualEngine emits outbound messages
// and log events through. RouterNode implements it against a real Bus;
// tests implement it against an in-memory harness.
type Router interface {
	SendUpdate(to, dest state.NodeId, rd state.Metric)
	SendQuery(to, dest state.NodeId, originatorFD state.Metric)
	SendReply(to, dest state.NodeId, ad state.Metric)
	Log(event RouterEvent, desc string, args ...any)
}
