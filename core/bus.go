package core

import (
	"log/slog"
	"sort"

	"github.com/arvonet/dualroute/state"
)

// Bus is the MessageBus: it delivers Update/Query/Reply messages
// between RouterNodes, preserving per-sender FIFO order. All state is
// owned by a single worker goroutine reached through a dispatch
// channel — one goroutine processes one inbound event to completion
// before starting the next.
//
// RouterNode methods (OnUpdate/OnQuery/OnReply/ConfigureLink/
// OnLinkChange) remain directly callable for tests that bypass the
// bus; the Bus only serializes calls made through its own public API
// (Register, ConfigureLink, LinkChange, Step, Drain, RoutingTable).
type Bus struct {
	commands chan func()
	done     chan struct{}

	routers map[state.NodeId]*RouterNode
	queue   []state.Message
	log     *slog.Logger
}

// NewBus constructs a Bus and starts its dispatcher goroutine. Call
// Close when finished to let the goroutine exit.
func NewBus(log *slog.Logger) *Bus {
	b := &Bus{
		commands: make(chan func(), 128),
		done:     make(chan struct{}),
		routers:  make(map[state.NodeId]*RouterNode),
		log:      log,
	}
	go b.run()
	return b
}

func (b *Bus) run() {
	defer close(b.done)
	for cmd := range b.commands {
		cmd()
	}
}

// Close stops the dispatcher goroutine and waits for it to exit.
func (b *Bus) Close() {
	close(b.commands)
	<-b.done
}

// dispatchSync posts fn to the worker goroutine and blocks until it has
// run.
func (b *Bus) dispatchSync(fn func()) {
	wait := make(chan struct{})
	b.commands <- func() {
		fn()
		close(wait)
	}
	<-wait
}

// Register creates a new RouterNode with the given identity and adds it
// to the bus's registry, so other routers may be configured to link to
// it.
func (b *Bus) Register(id state.NodeId) *RouterNode {
	var node *RouterNode
	b.dispatchSync(func() {
		node = NewRouterNode(id, b, b.log)
		b.routers[id] = node
	})
	return node
}

// Node returns the registered RouterNode for id, or nil.
func (b *Bus) Node(id state.NodeId) *RouterNode {
	return b.routers[id]
}

func (b *Bus) knowsRouter(id state.NodeId) bool {
	_, ok := b.routers[id]
	return ok
}

// ConfigureLink configures a link from router to neighbor with the
// given cost, rejecting the call if neighbor is not a registered
// router.
func (b *Bus) ConfigureLink(router, neighbor state.NodeId, cost state.Metric) error {
	var err error
	b.dispatchSync(func() {
		node, ok := b.routers[router]
		if !ok {
			err = state.ErrUnknownNeighbor
			return
		}
		err = node.ConfigureLink(neighbor, cost)
	})
	return err
}

// LinkChange applies a link-cost change at router for neighbor.
func (b *Bus) LinkChange(router, neighbor state.NodeId, cost state.Metric) {
	b.dispatchSync(func() {
		node, ok := b.routers[router]
		if !ok {
			return
		}
		node.OnLinkChange(neighbor, cost)
	})
}

// InjectUpdate enqueues an Update(from, to, dest, rd) message as if from
// had sent it, for scenario scripts and tests that need to seed a
// router's topology table directly without a full chain of real
// neighbors. It is the synchronized, public counterpart to RouterNode's
// own SendUpdate.
func (b *Bus) InjectUpdate(from, to, dest state.NodeId, rd state.Metric) error {
	var err error
	b.dispatchSync(func() {
		node, ok := b.routers[from]
		if !ok {
			err = state.ErrUnknownNeighbor
			return
		}
		node.SendUpdate(to, dest, rd)
	})
	return err
}

// enqueue appends msg to the delivery queue. It is only ever called
// from within a function already running on the worker goroutine (via
// RouterNode's Send* methods), so no further synchronization is needed
// here. Every enqueued message is delivered — per-sender FIFO order
// guarantees delivery of every message, including a Reply that happens
// to repeat an earlier one's (from, to, dest, value): that repetition
// can be the exact signal a stuck diffusing computation is waiting on
// to finally conclude, not a duplicate safe to collapse.
func (b *Bus) enqueue(msg state.Message) {
	b.queue = append(b.queue, msg)
}

// stepLocked delivers the single oldest queued message. It must only be
// called from the worker goroutine.
func (b *Bus) stepLocked() bool {
	if len(b.queue) == 0 {
		return false
	}
	msg := b.queue[0]
	b.queue = b.queue[1:]

	target, ok := b.routers[msg.To]
	if !ok {
		b.log.Warn("message addressed to unregistered router", "to", msg.To, "kind", msg.Kind.String())
		return true
	}

	switch msg.Kind {
	case state.KindUpdate:
		target.OnUpdate(msg.From, msg.Dest, msg.ReportedDistance)
	case state.KindQuery:
		target.OnQuery(msg.From, msg.Dest, msg.OriginatorFD)
	case state.KindReply:
		target.OnReply(msg.From, msg.Dest, msg.ReportedDistance)
	}
	return true
}

// Step delivers exactly one message, if any is queued, and reports
// whether one was delivered.
func (b *Bus) Step() bool {
	var delivered bool
	b.dispatchSync(func() {
		delivered = b.stepLocked()
	})
	return delivered
}

// Drain delivers messages until the queue is empty and returns how many
// were delivered. Because handlers may enqueue further messages while
// being delivered (e.g. a Query triggering a Reply), this repeats
// within a single dispatch so no interleaving with other callers can
// observe a partially-drained queue.
func (b *Bus) Drain() int {
	var delivered int
	b.dispatchSync(func() {
		for b.stepLocked() {
			delivered++
		}
	})
	return delivered
}

// RouteInfo is a snapshot of one RouteEntry for inspection.
type RouteInfo struct {
	Destination      state.NodeId
	Successor        state.NodeId
	HasSuccessor     bool
	ReportedDistance state.Metric
	FeasibleDistance state.Metric
	Active           bool
	Outstanding      int
}

// RoutingTable returns a deterministic, destination-sorted snapshot of
// router's routing table.
func (b *Bus) RoutingTable(router state.NodeId) []RouteInfo {
	var table []RouteInfo
	b.dispatchSync(func() {
		node, ok := b.routers[router]
		if !ok {
			return
		}
		for dest, route := range node.State.Routes {
			table = append(table, RouteInfo{
				Destination:      dest,
				Successor:        route.Successor,
				HasSuccessor:     route.HasSuccessor,
				ReportedDistance: route.ReportedDistance,
				FeasibleDistance: route.FeasibleDistance,
				Active:           route.Active,
				Outstanding:      len(route.OutstandingReplies),
			})
		}
	})
	sort.Slice(table, func(i, j int) bool { return table[i].Destination < table[j].Destination })
	return table
}

// QueueLen reports how many messages are currently queued, for tests.
func (b *Bus) QueueLen() int {
	var n int
	b.dispatchSync(func() { n = len(b.queue) })
	return n
}
