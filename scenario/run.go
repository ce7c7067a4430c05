package scenario

import (
	"fmt"
	"log/slog"

	"github.com/arvonet/dualroute/core"
	"github.com/arvonet/dualroute/state"
)

// Run builds a fresh core.Bus for doc's topology, configures every link,
// drains convergence, then applies doc's script one step at a time,
// draining the bus after each step so every step observes a fully
// converged network before the next one runs.
func Run(doc *Document, log *slog.Logger) (*core.Bus, error) {
	bus := core.NewBus(log)

	for _, id := range doc.Routers {
		bus.Register(state.NodeId(id))
	}
	for _, link := range doc.Links {
		if err := bus.ConfigureLink(state.NodeId(link.A), state.NodeId(link.B), link.Cost.Metric); err != nil {
			bus.Close()
			return nil, fmt.Errorf("scenario: configure link %s-%s: %w", link.A, link.B, err)
		}
		if err := bus.ConfigureLink(state.NodeId(link.B), state.NodeId(link.A), link.Cost.Metric); err != nil {
			bus.Close()
			return nil, fmt.Errorf("scenario: configure link %s-%s: %w", link.B, link.A, err)
		}
	}
	drain(bus)

	for i, step := range doc.Script {
		if err := applyEvent(bus, step.Event); err != nil {
			bus.Close()
			return nil, fmt.Errorf("scenario: script[%d]: %w", i, err)
		}
		drain(bus)
	}

	return bus, nil
}

func drain(bus *core.Bus) {
	for bus.Drain() > 0 {
	}
}

func applyEvent(bus *core.Bus, e Event) error {
	switch e.Type {
	case EventUpdate:
		return bus.InjectUpdate(state.NodeId(e.From), state.NodeId(e.To), state.NodeId(e.Dest), e.Ad.Metric)
	case EventLinkChange:
		bus.LinkChange(state.NodeId(e.Router), state.NodeId(e.Neighbor), e.Cost.Metric)
		return nil
	default:
		return fmt.Errorf("unrecognized event type %q", e.Type)
	}
}
