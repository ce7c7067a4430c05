package scenario

import (
	"fmt"
	"slices"
)

// Validate checks structural consistency of a Document: every link and
// script entry must reference a router declared in Routers, and event
// types must be recognized.
func Validate(doc *Document) error {
	known := func(id string) bool { return slices.Contains(doc.Routers, id) }

	for _, link := range doc.Links {
		if !known(link.A) {
			return fmt.Errorf("scenario: link references undeclared router %q", link.A)
		}
		if !known(link.B) {
			return fmt.Errorf("scenario: link references undeclared router %q", link.B)
		}
	}

	for i, step := range doc.Script {
		switch step.Event.Type {
		case EventUpdate:
			if !known(step.Event.From) {
				return fmt.Errorf("scenario: script[%d] update references undeclared router %q", i, step.Event.From)
			}
			if !known(step.Event.To) {
				return fmt.Errorf("scenario: script[%d] update references undeclared router %q", i, step.Event.To)
			}
			if step.Event.Dest == "" {
				return fmt.Errorf("scenario: script[%d] update is missing dest", i)
			}
		case EventLinkChange:
			if !known(step.Event.Router) {
				return fmt.Errorf("scenario: script[%d] link_change references undeclared router %q", i, step.Event.Router)
			}
			if !known(step.Event.Neighbor) {
				return fmt.Errorf("scenario: script[%d] link_change references undeclared router %q", i, step.Event.Neighbor)
			}
		default:
			return fmt.Errorf("scenario: script[%d] has unrecognized event type %q", i, step.Event.Type)
		}
	}

	return nil
}
