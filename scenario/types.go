// Package scenario loads a static topology plus a scripted sequence of
// events from YAML and drives them through a core.Bus. It is an
// external collaborator of core, never imported by it.
package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arvonet/dualroute/state"
)

// Document is the top-level scenario file: a fixed set of routers, the
// links between them, and an ordered script of events to inject.
type Document struct {
	Routers []string     `yaml:"routers"`
	Links   []LinkConfig `yaml:"links"`
	Script  []Step       `yaml:"script"`
}

// LinkConfig configures one bidirectional link between two routers.
type LinkConfig struct {
	A    string      `yaml:"a"`
	B    string      `yaml:"b"`
	Cost MetricValue `yaml:"cost"`
}

// Step is one scripted action, ordered by its position in the Script
// slice. After records the intended delay as written in the file for a
// human reader; the in-process runner (cmd sim) applies steps strictly
// in document order rather than on a wall-clock timer, since the
// simulator has no notion of real time.
type Step struct {
	After string `yaml:"after,omitempty"`
	Event Event  `yaml:"event"`
}

// Event is a tagged union over the two event kinds a scenario may
// inject: an Update message delivered directly to a router, or a link
// cost change. The Type field selects which other fields are relevant.
type Event struct {
	Type string `yaml:"type"`

	From string      `yaml:"from,omitempty"`
	To   string      `yaml:"to,omitempty"`
	Dest string      `yaml:"dest,omitempty"`
	Ad   MetricValue `yaml:"ad,omitempty"`

	Router   string      `yaml:"router,omitempty"`
	Neighbor string      `yaml:"neighbor,omitempty"`
	Cost     MetricValue `yaml:"cost,omitempty"`
}

const (
	EventUpdate     = "update"
	EventLinkChange = "link_change"
)

// MetricValue unmarshals a scenario cost/ad value that may be written as
// a plain integer or as the literal "inf", into a state.Metric.
type MetricValue struct {
	Metric state.Metric
}

// UnmarshalYAML implements goccy/go-yaml's BytesUnmarshaler so
// MetricValue can appear as either a bare integer or the string "inf" in
// a scenario document.
func (m *MetricValue) UnmarshalYAML(b []byte) error {
	s := strings.TrimSpace(strings.Trim(string(b), `"'`))
	if strings.EqualFold(s, "inf") {
		m.Metric = state.INF
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return fmt.Errorf("scenario: invalid metric value %q: %w", s, err)
	}
	m.Metric = state.Metric(v)
	return nil
}
