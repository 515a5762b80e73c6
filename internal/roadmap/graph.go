// Package roadmap turns the backend's skill graph into a deterministic
// laid-out model the TUI can draw, and owns node selection with lazy
// per-node tutorial lookup.
package roadmap

import (
	"fmt"

	"github.com/naviya/naviya/internal/api"
)

// Node statuses as delivered by the backend.
const (
	StatusHas     = "has"
	StatusMissing = "missing"
	StatusGoal    = "goal"
)

// Validate checks the structural invariants of a graph: every link
// endpoint resolves to a node, and exactly one node carries the goal
// status.
func Validate(g *api.RoadmapGraph) error {
	if g == nil {
		return fmt.Errorf("nil roadmap graph")
	}

	ids := make(map[string]bool, len(g.Nodes))
	goals := 0
	for _, n := range g.Nodes {
		if n.ID == "" {
			return fmt.Errorf("roadmap node with empty id")
		}
		if ids[n.ID] {
			return fmt.Errorf("duplicate roadmap node id %q", n.ID)
		}
		ids[n.ID] = true
		if n.Status == StatusGoal {
			goals++
		}
	}
	if goals != 1 {
		return fmt.Errorf("roadmap must have exactly one goal node, found %d", goals)
	}

	for _, l := range g.Links {
		if !ids[l.Source] {
			return fmt.Errorf("link source %q references no node", l.Source)
		}
		if !ids[l.Target] {
			return fmt.Errorf("link target %q references no node", l.Target)
		}
	}
	return nil
}
