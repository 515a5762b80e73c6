package roadmap

import (
	"sort"

	"github.com/naviya/naviya/internal/api"
)

// Geometry constants for the three-column serpentine layout.
const (
	NodeWidth     = 180
	NodeHeight    = 80
	HorizontalGap = 60
	VerticalGap   = 50
	Columns       = 3
)

// Placed is a node with its resolved position.
type Placed struct {
	api.RoadmapNode
	X int
	Y int
}

// Edge joins two placed nodes as declared in the graph links.
type Edge struct {
	Source string
	Target string
}

// Layout holds the deterministic positions for one graph.
type Layout struct {
	Nodes []Placed
	Edges []Edge
}

// ComputeLayout places nodes by ascending step in a three-column
// serpentine: rows alternate left-to-right and right-to-left, and the
// goal node (step 0) sits bottom-centre below the last row. No layout
// edges are invented; only declared links are drawn.
func ComputeLayout(g *api.RoadmapGraph) *Layout {
	nodes := make([]api.RoadmapNode, len(g.Nodes))
	copy(nodes, g.Nodes)
	sort.SliceStable(nodes, func(i, j int) bool { return nodes[i].Step < nodes[j].Step })

	colPitch := NodeWidth + HorizontalGap
	rowPitch := NodeHeight + VerticalGap

	var steps []api.RoadmapNode
	var goal *api.RoadmapNode
	for i := range nodes {
		if nodes[i].Status == StatusGoal {
			goal = &nodes[i]
			continue
		}
		steps = append(steps, nodes[i])
	}

	out := &Layout{}
	rows := 0
	for i, n := range steps {
		row := i / Columns
		col := i % Columns
		if row%2 == 1 {
			col = Columns - 1 - col // serpentine: odd rows run right-to-left
		}
		out.Nodes = append(out.Nodes, Placed{
			RoadmapNode: n,
			X:           col * colPitch,
			Y:           row * rowPitch,
		})
		rows = row + 1
	}

	if goal != nil {
		out.Nodes = append(out.Nodes, Placed{
			RoadmapNode: *goal,
			X:           (Columns / 2) * colPitch,
			Y:           rows * rowPitch,
		})
	}

	for _, l := range g.Links {
		out.Edges = append(out.Edges, Edge{Source: l.Source, Target: l.Target})
	}
	return out
}

// Find returns the placed node with the given id.
func (l *Layout) Find(id string) (Placed, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Placed{}, false
}
