package roadmap

import (
	"testing"

	"github.com/naviya/naviya/internal/api"
)

func graphWithSteps(n int) *api.RoadmapGraph {
	g := &api.RoadmapGraph{CareerGoal: "Goal"}
	for i := 1; i <= n; i++ {
		g.Nodes = append(g.Nodes, api.RoadmapNode{
			ID:     string(rune('a' + i - 1)),
			Label:  "Skill",
			Step:   i,
			Status: StatusMissing,
		})
	}
	g.Nodes = append(g.Nodes, api.RoadmapNode{ID: "goal", Label: "Goal", Step: 0, Status: StatusGoal})
	return g
}

func TestLayoutSerpentineRows(t *testing.T) {
	l := ComputeLayout(graphWithSteps(7))

	colPitch := NodeWidth + HorizontalGap
	rowPitch := NodeHeight + VerticalGap

	// Row 0 runs left to right.
	wantRow0 := []int{0, colPitch, 2 * colPitch}
	// Row 1 runs right to left.
	wantRow1 := []int{2 * colPitch, colPitch, 0}

	for i, want := range wantRow0 {
		n := l.Nodes[i]
		if n.X != want || n.Y != 0 {
			t.Errorf("step %d at (%d,%d), want (%d,0)", n.Step, n.X, n.Y, want)
		}
	}
	for i, want := range wantRow1 {
		n := l.Nodes[3+i]
		if n.X != want || n.Y != rowPitch {
			t.Errorf("step %d at (%d,%d), want (%d,%d)", n.Step, n.X, n.Y, want, rowPitch)
		}
	}

	// Step 7 opens row 2, left to right again.
	if n := l.Nodes[6]; n.X != 0 || n.Y != 2*rowPitch {
		t.Errorf("step 7 at (%d,%d), want (0,%d)", n.X, n.Y, 2*rowPitch)
	}
}

func TestLayoutGoalSitsBottomCentre(t *testing.T) {
	l := ComputeLayout(graphWithSteps(7))

	goal, ok := l.Find("goal")
	if !ok {
		t.Fatal("goal node missing from layout")
	}
	colPitch := NodeWidth + HorizontalGap
	rowPitch := NodeHeight + VerticalGap
	if goal.X != (Columns/2)*colPitch {
		t.Errorf("goal X = %d, want centre column %d", goal.X, (Columns/2)*colPitch)
	}
	// 7 steps fill three rows; the goal hangs below them.
	if goal.Y != 3*rowPitch {
		t.Errorf("goal Y = %d, want %d", goal.Y, 3*rowPitch)
	}

	for _, n := range l.Nodes {
		if n.Status != StatusGoal && n.Y >= goal.Y {
			t.Errorf("node %q at Y=%d is not above the goal", n.ID, n.Y)
		}
	}
}

func TestLayoutOrdersByStepRegardlessOfInput(t *testing.T) {
	g := validGraph()
	// Shuffle input order; layout must still follow ascending step.
	g.Nodes[0], g.Nodes[2] = g.Nodes[2], g.Nodes[0]

	l := ComputeLayout(g)
	prev := 0
	for _, n := range l.Nodes {
		if n.Status == StatusGoal {
			continue
		}
		if n.Step < prev {
			t.Fatalf("layout out of step order: %d after %d", n.Step, prev)
		}
		prev = n.Step
	}
}

func TestLayoutKeepsOnlyDeclaredEdges(t *testing.T) {
	g := validGraph()
	l := ComputeLayout(g)
	if len(l.Edges) != len(g.Links) {
		t.Fatalf("edges = %d, want %d declared links", len(l.Edges), len(g.Links))
	}
	for i, e := range l.Edges {
		if e.Source != g.Links[i].Source || e.Target != g.Links[i].Target {
			t.Errorf("edge %d = %+v, want %+v", i, e, g.Links[i])
		}
	}
}
