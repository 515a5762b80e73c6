package roadmap

import (
	"strings"
	"testing"

	"github.com/naviya/naviya/internal/api"
)

func validGraph() *api.RoadmapGraph {
	return &api.RoadmapGraph{
		CareerGoal: "Backend Engineer",
		Nodes: []api.RoadmapNode{
			{ID: "go", Label: "Go", Step: 1, Status: StatusHas},
			{ID: "sql", Label: "SQL", Step: 2, Status: StatusMissing, SearchQuery: "sql basics"},
			{ID: "k8s", Label: "Kubernetes", Step: 3, Status: StatusMissing},
			{ID: "goal", Label: "Backend Engineer", Step: 0, Status: StatusGoal},
		},
		Links: []api.RoadmapLink{
			{Source: "go", Target: "sql"},
			{Source: "sql", Target: "k8s"},
			{Source: "k8s", Target: "goal"},
		},
	}
}

func TestValidateAcceptsWellFormedGraph(t *testing.T) {
	if err := Validate(validGraph()); err != nil {
		t.Errorf("Validate = %v, want nil", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*api.RoadmapGraph)
		wantErr string
	}{
		{
			name:    "duplicate node id",
			mutate:  func(g *api.RoadmapGraph) { g.Nodes = append(g.Nodes, api.RoadmapNode{ID: "go", Status: StatusHas}) },
			wantErr: "duplicate",
		},
		{
			name:    "empty node id",
			mutate:  func(g *api.RoadmapGraph) { g.Nodes[0].ID = "" },
			wantErr: "empty id",
		},
		{
			name:    "no goal node",
			mutate:  func(g *api.RoadmapGraph) { g.Nodes[3].Status = StatusMissing },
			wantErr: "exactly one goal",
		},
		{
			name:    "two goal nodes",
			mutate:  func(g *api.RoadmapGraph) { g.Nodes[0].Status = StatusGoal },
			wantErr: "exactly one goal",
		},
		{
			name:    "dangling link source",
			mutate:  func(g *api.RoadmapGraph) { g.Links[0].Source = "ghost" },
			wantErr: "references no node",
		},
		{
			name:    "dangling link target",
			mutate:  func(g *api.RoadmapGraph) { g.Links[0].Target = "ghost" },
			wantErr: "references no node",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := validGraph()
			tt.mutate(g)
			err := Validate(g)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}

	if err := Validate(nil); err == nil {
		t.Error("nil graph should be rejected")
	}
}
