package roadmap

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/naviya/naviya/internal/api"
)

// VideoSearcher finds tutorial videos for a node's search query.
// *api.Client satisfies this.
type VideoSearcher interface {
	SearchVideos(ctx context.Context, req api.VideoSearchRequest) ([]api.Video, error)
}

// ViewModel is the presentation state for one loaded roadmap: layout,
// selection, per-node watch progress, and the lazy tutorial cache.
type ViewModel struct {
	Graph     *api.RoadmapGraph
	Layout    *Layout
	RoadmapID string
	language  string
	searcher  VideoSearcher

	mu       sync.Mutex
	selected string
	progress map[string]api.VideoProgress
	videos   map[string]*api.Video // node id -> fetched tutorial, nil entry = fetched, none found
	group    singleflight.Group
}

// NewViewModel validates and lays out the graph.
func NewViewModel(g *api.RoadmapGraph, roadmapID, language string, searcher VideoSearcher) (*ViewModel, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}
	return &ViewModel{
		Graph:     g,
		Layout:    ComputeLayout(g),
		RoadmapID: roadmapID,
		language:  language,
		searcher:  searcher,
		progress:  make(map[string]api.VideoProgress),
		videos:    make(map[string]*api.Video),
	}, nil
}

// SetProgress installs the per-node watch records fetched from the
// backend.
func (vm *ViewModel) SetProgress(p map[string]api.VideoProgress) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if p == nil {
		p = make(map[string]api.VideoProgress)
	}
	vm.progress = p
}

// Progress returns the watch record for a node, if any.
func (vm *ViewModel) Progress(nodeID string) (api.VideoProgress, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	p, ok := vm.progress[nodeID]
	return p, ok
}

// MarkDone flips a node's stored progress to completed, so the node
// repaints without waiting for a backend round trip.
func (vm *ViewModel) MarkDone(nodeID string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	p := vm.progress[nodeID]
	p.Completed = true
	p.WatchedSeconds = p.DurationSeconds
	p.ProgressPercent = 100
	vm.progress[nodeID] = p
}

// Selected returns the currently selected node id, empty when none.
func (vm *ViewModel) Selected() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.selected
}

// Select toggles selection of a node. Selecting a missing-skill node
// lazily fetches one tutorial video for its search query; the fetch
// happens at most once per node per session. Returns the cached or
// fetched video for missing nodes, nil otherwise.
func (vm *ViewModel) Select(ctx context.Context, nodeID string) (*api.Video, error) {
	node, ok := vm.Layout.Find(nodeID)
	if !ok {
		return nil, fmt.Errorf("unknown roadmap node %q", nodeID)
	}

	vm.mu.Lock()
	if vm.selected == nodeID {
		vm.selected = ""
		vm.mu.Unlock()
		return nil, nil
	}
	vm.selected = nodeID

	if node.Status != StatusMissing {
		vm.mu.Unlock()
		return nil, nil
	}
	if v, fetched := vm.videos[nodeID]; fetched {
		vm.mu.Unlock()
		return v, nil
	}
	vm.mu.Unlock()

	// singleflight collapses a double-select racing the first fetch.
	v, err, _ := vm.group.Do(nodeID, func() (any, error) {
		query := node.SearchQuery
		if query == "" {
			query = node.Label + " tutorial"
		}
		videos, err := vm.searcher.SearchVideos(ctx, api.VideoSearchRequest{
			Query:             query,
			PreferredLanguage: vm.language,
			MaxResults:        1,
		})
		if err != nil {
			return nil, err
		}

		var hit *api.Video
		if len(videos) > 0 {
			hit = &videos[0]
		}
		vm.mu.Lock()
		vm.videos[nodeID] = hit
		vm.mu.Unlock()
		return hit, nil
	})
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, nil
	}
	return v.(*api.Video), nil
}

// Video returns the cached tutorial for a node without fetching.
func (vm *ViewModel) Video(nodeID string) (*api.Video, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	v, ok := vm.videos[nodeID]
	return v, ok
}
