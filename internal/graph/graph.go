// # internal/graph/graph.go
package graph

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/disruptiq/topological-grapher/internal/extract"
)

// Graph merges per-file extraction results into one project graph.
// Node registration stays idempotent across files — the first
// registration of an id wins — while edges accumulate append-only.
type Graph struct {
	mu sync.Mutex

	nodes   []extract.Node
	seen    map[string]bool
	edges   []extract.Edge
	dynamic map[string]bool
}

func New() *Graph {
	return &Graph{
		seen:    make(map[string]bool),
		dynamic: make(map[string]bool),
	}
}

// Merge folds one file's result into the graph. Safe for concurrent
// use by the per-file workers.
func (g *Graph) Merge(res *extract.Result) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for _, n := range res.Nodes {
		if g.seen[n.ID] {
			continue
		}
		g.seen[n.ID] = true
		g.nodes = append(g.nodes, n)
	}
	g.edges = append(g.edges, res.Edges...)
	for _, id := range res.DynamicScopeIDs {
		g.dynamic[id] = true
	}
}

func (g *Graph) NodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

func (g *Graph) EdgeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.edges)
}

// Result flattens the merged graph into one record, nodes ordered by
// id so output is stable across runs regardless of worker scheduling.
func (g *Graph) Result() *extract.Result {
	g.mu.Lock()
	defer g.mu.Unlock()

	nodes := append([]extract.Node(nil), g.nodes...)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].ID < nodes[j].ID })

	edges := append([]extract.Edge(nil), g.edges...)
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i], edges[j]
		if a.Source != b.Source {
			return a.Source < b.Source
		}
		if a.Target != b.Target {
			return a.Target < b.Target
		}
		return a.Kind < b.Kind
	})

	dynamic := make([]string, 0, len(g.dynamic))
	for id := range g.dynamic {
		dynamic = append(dynamic, id)
	}
	sort.Strings(dynamic)

	return &extract.Result{Nodes: nodes, Edges: edges, DynamicScopeIDs: dynamic}
}

// CycleError reports a dependency cycle found during layering.
type CycleError struct {
	Cycle []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("a circular dependency was detected: %s", strings.Join(e.Cycle, " -> "))
}

// Layers performs a topological sort over the merged graph and groups
// the node ids into generations: every node in layer N depends only on
// nodes in layers < N. Edge targets that were never registered as
// nodes (cross-file references outside the scanned set) are ignored.
func (g *Graph) Layers() ([][]string, error) {
	res := g.Result()

	known := make(map[string]bool, len(res.Nodes))
	for _, n := range res.Nodes {
		known[n.ID] = true
	}

	indegree := make(map[string]int, len(res.Nodes))
	successors := make(map[string][]string, len(res.Nodes))
	for _, n := range res.Nodes {
		indegree[n.ID] = 0
	}
	for _, e := range res.Edges {
		if !known[e.Source] || !known[e.Target] || e.Source == e.Target {
			continue
		}
		successors[e.Source] = append(successors[e.Source], e.Target)
		indegree[e.Target]++
	}

	frontier := make([]string, 0, len(indegree))
	for id, deg := range indegree {
		if deg == 0 {
			frontier = append(frontier, id)
		}
	}
	sort.Strings(frontier)

	var layers [][]string
	remaining := len(indegree)
	for len(frontier) > 0 {
		layers = append(layers, frontier)
		remaining -= len(frontier)

		var next []string
		for _, id := range frontier {
			for _, succ := range successors[id] {
				indegree[succ]--
				if indegree[succ] == 0 {
					next = append(next, succ)
				}
			}
		}
		sort.Strings(next)
		frontier = next
	}

	if remaining > 0 {
		return nil, &CycleError{Cycle: g.findCycle(successors, indegree)}
	}
	return layers, nil
}

// findCycle extracts one cycle from the nodes left with positive
// indegree after layering stalls.
func (g *Graph) findCycle(successors map[string][]string, indegree map[string]int) []string {
	stuck := make(map[string]bool)
	var start string
	ids := make([]string, 0, len(indegree))
	for id := range indegree {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if indegree[id] > 0 {
			stuck[id] = true
			if start == "" {
				start = id
			}
		}
	}
	if start == "" {
		return nil
	}

	// Follow successors within the stuck set until a node repeats.
	seenAt := map[string]int{}
	var pathway []string
	current := start
	for {
		if at, seen := seenAt[current]; seen {
			cycle := append([]string(nil), pathway[at:]...)
			return append(cycle, current)
		}
		seenAt[current] = len(pathway)
		pathway = append(pathway, current)

		advanced := false
		for _, succ := range successors[current] {
			if stuck[succ] {
				current = succ
				advanced = true
				break
			}
		}
		if !advanced {
			return pathway
		}
	}
}
