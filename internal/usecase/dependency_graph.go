package usecase

import (
	"sort"

	"github.com/fractional-company/vaultctl/internal/domain"
)

// DependencyGraph represents a directed graph of components. Edges point from a
// dependency to the components referencing it. References to components outside
// the graph are tracked separately and do not constrain the order.
type DependencyGraph struct {
	nodes    map[string]*domain.Component
	deps     map[string][]string // node -> dependencies inside the graph
	edges    map[string][]string // adjacency list: node -> list of dependents
	external map[string][]string // node -> dependencies outside the graph
}

// NewDependencyGraph creates a dependency graph over the given components
func NewDependencyGraph(components []*domain.Component) *DependencyGraph {
	graph := &DependencyGraph{
		nodes:    make(map[string]*domain.Component, len(components)),
		deps:     make(map[string][]string),
		edges:    make(map[string][]string),
		external: make(map[string][]string),
	}
	for _, comp := range components {
		graph.nodes[comp.Name] = comp
	}

	for _, comp := range components {
		for _, dep := range comp.Dependencies() {
			if _, exists := graph.nodes[dep]; !exists {
				graph.external[comp.Name] = append(graph.external[comp.Name], dep)
				continue
			}
			graph.deps[comp.Name] = append(graph.deps[comp.Name], dep)
			graph.edges[dep] = append(graph.edges[dep], comp.Name)
		}
	}

	return graph
}

// External returns, per component, the referenced components that are not part of the graph
func (g *DependencyGraph) External() map[string][]string {
	out := make(map[string][]string, len(g.external))
	for name, deps := range g.external {
		out[name] = append([]string(nil), deps...)
	}
	return out
}

// TopologicalSort performs a topological sort on the dependency graph.
// Returns the components in deployment order, or a CyclicDependencyError.
func (g *DependencyGraph) TopologicalSort() ([]*domain.Component, error) {
	inDegree := make(map[string]int, len(g.nodes))
	for name := range g.nodes {
		inDegree[name] = len(g.deps[name])
	}

	// Initialize queue with nodes that have no dependencies
	var queue []string
	for name, degree := range inDegree {
		if degree == 0 {
			queue = append(queue, name)
		}
	}
	sort.Strings(queue)

	result := make([]*domain.Component, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		result = append(result, g.nodes[current])

		for _, dependent := range g.edges[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				queue = append(queue, dependent)
				// Keep queue sorted for deterministic output
				sort.Strings(queue)
			}
		}
	}

	if len(result) != len(g.nodes) {
		return nil, domain.CyclicDependencyError{Components: g.cycleMembers(inDegree)}
	}

	return result, nil
}

// cycleMembers returns the unsorted nodes after repeatedly discarding those
// with no unsorted dependents, leaving the cycles and the paths between them.
func (g *DependencyGraph) cycleMembers(inDegree map[string]int) []string {
	remaining := make(map[string]bool)
	for name, degree := range inDegree {
		if degree > 0 {
			remaining[name] = true
		}
	}

	for changed := true; changed; {
		changed = false
		for name := range remaining {
			hasDependent := false
			for _, dependent := range g.edges[name] {
				if remaining[dependent] {
					hasDependent = true
					break
				}
			}
			if !hasDependent {
				delete(remaining, name)
				changed = true
			}
		}
	}

	members := make([]string, 0, len(remaining))
	for name := range remaining {
		members = append(members, name)
	}
	sort.Strings(members)
	return members
}
