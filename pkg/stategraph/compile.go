package stategraph

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
)

// Compile validates the graph and creates an executable CompiledGraph.
// Multiple validation errors are joined together.
//
// Validation checks (in order):
//  1. Entry point must be set
//  2. Entry point must reference an existing node
//  3. All edge sources must reference existing nodes
//  4. All edge targets must reference existing nodes or END
//  5. A node without a conditional edge has at most one outgoing edge
//  6. A path to END exists from the entry point
//
// Unreachable nodes are logged as warnings but do not fail compilation.
func (g *Graph[S, U]) Compile() (*CompiledGraph[S, U], error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var errs []error

	if g.entryPoint == "" {
		errs = append(errs, ErrNoEntryPoint)
	} else if _, exists := g.nodes[g.entryPoint]; !exists {
		errs = append(errs, fmt.Errorf("%w: %s", ErrEntryNotFound, g.entryPoint))
	}

	for _, from := range slices.Sorted(maps.Keys(g.edges)) {
		targets := g.edges[from]
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: edge source '%s' does not exist", ErrNodeNotFound, from))
		}

		for _, to := range targets {
			if to == END {
				continue
			}
			if _, exists := g.nodes[to]; !exists {
				errs = append(errs, fmt.Errorf("%w: edge target '%s' does not exist", ErrNodeNotFound, to))
			}
		}

		if _, conditional := g.conditionalEdges[from]; !conditional && len(targets) > 1 {
			errs = append(errs, fmt.Errorf("%w: node '%s' has %d outgoing edges", ErrAmbiguousEdge, from, len(targets)))
		}
	}

	for _, from := range slices.Sorted(maps.Keys(g.conditionalEdges)) {
		if _, exists := g.nodes[from]; !exists {
			errs = append(errs, fmt.Errorf("%w: conditional edge source '%s' does not exist", ErrNodeNotFound, from))
		}
	}

	if _, exists := g.nodes[g.entryPoint]; exists && !g.hasPathToEnd() {
		errs = append(errs, ErrNoPathToEnd)
	}

	g.warnUnreachableNodes()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	return g.buildCompiledGraph(), nil
}

// hasPathToEnd reports whether END is reachable from the entry point.
// A node with a router is assumed able to reach END, since the router
// may return it.
func (g *Graph[S, U]) hasPathToEnd() bool {
	canReachEnd := map[string]bool{END: true}
	for from := range g.conditionalEdges {
		canReachEnd[from] = true
	}

	changed := true
	for changed {
		changed = false
		for from, targets := range g.edges {
			if canReachEnd[from] {
				continue
			}
			if slices.ContainsFunc(targets, func(to string) bool { return canReachEnd[to] }) {
				canReachEnd[from] = true
				changed = true
			}
		}
	}

	return canReachEnd[g.entryPoint]
}

// warnUnreachableNodes logs nodes not reachable from the entry point.
func (g *Graph[S, U]) warnUnreachableNodes() {
	if g.entryPoint == "" {
		return
	}

	reachable := g.findReachableNodes()
	for nodeID := range g.nodes {
		if !reachable[nodeID] {
			slog.Warn("node is unreachable from entry", "node_id", nodeID)
		}
	}
}

// findReachableNodes returns the set of nodes reachable from the entry point.
// A router may return any node, so every node counts as reachable once a
// conditional edge is reached.
func (g *Graph[S, U]) findReachableNodes() map[string]bool {
	reachable := map[string]bool{g.entryPoint: true}
	queue := []string{g.entryPoint}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		next := g.edges[current]
		if _, conditional := g.conditionalEdges[current]; conditional {
			next = slices.Collect(maps.Keys(g.nodes))
		}

		for _, target := range next {
			if target != END && !reachable[target] {
				reachable[target] = true
				queue = append(queue, target)
			}
		}
	}

	return reachable
}

// buildCompiledGraph copies the builder state into an immutable CompiledGraph.
func (g *Graph[S, U]) buildCompiledGraph() *CompiledGraph[S, U] {
	edges := make(map[string][]string, len(g.edges))
	predecessors := make(map[string][]string)
	for from, targets := range g.edges {
		edges[from] = slices.Clone(targets)
		for _, to := range targets {
			if to != END {
				predecessors[to] = append(predecessors[to], from)
			}
		}
	}

	return &CompiledGraph[S, U]{
		reduce:           g.reduce,
		nodes:            maps.Clone(g.nodes),
		edges:            edges,
		conditionalEdges: maps.Clone(g.conditionalEdges),
		entryPoint:       g.entryPoint,
		predecessors:     predecessors,
	}
}
