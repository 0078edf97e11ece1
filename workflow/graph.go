package workflow

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// END is the terminal marker. Routing to END finishes a run.
const END = "__end__"

// NodeFunc is a single step of the graph. It reads the state and returns a
// sparse update that the executor merges into the state.
type NodeFunc[S, U any] func(ctx context.Context, state S) (U, error)

// RouterFunc picks the route key for the next node. Routers must be pure and
// total: the same state always yields the same key.
type RouterFunc[S any] func(state S) string

// MergeFunc folds an update into the state and returns the new state.
type MergeFunc[S, U any] func(state S, update U) S

// Validation errors returned by Compile.
var (
	ErrNoNodes          = errors.New("graph has no nodes")
	ErrNoEntryPoint     = errors.New("entry point not set")
	ErrUnknownNode      = errors.New("unknown node")
	ErrDuplicateNode    = errors.New("duplicate node")
	ErrReservedNodeID   = errors.New("reserved node id")
	ErrDuplicateEdge    = errors.New("node already has an outgoing transition")
	ErrMissingEdge      = errors.New("node has no outgoing transition")
	ErrCycleDetected    = errors.New("cycle detected")
	ErrNilMerge         = errors.New("merge function is nil")
	ErrEmptyPathMap     = errors.New("conditional edge has an empty path map")
	ErrUnmappedRouteKey = errors.New("router returned an unmapped route key")
)

type branch[S any] struct {
	router  RouterFunc[S]
	pathMap map[string]string
}

// StateGraph is a fluent builder for a state graph. It is not safe for
// concurrent use; build it once and Compile it.
type StateGraph[S, U any] struct {
	name     string
	merge    MergeFunc[S, U]
	nodes    map[string]NodeFunc[S, U]
	order    []string
	edges    map[string]string
	branches map[string]branch[S]
	entry    string
	errs     []error
}

// NewStateGraph creates an empty graph that merges updates with merge.
func NewStateGraph[S, U any](name string, merge MergeFunc[S, U]) *StateGraph[S, U] {
	return &StateGraph[S, U]{
		name:     name,
		merge:    merge,
		nodes:    make(map[string]NodeFunc[S, U]),
		edges:    make(map[string]string),
		branches: make(map[string]branch[S]),
	}
}

// AddNode registers a step under id.
func (g *StateGraph[S, U]) AddNode(id string, fn NodeFunc[S, U]) *StateGraph[S, U] {
	switch {
	case id == "" || id == END:
		g.errs = append(g.errs, fmt.Errorf("%w: %q", ErrReservedNodeID, id))
	case fn == nil:
		g.errs = append(g.errs, fmt.Errorf("node %s: nil step", id))
	default:
		if _, exists := g.nodes[id]; exists {
			g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrDuplicateNode, id))
			return g
		}
		g.nodes[id] = fn
		g.order = append(g.order, id)
	}
	return g
}

// AddEdge adds an unconditional transition from one node to another (or END).
func (g *StateGraph[S, U]) AddEdge(from, to string) *StateGraph[S, U] {
	if g.hasTransition(from) {
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrDuplicateEdge, from))
		return g
	}
	g.edges[from] = to
	return g
}

// AddConditionalEdges attaches a router to from. The router's return value is
// looked up in pathMap to find the next node.
func (g *StateGraph[S, U]) AddConditionalEdges(from string, router RouterFunc[S], pathMap map[string]string) *StateGraph[S, U] {
	if g.hasTransition(from) {
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrDuplicateEdge, from))
		return g
	}
	if router == nil {
		g.errs = append(g.errs, fmt.Errorf("node %s: nil router", from))
		return g
	}
	if len(pathMap) == 0 {
		g.errs = append(g.errs, fmt.Errorf("%w: %s", ErrEmptyPathMap, from))
		return g
	}
	paths := make(map[string]string, len(pathMap))
	for k, v := range pathMap {
		paths[k] = v
	}
	g.branches[from] = branch[S]{router: router, pathMap: paths}
	return g
}

// SetEntryPoint sets the first node of every run.
func (g *StateGraph[S, U]) SetEntryPoint(id string) *StateGraph[S, U] {
	g.entry = id
	return g
}

func (g *StateGraph[S, U]) hasTransition(from string) bool {
	if _, ok := g.edges[from]; ok {
		return true
	}
	_, ok := g.branches[from]
	return ok
}

// Compile validates the graph and freezes it. Later changes to the builder do
// not affect the returned graph.
func (g *StateGraph[S, U]) Compile() (*CompiledGraph[S, U], error) {
	if err := g.validate(); err != nil {
		return nil, fmt.Errorf("graph %s validation failed: %w", g.name, err)
	}

	c := &CompiledGraph[S, U]{
		name:     g.name,
		entry:    g.entry,
		merge:    g.merge,
		nodes:    make(map[string]NodeFunc[S, U], len(g.nodes)),
		order:    append([]string(nil), g.order...),
		edges:    make(map[string]string, len(g.edges)),
		branches: make(map[string]branch[S], len(g.branches)),
	}
	for id, fn := range g.nodes {
		c.nodes[id] = fn
	}
	for from, to := range g.edges {
		c.edges[from] = to
	}
	for from, b := range g.branches {
		c.branches[from] = b
	}
	return c, nil
}

func (g *StateGraph[S, U]) validate() error {
	if len(g.errs) > 0 {
		return errors.Join(g.errs...)
	}
	if g.merge == nil {
		return ErrNilMerge
	}
	if len(g.nodes) == 0 {
		return ErrNoNodes
	}
	if g.entry == "" {
		return ErrNoEntryPoint
	}
	if _, ok := g.nodes[g.entry]; !ok {
		return fmt.Errorf("%w: entry point %s", ErrUnknownNode, g.entry)
	}

	var errs []error
	for _, id := range g.order {
		if !g.hasTransition(id) {
			errs = append(errs, fmt.Errorf("%w: %s", ErrMissingEdge, id))
		}
	}
	for _, from := range sortedKeys(g.edges) {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: edge source %s", ErrUnknownNode, from))
		}
		if to := g.edges[from]; !g.isTarget(to) {
			errs = append(errs, fmt.Errorf("%w: edge %s -> %s", ErrUnknownNode, from, to))
		}
	}
	for _, from := range sortedKeys(g.branches) {
		if _, ok := g.nodes[from]; !ok {
			errs = append(errs, fmt.Errorf("%w: router source %s", ErrUnknownNode, from))
		}
		pathMap := g.branches[from].pathMap
		for _, key := range sortedKeys(pathMap) {
			if to := pathMap[key]; !g.isTarget(to) {
				errs = append(errs, fmt.Errorf("%w: route %s[%s] -> %s", ErrUnknownNode, from, key, to))
			}
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return g.detectCycles()
}

func (g *StateGraph[S, U]) isTarget(id string) bool {
	if id == END {
		return true
	}
	_, ok := g.nodes[id]
	return ok
}

// successors lists every node reachable in one transition from id.
func (g *StateGraph[S, U]) successors(id string) []string {
	if to, ok := g.edges[id]; ok {
		return []string{to}
	}
	b, ok := g.branches[id]
	if !ok {
		return nil
	}
	seen := make(map[string]bool, len(b.pathMap))
	var out []string
	for _, key := range sortedKeys(b.pathMap) {
		to := b.pathMap[key]
		if !seen[to] {
			seen[to] = true
			out = append(out, to)
		}
	}
	return out
}

// detectCycles runs a DFS with a recursion stack over every node.
func (g *StateGraph[S, U]) detectCycles() error {
	visited := make(map[string]bool, len(g.nodes))
	recStack := make(map[string]bool, len(g.nodes))

	var dfs func(id string, path []string) error
	dfs = func(id string, path []string) error {
		visited[id] = true
		recStack[id] = true
		path = append(path, id)

		for _, next := range g.successors(id) {
			if next == END {
				continue
			}
			if !visited[next] {
				if err := dfs(next, path); err != nil {
					return err
				}
			} else if recStack[next] {
				return fmt.Errorf("%w: %v -> %s", ErrCycleDetected, path, next)
			}
		}

		recStack[id] = false
		return nil
	}

	for _, id := range g.order {
		if !visited[id] {
			if err := dfs(id, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// CompiledGraph is an immutable, validated graph. It is safe for concurrent
// use by any number of executors.
type CompiledGraph[S, U any] struct {
	name     string
	entry    string
	merge    MergeFunc[S, U]
	nodes    map[string]NodeFunc[S, U]
	order    []string
	edges    map[string]string
	branches map[string]branch[S]
}

// Name returns the graph name.
func (c *CompiledGraph[S, U]) Name() string { return c.name }

// EntryPoint returns the first node of every run.
func (c *CompiledGraph[S, U]) EntryPoint() string { return c.entry }

// Nodes returns node ids in registration order.
func (c *CompiledGraph[S, U]) Nodes() []string {
	return append([]string(nil), c.order...)
}

// Next resolves the node that follows from, given the state after from's
// update was merged.
func (c *CompiledGraph[S, U]) Next(from string, state S) (string, error) {
	if to, ok := c.edges[from]; ok {
		return to, nil
	}
	b, ok := c.branches[from]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingEdge, from)
	}
	key := b.router(state)
	to, ok := b.pathMap[key]
	if !ok {
		return "", fmt.Errorf("%w: node %s returned %q", ErrUnmappedRouteKey, from, key)
	}
	return to, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
