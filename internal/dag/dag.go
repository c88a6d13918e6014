package dag

import (
	"slices"
	"sort"
	"sync"
)

// Graph records references between named objects. It accepts cycles and
// self references and reports them on request. It is safe for concurrent
// use.
type Graph struct {
	mu    sync.RWMutex
	refs  map[string]map[string]bool // referrer -> referenced
	back  map[string]map[string]bool // referenced -> referrers
	order []string
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		refs: make(map[string]map[string]bool),
		back: make(map[string]map[string]bool),
	}
}

func (g *Graph) touch(name string) {
	if _, ok := g.refs[name]; ok {
		return
	}
	g.refs[name] = make(map[string]bool)
	g.back[name] = make(map[string]bool)
	g.order = append(g.order, name)
}

// Reference records that referrer's configuration refers to target.
// Repeated references are recorded once.
func (g *Graph) Reference(referrer, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.touch(referrer)
	g.touch(target)
	g.refs[referrer][target] = true
	g.back[target][referrer] = true
}

// Names returns every name seen, in the order it was first recorded.
func (g *Graph) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.order)
}

// References returns the sorted names that name refers to.
func (g *Graph) References(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.refs[name])
}

// Referrers returns the sorted names that refer to name.
func (g *Graph) Referrers(name string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return sortedKeys(g.back[name])
}

// Cycles returns each reference cycle found by a depth-first walk from the
// names in recording order. A cycle lists the names along it starting with
// the first one reached; a self reference is a cycle of one.
func (g *Graph) Cycles() [][]string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	done := make(map[string]bool)
	onPath := make(map[string]int)
	var path []string
	var cycles [][]string

	var walk func(name string)
	walk = func(name string) {
		if done[name] {
			return
		}
		if i, ok := onPath[name]; ok {
			cycles = append(cycles, slices.Clone(path[i:]))
			return
		}
		onPath[name] = len(path)
		path = append(path, name)
		for _, next := range sortedKeys(g.refs[name]) {
			walk(next)
		}
		path = path[:len(path)-1]
		delete(onPath, name)
		done[name] = true
	}

	for _, name := range g.order {
		walk(name)
	}
	return cycles
}

func sortedKeys(set map[string]bool) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
