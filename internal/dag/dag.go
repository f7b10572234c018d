// Package dag models one hazard calculation as a directed acyclic graph of
// stage tasks. Edges express the strict ordering inside a single source set's
// stage chain; unconnected chains run fully in parallel on the shared pool.
package dag

import (
	"fmt"
	"sync/atomic"

	"github.com/pmpowers-usgs/nshmp-sha/internal/pool"
)

// State describes the lifecycle of a node during one Run.
type State int32

const (
	Pending State = iota
	Running
	Done
	Failed
	Skipped
)

// Node is a single stage task in a calculation graph.
type Node struct {
	// ID is the unique identifier for the node.
	ID string
	// Run is the stage task dispatched to the worker pool.
	Run pool.Task

	deps       map[string]*Node
	dependents map[string]*Node
	depCount   atomic.Int32
	state      atomic.Int32
	err        error
}

// Err returns the node's terminal error, if any. Valid only after Run returns.
func (n *Node) Err() error {
	return n.err
}

// State returns the node's lifecycle state.
func (n *Node) State() State {
	return State(n.state.Load())
}

// Graph is a collection of stage nodes and their dependencies. A Graph is
// built single-threaded, run once, then discarded with its calculation.
type Graph struct {
	nodes map[string]*Node
}

// New creates an initialized, empty Graph.
func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// AddNode adds a new node with the given ID and task to the graph. Duplicate
// IDs are rejected; every stage of a calculation must be uniquely addressable.
func (g *Graph) AddNode(id string, run pool.Task) (*Node, error) {
	if _, ok := g.nodes[id]; ok {
		return nil, fmt.Errorf("duplicate node: %s", id)
	}
	n := &Node{
		ID:         id,
		Run:        run,
		deps:       make(map[string]*Node),
		dependents: make(map[string]*Node),
	}
	g.nodes[id] = n
	return n, nil
}

// AddEdge creates a directed edge from the `fromID` node to the `toID` node,
// meaning `toID` may not start before `fromID` completes. An error is
// returned if either node does not exist or the edge is self-referential.
func (g *Graph) AddEdge(fromID, toID string) error {
	if fromID == toID {
		return fmt.Errorf("self-referential edge not allowed: %s -> %s", fromID, fromID)
	}
	fromNode, ok := g.nodes[fromID]
	if !ok {
		return fmt.Errorf("source node not found: %s", fromID)
	}
	toNode, ok := g.nodes[toID]
	if !ok {
		return fmt.Errorf("destination node not found: %s", toID)
	}
	toNode.deps[fromID] = fromNode
	fromNode.dependents[toID] = toNode
	return nil
}

// Size returns the number of nodes in the graph.
func (g *Graph) Size() int {
	return len(g.nodes)
}

// detectCycles checks the graph for cycles using depth-first search with
// permanent and temporary marks.
func (g *Graph) detectCycles() error {
	permanent := make(map[string]bool)
	temporary := make(map[string]bool)

	var visit func(n *Node) error
	visit = func(n *Node) error {
		if permanent[n.ID] {
			return nil
		}
		if temporary[n.ID] {
			return fmt.Errorf("cycle detected involving node '%s'", n.ID)
		}
		temporary[n.ID] = true
		for _, dependent := range n.dependents {
			if err := visit(dependent); err != nil {
				return err
			}
		}
		delete(temporary, n.ID)
		permanent[n.ID] = true
		return nil
	}

	for _, n := range g.nodes {
		if !permanent[n.ID] {
			if err := visit(n); err != nil {
				return err
			}
		}
	}
	return nil
}
