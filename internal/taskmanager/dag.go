package taskmanager

import "fmt"

// DAG is a dependency graph that remembers the order nodes were added in.
type DAG struct {
	order      []string
	nodes      map[string]bool
	edges      map[string][]string // node -> nodes it depends on
	dependents map[string][]string // node -> nodes depending on it
}

// NewDAG creates a new empty DAG.
func NewDAG() *DAG {
	return &DAG{
		nodes:      make(map[string]bool),
		edges:      make(map[string][]string),
		dependents: make(map[string][]string),
	}
}

// AddNode adds a node to the DAG.
func (d *DAG) AddNode(id string) {
	if !d.nodes[id] {
		d.nodes[id] = true
		d.order = append(d.order, id)
	}
}

// AddEdge records that 'from' depends on 'to'.
func (d *DAG) AddEdge(from, to string) {
	d.AddNode(from)
	d.AddNode(to)
	d.edges[from] = append(d.edges[from], to)
	d.dependents[to] = append(d.dependents[to], from)
}

// TopologicalSort returns the nodes in execution order. Among nodes that are
// ready at the same time, the one added first runs first.
func (d *DAG) TopologicalSort() ([]string, error) {
	position := make(map[string]int, len(d.order))
	inDegree := make(map[string]int, len(d.order))
	for i, node := range d.order {
		position[node] = i
		inDegree[node] = len(d.edges[node])
	}

	ready := make([]bool, len(d.order))
	for i, node := range d.order {
		ready[i] = inDegree[node] == 0
	}

	result := make([]string, 0, len(d.order))
	for len(result) < len(d.order) {
		next := -1
		for i, ok := range ready {
			if ok {
				next = i
				break
			}
		}
		if next < 0 {
			return nil, fmt.Errorf("circular dependency detected in DAG")
		}

		current := d.order[next]
		ready[next] = false
		result = append(result, current)

		for _, dependent := range d.dependents[current] {
			inDegree[dependent]--
			if inDegree[dependent] == 0 {
				ready[position[dependent]] = true
			}
		}
	}

	return result, nil
}
