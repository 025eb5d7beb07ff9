package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/confql/internal/shape"
)

// CycleWarning reports record types that require each other.
//
// A field whose shape is a bare record (Thing!) needs that record's data
// to be present. When such fields form a cycle no finite document tree
// can satisfy the query type's fields on the cycle, so every resolution
// through them fails with DATA_NOT_FOUND. Lists and optionals break the
// cycle: an absent list resolves to [] and an absent optional to null.
type CycleWarning struct {
	Path    []string `json:"path" yaml:"path"`       // ["Node", "Node"] or ["A", "B", "A"]
	Message string   `json:"message" yaml:"message"` // Human-readable description
	Level   string   `json:"level" yaml:"level"`     // "warning"
}

// AnalyzeCycles finds required-record cycles in schema.
//
// The algorithm:
//  1. Build a type -> type graph with one edge per required record field
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
//
// Warnings are ordered by the first type name on each cycle.
func AnalyzeCycles(schema *shape.Schema) []CycleWarning {
	graph := buildRequirementGraph(schema)

	var warnings []CycleWarning
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			warnings = append(warnings, cycleSCCToWarning(scc, graph))
		}
	}
	sort.Slice(warnings, func(i, j int) bool {
		return warnings[i].Path[0] < warnings[j].Path[0]
	})
	return warnings
}

// requirementGraph maps a type name to the record types its required
// fields need, in field order.
type requirementGraph map[string][]string

func buildRequirementGraph(schema *shape.Schema) requirementGraph {
	graph := make(requirementGraph, len(schema.Types))
	for _, name := range schema.TypeNames() {
		graph[name] = []string{}
		for _, f := range schema.Types[name].Fields {
			if rec, ok := f.Shape.(*shape.Record); ok {
				graph[name] = append(graph[name], rec.Name)
			}
		}
	}
	return graph
}

func hasSelfLoop(node string, graph requirementGraph) bool {
	for _, neighbor := range graph[node] {
		if neighbor == node {
			return true
		}
	}
	return false
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in name order so the output is deterministic; within
// an SCC the nodes are sorted.
func tarjanSCC(graph requirementGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		// v is the root of an SCC
		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			sort.Strings(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}

	return sccs
}

func cycleSCCToWarning(scc []string, graph requirementGraph) CycleWarning {
	if len(scc) == 1 {
		name := scc[0]
		return CycleWarning{
			Path:    []string{name, name},
			Message: fmt.Sprintf("type %s requires itself", name),
			Level:   "warning",
		}
	}

	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("required record cycle: %s", strings.Join(path, " -> ")),
		Level:   "warning",
	}
}

// reconstructCyclePath walks edges inside the SCC from its first node
// until it returns to it.
func reconstructCyclePath(scc []string, graph requirementGraph) []string {
	if len(scc) == 0 {
		return []string{}
	}

	sccSet := make(map[string]bool, len(scc))
	for _, node := range scc {
		sccSet[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)

	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if sccSet[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}

		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}

	return path
}
