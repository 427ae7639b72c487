package transform

// Use-def dependency graph over top-level declarations. Node identity
// is a (kind, name) pair so a function and a type of the same name stay
// distinct. Adjacency preserves insertion order, which makes the
// minified output order a pure function of the input.

type nodeKind uint8

const (
	nodeFunction nodeKind = iota
	nodeDeclaration
)

type nodeKey struct {
	kind nodeKind
	name string
}

func fnKey(name string) nodeKey {
	return nodeKey{kind: nodeFunction, name: name}
}

func declKey(name string) nodeKey {
	return nodeKey{kind: nodeDeclaration, name: name}
}

type depGraph struct {
	nodes   map[nodeKey]int
	keys    []nodeKey
	edges   [][]int
	edgeSet map[[2]int]bool
}

func newDepGraph() *depGraph {
	return &depGraph{
		nodes:   make(map[nodeKey]int),
		edgeSet: make(map[[2]int]bool),
	}
}

// declare interns a symbol and returns its node index.
func (g *depGraph) declare(key nodeKey) int {
	if id, ok := g.nodes[key]; ok {
		return id
	}
	id := len(g.keys)
	g.nodes[key] = id
	g.keys = append(g.keys, key)
	g.edges = append(g.edges, nil)
	return id
}

// addDep records that scope depends on dependency. Self-references are
// ignored (a function calling itself is invalid GLSL anyway).
func (g *depGraph) addDep(scope, dependency int) {
	if scope == dependency {
		return
	}
	edge := [2]int{scope, dependency}
	if g.edgeSet[edge] {
		return
	}
	g.edgeSet[edge] = true
	g.edges[scope] = append(g.edges[scope], dependency)
}

// dependencies returns the transitive closure of the given roots in
// depth-first post-order: every node appears after its dependencies.
func (g *depGraph) dependencies(roots []nodeKey) []nodeKey {
	visited := make([]bool, len(g.keys))
	out := make([]nodeKey, 0, len(g.keys))

	var visit func(int)
	visit = func(n int) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, dep := range g.edges[n] {
			visit(dep)
		}
		out = append(out, g.keys[n])
	}

	for _, root := range roots {
		if id, ok := g.nodes[root]; ok {
			visit(id)
		}
	}

	return out
}
