package gantt

// Graph indexes the dependency edges of the loaded tasks. Edges to unknown
// ids are dropped.
type Graph struct {
	ids          []string
	index        map[string]int
	dependents   [][]int
	predecessors [][]int
}

// BuildGraph maps every task to the tasks that depend on it, in task-list
// order.
func BuildGraph(tasks []*Task) *Graph {
	g := &Graph{
		ids:          make([]string, len(tasks)),
		index:        make(map[string]int, len(tasks)),
		dependents:   make([][]int, len(tasks)),
		predecessors: make([][]int, len(tasks)),
	}
	for i, t := range tasks {
		g.ids[i] = t.ID
		g.index[t.ID] = i
	}
	for i, t := range tasks {
		for _, dep := range t.Dependencies {
			j, ok := g.index[dep]
			if !ok || j == i {
				continue
			}
			g.dependents[j] = append(g.dependents[j], i)
			g.predecessors[i] = append(g.predecessors[i], j)
		}
	}
	return g
}

func (g *Graph) names(idx []int) []string {
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = g.ids[i]
	}
	return out
}

// Dependents returns the direct dependents of id.
func (g *Graph) Dependents(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.names(g.dependents[i])
}

// Predecessors returns the resolved dependencies of id.
func (g *Graph) Predecessors(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	return g.names(g.predecessors[i])
}

// Descendants returns every task reachable from id through dependents, in
// breadth-first order, each once. id itself is not included, even on a
// cycle.
func (g *Graph) Descendants(id string) []string {
	root, ok := g.index[id]
	if !ok {
		return nil
	}
	visited := make([]bool, len(g.ids))
	visited[root] = true
	queue := []int{root}
	var out []int
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.dependents[cur] {
			if visited[next] {
				continue
			}
			visited[next] = true
			out = append(out, next)
			queue = append(queue, next)
		}
	}
	return g.names(out)
}

// Edges returns every resolved (predecessor, dependent) pair.
func (g *Graph) Edges() [][2]string {
	var out [][2]string
	for i, deps := range g.predecessors {
		for _, j := range deps {
			out = append(out, [2]string{g.ids[j], g.ids[i]})
		}
	}
	return out
}
