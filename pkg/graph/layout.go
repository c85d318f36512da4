package graph

// Default spacing between layers and between nodes within a layer,
// in editor units.
const (
	LayerSpacingX = 220.0
	NodeSpacingY  = 120.0
)

// Layers assigns each node a layer equal to the length of the longest path
// from any source node to it, computed by a topological traversal
// (longest-path layering, not plain BFS depth). Nodes on cycles never reach
// zero in-degree and remain at layer 0.
func (g Graph) Layers() map[string]int {
	inDegree := make(map[string]int, len(g.Nodes))
	layers := make(map[string]int, len(g.Nodes))
	var queue []string

	for _, n := range g.Nodes {
		degree := g.InDegree(n.ID)
		inDegree[n.ID] = degree
		if degree == 0 {
			queue = append(queue, n.ID)
		}
	}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range g.Outgoing(cur) {
			if l := layers[cur] + 1; l > layers[e.Target] {
				layers[e.Target] = l
			}
			inDegree[e.Target]--
			if inDegree[e.Target] == 0 {
				queue = append(queue, e.Target)
			}
		}
	}

	return layers
}

// AutoLayout returns a new graph with node positions assigned left-to-right
// by layer and top-to-bottom within a layer. Because a node's layer is the
// longest source path to it, every edge points forward horizontally - no
// edge ever points backward.
func (g Graph) AutoLayout() Graph {
	layers := g.Layers()
	out := g.Clone()

	rowInLayer := make(map[int]int)
	for i := range out.Nodes {
		layer := layers[out.Nodes[i].ID]
		row := rowInLayer[layer]
		rowInLayer[layer] = row + 1
		out.Nodes[i].Position = Position{
			X: float64(layer) * LayerSpacingX,
			Y: float64(row) * NodeSpacingY,
		}
	}
	return out
}

// MinimapNode is a node projected into minimap space.
type MinimapNode struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// MinimapEdge is a straight edge path in minimap space.
type MinimapEdge struct {
	ID string  `json:"id"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
	X2 float64 `json:"x2"`
	Y2 float64 `json:"y2"`
}

// Minimap is a proportional projection of the graph into a bounding box.
type Minimap struct {
	Width  float64       `json:"width"`
	Height float64       `json:"height"`
	Nodes  []MinimapNode `json:"nodes"`
	Edges  []MinimapEdge `json:"edges"`
}

// Minimap projects node positions and straight edge paths into a
// proportional box of at most width x height. An empty graph yields a
// zero-size box.
func (g Graph) Minimap(width, height float64) Minimap {
	if len(g.Nodes) == 0 {
		return Minimap{}
	}

	minX, minY := g.Nodes[0].Position.X, g.Nodes[0].Position.Y
	maxX, maxY := minX, minY
	for _, n := range g.Nodes[1:] {
		minX = min(minX, n.Position.X)
		minY = min(minY, n.Position.Y)
		maxX = max(maxX, n.Position.X)
		maxY = max(maxY, n.Position.Y)
	}

	spanX, spanY := maxX-minX, maxY-minY
	scaleX, scaleY := 1.0, 1.0
	if spanX > 0 {
		scaleX = width / spanX
	}
	if spanY > 0 {
		scaleY = height / spanY
	}

	project := func(p Position) (float64, float64) {
		return (p.X - minX) * scaleX, (p.Y - minY) * scaleY
	}

	m := Minimap{Width: spanX * scaleX, Height: spanY * scaleY}
	pos := make(map[string]Position, len(g.Nodes))
	for _, n := range g.Nodes {
		x, y := project(n.Position)
		m.Nodes = append(m.Nodes, MinimapNode{ID: n.ID, X: x, Y: y})
		pos[n.ID] = n.Position
	}
	for _, e := range g.Edges {
		x1, y1 := project(pos[e.Source])
		x2, y2 := project(pos[e.Target])
		m.Edges = append(m.Edges, MinimapEdge{ID: e.ID, X1: x1, Y1: y1, X2: x2, Y2: y2})
	}
	return m
}
