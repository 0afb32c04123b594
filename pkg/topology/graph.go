package topology

import (
	"context"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/travigo/urbantransit/pkg/transit"
)

type adjacency struct {
	to   string
	edge transit.TopologyEdge
}

// Graph is an in-memory undirected multigraph of stops joined by RIDE and
// TRANSFER edges. It answers the same shortest path query as the Neo4j
// backed topology and is used when no graph database is configured.
type Graph struct {
	mutex    sync.RWMutex
	stops    map[string]transit.Stop
	edges    map[string][]adjacency
	edgeList []Edge
}

// Edge is one undirected connection as it was added to the graph
type Edge struct {
	FromStopID string
	ToStopID   string

	transit.TopologyEdge
}

func NewGraph() *Graph {
	return &Graph{
		stops: map[string]transit.Stop{},
		edges: map[string][]adjacency{},
	}
}

func (g *Graph) AddStop(stop transit.Stop) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	g.stops[stop.StopID] = stop
}

func (g *Graph) AddRide(fromStopID string, toStopID string, lineID string, averageTravelSeconds int) {
	g.addEdge(fromStopID, toStopID, transit.TopologyEdge{
		Type:                 transit.EdgeTypeRide,
		LineID:               lineID,
		AverageTravelSeconds: averageTravelSeconds,
	})
}

func (g *Graph) AddTransfer(fromStopID string, toStopID string, walkSeconds int) {
	g.addEdge(fromStopID, toStopID, transit.TopologyEdge{
		Type:        transit.EdgeTypeTransfer,
		WalkSeconds: walkSeconds,
	})
}

func (g *Graph) addEdge(fromStopID string, toStopID string, edge transit.TopologyEdge) {
	g.mutex.Lock()
	defer g.mutex.Unlock()

	for _, stopID := range []string{fromStopID, toStopID} {
		if _, exists := g.stops[stopID]; !exists {
			g.stops[stopID] = transit.Stop{StopID: stopID}
		}
	}

	g.edgeList = append(g.edgeList, Edge{FromStopID: fromStopID, ToStopID: toStopID, TopologyEdge: edge})

	g.edges[fromStopID] = append(g.edges[fromStopID], adjacency{to: toStopID, edge: edge})
	if fromStopID != toStopID {
		g.edges[toStopID] = append(g.edges[toStopID], adjacency{to: fromStopID, edge: edge})
	}
}

func (g *Graph) StopCount() int {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return len(g.stops)
}

// Stops returns every known stop ordered by id
func (g *Graph) Stops() []transit.Stop {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	stops := make([]transit.Stop, 0, len(g.stops))
	for _, stop := range g.stops {
		stops = append(stops, stop)
	}

	slices.SortFunc(stops, func(a, b transit.Stop) int {
		switch {
		case a.StopID < b.StopID:
			return -1
		case a.StopID > b.StopID:
			return 1
		default:
			return 0
		}
	})

	return stops
}

// Edges returns the edges in insertion order
func (g *Graph) Edges() []Edge {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	return slices.Clone(g.edgeList)
}

type predecessor struct {
	from string
	edge transit.TopologyEdge
}

// switchState is the cheapest known way to reach a stop with a given label on
// the last edge taken
type switchState struct {
	stopID   string
	label    string
	switches int

	previous *switchState
	edge     transit.TopologyEdge
}

func findState(states []*switchState, label string) *switchState {
	for _, state := range states {
		if state.label == label {
			return state
		}
	}
	return nil
}

// ShortestPaths returns the minimal-hop path with the fewest line switches
// between the two stops, or nothing when there is none. Every minimal-hop
// path is considered. Ties keep the path found first, following edge
// insertion order. Unknown stops, identical endpoints and destinations
// further than maxHops away yield no paths.
func (g *Graph) ShortestPaths(ctx context.Context, originStopID string, destinationStopID string, maxHops int) ([]transit.Path, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	if originStopID == destinationStopID {
		return nil, nil
	}
	if _, exists := g.stops[originStopID]; !exists {
		return nil, nil
	}
	if _, exists := g.stops[destinationStopID]; !exists {
		return nil, nil
	}

	depth := map[string]int{originStopID: 0}
	predecessors := map[string][]predecessor{}
	frontier := []string{originStopID}
	var layers [][]string

	for hops := 1; hops <= maxHops && len(frontier) > 0; hops++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var next []string
		for _, stopID := range frontier {
			for _, adjacent := range g.edges[stopID] {
				seenDepth, seen := depth[adjacent.to]
				if !seen {
					depth[adjacent.to] = hops
					next = append(next, adjacent.to)
				} else if seenDepth != hops {
					continue
				}

				predecessors[adjacent.to] = append(predecessors[adjacent.to], predecessor{from: stopID, edge: adjacent.edge})
			}
		}

		if _, found := depth[destinationStopID]; found {
			layers = append(layers, []string{destinationStopID})
			break
		}

		layers = append(layers, next)
		frontier = next
	}

	if _, found := depth[destinationStopID]; !found {
		return nil, nil
	}

	best, err := fewestSwitches(ctx, originStopID, destinationStopID, layers, predecessors)
	if err != nil || best == nil {
		return nil, err
	}

	return []transit.Path{g.buildPath(best)}, nil
}

// fewestSwitches walks the predecessor DAG layer by layer keeping, for each
// (stop, last label) pair, the state with the fewest switches so far
func fewestSwitches(ctx context.Context, originStopID string, destinationStopID string, layers [][]string, predecessors map[string][]predecessor) (*switchState, error) {
	states := map[string][]*switchState{
		originStopID: {{stopID: originStopID}},
	}

	for _, layer := range layers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		for _, stopID := range layer {
			for _, pred := range predecessors[stopID] {
				label := pred.edge.SwitchLabel()

				for _, from := range states[pred.from] {
					switches := from.switches
					if from.previous != nil && from.label != label {
						switches++
					}

					existing := findState(states[stopID], label)
					if existing == nil {
						states[stopID] = append(states[stopID], &switchState{
							stopID:   stopID,
							label:    label,
							switches: switches,
							previous: from,
							edge:     pred.edge,
						})
					} else if switches < existing.switches {
						existing.switches = switches
						existing.previous = from
						existing.edge = pred.edge
					}
				}
			}
		}
	}

	var best *switchState
	for _, state := range states[destinationStopID] {
		if best == nil || state.switches < best.switches {
			best = state
		}
	}

	return best, nil
}

func (g *Graph) buildPath(last *switchState) transit.Path {
	var reversedNodes []string
	var reversedEdges []transit.TopologyEdge

	for state := last; state != nil; state = state.previous {
		reversedNodes = append(reversedNodes, state.stopID)
		if state.previous != nil {
			reversedEdges = append(reversedEdges, state.edge)
		}
	}

	path := transit.Path{
		Nodes: make([]transit.Stop, len(reversedNodes)),
		Edges: make([]transit.TopologyEdge, len(reversedEdges)),
	}

	for i, stopID := range reversedNodes {
		path.Nodes[len(reversedNodes)-1-i] = g.stops[stopID]
	}
	for i, edge := range reversedEdges {
		path.Edges[len(reversedEdges)-1-i] = edge
	}

	return path
}
