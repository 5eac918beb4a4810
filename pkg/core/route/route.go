package route

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/jakechorley/supply-board/pkg/core/model"
)

// MaxStops bounds the number of distinct stops a route may visit. Every
// permutation is evaluated, so 9 stops already means 362 880 candidates.
const MaxStops = 9

var ErrTooManyStops = fmt.Errorf("route has more than %d stops", MaxStops)

// Route is the best ordering found for a set of stops
type Route struct {
	Origin       string
	Stops        []string
	TotalMinutes float64
	TotalKm      float64

	// Found is false when every ordering needs an edge that doesn't exist
	Found bool

	// Evaluated counts the complete orderings whose every edge exists
	Evaluated int
}

// leg is a directed edge weighted by travel time that also carries the distance
type leg struct {
	from, to graph.Node
	minutes  float64
	km       float64
}

func (l leg) From() graph.Node         { return l.from }
func (l leg) To() graph.Node           { return l.to }
func (l leg) Weight() float64          { return l.minutes }
func (l leg) ReversedEdge() graph.Edge { return leg{from: l.to, to: l.from, minutes: l.minutes, km: l.km} }

type nodeKey struct {
	supplier bool
	id       string
}

// Network is the directed distance graph between suppliers and stops.
// Supplier and stop ids live in separate namespaces, so a supplier and a stop may
// share an id. When the same edge is given twice the later one wins.
type Network struct {
	g     *simple.WeightedDirectedGraph
	nodes map[nodeKey]int64
}

// NewNetwork builds a network from supplier→stop and stop→stop edges
func NewNetwork(supplierEdges, stopEdges []model.DistanceEdge) (*Network, error) {
	n := &Network{
		g:     simple.NewWeightedDirectedGraph(0, math.Inf(1)),
		nodes: make(map[nodeKey]int64),
	}

	for _, e := range supplierEdges {
		if err := n.addEdge(nodeKey{supplier: true, id: e.FromID}, nodeKey{id: e.ToID}, e); err != nil {
			return nil, err
		}
	}
	for _, e := range stopEdges {
		if e.FromID == e.ToID {
			continue
		}
		if err := n.addEdge(nodeKey{id: e.FromID}, nodeKey{id: e.ToID}, e); err != nil {
			return nil, err
		}
	}

	return n, nil
}

func (n *Network) node(key nodeKey) graph.Node {
	id, ok := n.nodes[key]
	if !ok {
		id = int64(len(n.nodes))
		n.nodes[key] = id
		n.g.AddNode(simple.Node(id))
	}
	return simple.Node(id)
}

func (n *Network) addEdge(from, to nodeKey, e model.DistanceEdge) error {
	if from.id == "" || to.id == "" {
		return fmt.Errorf("edge %q -> %q has an empty endpoint", e.FromID, e.ToID)
	}
	if !validDistance(e.DistanceKm) || !validDistance(e.DistanceMinutes) {
		return fmt.Errorf("edge %s -> %s has invalid distance (%v km, %v min)", e.FromID, e.ToID, e.DistanceKm, e.DistanceMinutes)
	}

	n.g.SetWeightedEdge(leg{
		from:    n.node(from),
		to:      n.node(to),
		minutes: e.DistanceMinutes,
		km:      e.DistanceKm,
	})
	return nil
}

func validDistance(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}

// edge returns the direct leg between two nodes
func (n *Network) edge(from, to int64) (leg, bool) {
	e := n.g.WeightedEdge(from, to)
	if e == nil {
		return leg{}, false
	}
	l, ok := e.(leg)
	return l, ok
}

// FindRoute returns the quickest ordering of stops starting at the origin supplier.
//
// Orderings are generated by recursive swapping: at each depth the remaining stops
// are tried in their current position order. An ordering that needs a missing edge
// is skipped. On equal totals the first ordering generated wins. Duplicate stop ids
// are visited once. Zero stops is a found route with an empty path.
func (n *Network) FindRoute(originID string, stopIDs []string) (Route, error) {
	stops := dedupe(stopIDs)
	if len(stops) > MaxStops {
		return Route{}, fmt.Errorf("%w: got %d", ErrTooManyStops, len(stops))
	}

	result := Route{Origin: originID, Stops: []string{}}
	if len(stops) == 0 {
		result.Found = true
		return result, nil
	}

	origin, ok := n.nodes[nodeKey{supplier: true, id: originID}]
	if !ok {
		return result, nil
	}

	perm := make([]int64, len(stops))
	names := make(map[int64]string, len(stops))
	for i, id := range stops {
		nodeID, ok := n.nodes[nodeKey{id: id}]
		if !ok {
			// Nothing leads to this stop
			return result, nil
		}
		perm[i] = nodeID
		names[nodeID] = id
	}

	var best []int64
	var bestMinutes, bestKm float64

	var permute func(k int, minutes, km float64)
	permute = func(k int, minutes, km float64) {
		if k == len(perm) {
			result.Evaluated++
			if best == nil || minutes < bestMinutes {
				best = append(best[:0], perm...)
				bestMinutes, bestKm = minutes, km
			}
			return
		}

		prev := origin
		if k > 0 {
			prev = perm[k-1]
		}
		for i := k; i < len(perm); i++ {
			perm[k], perm[i] = perm[i], perm[k]
			if l, ok := n.edge(prev, perm[k]); ok {
				permute(k+1, minutes+l.minutes, km+l.km)
			}
			perm[k], perm[i] = perm[i], perm[k]
		}
	}
	permute(0, 0, 0)

	if best == nil {
		return result, nil
	}

	for _, id := range best {
		result.Stops = append(result.Stops, names[id])
	}
	result.TotalMinutes = bestMinutes
	result.TotalKm = bestKm
	result.Found = true
	return result, nil
}

// FindRoute builds a network from the edges and solves a single route on it
func FindRoute(originID string, stopIDs []string, supplierEdges, stopEdges []model.DistanceEdge) (Route, error) {
	n, err := NewNetwork(supplierEdges, stopEdges)
	if err != nil {
		return Route{}, fmt.Errorf("failed to build network: %w", err)
	}
	return n.FindRoute(originID, stopIDs)
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
