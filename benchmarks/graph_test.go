package benchmarks

import (
	"fmt"
	"testing"

	"github.com/wjs2063/tripgraph/pkg/stategraph"
)

// Itinerary is a plan-shaped state: a step queue plus an append-only log.
type Itinerary struct {
	Pending []string `json:"pending"`
	Done    []string `json:"done"`
	Answer  string   `json:"answer"`
}

// ItineraryUpdate is a partial update of Itinerary.
type ItineraryUpdate struct {
	Pending stategraph.Optional[[]string]
	Done    []string
	Answer  stategraph.Optional[string]
}

func mergeItinerary(s Itinerary, u ItineraryUpdate) Itinerary {
	s.Pending = u.Pending.Apply(s.Pending)
	s.Done = stategraph.AppendOnly(s.Done, u.Done...)
	s.Answer = u.Answer.Apply(s.Answer)
	return s
}

func noopNode(_ stategraph.Context, _ Itinerary) (ItineraryUpdate, error) {
	return ItineraryUpdate{}, nil
}

func nodeID(i int) string {
	return fmt.Sprintf("node-%d", i)
}

func newGraph() *stategraph.Graph[Itinerary, ItineraryUpdate] {
	return stategraph.NewGraph[Itinerary, ItineraryUpdate](mergeItinerary)
}

func BenchmarkNewGraph(b *testing.B) {
	for i := 0; i < b.N; i++ {
		newGraph()
	}
}

func BenchmarkAddNode_10(b *testing.B) {
	for i := 0; i < b.N; i++ {
		g := newGraph()
		for j := 0; j < 10; j++ {
			g.AddNode(nodeID(j), noopNode)
		}
	}
}

// BenchmarkCompile_PlanLoop compiles a three-node graph with a routed cycle.
func BenchmarkCompile_PlanLoop(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := buildPlanLoop().Compile(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCompile_Linear_100(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := buildLinear(100).Compile(); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMerge(b *testing.B) {
	s := Itinerary{Pending: []string{"a", "b", "c"}}
	u := ItineraryUpdate{Pending: stategraph.Some([]string{"b", "c"}), Done: []string{"a"}}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = mergeItinerary(s, u)
	}
}
