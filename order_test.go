package streamnet

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestOrderStreamsY(t *testing.T) {
	graph, err := BuildChannelGraph(yNetwork(t), 0.001)
	if err != nil {
		t.Fatalf("Graph must be built: %v", err)
	}
	orders := OrderStreams(graph)
	expected := []int{1, 1, 2}
	for i := range expected {
		if orders[i] != expected[i] {
			t.Errorf("Order of segment %d must be %d, but got %d", graph.Segment(i).ID, expected[i], orders[i])
		}
	}
}

func TestOrderStreamsChain(t *testing.T) {
	segments := []*ChannelSegment{
		mustSegment(t, 0, orb.Point{0, 0}, orb.Point{10, 0}),
		mustSegment(t, 1, orb.Point{10, 0}, orb.Point{20, 0}),
		mustSegment(t, 2, orb.Point{20, 0}, orb.Point{30, 0}),
	}
	graph, err := BuildChannelGraph(segments, 0.001)
	if err != nil {
		t.Fatalf("Graph must be built: %v", err)
	}
	orders := OrderStreams(graph)
	for i, order := range orders {
		if order != 1 {
			t.Errorf("Order of segment %d must be %d, but got %d", graph.Segment(i).ID, 1, order)
		}
	}
}

func TestOrderStreamsLoopTerminates(t *testing.T) {
	// Loop 1 -> 2 -> 3 -> 1 fed by tip 0
	segments := []*ChannelSegment{
		mustSegment(t, 0, orb.Point{0, 0}, orb.Point{10, 0}),
		mustSegment(t, 1, orb.Point{10, 0}, orb.Point{20, 0}),
		mustSegment(t, 2, orb.Point{20, 0}, orb.Point{20, 10}),
		mustSegment(t, 3, orb.Point{20, 10}, orb.Point{10, 0}),
	}
	graph, err := BuildChannelGraph(segments, 0.001)
	if err != nil {
		t.Fatalf("Graph must be built: %v", err)
	}
	orders := OrderStreams(graph)
	expected := []int{1, 1, 1, 1}
	for i := range expected {
		if orders[i] != expected[i] {
			t.Errorf("Order of segment %d must be %d, but got %d", graph.Segment(i).ID, expected[i], orders[i])
		}
	}
}
