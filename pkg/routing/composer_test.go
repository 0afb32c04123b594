package routing

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/urbantransit/pkg/topology"
	"github.com/travigo/urbantransit/pkg/transit"
)

type fakeTopology struct {
	paths []transit.Path
	err   error

	maxHops int
}

func (f *fakeTopology) ShortestPaths(ctx context.Context, originStopID string, destinationStopID string, maxHops int) ([]transit.Path, error) {
	f.maxHops = maxHops
	return f.paths, f.err
}

type fakeReference struct {
	lines map[string]*transit.Line
	stops map[string]*transit.Stop
	err   error
}

func (f *fakeReference) GetLines(ctx context.Context, ids []string) (map[string]*transit.Line, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := map[string]*transit.Line{}
	for _, id := range ids {
		if line, exists := f.lines[id]; exists {
			result[id] = line
		}
	}
	return result, nil
}

func (f *fakeReference) GetStops(ctx context.Context, ids []string) (map[string]*transit.Stop, error) {
	if f.err != nil {
		return nil, f.err
	}
	result := map[string]*transit.Stop{}
	for _, id := range ids {
		if stop, exists := f.stops[id]; exists {
			result[id] = stop
		}
	}
	return result, nil
}

type fakeDocuments struct {
	documents map[string]*transit.LineDocument
}

func (f *fakeDocuments) GetItinerary(ctx context.Context, lineID string) ([]transit.ItineraryStop, error) {
	if document, exists := f.documents[lineID]; exists {
		return document.Itinerary, nil
	}
	return nil, nil
}

func (f *fakeDocuments) GetLineDocuments(ctx context.Context, ids []string) (map[string]*transit.LineDocument, error) {
	result := map[string]*transit.LineDocument{}
	for _, id := range ids {
		if document, exists := f.documents[id]; exists {
			result[id] = document
		}
	}
	return result, nil
}

func float(value float64) *float64 {
	return &value
}

func stop(id string) transit.Stop {
	return transit.Stop{StopID: id}
}

func TestFindRouteSingleRide(t *testing.T) {
	graph := topology.NewGraph()
	graph.AddRide("S1", "S2", "L1", 300)

	composer := &Composer{
		Topology:  graph,
		Reference: &fakeReference{},
		Documents: &fakeDocuments{},
	}

	route, err := composer.FindRoute(context.Background(), "S1", "S2", transit.UnitPreferenceMetric)
	require.NoError(t, err)

	assert.Equal(t, "S1", route.OriginStopID)
	assert.Equal(t, "S2", route.DestinationStopID)
	assert.Equal(t, 1, route.TotalHops)
	assert.Equal(t, 300, route.TotalTravelSeconds)
	assert.Equal(t, []string{"L1"}, route.LinesUsed)
	require.Len(t, route.Segments, 1)
	assert.Equal(t, transit.EdgeTypeRide, route.Segments[0].RelType)
	assert.Equal(t, "L1", route.Segments[0].LineID)
	assert.Equal(t, 300, route.Segments[0].CostSeconds)
	assert.Equal(t, 0.0, route.TotalDistance)
	assert.Equal(t, "km", route.DistanceUnit)

	require.Len(t, route.LinesEnriched, 1)
	assert.Equal(t, "L1", route.LinesEnriched[0].LineID)
	assert.False(t, route.LinesEnriched[0].FromReference)
	assert.False(t, route.LinesEnriched[0].FromDocument)
}

func TestFindRoutePrefersFewerSwitches(t *testing.T) {
	oneSwitch := transit.Path{
		Nodes: []transit.Stop{stop("A"), stop("B"), stop("D")},
		Edges: []transit.TopologyEdge{
			{Type: transit.EdgeTypeRide, LineID: "L1", AverageTravelSeconds: 100},
			{Type: transit.EdgeTypeRide, LineID: "L2", AverageTravelSeconds: 100},
		},
	}
	noSwitch := transit.Path{
		Nodes: []transit.Stop{stop("A"), stop("C"), stop("D")},
		Edges: []transit.TopologyEdge{
			{Type: transit.EdgeTypeRide, LineID: "L3", AverageTravelSeconds: 200},
			{Type: transit.EdgeTypeRide, LineID: "L3", AverageTravelSeconds: 200},
		},
	}

	composer := &Composer{Topology: &fakeTopology{paths: []transit.Path{oneSwitch, noSwitch}}}

	route, err := composer.FindRoute(context.Background(), "A", "D", transit.UnitPreferenceMetric)
	require.NoError(t, err)

	assert.Equal(t, []string{"L3"}, route.LinesUsed)
	assert.Equal(t, 400, route.TotalTravelSeconds)
	assert.Equal(t, "C", route.Segments[0].ToStop.StopID)
}

func TestFindRouteSingleLineAmongManyEqualPaths(t *testing.T) {
	graph := topology.NewGraph()
	hops := [][2]string{{"O", "A"}, {"A", "B"}, {"B", "D"}}

	for h, hop := range hops {
		for i := 0; i < 4; i++ {
			graph.AddRide(hop[0], hop[1], fmt.Sprintf("X%d%d", h, i), 100)
		}
	}
	for _, hop := range hops {
		graph.AddRide(hop[0], hop[1], "L", 100)
	}

	composer := &Composer{Topology: graph}

	route, err := composer.FindRoute(context.Background(), "O", "D", transit.UnitPreferenceMetric)
	require.NoError(t, err)

	assert.Equal(t, 3, route.TotalHops)
	assert.Equal(t, []string{"L"}, route.LinesUsed)
}

func TestSelectPathTieKeepsFirst(t *testing.T) {
	first := transit.Path{Edges: []transit.TopologyEdge{{Type: transit.EdgeTypeRide, LineID: "L1"}}}
	second := transit.Path{Edges: []transit.TopologyEdge{{Type: transit.EdgeTypeRide, LineID: "L2"}}}

	selected, found := SelectPath([]transit.Path{first, second})
	assert.True(t, found)
	assert.Equal(t, "L1", selected.Edges[0].LineID)

	_, found = SelectPath(nil)
	assert.False(t, found)
}

func TestFindRouteNotFound(t *testing.T) {
	tests := []struct {
		name     string
		topology *fakeTopology
	}{
		{name: "no paths", topology: &fakeTopology{}},
		{name: "topology failure", topology: &fakeTopology{err: errors.New("connection refused")}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			composer := &Composer{Topology: tc.topology}

			route, err := composer.FindRoute(context.Background(), "S1", "S9", transit.UnitPreferenceMetric)
			assert.Nil(t, route)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, err, transit.ErrNotFound)
		})
	}
}

func TestFindRouteDefaultMaxHops(t *testing.T) {
	topology := &fakeTopology{}
	composer := &Composer{Topology: topology}
	composer.FindRoute(context.Background(), "A", "B", transit.UnitPreferenceMetric)
	assert.Equal(t, 50, topology.maxHops)

	composer.MaxHops = 12
	composer.FindRoute(context.Background(), "A", "B", transit.UnitPreferenceMetric)
	assert.Equal(t, 12, topology.maxHops)
}

func newEnrichedComposer(now time.Time) *Composer {
	graph := topology.NewGraph()
	graph.AddStop(transit.Stop{StopID: "S1", Name: "graph name"})
	graph.AddRide("S1", "S2", "L1", 240)
	graph.AddTransfer("S2", "S3", 120)
	graph.AddTransfer("S3", "S4", 0)

	alertFrom := now.Add(-time.Hour)
	expired := now.Add(-time.Minute)

	return &Composer{
		Topology: graph,
		Reference: &fakeReference{
			lines: map[string]*transit.Line{
				"L1": {LineID: "L1", Code: "A", Mode: transit.TransportModeMetro, Active: true},
			},
			stops: map[string]*transit.Stop{
				"S1": {StopID: "S1", Code: "TRD", Name: "Trindade", Latitude: float(41.1523), Longitude: float(-8.6093)},
				"S2": {StopID: "S2", Code: "BOL", Name: "Bolhao", Latitude: float(41.1496), Longitude: float(-8.6055)},
			},
		},
		Documents: &fakeDocuments{
			documents: map[string]*transit.LineDocument{
				"L1": {
					ID:   "L1",
					Code: "DOC-A",
					Name: "Linha Azul",
					Alerts: []transit.ServiceAlert{
						{Message: "Works at Trindade", ValidFrom: &alertFrom},
						{Message: "Old works", ValidFrom: &alertFrom, ValidUntil: &expired},
					},
					Schedules: []transit.Schedule{{DayOfWeek: 1, StartTime: "06:00", EndTime: "01:00", HeadwayMinutes: 6}},
				},
			},
		},
		Now: func() time.Time { return now },
	}
}

func TestFindRouteEnrichment(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	composer := newEnrichedComposer(now)

	route, err := composer.FindRoute(context.Background(), "S1", "S4", transit.UnitPreferenceMetric)
	require.NoError(t, err)

	require.Len(t, route.Segments, 3)
	assert.Equal(t, 3, route.TotalHops)
	assert.Equal(t, 360, route.TotalTravelSeconds)
	assert.Equal(t, []string{"L1"}, route.LinesUsed)

	ride := route.Segments[0]
	assert.Equal(t, "Trindade", ride.FromStop.Name)
	assert.Equal(t, "TRD", ride.FromStop.Code)
	assert.Equal(t, "Bolhao", ride.ToStop.Name)
	assert.InDelta(t, 0.4375, ride.DistanceKm, 0.001)

	walk := route.Segments[1]
	assert.Equal(t, transit.EdgeTypeTransfer, walk.RelType)
	assert.Equal(t, transit.LineLabelWalkToTransfer, walk.LineID)
	assert.Equal(t, 120, walk.CostSeconds)
	assert.Equal(t, 0.0, walk.DistanceKm)
	assert.Empty(t, walk.ToStop.Name)
	assert.Nil(t, walk.ToStop.Latitude)

	assert.Equal(t, transit.LineLabelWalk, route.Segments[2].LineID)

	assert.InDelta(t, 0.44, route.TotalDistance, 0.0001)

	require.Len(t, route.LinesEnriched, 1)
	line := route.LinesEnriched[0]
	assert.Equal(t, "L1", line.LineID)
	assert.Equal(t, "A", line.Code)
	assert.Equal(t, "Linha Azul", line.Name)
	assert.Equal(t, transit.TransportModeMetro, line.Mode)
	assert.True(t, line.FromReference)
	assert.True(t, line.FromDocument)
	require.Len(t, line.Alerts, 2)
	assert.True(t, line.Alerts[0].Active)
	assert.False(t, line.Alerts[1].Active)
	assert.Len(t, line.Schedules, 1)
}

func TestFindRouteImperial(t *testing.T) {
	now := time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
	composer := newEnrichedComposer(now)

	metric, err := composer.FindRoute(context.Background(), "S1", "S2", transit.UnitPreferenceMetric)
	require.NoError(t, err)
	imperial, err := composer.FindRoute(context.Background(), "S1", "S2", transit.UnitPreferenceImperial)
	require.NoError(t, err)

	assert.Equal(t, "mi", imperial.DistanceUnit)
	assert.InDelta(t, metric.TotalDistance*0.621371, imperial.TotalDistance, 0.01)
}

func TestFindRouteReferenceFailure(t *testing.T) {
	graph := topology.NewGraph()
	graph.AddRide("S1", "S2", "L1", 300)

	composer := &Composer{
		Topology:  graph,
		Reference: &fakeReference{err: errors.New("too many connections")},
		Documents: &fakeDocuments{},
	}

	route, err := composer.FindRoute(context.Background(), "S1", "S2", transit.UnitPreferenceMetric)
	assert.Nil(t, route)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, transit.ErrNotFound)
}

func TestOverlay(t *testing.T) {
	stop := transit.Stop{StopID: "S1", Name: "Old"}

	assert.True(t, overlay(&stop, &transit.Stop{Name: "Trindade"}, "stop", "S1"))
	assert.Equal(t, "Trindade", stop.Name)
	assert.Equal(t, "S1", stop.StopID)

	assert.False(t, overlay(stop, &transit.Stop{Name: "Bolhao"}, "stop", "S1"))
	assert.Equal(t, "Trindade", stop.Name)
}
