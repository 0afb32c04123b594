package api

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/urbantransit/pkg/metrics"
	"github.com/travigo/urbantransit/pkg/routing"
	"github.com/travigo/urbantransit/pkg/transit"
)

type emptyPositions struct{}

func (emptyPositions) ComputePositions(ctx context.Context, lineID string, now time.Time) (*transit.LivePositions, error) {
	return &transit.LivePositions{
		LineID:            lineID,
		Timestamp:         now,
		ActiveAssignments: map[string]transit.Assignment{},
		Vehicles:          []*transit.VehicleSnapshot{},
	}, nil
}

func writeTopologyFiles(t *testing.T) TopologyFiles {
	dir := t.TempDir()

	files := TopologyFiles{
		Edges: filepath.Join(dir, "edges.csv"),
		Stops: filepath.Join(dir, "stops.csv"),
	}

	require.NoError(t, os.WriteFile(files.Stops, []byte("stop_id,code,name,lat,lon\nS1,TRD,Trindade,41.1523,-8.6093\nS2,BOL,Bolhao,41.1496,-8.6055\n"), 0o600))
	require.NoError(t, os.WriteFile(files.Edges, []byte("from_stop_id,to_stop_id,type,line_id,avg_travel_s,walk_s\nS1,S2,NEXT,L1,300,0\n"), 0o600))

	return files
}

func TestLoadTopologyFiles(t *testing.T) {
	graph, err := LoadTopologyFiles(writeTopologyFiles(t))
	require.NoError(t, err)

	assert.Equal(t, 2, graph.StopCount())
}

func TestLoadTopologyFilesMissing(t *testing.T) {
	_, err := LoadTopologyFiles(TopologyFiles{Edges: filepath.Join(t.TempDir(), "missing.csv")})
	assert.Error(t, err)
}

func TestLoadTopologyWithoutSource(t *testing.T) {
	t.Setenv("URBANTRANSIT_NEO4J_URI", "")

	services := &Services{}
	_, err := services.loadTopology(TopologyFiles{})

	assert.ErrorIs(t, err, ErrNoTopology)
}

func TestNewApp(t *testing.T) {
	graph, err := LoadTopologyFiles(writeTopologyFiles(t))
	require.NoError(t, err)

	collector := metrics.NewCollector()
	app := NewApp(&routing.Composer{Topology: graph}, emptyPositions{}, collector)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/core/route?origin_stop_id=S1&dest_stop_id=S2", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"lines_used":["L1"]`)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/core/live/L1", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	body, _ = io.ReadAll(resp.Body)

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `urbantransit_route_requests_total{outcome="found"} 1`)
	assert.Contains(t, string(body), `urbantransit_live_requests_total{outcome="no_assignments"} 1`)
}
