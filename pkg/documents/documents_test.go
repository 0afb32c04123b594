package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travigo/urbantransit/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestLineStoreGetItinerary(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("sorted by sequence", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "urbantransit.lines", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "LINE_M_A"},
			{Key: "itinerary", Value: bson.A{
				bson.D{{Key: "stop_id", Value: "S3"}, {Key: "seq", Value: 3}, {Key: "avgStopSec", Value: 150}},
				bson.D{{Key: "stop_id", Value: "S1"}, {Key: "seq", Value: 1}, {Key: "avgStopSec", Value: 0}},
				bson.D{{Key: "stop_id", Value: "S2"}, {Key: "seq", Value: 2}, {Key: "avgStopSec", Value: 120}},
			}},
		}))

		itinerary, err := NewLineStore(mt.Coll).GetItinerary(context.Background(), "LINE_M_A")
		require.NoError(mt, err)
		require.Len(mt, itinerary, 3)

		assert.Equal(mt, "S1", itinerary[0].StopID)
		assert.Equal(mt, "S2", itinerary[1].StopID)
		assert.Equal(mt, 120, itinerary[1].AverageSegmentSeconds)
		assert.Equal(mt, "S3", itinerary[2].StopID)
	})

	mt.Run("unknown line", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "urbantransit.lines", mtest.FirstBatch))

		itinerary, err := NewLineStore(mt.Coll).GetItinerary(context.Background(), "NOPE")
		require.NoError(mt, err)
		assert.Empty(mt, itinerary)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11600, Message: "interrupted at shutdown"}))

		_, err := NewLineStore(mt.Coll).GetItinerary(context.Background(), "LINE_M_A")
		assert.Error(mt, err)
	})
}

func TestLineStoreGetLineDocuments(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("matched by either key", func(mt *mtest.T) {
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "urbantransit.lines", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "L1"},
				{Key: "code", Value: "A"},
				{Key: "alerts", Value: bson.A{
					bson.D{{Key: "msg", Value: "Reduced service"}, {Key: "from", Value: from}},
				}},
			},
			bson.D{
				{Key: "_id", Value: "65f0c0ffee"},
				{Key: "line_id", Value: "L2"},
				{Key: "name", Value: "Linha Vermelha"},
				{Key: "schedules", Value: bson.A{
					bson.D{{Key: "dow", Value: 1}, {Key: "start", Value: "06:00"}, {Key: "end", Value: "23:00"}},
				}},
			},
		))

		documents, err := NewLineStore(mt.Coll).GetLineDocuments(context.Background(), []string{"L1", "L2", "L3"})
		require.NoError(mt, err)
		require.Len(mt, documents, 2)

		assert.Equal(mt, "A", documents["L1"].Code)
		require.Len(mt, documents["L1"].Alerts, 1)
		assert.Equal(mt, "Reduced service", documents["L1"].Alerts[0].Message)
		assert.True(mt, documents["L1"].Alerts[0].IsValid(from.Add(time.Hour)))

		assert.Equal(mt, "Linha Vermelha", documents["L2"].Name)
		assert.Len(mt, documents["L2"].Schedules, 1)
	})

	mt.Run("no ids", func(mt *mtest.T) {
		documents, err := NewLineStore(mt.Coll).GetLineDocuments(context.Background(), nil)
		require.NoError(mt, err)
		assert.Empty(mt, documents)
	})
}

func TestVehicleStoreGetVehicles(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("decodes checkpoint", func(mt *mtest.T) {
		start := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "urbantransit.vehicles", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "V1"},
				{Key: "line", Value: "L1"},
				{Key: "plate", Value: "11-AA-22"},
				{Key: "capacity", Value: 90},
				{Key: "sim", Value: bson.D{
					{Key: "idx", Value: 2},
					{Key: "segment_start_ts", Value: start},
					{Key: "version", Value: int64(8)},
				}},
			},
			bson.D{
				{Key: "_id", Value: "V2"},
				{Key: "line", Value: "L1"},
			},
		))

		vehicles, err := NewVehicleStore(mt.Coll).GetVehicles(context.Background(), "L1", []string{"V1", "V2"})
		require.NoError(mt, err)
		require.Len(mt, vehicles, 2)

		assert.Equal(mt, "11-AA-22", vehicles[0].Plate)
		require.NotNil(mt, vehicles[0].Sim)
		assert.Equal(mt, 2, vehicles[0].Sim.Index)
		assert.True(mt, start.Equal(vehicles[0].Sim.SegmentStart))
		assert.Equal(mt, int64(8), vehicles[0].Sim.Version)
		assert.Nil(mt, vehicles[1].Sim)
	})

	mt.Run("no ids", func(mt *mtest.T) {
		vehicles, err := NewVehicleStore(mt.Coll).GetVehicles(context.Background(), "L1", nil)
		require.NoError(mt, err)
		assert.Empty(mt, vehicles)
	})
}

func TestVehicleStoreSaveSimState(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	next := transit.SimulationState{Index: 1, SegmentStart: time.Date(2026, 2, 1, 9, 5, 0, 0, time.UTC), Version: 4}
	lastKnown := &transit.LastKnown{
		Timestamp: next.SegmentStart,
		Location:  &transit.Location{Type: "Point", Coordinates: []float64{-8.61, 41.15}},
	}

	mt.Run("saved", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		saved, err := NewVehicleStore(mt.Coll).SaveSimState(context.Background(), "V1", transit.SimulationState{Version: 3}, next, lastKnown)
		require.NoError(mt, err)
		assert.True(mt, saved)
	})

	mt.Run("version moved on", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		saved, err := NewVehicleStore(mt.Coll).SaveSimState(context.Background(), "V1", transit.SimulationState{Version: 3}, next, nil)
		require.NoError(mt, err)
		assert.False(mt, saved)
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 121, Message: "document failed validation"}))

		saved, err := NewVehicleStore(mt.Coll).SaveSimState(context.Background(), "V1", transit.SimulationState{}, next, lastKnown)
		assert.Error(mt, err)
		assert.False(mt, saved)
	})
}
