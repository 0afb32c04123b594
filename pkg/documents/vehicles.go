package documents

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// VehicleStore holds vehicle documents and their simulation checkpoints
type VehicleStore struct {
	Collection *mongo.Collection
}

func NewVehicleStore(collection *mongo.Collection) *VehicleStore {
	return &VehicleStore{Collection: collection}
}

func (s *VehicleStore) GetVehicles(ctx context.Context, lineID string, ids []string) ([]*transit.Vehicle, error) {
	vehicles := []*transit.Vehicle{}
	if len(ids) == 0 {
		return vehicles, nil
	}

	cursor, err := s.Collection.Find(ctx, bson.M{
		"line": lineID,
		"_id":  bson.M{"$in": ids},
	})
	if err != nil {
		return nil, fmt.Errorf("finding vehicles: %w", err)
	}

	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("decoding vehicles: %w", err)
	}

	return vehicles, nil
}

// SaveSimState is a compare-and-swap on sim.version. Documents that have
// never been checkpointed match a previous version of 0.
func (s *VehicleStore) SaveSimState(ctx context.Context, vehicleID string, previous transit.SimulationState, next transit.SimulationState, lastKnown *transit.LastKnown) (bool, error) {
	filter := bson.M{"_id": vehicleID}
	if previous.Version == 0 {
		filter["$or"] = bson.A{
			bson.M{"sim.version": bson.M{"$exists": false}},
			bson.M{"sim.version": 0},
		}
	} else {
		filter["sim.version"] = previous.Version
	}

	set := bson.M{
		"sim.idx":              next.Index,
		"sim.segment_start_ts": next.SegmentStart,
		"sim.reverse":          next.Reverse,
		"sim.version":          next.Version,
	}
	if lastKnown != nil {
		set["lastKnown"] = lastKnown
	}

	result, err := s.Collection.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return false, fmt.Errorf("updating vehicle %s: %w", vehicleID, err)
	}

	if result.MatchedCount == 0 {
		log.Debug().Str("vehicle", vehicleID).Int64("version", previous.Version).Msg("Checkpoint version moved on")
		return false, nil
	}

	return true, nil
}
