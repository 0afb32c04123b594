package routes

import (
	"github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"github.com/travigo/urbantransit/pkg/transit"
	"google.golang.org/protobuf/proto"
)

// NewFeedMessage renders live positions as a full GTFS-Realtime dataset with
// one vehicle position entity per simulated vehicle
func NewFeedMessage(positions *transit.LivePositions) *gtfs.FeedMessage {
	feed := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String("2.0"),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(uint64(positions.Timestamp.Unix())),
		},
		Entity: []*gtfs.FeedEntity{},
	}

	for _, vehicle := range positions.Vehicles {
		vehiclePosition := &gtfs.VehiclePosition{
			Trip: &gtfs.TripDescriptor{
				RouteId: proto.String(positions.LineID),
			},
			Vehicle: &gtfs.VehicleDescriptor{
				Id:           proto.String(vehicle.VehicleID),
				Label:        proto.String(vehicle.Model),
				LicensePlate: proto.String(vehicle.Plate),
			},
			Timestamp:     proto.Uint64(uint64(positions.Timestamp.Unix())),
			CurrentStatus: gtfs.VehiclePosition_IN_TRANSIT_TO.Enum(),
		}

		if vehicle.NextStop != nil {
			vehiclePosition.StopId = proto.String(vehicle.NextStop.StopID)
		}

		if coordinate := vehicle.Location.Coordinate(); coordinate != nil {
			vehiclePosition.Position = &gtfs.Position{
				Latitude:  proto.Float32(float32(coordinate.Latitude)),
				Longitude: proto.Float32(float32(coordinate.Longitude)),
			}
		}

		feed.Entity = append(feed.Entity, &gtfs.FeedEntity{
			Id:      proto.String(vehicle.VehicleID),
			Vehicle: vehiclePosition,
		})
	}

	return feed
}
