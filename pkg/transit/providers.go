package transit

import (
	"context"
	"time"
)

type TopologyProvider interface {
	// ShortestPaths returns minimal-hop paths between two stops. Providers
	// score line switches across all of them and may return only the best.
	ShortestPaths(ctx context.Context, originStopID string, destinationStopID string, maxHops int) ([]Path, error)
}

type ReferenceDataProvider interface {
	GetLines(ctx context.Context, ids []string) (map[string]*Line, error)
	GetStops(ctx context.Context, ids []string) (map[string]*Stop, error)
}

type LineDocumentProvider interface {
	// GetItinerary returns the line itinerary ordered by sequence, empty when the line is unknown
	GetItinerary(ctx context.Context, lineID string) ([]ItineraryStop, error)
	GetLineDocuments(ctx context.Context, ids []string) (map[string]*LineDocument, error)
}

type AssignmentProvider interface {
	GetActiveAssignments(ctx context.Context, lineID string, now time.Time) (map[string]Assignment, error)
}

type VehicleStore interface {
	GetVehicles(ctx context.Context, lineID string, ids []string) ([]*Vehicle, error)
	// SaveSimState replaces the checkpoint only if it still matches previous.
	// It reports false when another writer got there first.
	SaveSimState(ctx context.Context, vehicleID string, previous SimulationState, next SimulationState, lastKnown *LastKnown) (bool, error)
}
