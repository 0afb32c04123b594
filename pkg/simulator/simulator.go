package simulator

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/urbantransit/pkg/geo"
	"github.com/travigo/urbantransit/pkg/metrics"
	"github.com/travigo/urbantransit/pkg/transit"
	"golang.org/x/exp/slices"
)

const NoAssignmentsNote = "No active driver assignments now"

var ErrItineraryTooShort = fmt.Errorf("itinerary missing or too short: %w", transit.ErrNotFound)

// Simulator estimates where the vehicles assigned to a line are from their
// last persisted checkpoint and the current time. Checkpoint writes are its
// only side effect.
type Simulator struct {
	Config Config

	Documents   transit.LineDocumentProvider
	Reference   transit.ReferenceDataProvider
	Assignments transit.AssignmentProvider
	Vehicles    transit.VehicleStore

	Metrics *metrics.Collector
}

func (s *Simulator) ComputePositions(ctx context.Context, lineID string, now time.Time) (*transit.LivePositions, error) {
	now = now.UTC()
	startTime := time.Now()

	itinerary, err := s.Documents.GetItinerary(ctx, lineID)
	if err != nil {
		return nil, fmt.Errorf("loading itinerary for %s: %w", lineID, err)
	}
	if len(itinerary) < 2 {
		return nil, ErrItineraryTooShort
	}

	stopIDs := make([]string, 0, len(itinerary))
	for _, entry := range itinerary {
		stopIDs = append(stopIDs, entry.StopID)
	}

	stops := map[string]*transit.Stop{}
	if s.Reference != nil {
		stops, err = s.Reference.GetStops(ctx, stopIDs)
		if err != nil {
			return nil, fmt.Errorf("loading stops for %s: %w", lineID, err)
		}
	}

	assignments, err := s.Assignments.GetActiveAssignments(ctx, lineID, now)
	if err != nil {
		return nil, fmt.Errorf("loading assignments for %s: %w", lineID, err)
	}
	if assignments == nil {
		assignments = map[string]transit.Assignment{}
	}

	positions := &transit.LivePositions{
		LineID:            lineID,
		Timestamp:         now,
		ActiveAssignments: assignments,
		Vehicles:          []*transit.VehicleSnapshot{},
	}

	if len(assignments) == 0 {
		positions.Note = NoAssignmentsNote
		return positions, nil
	}

	vehicleIDs := make([]string, 0, len(assignments))
	for vehicleID := range assignments {
		vehicleIDs = append(vehicleIDs, vehicleID)
	}
	slices.Sort(vehicleIDs)

	vehicles, err := s.Vehicles.GetVehicles(ctx, lineID, vehicleIDs)
	if err != nil {
		return nil, fmt.Errorf("loading vehicles for %s: %w", lineID, err)
	}

	maxWorkers := s.Config.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = defaultConfig.MaxWorkers
	}

	p := pool.NewWithResults[*transit.VehicleSnapshot]().
		WithContext(ctx).
		WithMaxGoroutines(maxWorkers)

	for _, vehicle := range vehicles {
		assignment, assigned := assignments[vehicle.VehicleID]

		p.Go(func(ctx context.Context) (*transit.VehicleSnapshot, error) {
			var active *transit.Assignment
			if assigned {
				active = &assignment
			}

			return s.simulateVehicle(ctx, lineID, vehicle, itinerary, stops, active, now)
		})
	}

	snapshots, err := p.Wait()
	if err != nil {
		return nil, err
	}

	slices.SortFunc(snapshots, func(a, b *transit.VehicleSnapshot) int {
		return strings.Compare(a.VehicleID, b.VehicleID)
	})
	positions.Vehicles = snapshots

	if s.Metrics != nil {
		s.Metrics.SimulatedVehicles.Add(float64(len(snapshots)))
		s.Metrics.SimulationDuration.Observe(time.Since(startTime).Seconds())
	}

	log.Debug().
		Str("line", lineID).
		Int("assignments", len(assignments)).
		Int("vehicles", len(snapshots)).
		Msg("Computed live positions")

	return positions, nil
}

func (s *Simulator) simulateVehicle(
	ctx context.Context,
	lineID string,
	vehicle *transit.Vehicle,
	itinerary []transit.ItineraryStop,
	stops map[string]*transit.Stop,
	assignment *transit.Assignment,
	now time.Time,
) (*transit.VehicleSnapshot, error) {
	var previous transit.SimulationState
	if vehicle.Sim != nil {
		previous = *vehicle.Sim
	}

	advancement := s.Config.Advance(itinerary, previous, now)

	departed := itineraryStop(stops, itinerary[advancement.FromIndex()].StopID)
	next := itineraryStop(stops, itinerary[advancement.ToIndex()].StopID)

	progress, location := Position(departed.Coordinate(), next.Coordinate(), advancement.Elapsed, advancement.Travel)

	remaining := max(advancement.Travel-advancement.Elapsed, 0)
	remainingSeconds := int(remaining / time.Second)

	snapshot := &transit.VehicleSnapshot{
		VehicleID:            vehicle.VehicleID,
		Plate:                vehicle.Plate,
		Model:                vehicle.Model,
		Capacity:             vehicle.Capacity,
		LineID:               lineID,
		DepartedStop:         departed,
		NextStop:             next,
		Progress:             progress,
		ETAToNextStopSeconds: remainingSeconds,
		ETAToNextStopMinutes: int(math.Ceil(float64(remainingSeconds) / 60)),
		Status:               transit.VehicleStatusInactive,
	}

	var lastKnown *transit.LastKnown
	if location != nil {
		snapshot.Location = transit.NewPointLocation(*location)
		lastKnown = &transit.LastKnown{Timestamp: now, Location: snapshot.Location}
		snapshot.LastKnown = lastKnown
	}

	if assignment != nil {
		snapshot.Status = transit.VehicleStatusActive
		snapshot.AssignmentID = assignment.AssignmentID
		snapshot.DriverID = assignment.DriverID
	}

	checkpoint := advancement.State
	checkpoint.Version = previous.Version + 1

	saved, err := s.Vehicles.SaveSimState(ctx, vehicle.VehicleID, previous, checkpoint, lastKnown)
	if err != nil {
		return nil, fmt.Errorf("saving checkpoint for vehicle %s: %w", vehicle.VehicleID, err)
	}
	if !saved {
		log.Debug().Str("vehicle", vehicle.VehicleID).Msg("Checkpoint already advanced by another request")

		if s.Metrics != nil {
			s.Metrics.CheckpointConflicts.Inc()
		}
	}

	return snapshot, nil
}

// itineraryStop falls back to a bare stop carrying only the id when there is
// no reference record for it
func itineraryStop(stops map[string]*transit.Stop, stopID string) *transit.Stop {
	if stop, found := stops[stopID]; found && stop != nil {
		return stop
	}

	return &transit.Stop{StopID: stopID}
}

// Position returns the progress fraction along a segment and the linearly
// interpolated coordinate. Both are zero values when either end has no
// coordinate or the segment has no travel time.
func Position(from *geo.Coordinate, to *geo.Coordinate, elapsed time.Duration, travel time.Duration) (float64, *geo.Coordinate) {
	if from == nil || to == nil || travel <= 0 {
		return 0, nil
	}

	progress := math.Max(0, math.Min(1, elapsed.Seconds()/travel.Seconds()))
	location := geo.Interpolate(*from, *to, progress)

	return progress, &location
}
