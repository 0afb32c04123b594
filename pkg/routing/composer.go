package routing

import (
	"context"
	"fmt"
	"time"

	"github.com/jinzhu/copier"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"github.com/travigo/urbantransit/pkg/geo"
	"github.com/travigo/urbantransit/pkg/transit"
	"github.com/travigo/urbantransit/pkg/util"
	"golang.org/x/exp/slices"
)

const DefaultMaxHops = 50

var ErrNotFound = fmt.Errorf("no route between stops: %w", transit.ErrNotFound)

// Composer answers best route queries between two stops. It only reads from
// its providers and holds no state between calls.
type Composer struct {
	Topology  transit.TopologyProvider
	Reference transit.ReferenceDataProvider
	Documents transit.LineDocumentProvider

	MaxHops int

	// Now is used to evaluate alert windows, defaults to time.Now
	Now func() time.Time
}

func (c *Composer) maxHops() int {
	if c.MaxHops <= 0 {
		return DefaultMaxHops
	}
	return c.MaxHops
}

func (c *Composer) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

func (c *Composer) FindRoute(ctx context.Context, originStopID string, destinationStopID string, units transit.UnitPreference) (*transit.RouteResult, error) {
	paths, err := c.Topology.ShortestPaths(ctx, originStopID, destinationStopID, c.maxHops())
	if err != nil {
		log.Warn().Err(err).Str("origin", originStopID).Str("destination", destinationStopID).Msg("Topology query failed")
		return nil, ErrNotFound
	}

	path, found := SelectPath(paths)
	if !found {
		return nil, ErrNotFound
	}

	route := &transit.RouteResult{
		OriginStopID:      originStopID,
		DestinationStopID: destinationStopID,
		TotalHops:         path.Hops(),
		Segments:          make([]transit.Segment, 0, path.Hops()),
		LinesUsed:         []string{},
		LinesEnriched:     []transit.EnrichedLine{},
	}

	var stopIDs []string
	for i, edge := range path.Edges {
		segment := buildSegment(edge, path.Nodes[i], path.Nodes[i+1])

		route.TotalTravelSeconds += segment.CostSeconds
		route.Segments = append(route.Segments, segment)

		if edge.Type == transit.EdgeTypeRide && edge.LineID != "" && !slices.Contains(route.LinesUsed, edge.LineID) {
			route.LinesUsed = append(route.LinesUsed, edge.LineID)
		}

		stopIDs = append(stopIDs, segment.FromStop.StopID, segment.ToStop.StopID)
	}
	stopIDs = util.RemoveDuplicateStrings(stopIDs, nil)

	enrichment, err := c.fetchEnrichment(ctx, route.LinesUsed, stopIDs)
	if err != nil {
		return nil, err
	}

	totalDistanceKm := 0.0
	for i := range route.Segments {
		segment := &route.Segments[i]

		mergeStop(&segment.FromStop, enrichment.stops[segment.FromStop.StopID])
		mergeStop(&segment.ToStop, enrichment.stops[segment.ToStop.StopID])

		segment.DistanceKm = geo.DistanceKm(segment.FromStop.Coordinate(), segment.ToStop.Coordinate())
		totalDistanceKm += segment.DistanceKm
	}

	now := c.now()
	for _, lineID := range route.LinesUsed {
		route.LinesEnriched = append(route.LinesEnriched, enrichLine(lineID, enrichment.lines[lineID], enrichment.documents[lineID], now))
	}

	if units == transit.UnitPreferenceImperial {
		route.TotalDistance = geo.Round(geo.KilometresToMiles(totalDistanceKm), 2)
		route.DistanceUnit = transit.DistanceUnitMiles
	} else {
		route.TotalDistance = geo.Round(totalDistanceKm, 2)
		route.DistanceUnit = transit.DistanceUnitKilometres
	}

	log.Debug().
		Str("origin", originStopID).
		Str("destination", destinationStopID).
		Int("hops", route.TotalHops).
		Int("candidates", len(paths)).
		Strs("lines", route.LinesUsed).
		Msg("Composed route")

	return route, nil
}

// SelectPath picks the path with the fewest line switches, keeping the
// earliest one on a tie. found is false when there are no paths.
func SelectPath(paths []transit.Path) (transit.Path, bool) {
	if len(paths) == 0 {
		return transit.Path{}, false
	}

	best := 0
	bestSwitches := paths[0].LineSwitches()

	for i := 1; i < len(paths); i++ {
		if switches := paths[i].LineSwitches(); switches < bestSwitches {
			best = i
			bestSwitches = switches
		}
	}

	return paths[best], true
}

func buildSegment(edge transit.TopologyEdge, from transit.Stop, to transit.Stop) transit.Segment {
	segment := transit.Segment{
		RelType:              edge.Type,
		LineID:               edge.LineID,
		FromStop:             from,
		ToStop:               to,
		AverageTravelSeconds: edge.AverageTravelSeconds,
		WalkSeconds:          edge.WalkSeconds,
		CostSeconds:          edge.AverageTravelSeconds + edge.WalkSeconds,
	}

	if edge.Type == transit.EdgeTypeTransfer {
		if edge.WalkSeconds > 0 {
			segment.LineID = transit.LineLabelWalkToTransfer
		} else {
			segment.LineID = transit.LineLabelWalk
		}
	}

	return segment
}

// mergeStop overlays the reference record onto the stop taken from the
// topology, reference values win where present
func mergeStop(stop *transit.Stop, reference *transit.Stop) {
	if reference == nil {
		return
	}

	stopID := stop.StopID
	overlay(stop, reference, "stop", stopID)
	stop.StopID = stopID
}

// overlay copies the non-empty fields of from onto to. A failed copy is
// logged and reported as false so the source is not claimed as provenance.
func overlay(to any, from any, kind string, id string) bool {
	if err := copier.CopyWithOption(to, from, copier.Option{IgnoreEmpty: true}); err != nil {
		log.Warn().Err(err).Str("kind", kind).Str("id", id).Msg("Failed to merge enrichment record")
		return false
	}

	return true
}

func enrichLine(lineID string, reference *transit.Line, document *transit.LineDocument, now time.Time) transit.EnrichedLine {
	enriched := transit.EnrichedLine{
		Alerts:    []transit.ServiceAlert{},
		Schedules: []transit.Schedule{},
	}

	if document != nil {
		enriched.FromDocument = overlay(&enriched, document, "line document", lineID)

		enriched.Alerts = make([]transit.ServiceAlert, 0, len(document.Alerts))
		for _, alert := range document.Alerts {
			alert.Active = alert.IsValid(now)
			enriched.Alerts = append(enriched.Alerts, alert)
		}

		if document.Schedules != nil {
			enriched.Schedules = document.Schedules
		}
	}

	if reference != nil {
		enriched.FromReference = overlay(&enriched, reference, "line reference", lineID)
	}

	enriched.LineID = lineID

	return enriched
}

type enrichment struct {
	lines     map[string]*transit.Line
	stops     map[string]*transit.Stop
	documents map[string]*transit.LineDocument
}

func (c *Composer) fetchEnrichment(ctx context.Context, lineIDs []string, stopIDs []string) (*enrichment, error) {
	result := &enrichment{
		lines:     map[string]*transit.Line{},
		stops:     map[string]*transit.Stop{},
		documents: map[string]*transit.LineDocument{},
	}

	p := pool.New().WithContext(ctx).WithCancelOnError()

	if len(lineIDs) > 0 && c.Reference != nil {
		p.Go(func(ctx context.Context) error {
			lines, err := c.Reference.GetLines(ctx, lineIDs)
			if err != nil {
				return fmt.Errorf("fetching reference lines: %w", err)
			}
			result.lines = lines
			return nil
		})
	}

	if len(stopIDs) > 0 && c.Reference != nil {
		p.Go(func(ctx context.Context) error {
			stops, err := c.Reference.GetStops(ctx, stopIDs)
			if err != nil {
				return fmt.Errorf("fetching reference stops: %w", err)
			}
			result.stops = stops
			return nil
		})
	}

	if len(lineIDs) > 0 && c.Documents != nil {
		p.Go(func(ctx context.Context) error {
			documents, err := c.Documents.GetLineDocuments(ctx, lineIDs)
			if err != nil {
				return fmt.Errorf("fetching line documents: %w", err)
			}
			result.documents = documents
			return nil
		})
	}

	if err := p.Wait(); err != nil {
		return nil, err
	}

	if result.lines == nil {
		result.lines = map[string]*transit.Line{}
	}
	if result.stops == nil {
		result.stops = map[string]*transit.Stop{}
	}
	if result.documents == nil {
		result.documents = map[string]*transit.LineDocument{}
	}

	return result, nil
}
