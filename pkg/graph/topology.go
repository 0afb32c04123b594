package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"
	"github.com/rs/zerolog/log"
	"github.com/travigo/urbantransit/pkg/transit"
)

// Switches are scored over every minimal-hop path before the limit applies,
// labels follow transit.TopologyEdge.SwitchLabel. The hop bound of a variable
// length pattern cannot be a parameter.
const shortestPathsQuery = `
	MATCH (origin:Stop {stop_id: $origin}), (destination:Stop {stop_id: $destination})
	MATCH p = allShortestPaths((origin)-[:NEXT|TRANSFER*..%d]-(destination))
	WITH p, [r IN relationships(p) |
		CASE
			WHEN type(r) = 'TRANSFER' THEN '` + transit.LineLabelTransfer + `'
			ELSE coalesce(r.line_id, '` + transit.LineLabelUnknown + `')
		END] AS lids
	WITH p, reduce(sw = 0, i IN range(1, size(lids) - 1) |
		sw + CASE WHEN lids[i] <> lids[i - 1] THEN 1 ELSE 0 END) AS switches
	RETURN p AS path, switches
	ORDER BY switches ASC
	LIMIT 1`

// Topology answers shortest path queries against stop nodes joined by NEXT
// (ride) and TRANSFER relationships
type Topology struct {
	Connection *Connection
}

func NewTopology(connection *Connection) *Topology {
	return &Topology{Connection: connection}
}

func shortestPathsCypher(maxHops int) string {
	return fmt.Sprintf(shortestPathsQuery, maxHops)
}

// ShortestPaths returns the minimal-hop path with the fewest line switches, the
// database picks among equal scores
func (t *Topology) ShortestPaths(ctx context.Context, originStopID string, destinationStopID string, maxHops int) ([]transit.Path, error) {
	if originStopID == destinationStopID || maxHops <= 0 {
		return nil, nil
	}

	result, err := neo4j.ExecuteQuery(ctx, t.Connection.Driver,
		shortestPathsCypher(maxHops),
		map[string]any{
			"origin":      originStopID,
			"destination": destinationStopID,
		},
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(t.Connection.Database),
		neo4j.ExecuteQueryWithReadersRouting(),
	)
	if err != nil {
		return nil, fmt.Errorf("shortest paths query: %w", err)
	}

	paths := make([]transit.Path, 0, len(result.Records))
	for _, record := range result.Records {
		value, found := record.Get("path")
		if !found {
			continue
		}

		neoPath, ok := value.(dbtype.Path)
		if !ok {
			log.Warn().Str("type", fmt.Sprintf("%T", value)).Msg("Unexpected path value from graph")
			continue
		}

		paths = append(paths, pathFromGraph(neoPath))
	}

	return paths, nil
}

func pathFromGraph(neoPath dbtype.Path) transit.Path {
	path := transit.Path{
		Nodes: make([]transit.Stop, 0, len(neoPath.Nodes)),
		Edges: make([]transit.TopologyEdge, 0, len(neoPath.Relationships)),
	}

	for _, node := range neoPath.Nodes {
		path.Nodes = append(path.Nodes, stopFromProps(node.Props))
	}

	for _, relationship := range neoPath.Relationships {
		path.Edges = append(path.Edges, edgeFromRelationship(relationship))
	}

	return path
}

func stopFromProps(props map[string]any) transit.Stop {
	return transit.Stop{
		StopID:    stringProp(props, "stop_id"),
		Code:      stringProp(props, "code"),
		Name:      stringProp(props, "name"),
		Latitude:  floatProp(props, "lat"),
		Longitude: floatProp(props, "lon"),
	}
}

func edgeFromRelationship(relationship dbtype.Relationship) transit.TopologyEdge {
	edge := transit.TopologyEdge{
		Type:                 transit.EdgeTypeRide,
		LineID:               stringProp(relationship.Props, "line_id"),
		AverageTravelSeconds: intProp(relationship.Props, "avg_travel_s"),
		WalkSeconds:          intProp(relationship.Props, "walk_s"),
	}

	if relationship.Type == string(transit.EdgeTypeTransfer) {
		edge.Type = transit.EdgeTypeTransfer
	}

	return edge
}

func stringProp(props map[string]any, key string) string {
	switch value := props[key].(type) {
	case string:
		return value
	case nil:
		return ""
	default:
		return fmt.Sprint(value)
	}
}

func intProp(props map[string]any, key string) int {
	switch value := props[key].(type) {
	case int64:
		return int(value)
	case int:
		return value
	case float64:
		return int(value)
	default:
		return 0
	}
}

func floatProp(props map[string]any, key string) *float64 {
	var parsed float64

	switch value := props[key].(type) {
	case float64:
		parsed = value
	case int64:
		parsed = float64(value)
	default:
		return nil
	}

	return &parsed
}
