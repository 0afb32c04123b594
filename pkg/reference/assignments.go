package reference

import (
	"context"
	"fmt"
	"time"

	"github.com/travigo/urbantransit/pkg/transit"
)

// An assignment is active from start_ts until end_ts, open ended when end_ts
// is null. Rows come back oldest first so the most recent assignment for a
// vehicle wins.
const activeAssignmentsQuery = `
	SELECT assignment_id, vehicle_id, driver_id
	FROM driver_assignments
	WHERE line_id = $1
	  AND start_ts <= $2
	  AND (end_ts IS NULL OR end_ts > $2)
	ORDER BY start_ts ASC, assignment_id ASC`

func (s *Store) GetActiveAssignments(ctx context.Context, lineID string, now time.Time) (map[string]transit.Assignment, error) {
	rows, err := s.DB.Query(ctx, activeAssignmentsQuery, lineID, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("querying driver assignments: %w", err)
	}
	defer rows.Close()

	assignments := map[string]transit.Assignment{}

	for rows.Next() {
		var assignment transit.Assignment
		var vehicleID string

		if err := rows.Scan(&assignment.AssignmentID, &vehicleID, &assignment.DriverID); err != nil {
			return nil, fmt.Errorf("scanning driver assignment: %w", err)
		}

		assignments[vehicleID] = assignment
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading driver assignments: %w", err)
	}

	return assignments, nil
}
