package simulator

import (
	"time"

	"github.com/travigo/urbantransit/pkg/transit"
)

// Advancement is the outcome of moving a checkpoint forward to a point in time
type Advancement struct {
	State   transit.SimulationState
	Elapsed time.Duration
	Travel  time.Duration
}

// FromIndex is the itinerary index of the stop the vehicle departed
func (a Advancement) FromIndex() int {
	if a.State.Reverse {
		return a.State.Index + 1
	}
	return a.State.Index
}

// ToIndex is the itinerary index of the stop the vehicle is heading to
func (a Advancement) ToIndex() int {
	if a.State.Reverse {
		return a.State.Index
	}
	return a.State.Index + 1
}

func (c Config) segmentTravel(itinerary []transit.ItineraryStop, index int) time.Duration {
	if seconds := itinerary[index].AverageSegmentSeconds; seconds > 0 {
		return time.Duration(seconds) * time.Second
	}

	if c.DefaultSegment > 0 {
		return c.DefaultSegment
	}
	return defaultConfig.DefaultSegment
}

func (c Config) cycleLength(itinerary []transit.ItineraryStop) time.Duration {
	var cycle time.Duration
	for i := 0; i < len(itinerary)-1; i++ {
		cycle += c.segmentTravel(itinerary, i)
	}

	if c.WrapMode == WrapModeBounce {
		cycle *= 2
	}
	return cycle
}

// Advance moves the checkpoint forward until now falls inside the current
// segment. The returned state keeps the input Version untouched. Itineraries
// with fewer than two stops leave the vehicle parked at index 0.
func (c Config) Advance(itinerary []transit.ItineraryStop, state transit.SimulationState, now time.Time) Advancement {
	now = now.UTC()

	if len(itinerary) < 2 {
		return Advancement{
			State: transit.SimulationState{SegmentStart: now, Version: state.Version},
		}
	}

	segmentStart := state.SegmentStart.UTC()
	if state.SegmentStart.IsZero() {
		segmentStart = now
	}

	lastSegment := len(itinerary) - 2
	index := min(max(state.Index, 0), lastSegment)
	reverse := state.Reverse && c.WrapMode == WrapModeBounce

	// Whole cycles bring the vehicle back to the same segment and direction
	if cycle := c.cycleLength(itinerary); cycle > 0 {
		if elapsed := now.Sub(segmentStart); elapsed >= cycle {
			segmentStart = segmentStart.Add(elapsed / cycle * cycle)
		}
	}

	for {
		travel := c.segmentTravel(itinerary, index)
		elapsed := now.Sub(segmentStart)

		if elapsed < travel {
			return Advancement{
				State: transit.SimulationState{
					Index:        index,
					SegmentStart: segmentStart,
					Reverse:      reverse,
					Version:      state.Version,
				},
				Elapsed: elapsed,
				Travel:  travel,
			}
		}

		segmentStart = segmentStart.Add(travel)
		index, reverse = c.nextSegment(index, reverse, lastSegment)
	}
}

func (c Config) nextSegment(index int, reverse bool, lastSegment int) (int, bool) {
	if c.WrapMode == WrapModeBounce {
		if reverse {
			if index == 0 {
				return 0, false
			}
			return index - 1, true
		}

		if index == lastSegment {
			return lastSegment, true
		}
		return index + 1, false
	}

	index++
	if index > lastSegment {
		index = 0
	}
	return index, false
}
