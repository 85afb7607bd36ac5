package env

import "math"

// EndReason indicates why a scenario ended
type EndReason int

const (
	EndNone    EndReason = iota
	EndEscaped           // an obstacle left the field, scenario rebuilt
	EndManual            // reset requested from outside
	EndStopped           // run finished or cancelled
)

func (e EndReason) String() string {
	switch e {
	case EndNone:
		return "none"
	case EndEscaped:
		return "escaped"
	case EndManual:
		return "manual"
	case EndStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// EpisodeStats captures the metrics of one scenario, from creation to reset
type EpisodeStats struct {
	ID           string
	Ticks        int
	Distance     float64 // path length driven
	MinClearance float64 // smallest center-zone reading seen
	SpeedSum     float64
	Actions      [NumActions]int
	End          EndReason
}

// NewEpisodeStats starts an empty episode
func NewEpisodeStats(id string) EpisodeStats {
	return EpisodeStats{ID: id, MinClearance: math.Inf(1)}
}

// Observe accumulates one tick
func (s *EpisodeStats) Observe(before, after Vehicle, action Action, center float64) {
	s.Ticks++
	s.Distance += before.Pos.Dist(after.Pos)
	s.SpeedSum += after.Speed
	if center < s.MinClearance {
		s.MinClearance = center
	}
	if action.Valid() {
		s.Actions[action]++
	}
}

// MeanSpeed returns the average post-tick speed
func (s EpisodeStats) MeanSpeed() float64 {
	if s.Ticks == 0 {
		return 0
	}
	return s.SpeedSum / float64(s.Ticks)
}

// AggregatedStats holds statistics across multiple episodes
type AggregatedStats struct {
	TicksMean    float64
	DistanceMean float64
	DistanceStd  float64
	MinClearance float64
	ActionShare  [NumActions]float64
	EndCounts    map[EndReason]int
	NumEpisodes  int
}

// Aggregate computes statistics from multiple episode stats
func Aggregate(episodes []EpisodeStats) AggregatedStats {
	n := len(episodes)
	agg := AggregatedStats{
		EndCounts:    make(map[EndReason]int),
		NumEpisodes:  n,
		MinClearance: math.Inf(1),
	}
	if n == 0 {
		return agg
	}

	var ticksSum, distSum float64
	var actions [NumActions]int
	total := 0
	for _, ep := range episodes {
		ticksSum += float64(ep.Ticks)
		distSum += ep.Distance
		agg.EndCounts[ep.End]++
		if ep.MinClearance < agg.MinClearance {
			agg.MinClearance = ep.MinClearance
		}
		for i, c := range ep.Actions {
			actions[i] += c
			total += c
		}
	}

	nf := float64(n)
	agg.TicksMean = ticksSum / nf
	agg.DistanceMean = distSum / nf

	var variance float64
	for _, ep := range episodes {
		diff := ep.Distance - agg.DistanceMean
		variance += diff * diff
	}
	agg.DistanceStd = math.Sqrt(variance / nf)

	if total > 0 {
		for i, c := range actions {
			agg.ActionShare[i] = float64(c) / float64(total)
		}
	}
	return agg
}
