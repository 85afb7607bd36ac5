package env

import (
	"encoding/json"
	"os"
)

// Replay stores the action trace of a deterministic run for later checking
type Replay struct {
	Seed    int64    `json:"seed"`
	DT      float64  `json:"dt"`
	Hybrid  bool     `json:"hybrid"` // a classifier took part in the decisions
	Actions []Action `json:"actions"`
}

// NewReplay creates a new replay recorder
func NewReplay(seed int64, dt float64, hybrid bool) *Replay {
	return &Replay{
		Seed:    seed,
		DT:      dt,
		Hybrid:  hybrid,
		Actions: make([]Action, 0, 1024),
	}
}

// Record adds an action to the replay
func (r *Replay) Record(action Action) {
	r.Actions = append(r.Actions, action)
}

// Len returns the number of recorded ticks
func (r *Replay) Len() int {
	return len(r.Actions)
}

// Save writes the replay to a file
func (r *Replay) Save(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadReplay loads a replay from a file
func LoadReplay(path string) (*Replay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var r Replay
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// Divergence returns the first tick at which actions differs from the
// recording, or -1 when the traces agree.
func (r *Replay) Divergence(actions []Action) int {
	n := len(r.Actions)
	if len(actions) < n {
		n = len(actions)
	}
	for i := 0; i < n; i++ {
		if r.Actions[i] != actions[i] {
			return i
		}
	}
	if len(actions) != len(r.Actions) {
		return n
	}
	return -1
}
