package env

import "fmt"

// Action is one of the four discrete driving decisions
type Action int

// Canonical order; every score vector is indexed by it.
const (
	ActionEvadeLeft Action = iota
	ActionEvadeRight
	ActionBrake
	ActionContinue
)

// NumActions is the size of the action set
const NumActions = 4

// Actions lists every action in canonical order
var Actions = [NumActions]Action{ActionEvadeLeft, ActionEvadeRight, ActionBrake, ActionContinue}

var actionNames = [NumActions]string{"EVADE_LEFT", "EVADE_RIGHT", "BRAKE", "CONTINUE"}

// labels written by earlier recordings and models
var legacyLabels = map[string]Action{
	"SOLA_KAÇIN": ActionEvadeLeft,
	"SAĞA_KAÇIN": ActionEvadeRight,
	"FREN":       ActionBrake,
	"SÜRDÜR":     ActionContinue,
}

func (a Action) String() string {
	if a.Valid() {
		return actionNames[a]
	}
	return "unknown"
}

// Valid reports whether a is part of the action set
func (a Action) Valid() bool {
	return a >= 0 && int(a) < NumActions
}

// ParseAction maps a label to its action. Legacy dataset labels are accepted.
func ParseAction(s string) (Action, error) {
	for i, name := range actionNames {
		if name == s {
			return Action(i), nil
		}
	}
	if a, ok := legacyLabels[s]; ok {
		return a, nil
	}
	return 0, fmt.Errorf("unknown action label %q", s)
}

func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid action %d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Action) UnmarshalText(b []byte) error {
	parsed, err := ParseAction(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
