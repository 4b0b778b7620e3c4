package pipeline

import (
	"fmt"
	"time"
)

// State is a step of the activation state machine.
type State int

const (
	StateIdle State = iota
	StateFilterEvaluation
	StateShellResolution
	StateControllerResolution
	StateControllerBinding
	StateComponentCreation
	StateCompositeAttachment
	StateRender
	StateComponentBinding
	StateSettled
	StateAborted
)

var stateNames = [...]string{
	StateIdle:                 "idle",
	StateFilterEvaluation:     "filter_evaluation",
	StateShellResolution:      "shell_resolution",
	StateControllerResolution: "controller_resolution",
	StateControllerBinding:    "controller_binding",
	StateComponentCreation:    "component_creation",
	StateCompositeAttachment:  "composite_attachment",
	StateRender:               "render",
	StateComponentBinding:     "component_binding",
	StateSettled:              "settled",
	StateAborted:              "aborted",
}

// String returns the snake_case name of the state
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Terminal reports whether no further transition follows s
func (s State) Terminal() bool {
	return s == StateSettled || s == StateAborted
}

// MarshalText implements encoding.TextMarshaler
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *State) UnmarshalText(text []byte) error {
	for i, name := range stateNames {
		if name == string(text) {
			*s = State(i)
			return nil
		}
	}
	return fmt.Errorf("unknown activation state %q", text)
}

// Step records one state the activation entered and how long it stayed there
type Step struct {
	State    State         `json:"state"`
	Duration time.Duration `json:"duration"`
}
