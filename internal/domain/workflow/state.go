package workflow

// State represents a phase of the audit wizard lifecycle. The step index
// inside StateStep is tracked by the wizard itself.
type State string

const (
	StateStep       State = "STEP"
	StateSubmitting State = "SUBMITTING"
	StateCompleted  State = "COMPLETED"
	StateError      State = "ERROR"
)

var validStates = map[State]bool{
	StateStep:       true,
	StateSubmitting: true,
	StateCompleted:  true,
	StateError:      true,
}

var terminalStates = map[State]bool{
	StateCompleted: true,
}

// IsTerminal returns true if no further transitions are allowed from the state
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a known wizard phase
func (s State) IsValid() bool {
	return validStates[s]
}
