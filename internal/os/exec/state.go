package exec

// State is the lifecycle state of a process.
type State int

const (
	StateCreated State = iota
	StateRunning
	StateExited
	StateKilled
)

var stateNames = map[State]string{
	StateCreated: "created",
	StateRunning: "running",
	StateExited:  "exited",
	StateKilled:  "killed",
}

func (state State) String() string {
	return stateNames[state]
}

// IsTerminal returns true for states a process never leaves.
func (state State) IsTerminal() bool {
	return state == StateExited || state == StateKilled
}
