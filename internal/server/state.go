package server

// ConnState is the stage a connection has reached. Every state may be
// followed by StateClosed.
type ConnState int

const (
	StateAccepted ConnState = iota
	StateTranslating
	StateDispatching
	StateResponding
	StateClosed
)

var stateName = map[ConnState]string{
	StateAccepted:    "accepted",
	StateTranslating: "translating",
	StateDispatching: "dispatching",
	StateResponding:  "responding",
	StateClosed:      "closed",
}

func (c ConnState) String() string {
	if name, ok := stateName[c]; ok {
		return name
	}
	return "unknown"
}
