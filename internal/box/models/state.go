package models

import (
	dErrors "boxtribute/pkg/domain-errors"
)

// State is the lifecycle stage of a physical box. The integer codes are the
// legacy database ids and are what the history ledger records; the gap at 4
// belongs to a retired state.
type State int

const (
	StateInStock           State = 1
	StateLost              State = 2
	StateMarkedForShipment State = 3
	StateDonated           State = 5
	StateScrap             State = 6
	StateInTransit         State = 7
	StateReceiving         State = 8
	StateNotDelivered      State = 9
)

var stateNames = map[State]string{
	StateInStock:           "InStock",
	StateLost:              "Lost",
	StateMarkedForShipment: "MarkedForShipment",
	StateDonated:           "Donated",
	StateScrap:             "Scrap",
	StateInTransit:         "InTransit",
	StateReceiving:         "Receiving",
	StateNotDelivered:      "NotDelivered",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "Unknown"
}

func (s State) IsValid() bool {
	_, ok := stateNames[s]
	return ok
}

// Code returns the ledger integer code.
func (s State) Code() int64 {
	return int64(s)
}

// ParseState resolves a state name as used by the API layer.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return 0, dErrors.Newf(dErrors.CodeInvalidInput, "unknown box state: %q", name)
}
