package order

import (
	"strings"

	"github.com/pkg/errors"
)

// Status is the order lifecycle state. The value set is closed and every
// transition is validated at the API boundary, not left to client convention.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConfirmed  Status = "confirmed"
	StatusProcessing Status = "processing"
	StatusDispatched Status = "dispatched"
	StatusCancelled  Status = "cancelled"
)

var (
	ErrInvalidStatus     = errors.New("invalid order status")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// legacy synonyms still emitted by older clients
var statusAliases = map[string]Status{
	"processed": StatusProcessing,
	"shipped":   StatusDispatched,
	"delivered": StatusDispatched,
}

// ParseStatus normalizes a raw status string, accepting legacy synonyms.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing, StatusDispatched, StatusCancelled:
		return s, nil
	}
	if alias, ok := statusAliases[string(s)]; ok {
		return alias, nil
	}
	return "", errors.Wrapf(ErrInvalidStatus, "%q", raw)
}

var transitions = map[Status][]Status{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusDispatched},
	StatusProcessing: {StatusDispatched},
	// cancelled and dispatched are terminal
}

// CanTransition reports whether from -> to is a permitted transition.
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leads out of s.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}
