package trade

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/fkhayef/plantswap/internal/plant"
)

// Status is the named lifecycle state of a trade request
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusDeclined Status = "declined"
	StatusUnknown  Status = "unknown"
)

// StatusFromCode maps the API's numeric status. Codes outside the table
// are StatusUnknown.
func StatusFromCode(code int) Status {
	switch code {
	case 0:
		return StatusPending
	case 1:
		return StatusAccepted
	case 2:
		return StatusDeclined
	default:
		return StatusUnknown
	}
}

// Terminal reports whether no further answer can change s.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusDeclined
}

// CanTransition reports whether a request in s may move to to. Only a
// pending request can be answered; removal is allowed from any state and
// is not a transition.
func (s Status) CanTransition(to Status) bool {
	return s == StatusPending && to.Terminal()
}

// Key identifies a trade request by the plants it exchanges
type Key struct {
	Outgoing uuid.UUID `json:"outgoing_plant_id"`
	Incoming uuid.UUID `json:"incoming_plant_id"`
}

// ParseKey builds a Key from two textual plant ids
func ParseKey(outgoing, incoming string) (Key, error) {
	out, err := uuid.Parse(outgoing)
	if err != nil {
		return Key{}, fmt.Errorf("invalid outgoing plant id: %w", err)
	}
	in, err := uuid.Parse(incoming)
	if err != nil {
		return Key{}, fmt.Errorf("invalid incoming plant id: %w", err)
	}
	return Key{Outgoing: out, Incoming: in}, nil
}

// Path renders the key as the two trailing segments of an API route.
func (k Key) Path() string {
	return k.Outgoing.String() + "/" + k.Incoming.String()
}

func (k Key) String() string {
	return k.Outgoing.String() + "->" + k.Incoming.String()
}

// Record is a trade request as the API reports it
type Record struct {
	OutgoingPlantID uuid.UUID `json:"outgoing_plant_id"`
	IncomingPlantID uuid.UUID `json:"incoming_plant_id"`
	OutgoingUserID  uuid.UUID `json:"outgoing_user_id"`
	IncomingUserID  uuid.UUID `json:"incoming_user_id"`
	Message         string    `json:"message"`
	Status          int       `json:"status"`
}

// Key returns the natural key of r
func (r Record) Key() Key {
	return Key{Outgoing: r.OutgoingPlantID, Incoming: r.IncomingPlantID}
}

// Enriched is a Record with its named status and both plants attached.
// A plant is nil when its lookup failed.
type Enriched struct {
	OutgoingPlantID uuid.UUID    `json:"outgoing_plant_id"`
	IncomingPlantID uuid.UUID    `json:"incoming_plant_id"`
	OutgoingUserID  uuid.UUID    `json:"outgoing_user_id"`
	IncomingUserID  uuid.UUID    `json:"incoming_user_id"`
	Message         string       `json:"message"`
	Status          Status       `json:"status"`
	OutgoingPlant   *plant.Plant `json:"outgoing_plant,omitempty"`
	IncomingPlant   *plant.Plant `json:"incoming_plant,omitempty"`
}

// Key returns the natural key of e
func (e Enriched) Key() Key {
	return Key{Outgoing: e.OutgoingPlantID, Incoming: e.IncomingPlantID}
}

// Enrich attaches plants found in byID to r.
func Enrich(r Record, byID map[uuid.UUID]*plant.Plant) Enriched {
	return Enriched{
		OutgoingPlantID: r.OutgoingPlantID,
		IncomingPlantID: r.IncomingPlantID,
		OutgoingUserID:  r.OutgoingUserID,
		IncomingUserID:  r.IncomingUserID,
		Message:         r.Message,
		Status:          StatusFromCode(r.Status),
		OutgoingPlant:   byID[r.OutgoingPlantID],
		IncomingPlant:   byID[r.IncomingPlantID],
	}
}

// Scope selects which of the caller's trade requests to list
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeIncoming Scope = "incoming"
	ScopeOutgoing Scope = "outgoing"
)

// ParseScope validates s; the empty string means ScopeAll.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case "", ScopeAll:
		return ScopeAll, nil
	case ScopeIncoming, ScopeOutgoing:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidScope, s)
	}
}
