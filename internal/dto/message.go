package dto

import (
	"encoding/json"

	"github.com/evacgrid/backend/internal/model"
)

// MessageType enumerates every inbound realtime message. The gateway switches
// over these exhaustively instead of looking handlers up in a table.
type MessageType string

const (
	MessageUserLocationUpdate MessageType = "userLocationUpdate"
	MessageInit               MessageType = "init"
	MessageEmergencyAlert     MessageType = "emergencyAlert"
)

// Envelope is the wire frame spoken in both directions on the realtime
// channel: {"type": "...", "data": {...}}.
type Envelope struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// LocationUpdateData uses pointer fields so a missing or non-numeric
// coordinate is distinguishable from zero and rejected as a validation error.
type LocationUpdateData struct {
	UserID    *uint    `json:"userId"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type HandshakeData struct {
	MACAddr string `json:"MACADDR"`
}

type ErrorReply struct {
	Error string `json:"error"`
}

type SuccessReply struct {
	Success string `json:"success"`
}

const (
	EventWarning           = "warning"
	EventProximityToCenter = "proximityToCenter"
)

// WarningEvent is pushed when a user enters an active zone and an evacuation
// has been opened for them.
type WarningEvent struct {
	Type              string           `json:"type"`
	Message           string           `json:"message"`
	EvacuationDetails model.Evacuation `json:"evacuationDetails"`
}

// ProximityEvent is pushed when a user arrives at their assigned center and
// the evacuation has been completed.
type ProximityEvent struct {
	Type          string       `json:"type"`
	Message       string       `json:"message"`
	CenterDetails model.Center `json:"centerDetails"`
}
