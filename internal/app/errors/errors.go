package errors

import (
	"errors"
)

// Config / boot errors
var (
	ErrFailedToReadConfig  = errors.New("failed to read config file")
	ErrFailedToParseConfig = errors.New("failed to parse config file")
	ErrInvalidConfig       = errors.New("invalid configuration")

	ErrBarrierTimeout = errors.New("boot barrier timed out")
	ErrUnknownStage   = errors.New("unknown boot stage")
)

// Capability aggregator errors
var (
	ErrAggregatorNotBuilt     = errors.New("capability aggregator queried before build")
	ErrAggregatorAlreadyBuilt = errors.New("capability aggregator mutated after build")
	ErrDuplicateSUD           = errors.New("duplicate sud advertised for capability kind")
	ErrSUDNotFound            = errors.New("sud not found for capability kind")
	ErrLogicalIDOutOfRange    = errors.New("logical id out of range for capability kind")
)

// I/O manager errors
var (
	ErrUnknownInputSUD = errors.New("raw input event for unknown sud")
	ErrUnknownOutputID = errors.New("output switch for unknown logical id")
)

// Whitelist / profile errors
var (
	ErrTokenNotFound      = errors.New("token not found in whitelist")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrUnknownAccessPoint = errors.New("unknown access point")
)

// Passageway FSM errors
var (
	ErrImpossibleTransition = errors.New("impossible passageway transition")
	ErrUnknownPassageway    = errors.New("unknown passageway")
)

// Config-handler registry errors
var (
	ErrRouteNotFound     = errors.New("no handler registered for route")
	ErrRouteAlreadyBound = errors.New("route already has a registered handler")
)

// Event log / bus errors
var (
	ErrEventLogEmpty = errors.New("event log has no events to drain")
)

var (
	As  = errors.As
	Is  = errors.Is
	New = errors.New
)
