package eventlog

import (
	"encoding/json"

	"barracuda/internal/app/confighandlers"
)

// eventDTO is the JSON wire shape one drained LogEvent is rendered as for
// GET events: a tagged variant keyed by Type, the same shape the rest of
// the appliance uses for its own tagged-union wire records.
type eventDTO struct {
	Type         string  `json:"type"`
	PassagewayID int     `json:"passageway_id,omitempty"`
	Token        []byte  `json:"token,omitempty"`
	AccessPoint  int     `json:"access_point,omitempty"`
	CPUPercent   float64 `json:"cpu_percent,omitempty"`
	MemMB        float64 `json:"mem_mb,omitempty"`
}

// RegisterHandlers binds the read-only events route onto r: each call
// drains and returns the next batch of buffered LogEvents.
func RegisterHandlers(r *confighandlers.Registry, buf *Buffer) error {
	return r.Register("GET", "events", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
		return drain(buf)
	}))
}

func drain(buf *Buffer) ([]byte, error) {
	items := buf.Drain()
	if len(items) == 0 {
		return nil, nil
	}

	dtos := make([]eventDTO, 0, len(items))
	for _, ev := range items {
		dtos = append(dtos, toDTO(ev))
	}

	return json.Marshal(dtos)
}

func toDTO(ev LogEvent) eventDTO {
	switch e := ev.(type) {
	case AccessGranted:
		return eventDTO{Type: "AccessGranted", PassagewayID: e.PassagewayID, Token: e.Token, AccessPoint: e.AccessPoint}
	case AccessDeniedTokenUnknown:
		return eventDTO{Type: "AccessDeniedTokenUnknown", PassagewayID: e.PassagewayID, Token: e.Token, AccessPoint: e.AccessPoint}
	case AccessDeniedTimezoneViolated:
		return eventDTO{Type: "AccessDeniedTimezoneViolated", PassagewayID: e.PassagewayID, Token: e.Token, AccessPoint: e.AccessPoint}
	case AccessDeniedDoorBlocked:
		return eventDTO{Type: "AccessDeniedDoorBlocked", PassagewayID: e.PassagewayID, Token: e.Token, AccessPoint: e.AccessPoint}
	case DoorForcedOpen:
		return eventDTO{Type: "DoorForcedOpen", PassagewayID: e.PassagewayID}
	case DoorClosedAgain:
		return eventDTO{Type: "DoorClosedAgain", PassagewayID: e.PassagewayID}
	case DoorPermanentlyReleased:
		return eventDTO{Type: "DoorPermanentlyReleased", PassagewayID: e.PassagewayID}
	case DoorReleasedOnce:
		return eventDTO{Type: "DoorReleasedOnce", PassagewayID: e.PassagewayID}
	case DoorEnteredNormalOperation:
		return eventDTO{Type: "DoorEnteredNormalOperation", PassagewayID: e.PassagewayID}
	case DoorBlocked:
		return eventDTO{Type: "DoorBlocked", PassagewayID: e.PassagewayID}
	case DoorEmergencyReleased:
		return eventDTO{Type: "DoorEmergencyReleased", PassagewayID: e.PassagewayID}
	case SystemHealth:
		return eventDTO{Type: "SystemHealth", CPUPercent: e.CPUPercent, MemMB: e.MemMB}
	default:
		return eventDTO{Type: "Unknown"}
	}
}
