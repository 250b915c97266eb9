package passageway

import (
	"fmt"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/errors"
	"barracuda/internal/app/eventlog"
	"barracuda/internal/app/persist"
	"barracuda/internal/app/timer"
	"barracuda/internal/config/logger"
)

// ioDTO is the tagged-variant wire shape shared by both the inputs and
// outputs arrays of a persisted passageway setting.
type ioDTO struct {
	Type            string `json:"type"`
	ID              int    `json:"id"`
	OperationTimeMs uint32 `json:"operation_time_ms"`
}

// Settings is the persisted passageway record: spec.md's
// {id, access_points, alarm_time_ms, inputs, outputs}, plus the
// door-open-profile binding the ticker uses to drive this passageway's
// DoorOpenProfileActive/Inactive transitions.
type Settings struct {
	ID                int     `json:"id"`
	AccessPoints      []int   `json:"access_points"`
	AlarmTimeMs       uint32  `json:"alarm_time_ms"`
	DoorOpenProfileID *int    `json:"door_open_profile_id"`
	Inputs            []ioDTO `json:"inputs"`
	Outputs           []ioDTO `json:"outputs"`
}

// LoadSettings reads path (passageways.txt's shape).
func LoadSettings(path string) ([]Settings, error) {
	return persist.ReadJSON[[]Settings](path)
}

func buildInput(dto ioDTO) (InputComponent, error) {
	switch dto.Type {
	case "FrameContact":
		return FrameContact{LogicalID: dto.ID}, nil
	case "DoorOpenerKey":
		return &DoorOpenerKey{LogicalID: dto.ID}, nil
	case "DoorHandle":
		return &DoorHandle{LogicalID: dto.ID}, nil
	case "ReleaseContact":
		return ReleaseContact{LogicalID: dto.ID}, nil
	case "BlockingContact":
		return BlockingContact{LogicalID: dto.ID}, nil
	default:
		return nil, fmt.Errorf("passageway: %w: input type %q", errors.ErrInvalidConfig, dto.Type)
	}
}

func buildOutput(dto ioDTO) (OutputComponent, error) {
	switch dto.Type {
	case "ElectricStrike":
		return ElectricStrike{LogicalID: dto.ID, OperationMs: dto.OperationTimeMs}, nil
	case "AccessGranted":
		return AccessGranted{LogicalID: dto.ID, OperationMs: dto.OperationTimeMs}, nil
	case "AlarmRelay":
		return AlarmRelay{LogicalID: dto.ID}, nil
	default:
		return nil, fmt.Errorf("passageway: %w: output type %q", errors.ErrInvalidConfig, dto.Type)
	}
}

// BuildDriver constructs a Driver for one persisted passageway setting,
// wiring every input/output component it names.
func BuildDriver(s Settings, b *bus.Bus, svc *timer.Service, events *eventlog.Buffer, log logger.Logger) (*Driver, error) {
	d := NewDriver(s.ID, b, svc, events, log)
	d.AccessPoints = s.AccessPoints

	if s.AlarmTimeMs > 0 {
		d.tooLongMs = s.AlarmTimeMs
	}

	if s.DoorOpenProfileID != nil {
		d.DoorOpenProfileID = *s.DoorOpenProfileID
		d.HasDoorOpenProfile = true
	}

	for _, dto := range s.Inputs {
		in, err := buildInput(dto)
		if err != nil {
			return nil, err
		}

		d.AddInput(in)
	}

	for _, dto := range s.Outputs {
		out, err := buildOutput(dto)
		if err != nil {
			return nil, err
		}

		d.AddOutput(out)
	}

	return d, nil
}
