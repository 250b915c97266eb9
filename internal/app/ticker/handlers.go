package ticker

import (
	"encoding/json"
	"time"

	"barracuda/internal/app/confighandlers"
)

// entryDTO is the JSON wire shape for PUT/DELETE profiles/entry.
type entryDTO struct {
	ID        int           `json:"id"`
	TimeSlots []timeSlotDTO `json:"time_slots"`
}

// RegisterHandlers binds the bin-profile config route onto r, the
// in-process side of the REST collaborator contract.
func RegisterHandlers(r *confighandlers.Registry, t *Ticker) error {
	routes := []struct {
		method  string
		route   string
		handler confighandlers.Handler
	}{
		{"PUT", "profiles/entry", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
			return nil, putEntry(t, body)
		})},
		{"DELETE", "profiles/entry", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
			return nil, deleteEntry(t, body)
		})},
	}

	for _, rt := range routes {
		if err := r.Register(rt.method, rt.route, rt.handler); err != nil {
			return err
		}
	}

	return nil
}

func putEntry(t *Ticker, body []byte) error {
	var dto entryDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return err
	}

	slots := make([]TimeSlot, 0, len(dto.TimeSlots))
	for _, s := range dto.TimeSlots {
		slots = append(slots, TimeSlot{Weekday: time.Weekday(s.Weekday), From: s.From, To: s.To})
	}

	t.AddProfile(Profile{ID: dto.ID, TimeSlots: slots})

	return nil
}

func deleteEntry(t *Ticker, body []byte) error {
	var dto entryDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return err
	}

	t.RemoveProfile(dto.ID)

	return nil
}
