package whitelist

import (
	"encoding/json"
	"time"

	"barracuda/internal/app/confighandlers"
)

// entryDTO is the JSON wire shape for PUT/DELETE wl/entry.
type entryDTO struct {
	Token          []byte `json:"token"`
	AccessProfiles []int  `json:"access_profiles"`
}

// timeSlotDTO is the JSON wire shape for a profile's time slots.
type timeSlotDTO struct {
	Weekday int `json:"weekday"`
	From    int `json:"from"`
	To      int `json:"to"`
}

// profileDTO is the JSON wire shape for PUT/DELETE wl/profile.
type profileDTO struct {
	ID           int           `json:"id"`
	AccessPoints []int         `json:"access_points"`
	TimeSlots    []timeSlotDTO `json:"time_slots"`
}

// RegisterHandlers binds the whitelist/profile config routes onto r, the
// in-process side of the REST collaborator contract.
func RegisterHandlers(r *confighandlers.Registry, store *Store) error {
	routes := []struct {
		method  string
		route   string
		handler confighandlers.Handler
	}{
		{"PUT", "wl/entry", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
			return nil, putEntry(store, body)
		})},
		{"DELETE", "wl/entry", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
			return nil, deleteEntryHandler(store, body)
		})},
		{"PUT", "wl/profile", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
			return nil, putProfile(store, body)
		})},
		{"DELETE", "wl/profile", confighandlers.HandlerFunc(func(body []byte) ([]byte, error) {
			return nil, deleteProfileHandler(store, body)
		})},
	}

	for _, rt := range routes {
		if err := r.Register(rt.method, rt.route, rt.handler); err != nil {
			return err
		}
	}

	return nil
}

func putEntry(store *Store, body []byte) error {
	var dto entryDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return err
	}

	store.PutEntry(Entry{Token: dto.Token, AccessProfiles: dto.AccessProfiles})

	return nil
}

func deleteEntryHandler(store *Store, body []byte) error {
	var dto entryDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return err
	}

	store.DeleteEntry(dto.Token)

	return nil
}

func putProfile(store *Store, body []byte) error {
	var dto profileDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return err
	}

	slots := make([]TimeSlot, 0, len(dto.TimeSlots))
	for _, s := range dto.TimeSlots {
		slots = append(slots, TimeSlot{Weekday: time.Weekday(s.Weekday), From: s.From, To: s.To})
	}

	store.PutProfile(Profile{ID: dto.ID, AccessPoints: dto.AccessPoints, TimeSlots: slots})

	return nil
}

func deleteProfileHandler(store *Store, body []byte) error {
	var dto profileDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		return err
	}

	store.DeleteProfile(dto.ID)

	return nil
}
