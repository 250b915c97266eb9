package ticker

import (
	"time"

	"barracuda/internal/app/persist"
)

type timeSlotDTO struct {
	Weekday int `json:"weekday"`
	From    int `json:"from"`
	To      int `json:"to"`
}

type profileDTO struct {
	ID        int           `json:"id"`
	TimeSlots []timeSlotDTO `json:"time_slots"`
}

// Load reads path (bin_profiles.txt's shape) and replaces t's entire
// tracked profile set.
func Load(t *Ticker, path string) error {
	dtos, err := persist.ReadJSON[[]profileDTO](path)
	if err != nil {
		return err
	}

	profiles := make([]Profile, 0, len(dtos))

	for _, dto := range dtos {
		slots := make([]TimeSlot, 0, len(dto.TimeSlots))
		for _, s := range dto.TimeSlots {
			slots = append(slots, TimeSlot{Weekday: time.Weekday(s.Weekday), From: s.From, To: s.To})
		}

		profiles = append(profiles, Profile{ID: dto.ID, TimeSlots: slots})
	}

	t.Replace(profiles)

	return nil
}
