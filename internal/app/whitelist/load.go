package whitelist

import (
	"time"

	"barracuda/internal/app/persist"
)

// LoadEntries reads path (whitelist.txt's shape) and replaces store's
// entire entry set. Used both at boot and by filewatch on external changes.
func LoadEntries(store *Store, path string) error {
	dtos, err := persist.ReadJSON[[]entryDTO](path)
	if err != nil {
		return err
	}

	entries := make([]Entry, 0, len(dtos))
	for _, dto := range dtos {
		entries = append(entries, Entry{Token: dto.Token, AccessProfiles: dto.AccessProfiles})
	}

	store.ReplaceEntries(entries)

	return nil
}

// LoadProfiles reads path (profiles.txt's shape) and replaces store's
// entire profile set.
func LoadProfiles(store *Store, path string) error {
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

		profiles = append(profiles, Profile{ID: dto.ID, AccessPoints: dto.AccessPoints, TimeSlots: slots})
	}

	store.ReplaceProfiles(profiles)

	return nil
}
