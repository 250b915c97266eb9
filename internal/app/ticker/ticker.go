// Package ticker implements the profile ticker: on a wall-clock cadence it
// evaluates every time-window (door-open) profile and emits an edge event
// whenever a profile's active state changes, or on its first tick after
// being added.
package ticker

import (
	"sync"
	"time"

	"barracuda/internal/app/bus"
	"barracuda/internal/config"
)

// Edge distinguishes the two transitions a time-window profile can emit.
type Edge int

const (
	Active Edge = iota
	Inactive
)

// ProfileChangeEvent is published whenever a time-window profile's active
// state flips, or on the first tick after it is added.
type ProfileChangeEvent struct {
	ProfileID int
	Edge      Edge
}

// TimeSlot matches a weekday and an inclusive hhmm range.
type TimeSlot struct {
	Weekday  time.Weekday
	From, To int
}

// Matches reports whether now falls within the slot.
func (s TimeSlot) Matches(now time.Time) bool {
	if now.Weekday() != s.Weekday {
		return false
	}

	hhmm := now.Hour()*100 + now.Minute()
	return hhmm >= s.From && hhmm <= s.To
}

// Profile is a time-window (door-open) profile: active whenever any of its
// slots matches the current time.
type Profile struct {
	ID        int
	TimeSlots []TimeSlot
}

func (p Profile) activeAt(now time.Time) bool {
	for _, slot := range p.TimeSlots {
		if slot.Matches(now) {
			return true
		}
	}

	return false
}

type trackedProfile struct {
	profile    Profile
	lastActive bool
	firstTick  bool
}

// Ticker holds the set of time-window profiles and, on each Tick, emits
// ProfileChangeEvent for every profile whose active state changed since the
// previous tick (or for every profile on its first tick after being added).
type Ticker struct {
	mu       sync.Mutex
	bus      *bus.Bus
	profiles map[int]*trackedProfile
	now      func() time.Time
}

// New returns an empty Ticker publishing ProfileChangeEvent on b.
func New(b *bus.Bus) *Ticker {
	return &Ticker{
		bus:      b,
		profiles: make(map[int]*trackedProfile),
		now:      time.Now,
	}
}

// AddProfile registers p (or replaces the existing profile with the same
// ID), arming its first-tick flag so the next Tick always yields an event
// for it regardless of whether any other profile changed.
func (t *Ticker) AddProfile(p Profile) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.profiles[p.ID] = &trackedProfile{profile: p, firstTick: true}
}

// RemoveProfile stops tracking id.
func (t *Ticker) RemoveProfile(id int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.profiles, id)
}

// Replace swaps the entire tracked profile set, used when filewatch
// re-applies an externally-rewritten bin_profiles.txt. Every profile is
// re-armed with firstTick, the same as a fresh AddProfile.
func (t *Ticker) Replace(profiles []Profile) {
	t.mu.Lock()
	t.profiles = make(map[int]*trackedProfile, len(profiles))
	t.mu.Unlock()

	for _, p := range profiles {
		t.AddProfile(p)
	}
}

// Tick evaluates every tracked profile against the current time and
// publishes a ProfileChangeEvent for each one whose active state changed,
// or that has never ticked before.
func (t *Ticker) Tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()

	for _, tp := range t.profiles {
		active := tp.profile.activeAt(now)

		if tp.firstTick || active != tp.lastActive {
			edge := Inactive
			if active {
				edge = Active
			}

			bus.Publish(t.bus, ProfileChangeEvent{ProfileID: tp.profile.ID, Edge: edge})
		}

		tp.lastActive = active
		tp.firstTick = false
	}
}

// Run calls Tick on config.ProfileTickInterval until stop is closed.
func (t *Ticker) Run(stop <-chan struct{}) {
	ticker := time.NewTicker(config.ProfileTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.Tick()
		}
	}
}
