// Package whitelist implements the access-profile evaluator: token lookup
// against whitelist entries, time-window and access-point validation
// against the profiles a token carries, and the PUT/DELETE config surface
// for both stores.
package whitelist

import (
	"bytes"
	"sync"
	"time"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/eventlog"
	"barracuda/internal/config"
	"barracuda/internal/config/logger"
)

// SigKind is the signal kind shown at a reader's indicator.
type SigKind int

const (
	SigAccessGranted SigKind = iota
	SigAccessDenied
)

// SigCommand asks a reader to show a granted/denied indication for
// DurationMs.
type SigCommand struct {
	AccessPoint int
	Kind        SigKind
	DurationMs  uint32
}

// DoorOpenRequest is emitted once a presented token is validated. Token is
// carried through so the passageway's AccessGranted log event can record
// which token triggered the opening.
type DoorOpenRequest struct {
	AccessPoint int
	Token       []byte
}

// WhitelistAccessRequest is published by a reader module when a token is
// presented at one of its access points.
type WhitelistAccessRequest struct {
	Token       []byte
	AccessPoint int
}

// Entry is a whitelist record: an opaque token and the profiles it grants.
type Entry struct {
	Token          []byte
	AccessProfiles []int
}

// TimeSlot matches a weekday and an inclusive hhmm range, e.g. Mon
// 07:00-10:00 is {Weekday: time.Monday, From: 700, To: 1000}.
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

// Profile is an access profile: the access points it covers and the time
// slots during which it is valid.
type Profile struct {
	ID           int
	AccessPoints []int
	TimeSlots    []TimeSlot
}

func (p Profile) coversAccessPoint(ap int) bool {
	for _, id := range p.AccessPoints {
		if id == ap {
			return true
		}
	}

	return false
}

func (p Profile) activeAt(now time.Time) bool {
	for _, slot := range p.TimeSlots {
		if slot.Matches(now) {
			return true
		}
	}

	return false
}

// Store holds the whitelist entries and access profiles, each guarded by
// its own mutex so readers (the evaluator) and writers (the config
// handlers) never block on the other store's critical section.
type Store struct {
	entriesMu sync.Mutex
	entries   []Entry

	profilesMu sync.Mutex
	profiles   []Profile
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{}
}

// PutEntry inserts e, replacing any existing entry with the same token
// (delete-then-insert put-overwrite semantics).
func (s *Store) PutEntry(e Entry) {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()

	s.entries = deleteEntry(s.entries, e.Token)
	s.entries = append(s.entries, e)
}

// DeleteEntry removes the entry matching token, if any.
func (s *Store) DeleteEntry(token []byte) {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()

	s.entries = deleteEntry(s.entries, token)
}

func deleteEntry(entries []Entry, token []byte) []Entry {
	out := entries[:0]

	for _, e := range entries {
		if !bytes.Equal(e.Token, token) {
			out = append(out, e)
		}
	}

	return out
}

// ReplaceEntries swaps the entire entry set, used when filewatch re-applies
// an externally-rewritten whitelist.txt.
func (s *Store) ReplaceEntries(entries []Entry) {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()

	s.entries = entries
}

func (s *Store) findEntry(token []byte) (Entry, bool) {
	s.entriesMu.Lock()
	defer s.entriesMu.Unlock()

	for _, e := range s.entries {
		if bytes.Equal(e.Token, token) {
			return e, true
		}
	}

	return Entry{}, false
}

// PutProfile inserts p, replacing any existing profile with the same ID.
func (s *Store) PutProfile(p Profile) {
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	s.profiles = deleteProfile(s.profiles, p.ID)
	s.profiles = append(s.profiles, p)
}

// DeleteProfile removes the profile matching id, if any.
func (s *Store) DeleteProfile(id int) {
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	s.profiles = deleteProfile(s.profiles, id)
}

func deleteProfile(profiles []Profile, id int) []Profile {
	out := profiles[:0]

	for _, p := range profiles {
		if p.ID != id {
			out = append(out, p)
		}
	}

	return out
}

// ReplaceProfiles swaps the entire profile set, used when filewatch
// re-applies an externally-rewritten profiles.txt.
func (s *Store) ReplaceProfiles(profiles []Profile) {
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	s.profiles = profiles
}

func (s *Store) findProfile(id int) (Profile, bool) {
	s.profilesMu.Lock()
	defer s.profilesMu.Unlock()

	for _, p := range s.profiles {
		if p.ID == id {
			return p, true
		}
	}

	return Profile{}, false
}

// Evaluator consumes WhitelistAccessRequest and emits DoorOpenRequest or
// SigCommand/LogEvent denials.
type Evaluator struct {
	bus    *bus.Bus
	store  *Store
	events *eventlog.Buffer
	clog   logger.Logger
	now    func() time.Time
}

// NewEvaluator returns an Evaluator backed by store, logging denials into
// events; grants are not logged.
func NewEvaluator(b *bus.Bus, store *Store, events *eventlog.Buffer, clog logger.Logger) *Evaluator {
	return &Evaluator{
		bus:    b,
		store:  store,
		events: events,
		clog:   clog.WithComponent("WHITELIST"),
		now:    time.Now,
	}
}

// Handle evaluates a single presented-token request.
func (e *Evaluator) Handle(req WhitelistAccessRequest) {
	entry, ok := e.store.findEntry(req.Token)
	if !ok {
		e.deny(req, SigAccessDenied, eventlog.AccessDeniedTokenUnknown{
			Token:       req.Token,
			AccessPoint: req.AccessPoint,
		})

		return
	}

	for _, profileID := range entry.AccessProfiles {
		profile, ok := e.store.findProfile(profileID)
		if !ok {
			continue
		}

		if profile.coversAccessPoint(req.AccessPoint) && profile.activeAt(e.now()) {
			bus.Publish(e.bus, DoorOpenRequest{AccessPoint: req.AccessPoint, Token: req.Token})

			return
		}
	}

	e.deny(req, SigAccessDenied, eventlog.AccessDeniedTimezoneViolated{
		Token:       req.Token,
		AccessPoint: req.AccessPoint,
	})
}

func (e *Evaluator) deny(req WhitelistAccessRequest, kind SigKind, ev eventlog.LogEvent) {
	bus.Publish(e.bus, SigCommand{
		AccessPoint: req.AccessPoint,
		Kind:        kind,
		DurationMs:  config.AccessDeniedSignalMs,
	})
	e.events.Push(ev)
	e.clog.Warn().Int("access_point", req.AccessPoint).Msg("access denied")
}

// Run drains WhitelistAccessRequest messages for as long as stop is open.
func (e *Evaluator) Run(stop <-chan struct{}) {
	reqs := bus.Subscribe[WhitelistAccessRequest](e.bus)

	for {
		select {
		case <-stop:
			return
		default:
		}

		req, ok := reqs.Queue().PopTimeout(200 * time.Millisecond)
		if !ok {
			continue
		}

		e.Handle(req)
	}
}
