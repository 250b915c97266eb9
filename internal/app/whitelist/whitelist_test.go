package whitelist

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"barracuda/internal/app/bus"
	"barracuda/internal/app/eventlog"
	"barracuda/internal/config/logger"
)

func mustMonday0800() time.Time {
	// 2026-08-03 is a Monday.
	return time.Date(2026, time.August, 3, 8, 0, 0, 0, time.UTC)
}

func newEvaluator(t *testing.T, store *Store) (*bus.Bus, *Evaluator) {
	t.Helper()

	b := bus.New()
	events := eventlog.New(100)
	e := NewEvaluator(b, store, events, logger.NewNoopLogger())

	return b, e
}

func Test_Handle_UnknownToken_Denied(t *testing.T) {
	store := NewStore()
	b, e := newEvaluator(t, store)

	sig := bus.Subscribe[SigCommand](b)
	door := bus.Subscribe[DoorOpenRequest](b)

	e.Handle(WhitelistAccessRequest{Token: []byte("nope"), AccessPoint: 47})

	cmd := sig.Recv()
	assert.Equal(t, SigAccessDenied, cmd.Kind)
	assert.Equal(t, uint32(1000), cmd.DurationMs)

	_, ok := door.TryRecv()
	assert.False(t, ok)
}

func Test_Handle_KnownToken_ValidProfile_Granted(t *testing.T) {
	store := NewStore()
	store.PutEntry(Entry{Token: []byte("tok"), AccessProfiles: []int{1}})
	store.PutProfile(Profile{
		ID:           1,
		AccessPoints: []int{47},
		TimeSlots:    []TimeSlot{{Weekday: time.Monday, From: 700, To: 1000}},
	})

	b, e := newEvaluator(t, store)
	e.now = mustMonday0800

	door := bus.Subscribe[DoorOpenRequest](b)

	e.Handle(WhitelistAccessRequest{Token: []byte("tok"), AccessPoint: 47})

	req := door.Recv()
	assert.Equal(t, 47, req.AccessPoint)
}

func Test_Handle_KnownToken_ProfileExcludesAccessPoint_Denied(t *testing.T) {
	store := NewStore()
	store.PutEntry(Entry{Token: []byte("tok"), AccessProfiles: []int{1}})
	store.PutProfile(Profile{
		ID:           1,
		AccessPoints: []int{99},
		TimeSlots:    []TimeSlot{{Weekday: time.Monday, From: 700, To: 1000}},
	})

	b, e := newEvaluator(t, store)
	e.now = mustMonday0800

	sig := bus.Subscribe[SigCommand](b)
	door := bus.Subscribe[DoorOpenRequest](b)

	e.Handle(WhitelistAccessRequest{Token: []byte("tok"), AccessPoint: 47})

	cmd := sig.Recv()
	assert.Equal(t, SigAccessDenied, cmd.Kind)

	_, ok := door.TryRecv()
	assert.False(t, ok)
}

func Test_Handle_KnownToken_WrongWeekday_Denied(t *testing.T) {
	store := NewStore()
	store.PutEntry(Entry{Token: []byte("tok"), AccessProfiles: []int{1}})
	store.PutProfile(Profile{
		ID:           1,
		AccessPoints: []int{47},
		TimeSlots:    []TimeSlot{{Weekday: time.Monday, From: 700, To: 1000}},
	})

	b, e := newEvaluator(t, store)
	e.now = func() time.Time { return time.Date(2026, time.August, 4, 8, 0, 0, 0, time.UTC) } // Tuesday

	sig := bus.Subscribe[SigCommand](b)

	e.Handle(WhitelistAccessRequest{Token: []byte("tok"), AccessPoint: 47})

	cmd := sig.Recv()
	assert.Equal(t, SigAccessDenied, cmd.Kind)
}

func Test_Store_PutEntry_OverwritesByToken(t *testing.T) {
	store := NewStore()
	store.PutEntry(Entry{Token: []byte("tok"), AccessProfiles: []int{1}})
	store.PutEntry(Entry{Token: []byte("tok"), AccessProfiles: []int{2}})

	e, ok := store.findEntry([]byte("tok"))
	require.True(t, ok)
	assert.Equal(t, []int{2}, e.AccessProfiles)
}

func Test_Store_PutProfile_OverwritesByID(t *testing.T) {
	store := NewStore()
	store.PutProfile(Profile{ID: 1, AccessPoints: []int{1}})
	store.PutProfile(Profile{ID: 1, AccessPoints: []int{2}})

	p, ok := store.findProfile(1)
	require.True(t, ok)
	assert.Equal(t, []int{2}, p.AccessPoints)
}

func Test_Store_DeleteEntry(t *testing.T) {
	store := NewStore()
	store.PutEntry(Entry{Token: []byte("tok")})
	store.DeleteEntry([]byte("tok"))

	_, ok := store.findEntry([]byte("tok"))
	assert.False(t, ok)
}
