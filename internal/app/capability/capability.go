// Package capability implements the capability aggregator: it flattens the
// hardware-side SUD key space into a dense, zero-based logical ID space per
// capability kind, built once from the advertisements gathered during
// LowLevelInit and frozen thereafter.
package capability

import (
	"sort"
	"sync"

	"barracuda/internal/app/errors"
	"barracuda/internal/app/sud"
)

// Kind distinguishes the three capability spaces a module can advertise
// into. Each is flattened independently.
type Kind int

const (
	KindInputs Kind = iota
	KindOutputs
	KindAccessPoints
)

// Advertisement is emitted exactly once per module during LowLevelInit,
// naming how many contiguous SUD slots it owns of a given kind starting at
// BaseSUD.
type Advertisement struct {
	ModuleID sud.SUD
	Kind     Kind
	BaseSUD  sud.SUD
	Count    uint16
}

// Aggregator collects advertisements and, after Build, answers SUD<->logical
// ID queries. It is strictly two-phase: Add before Build, query after.
// Mutating after Build, or querying before it, is a programming error.
type Aggregator struct {
	mu      sync.Mutex
	built   bool
	pending []Advertisement
	tables  map[Kind][]sud.SUD
}

// New returns an empty, unbuilt Aggregator.
func New() *Aggregator {
	return &Aggregator{}
}

// Add registers an advertisement's SUD range. It panics if called after
// Build - mutating a built aggregator is a programming error, not a
// recoverable one.
func (a *Aggregator) Add(adv Advertisement) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.built {
		panic(errors.ErrAggregatorAlreadyBuilt)
	}

	a.pending = append(a.pending, adv)
}

// Build flattens every pending advertisement into sorted, per-kind SUD
// tables and freezes the aggregator. It returns ErrDuplicateSUD - a fatal
// configuration error - if the same SUD is advertised twice within a kind.
func (a *Aggregator) Build() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.built {
		panic(errors.ErrAggregatorAlreadyBuilt)
	}

	tables := map[Kind][]sud.SUD{
		KindInputs:       {},
		KindOutputs:      {},
		KindAccessPoints: {},
	}

	for _, adv := range a.pending {
		for i := uint16(0); i < adv.Count; i++ {
			tables[adv.Kind] = append(tables[adv.Kind], adv.BaseSUD.WithIndex(adv.BaseSUD.Index()+i))
		}
	}

	for kind, ids := range tables {
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

		for i := 1; i < len(ids); i++ {
			if ids[i] == ids[i-1] {
				return errors.ErrDuplicateSUD
			}
		}

		tables[kind] = ids
	}

	a.tables = tables
	a.built = true

	return nil
}

// SUDToLogical returns the dense logical ID for s within kind, via binary
// search over the sorted table. It panics if called before Build.
func (a *Aggregator) SUDToLogical(s sud.SUD, kind Kind) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.built {
		panic(errors.ErrAggregatorNotBuilt)
	}

	ids := a.tables[kind]

	i := sort.Search(len(ids), func(i int) bool { return ids[i] >= s })
	if i < len(ids) && ids[i] == s {
		return i, nil
	}

	return 0, errors.ErrSUDNotFound
}

// LogicalToSUD returns the SUD at logical ID id within kind. It panics if
// called before Build.
func (a *Aggregator) LogicalToSUD(id int, kind Kind) (sud.SUD, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.built {
		panic(errors.ErrAggregatorNotBuilt)
	}

	ids := a.tables[kind]

	if id < 0 || id >= len(ids) {
		return 0, errors.ErrLogicalIDOutOfRange
	}

	return ids[id], nil
}

// Count returns the number of logical IDs registered for kind. It panics if
// called before Build.
func (a *Aggregator) Count(kind Kind) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.built {
		panic(errors.ErrAggregatorNotBuilt)
	}

	return len(a.tables[kind])
}
