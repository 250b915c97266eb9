// Package sud implements the System Unique iD: a 32-bit hardware-side module
// identifier used as the key space the capability aggregator flattens into
// dense logical IDs.
package sud

// SUD packs {module-kind: 8 bits, instance: 8 bits, object-index: 16 bits}
// into a single 32-bit value, stable across restarts.
type SUD uint32

// Kind is the module-kind octet (top 8 bits of a SUD).
type Kind uint8

const (
	KindTrace            Kind = 0x02
	KindGenericWhitelist Kind = 0x03
	KindConsoleInput     Kind = 0x04
	KindConfigREST       Kind = 0x06
	KindIoManager        Kind = 0x07
	KindTrivialDCM       Kind = 0x08
	KindMFRC522          Kind = 0x0B
	KindProfile          Kind = 0x0C
	KindSig              Kind = 0x0D
	KindADCM             Kind = 0x0E
	KindEventStore       Kind = 0x0F
)

// Make packs a module-kind, instance, and object-index into a SUD.
func Make(kind Kind, instance uint8, index uint16) SUD {
	return SUD(uint32(kind)<<24 | uint32(instance)<<16 | uint32(index))
}

// Kind returns the module-kind octet.
func (s SUD) Kind() Kind {
	return Kind(s >> 24)
}

// Instance returns the instance octet.
func (s SUD) Instance() uint8 {
	return uint8(s >> 16)
}

// Index returns the 16-bit object-index.
func (s SUD) Index() uint16 {
	return uint16(s)
}

// WithIndex returns a copy of s with its object-index replaced - used to
// derive one SUD per contiguous capability slot a module advertises
// (SUD 10:0:0, count=4 -> 10:0:0, 10:0:1, 10:0:2, 10:0:3).
func (s SUD) WithIndex(index uint16) SUD {
	return Make(s.Kind(), s.Instance(), index)
}
