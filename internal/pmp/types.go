package pmp

// types.go defines the bit-level data types the engine operates on: requested permissions, the
// address-match encoding, the raw configuration byte, privilege modes and the security
// configuration register.

import (
	"fmt"

	"github.com/usbarmory/tamago/bits"
)

// Permission is a single requested or granted access right.
type Permission uint8

// The three access rights PMP entries can grant. Bit positions match ConfigByte's R/W/X bits.
const (
	Read Permission = 1 << iota
	Write
	Exec
)

func (p Permission) String() string {
	switch p {
	case Read:
		return "R"
	case Write:
		return "W"
	case Exec:
		return "X"
	default:
		return fmt.Sprintf("Permission(%#x)", uint8(p))
	}
}

// Permissions is a set of Permission values, encoded as a bitmask.
type Permissions uint8

// None grants nothing; All requests every right at once.
const (
	None Permissions = 0
	All  Permissions = Permissions(Read | Write | Exec)
)

// PermsOf builds a Permissions set from individual rights.
func PermsOf(perms ...Permission) Permissions {
	var p Permissions
	for _, bit := range perms {
		p |= Permissions(bit)
	}

	return p
}

// Has reports whether the set grants the given right.
func (p Permissions) Has(bit Permission) bool {
	return p&Permissions(bit) != 0
}

// SubsetOf reports whether every right in p is also granted by other. An empty set is always a
// subset.
func (p Permissions) SubsetOf(other Permissions) bool {
	return p & ^other == 0
}

func (p Permissions) String() string {
	var out string

	for _, bit := range []Permission{Read, Write, Exec} {
		if p.Has(bit) {
			out += bit.String()
		}
	}

	if out == "" {
		return "-"
	}

	return out
}

// AddressMatch is the address-matching mode encoded in bits A of a configuration byte.
//
//go:generate stringer -type AddressMatch -output addressmatch_string.go
type AddressMatch uint8

// The four address-match encodings defined by the privileged architecture. No other values are
// reachable through ConfigByte.Match: the encoding is only two bits wide.
const (
	Off AddressMatch = iota
	TOR
	NA4
	NAPOT
)

func (m AddressMatch) String() string {
	switch m {
	case Off:
		return "OFF"
	case TOR:
		return "TOR"
	case NA4:
		return "NA4"
	case NAPOT:
		return "NAPOT"
	default:
		return fmt.Sprintf("AddressMatch(%#x)", uint8(m))
	}
}

// Bit offsets within a configuration byte, per the RISC-V privileged architecture's pmpcfg layout.
const (
	cfgBitR   = 0
	cfgBitW   = 1
	cfgBitX   = 2
	cfgBitA   = 3 // two bits wide
	cfgBitsA  = 0b11
	cfgBitL  = 7
	cfgResLo = 5 // reserved, write-zero
	cfgResHi = 6
)

// ConfigByte is one entry's raw pmpcfg byte: permission bits, address-match mode and the lock bit.
type ConfigByte uint8

// NewConfigByte assembles a configuration byte from its logical fields. Reserved bits 5-6 are
// always zero.
func NewConfigByte(perms Permissions, match AddressMatch, lock bool) ConfigByte {
	var v uint64

	bits.SetTo64(&v, cfgBitR, perms.Has(Read))
	bits.SetTo64(&v, cfgBitW, perms.Has(Write))
	bits.SetTo64(&v, cfgBitX, perms.Has(Exec))
	bits.SetN64(&v, cfgBitA, cfgBitsA, uint64(match))
	bits.SetTo64(&v, cfgBitL, lock)

	return ConfigByte(v)
}

// Perms returns the requested R/W/X permission bits, independent of lock and match-mode.
func (c ConfigByte) Perms() Permissions {
	v := uint64(c)
	p := None

	if bits.Get64(&v, cfgBitR, 1) == 1 {
		p |= Permissions(Read)
	}

	if bits.Get64(&v, cfgBitW, 1) == 1 {
		p |= Permissions(Write)
	}

	if bits.Get64(&v, cfgBitX, 1) == 1 {
		p |= Permissions(Exec)
	}

	return p
}

// Match returns the entry's address-matching mode.
func (c ConfigByte) Match() AddressMatch {
	v := uint64(c)
	return AddressMatch(bits.Get64(&v, cfgBitA, cfgBitsA))
}

// Locked reports the entry's L bit.
func (c ConfigByte) Locked() bool {
	v := uint64(c)
	return bits.Get64(&v, cfgBitL, 1) == 1
}

// reserved clears bits 5-6, which callers may propose but which never stick.
func (c ConfigByte) reserved() ConfigByte {
	v := uint64(c)
	bits.SetTo64(&v, cfgResLo, false)
	bits.SetTo64(&v, cfgResHi, false)

	return ConfigByte(v)
}

func (c ConfigByte) String() string {
	return fmt.Sprintf("{%s %s L=%v}", c.Match(), c.Perms(), c.Locked())
}

// Mode is a hart's current privilege level. PMP treats supervisor and user mode identically, so
// the oracle only distinguishes Machine from everything else.
type Mode uint8

const (
	ModeUser       Mode = iota // U-mode
	ModeSupervisor             // S-mode; treated as U-mode by PMP
	ModeMachine                // M-mode
)

func (m Mode) String() string {
	switch m {
	case ModeUser:
		return "U"
	case ModeSupervisor:
		return "S"
	case ModeMachine:
		return "M"
	default:
		return fmt.Sprintf("Mode(%#x)", uint8(m))
	}
}

// Machine reports whether the mode is M-mode; every other mode is PMP-equivalent to U-mode.
func (m Mode) Machine() bool {
	return m == ModeMachine
}

// Bit offsets within the mseccfg CSR. Bits above RLB (PMM, mseccfgh's fields) are out of scope for
// this engine and are always read back as zero.
const (
	mseccfgBitMML  = 0
	mseccfgBitMMWP = 1
	mseccfgBitRLB  = 2
)

// Mseccfg holds the three ePMP security-configuration flags.
type Mseccfg struct {
	MML  bool // Machine-Mode Lockdown
	MMWP bool // Machine-Mode Whitelist Policy
	RLB  bool // Rule-Locking Bypass
}

// MseccfgFromBits decodes the flags from a raw CSR value.
func MseccfgFromBits(v uint64) Mseccfg {
	return Mseccfg{
		MML:  bits.Get64(&v, mseccfgBitMML, 1) == 1,
		MMWP: bits.Get64(&v, mseccfgBitMMWP, 1) == 1,
		RLB:  bits.Get64(&v, mseccfgBitRLB, 1) == 1,
	}
}

// Bits encodes the flags back into a raw CSR value.
func (m Mseccfg) Bits() uint64 {
	var v uint64

	bits.SetTo64(&v, mseccfgBitMML, m.MML)
	bits.SetTo64(&v, mseccfgBitMMWP, m.MMWP)
	bits.SetTo64(&v, mseccfgBitRLB, m.RLB)

	return v
}

func (m Mseccfg) String() string {
	return fmt.Sprintf("{MML=%v MMWP=%v RLB=%v}", m.MML, m.MMWP, m.RLB)
}

// Range is an entry's derived, absolute physical address span plus the permissions that apply to
// it. Start and End form a closed-open interval; an OFF entry's range is always empty and never
// matches anything.
type Range struct {
	Start, End uint64
	Perms      Permissions
	Lock       bool
	Match      AddressMatch
}

// Empty reports whether the range can never match an access.
func (r Range) Empty() bool {
	return r.Match == Off || r.Start >= r.End
}

// Contains reports whether the closed-open interval [addr, addr+size) lies entirely within the
// range. A partial overlap is not a match.
func (r Range) Contains(addr, size uint64) bool {
	if r.Empty() || size == 0 {
		return false
	}

	end := addr + size

	return addr >= r.Start && end <= r.End && end > addr
}
