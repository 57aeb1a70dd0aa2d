package pmp

// oracle.go implements the Decision Oracle: a pure function from (address, size, requested
// permissions, mode) to allow/deny. It never mutates the store and never fails; denial is
// expressed only as a false return, per spec.md §4.4 and §7.

// decide evaluates a memory access against the current rule table and mseccfg policy.
func (s *store) decide(addr, size uint64, req Permissions, mode Mode) bool {
	match, ok := s.firstMatch(addr, size)

	if s.mseccfg.MML {
		return decideMML(match, ok, req, mode, s.mseccfg)
	}

	return decideLegacy(match, ok, req, mode, s.mseccfg)
}

// firstMatch scans entries in index order and returns the first whose range fully contains
// [addr, addr+size). Partial overlaps do not count as a match (spec.md §4.4).
func (s *store) firstMatch(addr, size uint64) (Range, bool) {
	for _, r := range s.ranges {
		if r.Contains(addr, size) {
			return r, true
		}
	}

	return Range{}, false
}

// decideLegacy implements the MML=0 decision rule.
func decideLegacy(r Range, matched bool, req Permissions, mode Mode, cfg Mseccfg) bool {
	if matched {
		if mode.Machine() && !r.Lock {
			return true
		}

		return req.SubsetOf(r.Perms)
	}

	if mode.Machine() {
		return !cfg.MMWP
	}

	return false
}

// mmlRow is one row of the ePMP MML truth table: the (L,R,W,X) bit pattern, and the permissions
// granted in M-mode and in U/S-mode.
type mmlRow struct {
	m, u Permissions
}

// mmlTable is the 16-row truth table from spec.md §4.4, indexed by (L<<3)|(R<<2)|(W<<1)|X. Encoding
// it as a flat lookup, rather than nested conditionals, mirrors the Design Notes' suggestion and
// makes the table trivial to check against the spec row by row.
var mmlTable = [16]mmlRow{
	0b0000: {m: None, u: None},
	0b0001: {m: None, u: PermsOf(Exec)},
	0b0010: {m: PermsOf(Read, Write), u: PermsOf(Read)},
	0b0011: {m: PermsOf(Read, Write), u: PermsOf(Read, Write)},
	0b0100: {m: None, u: PermsOf(Read)},
	0b0101: {m: None, u: PermsOf(Read, Exec)},
	0b0110: {m: None, u: PermsOf(Read, Write)},
	0b0111: {m: None, u: PermsOf(Read, Write, Exec)},
	0b1000: {m: None, u: None},
	0b1001: {m: PermsOf(Exec), u: None},
	0b1010: {m: PermsOf(Read, Exec), u: PermsOf(Exec)},
	0b1011: {m: PermsOf(Read, Exec), u: PermsOf(Read, Exec)},
	0b1100: {m: PermsOf(Read), u: None},
	0b1101: {m: PermsOf(Read, Exec), u: None},
	0b1110: {m: PermsOf(Read, Write), u: None},
	0b1111: {m: PermsOf(Read, Write, Exec), u: None},
}

// mmlIndex packs a configuration byte's L,R,W,X bits into the table's row index.
func mmlIndex(perms Permissions, lock bool) int {
	idx := 0

	if lock {
		idx |= 0b1000
	}

	if perms.Has(Read) {
		idx |= 0b0100
	}

	if perms.Has(Write) {
		idx |= 0b0010
	}

	if perms.Has(Exec) {
		idx |= 0b0001
	}

	return idx
}

// decideMML implements the MML=1 decision rule.
func decideMML(r Range, matched bool, req Permissions, mode Mode, cfg Mseccfg) bool {
	if !matched {
		if mode.Machine() {
			return !cfg.MMWP && req.SubsetOf(PermsOf(Read, Write))
		}

		return false
	}

	row := mmlTable[mmlIndex(r.Perms, r.Lock)]

	if mode.Machine() {
		return req.SubsetOf(row.m)
	}

	return req.SubsetOf(row.u)
}
