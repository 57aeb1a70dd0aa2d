package cmd

// rules.go parses the small textual rule/mseccfg syntax shared by the decide, dump and reset
// sub-commands: a rule is "addr[/upper][/match]:perm:lock", e.g. "0x80200000/0x80201000:rw:false"
// (an explicit TOR pair) or "0x80200000/NA4:r:true" (a single NA4 entry; the address field alone
// also defaults to NA4). mseccfg is a comma-separated list of flag=bool pairs, e.g.
// "mml=true,rlb=true".

import (
	"fmt"
	"strconv"
	"strings"

	"riscvpmp/internal/pmp"
)

// rule is one parsed -rule flag: the absolute base address, an optional explicit TOR upper bound,
// the match mode, requested permissions and lock bit.
type rule struct {
	addr, upper uint64
	hasUpper    bool
	match       pmp.AddressMatch
	perms       pmp.Permissions
	lock        bool
}

func parseMatch(s string) (pmp.AddressMatch, error) {
	switch strings.ToUpper(s) {
	case "OFF", "":
		return pmp.Off, nil
	case "TOR":
		return pmp.TOR, nil
	case "NA4":
		return pmp.NA4, nil
	case "NAPOT":
		return pmp.NAPOT, nil
	default:
		return pmp.Off, fmt.Errorf("unknown address-match mode %q", s)
	}
}

func parsePerms(s string) pmp.Permissions {
	var p pmp.Permissions

	for _, c := range strings.ToLower(s) {
		switch c {
		case 'r':
			p |= pmp.Permissions(pmp.Read)
		case 'w':
			p |= pmp.Permissions(pmp.Write)
		case 'x':
			p |= pmp.Permissions(pmp.Exec)
		}
	}

	return p
}

func parseUint(s string) (uint64, error) {
	s = strings.TrimSpace(s)
	return strconv.ParseUint(strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X"), 16, 64)
}

// parseRule parses one "-rule" flag value.
func parseRule(s string) (rule, error) {
	fields := strings.Split(s, ":")
	if len(fields) != 3 {
		return rule{}, fmt.Errorf("rule %q: want addr[/upper][/match]:perm:lock", s)
	}

	addrField, permField, lockField := fields[0], fields[1], fields[2]

	var (
		r   rule
		err error
	)

	addrParts := strings.Split(addrField, "/")

	r.addr, err = parseUint(addrParts[0])
	if err != nil {
		return rule{}, fmt.Errorf("rule %q: bad address: %w", s, err)
	}

	switch len(addrParts) {
	case 1:
		r.match = pmp.NA4
	case 2:
		if m, merr := parseMatch(addrParts[1]); merr == nil {
			r.match = m
		} else if upper, uerr := parseUint(addrParts[1]); uerr == nil {
			r.upper, r.hasUpper, r.match = upper, true, pmp.TOR
		} else {
			return rule{}, fmt.Errorf("rule %q: bad match/upper field: %s / %s", s, merr, uerr)
		}
	case 3:
		upper, uerr := parseUint(addrParts[1])
		if uerr != nil {
			return rule{}, fmt.Errorf("rule %q: bad upper bound: %w", s, uerr)
		}

		match, merr := parseMatch(addrParts[2])
		if merr != nil {
			return rule{}, fmt.Errorf("rule %q: %w", s, merr)
		}

		r.upper, r.hasUpper, r.match = upper, true, match
	default:
		return rule{}, fmt.Errorf("rule %q: too many '/'-separated address fields", s)
	}

	r.perms = parsePerms(permField)

	r.lock, err = strconv.ParseBool(lockField)
	if err != nil {
		return rule{}, fmt.Errorf("rule %q: bad lock field: %w", s, err)
	}

	return r, nil
}

// writeCfgEntry packs cfg into the correct byte of its word and writes that single entry, leaving
// every sibling byte in the same word untouched.
func writeCfgEntry(p *pmp.PMP, bpw, entry int, cfg pmp.ConfigByte) {
	word, off := entry/bpw, entry%bpw
	p.WritePMPCfg(word, uint64(cfg)<<(8*off))
}

// apply installs a parsed rule at entry index i: for TOR with an explicit upper bound it writes both
// the lower-bound address register (i, the explicit base) and the upper-bound address register
// (i+1), configuring the range on i+1 as spec.md §4.1 requires. A TOR rule without an upper bound
// writes its address as entry i's upper bound and configures entry i.
func (r rule) apply(p *pmp.PMP, i, bpw int) {
	switch r.match {
	case pmp.TOR:
		p.WritePMPAddr(i, r.addr>>2)

		if r.hasUpper {
			p.WritePMPAddr(i+1, r.upper>>2)
			writeCfgEntry(p, bpw, i+1, pmp.NewConfigByte(r.perms, pmp.TOR, r.lock))
		} else {
			writeCfgEntry(p, bpw, i, pmp.NewConfigByte(r.perms, pmp.TOR, r.lock))
		}
	default:
		p.WritePMPAddr(i, r.addr>>2)
		writeCfgEntry(p, bpw, i, pmp.NewConfigByte(r.perms, r.match, r.lock))
	}
}

// ruleFlags collects repeated -rule flag values.
type ruleFlags []string

func (r *ruleFlags) String() string {
	return strings.Join(*r, ",")
}

func (r *ruleFlags) Set(s string) error {
	*r = append(*r, s)
	return nil
}

// buildPMP constructs a PMP engine with n entries and installs each parsed rule starting at entry
// index equal to its position in rules (TOR rules with an explicit upper bound consume two
// indices).
func buildPMP(n, xlen int, rules []string, mseccfg string) (*pmp.PMP, error) {
	p := pmp.New(pmp.WithEntries(n), pmp.WithXLEN(xlen))

	bpw := xlen / 8
	idx := 0

	for _, raw := range rules {
		r, err := parseRule(raw)
		if err != nil {
			return nil, err
		}

		r.apply(p, idx, bpw)

		if r.match == pmp.TOR && r.hasUpper {
			idx += 2
		} else {
			idx++
		}
	}

	if mseccfg != "" {
		m, err := parseMseccfg(mseccfg)
		if err != nil {
			return nil, err
		}

		p.WriteMseccfg(m.Bits())
	}

	return p, nil
}

func parseMseccfg(s string) (pmp.Mseccfg, error) {
	var m pmp.Mseccfg

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		kv := strings.SplitN(field, "=", 2)
		if len(kv) != 2 {
			return m, fmt.Errorf("mseccfg field %q: want name=bool", field)
		}

		v, err := strconv.ParseBool(kv[1])
		if err != nil {
			return m, fmt.Errorf("mseccfg field %q: %w", field, err)
		}

		switch strings.ToLower(kv[0]) {
		case "mml":
			m.MML = v
		case "mmwp":
			m.MMWP = v
		case "rlb":
			m.RLB = v
		default:
			return m, fmt.Errorf("mseccfg field %q: unknown flag", field)
		}
	}

	return m, nil
}
