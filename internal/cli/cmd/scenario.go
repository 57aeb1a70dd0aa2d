package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"

	"riscvpmp/internal/cli"
	"riscvpmp/internal/log"
	"riscvpmp/internal/pmp"
)

// scenario replays a small set of built-in, named rule-table configurations and reports whether
// each produces its documented verdict. Each one exercises a single ePMP rule in isolation: lock
// semantics, RLB, sticky MML, MMWP's default deny, or the MML shared-region truth table.
type scenario struct {
	fs   *flag.FlagSet
	name string
}

var _ cli.Command = (*scenario)(nil)

func Scenario() *scenario {
	s := &scenario{fs: flag.NewFlagSet("scenario", flag.ExitOnError)}
	s.fs.StringVar(&s.name, "name", "", "run only the named scenario (default: all)")

	return s
}

func (scenario) Description() string {
	return "run built-in PMP/ePMP scenarios and report pass/fail"
}

func (s *scenario) FlagSet() *cli.FlagSet {
	return s.fs
}

func (s *scenario) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `scenario [-name NAME]

Runs the built-in scenario suite (unmatched-default-allow-m-mode, rlb-lockdown, sticky-mml,
executable-forbidden, mml-shared-region, mmwp-denies-unmatched) and prints PASS or FAIL for each.`)

	return err
}

type scenarioCase struct {
	name string
	run  func() bool
}

func scenarioCases() []scenarioCase {
	return []scenarioCase{
		{"unmatched-default-allow-m-mode", scenarioUnmatchedDefaultAllow},
		{"rlb-lockdown", scenarioRLBLockdown},
		{"sticky-mml", scenarioStickyMML},
		{"executable-forbidden", scenarioExecutableForbidden},
		{"mml-shared-region", scenarioMMLSharedRegion},
		{"mmwp-denies-unmatched", scenarioMMWPDeniesUnmatched},
	}
}

// scenarioUnmatchedDefaultAllow: with no active rules and mseccfg zeroed, M-mode may access any
// address; U-mode may not.
func scenarioUnmatchedDefaultAllow() bool {
	p := pmp.New()

	return p.HasPrivs(0x1000, 4, pmp.All, pmp.ModeMachine) &&
		!p.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Read), pmp.ModeUser)
}

// scenarioRLBLockdown: a locked entry cannot be rewritten while RLB is clear. RLB itself cannot be
// set once any entry is already locked — it must be set beforehand — at which point a locked
// entry remains writable despite its lock bit.
func scenarioRLBLockdown() bool {
	locked := pmp.New()
	locked.WritePMPAddr(0, 0x1000>>2)
	locked.WritePMPCfg(0, uint64(pmp.NewConfigByte(pmp.PermsOf(pmp.Read), pmp.NA4, true)))
	locked.WritePMPAddr(0, 0x2000>>2)
	rejectedWithoutRLB := locked.ReadPMPAddr(0) == 0x1000>>2

	locked.WriteMseccfg(pmp.Mseccfg{RLB: true}.Bits())
	rlbStaysClearOnceLocked := !pmp.MseccfgFromBits(locked.ReadMseccfg()).RLB

	bypass := pmp.New()
	bypass.WriteMseccfg(pmp.Mseccfg{RLB: true}.Bits())
	bypass.WritePMPAddr(0, 0x1000>>2)
	bypass.WritePMPCfg(0, uint64(pmp.NewConfigByte(pmp.PermsOf(pmp.Read), pmp.NA4, true)))
	bypass.WritePMPAddr(0, 0x2000>>2)
	rewrittenWithRLB := bypass.ReadPMPAddr(0) == 0x2000>>2

	return rejectedWithoutRLB && rlbStaysClearOnceLocked && rewrittenWithRLB
}

// scenarioStickyMML: once MML is set it cannot be cleared, even by a write that proposes to clear
// it.
func scenarioStickyMML() bool {
	p := pmp.New()
	p.WriteMseccfg(pmp.Mseccfg{MML: true}.Bits())
	p.WriteMseccfg(pmp.Mseccfg{MML: false}.Bits())

	return pmp.MseccfgFromBits(p.ReadMseccfg()).MML
}

// scenarioExecutableForbidden: under MML, a locked write-and-execute request is rejected outright;
// a W|X request without lock is likewise rejected.
func scenarioExecutableForbidden() bool {
	p := pmp.New()
	p.WriteMseccfg(pmp.Mseccfg{MML: true}.Bits())

	p.WritePMPAddr(0, 0x1000>>2)
	p.WritePMPCfg(0, uint64(pmp.NewConfigByte(pmp.PermsOf(pmp.Write, pmp.Exec), pmp.NA4, true)))
	rejectedLocked := p.Range(0).Match == pmp.Off

	p.WritePMPAddr(1, 0x2000>>2)
	p.WritePMPCfg(1, uint64(pmp.NewConfigByte(pmp.PermsOf(pmp.Write, pmp.Exec), pmp.NA4, false)))
	rejectedUnlocked := p.Range(1).Match == pmp.Off

	return rejectedLocked && rejectedUnlocked
}

// scenarioMMLSharedRegion: under MML, an unlocked entry with only W set (L=0,R=0,W=1,X=0) is a
// shared data region: M-mode gets R/W and U-mode gets read-only.
func scenarioMMLSharedRegion() bool {
	p := pmp.New()
	p.WriteMseccfg(pmp.Mseccfg{MML: true}.Bits())

	p.WritePMPAddr(0, 0x1000>>2)
	p.WritePMPCfg(0, uint64(pmp.NewConfigByte(pmp.PermsOf(pmp.Write), pmp.NA4, false)))

	mOK := p.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Read, pmp.Write), pmp.ModeMachine) &&
		!p.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Exec), pmp.ModeMachine)
	uOK := p.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Read), pmp.ModeUser) &&
		!p.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Write), pmp.ModeUser)

	return mOK && uOK
}

// scenarioMMWPDeniesUnmatched: with MMWP set, an unmatched address is denied even to M-mode.
func scenarioMMWPDeniesUnmatched() bool {
	p := pmp.New()
	p.WriteMseccfg(pmp.Mseccfg{MMWP: true}.Bits())

	return !p.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Read), pmp.ModeMachine)
}

func (s *scenario) Run(_ context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	failures := 0

	for _, c := range scenarioCases() {
		if s.name != "" && c.name != s.name {
			continue
		}

		ok := c.run()
		verdict := "PASS"

		if !ok {
			verdict = "FAIL"
			failures++
		}

		fmt.Fprintf(out, "%-32s %s\n", c.name, verdict)
	}

	if failures > 0 {
		logger.Error("scenario: failures", "count", failures)
		return 1
	}

	return 0
}
