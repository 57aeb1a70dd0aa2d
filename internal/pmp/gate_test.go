package pmp

import "testing"

func newTestStore() *store {
	return newStore(16, 64)
}

func TestWritePMPAddrRejectedWhenLocked(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writePMPCfg(0, NewConfigByte(PermsOf(Read), NA4, true))
	s.writePMPAddr(0, 0x1000)

	if s.addr[0] != 0 {
		tt.Errorf("addr[0] = %#x, want 0 (locked entry must reject pmpaddr write)", s.addr[0])
	}
}

func TestWritePMPAddrRejectedForLockedTORUpperNeighbor(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writePMPCfg(1, NewConfigByte(PermsOf(Read), TOR, true))
	s.writePMPAddr(0, 0x1000)

	if s.addr[0] != 0 {
		tt.Errorf("addr[0] = %#x, want 0 (locked TOR upper neighbor must block lower write)", s.addr[0])
	}
}

func TestWritePMPAddrAllowedWithRLB(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writeMseccfg(Mseccfg{RLB: true})
	s.writePMPCfg(0, NewConfigByte(PermsOf(Read), NA4, true))
	s.writePMPAddr(0, 0x1000)

	if s.addr[0] != 0x1000 {
		tt.Errorf("addr[0] = %#x, want 0x1000 (RLB should allow editing a locked entry)", s.addr[0])
	}
}

func TestWritePMPCfgRejectedWhenLocked(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	locked := NewConfigByte(PermsOf(Read), NA4, true)
	s.writePMPCfg(0, locked)
	s.writePMPCfg(0, NewConfigByte(All, NAPOT, true))

	if s.cfg[0] != locked {
		tt.Errorf("cfg[0] = %s, want unchanged %s", s.cfg[0], locked)
	}
}

func TestWritePMPCfgClearsReservedBits(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writePMPCfg(0, ConfigByte(0b0110_0101)) // bits 5-6 set

	raw := uint8(s.cfg[0])
	if raw&(1<<5) != 0 || raw&(1<<6) != 0 {
		tt.Errorf("cfg[0] = %#010b, reserved bits should have been cleared", raw)
	}
}

func TestWritePMPCfgExecutableForbiddenUnderMML(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writeMseccfg(Mseccfg{MML: true})

	forbidden := []ConfigByte{
		NewConfigByte(PermsOf(Exec), NA4, true),              // L=1, X=1
		NewConfigByte(PermsOf(Write, Exec), NA4, false),      // L=0, W=1, X=1
		NewConfigByte(PermsOf(Read, Write, Exec), NA4, true), // L=1, X=1
	}

	for _, f := range forbidden {
		s.writePMPCfg(0, f)

		if s.cfg[0] != 0 {
			tt.Errorf("forbidden write %s was admitted: cfg[0] = %s", f, s.cfg[0])
		}
	}
}

func TestWritePMPCfgExecutableForbiddenLiftedByRLB(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writeMseccfg(Mseccfg{MML: true, RLB: true})

	f := NewConfigByte(PermsOf(Exec), NA4, true)
	s.writePMPCfg(0, f)

	if s.cfg[0] != f {
		tt.Errorf("cfg[0] = %s, want %s (RLB should lift the executable-forbidden filter)", s.cfg[0], f)
	}
}

func TestWriteMseccfgMMLSticky(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writeMseccfg(Mseccfg{MML: true})
	s.writeMseccfg(Mseccfg{})

	if !s.mseccfg.MML {
		tt.Error("MML should remain set after writing 0")
	}
}

func TestWriteMseccfgMMWPSticky(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writeMseccfg(Mseccfg{MMWP: true})
	s.writeMseccfg(Mseccfg{})

	if !s.mseccfg.MMWP {
		tt.Error("MMWP should remain set after writing 0")
	}
}

func TestWriteMseccfgRLBLockedWhileEntryLocked(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writePMPCfg(0, NewConfigByte(PermsOf(Read), NA4, true))
	s.writeMseccfg(Mseccfg{RLB: true})

	if s.mseccfg.RLB {
		tt.Error("RLB should stay 0 while an entry is locked and RLB was 0")
	}
}

func TestWriteMseccfgRLBFreelyToggledWithoutLocks(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writeMseccfg(Mseccfg{RLB: true})

	if !s.mseccfg.RLB {
		tt.Error("RLB should be settable when no entry is locked")
	}

	s.writeMseccfg(Mseccfg{RLB: false})

	if s.mseccfg.RLB {
		tt.Error("RLB should be clearable when no entry is locked")
	}
}

func TestActiveRuleCount(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()

	if s.active != 0 {
		tt.Fatalf("active = %d, want 0 on a fresh store", s.active)
	}

	s.writePMPCfg(0, NewConfigByte(PermsOf(Read), NA4, false))
	s.writePMPCfg(1, NewConfigByte(PermsOf(Read), TOR, false))

	if s.active != 2 {
		tt.Errorf("active = %d, want 2", s.active)
	}

	s.writePMPCfg(0, NewConfigByte(PermsOf(Read), Off, false))

	if s.active != 1 {
		tt.Errorf("active = %d, want 1 after clearing entry 0", s.active)
	}
}

func TestResetClearsStickyAndLockdown(tt *testing.T) {
	tt.Parallel()

	s := newTestStore()
	s.writePMPCfg(0, NewConfigByte(PermsOf(Read), NA4, true))
	s.writeMseccfg(Mseccfg{MML: true, MMWP: true})
	s.reset()

	if s.mseccfg != (Mseccfg{}) {
		tt.Errorf("mseccfg = %+v, want zero after reset", s.mseccfg)
	}

	if s.cfg[0].Locked() {
		tt.Error("entry 0 should be unlocked after reset")
	}

	s.writeMseccfg(Mseccfg{RLB: true})

	if !s.mseccfg.RLB {
		tt.Error("RLB should be freely settable after reset released lockdown")
	}
}
