package pmp

// reset.go is the Reset Controller: the only operation that restores the store to its power-on
// state. It is kept separate from store.go's bookkeeping helpers because, per spec.md §3 and §4.3,
// reset is the one place where stickiness and lockdown are allowed to be undone.

// reset zeroes every address register, configuration byte and mseccfg bit, and rebuilds an empty
// range table. Nothing survives a reset: MML/MMWP's stickiness and RLB's lockdown are properties of
// the current epoch only.
func (s *store) reset() {
	for i := range s.addr {
		s.addr[i] = 0
		s.cfg[i] = 0
		s.ranges[i] = Range{Match: Off}
	}

	s.mseccfg = Mseccfg{}
	s.active = 0
}
