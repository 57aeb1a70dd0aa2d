// Package harness is a minimal stand-in for the "wider CPU emulator" that the PMP engine in
// package pmp treats as an external collaborator: an instruction decoder, a TLB, a physical memory
// subsystem. None of that lives in the core. This package exists only to give the core's decision
// oracle a caller to exercise, the way the teacher repository's cmd gave its VM a caller.
//
// Hart models a single RISC-V hart: a flat physical memory array, a current privilege mode, and a
// memory controller whose Load/Store/Fetch operations consult the PMP engine before touching
// memory, synthesizing an access-fault error on denial. The design is adapted from the teacher's
// memory controller, which gated every access through a privilege check before reading or writing
// the backing array.
package harness
