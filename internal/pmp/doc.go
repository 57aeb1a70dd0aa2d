/*
Package pmp implements the core of a RISC-V Physical Memory Protection (PMP) and Enhanced PMP
(ePMP) permission engine: the rule table, the write-admission state machine, and the
privilege-decision function a hart consults on every memory access.

With the reason for the project being to learn how the ISA's admission rules actually compose, the
package tries to stay close to the privileged architecture manual rather than to any particular
hardware implementation. In particular, it makes no attempt to model timing, and it exports a
single decision oracle rather than a full CPU: the surrounding emulator (instruction decoder, TLB,
physical memory) is somebody else's problem, imported here only as a small demonstration consumer in
package harness.

# Rule Table #

The engine owns N entries (commonly 16 or 64). Each entry has two pieces of raw, mutable state — an
address register and a configuration byte — and one piece of derived state, a Range: the absolute
[start, end) physical span the entry covers, computed from the address register and the
configuration byte's address-matching mode (OFF, TOR, NA4, NAPOT).

Because a TOR entry's lower bound is the previous entry's address register, writing entry i can
change the range of entry i+1 too. The range table is recomputed for both indices on every write,
rather than carrying a pointer from one entry to the previous: entries are addressed by index
everywhere, never by reference.

## Write Gate ##

Every write — to an address register, a configuration byte, or the security-configuration register
mseccfg — is WARL (Write-Any-values, Read-Legal-values): there is no such thing as a rejected write
that the caller can observe directly. Bits the gate won't accept are silently dropped or the whole
write is discarded; the only way to see the effect is to read back the register afterward. This
mirrors real CSR semantics, where illegal writes never trap.

The gate enforces, in order: per-entry locking (an L=1 entry, or the address register an L=1 TOR
entry depends on, rejects writes unless RLB is set), mseccfg's two sticky bits (MML and MMWP latch
to 1 and cannot be cleared before reset), RLB's own lockout (while RLB reads 0 and any entry is
locked, a write cannot set it), and the MML executable-forbidden filter (no configuration byte may
describe a shared writable-and-executable region (L=0,W=1,X=1) or an M-mode-exclusive executable
region (L=1,X=1) while MML is set and RLB is clear).

## Decision Oracle ##

HasPrivs takes a physical address, an access size, a requested permission set, and the requesting
privilege mode. It scans entries in index order, stops at the first whose range fully contains the
access, and evaluates that entry's permission bits. A partial overlap with a matched range's
boundary is treated as no match at all — real hardware would fault there, and this package expects
callers that care to decompose such an access into aligned pieces before asking again.

Two decision regimes exist, selected by mseccfg.MML. With MML clear, an entry's R/W/X bits are the
permissions directly, with a lock bit only restricting M-mode. With MML set, the same four bits
(L,R,W,X) are looked up in a 16-row truth table, each row giving the M-mode and the U/S-mode
permissions, that reinterprets them as a partition of regions into M-mode-only, U-mode-only and
shared classes — see oracle.go.

# Reset #

Reset zeroes every address register, configuration byte, and mseccfg bit and rebuilds an empty range
table. Stickiness and lockdown are properties of the current epoch only; nothing survives a reset.
*/
package pmp
