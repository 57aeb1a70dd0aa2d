package harness

// memory.go implements a minimal physical memory controller that gates every access through a PMP
// engine. It mirrors the teacher's Memory controller (internal/vm/mem.go): the controller holds the
// backing array, and Fetch/Store check access control before touching it. Here, the check is
// delegated entirely to pmp.PMP.HasPrivs rather than a fixed address-space split.

import (
	"errors"
	"fmt"

	"riscvpmp/internal/log"
	"riscvpmp/internal/pmp"
)

// Hart is a single RISC-V hart: physical memory, a current privilege mode, and the PMP engine that
// guards every access to it.
type Hart struct {
	Mode pmp.Mode
	PMP  *pmp.PMP

	mem []byte
	log *log.Logger
}

// NewHart creates a Hart with size bytes of physical memory, starting in M-mode with a freshly
// reset PMP engine.
func NewHart(size int, opts ...pmp.Option) *Hart {
	return &Hart{
		Mode: pmp.ModeMachine,
		PMP:  pmp.New(opts...),
		mem:  make([]byte, size),
		log:  log.DefaultLogger(),
	}
}

var (
	// ErrMemory wraps every error this package returns.
	ErrMemory = errors.New("harness: memory error")

	// ErrAccessControl is wrapped by ErrMemory when the PMP engine denies an access.
	ErrAccessControl = errors.New("access control")

	// ErrOutOfRange is wrapped by ErrMemory when an access falls outside physical memory.
	ErrOutOfRange = errors.New("out of range")
)

// AccessError reports the address and size of a failed access.
type AccessError struct {
	Addr, Size uint64
	Err        error
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("%s: addr=%#x size=%d: %s", ErrMemory, e.Addr, e.Size, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func (e *AccessError) Is(target error) bool {
	return target == ErrMemory
}

// checkAndBound validates an access against the PMP engine and the physical memory bound, without
// performing it.
func (h *Hart) checkAndBound(addr, size uint64, perm pmp.Permission) error {
	if !h.PMP.HasPrivs(addr, size, pmp.PermsOf(perm), h.Mode) {
		h.log.Debug("harness: access denied", "addr", addr, "size", size, "perm", perm, "mode", h.Mode)

		return &AccessError{Addr: addr, Size: size, Err: ErrAccessControl}
	}

	if addr+size > uint64(len(h.mem)) {
		return &AccessError{Addr: addr, Size: size, Err: ErrOutOfRange}
	}

	return nil
}

// Load reads size bytes at addr, after confirming the requesting mode has read access.
func (h *Hart) Load(addr, size uint64) ([]byte, error) {
	if err := h.checkAndBound(addr, size, pmp.Read); err != nil {
		return nil, err
	}

	out := make([]byte, size)
	copy(out, h.mem[addr:addr+size])

	return out, nil
}

// Store writes data at addr, after confirming the requesting mode has write access.
func (h *Hart) Store(addr uint64, data []byte) error {
	size := uint64(len(data))
	if err := h.checkAndBound(addr, size, pmp.Write); err != nil {
		return err
	}

	copy(h.mem[addr:addr+size], data)

	return nil
}

// Fetch confirms the requesting mode has execute access to a size-byte instruction at addr, and
// returns it without otherwise disturbing memory.
func (h *Hart) Fetch(addr, size uint64) ([]byte, error) {
	if err := h.checkAndBound(addr, size, pmp.Exec); err != nil {
		return nil, err
	}

	out := make([]byte, size)
	copy(out, h.mem[addr:addr+size])

	return out, nil
}
