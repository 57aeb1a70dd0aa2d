// Command riscvpmp is a minimal standalone demonstration of the PMP engine: it configures a kernel
// text region, switches to user mode, and shows the engine enforcing the boundary.
package main

import (
	"fmt"

	"riscvpmp/internal/harness"
	"riscvpmp/internal/pmp"
)

func main() {
	hart := harness.NewHart(0x10000)

	hart.PMP.WritePMPAddr(0, 0x1000>>2)
	hart.PMP.WritePMPCfg(0, uint64(pmp.NewConfigByte(pmp.PermsOf(pmp.Read, pmp.Exec), pmp.NA4, true)))

	fmt.Println("machine mode, kernel text region locked read+exec:")
	fmt.Printf("  fetch allowed: %v\n", hart.PMP.HasPrivs(0x1000, 4, pmp.PermsOf(pmp.Exec), hart.Mode))

	hart.Mode = pmp.ModeUser

	fmt.Println("switched to user mode:")

	if _, err := hart.Fetch(0x1000, 4); err != nil {
		fmt.Printf("  fetch denied: %v\n", err)
	} else {
		fmt.Println("  fetch allowed")
	}

	if err := hart.Store(0x1000, []byte{0xde, 0xad, 0xbe, 0xef}); err != nil {
		fmt.Printf("  store denied: %v\n", err)
	}

	fmt.Printf("active rules: %d\n", hart.PMP.ActiveRules())
}
