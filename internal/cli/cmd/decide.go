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

// decide loads a rule table from flags and asks the oracle a single question: is this access
// allowed?
type decide struct {
	fs *flag.FlagSet

	entries int
	xlen    int
	rules   ruleFlags
	mseccfg string

	addr, size uint64
	perm       string
	mode       string
}

var _ cli.Command = (*decide)(nil)

func Decide() *decide {
	d := &decide{fs: flag.NewFlagSet("decide", flag.ExitOnError)}

	d.fs.IntVar(&d.entries, "entries", pmp.DefaultEntries, "number of PMP entries")
	d.fs.IntVar(&d.xlen, "xlen", pmp.DefaultXLEN, "register width, 32 or 64")
	d.fs.Var(&d.rules, "rule", "rule addr[/upper][/match]:perm:lock, repeatable")
	d.fs.StringVar(&d.mseccfg, "mseccfg", "", "comma-separated mml=bool,mmwp=bool,rlb=bool")
	d.fs.Uint64Var(&d.addr, "addr", 0, "access address, hex")
	d.fs.Uint64Var(&d.size, "size", 1, "access size in bytes")
	d.fs.StringVar(&d.perm, "perm", "r", "requested permission, any of r, w, x")
	d.fs.StringVar(&d.mode, "mode", "u", "privilege mode, one of m, s, u")

	return d
}

func (decide) Description() string {
	return "decide whether an access is permitted under a rule table"
}

func (d *decide) FlagSet() *cli.FlagSet {
	return d.fs
}

func (d *decide) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `decide [-entries N] [-xlen 32|64] [-rule RULE]... [-mseccfg FLAGS] -addr ADDR -perm PERM -mode MODE

Builds a PMP rule table from zero or more -rule flags, then reports whether the
requested access is allowed.`)

	return err
}

func (d *decide) Run(_ context.Context, _ []string, out io.Writer, logger *log.Logger) int {
	p, err := buildPMP(d.entries, d.xlen, d.rules, d.mseccfg)
	if err != nil {
		logger.Error("decide: building rule table", "err", err)
		return 1
	}

	var mode pmp.Mode

	switch d.mode {
	case "m":
		mode = pmp.ModeMachine
	case "s":
		mode = pmp.ModeSupervisor
	case "u":
		mode = pmp.ModeUser
	default:
		logger.Error("decide: unknown mode", "mode", d.mode)
		return 1
	}

	perms := parsePerms(d.perm)
	allowed := p.HasPrivs(d.addr, d.size, perms, mode)

	verdict := "DENY"
	if allowed {
		verdict = "ALLOW"
	}

	fmt.Fprintf(out, "%s addr=%#018x size=%d perm=%s mode=%s active_rules=%d\n",
		verdict, d.addr, d.size, perms, mode, p.ActiveRules())

	return 0
}
