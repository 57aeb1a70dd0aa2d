package cmd

import (
	"bytes"
	"context"
	"testing"

	"riscvpmp/internal/log"
	"riscvpmp/internal/pmp"
)

func TestParseRuleNA4(tt *testing.T) {
	tt.Parallel()

	r, err := parseRule("0x1000:rw:false")
	if err != nil {
		tt.Fatalf("parseRule: %v", err)
	}

	if r.addr != 0x1000 || r.match != pmp.NA4 || r.lock {
		tt.Errorf("parseRule = %+v, want addr=0x1000 match=NA4 lock=false", r)
	}

	if !r.perms.Has(pmp.Read) || !r.perms.Has(pmp.Write) || r.perms.Has(pmp.Exec) {
		tt.Errorf("perms = %s, want RW", r.perms)
	}
}

func TestParseRuleTORWithUpper(tt *testing.T) {
	tt.Parallel()

	r, err := parseRule("0x1000/0x2000:r:true")
	if err != nil {
		tt.Fatalf("parseRule: %v", err)
	}

	if r.match != pmp.TOR || !r.hasUpper || r.upper != 0x2000 || !r.lock {
		tt.Errorf("parseRule = %+v, want TOR upper=0x2000 lock=true", r)
	}
}

func TestParseRuleRejectsMalformed(tt *testing.T) {
	tt.Parallel()

	if _, err := parseRule("not-enough-fields"); err == nil {
		tt.Error("parseRule() error = nil, want error")
	}
}

func TestBuildPMPAppliesRulesAndMseccfg(tt *testing.T) {
	tt.Parallel()

	p, err := buildPMP(16, 64, []string{"0x1000:rw:false"}, "mml=true,rlb=true")
	if err != nil {
		tt.Fatalf("buildPMP: %v", err)
	}

	if !pmp.MseccfgFromBits(p.ReadMseccfg()).MML {
		tt.Error("MML not set after buildPMP")
	}

	if p.Range(0).Match != pmp.NA4 {
		tt.Errorf("entry 0 match = %s, want NA4", p.Range(0).Match)
	}
}

func TestScenarioCasesAllPass(tt *testing.T) {
	tt.Parallel()

	for _, c := range scenarioCases() {
		if !c.run() {
			tt.Errorf("scenario %s: FAIL", c.name)
		}
	}
}

func TestDecideCommandReportsAllow(tt *testing.T) {
	tt.Parallel()

	d := Decide()
	if err := d.FlagSet().Parse([]string{"-addr=0x1000", "-perm=r", "-mode=m"}); err != nil {
		tt.Fatalf("Parse: %v", err)
	}

	var out bytes.Buffer

	if code := d.Run(context.Background(), nil, &out, log.DefaultLogger()); code != 0 {
		tt.Fatalf("Run() = %d, want 0", code)
	}

	if !bytes.Contains(out.Bytes(), []byte("ALLOW")) {
		tt.Errorf("output = %q, want ALLOW", out.String())
	}
}
