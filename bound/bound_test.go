package bound

import (
	"math"
	"testing"
)

func TestParseNorm(t *testing.T) {
	cases := map[string]Norm{"1": L1, "2": L2, "inf": LInf}
	for s, want := range cases {
		got, err := ParseNorm(s)
		if err != nil {
			t.Fatalf("ParseNorm(%q): %v", s, err)
		}
		if got != want {
			t.Errorf("ParseNorm(%q) = %v, want %v", s, got, want)
		}
	}
	if _, err := ParseNorm("0"); err == nil {
		t.Error("expected error for unknown norm")
	}
}

func TestNormP(t *testing.T) {
	if L1.P() != 1 || L2.P() != 2 {
		t.Error("finite norm orders wrong")
	}
	if !math.IsInf(LInf.P(), 1) {
		t.Error("LInf order must be +inf")
	}
}

func TestNormDual(t *testing.T) {
	if L1.Dual() != LInf || LInf.Dual() != L1 || L2.Dual() != L2 {
		t.Error("dual norm mapping wrong")
	}
}

func TestNormString(t *testing.T) {
	if L1.String() != "1" || L2.String() != "2" || LInf.String() != "inf" {
		t.Error("norm string form wrong")
	}
}
