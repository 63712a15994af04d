package scenario

import (
	"math/rand"
	"testing"

	"github.com/wardle/synthds/ips"
)

type usedSet map[string]bool

func (u usedSet) InUse(code string) bool { return u[code] }
func (u usedSet) MarkUsed(code string)   { u[code] = true }

func TestLookup(t *testing.T) {
	for _, code := range []string{"J18.9", "N39.0", "I10", "E11.9", "S72.001A"} {
		s := Lookup(code)
		if s == nil {
			t.Fatalf("no curated scenario for %s", code)
		}
		if s.Code != code {
			t.Errorf("code mismatch: got %s, want %s", s.Code, code)
		}
		if len(s.Presentations) == 0 || len(s.TestsCore) == 0 || len(s.TestsOptional) == 0 {
			t.Errorf("%s: curated scenario has empty content lists", code)
		}
	}
	if Lookup("Z99.9") != nil {
		t.Error("expected nil for unknown code")
	}
	if Lookup(" j18.9 ") == nil {
		t.Error("lookup should tolerate case and whitespace")
	}
}

func TestFromCodeOrText(t *testing.T) {
	tests := []struct {
		code, display, want string
	}{
		{"J18.9", "", "J18.9"},
		{"", "community acquired pneumonia", "J18.9"},
		{"", "Urinary tract infection", "N39.0"},
		{"", "known CYSTITIS", "N39.0"},
		{"", "essential hypertension", "I10"},
		{"", "type 2 diabetes mellitus", "E11.9"},
		{"", "fractured neck of femur", "S72.001A"},
		{"", "hip pain after fall", "S72.001A"},
	}
	for _, test := range tests {
		s := FromCodeOrText(test.code, test.display)
		if s == nil || s.Code != test.want {
			t.Errorf("FromCodeOrText(%q, %q): got %v, want %s", test.code, test.display, s, test.want)
		}
	}
	if s := FromCodeOrText("X00.0", "entirely novel presentation"); s != nil {
		t.Errorf("expected nil for unmatchable diagnosis, got %s", s.Code)
	}
}

func TestPickForced(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	s := Pick(rng, "N39.0", nil, usedSet{})
	if s.Code != "N39.0" {
		t.Errorf("forced code ignored: got %s", s.Code)
	}
	// forced value may also be a keyword
	s = Pick(rng, "pneumonia", nil, usedSet{})
	if s.Code != "J18.9" {
		t.Errorf("forced keyword: got %s", s.Code)
	}
}

func TestPickSeedCondition(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	seed := &ips.Coding{Code: "38341003", Display: "Hypertensive disorder"}
	s := Pick(rng, "", seed, usedSet{})
	if s.Code != "I10" {
		t.Errorf("seed condition: got %s", s.Code)
	}
}

func TestPickRoundRobin(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	used := usedSet{}
	seen := map[string]int{}
	for i := 0; i < len(FallbackPool); i++ {
		s := Pick(rng, "", nil, used)
		seen[s.Code]++
	}
	// every fallback diagnosis is used once before any repeats
	for _, d := range FallbackPool {
		if seen[d.Code] != 1 {
			t.Errorf("diagnosis %s chosen %d times in first cycle", d.Code, seen[d.Code])
		}
	}
	// once exhausted, selection continues with replacement
	s := Pick(rng, "", nil, used)
	if s == nil || len(s.Presentations) == 0 {
		t.Error("post-exhaustion pick returned unusable scenario")
	}
}

func TestScenarioContent(t *testing.T) {
	for _, code := range []string{"J18.9", "N39.0", "I10", "E11.9", "S72.001A"} {
		s := Lookup(code)
		if len(s.Procedures()) == 0 {
			t.Errorf("%s: no curated procedures", code)
		}
		if len(s.EvaluationHeadings()) == 0 {
			t.Errorf("%s: no evaluation headings", code)
		}
		if len(s.Medications()) == 0 {
			t.Errorf("%s: no medications", code)
		}
	}
	// hip fracture procedures stay within the curated hip-fracture set
	for _, p := range Lookup("S72.001A").Procedures() {
		if p.Code != "XR-HIP-PELVIS" && p.Code != "ECG-12LEAD" {
			t.Errorf("unexpected hip-fracture procedure %s", p.Code)
		}
	}
	// a synthesized scenario still yields generic content
	generic := &Scenario{Code: "Z99.9", Display: "Other"}
	if len(generic.Procedures()) == 0 || len(generic.EvaluationHeadings()) == 0 || len(generic.Medications()) == 0 {
		t.Error("generic scenario content empty")
	}
}
