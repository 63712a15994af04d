// Package scenario selects and represents a coherent clinical theme for a
// generated discharge summary. A scenario bundles a diagnosis code with the
// presentations, investigations, procedures and medications that belong to
// it, so the diagnosis segment, procedure segments and narrative sections of
// one message always refer to the same condition.
package scenario

import (
	"math/rand"
	"strings"

	"github.com/wardle/synthds/ips"
)

// Scenario is one curated (or synthesized) clinical theme. The presentation
// and test lists are never empty.
type Scenario struct {
	Code          string
	Display       string
	System        string
	Presentations []string
	TestsCore     []string
	TestsOptional []string
}

// Diagnosis is a bare coded diagnosis, used for the fallback pool and for
// secondary diagnosis slots.
type Diagnosis struct {
	Code    string
	Display string
	System  string
}

// Procedure is one curated procedure item for a scenario.
type Procedure struct {
	Code        string
	Label       string
	System      string
	Description string
}

// Evaluation is one (heading, result text) pair for an
// evaluation/investigations observation group.
type Evaluation struct {
	Heading string
	Result  string
}

// UsedCodes tracks which fallback diagnosis codes have already been chosen
// this run, giving round-robin coverage across a batch.
type UsedCodes interface {
	InUse(code string) bool
	MarkUsed(code string)
}

// Lookup returns the curated scenario for an exact diagnosis code, or nil.
func Lookup(code string) *Scenario {
	return catalog[strings.ToUpper(strings.TrimSpace(code))]
}

// FromCodeOrText resolves a scenario by exact code, then by fuzzy keyword
// match against the display text. Returns nil when nothing matches.
func FromCodeOrText(code, display string) *Scenario {
	if s := Lookup(code); s != nil {
		return s
	}
	t := strings.ToLower(display)
	switch {
	case strings.Contains(t, "pneumon"):
		return catalog["J18.9"]
	case strings.Contains(t, "urinar"), strings.Contains(t, "uti"),
		strings.Contains(t, "cystitis"), strings.Contains(t, "pyelo"):
		return catalog["N39.0"]
	case strings.Contains(t, "hypertens"), strings.Contains(t, "high blood pressure"):
		return catalog["I10"]
	case strings.Contains(t, "diabet"), strings.Contains(t, "hyperglyc"):
		return catalog["E11.9"]
	case strings.Contains(t, "hip"), strings.Contains(t, "femur"), strings.Contains(t, "fracture"):
		return catalog["S72.001A"]
	}
	return nil
}

// Pick selects the scenario for one record:
//  1. a forced code (or keyword) naming a curated scenario wins;
//  2. else the seed bundle's first condition, if it matches a curated
//     scenario;
//  3. else a uniform choice from the fallback diagnoses not yet used this
//     run, with replacement once all have been used.
//
// A resolved code with no curated definition yields a synthesized minimal
// scenario, so downstream composition never sees empty lists.
func Pick(rng *rand.Rand, forced string, seed *ips.Coding, used UsedCodes) *Scenario {
	if forced != "" {
		if s := FromCodeOrText(forced, forced); s != nil {
			return s
		}
	}
	if seed != nil {
		if s := FromCodeOrText(seed.Code, seed.Display); s != nil {
			return s
		}
	}
	var available []Diagnosis
	for _, d := range FallbackPool {
		if !used.InUse(strings.ToUpper(d.Code)) {
			available = append(available, d)
		}
	}
	if len(available) == 0 {
		available = FallbackPool
	}
	dx := available[rng.Intn(len(available))]
	used.MarkUsed(strings.ToUpper(dx.Code))

	if s := FromCodeOrText(dx.Code, dx.Display); s != nil {
		return s
	}
	system := dx.System
	if system == "" {
		system = "I10"
	}
	return &Scenario{
		Code:          dx.Code,
		Display:       dx.Display,
		System:        system,
		Presentations: []string{"an acute presentation requiring assessment"},
		TestsCore:     []string{"Bloods: FBC, U&E", "Clinical assessment and observations"},
		TestsOptional: []string{"ECG (if indicated)", "Imaging (if indicated)"},
	}
}
