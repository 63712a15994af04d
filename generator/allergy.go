package generator

import (
	"math/rand"
	"strings"
)

// Allergy categories keyed by kind. The NKA entry represents "no known
// allergy" and carries N/A severity and reaction.
var allergyCats = map[string]struct {
	catCode   string
	typeText  string
	allergens []string
}{
	"DRUG":          {"DA", "DRUG", []string{"Penicillin", "Aspirin", "Contrast media"}},
	"FOOD":          {"FA", "FOOD", []string{"Peanuts", "Shellfish"}},
	"ENVIRONMENTAL": {"EA", "ENVIRONMENTAL", []string{"Latex", "Pollen"}},
	"NKA":           {"NA", "N/A", []string{"No known allergy"}},
}

var reactionPool = []string{"Rash", "Urticaria", "Angioedema", "Wheeze", "Anaphylaxis", "Nausea", "Vomiting", "Rhinitis"}
var severityPool = []string{"MILD", "MODERATE", "SEVERE"}

// allergy is one fully resolved AL1 population.
type allergy struct {
	catCode  string
	typeText string
	allergen string
	severity string
	reaction string
}

func (a allergy) noKnownAllergy() bool { return a.catCode == "NA" }

// classifyAllergy maps free allergen text to a category. Unrecognised text
// gets a random concrete category; empty text defaults to drug.
func classifyAllergy(rng *rand.Rand, text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	switch {
	case t == "":
		return "DRUG"
	case strings.Contains(t, "no known"), t == "none", t == "nka":
		return "NKA"
	case containsAny(t, "penicillin", "aspirin", "contrast"):
		return "DRUG"
	case containsAny(t, "peanut", "shellfish", "nut"):
		return "FOOD"
	case containsAny(t, "latex", "pollen", "dust", "mite"):
		return "ENVIRONMENTAL"
	}
	concrete := []string{"DRUG", "FOOD", "ENVIRONMENTAL"}
	return concrete[rng.Intn(len(concrete))]
}

// pickAllergy resolves one allergy slot: seed text is classified when
// present; otherwise a random category with a small chance of "no known
// allergy".
func pickAllergy(rng *rand.Rand, seedText string) allergy {
	var cat, allergen string
	if seedText != "" {
		cat = classifyAllergy(rng, seedText)
		allergen = strings.TrimSpace(seedText)
	} else {
		if rng.Float64() < 0.12 {
			cat = "NKA"
		} else {
			concrete := []string{"DRUG", "FOOD", "ENVIRONMENTAL"}
			cat = concrete[rng.Intn(len(concrete))]
		}
		pool := allergyCats[cat].allergens
		allergen = pool[rng.Intn(len(pool))]
	}
	a := allergy{
		catCode:  allergyCats[cat].catCode,
		typeText: allergyCats[cat].typeText,
		allergen: allergen,
	}
	if cat == "NKA" {
		a.severity, a.reaction = "N/A", "N/A"
		return a
	}
	a.severity = severityPool[rng.Intn(len(severityPool))]
	a.reaction = reactionPool[rng.Intn(len(reactionPool))]
	return a
}

// defaultDrugAllergy is the forced concrete fallback when re-rolling away
// from a second "no known allergy" slot yields NKA again.
func defaultDrugAllergy(rng *rand.Rand) allergy {
	return allergy{
		catCode:  "DA",
		typeText: "DRUG",
		allergen: "Penicillin",
		severity: severityPool[rng.Intn(len(severityPool))],
		reaction: reactionPool[rng.Intn(len(reactionPool))],
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
