package generator

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/wardle/synthds/ips"
	"github.com/wardle/synthds/scenario"
)

// Composer turns a template-defined heading label into narrative text for
// that section. Composition follows a fixed priority: structured seed data
// for matching categories, then a scenario-aware generator for recognised
// section kinds, then a generic fallback. Phrase choices are tracked per
// (scenario, slot) key so a batch does not repeat itself until a pool is
// exhausted.
type Composer struct {
	rng  *rand.Rand
	used map[string]map[string]bool
}

// NewComposer returns a composer for one run.
func NewComposer(rng *rand.Rand) *Composer {
	return &Composer{rng: rng, used: make(map[string]map[string]bool)}
}

// pickUnique chooses an option not already used for key this run; once all
// options have been used, repetition resumes.
func (c *Composer) pickUnique(key string, options []string) string {
	if len(options) == 0 {
		return ""
	}
	bucket := c.used[key]
	if bucket == nil {
		bucket = make(map[string]bool)
		c.used[key] = bucket
	}
	var remaining []string
	for _, o := range options {
		if !bucket[o] {
			remaining = append(remaining, o)
		}
	}
	pool := remaining
	if len(pool) == 0 {
		pool = options
	}
	choice := pool[c.rng.Intn(len(pool))]
	bucket[choice] = true
	return choice
}

// Investigations renders the evaluation/investigations section for a
// scenario: every core test, up to two optional tests sampled without
// replacement, and a closing sentence. It returns the chosen test list and
// the rendered text.
func (c *Composer) Investigations(s *scenario.Scenario) ([]string, string) {
	core := dedupeStrings(s.TestsCore)
	opt := dedupeStrings(s.TestsOptional)

	var chosen []string
	if len(opt) > 0 {
		k := c.rng.Intn(min(2, len(opt)) + 1)
		if k > 0 {
			shuffled := append([]string(nil), opt...)
			c.rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			chosen = shuffled[:k]
		}
	}
	bullets := append(append([]string(nil), core...), chosen...)

	intros := []string{
		"Evaluation / investigations:",
		"Investigations performed:",
		"Assessment and investigations:",
	}
	closings := []string{
		"Results reviewed and documented; plan discussed as appropriate.",
		"Findings were reviewed and documented; follow-up arranged if needed.",
		"No urgent inpatient abnormalities requiring further work-up were documented.",
		"Investigations supported the working diagnosis; management plan documented.",
	}
	lines := []string{intros[c.rng.Intn(len(intros))]}
	for _, b := range bullets {
		lines = append(lines, "- "+b+".")
	}
	lines = append(lines, "- "+closings[c.rng.Intn(len(closings))])
	return bullets, strings.Join(lines, "\n")
}

// SectionText composes the narrative for a section identified by its
// heading label. Matching is by case-insensitive substring.
func (c *Composer) SectionText(label string, seed *ips.Bundle, s *scenario.Scenario) string {
	lab := strings.ToLower(strings.TrimSpace(label))

	if seed != nil {
		if text := seededList(lab, seed); text != "" {
			return text
		}
	}

	switch {
	case strings.Contains(lab, "summary"):
		presentation := c.pickUnique(s.Code+":presentation", s.Presentations)
		if presentation == "" {
			presentation = "an acute presentation"
		}
		return strings.Join([]string{
			c.pickUnique("summary:hdr", []string{
				"Discharge summary:",
				"Discharge summary (brief):",
				"Discharge summary (overview):",
			}),
			fmt.Sprintf("Admitted with %s; treated and improved during admission.", presentation),
			c.pickUnique("summary:closing", []string{
				"Discharged home with follow-up plan and safety-net advice.",
				"Medication list reconciled and discharge instructions provided.",
				"Discharged in stable condition with GP follow-up arranged.",
				"Follow-up plan provided with return precautions discussed.",
			}),
		}, "\n")

	case strings.Contains(lab, "hospital course"):
		return strings.Join([]string{
			c.pickUnique("course:line1", []string{
				"Hospital course: assessed by the admitting team and managed per local protocol.",
				"Hospital course: monitored and treated during admission with clinical improvement.",
				"Hospital course: work-up completed and condition stabilised prior to discharge.",
				"Hospital course: clinical assessment and investigations completed; treatment plan implemented.",
			}),
			fmt.Sprintf("Primary issue addressed: %s.", s.Display),
			c.pickUnique("course:line3", []string{
				"Observations remained stable; afebrile at discharge where applicable.",
				"Tolerating oral intake; mobilising as tolerated prior to discharge.",
				"Pain controlled with appropriate analgesia as required.",
				"Symptoms improved prior to discharge with stable vital signs.",
			}),
			c.pickUnique("course:line4", []string{
				"No complications reported during stay.",
				"No adverse events documented.",
				"Discharged in stable condition.",
				"Clinical status stable; discharge criteria met.",
			}),
		}, "\n")

	case strings.Contains(lab, "evaluation"), strings.Contains(lab, "investig"):
		_, text := c.Investigations(s)
		return text

	case strings.Contains(lab, "risk"):
		return strings.Join([]string{
			"Risk factors:",
			c.pickUnique("risk:smoke", []string{
				"- Smoking: non-smoker.",
				"- Smoking: current smoker; cessation advice given.",
				"- Smoking: ex-smoker.",
			}),
			c.pickUnique("risk:alcohol", []string{
				"- Alcohol: minimal.",
				"- Alcohol: moderate intake.",
				"- Alcohol: none reported.",
			}),
			c.pickUnique("risk:lifestyle", []string{
				"- Activity: encouraged to mobilise as tolerated.",
				"- Diet: advice provided as appropriate.",
				"- Weight: lifestyle advice provided as appropriate.",
			}),
		}, "\n")

	case strings.Contains(lab, "adverse"):
		return c.pickUnique("adverse", []string{
			"Adverse events: none reported.",
			"Adverse events: no documented complications during admission.",
			"Adverse events: mild nausea post-medication; resolved without intervention.",
			"Adverse events: none documented.",
		})

	case strings.Contains(lab, "withheld"):
		return c.pickUnique("withheld:"+s.Code, []string{
			"Medications withheld: none.",
			"Medications withheld: NSAIDs avoided due to renal function; GP to review.",
			"Medications withheld: anticoagulant held temporarily; GP to review.",
		})

	case strings.Contains(lab, "medication"):
		meds := append([]string(nil), s.Medications()...)
		c.rng.Shuffle(len(meds), func(i, j int) { meds[i], meds[j] = meds[j], meds[i] })
		keep := meds
		if len(meds) > 2 {
			keep = meds[:2+c.rng.Intn(min(5, len(meds))-1)]
		}
		lines := []string{"Medications on discharge:"}
		for _, m := range keep {
			lines = append(lines, "- "+m)
		}
		return strings.Join(lines, "\n")

	case strings.Contains(lab, "hospital action"):
		return strings.Join([]string{
			"Hospital actions:",
			c.pickUnique("hospact:1", []string{
				"- Medication reconciliation completed.",
				"- Discharge letter prepared and sent to GP.",
				"- Follow-up clinic arranged if required.",
			}),
			c.pickUnique("hospact:2", []string{
				"- Results reviewed and documented.",
				"- Patient provided with written advice and plan.",
				"- Safety-net advice discussed and documented.",
			}),
		}, "\n")

	case strings.Contains(lab, "gp action"), strings.Contains(lab, "follow"):
		return strings.Join([]string{
			"GP actions / follow-up:",
			fmt.Sprintf("GP review within %s days.", c.pickUnique("gp:window", []string{"3–5", "5–7", "7–10", "10–14"})),
			c.pickUnique("gp:review", []string{
				"Review symptoms and response to treatment.",
				"Review medication tolerance and adherence.",
				"Review outstanding results if applicable.",
			}),
			c.pickUnique("gp:safetynet", []string{
				"Return to ED if worsening symptoms, chest pain, persistent fever, or new concerns.",
				"Safety-net advice provided (seek urgent care if deterioration).",
			}),
		}, "\n")

	case strings.Contains(lab, "clinic info"), strings.Contains(lab, "information given"):
		return strings.Join([]string{
			"Clinic / discharge information:",
			c.pickUnique("info:1", []string{
				"Discharge letter provided to patient.",
				"Discharge summary provided and explained.",
			}),
			c.pickUnique("info:2", []string{
				"Medication plan and follow-up arrangements explained.",
				"Medication plan reviewed; follow-up arranged.",
			}),
			c.pickUnique("info:3", []string{
				"Advice provided on symptoms to monitor and when to seek urgent care.",
				"Patient understands return precautions.",
			}),
		}, "\n")
	}

	return strings.Join([]string{
		"Clinical narrative:",
		c.pickUnique("narr:1", []string{
			"Patient stable at discharge.",
			"Symptoms improved prior to discharge.",
			"No acute concerns at discharge.",
		}),
		c.pickUnique("narr:2", []string{
			"Follow-up arranged with GP.",
			"Safety-net advice provided.",
			"Medication plan reviewed.",
		}),
	}, "\n")
}

// seededList renders a bulleted list from the seed bundle when the section
// label names a category the bundle can populate. Returns "" otherwise.
func seededList(lab string, seed *ips.Bundle) string {
	switch {
	case strings.Contains(lab, "medication") && !strings.Contains(lab, "withheld"):
		return bulleted("Medications on discharge:", seed.Medications)
	case strings.Contains(lab, "allerg"):
		return bulleted("Allergies:", seed.Allergies)
	case strings.Contains(lab, "diagnos"), strings.Contains(lab, "problem"):
		return bulleted("Problem list:", seed.Conditions)
	}
	return ""
}

func bulleted(header string, codings []ips.Coding) string {
	var lines []string
	for i, c := range codings {
		if i == 12 {
			break
		}
		if c.Display != "" {
			lines = append(lines, "- "+c.Display)
		}
	}
	if len(lines) == 0 {
		return ""
	}
	return header + "\n" + strings.Join(lines, "\n")
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
