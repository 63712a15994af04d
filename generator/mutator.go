package generator

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wardle/synthds/hl7"
	"github.com/wardle/synthds/ips"
	"github.com/wardle/synthds/scenario"
)

// Run holds everything shared across the records of one generation run:
// the parsed template, the seeded RNG, the uniqueness registry, the
// narrative composer and the optional seed bundle. All run-scoped state is
// carried here explicitly; repeated runs never cross-contaminate.
type Run struct {
	Template       *hl7.Document
	RNG            *rand.Rand
	Registry       *Registry
	Composer       *Composer
	Seed           *ips.Bundle
	ForcedScenario string
	Now            func() time.Time // defaults to time.Now
}

// NewRun prepares a generation run over template with the given RNG seed.
func NewRun(template *hl7.Document, seed int64, bundle *ips.Bundle, forced string) *Run {
	rng := rand.New(rand.NewSource(seed))
	return &Run{
		Template:       template,
		RNG:            rng,
		Registry:       NewRegistry(),
		Composer:       NewComposer(rng),
		Seed:           bundle,
		ForcedScenario: forced,
	}
}

// Record is the line-oriented side-channel output for one generated
// instance, consumed by downstream training/audit tooling.
type Record struct {
	MessageControlID        string   `json:"message_control_id"`
	VisitID                 string   `json:"visit_id"`
	ScenarioCode            string   `json:"scenario_code"`
	ScenarioDisplay         string   `json:"scenario_display"`
	CanonicalTests          []string `json:"canonical_tests"`
	InvestigationsNarrative string   `json:"investigations_narrative"`
}

// mutation is the per-record state of one instance being populated.
type mutation struct {
	run  *Run
	root *hl7.Element

	scenario         *scenario.Scenario
	now              time.Time
	admit, discharge time.Time

	msgID      string
	visitID    string
	baseFiller string

	sendingHospital string
	careHospital    string

	gpGiven, gpFamily, gpID, receiving string

	canonTests   []string
	canonInvText string
}

// NewInstance deep-copies the template and populates its leaf values,
// returning the mutated document and its side-channel record. Structure is
// never altered: only the text of existing elements is overwritten. The
// error is non-nil only for registry exhaustion, which is fatal to the run.
func (run *Run) NewInstance() (*hl7.Document, *Record, error) {
	doc := run.Template.Clone()
	rng := run.RNG

	m := &mutation{run: run, root: doc.Root}
	if run.Now != nil {
		m.now = run.Now()
	} else {
		m.now = time.Now().UTC()
	}

	var err error
	if m.msgID, err = run.Registry.GenerateUnique(CatMessageID, func() string {
		return uuid.New().String()
	}); err != nil {
		return nil, nil, err
	}
	if m.visitID, err = run.Registry.GenerateUnique(CatVisitID, func() string {
		return strconv.Itoa(100000000 + rng.Intn(900000000))
	}); err != nil {
		return nil, nil, err
	}
	if m.baseFiller, err = run.Registry.GenerateUnique(CatFillerID, func() string {
		return strconv.FormatInt(1000000000+rng.Int63n(9000000000), 10)
	}); err != nil {
		return nil, nil, err
	}

	var seedCond *ips.Coding
	if run.Seed != nil && len(run.Seed.Conditions) > 0 {
		seedCond = &run.Seed.Conditions[0]
	}
	m.scenario = scenario.Pick(rng, run.ForcedScenario, seedCond, usedScenarioCodes{run.Registry})
	m.canonTests, m.canonInvText = run.Composer.Investigations(m.scenario)

	m.sendingHospital = randomHospital(rng)
	m.careHospital = randomHospital(rng)

	m.gpGiven = anyFirstName(rng)
	m.gpFamily = randomFamilyName(rng)
	m.gpID = strconv.Itoa(100000 + rng.Intn(900000))
	m.receiving = strings.ToUpper(m.gpFamily) + ", " + m.gpGiven

	// admission 2-60 days ago, stay 12h-10d, discharged at least a day ago
	m.admit = m.now.Add(-60 * 24 * time.Hour).Add(time.Duration(rng.Int63n(int64(58 * 24 * time.Hour))))
	m.discharge = m.admit.Add(time.Duration(12+rng.Intn(229)) * time.Hour)
	if latest := m.now.Add(-24 * time.Hour); m.discharge.After(latest) {
		m.discharge = latest
	}

	m.mutateHeader()
	m.mutateProviderContacts()
	if err := m.mutatePatient(); err != nil {
		return nil, nil, err
	}
	m.mutateVisit()
	m.mutateDiagnoses()
	m.mutateAllergies()
	m.mutateProcedures()
	m.mutateObservations()

	rec := &Record{
		MessageControlID:        m.msgID,
		VisitID:                 m.visitID,
		ScenarioCode:            m.scenario.Code,
		ScenarioDisplay:         m.scenario.Display,
		CanonicalTests:          m.canonTests,
		InvestigationsNarrative: m.canonInvText,
	}
	return doc, rec, nil
}

func (m *mutation) mutateHeader() {
	root := m.root
	hl7.SetText(root.First("/hl7:REF_I12/hl7:MSH/hl7:MSH.7/hl7:TS.1"), hl7TS(m.now))
	hl7.SetText(root.First("/hl7:REF_I12/hl7:MSH/hl7:MSH.10"), m.msgID)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:MSH/hl7:MSH.4/hl7:HD.1"), m.sendingHospital)
	if msh6 := root.First("/hl7:REF_I12/hl7:MSH/hl7:MSH.6"); msh6 != nil {
		hl7.SetText(msh6.First("./hl7:HD.1"), m.receiving)
		hl7.SetText(msh6.First("./hl7:HD.2"), m.gpID+".1234")
	}
}

func (m *mutation) mutateProviderContacts() {
	rng := m.run.RNG
	prds := m.root.All("/hl7:REF_I12/hl7:REF_I12.PROVIDER_CONTACT//hl7:PRD")
	if len(prds) == 0 {
		prds = m.root.All("/hl7:REF_I12//hl7:PRD")
	}
	for _, prd := range prds {
		hl7.SetText(prd.First("./hl7:PRD.2/hl7:XPN.1/hl7:FN.1"), strings.ToUpper(m.gpFamily))
		hl7.SetText(prd.First("./hl7:PRD.2/hl7:XPN.2"), m.gpGiven)
		hl7.SetText(prd.First("./hl7:PRD.7/hl7:PI.1"), m.gpID)
		hl7.SetText(prd.First("./hl7:PRD.7/hl7:PI.3"), m.receiving)

		line1, town, county, eir := randomAddress(rng)
		hl7.SetText(prd.First("./hl7:PRD.3/hl7:XAD.1/hl7:SAD.1"), line1)
		hl7.SetText(prd.First("./hl7:PRD.3/hl7:XAD.2"), town)
		hl7.SetText(prd.First("./hl7:PRD.3/hl7:XAD.3"), county)
		hl7.SetText(prd.First("./hl7:PRD.3/hl7:XAD.5"), eir)
		hl7.SetText(prd.First("./hl7:PRD.5/hl7:XTN.1"), randomPhone(rng))
	}
}

func (m *mutation) mutatePatient() error {
	rng := m.run.RNG
	root := m.root

	var sex, given, family, dob string
	if m.run.Seed != nil && m.run.Seed.Patient != nil {
		p := m.run.Seed.Patient
		given, family, dob, sex = p.Given, p.Family, p.BirthDate, p.Gender
	} else {
		sex = []string{"M", "F"}[rng.Intn(2)]
		given = randomGivenName(rng, sex)
		family = randomFamilyName(rng)
		dob = randomDOB(rng, m.now)
	}

	// the composite patient key (name + MRN) must be unique across the
	// run; collisions re-roll both the name and the record number
	var mrn string
	first := true
	if _, err := m.run.Registry.GenerateUnique(CatPatientKey, func() string {
		if !first || given == "" || family == "" {
			sex = []string{"M", "F"}[rng.Intn(2)]
			given = randomGivenName(rng, sex)
			family = randomFamilyName(rng)
		}
		first = false
		mrn = fmt.Sprintf("MRN%d", 1000000+rng.Intn(9000000))
		return strings.ToUpper(given + " " + family + "|" + mrn)
	}); err != nil {
		return err
	}

	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.1/hl7:FN.1"), strings.ToUpper(family))
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.2"), strings.ToUpper(given))
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.7/hl7:TS.1"), dob)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.8"), sex)

	pid3s := root.All("/hl7:REF_I12/hl7:PID/hl7:PID.3")
	if len(pid3s) == 0 {
		pid3s = root.All("//hl7:PID.3")
	}
	for _, pid3 := range pid3s {
		if hl7.Text(pid3.First("./hl7:CX.5")) == "IHINumber" {
			ihi := 100000000000000000 + rng.Int63n(900000000000000000)
			hl7.SetText(pid3.First("./hl7:CX.1"), strconv.FormatInt(ihi, 10))
		} else {
			hl7.SetText(pid3.First("./hl7:CX.1"), mrn)
			hl7.SetText(pid3.First("./hl7:CX.4/hl7:HD.1"), m.careHospital)
		}
	}

	line1, town, county, eir := randomAddress(rng)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.11/hl7:XAD.1/hl7:SAD.1"), line1)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.11/hl7:XAD.2"), town)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.11/hl7:XAD.3"), county)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.11/hl7:XAD.5"), eir)
	hl7.SetText(root.First("/hl7:REF_I12/hl7:PID/hl7:PID.13/hl7:XTN.1"), randomPhone(rng))
	return nil
}

func (m *mutation) mutateVisit() {
	rng := m.run.RNG
	pv1 := m.root.First("/hl7:REF_I12/hl7:REF_I12.PATIENT_VISIT/hl7:PV1")
	if pv1 == nil {
		pv1 = m.root.First("/hl7:REF_I12//hl7:PV1")
	}
	if pv1 == nil {
		return
	}
	hl7.SetText(pv1.First("./hl7:PV1.19/hl7:CX.1"), m.visitID)
	hl7.SetText(pv1.First("./hl7:PV1.44/hl7:TS.1"), hl7TS(m.admit))
	hl7.SetText(pv1.First("./hl7:PV1.45/hl7:TS.1"), hl7TS(m.discharge))
	hl7.SetText(pv1.First("./hl7:PV1.36"), []string{"01", "02", "03", "04"}[rng.Intn(4)])
	hl7.SetText(pv1.First("./hl7:PV1.3/hl7:PL.9"), m.careHospital)

	// some template variants nest the discharge location in DLD.1
	if dld1 := pv1.First("./hl7:PV1.37/hl7:DLD.1"); dld1 != nil {
		hl7.SetText(dld1, strconv.Itoa(100000+rng.Intn(900000)))
	} else {
		hl7.SetText(pv1.First("./hl7:PV1.37"), strconv.Itoa(100000+rng.Intn(900000)))
	}

	docTitle := clinicianTitles[rng.Intn(len(clinicianTitles))]
	docGiven := strings.ToUpper(anyFirstName(rng))
	docFamily := strings.ToUpper(randomFamilyName(rng))

	if f7 := pv1.First("./hl7:PV1.7"); f7 != nil {
		hl7.SetText(f7.First("./hl7:XCN.1"), strings.ToUpper(m.careHospital)+" 1")
		hl7.SetText(f7.First("./hl7:XCN.2/hl7:FN.1"), docFamily)
		hl7.SetText(f7.First("./hl7:XCN.3"), docGiven)
		hl7.SetText(f7.First("./hl7:XCN.6"), docTitle)
	}
	if f8 := pv1.First("./hl7:PV1.8"); f8 != nil {
		hl7.SetText(f8.First("./hl7:XCN.1"), " ")
		hl7.SetText(f8.First("./hl7:XCN.2/hl7:FN.1"), docFamily)
		hl7.SetText(f8.First("./hl7:XCN.3"), docGiven)
		hl7.SetText(f8.First("./hl7:XCN.6"), docTitle)
	}
	if f9 := pv1.First("./hl7:PV1.9"); f9 != nil {
		shortCode := docFamily
		if len(shortCode) > 4 {
			shortCode = shortCode[:4]
		}
		hl7.SetText(f9.First("./hl7:XCN.1"), shortCode)
		hl7.SetText(f9.First("./hl7:XCN.2/hl7:FN.1"), docFamily+" "+docGiven)
		hl7.SetText(f9.First("./hl7:XCN.3"), "")
		hl7.SetText(f9.First("./hl7:XCN.6"), "")
	}
}

func (m *mutation) mutateDiagnoses() {
	rng := m.run.RNG
	dg1s := m.root.All("/hl7:REF_I12/hl7:DG1")
	if len(dg1s) == 0 {
		dg1s = m.root.All("//hl7:DG1")
	}
	var conds []ips.Coding
	if m.run.Seed != nil {
		conds = m.run.Seed.Conditions
	}
	for idx, dg := range dg1s {
		i := idx + 1
		hl7.SetText(dg.First("./hl7:DG1.16/hl7:XCN.2/hl7:FN.1"), "")
		hl7.SetText(dg.First("./hl7:DG1.16/hl7:XCN.3"), "")
		hl7.SetText(dg.First("./hl7:DG1.16/hl7:XCN.6"), "")

		var code, disp, sysc string
		switch {
		case i == 1:
			code, disp, sysc = m.scenario.Code, m.scenario.Display, m.scenario.System
		case len(conds) > 0 && i <= len(conds):
			c := conds[i-1]
			code, disp, sysc = c.Code, c.Display, c.System
			if sysc == "" {
				sysc = "SCT"
			}
			if code == "" {
				code = fmt.Sprintf("DX%d", 1000+rng.Intn(9000))
			}
			if disp == "" {
				disp = "Condition"
			}
		default:
			d := scenario.FallbackPool[rng.Intn(len(scenario.FallbackPool))]
			code, disp, sysc = d.Code, d.Display, d.System
		}

		hl7.SetText(dg.First("./hl7:DG1.1"), strconv.Itoa(i))
		hl7.SetText(dg.First("./hl7:DG1.3/hl7:CE.1"), code)
		hl7.SetText(dg.First("./hl7:DG1.3/hl7:CE.2"), disp)
		hl7.SetText(dg.First("./hl7:DG1.3/hl7:CE.3"), sysc)
		hl7.SetText(dg.First("./hl7:DG1.4"), disp)
	}
}

func (m *mutation) mutateAllergies() {
	rng := m.run.RNG
	al1s := m.root.All("/hl7:REF_I12/hl7:AL1")
	if len(al1s) == 0 {
		al1s = m.root.All("//hl7:AL1")
	}
	var seedAllergies []ips.Coding
	if m.run.Seed != nil {
		seedAllergies = m.run.Seed.Allergies
	}
	multi := len(al1s) > 1
	nkaSeen := false

	for idx, al := range al1s {
		i := idx + 1
		seedText := ""
		if i <= len(seedAllergies) {
			seedText = seedAllergies[i-1].Display
		}
		a := pickAllergy(rng, seedText)
		if a.noKnownAllergy() && multi {
			if nkaSeen {
				// only a single "no known allergy" slot is coherent
				a = pickAllergy(rng, "")
				if a.noKnownAllergy() {
					a = defaultDrugAllergy(rng)
				}
			} else {
				nkaSeen = true
			}
		}

		hl7.SetText(al.First("./hl7:AL1.1"), strconv.Itoa(i))
		hl7.SetText(al.First("./hl7:AL1.1/hl7:CE.1"), strconv.Itoa(i))
		hl7.SetText(al.First("./hl7:AL1.2/hl7:CE.1"), a.catCode)
		hl7.SetText(al.First("./hl7:AL1.2/hl7:CE.2"), a.typeText)
		hl7.SetText(al.First("./hl7:AL1.3/hl7:CE.2"), a.allergen)
		hl7.SetText(al.First("./hl7:AL1.4/hl7:CE.2"), a.severity)

		// AL1.5 is a bare leaf in some template variants
		if ce2 := al.First("./hl7:AL1.5/hl7:CE.2"); ce2 != nil {
			hl7.SetText(ce2, a.reaction)
		} else {
			hl7.SetText(al.First("./hl7:AL1.5"), a.reaction)
		}
	}
}

func (m *mutation) mutateProcedures() {
	groups := m.root.All("/hl7:REF_I12/hl7:REF_I12.PROCEDURE")
	if len(groups) == 0 {
		groups = m.root.All("//hl7:REF_I12.PROCEDURE")
	}
	items := m.scenario.Procedures()
	for idx, g := range groups {
		pr1 := g.First(".//hl7:PR1")
		if pr1 == nil {
			continue
		}
		item := items[idx%len(items)]
		hl7.SetText(pr1.First("./hl7:PR1.3/hl7:CE.1"), item.Code)
		hl7.SetText(pr1.First("./hl7:PR1.3/hl7:CE.2"), item.Label)
		hl7.SetText(pr1.First("./hl7:PR1.3/hl7:CE.3"), item.System)
		hl7.SetText(pr1.First("./hl7:PR1.4"), item.Description)
	}
}

func (m *mutation) mutateObservations() {
	groups := m.root.All("/hl7:REF_I12/hl7:REF_I12.OBSERVATION")
	if len(groups) == 0 {
		groups = m.root.All("//hl7:REF_I12.OBSERVATION")
	}
	for idx, g := range groups {
		hl7.SetText(g.First("./hl7:OBR/hl7:OBR.3/hl7:EI.1"), fmt.Sprintf("%s%02d", m.baseFiller, idx+1))
		hl7.SetText(g.First("./hl7:OBR/hl7:OBR.7/hl7:TS.1"), hl7TS(m.discharge))
		hl7.SetText(g.First("./hl7:OBR/hl7:OBR.22/hl7:TS.1"), hl7TS(m.discharge))

		label := hl7.Text(g.First("./hl7:OBR/hl7:OBR.4/hl7:CE.2"))
		obxs := g.All(".//hl7:OBX")

		if isEvaluationLabel(label) {
			pairs := m.scenario.EvaluationHeadings()
			j := 0
			for _, obx := range obxs {
				if !isTextOBX(obx) {
					continue
				}
				obx5 := obx.First("./hl7:OBX.5")
				if obx5 == nil {
					continue
				}
				p := pairs[j%len(pairs)]
				j++
				hl7.SetText(obx.First("./hl7:OBX.3/hl7:CE.2"), p.Heading)
				hl7.SetText(obx5, p.Result)
			}
			continue
		}

		for _, obx := range obxs {
			if !isTextOBX(obx) {
				continue
			}
			obx5 := obx.First("./hl7:OBX.5")
			if obx5 == nil {
				continue
			}
			lbl := hl7.Text(obx.First("./hl7:OBX.3/hl7:CE.2"))
			if lbl == "" {
				lbl = label
			}
			if lbl == "" {
				lbl = "Narrative"
			}
			hl7.SetText(obx5, m.run.Composer.SectionText(lbl, m.run.Seed, m.scenario))
		}
	}
}

// isEvaluationLabel classifies an observation group's heading. Rules are
// evaluated in a fixed priority order; the first matching rule wins.
func isEvaluationLabel(label string) bool {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "evaluat") && strings.Contains(l, "procedure"):
		return true
	case strings.Contains(l, "evaluat") && strings.Contains(l, "investig"):
		return true
	case strings.Contains(l, "investig"):
		return true
	}
	return false
}

// isTextOBX reports whether the OBX carries a free-text value (FT, TX or
// ST); coded and numeric results are left untouched.
func isTextOBX(obx *hl7.Element) bool {
	switch strings.ToUpper(hl7.Text(obx.First("./hl7:OBX.2"))) {
	case "FT", "TX", "ST":
		return true
	}
	return false
}

func anyFirstName(rng *rand.Rand) string {
	if rng.Intn(2) == 0 {
		return maleFirstNames[rng.Intn(len(maleFirstNames))]
	}
	return femaleFirstNames[rng.Intn(len(femaleFirstNames))]
}

func hl7TS(t time.Time) string {
	return t.UTC().Format("20060102150405")
}

func hl7Date(t time.Time) string {
	return t.UTC().Format("20060102")
}

func upper(s string) string { return strings.ToUpper(s) }
