package validator

import (
	"github.com/wardle/synthds/hl7"
)

// Counts holds the repeat counts of every structural element the
// signature tracks. Each count is taken with an anchored query first and
// an unanchored fallback so template variants with different grouping
// still count correctly.
type Counts struct {
	Procedures   int
	Observations int
	OBR          int
	OBX          int
	DG1          int
	AL1          int
	PR1          int
	PID          int
	PV1          int
	MSH          int
	PRD          int
}

// ObservationHeading is the coded heading signature of one observation
// group: the OBR-4 triple and the ordered OBX-3 triples beneath it.
type ObservationHeading struct {
	Group   [3]string
	Results [][3]string
}

// Signature is the structural fingerprint of a document: everything a
// generated instance must share with its template.
type Signature struct {
	TopOrder   []string
	Addresses  map[string]bool
	Headings   []ObservationHeading
	Counts     Counts
	RequirePRD bool
}

// Build computes the structural signature of a parsed document.
func Build(doc *hl7.Document) *Signature {
	root := doc.Root
	sig := &Signature{
		TopOrder:  doc.TopLevelOrder(),
		Addresses: doc.AddressSet(),
	}
	sig.Counts = Counts{
		Procedures:   countAll(root, "/hl7:REF_I12/hl7:REF_I12.PROCEDURE", "//hl7:REF_I12.PROCEDURE"),
		Observations: countAll(root, "/hl7:REF_I12/hl7:REF_I12.OBSERVATION", "//hl7:REF_I12.OBSERVATION"),
		OBR:          countAll(root, "/hl7:REF_I12/hl7:REF_I12.OBSERVATION/hl7:OBR", "//hl7:OBR"),
		OBX:          countAll(root, "/hl7:REF_I12/hl7:REF_I12.OBSERVATION//hl7:OBX", "//hl7:OBX"),
		DG1:          countAll(root, "/hl7:REF_I12/hl7:DG1", "//hl7:DG1"),
		AL1:          countAll(root, "/hl7:REF_I12/hl7:AL1", "//hl7:AL1"),
		PR1:          countAll(root, "/hl7:REF_I12/hl7:REF_I12.PROCEDURE//hl7:PR1", "//hl7:PR1"),
		PID:          countAll(root, "/hl7:REF_I12/hl7:PID", "//hl7:PID"),
		PV1:          countAll(root, "/hl7:REF_I12/hl7:REF_I12.PATIENT_VISIT/hl7:PV1", "//hl7:PV1"),
		MSH:          countAll(root, "/hl7:REF_I12/hl7:MSH", "//hl7:MSH"),
		PRD:          countAll(root, "/hl7:REF_I12/hl7:REF_I12.PROVIDER_CONTACT//hl7:PRD", "//hl7:PRD"),
	}
	sig.RequirePRD = sig.Counts.PRD > 0

	groups := root.All("/hl7:REF_I12/hl7:REF_I12.OBSERVATION")
	if len(groups) == 0 {
		groups = root.All("//hl7:REF_I12.OBSERVATION")
	}
	for _, g := range groups {
		h := ObservationHeading{Group: ceTriple(g.First("./hl7:OBR/hl7:OBR.4"))}
		for _, obx := range g.All(".//hl7:OBX") {
			h.Results = append(h.Results, ceTriple(obx.First("./hl7:OBX.3")))
		}
		sig.Headings = append(sig.Headings, h)
	}
	return sig
}

func countAll(root *hl7.Element, primary, fallback string) int {
	if n := len(root.All(primary)); n > 0 {
		return n
	}
	return len(root.All(fallback))
}

func ceTriple(ce *hl7.Element) [3]string {
	if ce == nil {
		return [3]string{}
	}
	return [3]string{
		hl7.Text(ce.First("./hl7:CE.1")),
		hl7.Text(ce.First("./hl7:CE.2")),
		hl7.Text(ce.First("./hl7:CE.3")),
	}
}
