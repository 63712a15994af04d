// Package ips ingests an optional International Patient Summary (IPS) style
// FHIR JSON bundle used to seed generated discharge summaries with real
// conditions, medications and allergies. The bundle is read once and
// consumed read-only; its absence means fully synthetic content.
package ips

import (
	"fmt"
	"os"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/wardle/synthds/identifiers"
)

// Coding is the first coding of a FHIR codeable concept, with the coding
// system collapsed to an HL7 v2 coding-system code.
type Coding struct {
	Code    string
	Display string
	System  string
}

// Person holds the demographics of the bundle's Patient resource.
type Person struct {
	Given     string
	Family    string
	BirthDate string // YYYYMMDD
	Gender    string // M, F or U
}

// Bundle holds the seed resources grouped by type.
type Bundle struct {
	Patient       *Person
	Allergies     []Coding
	Conditions    []Coding
	Medications   []Coding
	Procedures    []Coding
	Immunizations []Coding
	Observations  []Coding
}

// Load reads and parses the FHIR bundle at path.
func Load(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ips: %w", err)
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("ips: parse %s: %w", path, err)
	}
	return b, nil
}

// Parse parses a FHIR bundle from raw JSON.
func Parse(data []byte) (*Bundle, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("ips: invalid JSON")
	}
	b := &Bundle{}
	gjson.GetBytes(data, "entry").ForEach(func(_, entry gjson.Result) bool {
		res := entry.Get("resource")
		if !res.Exists() {
			return true
		}
		switch res.Get("resourceType").String() {
		case "Patient":
			if b.Patient == nil {
				b.Patient = parsePatient(res)
			}
		case "AllergyIntolerance":
			b.Allergies = append(b.Allergies, FirstCoding(res.Get("code")))
		case "Condition":
			b.Conditions = append(b.Conditions, FirstCoding(res.Get("code")))
		case "MedicationStatement":
			b.Medications = append(b.Medications, FirstCoding(res.Get("medicationCodeableConcept")))
		case "Procedure":
			b.Procedures = append(b.Procedures, FirstCoding(res.Get("code")))
		case "Immunization":
			b.Immunizations = append(b.Immunizations, FirstCoding(res.Get("vaccineCode")))
		case "Observation":
			b.Observations = append(b.Observations, FirstCoding(res.Get("code")))
		}
		return true
	})
	return b, nil
}

// FirstCoding extracts the first coding of a codeable concept, falling back
// to the concept's text when no coding is present.
func FirstCoding(codeable gjson.Result) Coding {
	c0 := codeable.Get("coding.0")
	if !c0.Exists() {
		return Coding{Display: codeable.Get("text").String()}
	}
	display := c0.Get("display").String()
	if display == "" {
		display = codeable.Get("text").String()
	}
	return Coding{
		Code:    c0.Get("code").String(),
		Display: display,
		System:  systemCode(c0.Get("system").String()),
	}
}

// systemCode collapses a coding system URI to an HL7 v2 coding-system
// code: known URIs map exactly, anything else falls back to a substring
// heuristic for the common families.
func systemCode(uri string) string {
	if uri == "" {
		return ""
	}
	if code := identifiers.HL7Table0396(uri); code != identifiers.CodeLocal {
		return code
	}
	u := strings.ToLower(uri)
	switch {
	case strings.Contains(u, "snomed"):
		return identifiers.CodeSNOMEDCT
	case strings.Contains(u, "loinc"):
		return identifiers.CodeLOINC
	case strings.Contains(u, "icd"):
		return identifiers.CodeICD10
	case strings.Contains(u, "rxnorm"):
		return identifiers.CodeRxNorm
	}
	return identifiers.CodeLocal
}

func parsePatient(res gjson.Result) *Person {
	dob := strings.ReplaceAll(res.Get("birthDate").String(), "-", "")
	if dob == "" {
		dob = "19700101"
	}
	return &Person{
		Given:     res.Get("name.0.given.0").String(),
		Family:    res.Get("name.0.family").String(),
		BirthDate: dob,
		Gender:    GenderCode(res.Get("gender").String()),
	}
}

// GenderCode maps a FHIR administrative gender to an HL7 v2 code.
func GenderCode(g string) string {
	switch {
	case strings.HasPrefix(strings.ToLower(g), "m"):
		return "M"
	case strings.HasPrefix(strings.ToLower(g), "f"):
		return "F"
	}
	return "U"
}
