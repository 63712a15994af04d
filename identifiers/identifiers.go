// Package identifiers names the identifier and coding systems that appear
// in generated messages, mapping FHIR coding system URIs to the HL7 v2
// coding system codes (table 0396) used in CE.3 components.
package identifiers

// list of built-in supported systems
const (

	// generic
	URI  = "urn:ietf:rfc:3986" // general URI (uniform resource identifier)
	UUID = "urn:uuid"          // a UUID as per https://tools.ietf.org/html/rfc4122
	OID  = "urn:oid"

	// coding systems
	SNOMEDCT = "http://snomed.info/sct"
	LOINC    = "http://loinc.org"
	ICD10    = "http://hl7.org/fhir/sid/icd-10"
	ICD10CM  = "http://hl7.org/fhir/sid/icd-10-cm"
	RxNorm   = "http://www.nlm.nih.gov/research/umls/rxnorm"

	// patient identifiers
	IHINumber = "https://fhir.hse.ie/Id/individual-health-identifier"
)

// HL7 v2 table 0396 coding system codes.
const (
	CodeSNOMEDCT = "SCT"
	CodeLOINC    = "LN"
	CodeICD10    = "I10"
	CodeRxNorm   = "RXNORM"
	CodeLocal    = "L"
)

var table0396 = map[string]string{
	SNOMEDCT: CodeSNOMEDCT,
	LOINC:    CodeLOINC,
	ICD10:    CodeICD10,
	ICD10CM:  CodeICD10,
	RxNorm:   CodeRxNorm,
}

// HL7Table0396 returns the HL7 v2 coding system code for a FHIR coding
// system URI, or CodeLocal when the system is not recognised.
func HL7Table0396(uri string) string {
	if code, ok := table0396[uri]; ok {
		return code
	}
	return CodeLocal
}
