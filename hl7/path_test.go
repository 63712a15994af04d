package hl7

import (
	"strings"
	"testing"
)

const pathDoc = `<REF_I12 xmlns="urn:hl7-org:v2xml">
  <MSH>
    <MSH.10>MSG-1</MSH.10>
  </MSH>
  <REF_I12.PROVIDER_CONTACT>
    <PRD>
      <PRD.7>
        <PI.1>111</PI.1>
      </PRD.7>
    </PRD>
    <PRD>
      <PRD.7>
        <PI.1>222</PI.1>
      </PRD.7>
    </PRD>
  </REF_I12.PROVIDER_CONTACT>
  <REF_I12.OBSERVATION>
    <OBR>
      <OBR.4>
        <CE.2>Summary</CE.2>
      </OBR.4>
    </OBR>
    <REF_I12.RESULTS_NOTES>
      <OBX>
        <OBX.2>FT</OBX.2>
      </OBX>
    </REF_I12.RESULTS_NOTES>
  </REF_I12.OBSERVATION>
</REF_I12>`

func parsePathDoc(t *testing.T) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(pathDoc))
	if err != nil {
		t.Fatal(err)
	}
	return doc
}

func TestPathFirst(t *testing.T) {
	doc := parsePathDoc(t)
	tests := []struct {
		expr string
		want string
	}{
		{"/hl7:REF_I12/hl7:MSH/hl7:MSH.10", "MSG-1"},
		{"/REF_I12/MSH/MSH.10", "MSG-1"}, // prefix optional
		{"//hl7:PI.1", "111"},
		{"/hl7:REF_I12/hl7:REF_I12.PROVIDER_CONTACT//hl7:PI.1", "111"},
	}
	for _, test := range tests {
		el := MustPath(test.expr).First(doc.Root)
		if got := Text(el); got != test.want {
			t.Errorf("%s: got %q, want %q", test.expr, got, test.want)
		}
	}
}

func TestPathRelative(t *testing.T) {
	doc := parsePathDoc(t)
	obs := doc.Root.First("/hl7:REF_I12/hl7:REF_I12.OBSERVATION")
	if obs == nil {
		t.Fatal("observation group not found")
	}
	if got := Text(obs.First("./hl7:OBR/hl7:OBR.4/hl7:CE.2")); got != "Summary" {
		t.Errorf("relative lookup: got %q", got)
	}
	if got := len(obs.All(".//hl7:OBX")); got != 1 {
		t.Errorf("descendant lookup: got %d matches", got)
	}
	// absolute path from a non-root context still resolves from the root
	if got := Text(obs.First("/hl7:REF_I12/hl7:MSH/hl7:MSH.10")); got != "MSG-1" {
		t.Errorf("absolute-from-context lookup: got %q", got)
	}
}

func TestPathAll(t *testing.T) {
	doc := parsePathDoc(t)
	prds := doc.Root.All("/hl7:REF_I12/hl7:REF_I12.PROVIDER_CONTACT//hl7:PRD")
	if len(prds) != 2 {
		t.Fatalf("expected 2 PRD matches, got %d", len(prds))
	}
	// document order
	if got := Text(prds[0].First("./hl7:PRD.7/hl7:PI.1")); got != "111" {
		t.Errorf("first PRD: got %q", got)
	}
	if got := Text(prds[1].First("./hl7:PRD.7/hl7:PI.1")); got != "222" {
		t.Errorf("second PRD: got %q", got)
	}
}

func TestPathMissIsNil(t *testing.T) {
	doc := parsePathDoc(t)
	if el := doc.Root.First("/hl7:REF_I12/hl7:ZZZ/hl7:ZZZ.1"); el != nil {
		t.Errorf("expected nil for unresolved path, got %v", el)
	}
	if els := doc.Root.All("//hl7:ZZZ"); len(els) != 0 {
		t.Errorf("expected no matches, got %d", len(els))
	}
}

func TestParsePathErrors(t *testing.T) {
	for _, expr := range []string{"", ".", "a//", "/a//", "a/:/b"} {
		if _, err := ParsePath(expr); err == nil {
			t.Errorf("expected error for %q", expr)
		}
	}
}
