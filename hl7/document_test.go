package hl7

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

const miniDoc = `<?xml version="1.0" encoding="UTF-8"?>
<REF_I12 xmlns="urn:hl7-org:v2xml">
  <MSH>
    <MSH.10>ABC-123</MSH.10>
  </MSH>
  <DG1>
    <DG1.1>1</DG1.1>
  </DG1>
  <DG1>
    <DG1.1>2</DG1.1>
  </DG1>
</REF_I12>`

func TestParse(t *testing.T) {
	doc, err := Parse(strings.NewReader(miniDoc))
	if err != nil {
		t.Fatal(err)
	}
	if doc.Root.Name != "REF_I12" {
		t.Errorf("root name: got %s, want REF_I12", doc.Root.Name)
	}
	if doc.Namespace != "urn:hl7-org:v2xml" {
		t.Errorf("namespace: got %s", doc.Namespace)
	}
	top := doc.TopLevelOrder()
	if !reflect.DeepEqual(top, []string{"MSH", "DG1", "DG1"}) {
		t.Errorf("top-level order: got %v", top)
	}
	if got := Text(doc.Root.First("/REF_I12/MSH/MSH.10")); got != "ABC-123" {
		t.Errorf("MSH.10: got %q", got)
	}
}

func TestParseTemplate(t *testing.T) {
	doc, err := ParseFile("../testdata/DS_TemplateC1.xml")
	if err != nil {
		t.Fatal(err)
	}
	if n := len(doc.Root.All("//hl7:OBX")); n != 4 {
		t.Errorf("expected 4 OBX elements, got %d", n)
	}
	if n := len(doc.Root.All("/hl7:REF_I12/hl7:DG1")); n != 2 {
		t.Errorf("expected 2 DG1 segments, got %d", n)
	}
}

func TestAddresses(t *testing.T) {
	doc, err := Parse(strings.NewReader(miniDoc))
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]string{
		"/REF_I12[1]":                  "REF_I12",
		"/REF_I12[1]/MSH[1]":           "MSH",
		"/REF_I12[1]/MSH[1]/MSH.10[1]": "MSH.10",
		"/REF_I12[1]/DG1[1]/DG1.1[1]":  "DG1.1",
		"/REF_I12[1]/DG1[2]/DG1.1[1]":  "DG1.1",
	}
	set := doc.AddressSet()
	if len(set) != len(tests) {
		t.Errorf("address set size: got %d, want %d", len(set), len(tests))
	}
	for addr := range tests {
		if !set[addr] {
			t.Errorf("missing address %s", addr)
		}
	}
	// second DG1.1 disambiguated by the parent ordinal
	second := doc.Root.All("/REF_I12/DG1")[1].First("./DG1.1")
	if got := second.Address(); got != "/REF_I12[1]/DG1[2]/DG1.1[1]" {
		t.Errorf("address: got %s", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	doc, err := Parse(strings.NewReader(miniDoc))
	if err != nil {
		t.Fatal(err)
	}
	clone := doc.Clone()
	SetText(clone.Root.First("/REF_I12/MSH/MSH.10"), "XYZ-999")
	if got := Text(doc.Root.First("/REF_I12/MSH/MSH.10")); got != "ABC-123" {
		t.Errorf("source document mutated through clone: %q", got)
	}
	if !reflect.DeepEqual(clone.AddressSet(), doc.AddressSet()) {
		t.Error("clone address set differs from source")
	}
}

func TestRoundTrip(t *testing.T) {
	doc, err := ParseFile("../testdata/DS_TemplateC1.xml")
	if err != nil {
		t.Fatal(err)
	}
	out := doc.Bytes()
	if !bytes.HasPrefix(out, []byte(`<?xml version="1.0" encoding="UTF-8"?>`)) {
		t.Error("serialized document missing XML declaration")
	}
	doc2, err := Parse(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(doc2.AddressSet(), doc.AddressSet()) {
		t.Error("address set changed across serialize/reparse")
	}
	if !reflect.DeepEqual(doc2.TopLevelOrder(), doc.TopLevelOrder()) {
		t.Error("top-level order changed across serialize/reparse")
	}
	if doc2.CanonicalHash() != doc.CanonicalHash() {
		t.Error("canonical hash changed across serialize/reparse")
	}
}

func TestCanonicalHash(t *testing.T) {
	doc, err := Parse(strings.NewReader(miniDoc))
	if err != nil {
		t.Fatal(err)
	}
	if doc.CanonicalHash() != doc.CanonicalHash() {
		t.Error("canonical hash not idempotent")
	}
	// formatting differences are insignificant
	squashed := `<REF_I12 xmlns="urn:hl7-org:v2xml"><MSH><MSH.10>ABC-123</MSH.10></MSH><DG1><DG1.1>1</DG1.1></DG1><DG1><DG1.1>2</DG1.1></DG1></REF_I12>`
	doc2, err := Parse(strings.NewReader(squashed))
	if err != nil {
		t.Fatal(err)
	}
	if doc.CanonicalHash() != doc2.CanonicalHash() {
		t.Error("canonical hash sensitive to insignificant formatting")
	}
	// content differences are significant
	doc3 := doc.Clone()
	SetText(doc3.Root.First("/REF_I12/MSH/MSH.10"), "OTHER")
	if doc.CanonicalHash() == doc3.CanonicalHash() {
		t.Error("canonical hash identical despite differing content")
	}
}
