package validator

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/wardle/synthds/hl7"
)

func loadTemplate(t *testing.T) *hl7.Document {
	t.Helper()
	doc, err := hl7.ParseFile("../testdata/DS_TemplateC1.xml")
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	return doc
}

func TestBuildSignature(t *testing.T) {
	sig := Build(loadTemplate(t))
	want := Counts{
		Procedures: 2, Observations: 2, OBR: 2, OBX: 4,
		DG1: 2, AL1: 2, PR1: 2, PID: 1, PV1: 1, MSH: 1, PRD: 1,
	}
	if sig.Counts != want {
		t.Errorf("counts = %+v, want %+v", sig.Counts, want)
	}
	if !sig.RequirePRD {
		t.Error("template has a PRD, RequirePRD should be set")
	}
	if len(sig.TopOrder) == 0 || sig.TopOrder[0] != "MSH" {
		t.Errorf("unexpected top-level order: %v", sig.TopOrder)
	}
	if len(sig.Headings) != 2 {
		t.Fatalf("expected 2 observation heading groups, got %d", len(sig.Headings))
	}
	if sig.Headings[0].Group[1] == "" {
		t.Error("first observation group has no OBR.4 display")
	}
	if len(sig.Addresses) == 0 {
		t.Error("empty address set")
	}
}

func TestSignatureIdempotent(t *testing.T) {
	doc := loadTemplate(t)
	if !reflect.DeepEqual(Build(doc), Build(doc)) {
		t.Error("building the signature twice gave different results")
	}
}

func TestSignatureSurvivesRoundTrip(t *testing.T) {
	doc := loadTemplate(t)
	again, err := hl7.Parse(bytes.NewReader(doc.Bytes()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if !reflect.DeepEqual(Build(doc), Build(again)) {
		t.Error("signature changed across serialize/reparse")
	}
	if doc.CanonicalHash() != again.CanonicalHash() {
		t.Error("canonical hash changed across serialize/reparse")
	}
}

func TestCanonicalHashDetectsLeafChange(t *testing.T) {
	a := loadTemplate(t)
	b := loadTemplate(t)
	msh10 := b.Root.First("/hl7:REF_I12/hl7:MSH/hl7:MSH.10")
	if msh10 == nil {
		t.Fatal("template has no MSH.10")
	}
	hl7.SetText(msh10, "CHANGED")
	if a.CanonicalHash() == b.CanonicalHash() {
		t.Error("hash identical after leaf text change")
	}
}
