package validator

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wardle/synthds/generator"
	"github.com/wardle/synthds/hl7"
)

const templatePath = "../testdata/DS_TemplateC1.xml"

func defaultOptions(indir string) Options {
	return Options{
		TemplatePath:      templatePath,
		InDir:             indir,
		ExpectedCount:     -1,
		CheckPaths:        true,
		CheckHeadings:     true,
		CheckCounts:       true,
		RequireFileUnique: true,
	}
}

func copyTemplate(t *testing.T, dir, name string) {
	t.Helper()
	data, err := os.ReadFile(templatePath)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		t.Fatalf("write copy: %v", err)
	}
}

func TestTemplateValidatesAgainstItself(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")
	res, err := Validate(defaultOptions(dir))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.OK() || res.Checked != 1 {
		t.Errorf("checked=%d failures=%v", res.Checked, res.Failures)
	}
}

func TestDuplicateFilesDetected(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")
	copyTemplate(t, dir, "ds_002.xml")
	res, err := Validate(defaultOptions(dir))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %v", res.Failures)
	}
	f := res.Failures[0]
	if f.Kind != DuplicateContent || f.File != "ds_002.xml" {
		t.Errorf("failure = %+v, want DuplicateContent on ds_002.xml", f)
	}
}

func TestDuplicateIdentifiersWithoutFileCheck(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")
	copyTemplate(t, dir, "ds_002.xml")
	opts := defaultOptions(dir)
	opts.RequireFileUnique = false
	res, err := Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Kind != UniquenessViolation {
		t.Errorf("expected a single UniquenessViolation, got %v", res.Failures)
	}
}

func TestStructuralMismatchDetected(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")

	data, err := os.ReadFile(templatePath)
	if err != nil {
		t.Fatalf("read template: %v", err)
	}
	doc, err := hl7.Parse(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	// drop the last top-level child, an observation group
	doc.Root.Children = doc.Root.Children[:len(doc.Root.Children)-1]
	if err := os.WriteFile(filepath.Join(dir, "ds_002.xml"), doc.Bytes(), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	res, err := Validate(defaultOptions(dir))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Kind != StructuralMismatch {
		t.Errorf("expected a single StructuralMismatch, got %v", res.Failures)
	}
}

func TestUnparseableFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ds_001.xml"), []byte("<not-xml"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	res, err := Validate(defaultOptions(dir))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Kind != ParseFailure {
		t.Errorf("expected a single ParseFailure, got %v", res.Failures)
	}
}

func TestExpectedCountMismatch(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")
	opts := defaultOptions(dir)
	opts.ExpectedCount = 2
	res, err := Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.OK() {
		t.Error("expected a failure for the file count mismatch")
	}
}

// writeModified writes a copy of the template with the given leaf edits
// applied, each edit a (path expression, new text) pair.
func writeModified(t *testing.T, dir, name string, edits map[string]string) {
	t.Helper()
	doc, err := hl7.ParseFile(templatePath)
	if err != nil {
		t.Fatalf("parse template: %v", err)
	}
	for expr, text := range edits {
		for _, el := range doc.Root.All(expr) {
			hl7.SetText(el, text)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, name), doc.Bytes(), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestEmptyPatientIdentityRejected(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")
	writeModified(t, dir, "ds_002.xml", map[string]string{
		"/hl7:REF_I12/hl7:MSH/hl7:MSH.10":                   "MSG-FRESH-1",
		"/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.2":          "",
		"/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.1/hl7:FN.1": "",
		"/hl7:REF_I12/hl7:PID/hl7:PID.3/hl7:CX.1":           "",
	})
	opts := defaultOptions(dir)
	opts.RequireVisitUnique = true
	res, err := Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %v", res.Failures)
	}
	f := res.Failures[0]
	if f.Kind != UniquenessViolation || f.File != "ds_002.xml" {
		t.Errorf("failure = %+v, want UniquenessViolation on ds_002.xml", f)
	}
}

func TestEmptyVisitNumberRejected(t *testing.T) {
	dir := t.TempDir()
	copyTemplate(t, dir, "ds_001.xml")
	writeModified(t, dir, "ds_002.xml", map[string]string{
		"/hl7:REF_I12/hl7:MSH/hl7:MSH.10":                                    "MSG-FRESH-2",
		"/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.2":                           "ORLA",
		"/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.1/hl7:FN.1":                  "BYRNE",
		"/hl7:REF_I12/hl7:PID/hl7:PID.3/hl7:CX.1":                            "MRN9999999",
		"/hl7:REF_I12/hl7:REF_I12.PATIENT_VISIT/hl7:PV1/hl7:PV1.19/hl7:CX.1": "",
	})
	opts := defaultOptions(dir)
	opts.RequireVisitUnique = true
	res, err := Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 1 || res.Failures[0].Kind != UniquenessViolation {
		t.Fatalf("expected a single UniquenessViolation, got %v", res.Failures)
	}
	// an empty visit number is fine when visit uniqueness is not required
	opts.RequireVisitUnique = false
	res, err = Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.OK() {
		t.Errorf("unexpected failures without visit check: %v", res.Failures)
	}
}

func TestFailedFileStillBurnsIdentifiers(t *testing.T) {
	dir := t.TempDir()
	// first file fails its visit check, but its MSH.10 must stay taken
	writeModified(t, dir, "ds_001.xml", map[string]string{
		"/hl7:REF_I12/hl7:MSH/hl7:MSH.10":                                    "MSG-SHARED",
		"/hl7:REF_I12/hl7:REF_I12.PATIENT_VISIT/hl7:PV1/hl7:PV1.19/hl7:CX.1": "",
	})
	writeModified(t, dir, "ds_002.xml", map[string]string{
		"/hl7:REF_I12/hl7:MSH/hl7:MSH.10":                   "MSG-SHARED",
		"/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.2":          "ORLA",
		"/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.1/hl7:FN.1": "BYRNE",
		"/hl7:REF_I12/hl7:PID/hl7:PID.3/hl7:CX.1":           "MRN9999999",
	})
	opts := defaultOptions(dir)
	opts.RequireVisitUnique = true
	res, err := Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if len(res.Failures) != 2 {
		t.Fatalf("expected both files to fail, got %v", res.Failures)
	}
	second := res.Failures[1]
	if second.File != "ds_002.xml" || second.Kind != UniquenessViolation ||
		!strings.Contains(second.Detail, "MSH.10") {
		t.Errorf("failure = %+v, want MSH.10 uniqueness violation on ds_002.xml", second)
	}
}

func TestGeneratedBatchValidates(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "out")
	err := generator.Generate(generator.Options{
		TemplatePath: templatePath,
		OutDir:       out,
		Count:        3,
		Seed:         42,
		UseSeed:      true,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	opts := defaultOptions(out)
	opts.ExpectedCount = 3
	opts.RequireVisitUnique = true
	res, err := Validate(opts)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.OK() {
		t.Fatalf("generated batch failed validation: %v", res.Failures)
	}
	if res.Checked != 3 {
		t.Errorf("checked %d files, want 3", res.Checked)
	}
}
