package generator

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestGenerateBatch(t *testing.T) {
	dir := t.TempDir()
	train := filepath.Join(dir, "train.jsonl")
	opts := Options{
		TemplatePath: "../testdata/DS_TemplateC1.xml",
		OutDir:       filepath.Join(dir, "out"),
		Count:        3,
		Seed:         42,
		UseSeed:      true,
		TrainOut:     train,
	}
	if err := Generate(opts); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 1; i <= 3; i++ {
		name := filepath.Join(opts.OutDir, fmt.Sprintf("ds_%03d.xml", i))
		if _, err := os.Stat(name); err != nil {
			t.Errorf("missing output file: %v", err)
		}
	}

	f, err := os.Open(train)
	if err != nil {
		t.Fatalf("open train output: %v", err)
	}
	defer f.Close()
	var records []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec Record
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("bad train record: %v", err)
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan train output: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected 3 train records, got %d", len(records))
	}
	seen := make(map[string]bool)
	for _, rec := range records {
		if rec.MessageControlID == "" || rec.VisitID == "" || rec.ScenarioCode == "" {
			t.Errorf("incomplete record: %+v", rec)
		}
		if seen[rec.MessageControlID] {
			t.Errorf("duplicate message control id %q", rec.MessageControlID)
		}
		seen[rec.MessageControlID] = true
	}
}

func TestGenerateMissingTemplate(t *testing.T) {
	err := Generate(Options{TemplatePath: "no-such-file.xml", OutDir: t.TempDir(), Count: 1})
	if err == nil {
		t.Fatal("expected error for missing template")
	}
}
