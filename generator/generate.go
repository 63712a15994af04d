// Package generator produces synthetic HL7 v2 XML discharge summaries by
// deep-copying a curated template and rewriting only the text of its
// existing elements, so every generated file keeps the template's exact
// structure. Identifier uniqueness is enforced across the run, clinical
// content is drawn from a curated scenario catalog or an optional FHIR IPS
// seed bundle, and an optional JSONL side-channel records the canonical
// content of each instance for downstream tooling.
package generator

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/wardle/synthds/hl7"
	"github.com/wardle/synthds/ips"
)

// Options configures one generation run.
type Options struct {
	TemplatePath string
	OutDir       string
	Count        int
	Seed         int64  // RNG seed, used only when UseSeed is set
	UseSeed      bool   // seeded runs are reproducible
	IPSPath      string // optional FHIR IPS bundle to seed patient content
	Scenario     string // optional forced scenario code
	TrainOut     string // optional JSONL side-channel path
}

// Generate runs the generator: it parses the template, generates
// opts.Count instances into opts.OutDir as ds_NNN.xml, and optionally
// appends one JSON line per instance to opts.TrainOut. Any write failure
// aborts the run.
func Generate(opts Options) error {
	doc, err := hl7.ParseFile(opts.TemplatePath)
	if err != nil {
		return fmt.Errorf("generator: template: %w", err)
	}

	var bundle *ips.Bundle
	if opts.IPSPath != "" {
		bundle, err = ips.Load(opts.IPSPath)
		if err != nil {
			return fmt.Errorf("generator: ips bundle: %w", err)
		}
	}

	seed := opts.Seed
	if !opts.UseSeed {
		seed = newRandomSeed()
	}
	run := NewRun(doc, seed, bundle, opts.Scenario)

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("generator: outdir: %w", err)
	}

	var train *os.File
	var trainEnc *json.Encoder
	if opts.TrainOut != "" {
		train, err = os.Create(opts.TrainOut)
		if err != nil {
			return fmt.Errorf("generator: train output: %w", err)
		}
		defer train.Close()
		trainEnc = json.NewEncoder(train)
	}

	for i := 1; i <= opts.Count; i++ {
		instance, rec, err := run.NewInstance()
		if err != nil {
			return fmt.Errorf("generator: instance %d: %w", i, err)
		}
		name := filepath.Join(opts.OutDir, fmt.Sprintf("ds_%03d.xml", i))
		if err := os.WriteFile(name, instance.Bytes(), 0o644); err != nil {
			return fmt.Errorf("generator: write %s: %w", name, err)
		}
		if trainEnc != nil {
			if err := trainEnc.Encode(rec); err != nil {
				return fmt.Errorf("generator: train record %d: %w", i, err)
			}
		}
	}
	log.Printf("generator: wrote %d discharge summaries to %s", opts.Count, opts.OutDir)
	return nil
}

func newRandomSeed() int64 {
	return time.Now().UnixNano()
}
