// Package validator checks that a batch of generated discharge summaries
// is structurally identical to its template and internally consistent.
// Validation is independent of generation: it reparses every file from
// disk, rebuilds its structural signature and compares it to the
// template's, then enforces batch-wide uniqueness of message, patient and
// (optionally) visit identifiers.
package validator

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/wardle/synthds/hl7"
)

// Kind classifies a validation failure. When several checks fail for one
// file, the first failing check in the fixed order decides the kind.
type Kind int

const (
	ParseFailure Kind = iota
	DuplicateContent
	StructuralMismatch
	MissingMandatoryGroup
	UniquenessViolation
)

func (k Kind) String() string {
	switch k {
	case ParseFailure:
		return "parse failure"
	case DuplicateContent:
		return "duplicate content"
	case StructuralMismatch:
		return "structural mismatch"
	case MissingMandatoryGroup:
		return "missing mandatory group"
	case UniquenessViolation:
		return "uniqueness violation"
	}
	return "unknown"
}

// Failure records why one file failed validation.
type Failure struct {
	File   string
	Kind   Kind
	Detail string
}

// Options configures a validation run. The CheckPaths, CheckHeadings,
// CheckCounts and RequireFileUnique toggles default to on at the CLI.
type Options struct {
	TemplatePath       string
	InDir              string
	ExpectedCount      int // -1 disables the count check
	CheckPaths         bool
	CheckHeadings      bool
	CheckCounts        bool
	RequireVisitUnique bool
	RequireFileUnique  bool
	MaxPathDiff        int // shown address diffs per file; 0 means 8
}

// Result summarises a validation run.
type Result struct {
	Checked  int
	Failures []Failure
}

// OK reports whether every checked file passed.
func (r *Result) OK() bool { return len(r.Failures) == 0 }

// uniques are the batch-wide identity values extracted from one file.
type uniques struct {
	msh10      string
	pv119      string
	pname      string
	pid3       string
	patientKey string
}

// parsed is the per-file output of the parallel phase.
type parsed struct {
	name string
	err  error
	sig  *Signature
	hash string
	uniq uniques
}

// Validate checks every .xml file in opts.InDir against the template.
// Files are parsed and fingerprinted concurrently; all cross-file checks
// run serially in sorted filename order so results are deterministic. The
// returned error reports environmental problems only (unreadable template
// or directory); per-file verdicts are in the Result.
func Validate(opts Options) (*Result, error) {
	template, err := hl7.ParseFile(opts.TemplatePath)
	if err != nil {
		return nil, fmt.Errorf("validator: template: %w", err)
	}
	want := Build(template)

	maxDiff := opts.MaxPathDiff
	if maxDiff <= 0 {
		maxDiff = 8
	}

	names, err := listXML(opts.InDir)
	if err != nil {
		return nil, fmt.Errorf("validator: %w", err)
	}

	files := make([]parsed, len(names))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			files[i] = parseOne(filepath.Join(opts.InDir, name), name)
			return nil
		})
	}
	g.Wait()

	res := &Result{}
	seenHash := make(map[string]string)
	seenMSH10 := make(map[string]string)
	seenPatient := make(map[string]string)
	seenVisit := make(map[string]string)

	for _, f := range files {
		res.Checked++
		fail := checkFile(f, want, opts, maxDiff, seenHash, seenMSH10, seenPatient, seenVisit)
		if fail != nil {
			res.Failures = append(res.Failures, *fail)
			log.Printf("validator: [FAIL] %s: %s: %s", f.name, fail.Kind, fail.Detail)
			continue
		}
		log.Printf("validator: [OK] %s", f.name)
	}

	if opts.ExpectedCount >= 0 && res.Checked != opts.ExpectedCount {
		res.Failures = append(res.Failures, Failure{
			Kind:   StructuralMismatch,
			Detail: fmt.Sprintf("expected %d files, found %d", opts.ExpectedCount, res.Checked),
		})
	}
	log.Printf("validator: checked %d files, %d failed", res.Checked, len(res.Failures))
	return res, nil
}

func listXML(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".xml") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func parseOne(path, name string) parsed {
	doc, err := hl7.ParseFile(path)
	if err != nil {
		return parsed{name: name, err: err}
	}
	return parsed{
		name: name,
		sig:  Build(doc),
		hash: doc.CanonicalHash(),
		uniq: extractUniques(doc),
	}
}

// checkFile runs the per-file checks in their fixed order and returns the
// first failure, recording the file's identity values as a side effect.
func checkFile(f parsed, want *Signature, opts Options, maxDiff int,
	seenHash, seenMSH10, seenPatient, seenVisit map[string]string) *Failure {

	if f.err != nil {
		return &Failure{File: f.name, Kind: ParseFailure, Detail: f.err.Error()}
	}

	if opts.RequireFileUnique {
		if prev, dup := seenHash[f.hash]; dup {
			return &Failure{File: f.name, Kind: DuplicateContent,
				Detail: fmt.Sprintf("identical content to %s", prev)}
		}
		seenHash[f.hash] = f.name
	}

	if detail := structuralDiff(want, f.sig, opts, maxDiff); detail != "" {
		return &Failure{File: f.name, Kind: StructuralMismatch, Detail: detail}
	}

	if want.RequirePRD && f.sig.Counts.PRD == 0 {
		return &Failure{File: f.name, Kind: MissingMandatoryGroup, Detail: "no PRD segment"}
	}

	// each identity value is recorded as soon as its own check passes, so
	// a value burned by a file that fails a later check stays burned
	if f.uniq.msh10 == "" {
		return &Failure{File: f.name, Kind: UniquenessViolation, Detail: "empty MSH.10"}
	}
	if prev, dup := seenMSH10[f.uniq.msh10]; dup {
		return &Failure{File: f.name, Kind: UniquenessViolation,
			Detail: fmt.Sprintf("MSH.10 %q already used by %s", f.uniq.msh10, prev)}
	}
	seenMSH10[f.uniq.msh10] = f.name

	if f.uniq.pname == "" || f.uniq.pid3 == "" {
		return &Failure{File: f.name, Kind: UniquenessViolation, Detail: "empty patient name or identifier"}
	}
	if prev, dup := seenPatient[f.uniq.patientKey]; dup {
		return &Failure{File: f.name, Kind: UniquenessViolation,
			Detail: fmt.Sprintf("patient %q already used by %s", f.uniq.patientKey, prev)}
	}
	seenPatient[f.uniq.patientKey] = f.name

	if opts.RequireVisitUnique {
		if f.uniq.pv119 == "" {
			return &Failure{File: f.name, Kind: UniquenessViolation, Detail: "empty PV1.19"}
		}
		if prev, dup := seenVisit[f.uniq.pv119]; dup {
			return &Failure{File: f.name, Kind: UniquenessViolation,
				Detail: fmt.Sprintf("visit %q already used by %s", f.uniq.pv119, prev)}
		}
		seenVisit[f.uniq.pv119] = f.name
	}
	return nil
}

// structuralDiff compares a file's signature against the template's and
// describes the first difference found, or returns "".
func structuralDiff(want, got *Signature, opts Options, maxDiff int) string {
	if !reflect.DeepEqual(want.TopOrder, got.TopOrder) {
		return fmt.Sprintf("top-level order %v, want %v", got.TopOrder, want.TopOrder)
	}
	if opts.CheckPaths {
		if diffs := diffAddresses(want.Addresses, got.Addresses, maxDiff); len(diffs) > 0 {
			return "address set differs: " + strings.Join(diffs, "; ")
		}
	}
	if opts.CheckCounts && want.Counts != got.Counts {
		return fmt.Sprintf("counts %+v, want %+v", got.Counts, want.Counts)
	}
	if opts.CheckHeadings && !reflect.DeepEqual(want.Headings, got.Headings) {
		return "observation headings differ from template"
	}
	return ""
}

func diffAddresses(want, got map[string]bool, max int) []string {
	var diffs []string
	for a := range want {
		if !got[a] {
			diffs = append(diffs, "missing "+a)
		}
	}
	for a := range got {
		if !want[a] {
			diffs = append(diffs, "extra "+a)
		}
	}
	sort.Strings(diffs)
	if len(diffs) > max {
		rest := len(diffs) - max
		diffs = append(diffs[:max], fmt.Sprintf("and %d more", rest))
	}
	return diffs
}

// extractUniques pulls the batch-identity values from a file: the message
// control id, the visit number and a composite patient key built from the
// PID-5 name plus the first local (non-IHINumber) PID-3 identifier.
func extractUniques(doc *hl7.Document) uniques {
	root := doc.Root
	var u uniques
	u.msh10 = firstText(root, "/hl7:REF_I12/hl7:MSH/hl7:MSH.10", "//hl7:MSH.10")
	u.pv119 = firstText(root, "/hl7:REF_I12/hl7:REF_I12.PATIENT_VISIT/hl7:PV1/hl7:PV1.19/hl7:CX.1", "//hl7:PV1.19/hl7:CX.1")

	pid3s := root.All("/hl7:REF_I12/hl7:PID/hl7:PID.3")
	if len(pid3s) == 0 {
		pid3s = root.All("//hl7:PID.3")
	}
	var pid3 string
	for _, el := range pid3s {
		if hl7.Text(el.First("./hl7:CX.5")) != "IHINumber" {
			pid3 = hl7.Text(el.First("./hl7:CX.1"))
			break
		}
	}
	if pid3 == "" && len(pid3s) > 0 {
		pid3 = hl7.Text(pid3s[0].First("./hl7:CX.1"))
	}

	given := firstText(root, "/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.2", "//hl7:PID.5/hl7:XPN.2")
	family := firstText(root, "/hl7:REF_I12/hl7:PID/hl7:PID.5/hl7:XPN.1/hl7:FN.1", "//hl7:PID.5/hl7:XPN.1/hl7:FN.1")
	u.pname = strings.TrimSpace(given + " " + family)
	u.pid3 = pid3
	u.patientKey = strings.ToUpper(u.pname + "|" + pid3)
	return u
}

func firstText(root *hl7.Element, primary, fallback string) string {
	if s := hl7.Text(root.First(primary)); s != "" {
		return s
	}
	return hl7.Text(root.First(fallback))
}
