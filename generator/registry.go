// Package generator produces synthetic HL7 v2 REF_I12 discharge summary
// messages from a fixed template. Each generated instance is a structural
// clone of the template whose leaf values have been overwritten with
// diagnosis-coherent synthetic content; structure is never changed.
package generator

import (
	"fmt"

	"github.com/patrickmn/go-cache"
)

// Categories of run-unique values tracked by the Registry.
const (
	CatMessageID  = "msh10"
	CatVisitID    = "pv119"
	CatFillerID   = "obr3"
	CatPatientKey = "patientkey"
	CatScenario   = "scenario"
)

// maxAttempts bounds the retry loop of GenerateUnique. The identifier
// spaces are large relative to batch sizes, so hitting the cap means the
// generator is misconfigured rather than unlucky; it is a fatal condition.
const maxAttempts = 100

// ExhaustedError reports that a fresh value could not be drawn for a
// category within the bounded retry count.
type ExhaustedError struct {
	Category string
	Attempts int
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("generator: no unused %s value after %d attempts", e.Category, e.Attempts)
}

// Registry is the run-scoped store of already-issued identifier values.
// One Registry lives for exactly one generation run; access is serialized
// by the underlying cache, so a run may be driven from several goroutines.
type Registry struct {
	used *cache.Cache
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{used: cache.New(cache.NoExpiration, 0)}
}

// GenerateUnique invokes gen until it yields a value not yet issued for
// category, records it and returns it. Attempts are bounded; exceeding the
// cap returns an ExhaustedError and the caller must abort the run.
func (r *Registry) GenerateUnique(category string, gen func() string) (string, error) {
	for i := 0; i < maxAttempts; i++ {
		v := gen()
		if v == "" {
			continue
		}
		key := category + "|" + v
		if _, dup := r.used.Get(key); dup {
			continue
		}
		r.used.Set(key, true, cache.NoExpiration)
		return v, nil
	}
	return "", &ExhaustedError{Category: category, Attempts: maxAttempts}
}

// Seen reports whether value has been issued for category this run.
func (r *Registry) Seen(category, value string) bool {
	_, found := r.used.Get(category + "|" + value)
	return found
}

// Record marks value as issued for category without generating it.
func (r *Registry) Record(category, value string) {
	r.used.Set(category+"|"+value, true, cache.NoExpiration)
}

// usedScenarioCodes adapts the registry's scenario category to the
// scenario package's round-robin tracking interface.
type usedScenarioCodes struct {
	reg *Registry
}

func (u usedScenarioCodes) InUse(code string) bool { return u.reg.Seen(CatScenario, code) }
func (u usedScenarioCodes) MarkUsed(code string)   { u.reg.Record(CatScenario, code) }
