package alert

import (
	"fmt"
	"sort"
)

// Status is the resolved state of one alert instance.
type Status int

const (
	// Proposed is the pre-resolution state.
	Proposed Status = iota
	// Fatal fails the carrying sequence (unless the feature is demoted).
	Fatal
	// NonFatal is reported but does not fail the sequence.
	NonFatal
)

func (s Status) String() string {
	switch s {
	case Fatal:
		return "FATAL"
	case NonFatal:
		return "non-fatal"
	default:
		return "proposed"
	}
}

// Options are the run-wide policy overrides, fixed at startup and
// never mutated during processing.
type Options struct {
	forceNonFatal map[Code]bool // pass list: default-fatal codes made non-fatal
	forceFatal    map[Code]bool // fail list: default-non-fatal codes made fatal
	demotable     map[Code]bool // codes that demote instead of fail on expendable features
}

// NewOptions validates the user-supplied code lists. Overrides only
// work in the permitted direction: a pass-list code must currently
// default to fatal, a fail-list code to non-fatal, and always-fatal
// codes cannot be overridden at all. Violations are configuration
// errors fatal to the run, never per-sequence alerts.
func NewOptions(passList, failList, demoteAdd, demoteRemove []string) (*Options, error) {
	o := &Options{
		forceNonFatal: make(map[Code]bool),
		forceFatal:    make(map[Code]bool),
		demotable:     make(map[Code]bool),
	}
	for _, m := range registryRows {
		if m.MiscNotFailure {
			o.demotable[m.Code] = true
		}
	}

	for _, s := range passList {
		m, ok := Lookup(Code(s))
		if !ok {
			return nil, fmt.Errorf("--alt-pass: unknown alert code %q", s)
		}
		if m.AlwaysFatal {
			return nil, fmt.Errorf("--alt-pass: alert code %q is always fatal and cannot be overridden", s)
		}
		if !m.DefaultFatal {
			return nil, fmt.Errorf("--alt-pass: alert code %q is already non-fatal", s)
		}
		o.forceNonFatal[m.Code] = true
	}
	for _, s := range failList {
		m, ok := Lookup(Code(s))
		if !ok {
			return nil, fmt.Errorf("--alt-fail: unknown alert code %q", s)
		}
		if m.DefaultFatal {
			return nil, fmt.Errorf("--alt-fail: alert code %q is already fatal", s)
		}
		o.forceFatal[m.Code] = true
	}
	for _, s := range demoteAdd {
		m, ok := Lookup(Code(s))
		if !ok {
			return nil, fmt.Errorf("--misc-ok: unknown alert code %q", s)
		}
		o.demotable[m.Code] = true
	}
	for _, s := range demoteRemove {
		m, ok := Lookup(Code(s))
		if !ok {
			return nil, fmt.Errorf("--misc-not: unknown alert code %q", s)
		}
		delete(o.demotable, m.Code)
	}
	return o, nil
}

// DefaultOptions returns the policy with no user overrides.
func DefaultOptions() *Options {
	o, _ := NewOptions(nil, nil, nil, nil)
	return o
}

// IsFatal resolves the fatal/non-fatal status of a code under these
// options. Always-fatal codes skip the override check entirely.
func (o *Options) IsFatal(c Code) bool {
	m, ok := Lookup(c)
	if !ok {
		return false
	}
	if m.AlwaysFatal {
		return true
	}
	if o.forceNonFatal[c] {
		return false
	}
	if o.forceFatal[c] {
		return true
	}
	return m.DefaultFatal
}

// IsDemotable reports whether a code belongs to the demote-don't-fail
// set for expendable features.
func (o *Options) IsDemotable(c Code) bool { return o.demotable[c] }

// Resolved is one alert instance with its policy outcome attached.
type Resolved struct {
	Alert
	Status Status

	// Demoted means the carrying feature is expendable, the code is
	// demotable, and the instance was downgraded to NonFatal with the
	// feature marked for misc_feature demotion in reporting.
	Demoted bool

	// Suppressed means a more specific co-occurring code drops this
	// instance from the report-facing list. Suppression never changes
	// the pass/fail outcome.
	Suppressed bool
}

// Resolve runs the policy state machine over all of one sequence's
// alerts. isExpendable answers whether a feature index carries the
// expendable flag (always false for sequence-level alerts).
func Resolve(alerts []Alert, opts *Options, isExpendable func(ftrIdx int) bool) []Resolved {
	out := make([]Resolved, 0, len(alerts))
	for _, a := range alerts {
		r := Resolved{Alert: a}
		switch {
		case !opts.IsFatal(a.Code):
			r.Status = NonFatal
		case a.FeatureIdx != NoFeature && isExpendable(a.FeatureIdx) && opts.IsDemotable(a.Code):
			r.Status = NonFatal
			r.Demoted = true
		default:
			r.Status = Fatal
		}
		out = append(out, r)
	}
	markSuppressed(out)
	return out
}

// markSuppressed applies the fixed co-occurrence rules: an instance is
// suppressed when any code in its SuppressedBy list is present on the
// same feature (or at sequence level for sequence-level codes).
func markSuppressed(rs []Resolved) {
	present := make(map[int]map[Code]bool)
	for _, r := range rs {
		if present[r.FeatureIdx] == nil {
			present[r.FeatureIdx] = make(map[Code]bool)
		}
		present[r.FeatureIdx][r.Code] = true
	}
	for i := range rs {
		m, ok := Lookup(rs[i].Code)
		if !ok {
			continue
		}
		for _, sup := range m.SuppressedBy {
			if present[rs[i].FeatureIdx][sup] {
				rs[i].Suppressed = true
				break
			}
		}
	}
}

// Sort orders resolved alerts the way downstream reporting numbers
// them: sequence-level first, then by feature index, then by fixed
// registry order within a feature.
func Sort(rs []Resolved) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].FeatureIdx != rs[j].FeatureIdx {
			return rs[i].FeatureIdx < rs[j].FeatureIdx
		}
		mi, _ := Lookup(rs[i].Code)
		mj, _ := Lookup(rs[j].Code)
		return mi.Order < mj.Order
	})
}
