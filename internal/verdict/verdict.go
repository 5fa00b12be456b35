// Package verdict turns one sequence's resolved alerts into a pass or
// fail outcome and the report-facing alert list. The rule is fixed: a
// sequence fails on any fatal alert, sequence level or feature level,
// after expendable-feature demotion has run. Suppressed alerts are
// dropped from the report but still counted for the outcome.
package verdict

import (
	"sort"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/feature"
)

// Result is the final per-sequence outcome.
type Result struct {
	SeqID   string `json:"seq"`
	ModelID string `json:"model"`
	Pass    bool   `json:"pass"`

	// Alerts is the report-facing list: suppressed instances removed,
	// ordered sequence level first, then by feature, then by registry
	// order. Every remaining instance carries its resolved status.
	Alerts []alert.Resolved `json:"alerts,omitempty"`

	// DemotedFeatures lists the indexes of expendable features whose
	// fatal alerts were downgraded; these are annotated as
	// misc_feature in the output instead of failing the sequence.
	DemotedFeatures []int `json:"demoted_features,omitempty"`

	// counts over the full pre-suppression list
	FatalCount    int `json:"fatal_count"`
	NonFatalCount int `json:"non_fatal_count"`
}

// Decide resolves the alerts under the run options and applies the
// pass/fail rule. fm may be nil when classification failed before any
// feature map was selected; every alert is then sequence level.
func Decide(seqID, modelID string, alerts []alert.Alert, fm *feature.Map, opts *alert.Options) Result {
	isExpendable := func(ftrIdx int) bool {
		if fm == nil || ftrIdx < 0 || ftrIdx >= fm.Len() {
			return false
		}
		return fm.At(ftrIdx).Expendable
	}

	resolved := alert.Resolve(alerts, opts, isExpendable)
	alert.Sort(resolved)

	// A failure always has a visible cause: features absent from the
	// sequence and marked deletable emit no alerts at all, and a
	// suppressed fatal code is only ever suppressed by a more specific
	// code on the same feature, which is itself reported. So no
	// sequence fails solely on alerts the report will never show.
	res := Result{SeqID: seqID, ModelID: modelID, Pass: true}
	demoted := make(map[int]bool)
	for _, r := range resolved {
		switch r.Status {
		case alert.Fatal:
			res.FatalCount++
			res.Pass = false
		default:
			res.NonFatalCount++
		}
		if r.Demoted {
			demoted[r.FeatureIdx] = true
		}
		if !r.Suppressed {
			res.Alerts = append(res.Alerts, r)
		}
	}

	for idx := range demoted {
		res.DemotedFeatures = append(res.DemotedFeatures, idx)
	}
	sort.Ints(res.DemotedFeatures)
	return res
}
