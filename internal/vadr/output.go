package vadr

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/verdict"
)

// AlertOutput is one reported alert instance.
type AlertOutput struct {
	// Idx numbers the instance <seq>.<feature>.<alert>, feature 0 for
	// sequence-level alerts
	Idx string `json:"idx"`

	Feature string `json:"feature,omitempty"`
	Code    string `json:"code"`
	Desc    string `json:"desc"`
	Fatal   bool   `json:"fatal"`

	SeqCoords string `json:"seq_coords"`
	MdlCoords string `json:"mdl_coords"`
	Detail    string `json:"detail,omitempty"`
}

// SeqOutput is one sequence's verdict.
type SeqOutput struct {
	Seq   string `json:"seq"`
	Model string `json:"model"`
	Pass  bool   `json:"pass"`

	// names of expendable features demoted to misc_feature
	DemotedFeatures []string `json:"demoted_features,omitempty"`

	Alerts []AlertOutput `json:"alerts,omitempty"`
}

// Output is the root of the JSON report.
type Output struct {
	// Time, ex: "2018-01-01 20:41:00"
	Time string `json:"time"`

	// Execution is the number of seconds the run took
	Execution float64 `json:"execution"`

	Passed int `json:"passed"`
	Failed int `json:"failed"`

	Sequences []SeqOutput `json:"sequences"`
}

// buildOutput converts verdicts to the report shape, resolving feature
// indexes to names through the library.
func buildOutput(results []verdict.Result, lib *Library, seconds float64) Output {
	t := time.Now()
	out := Output{
		Time: fmt.Sprintf(
			"%d/%02d/%02d %02d:%02d:%02d",
			t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(),
		),
		Execution: seconds,
	}

	for seqIdx, res := range results {
		so := SeqOutput{Seq: res.SeqID, Model: res.ModelID, Pass: res.Pass}
		if res.Pass {
			out.Passed++
		} else {
			out.Failed++
		}

		name := featureNamer(lib, res.ModelID)
		for _, idx := range res.DemotedFeatures {
			so.DemotedFeatures = append(so.DemotedFeatures, name(idx))
		}
		for altIdx, r := range res.Alerts {
			meta, _ := alert.Lookup(r.Code)
			ao := AlertOutput{
				Idx:       fmt.Sprintf("%d.%d.%d", seqIdx+1, r.FeatureIdx+1, altIdx+1),
				Code:      string(r.Code),
				Desc:      meta.Desc,
				Fatal:     r.Status == alert.Fatal,
				SeqCoords: r.SeqCoords.String(),
				MdlCoords: r.MdlCoords.String(),
				Detail:    r.Detail,
			}
			if r.FeatureIdx != alert.NoFeature {
				ao.Feature = name(r.FeatureIdx)
			}
			so.Alerts = append(so.Alerts, ao)
		}
		out.Sequences = append(out.Sequences, so)
	}
	return out
}

func featureNamer(lib *Library, modelID string) func(int) string {
	fm, err := lib.Map(modelID)
	return func(idx int) string {
		if err != nil || idx < 0 || idx >= fm.Len() {
			return fmt.Sprintf("feature#%d", idx)
		}
		if n := fm.At(idx).Name; n != "" {
			return n
		}
		return fmt.Sprintf("feature#%d", idx)
	}
}

// WriteJSON writes the full report to the filename requested and
// returns the serialized bytes.
func WriteJSON(filename string, results []verdict.Result, lib *Library, seconds float64) ([]byte, error) {
	out := buildOutput(results, lib, seconds)
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := os.WriteFile(filename, b, 0644); err != nil {
		return nil, err
	}
	return b, nil
}

// WriteAlerts writes the tab-delimited alert table: one row per
// reported instance, sequences in input order, alerts in report order.
func WriteAlerts(w io.Writer, results []verdict.Result, lib *Library) {
	writer := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(writer, "#idx\tseq\tmodel\tfeature\talert\tfatal\tseq coords\tmdl coords\tdetail\n")
	for seqIdx, res := range results {
		name := featureNamer(lib, res.ModelID)
		for altIdx, r := range res.Alerts {
			ftr := "-"
			if r.FeatureIdx != alert.NoFeature {
				ftr = name(r.FeatureIdx)
			}
			fatal := "no"
			if r.Status == alert.Fatal {
				fatal = "FATAL"
			}
			fmt.Fprintf(writer, "%d.%d.%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
				seqIdx+1, r.FeatureIdx+1, altIdx+1,
				res.SeqID, res.ModelID, ftr, r.Code, fatal,
				r.SeqCoords, r.MdlCoords, r.Detail)
		}
	}
	writer.Flush()
}
