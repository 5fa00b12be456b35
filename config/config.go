// Package config is for run-wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"

	"github.com/ncbi/vadr-sub007/internal/alert"
	"github.com/ncbi/vadr-sub007/internal/codon"
	"github.com/ncbi/vadr-sub007/internal/detect"
)

// AlertConfig holds the per-run alert policy overrides.
type AlertConfig struct {
	// default-fatal alert codes to treat as non-fatal
	Pass []string `mapstructure:"alt-pass"`

	// default-non-fatal alert codes to treat as fatal
	Fail []string `mapstructure:"alt-fail"`

	// codes to add to the misc_feature demotion set
	MiscOK []string `mapstructure:"misc-ok"`

	// codes to remove from the misc_feature demotion set
	MiscNot []string `mapstructure:"misc-not"`
}

// BoundaryConfig holds feature-boundary thresholds.
type BoundaryConfig struct {
	// minimum alignment confidence at a feature boundary
	Conf float64 `mapstructure:"conf"`

	// the lower threshold used for mature peptide boundaries
	ConfMP float64 `mapstructure:"conf-mp"`

	// tolerated distance in nt between the nucleotide and
	// protein-homology boundaries of a CDS
	ProteinTol int `mapstructure:"protein-tol"`
}

// IndelConfig holds the maximum single-locus indel lengths.
type IndelConfig struct {
	MaxInsertNt   int `mapstructure:"max-insert-nt"`
	MaxDeleteNt   int `mapstructure:"max-delete-nt"`
	MaxInsertProt int `mapstructure:"max-insert-prot"`
	MaxDeleteProt int `mapstructure:"max-delete-prot"`
}

// CoverageConfig holds the coverage-stage thresholds.
type CoverageConfig struct {
	// minimum model overlap and per-hit bit score for a duplicate region
	DupOverlap int     `mapstructure:"dup-overlap"`
	DupBits    float64 `mapstructure:"dup-bits"`

	// minimum bit score of an opposite-strand hit worth reporting
	StrandBits float64 `mapstructure:"strand-bits"`

	// minimum fraction of the sequence covered by hits
	MinFraction float64 `mapstructure:"min-fraction"`

	// minimum lengths of terminal and internal uncovered regions
	TermLen int `mapstructure:"term-len"`
	IntLen  int `mapstructure:"int-len"`
}

// ClassifyConfig holds the classification-stage thresholds.
type ClassifyConfig struct {
	MinBitsPerNt float64 `mapstructure:"min-bits-per-nt"`
	MaxBiasFrac  float64 `mapstructure:"max-bias-frac"`
	ClassMargin  float64 `mapstructure:"class-margin"`
	GroupMargin  float64 `mapstructure:"group-margin"`
}

// FrameConfig holds the frameshift analyzer thresholds.
type FrameConfig struct {
	// minimum lengths of a shifted region, internal and feature-terminal
	MinShiftLen    int `mapstructure:"min-shift-len"`
	MinShiftLenEnd int `mapstructure:"min-shift-len-end"`

	// mean posterior probability above which a frameshift is
	// high confidence
	HighConf float64 `mapstructure:"high-conf"`

	// when set, a region ends at any return to the expected frame, not
	// only at an exact restoring indel
	LooseRestore bool `mapstructure:"loose-restore"`

	// restrict valid start codons to ATG regardless of the
	// translation table
	ATGOnly bool `mapstructure:"atg-only"`
}

// Config is the root-level settings struct and is a mix of settings
// available in settings.yaml and those from the command line.
type Config struct {
	// number of worker goroutines
	Threads int `mapstructure:"threads"`

	Alerts   AlertConfig    `mapstructure:"alerts"`
	Boundary BoundaryConfig `mapstructure:"boundary"`
	Indel    IndelConfig    `mapstructure:"indel"`
	Coverage CoverageConfig `mapstructure:"coverage"`
	Classify ClassifyConfig `mapstructure:"classify"`
	Frame    FrameConfig    `mapstructure:"frame"`
}

// New returns a new Config populated by Viper settings (either from
// the local settings.yaml and/or command line arguments).
func New() *Config {
	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		log.Fatalf("unable to decode settings: %v", err)
	}
	if err := c.Validate(); err != nil {
		log.Fatalf("invalid settings: %v", err)
	}
	return &c
}

// Validate rejects settings outside their domain. Alert code lists are
// validated separately in AlertOptions because the permitted override
// directions depend on the registry.
func (c *Config) Validate() error {
	if c.Threads < 0 {
		return fmt.Errorf("threads must be >= 0, got %d", c.Threads)
	}
	frac := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %g", name, v)
		}
		return nil
	}
	if err := frac("boundary.conf", c.Boundary.Conf); err != nil {
		return err
	}
	if err := frac("boundary.conf-mp", c.Boundary.ConfMP); err != nil {
		return err
	}
	if err := frac("coverage.min-fraction", c.Coverage.MinFraction); err != nil {
		return err
	}
	if err := frac("classify.max-bias-frac", c.Classify.MaxBiasFrac); err != nil {
		return err
	}
	if err := frac("frame.high-conf", c.Frame.HighConf); err != nil {
		return err
	}
	counts := []struct {
		name string
		v    int
	}{
		{"boundary.protein-tol", c.Boundary.ProteinTol},
		{"indel.max-insert-nt", c.Indel.MaxInsertNt},
		{"indel.max-delete-nt", c.Indel.MaxDeleteNt},
		{"indel.max-insert-prot", c.Indel.MaxInsertProt},
		{"indel.max-delete-prot", c.Indel.MaxDeleteProt},
		{"coverage.dup-overlap", c.Coverage.DupOverlap},
		{"coverage.term-len", c.Coverage.TermLen},
		{"coverage.int-len", c.Coverage.IntLen},
		{"frame.min-shift-len", c.Frame.MinShiftLen},
		{"frame.min-shift-len-end", c.Frame.MinShiftLenEnd},
	}
	for _, n := range counts {
		if n.v < 0 {
			return fmt.Errorf("%s must be >= 0, got %d", n.name, n.v)
		}
	}
	return nil
}

// Detect maps the settings onto the detector thresholds. Zero values
// fall through to the detector defaults.
func (c *Config) Detect() detect.Config {
	return detect.Config{
		BoundaryConf:       c.Boundary.Conf,
		BoundaryConfMP:     c.Boundary.ConfMP,
		ProteinBoundaryTol: c.Boundary.ProteinTol,
		MaxInsertNt:        c.Indel.MaxInsertNt,
		MaxDeleteNt:        c.Indel.MaxDeleteNt,
		MaxInsertProt:      c.Indel.MaxInsertProt,
		MaxDeleteProt:      c.Indel.MaxDeleteProt,
		DupReginOverlap:    c.Coverage.DupOverlap,
		DupReginBits:       c.Coverage.DupBits,
		IndfStrnBits:       c.Coverage.StrandBits,
		MinCoverageFrac:    c.Coverage.MinFraction,
		LowSimTermLen:      c.Coverage.TermLen,
		LowSimIntLen:       c.Coverage.IntLen,
		MinBitsPerNt:       c.Classify.MinBitsPerNt,
		MaxBiasFrac:        c.Classify.MaxBiasFrac,
		MinClassMargin:     c.Classify.ClassMargin,
		MinGroupMargin:     c.Classify.GroupMargin,
		Codon: codon.Config{
			MinShiftLen:    c.Frame.MinShiftLen,
			MinShiftLenEnd: c.Frame.MinShiftLenEnd,
			HighConf:       c.Frame.HighConf,
			LooseRestore:   c.Frame.LooseRestore,
			ATGOnly:        c.Frame.ATGOnly,
		},
	}
}

// AlertOptions builds the alert policy from the configured code lists.
func (c *Config) AlertOptions() (*alert.Options, error) {
	return alert.NewOptions(c.Alerts.Pass, c.Alerts.Fail, c.Alerts.MiscOK, c.Alerts.MiscNot)
}
