// Package config is for app wide settings that are unmarshalled
// from Viper (see: /cmd)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"
)

// DefaultMaxLength is the default cap on the length of a gap-fill. The sweep
// raises it for gaps whose estimated length already reaches it.
const DefaultMaxLength = 10000

// Config is the root-level settings struct, a mix of settings from the
// optional mtg10x.yaml settings file and the command line
type Config struct {
	// the input assembly graph (GFA 2.0)
	GFA string `mapstructure:"gfa"`

	// size (bp) of the flank-adjacent chunk barcodes are collected from
	Chunk int `mapstructure:"chunk"`

	// linked reads mapped against the current assembly
	BAM string `mapstructure:"bam"`

	// the indexed reads file
	Fastq string `mapstructure:"fastq"`

	// the barcode index built from the Fastq file (see the index command)
	Index string `mapstructure:"index"`

	// minimal combined occurrence count for a barcode to enter the union
	Freq int `mapstructure:"freq"`

	// directory the results are written to
	Out string `mapstructure:"out"`

	// directory with per-gap reference sequences, if any
	RefDir string `mapstructure:"refDir"`

	// GFA line number to resume from
	Line int `mapstructure:"line"`

	// pre-extracted union-reads file, skips read extraction when set
	Rbxu string `mapstructure:"rbxu"`

	// k-mer sizes to sweep, most stringent first
	Kmer []int `mapstructure:"kmer"`

	// keep sweeping every (k, a) pair even after a gap is solved
	Force bool `mapstructure:"force"`

	// abundance thresholds for solid k-mers, most stringent first
	Abundance []int `mapstructure:"abundance"`

	// extension size (bp) of the gap on both sides
	Ext int `mapstructure:"ext"`

	// MindTheGap resource caps
	MaxNodes  int `mapstructure:"max-nodes"`
	MaxLength int `mapstructure:"max-length"`
	NbCores   int `mapstructure:"nb-cores"`
	MaxMemory int `mapstructure:"max-memory"`
	Verbose   int `mapstructure:"verbose"`

	// path to the MindTheGap executable, overridable in mtg10x.yaml
	MtgPath string `mapstructure:"mtg-path"`

	// path to the alignment statistics script, overridable in mtg10x.yaml
	StatsPath string `mapstructure:"stats-path"`
}

// InputPathError is a fatal pre-flight failure: a CLI path argument is
// missing, malformed, or points nowhere
type InputPathError struct {
	Flag   string
	Path   string
	Reason string
}

// Error implements the error interface
func (e *InputPathError) Error() string {
	return fmt.Sprintf("invalid --%s '%s': %s", e.Flag, e.Path, e.Reason)
}

// New returns a new Config struct populated by Viper settings (from the
// local mtg10x.yaml, if present) and/or command line arguments
func New() (*Config, error) {
	viper.SetConfigName("mtg10x")
	viper.AddConfigPath(".")
	viper.ReadInConfig() // the settings file is optional

	var c Config
	if err := viper.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %v", err)
	}

	if c.MtgPath == "" {
		c.MtgPath = "MindTheGap"
	}
	if c.StatsPath == "" {
		c.StatsPath = "stats_alignment.py"
	}

	// k and a are always tried most stringent first
	sortDesc(c.Kmer)
	sortDesc(c.Abundance)

	return &c, nil
}

// Validate checks every input path before any gap processing begins.
// Each failure is an *InputPathError and aborts the run
func (c *Config) Validate() error {
	if !strings.HasSuffix(c.GFA, ".gfa") {
		return &InputPathError{"gfa", c.GFA, "the suffix of the GFA file should be '.gfa'"}
	}
	if !strings.HasSuffix(c.BAM, ".bam") {
		return &InputPathError{"bam", c.BAM, "the suffix of the BAM file should be '.bam'"}
	}

	paths := []struct {
		flag, path string
		required   bool
	}{
		{"gfa", c.GFA, true},
		{"bam", c.BAM, true},
		{"fastq", c.Fastq, true},
		{"index", c.Index, true},
		{"refDir", c.RefDir, false},
		{"rbxu", c.Rbxu, false},
	}
	for _, p := range paths {
		if p.path == "" && !p.required {
			continue
		}
		if _, err := os.Stat(p.path); err != nil {
			return &InputPathError{p.flag, p.path, "the path doesn't exist"}
		}
	}

	if c.Chunk < 1 {
		return &InputPathError{"chunk", fmt.Sprintf("%d", c.Chunk), "chunk size must be positive"}
	}
	if len(c.Kmer) == 0 {
		return &InputPathError{"kmer", "", "at least one k-mer size is required"}
	}
	if len(c.Abundance) == 0 {
		return &InputPathError{"abundance", "", "at least one abundance threshold is required"}
	}

	// work off absolute paths only, no component may rely on the cwd
	c.GFA = abs(c.GFA)
	c.BAM = abs(c.BAM)
	c.Fastq = abs(c.Fastq)
	c.Index = abs(c.Index)
	c.Out = abs(c.Out)
	if c.RefDir != "" {
		c.RefDir = abs(c.RefDir)
	}
	if c.Rbxu != "" {
		c.Rbxu = abs(c.Rbxu)
	}

	return nil
}

func abs(p string) string {
	a, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return a
}

// sortDesc orders a parameter list in place, largest first
func sortDesc(vals []int) {
	sort.Sort(sort.Reverse(sort.IntSlice(vals)))
}
