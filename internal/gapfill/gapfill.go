// Package gapfill orchestrates the per-gap filling pipeline: it derives
// barcode evidence regions from a gap's flanking scaffolds, builds the union
// read set, drives MindTheGap over a descending (k-mer, abundance) parameter
// sweep, grades every candidate fill from alignment statistics, and merges
// the accepted fills back into an output GFA
package gapfill

import (
	"io"

	"github.com/anne-gcd/MTG10X/internal/bx"
)

// Strand marks which breakpoint pair a candidate fill satisfies
type Strand int

const (
	// Forward fills were assembled from the left flank toward the right (bkpt1)
	Forward Strand = iota

	// Reverse fills were assembled from the reverse-complement anchors (bkpt2)
	Reverse
)

// String returns the strand label used in alignment statistics rows
func (s Strand) String() string {
	if s == Reverse {
		return "rev"
	}
	return "fwd"
}

// BarcodeSource counts barcode occurrences over one region of the assembly
type BarcodeSource interface {
	Barcodes(region bx.Region) (map[string]int, error)
}

// ReadSource writes the reads carrying a set of barcodes and
// returns how many were written
type ReadSource interface {
	Reads(barcodes []string, w io.Writer) (int, error)
}

// Assembler runs the external sequence assembly between the breakpoint
// anchors. The call is synchronous and blocks for the duration of assembly
type Assembler interface {
	Fill(req FillRequest) ([]Insertion, error)
}

// StatsRunner aligns candidate fills against a reference and writes the two
// tabular statistics artifacts the quality scorer consumes
type StatsRunner interface {
	ComputeStats(query, ref string, ext int, prefix, outDir string) (StatsPaths, error)
}

// bamBarcodes is the production BarcodeSource, backed by the mapped-reads BAM
type bamBarcodes struct {
	bam string
}

func (b *bamBarcodes) Barcodes(region bx.Region) (map[string]int, error) {
	counts := make(map[string]int)
	if err := bx.CountBarcodes(b.bam, region, counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// indexedReads is the production ReadSource, backed by the FASTQ file
// and its barcode index
type indexedReads struct {
	fastq string
	index bx.Index
}

func (r *indexedReads) Reads(barcodes []string, w io.Writer) (int, error) {
	return r.index.ExtractReads(r.fastq, barcodes, w)
}
