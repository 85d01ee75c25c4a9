// Package bx gathers linked-read barcode evidence: it counts BX tags over
// regions of the mapped-reads BAM and resolves barcode lists back to reads
// through an offset index over the FASTQ file
package bx

import (
	"fmt"
	"os"

	"github.com/biogo/hts/bam"
	"github.com/biogo/hts/sam"
)

// Region is a half-open interval on a named reference sequence
type Region struct {
	Ref   string
	Start int
	End   int
}

// String renders the region in samtools notation
func (r Region) String() string {
	return fmt.Sprintf("%s:%d-%d", r.Ref, r.Start, r.End)
}

// overlaps reports whether a record's alignment intersects the region. The
// BAM index resolves to 16 kbp bins, so an index iterator can yield records
// lying entirely outside the region proper
func (r Region) overlaps(rec *sam.Record) bool {
	return rec.End() > r.Start && rec.Pos < r.End
}

var bxTag = sam.NewTag("BX")

// CountBarcodes accumulates into counts the number of reads carrying each
// BX barcode within the region. The BAM must have a .bai index next to it
func CountBarcodes(bamFile string, region Region, counts map[string]int) error {
	f, err := os.Open(bamFile)
	if err != nil {
		return fmt.Errorf("failed to open BAM file %s: %v", bamFile, err)
	}
	defer f.Close()

	br, err := bam.NewReader(f, 0)
	if err != nil {
		return fmt.Errorf("failed to read BAM file %s: %v", bamFile, err)
	}
	defer br.Close()

	idxFile, err := os.Open(bamFile + ".bai")
	if err != nil {
		return fmt.Errorf("failed to open BAM index %s.bai: %v", bamFile, err)
	}
	defer idxFile.Close()

	idx, err := bam.ReadIndex(idxFile)
	if err != nil {
		return fmt.Errorf("failed to read BAM index %s.bai: %v", bamFile, err)
	}

	var ref *sam.Reference
	for _, r := range br.Header().Refs() {
		if r.Name() == region.Ref {
			ref = r
			break
		}
	}
	if ref == nil {
		return fmt.Errorf("no reference named %s in %s", region.Ref, bamFile)
	}

	chunks, err := idx.Chunks(ref, region.Start, region.End)
	if err != nil {
		return fmt.Errorf("failed to resolve chunks for %s: %v", region, err)
	}

	it, err := bam.NewIterator(br, chunks)
	if err != nil {
		return fmt.Errorf("failed to iterate %s over %s: %v", bamFile, region, err)
	}
	for it.Next() {
		rec := it.Record()
		if !region.overlaps(rec) {
			continue
		}
		aux := rec.AuxFields.Get(bxTag)
		if aux == nil {
			continue
		}
		if barcode, ok := aux.Value().(string); ok {
			counts[barcode]++
		}
	}
	if err := it.Close(); err != nil {
		return fmt.Errorf("failed reading %s over %s: %v", bamFile, region, err)
	}

	return nil
}
