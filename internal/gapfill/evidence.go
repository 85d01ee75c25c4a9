package gapfill

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/anne-gcd/MTG10X/internal/bx"
)

// EvidenceSet is the union of barcode evidence from both flanking chunks
// and the read set it resolves to
type EvidenceSet struct {
	// barcodes retained after frequency filtering, sorted
	Barcodes []string

	// path to the union reads file handed to the assembler
	ReadsFile string

	NbBarcodes int
	NbReads    int
}

// buildEvidence merges the barcode counts of the passed regions, keeps the
// barcodes whose combined count reaches freq, and materializes the union
// read set at readsPath. The transient barcode list at bxuPath is removed
// once the read set exists. Both paths are gap- and chunk-qualified by the
// caller so concurrent gap tasks never collide
func buildEvidence(barcodes BarcodeSource, reads ReadSource, regions []bx.Region, freq int, bxuPath, readsPath string) (*EvidenceSet, error) {
	counts := make(map[string]int)
	for _, region := range regions {
		c, err := barcodes.Barcodes(region)
		if err != nil {
			return nil, fmt.Errorf("failed to extract barcodes over %s: %v", region, err)
		}
		for barcode, n := range c {
			counts[barcode] += n
		}
	}

	var kept []string
	for barcode, n := range counts {
		if n >= freq {
			kept = append(kept, barcode)
		}
	}
	sort.Strings(kept) // deterministic files and read order

	if err := os.WriteFile(bxuPath, []byte(strings.Join(kept, "\n")+"\n"), 0666); err != nil {
		return nil, fmt.Errorf("failed to write barcode union %s: %v", bxuPath, err)
	}

	f, err := os.Create(readsPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create union reads file %s: %v", readsPath, err)
	}
	w := bufio.NewWriter(f)
	n, err := reads.Reads(kept, w)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to extract union reads: %v", err)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write union reads file %s: %v", readsPath, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write union reads file %s: %v", readsPath, err)
	}

	// the barcode list was only needed to build the read set
	os.Remove(bxuPath)

	return &EvidenceSet{
		Barcodes:   kept,
		ReadsFile:  readsPath,
		NbBarcodes: len(kept),
		NbReads:    n,
	}, nil
}

// countFastqReads returns the number of records of a FASTQ file,
// used when a pre-extracted union reads file is supplied
func countFastqReads(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open reads file %s: %v", path, err)
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 16*1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read %s: %v", path, err)
	}
	return lines / 4, nil
}
