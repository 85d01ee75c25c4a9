package bx

import (
	"fmt"
	"io"
	"os"
	"sort"
)

// ExtractReads writes to w every FASTQ record whose barcode is in barcodes,
// in file order, and returns the number of reads written
func (ix Index) ExtractReads(fastqFile string, barcodes []string, w io.Writer) (int, error) {
	var spans []Span
	for _, barcode := range barcodes {
		spans = append(spans, ix[barcode]...)
	}
	// file order keeps the reads deterministic and the I/O sequential
	sort.Slice(spans, func(i, j int) bool { return spans[i].Off < spans[j].Off })

	f, err := os.Open(fastqFile)
	if err != nil {
		return 0, fmt.Errorf("failed to open FASTQ file %s: %v", fastqFile, err)
	}
	defer f.Close()

	var buf []byte
	for _, span := range spans {
		if cap(buf) < span.Len {
			buf = make([]byte, span.Len)
		}
		buf = buf[:span.Len]
		if _, err := f.ReadAt(buf, span.Off); err != nil {
			return 0, fmt.Errorf("failed to read record at offset %d in %s: %v", span.Off, fastqFile, err)
		}
		if _, err := w.Write(buf); err != nil {
			return 0, fmt.Errorf("failed to write read set: %v", err)
		}
	}

	return len(spans), nil
}
