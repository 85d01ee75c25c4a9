package bx

import (
	"bufio"
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"strings"
)

// Span locates one 4-line FASTQ record by byte offset and length
type Span struct {
	Off int64
	Len int
}

// Index maps each barcode to the spans of the reads that carry it
type Index map[string][]Span

// Build scans a BX-tagged FASTQ file and records a span per read,
// keyed by the BX:Z token of its header line
func Build(fastqFile string) (Index, error) {
	f, err := os.Open(fastqFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open FASTQ file %s: %v", fastqFile, err)
	}
	defer f.Close()

	ix := make(Index)
	r := bufio.NewReader(f)
	var off int64
	for {
		header, err := r.ReadString('\n')
		if err == io.EOF && header == "" {
			break
		}
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("failed to read FASTQ file %s: %v", fastqFile, err)
		}
		if !strings.HasPrefix(header, "@") {
			return nil, fmt.Errorf("malformed FASTQ record at offset %d in %s", off, fastqFile)
		}

		recLen := len(header)
		for i := 0; i < 3; i++ {
			line, err := r.ReadString('\n')
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read FASTQ file %s: %v", fastqFile, err)
			}
			recLen += len(line)
		}

		if barcode := headerBarcode(header); barcode != "" {
			ix[barcode] = append(ix[barcode], Span{Off: off, Len: recLen})
		}
		off += int64(recLen)
	}

	return ix, nil
}

// headerBarcode extracts the BX:Z barcode value from a FASTQ header line,
// or "" when the read is untagged
func headerBarcode(header string) string {
	for _, field := range strings.Fields(header) {
		if strings.HasPrefix(field, "BX:Z:") {
			return strings.TrimPrefix(field, "BX:Z:")
		}
	}
	return ""
}

// Write persists the index as gzip-compressed gob
func (ix Index) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file %s: %v", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	if err := gob.NewEncoder(gz).Encode(ix); err != nil {
		return fmt.Errorf("failed to encode index to %s: %v", path, err)
	}
	return nil
}

// ReadIndex loads an index written by Write. The index is loaded once per
// run and shared read-only between gap tasks
func ReadIndex(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file %s: %v", path, err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress index file %s: %v", path, err)
	}
	defer gz.Close()

	var ix Index
	if err := gob.NewDecoder(gz).Decode(&ix); err != nil {
		return nil, fmt.Errorf("failed to decode index file %s: %v", path, err)
	}
	return ix, nil
}
