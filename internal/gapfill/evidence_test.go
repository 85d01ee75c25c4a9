package gapfill

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/anne-gcd/MTG10X/internal/bx"
)

func Test_buildEvidence(t *testing.T) {
	regions := []bx.Region{
		{Ref: "s1", Start: 700, End: 1000},
		{Ref: "s2", Start: 0, End: 300},
	}

	tests := []struct {
		name         string
		left, right  map[string]int
		freq         int
		wantBarcodes []string
	}{
		{
			"combined count reaches the threshold",
			map[string]int{"b1": 3},
			map[string]int{"b1": 1},
			2,
			[]string{"b1"},
		},
		{
			"count on one side only is dropped",
			map[string]int{"b2": 1},
			map[string]int{},
			2,
			nil,
		},
		{
			"mixed retain and drop, sorted",
			map[string]int{"b3": 3, "b1": 1, "b2": 1},
			map[string]int{"b1": 1, "b2": 2},
			2,
			[]string{"b1", "b2", "b3"},
		},
		{
			"threshold of one keeps everything",
			map[string]int{"b1": 1},
			map[string]int{"b2": 1},
			1,
			[]string{"b1", "b2"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			barcodes := &fakeBarcodes{counts: map[string]map[string]int{
				"s1": tt.left,
				"s2": tt.right,
			}}
			bxuPath := filepath.Join(dir, "union.bxu")
			readsPath := filepath.Join(dir, "union.rbxu.fastq")

			evidence, err := buildEvidence(barcodes, &fakeReads{}, regions, tt.freq, bxuPath, readsPath)
			if err != nil {
				t.Fatalf("buildEvidence() error = %v", err)
			}

			if !reflect.DeepEqual(evidence.Barcodes, tt.wantBarcodes) {
				t.Errorf("barcodes = %v, want %v", evidence.Barcodes, tt.wantBarcodes)
			}
			if evidence.NbBarcodes != len(tt.wantBarcodes) {
				t.Errorf("NbBarcodes = %d, want %d", evidence.NbBarcodes, len(tt.wantBarcodes))
			}
			if evidence.NbReads != len(tt.wantBarcodes) {
				t.Errorf("NbReads = %d, want %d", evidence.NbReads, len(tt.wantBarcodes))
			}

			// the transient barcode list is gone once the read set exists
			if _, err := os.Stat(bxuPath); !os.IsNotExist(err) {
				t.Errorf("barcode union file %s should have been removed", bxuPath)
			}

			contents, err := os.ReadFile(readsPath)
			if err != nil {
				t.Fatalf("failed to read union reads: %v", err)
			}
			for _, barcode := range tt.wantBarcodes {
				if !strings.Contains(string(contents), "BX:Z:"+barcode) {
					t.Errorf("union reads missing barcode %s", barcode)
				}
			}
		})
	}
}

func Test_countFastqReads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reads.fastq")
	contents := "@r1\nACGT\n+\nFFFF\n@r2\nACGT\n+\nFFFF\n"
	if err := os.WriteFile(path, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}

	n, err := countFastqReads(path)
	if err != nil {
		t.Fatalf("countFastqReads() error = %v", err)
	}
	if n != 2 {
		t.Errorf("countFastqReads() = %d, want 2", n)
	}
}
