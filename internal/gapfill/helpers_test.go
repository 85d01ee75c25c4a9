package gapfill

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/anne-gcd/MTG10X/internal/bx"
	"github.com/anne-gcd/MTG10X/internal/gfa"
)

// fakeBarcodes serves canned per-reference barcode counts
type fakeBarcodes struct {
	counts map[string]map[string]int // reference name -> barcode -> count
}

func (f *fakeBarcodes) Barcodes(region bx.Region) (map[string]int, error) {
	out := make(map[string]int)
	for barcode, n := range f.counts[region.Ref] {
		out[barcode] = n
	}
	return out, nil
}

// fakeReads writes one synthetic FASTQ record per requested barcode
type fakeReads struct{}

func (f *fakeReads) Reads(barcodes []string, w io.Writer) (int, error) {
	for _, barcode := range barcodes {
		fmt.Fprintf(w, "@read_%s BX:Z:%s\nACGTACGT\n+\nFFFFFFFF\n", barcode, barcode)
	}
	return len(barcodes), nil
}

// fakeAssembler records every (k, a) invocation and answers from a script
type fakeAssembler struct {
	mu    sync.Mutex
	calls [][2]int
	fill  func(req FillRequest) ([]Insertion, error)
}

func (f *fakeAssembler) Fill(req FillRequest) ([]Insertion, error) {
	f.mu.Lock()
	f.calls = append(f.calls, [2]int{req.K, req.Abundance})
	f.mu.Unlock()
	if f.fill == nil {
		return nil, &EmptyAssemblerOutput{K: req.K, A: req.Abundance}
	}
	return f.fill(req)
}

// fakeStats writes canned statistics tables where the real script would
type fakeStats struct {
	refRows  []string
	selfRows []string
	err      error
}

func (f *fakeStats) ComputeStats(query, ref string, ext int, prefix, outDir string) (StatsPaths, error) {
	if f.err != nil {
		return StatsPaths{}, f.err
	}
	p := StatsPaths{
		RefQry: filepath.Join(outDir, prefix+".ref_qry.alignment.stats"),
		QryQry: filepath.Join(outDir, prefix+".qry_qry.alignment.stats"),
	}
	if err := os.WriteFile(p.RefQry, []byte(strings.Join(f.refRows, "\n")+"\n"), 0666); err != nil {
		return p, err
	}
	if err := os.WriteFile(p.QryQry, []byte(strings.Join(f.selfRows, "\n")+"\n"), 0666); err != nil {
		return p, err
	}
	return p, nil
}

// refStatsRow renders a reference-vs-query row carrying only the columns
// the scorer reads
func refStatsRow(strand, solution, ref, quality string) string {
	cols := make([]string, 22)
	for i := range cols {
		cols[i] = "."
	}
	cols[5] = strand
	cols[6] = solution
	cols[8] = ref
	cols[21] = quality
	return strings.Join(cols, "\t")
}

// selfStatsRow renders a query-vs-reverse-complement row
func selfStatsRow(solution1, solution2, quality string) string {
	cols := make([]string, 21)
	for i := range cols {
		cols[i] = "."
	}
	cols[5] = solution1
	cols[7] = solution2
	cols[20] = quality
	return strings.Join(cols, "\t")
}

// testScaffold builds a scaffold directly, with a synthetic sequence in
// gap orientation
func testScaffold(name, orient string, s side, length int) *Scaffold {
	seq := strings.Repeat("ACGT", length/4+1)[:length]
	return &Scaffold{
		Ref:  gfa.Ref{Name: name, Orient: orient},
		Len:  length,
		side: s,
		seq:  seq,
	}
}

// newTestSweep wires a sweep over fakes for the canonical two-flank gap
func newTestSweep(t *testing.T, asm Assembler, stats StatsRunner, kmers, abundances []int, force bool) *sweep {
	t.Helper()
	dir := t.TempDir()

	return &sweep{
		log:        zap.NewNop().Sugar(),
		asm:        asm,
		stats:      stats,
		label:      "s1_s2",
		gapLen:     120,
		left:       testScaffold("s1", "+", leftSide, 100),
		right:      testScaffold("s2", "+", rightSide, 100),
		kmers:      kmers,
		abundances: abundances,
		reads:      filepath.Join(dir, "union.rbxu.fastq"),
		force:      force,
		ext:        5,
		maxNodes:   1000,
		maxLength:  10000,
		nbCores:    1,
		refFile:    filepath.Join(dir, "ref.fasta"),
		mtgDir:     dir,
		statsDir:   dir,
		filePrefix: "test.gfa.s1_s2.g120.c60",
	}
}

// solvingInsertions is the canonical pair of candidates, one per strand
func solvingInsertions() []Insertion {
	return []Insertion{
		{ID: "bkpt1_GapID.s1_s2_Gaplen.120", Desc: "solution 1/2", Seq: strings.Repeat("A", 20)},
		{ID: "bkpt2_GapID.s1_s2_Gaplen.120", Desc: "solution 2/2", Seq: strings.Repeat("T", 20)},
	}
}

// solvingStats grades the canonical candidates A on every axis, under both
// reference modes
func solvingStats() *fakeStats {
	return &fakeStats{
		refRows: []string{
			refStatsRow("fwd", "bkpt1_GapID.s1_s2_Gaplen.120_sol_1/2", "s1", "A"),
			refStatsRow("fwd", "bkpt1_GapID.s1_s2_Gaplen.120_sol_1/2", "s2", "A"),
			refStatsRow("rev", "bkpt2_GapID.s1_s2_Gaplen.120_sol_2/2", "s1", "A"),
			refStatsRow("rev", "bkpt2_GapID.s1_s2_Gaplen.120_sol_2/2", "s2", "A"),
		},
		selfRows: []string{
			selfStatsRow("fwd_1/2", "rev_2/2", "A"),
		},
	}
}
