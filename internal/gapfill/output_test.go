package gapfill

import (
	"reflect"
	"strings"
	"testing"

	"github.com/anne-gcd/MTG10X/internal/gfa"
)

func Test_edgeLines(t *testing.T) {
	fill := strings.Repeat("A", 30)

	tests := []struct {
		name        string
		strand      Strand
		left, right *Scaffold
		want        []string
	}{
		{
			"forward fill between + flanks",
			Forward,
			testScaffold("s1", "+", leftSide, 100),
			testScaffold("s2", "+", rightSide, 100),
			[]string{
				"E\t*\ts1+\tfill+\t90\t100$\t0\t10\t*",
				"E\t*\tfill+\ts2+\t20\t30$\t0\t10\t*",
			},
		},
		{
			"reverse fill between + flanks",
			Reverse,
			testScaffold("s1", "+", leftSide, 100),
			testScaffold("s2", "+", rightSide, 100),
			[]string{
				"E\t*\ts1+\tfill-\t90\t100$\t20\t30$\t*",
				"E\t*\tfill-\ts2+\t0\t10\t0\t10\t*",
			},
		},
		{
			"forward fill between - flanks",
			Forward,
			testScaffold("s1", "-", leftSide, 100),
			testScaffold("s2", "-", rightSide, 100),
			[]string{
				"E\t*\ts1-\tfill+\t0\t10\t0\t10\t*",
				"E\t*\tfill+\ts2-\t20\t30$\t90\t100$\t*",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sol := Solution{
				Name:    "fill",
				Seq:     fill,
				Strand:  tt.strand,
				Overlap: 10,
			}
			got := edgeLines(sol, tt.left, tt.right)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("edgeLines() =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(tt.want, "\n"))
			}
		})
	}
}

func Test_buildRecord(t *testing.T) {
	gap := &gfa.Gap{
		ID:    "*",
		Left:  gfa.Ref{Name: "s1", Orient: "+"},
		Right: gfa.Ref{Name: "s2", Orient: "+"},
		Dist:  120,
		Raw:   "G\t*\ts1+\ts2+\t120\t*",
	}
	left := testScaffold("s1", "+", leftSide, 100)
	right := testScaffold("s2", "+", rightSide, 100)

	t.Run("fallback to the original gap line", func(t *testing.T) {
		record := buildRecord(gap, left, right, nil)
		if record.Filled() {
			t.Error("record without solutions should not be filled")
		}
		if !reflect.DeepEqual(record.Lines, []string{gap.Raw}) {
			t.Errorf("Lines = %v, want the original gap line", record.Lines)
		}
	})

	t.Run("accepted solutions become segment and edge lines", func(t *testing.T) {
		solutions := []Solution{
			{Name: "fill_fwd", Seq: strings.Repeat("A", 30), Strand: Forward, K: 41, A: 3, Grade: "AA", Overlap: 10},
			{Name: "fill_rev", Seq: strings.Repeat("T", 30), Strand: Reverse, K: 41, A: 3, Grade: "AB", Overlap: 10},
		}
		record := buildRecord(gap, left, right, solutions)
		if !record.Filled() {
			t.Fatal("record with solutions should be filled")
		}
		// one S line and two E lines per solution, no gap line
		if len(record.Lines) != 6 {
			t.Fatalf("Lines = %d, want 6", len(record.Lines))
		}
		if record.Lines[0] != "S\tfill_fwd\t30\t"+strings.Repeat("A", 30) {
			t.Errorf("unexpected S line: %s", record.Lines[0])
		}
		for _, line := range record.Lines {
			if strings.HasPrefix(line, "G\t") {
				t.Errorf("filled record contains a gap line: %s", line)
			}
		}
	})
}

func Test_solutionName(t *testing.T) {
	c := &Candidate{Strand: Reverse, Solution: "2/3"}
	got := solutionName("s1_s2", 120, c, 41, 3)
	want := "s1_s2.g120.k41.a3.rev_sol_2-3"
	if got != want {
		t.Errorf("solutionName() = %s, want %s", got, want)
	}
}
