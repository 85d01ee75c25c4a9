package gapfill

import (
	"fmt"
	"strings"

	"github.com/anne-gcd/MTG10X/internal/gfa"
)

// Solution is an accepted gap-fill with the placement geometry needed to
// link it to both flanks in the output graph
type Solution struct {
	// Name of the fill segment in the output graph
	Name string
	Seq  string

	Strand Strand
	K      int
	A      int
	Grade  string

	// Overlap (ext+k) shared with each flank
	Overlap int
}

// GapRecord is the final outcome for one gap: the GFA lines of its accepted
// fills, or the original gap line untouched when nothing was ever accepted.
// Exactly one record exists per input gap
type GapRecord struct {
	Gap       string
	Lines     []string
	Solutions []Solution
}

// Filled reports whether the record carries at least one accepted fill
func (r *GapRecord) Filled() bool {
	return len(r.Solutions) > 0
}

// buildRecord reduces the accepted solutions of a finished sweep to the
// gap's record: per solution a fill segment line plus its two edges, or the
// original gap line as fallback
func buildRecord(gap *gfa.Gap, left, right *Scaffold, accepted []Solution) GapRecord {
	record := GapRecord{Gap: gap.Label(), Solutions: accepted}

	if len(accepted) == 0 {
		record.Lines = []string{gap.Raw}
		return record
	}

	for _, sol := range accepted {
		record.Lines = append(record.Lines, gfa.SegmentLine(sol.Name, sol.Seq))
		record.Lines = append(record.Lines, edgeLines(sol, left, right)...)
	}
	return record
}

// solutionName derives the output segment name of an accepted candidate
func solutionName(label string, gapLen int, c *Candidate, k, a int) string {
	return fmt.Sprintf("%s.g%d.k%d.a%d.%s_sol_%s",
		label, gapLen, k, a, c.Strand, strings.ReplaceAll(c.Solution, "/", "-"))
}

// edgeLines renders the two E lines linking a fill to its flanks. The fill
// overlaps each flank by Overlap bases; reverse-strand fills are oriented
// "-" with their coordinates mirrored
func edgeLines(sol Solution, left, right *Scaffold) []string {
	fillLen := len(sol.Seq)
	ov := sol.Overlap

	leftBeg, leftEnd := gapFace(left, ov)
	rightBeg, rightEnd := gapFace(right, ov)

	if sol.Strand == Forward {
		fill := gfa.Ref{Name: sol.Name, Orient: "+"}
		return []string{
			gfa.EdgeLine(left.Ref, fill, leftBeg, leftEnd, gfa.Pos(0, fillLen), gfa.Pos(ov, fillLen)),
			gfa.EdgeLine(fill, right.Ref, gfa.Pos(fillLen-ov, fillLen), gfa.Pos(fillLen, fillLen), rightBeg, rightEnd),
		}
	}

	fill := gfa.Ref{Name: sol.Name, Orient: "-"}
	return []string{
		gfa.EdgeLine(left.Ref, fill, leftBeg, leftEnd, gfa.Pos(fillLen-ov, fillLen), gfa.Pos(fillLen, fillLen)),
		gfa.EdgeLine(fill, right.Ref, gfa.Pos(0, fillLen), gfa.Pos(ov, fillLen), rightBeg, rightEnd),
	}
}

// gapFace returns the overlap interval on a flank's gap-facing end, in the
// segment's own coordinates
func gapFace(s *Scaffold, ov int) (string, string) {
	if s.gapAtTail() {
		return gfa.Pos(s.Len-ov, s.Len), gfa.Pos(s.Len, s.Len)
	}
	return gfa.Pos(0, s.Len), gfa.Pos(ov, s.Len)
}
