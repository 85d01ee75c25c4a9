package gapfill

import (
	"fmt"
	"os"
	"strings"
)

// Grade is a per-axis alignment quality category, A (best) to D (worst)
type Grade int

const (
	// GradeA marks a near-perfect alignment on an axis
	GradeA Grade = iota

	GradeB
	GradeC

	// GradeD is the worst grade and the default when no row matches
	GradeD
)

// String returns the single-letter rendering of the grade
func (g Grade) String() string {
	switch g {
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	}
	return "D"
}

// parseGrade reads a grade letter from a stats row, defaulting
// to D when unrecognized
func parseGrade(s string) Grade {
	switch s {
	case "A":
		return GradeA
	case "B":
		return GradeB
	case "C":
		return GradeC
	}
	return GradeD
}

// best reduces a grade list to its best member, D when the list is empty
func best(grades []Grade) Grade {
	b := GradeD
	for _, g := range grades {
		if g < b {
			b = g
		}
	}
	return b
}

// refQryRow is one candidate-vs-reference alignment statistics row
type refQryRow struct {
	Strand   string
	Solution string
	Ref      string
	Quality  Grade
}

// qryQryRow is one candidate-vs-reverse-complement alignment statistics row
type qryQryRow struct {
	Solution1 string
	Solution2 string
	Quality   Grade
}

// parseRefQryStats reads the reference-vs-query table. Rows with too few
// columns and header rows are skipped
func parseRefQryStats(path string) (rows []refQryRow, err error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file %s: %v", path, err)
	}

	for _, line := range strings.Split(string(contents), "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 22 || cols[0] == "Gap" {
			continue
		}
		rows = append(rows, refQryRow{
			Strand:   cols[5],
			Solution: cols[6],
			Ref:      cols[8],
			Quality:  parseGrade(cols[21]),
		})
	}
	return rows, nil
}

// parseQryQryStats reads the query-vs-reverse-complement-query table
func parseQryQryStats(path string) (rows []qryQryRow, err error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read stats file %s: %v", path, err)
	}

	for _, line := range strings.Split(string(contents), "\n") {
		cols := strings.Split(line, "\t")
		if len(cols) < 21 || cols[0] == "Gap" {
			continue
		}
		rows = append(rows, qryQryRow{
			Solution1: cols[5],
			Solution2: cols[7],
			Quality:   parseGrade(cols[20]),
		})
	}
	return rows, nil
}

// Candidate is one assembler fill sequence pending a quality verdict
type Candidate struct {
	// ID is the insertion id with its solution suffix, eg
	// "bkpt1_GapID.8_9_Gaplen.120_sol_1/2"
	ID  string
	Seq string

	Strand   Strand
	Solution string // "x/y"

	// set by the scorer
	Grade    string
	Accepted bool
}

// newCandidate tags an insertion with its strand (from the breakpoint pair
// it satisfies) and its solution index, defaulting to 1/1
func newCandidate(ins Insertion) Candidate {
	solution := "1/1"
	if strings.Contains(ins.Desc, "solution") {
		fields := strings.Fields(ins.Desc)
		solution = fields[len(fields)-1]
	}

	strand := Forward
	if strings.HasPrefix(ins.ID, "bkpt2") {
		strand = Reverse
	}

	return Candidate{
		ID:       ins.ID + "_sol_" + solution,
		Seq:      ins.Seq,
		Strand:   strand,
		Solution: solution,
	}
}

// scorer reduces the two alignment-statistics tables into per-candidate
// accept/reject verdicts
type scorer struct {
	refRows  []refQryRow
	selfRows []qryQryRow

	// flankMode grades left and right flank axes separately instead of a
	// single reference axis
	flankMode bool
	leftName  string
	rightName string

	ext int
}

// score sets the candidate's composite grade and verdict. The composite is
// reference+self in single-reference mode and left+right+self in flank mode
func (s *scorer) score(c *Candidate) {
	self := best(s.selfGrades(c))

	if s.flankMode {
		left := best(s.refGrades(c, s.leftName))
		right := best(s.refGrades(c, s.rightName))
		c.Grade = left.String() + right.String() + self.String()
		c.Accepted = s.longEnough(c) && acceptFlank(left, right, self)
		return
	}

	ref := best(s.refGrades(c, ""))
	c.Grade = ref.String() + self.String()
	c.Accepted = s.longEnough(c) && ref <= GradeB && self <= GradeB
}

// longEnough gates out fills that never grew past the two flank extensions
func (s *scorer) longEnough(c *Candidate) bool {
	return len(c.Seq) > 2*s.ext
}

// acceptFlank is the flank-mode decision table. The asymmetry between the
// left and right requirements is kept exactly as the quality model defines it
func acceptFlank(left, right, self Grade) bool {
	switch left {
	case GradeA:
		return right <= GradeB && self <= GradeB
	case GradeB:
		return right == GradeA && self <= GradeB
	}
	return false
}

// refGrades collects the reference-axis grades of the rows matching the
// candidate's solution and strand. A non-empty refName further restricts the
// rows to one flank's alignments
func (s *scorer) refGrades(c *Candidate, refName string) (grades []Grade) {
	for _, row := range s.refRows {
		if !strings.Contains(c.ID, row.Solution) {
			continue
		}
		if row.Strand != c.Strand.String() {
			continue
		}
		if refName != "" && row.Ref != refName {
			continue
		}
		grades = append(grades, row.Quality)
	}
	return grades
}

// selfGrades collects the self-consistency grades of the rows where either
// solution slot names the candidate's solution index on its strand
func (s *scorer) selfGrades(c *Candidate) (grades []Grade) {
	for _, row := range s.selfRows {
		if s.slotMatches(row.Solution1, c) || s.slotMatches(row.Solution2, c) {
			grades = append(grades, row.Quality)
		}
	}
	return grades
}

func (s *scorer) slotMatches(slot string, c *Candidate) bool {
	return strings.Contains(slot, c.Solution) && strings.Contains(slot, c.Strand.String())
}
