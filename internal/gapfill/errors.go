package gapfill

import "fmt"

// MissingReferenceError reports that no reference file was found for a gap
// in reference mode. Non-fatal: the quality evaluation degrades to the
// flanking contigs
type MissingReferenceError struct {
	Gap string
	Dir string
}

func (e *MissingReferenceError) Error() string {
	return fmt.Sprintf("no reference file for gap %s in %s", e.Gap, e.Dir)
}

// EmptyAssemblerOutput reports that a (k, a) iteration produced no candidate
// fill, either because the assembler found nothing or because its expected
// artifact is missing. Non-fatal: the sweep moves on to the next pair
type EmptyAssemblerOutput struct {
	K    int
	A    int
	Path string
}

func (e *EmptyAssemblerOutput) Error() string {
	return fmt.Sprintf("no candidate fill for k=%d a=%d (%s)", e.K, e.A, e.Path)
}

// MissingAlignmentStats reports that an expected alignment-statistics
// artifact is absent. Non-fatal: the candidates of that iteration are left
// unscored and the sweep continues
type MissingAlignmentStats struct {
	Path string
}

func (e *MissingAlignmentStats) Error() string {
	return fmt.Sprintf("alignment stats file %s doesn't exist", e.Path)
}
