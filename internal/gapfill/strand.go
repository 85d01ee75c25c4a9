package gapfill

// strandSet tracks which strands hold an accepted fill for a gap. The flags
// are monotonic: once both are set the gap is solved for the rest of its
// sweep
type strandSet struct {
	fwd bool
	rev bool
}

// accept records an accepted fill on a strand
func (s *strandSet) accept(strand Strand) {
	if strand == Reverse {
		s.rev = true
	} else {
		s.fwd = true
	}
}

// solved reports whether both strands hold an accepted fill
func (s *strandSet) solved() bool {
	return s.fwd && s.rev
}
