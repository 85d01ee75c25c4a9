package gapfill

import (
	"fmt"

	"github.com/anne-gcd/MTG10X/internal/bx"
	"github.com/anne-gcd/MTG10X/internal/gfa"
)

// side of the gap a scaffold flanks
type side int

const (
	leftSide side = iota
	rightSide
)

// Scaffold is one flank of a gap: an oriented view over a graph segment.
// Its sequence is held in gap orientation, so downstream slicing never
// branches on the stored orientation
type Scaffold struct {
	Ref  gfa.Ref
	Len  int
	side side
	seq  string
}

// newScaffold resolves an oriented gap reference against the graph and loads
// the flank sequence, reverse complemented for "-" references
func newScaffold(g *gfa.Graph, ref gfa.Ref, s side) (*Scaffold, error) {
	seg, err := g.Segment(ref.Name)
	if err != nil {
		return nil, err
	}

	seq, err := seg.Seq()
	if err != nil {
		return nil, err
	}
	if len(seq) != seg.Length {
		return nil, fmt.Errorf("segment %s: sequence length %d doesn't match declared length %d", ref.Name, len(seq), seg.Length)
	}
	if ref.Orient == "-" {
		seq = reverseComplement(seq)
	}

	return &Scaffold{
		Ref:  ref,
		Len:  seg.Length,
		side: s,
		seq:  seq,
	}, nil
}

// Seq returns the scaffold sequence in gap orientation
func (s *Scaffold) Seq() string {
	return s.seq
}

// gapAtTail reports whether the gap abuts the tail of the stored segment
// sequence. The same predicate places both the evidence chunk and the
// overlap coordinates of an accepted fill
func (s *Scaffold) gapAtTail() bool {
	return (s.side == leftSide) == (s.Ref.Orient == "+")
}

// Chunk resolves the flank-adjacent region barcodes are collected from,
// in the segment's own coordinates. A requested size larger than the
// scaffold is clamped to its length; the bool reports the clamping so the
// caller can surface a warning
func (s *Scaffold) Chunk(requested int) (bx.Region, bool) {
	c := requested
	clamped := false
	if c > s.Len {
		c = s.Len
		clamped = true
	}

	if s.gapAtTail() {
		return bx.Region{Ref: s.Ref.Name, Start: s.Len - c, End: s.Len}, clamped
	}
	return bx.Region{Ref: s.Ref.Name, Start: 0, End: c}, clamped
}
