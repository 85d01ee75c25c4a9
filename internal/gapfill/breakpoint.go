package gapfill

import "fmt"

// BreakpointInput is the four oriented k-mer anchors handed to the assembler
// for one k: a forward pair (bkpt1) reading left flank into right flank, and
// a reverse-complement pair (bkpt2) with the flank roles swapped. The anchors
// sit one extension margin away from each flank boundary
type BreakpointInput struct {
	K       int
	Records [4]fastaRecord
}

// buildBreakpoints derives the breakpoint anchors for one k. Pure: both
// flank sequences are taken in gap orientation
func buildBreakpoints(label string, gapLen int, left, right *Scaffold, ext, k int) (*BreakpointInput, error) {
	if left.Len < ext+k {
		return nil, fmt.Errorf("left flank %s (%d bp) is shorter than ext+k (%d bp)", left.Ref.Name, left.Len, ext+k)
	}
	if right.Len < ext+k {
		return nil, fmt.Errorf("right flank %s (%d bp) is shorter than ext+k (%d bp)", right.Ref.Name, right.Len, ext+k)
	}

	seqL, seqR := left.Seq(), right.Seq()
	leftKmer := seqL[left.Len-ext-k : left.Len-ext]
	rightKmer := seqR[ext : ext+k]

	record := func(pair int, side, scaffold, seq string) fastaRecord {
		return fastaRecord{
			id:   fmt.Sprintf("bkpt%d_GapID.%s_Gaplen.%d", pair, label, gapLen),
			desc: fmt.Sprintf("%s_kmer.%s_len.%d offset_rm", side, scaffold, k),
			seq:  seq,
		}
	}

	return &BreakpointInput{
		K: k,
		Records: [4]fastaRecord{
			record(1, "left", left.Ref.Name, leftKmer),
			record(1, "right", right.Ref.Name, rightKmer),
			// on the reverse strand the flanks swap roles
			record(2, "left", right.Ref.Name, reverseComplement(rightKmer)),
			record(2, "right", left.Ref.Name, reverseComplement(leftKmer)),
		},
	}, nil
}

// write emits the breakpoint FASTA consumed once by the assembler for this k
func (b *BreakpointInput) write(path string) error {
	return writeFasta(path, b.Records[:])
}
