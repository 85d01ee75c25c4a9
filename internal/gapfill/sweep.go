package gapfill

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/anne-gcd/MTG10X/config"
)

// sweepState is the position of a gap's parameter search
type sweepState int

const (
	// selectingK: moving to the next (largest remaining) k-mer size
	selectingK sweepState = iota

	// selectingA: moving to the next abundance threshold under the current k
	selectingA

	// evaluatingCandidates: grading the fills of the current (k, a) pair
	evaluatingCandidates

	// gapSolved: both strands hold an accepted fill
	gapSolved

	// exhausted: every (k, a) pair tried, nothing ever accepted
	exhausted
)

// String names the state for logs
func (s sweepState) String() string {
	switch s {
	case selectingK:
		return "selecting_k"
	case selectingA:
		return "selecting_a"
	case evaluatingCandidates:
		return "evaluating_candidates"
	case gapSolved:
		return "gap_solved"
	}
	return "exhausted"
}

// sweep drives the descending (k, a) parameter search for one gap. It lives
// only for the duration of that gap's task and shares nothing with sibling
// sweeps beyond task-uniquely-named files
type sweep struct {
	log   *zap.SugaredLogger
	asm   Assembler
	stats StatsRunner

	label  string
	gapLen int
	left   *Scaffold
	right  *Scaffold

	kmers      []int // descending
	abundances []int // descending
	reads      string
	force      bool
	ext        int
	maxNodes   int
	maxLength  int
	nbCores    int
	maxMemory  int
	verbose    int

	// quality reference: a per-gap reference file, or the flank contigs
	refFile   string
	flankMode bool

	mtgDir     string
	statsDir   string
	filePrefix string // "<gfa name>.<label>.g<len>.c<chunk>"

	state    sweepState
	strands  strandSet
	accepted []Solution
}

// run walks the (k, a) grid in strictly descending order, most stringent
// pair first, and stops as soon as both strands hold an accepted fill unless
// force keeps it searching. Every pair is visited at most once
func (s *sweep) run() error {
	for _, k := range s.kmers {
		s.state = selectingK

		bkpt, err := buildBreakpoints(s.label, s.gapLen, s.left, s.right, s.ext, k)
		if err != nil {
			return err
		}
		bkptFile := filepath.Join(s.mtgDir, fmt.Sprintf("%s.k%d.offset_rm.bkpt.fasta", s.filePrefix, k))
		if err := bkpt.write(bkptFile); err != nil {
			return err
		}

		for _, a := range s.abundances {
			s.state = selectingA
			s.log.Infof("gap-filling with k=%d and a=%d", k, a)

			// unusually large gaps would be truncated by the default cap
			maxLength := s.maxLength
			if maxLength == config.DefaultMaxLength && s.gapLen >= config.DefaultMaxLength {
				maxLength = s.gapLen + 1000
			}

			out := filepath.Join(s.mtgDir, fmt.Sprintf("%s.k%d.a%d.bxu", s.filePrefix, k, a))
			insertions, err := s.asm.Fill(FillRequest{
				Reads:       s.reads,
				Breakpoints: bkptFile,
				K:           k,
				Abundance:   a,
				MaxNodes:    s.maxNodes,
				MaxLength:   maxLength,
				NbCores:     s.nbCores,
				MaxMemory:   s.maxMemory,
				Verbose:     s.verbose,
				Out:         out,
			})
			if err != nil {
				var empty *EmptyAssemblerOutput
				if errors.As(err, &empty) {
					s.log.Debugf("no solution for k=%d a=%d", k, a)
					s.cleanIteration(out)
					continue
				}
				return err
			}
			if len(insertions) == 0 {
				s.cleanIteration(out)
				continue
			}

			s.state = evaluatingCandidates
			if err := s.evaluate(insertions, k, a, out); err != nil {
				var missing *MissingAlignmentStats
				if errors.As(err, &missing) {
					s.log.Warnf("%v, skipping quality evaluation for k=%d a=%d", err, k, a)
					continue
				}
				return err
			}

			if s.strands.solved() && !s.force {
				s.state = gapSolved
				return nil
			}
		}
	}

	switch {
	case s.strands.solved():
		s.state = gapSolved
	case len(s.accepted) == 0:
		s.state = exhausted
	}
	return nil
}

// evaluate grades every candidate of one (k, a) iteration, emits the
// quality-labeled insertion FASTA, and records the accepted fills
func (s *sweep) evaluate(insertions []Insertion, k, a int, outPrefix string) error {
	candidates := make([]Candidate, len(insertions))
	for i, ins := range insertions {
		candidates[i] = newCandidate(ins)
	}

	// rewrite the candidates so the solution index is part of the record id
	query := outPrefix + ".sol.insertions.fasta"
	records := make([]fastaRecord, len(candidates))
	for i, c := range candidates {
		records[i] = fastaRecord{id: c.ID, seq: c.Seq}
	}
	if err := writeFasta(query, records); err != nil {
		return err
	}
	defer os.Remove(query)

	prefix := fmt.Sprintf("%s.k%d.a%d", s.label, k, a)
	paths, err := s.stats.ComputeStats(query, s.refFile, s.ext, prefix, s.statsDir)
	if err != nil {
		return err
	}

	refRows, err := parseRefQryStats(paths.RefQry)
	if err != nil {
		return err
	}
	selfRows, err := parseQryQryStats(paths.QryQry)
	if err != nil {
		return err
	}

	sc := &scorer{
		refRows:   refRows,
		selfRows:  selfRows,
		flankMode: s.flankMode,
		leftName:  s.left.Ref.Name,
		rightName: s.right.Ref.Name,
		ext:       s.ext,
	}

	labeled := make([]fastaRecord, len(candidates))
	for i := range candidates {
		c := &candidates[i]
		sc.score(c)
		labeled[i] = fastaRecord{id: c.ID, desc: "Quality " + c.Grade, seq: c.Seq}

		if c.Accepted {
			s.log.Infof("accepted %s fill (k=%d a=%d, quality %s)", c.Strand, k, a, c.Grade)
			s.accepted = append(s.accepted, Solution{
				Name:    solutionName(s.label, s.gapLen, c, k, a),
				Seq:     c.Seq,
				Strand:  c.Strand,
				K:       k,
				A:       a,
				Grade:   c.Grade,
				Overlap: s.ext + k,
			})
			s.strands.accept(c.Strand)
		} else {
			s.log.Debugf("rejected %s fill (k=%d a=%d, quality %s)", c.Strand, k, a, c.Grade)
		}
	}

	// the quality-labeled FASTA replaces the raw insertions artifact
	if err := writeFasta(outPrefix+".insertions_quality.fasta", labeled); err != nil {
		return err
	}
	os.Remove(outPrefix + ".insertions.fasta")

	return nil
}

// cleanIteration drops the transient assembler outputs of a (k, a) pair
// that yielded nothing
func (s *sweep) cleanIteration(outPrefix string) {
	os.Remove(outPrefix + ".insertions.fasta")
	os.Remove(outPrefix + ".insertions.vcf")
}
