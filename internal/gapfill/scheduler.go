package gapfill

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/cheggaaa/pb/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/anne-gcd/MTG10X/config"
	"github.com/anne-gcd/MTG10X/internal/bx"
	"github.com/anne-gcd/MTG10X/internal/gfa"
)

// dirs are the per-run output directories. Gap tasks share them but write
// only task-uniquely-named files into them
type dirs struct {
	out     string
	union   string
	mtg     string
	contigs string
	stats   string
}

func makeDirs(out string) (dirs, error) {
	d := dirs{
		out:     out,
		union:   filepath.Join(out, "union"),
		mtg:     filepath.Join(out, "mtg_results"),
		contigs: filepath.Join(out, "contigs"),
		stats:   filepath.Join(out, "alignments_stats"),
	}
	for _, dir := range []string{d.out, d.union, d.mtg, d.contigs, d.stats} {
		if err := os.MkdirAll(dir, 0777); err != nil {
			return d, fmt.Errorf("failed to create output directory %s: %v", dir, err)
		}
	}
	return d, nil
}

// Summary is one row of the union summary table
type Summary struct {
	GapID      string
	Left       string
	Right      string
	GapLen     int
	Chunk      int
	NbBarcodes int
	NbReads    int
}

// Result is one gap's outcome, communicated back to the scheduler strictly
// by value. A non-nil Err marks a failed gap without aborting the others
type Result struct {
	Gap     string
	Summary *Summary
	Record  GapRecord
	Err     error
}

// Pipeline is the immutable per-run context every gap task reads from
type Pipeline struct {
	cfg   *config.Config
	log   *zap.SugaredLogger
	graph *gfa.Graph

	barcodes BarcodeSource
	reads    ReadSource
	asm      Assembler
	stats    StatsRunner

	dirs    dirs
	gfaName string
}

// NewPipeline reads the input graph and barcode index and wires the
// production collaborators
func NewPipeline(cfg *config.Config, log *zap.SugaredLogger) (*Pipeline, error) {
	graph, err := gfa.Read(cfg.GFA)
	if err != nil {
		return nil, err
	}

	d, err := makeDirs(cfg.Out)
	if err != nil {
		return nil, err
	}

	index, err := bx.ReadIndex(cfg.Index)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:      cfg,
		log:      log,
		graph:    graph,
		barcodes: &bamBarcodes{bam: cfg.BAM},
		reads:    &indexedReads{fastq: cfg.Fastq, index: index},
		asm:      &MTG{Path: cfg.MtgPath},
		stats:    &StatsAlign{Path: cfg.StatsPath},
		dirs:     d,
		gfaName:  filepath.Base(cfg.GFA),
	}, nil
}

// Run fans one task per gap out over a bounded worker pool and aggregates
// the results in input gap order, so repeated runs produce identical output
// regardless of completion timing. Failed gaps are collected and reported
// together, they never abort the remaining gaps
func (p *Pipeline) Run() error {
	outGfa := filepath.Join(p.dirs.out, strings.TrimSuffix(p.gfaName, ".gfa")+"_mtglink.gfa")

	// a graph without gaps passes through unchanged, no task is spawned
	if len(p.graph.Gaps) == 0 {
		p.log.Infof("no gap in %s", p.gfaName)
		if err := os.WriteFile(outGfa, []byte(strings.Join(p.graph.Lines, "\n")+"\n"), 0666); err != nil {
			return fmt.Errorf("failed to write output graph %s: %v", outGfa, err)
		}
		fmt.Printf("\nGFA output file: %s\n", outGfa)
		return nil
	}

	results := make([]Result, len(p.graph.Gaps))
	todo := 0
	for _, gap := range p.graph.Gaps {
		if !p.skipped(gap) {
			todo++
		}
	}

	bar := pb.StartNew(todo)
	group := new(errgroup.Group)
	group.SetLimit(runtime.NumCPU())
	for i, gap := range p.graph.Gaps {
		i, gap := i, gap
		if p.skipped(gap) {
			results[i] = Result{Gap: gap.Label(), Record: GapRecord{Gap: gap.Label(), Lines: []string{gap.Raw}}}
			continue
		}
		group.Go(func() error {
			defer bar.Increment()
			results[i] = p.fillGap(gap)
			return nil // per-gap failures live in the Result
		})
	}
	_ = group.Wait() // tasks always return nil, failures travel in the Results
	bar.Finish()

	sumFile, err := p.writeUnionSum(results)
	if err != nil {
		return err
	}
	if err := p.writeGraph(results, outGfa); err != nil {
		return err
	}
	fastaFile, filled, err := p.writeGapfillFasta(results)
	if err != nil {
		return err
	}

	// raw assembler leftovers have no further use
	for _, pattern := range []string{"*.h5", "*.vcf"} {
		leftovers, _ := filepath.Glob(filepath.Join(p.dirs.mtg, pattern))
		for _, f := range leftovers {
			os.Remove(f)
		}
	}

	p.printSummary(results, outGfa, sumFile, fastaFile, filled)

	var errs error
	for _, res := range results {
		if res.Err != nil {
			errs = multierr.Append(errs, fmt.Errorf("gap %s: %v", res.Gap, res.Err))
		}
	}
	return errs
}

// skipped reports whether the resume line excludes a gap from processing.
// Excluded gaps still emit their original gap line
func (p *Pipeline) skipped(gap *gfa.Gap) bool {
	return p.cfg.Line > 0 && gap.LineNo < p.cfg.Line
}

// fillGap runs the whole per-gap pipeline: region derivation, evidence
// union, the parameter sweep, and the final record. A panic or error is
// captured in the Result so one bad gap never corrupts its siblings
func (p *Pipeline) fillGap(gap *gfa.Gap) (res Result) {
	label := gap.Label()
	res.Gap = label
	log := p.log.With("gap", label)

	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("panic: %v", r)
		}
		if res.Err != nil && len(res.Record.Lines) == 0 {
			// one record per gap, even on failure
			res.Record = GapRecord{Gap: label, Lines: []string{gap.Raw}}
		}
	}()

	left, err := newScaffold(p.graph, gap.Left, leftSide)
	if err != nil {
		res.Err = err
		return res
	}
	right, err := newScaffold(p.graph, gap.Right, rightSide)
	if err != nil {
		res.Err = err
		return res
	}

	leftRegion, clamped := left.Chunk(p.cfg.Chunk)
	if clamped {
		log.Warnf("chunk size %d is higher than the length of the left scaffold, extracting barcodes on its whole length", p.cfg.Chunk)
	}
	rightRegion, clamped := right.Chunk(p.cfg.Chunk)
	if clamped {
		log.Warnf("chunk size %d is higher than the length of the right scaffold, extracting barcodes on its whole length", p.cfg.Chunk)
	}

	evidence, err := p.buildGapEvidence(gap, leftRegion, rightRegion)
	if err != nil {
		res.Err = err
		return res
	}
	res.Summary = &Summary{
		GapID:      gap.ID,
		Left:       gap.Left.String(),
		Right:      gap.Right.String(),
		GapLen:     gap.Dist,
		Chunk:      p.cfg.Chunk,
		NbBarcodes: evidence.NbBarcodes,
		NbReads:    evidence.NbReads,
	}

	refFile, flankMode, err := p.resolveReference(log, label, gap.Dist, left, right)
	if err != nil {
		res.Err = err
		return res
	}

	s := &sweep{
		log:        log,
		asm:        p.asm,
		stats:      p.stats,
		label:      label,
		gapLen:     gap.Dist,
		left:       left,
		right:      right,
		kmers:      p.cfg.Kmer,
		abundances: p.cfg.Abundance,
		reads:      evidence.ReadsFile,
		force:      p.cfg.Force,
		ext:        p.cfg.Ext,
		maxNodes:   p.cfg.MaxNodes,
		maxLength:  p.cfg.MaxLength,
		nbCores:    p.cfg.NbCores,
		maxMemory:  p.cfg.MaxMemory,
		verbose:    p.cfg.Verbose,
		refFile:    refFile,
		flankMode:  flankMode,
		mtgDir:     p.dirs.mtg,
		statsDir:   p.dirs.stats,
		filePrefix: p.filePrefix(gap),
	}
	if err := s.run(); err != nil {
		res.Err = err
		return res
	}
	log.Debugf("sweep finished in state %s with %d accepted fills", s.state, len(s.accepted))

	res.Record = buildRecord(gap, left, right, s.accepted)
	return res
}

// filePrefix qualifies every transient file of a gap task by gap label,
// gap length and chunk size
func (p *Pipeline) filePrefix(gap *gfa.Gap) string {
	return fmt.Sprintf("%s.%s.g%d.c%d", p.gfaName, gap.Label(), gap.Dist, p.cfg.Chunk)
}

// buildGapEvidence runs the evidence union for one gap, or adopts the
// pre-extracted union reads file when one was supplied
func (p *Pipeline) buildGapEvidence(gap *gfa.Gap, leftRegion, rightRegion bx.Region) (*EvidenceSet, error) {
	prefix := filepath.Join(p.dirs.union, p.filePrefix(gap))
	regions := []bx.Region{leftRegion, rightRegion}

	if p.cfg.Rbxu == "" {
		return buildEvidence(p.barcodes, p.reads, regions, p.cfg.Freq, prefix+".bxu", prefix+".rbxu.fastq")
	}

	// reads were already extracted, but the barcode counting still runs so
	// the summary table stays complete
	evidence, err := buildEvidence(p.barcodes, &noReads{}, regions, p.cfg.Freq, prefix+".bxu", prefix+".rbxu.fastq")
	if err != nil {
		return nil, err
	}
	os.Remove(evidence.ReadsFile)
	evidence.ReadsFile = p.cfg.Rbxu
	if evidence.NbReads, err = countFastqReads(p.cfg.Rbxu); err != nil {
		return nil, err
	}
	return evidence, nil
}

// noReads is the ReadSource used when a pre-extracted union file replaces
// read extraction
type noReads struct{}

func (*noReads) Reads([]string, io.Writer) (int, error) { return 0, nil }

// resolveReference locates the quality reference for a gap: a file in the
// reference directory whose name contains the gap label, degrading to the
// flanking contigs when the directory has none
func (p *Pipeline) resolveReference(log *zap.SugaredLogger, label string, gapLen int, left, right *Scaffold) (string, bool, error) {
	if p.cfg.RefDir != "" {
		entries, err := os.ReadDir(p.cfg.RefDir)
		if err != nil {
			return "", false, fmt.Errorf("failed to read reference directory %s: %v", p.cfg.RefDir, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && strings.Contains(entry.Name(), label) {
				return filepath.Join(p.cfg.RefDir, entry.Name()), false, nil
			}
		}
		log.Warnf("%v, the qualitative evaluation will be performed with the flanking contigs", &MissingReferenceError{Gap: label, Dir: p.cfg.RefDir})
	}

	if left.Len < p.cfg.Ext || right.Len < p.cfg.Ext {
		return "", false, fmt.Errorf("flanking scaffolds are shorter than the extension size %d", p.cfg.Ext)
	}

	// merge both ext-sized flank regions into one reference file
	seqL, seqR := left.Seq(), right.Seq()
	contigs := filepath.Join(p.dirs.contigs, fmt.Sprintf("%s.g%d.contigs.fasta", label, gapLen))
	err := writeFasta(contigs, []fastaRecord{
		{
			id:  fmt.Sprintf("%s_region:%d-%d", left.Ref.Name, left.Len-p.cfg.Ext, left.Len),
			seq: seqL[left.Len-p.cfg.Ext:],
		},
		{
			id:  fmt.Sprintf("%s_region:0-%d", right.Ref.Name, p.cfg.Ext),
			seq: seqR[:p.cfg.Ext],
		},
	})
	if err != nil {
		return "", false, err
	}
	return contigs, true, nil
}

// writeUnionSum writes the union summary table, one row per processed gap
func (p *Pipeline) writeUnionSum(results []Result) (string, error) {
	path := filepath.Join(p.dirs.out, p.gfaName+".union.sum")

	var b strings.Builder
	b.WriteString("Gap_ID\tLeft_scaffold\tRight_scaffold\tGap_size\tChunk_size\tNb_barcodes\tNb_reads")
	for _, res := range results {
		if res.Summary == nil {
			continue
		}
		s := res.Summary
		b.WriteString(fmt.Sprintf("\n%s\t%s\t%s\t%d\t%d\t%d\t%d",
			s.GapID, s.Left, s.Right, s.GapLen, s.Chunk, s.NbBarcodes, s.NbReads))
	}

	if err := os.WriteFile(path, []byte(b.String()+"\n"), 0666); err != nil {
		return "", fmt.Errorf("failed to write union summary %s: %v", path, err)
	}
	return path, nil
}

// writeGraph writes the output graph: header, every original segment, then
// each gap's record in input gap order
func (p *Pipeline) writeGraph(results []Result, outGfa string) error {
	lines := []string{gfa.Header}
	for _, seg := range p.graph.Segments {
		lines = append(lines, seg.Raw)
	}
	for _, res := range results {
		lines = append(lines, res.Record.Lines...)
	}

	if err := os.WriteFile(outGfa, []byte(strings.Join(lines, "\n")+"\n"), 0666); err != nil {
		return fmt.Errorf("failed to write output graph %s: %v", outGfa, err)
	}
	return nil
}

// writeGapfillFasta writes every accepted fill sequence, in input gap order
func (p *Pipeline) writeGapfillFasta(results []Result) (string, bool, error) {
	path := filepath.Join(p.dirs.out, strings.TrimSuffix(p.gfaName, ".gfa")+"_mtglink.gapfill_seq.fasta")

	var records []fastaRecord
	for _, res := range results {
		for _, sol := range res.Record.Solutions {
			records = append(records, fastaRecord{
				id:  fmt.Sprintf("%s_len_%d_qual_%s", sol.Name, len(sol.Seq), sol.Grade),
				seq: sol.Seq,
			})
		}
	}
	if len(records) == 0 {
		return "", false, nil
	}

	if err := writeFasta(path, records); err != nil {
		return "", false, err
	}
	return path, true, nil
}

// printSummary prints the closing per-gap report from the collected results
func (p *Pipeline) printSummary(results []Result, outGfa, sumFile, fastaFile string, filled bool) {
	fmt.Printf("\nAttempt to gap-fill %d gaps\n\n", len(p.graph.Gaps))

	nbFilled := 0
	for _, res := range results {
		if res.Record.Filled() {
			nbFilled++
		} else {
			fmt.Printf("The gap %s was not successfully gap-filled\n", res.Gap)
		}
	}

	fmt.Printf("\nIn total, %d gaps were successfully gap-filled:\n", nbFilled)
	for _, res := range results {
		if !res.Record.Filled() {
			continue
		}
		fmt.Printf("\t* %s\tk%d\n", res.Gap, res.Record.Solutions[0].K)
		for _, sol := range res.Record.Solutions {
			fmt.Printf("\t\t* %s\t%d bp\t%s\n", sol.Strand, len(sol.Seq), sol.Grade)
		}
	}

	var failed []string
	for _, res := range results {
		if res.Err != nil {
			failed = append(failed, res.Gap)
		}
	}
	if len(failed) > 0 {
		fmt.Printf("\nFailed gaps: %s\n", strings.Join(failed, ", "))
	}

	fmt.Printf("\nThe results are saved in %s\n", p.dirs.out)
	fmt.Printf("The results from MindTheGap are saved in %s\n", p.dirs.mtg)
	fmt.Printf("The alignment statistics are saved in %s\n", p.dirs.stats)
	fmt.Printf("Summary of the union: %s\n", sumFile)
	fmt.Printf("GFA output file: %s\n", outGfa)
	if filled {
		fmt.Printf("Corresponding file containing all gapfill sequences: %s\n", fastaFile)
	}
}
