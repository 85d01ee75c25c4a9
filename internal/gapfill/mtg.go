package gapfill

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Insertion is one raw candidate sequence emitted by the assembler
type Insertion struct {
	ID   string
	Desc string
	Seq  string
}

// FillRequest carries one assembler invocation: the union read set, the
// breakpoint anchors, the (k, a) pair, and the resource caps
type FillRequest struct {
	Reads       string
	Breakpoints string
	K           int
	Abundance   int
	MaxNodes    int
	MaxLength   int
	NbCores     int
	MaxMemory   int
	Verbose     int

	// Out is the task-unique output prefix (path without extension)
	Out string
}

// mtgExec is a small utility struct for executing MindTheGap fill
// in breakpoint mode on one (k, a) pair
type mtgExec struct {
	// path to the MindTheGap executable
	mtg string

	req FillRequest
}

// run calls the external MindTheGap binary and waits for it to finish
func (m *mtgExec) run() error {
	mtgCmd := exec.Command(
		m.mtg,
		"fill",
		"-in", m.req.Reads,
		"-bkpt", m.req.Breakpoints,
		"-kmer-size", strconv.Itoa(m.req.K),
		"-abundance-min", strconv.Itoa(m.req.Abundance),
		"-max-nodes", strconv.Itoa(m.req.MaxNodes),
		"-max-length", strconv.Itoa(m.req.MaxLength),
		"-nb-cores", strconv.Itoa(m.req.NbCores),
		"-max-memory", strconv.Itoa(m.req.MaxMemory),
		"-verbose", strconv.Itoa(m.req.Verbose),
		"-out", m.req.Out,
	)

	if output, err := mtgCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to execute MindTheGap: %v: %s", err, string(output))
	}
	return nil
}

// parse reads the insertions artifact into candidate sequences. A missing or
// empty artifact means the assembler found nothing for this (k, a)
func (m *mtgExec) parse() ([]Insertion, error) {
	path := m.req.Out + ".insertions.fasta"

	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return nil, &EmptyAssemblerOutput{K: m.req.K, A: m.req.Abundance, Path: path}
	}

	records, err := readFasta(path)
	if err != nil {
		return nil, &EmptyAssemblerOutput{K: m.req.K, A: m.req.Abundance, Path: path}
	}

	insertions := make([]Insertion, len(records))
	for i, r := range records {
		insertions[i] = Insertion{ID: r.id, Desc: r.desc, Seq: r.seq}
	}
	return insertions, nil
}

// MTG is the production Assembler, backed by the MindTheGap executable
type MTG struct {
	// Path to the MindTheGap executable
	Path string
}

// Fill runs MindTheGap fill for one (k, a) pair and parses the candidates
// it produced
func (m *MTG) Fill(req FillRequest) ([]Insertion, error) {
	e := &mtgExec{mtg: m.Path, req: req}

	if err := e.run(); err != nil {
		return nil, err
	}
	return e.parse()
}
