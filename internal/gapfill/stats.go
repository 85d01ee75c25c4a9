package gapfill

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
)

// StatsPaths locates the two tabular artifacts of one alignment run:
// candidate-vs-reference rows and candidate-vs-reverse-complement rows
type StatsPaths struct {
	RefQry string
	QryQry string
}

// statsExec is a small utility struct for one alignment-statistics run
type statsExec struct {
	// path to the stats_alignment.py script
	script string

	query  string
	ref    string
	ext    int
	prefix string
	outDir string
}

// run calls the external alignment script and waits for it to finish
func (s *statsExec) run() error {
	statsCmd := exec.Command(
		s.script,
		"-qry", s.query,
		"-ref", s.ref,
		"-ext", strconv.Itoa(s.ext),
		"-p", s.prefix,
		"-out", s.outDir,
	)

	if output, err := statsCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to execute alignment stats: %v: %s", err, string(output))
	}
	return nil
}

// paths checks that both expected artifacts exist
func (s *statsExec) paths() (StatsPaths, error) {
	p := StatsPaths{
		RefQry: filepath.Join(s.outDir, s.prefix+".ref_qry.alignment.stats"),
		QryQry: filepath.Join(s.outDir, s.prefix+".qry_qry.alignment.stats"),
	}

	if _, err := os.Stat(p.RefQry); err != nil {
		return p, &MissingAlignmentStats{Path: p.RefQry}
	}
	if _, err := os.Stat(p.QryQry); err != nil {
		return p, &MissingAlignmentStats{Path: p.QryQry}
	}
	return p, nil
}

// StatsAlign is the production StatsRunner, backed by the external
// alignment-statistics script
type StatsAlign struct {
	// Path to the stats_alignment.py script
	Path string
}

// ComputeStats aligns the candidate fills at query against ref and returns
// the paths of the two statistics tables it wrote
func (s *StatsAlign) ComputeStats(query, ref string, ext int, prefix, outDir string) (StatsPaths, error) {
	e := &statsExec{
		script: s.Path,
		query:  query,
		ref:    ref,
		ext:    ext,
		prefix: prefix,
		outDir: outDir,
	}

	if err := e.run(); err != nil {
		return StatsPaths{}, err
	}
	return e.paths()
}
