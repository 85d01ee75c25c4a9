// Package gfa reads and writes GFA 2.0 assembly graphs: the segment and gap
// lines the gap-filler consumes and the segment and edge lines it emits for
// accepted fills
package gfa

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Ref is an oriented reference to a segment by name. Cross references between
// gaps and segments are always by name, never by pointer
type Ref struct {
	Name   string
	Orient string // "+" or "-"
}

// String returns the GFA rendering of the reference, eg "scaffold_1+"
func (r Ref) String() string {
	return r.Name + r.Orient
}

func parseRef(field string) (Ref, error) {
	if len(field) < 2 {
		return Ref{}, fmt.Errorf("malformed segment reference '%s'", field)
	}
	orient := field[len(field)-1:]
	if orient != "+" && orient != "-" {
		return Ref{}, fmt.Errorf("malformed segment reference '%s': missing orientation", field)
	}
	return Ref{Name: field[:len(field)-1], Orient: orient}, nil
}

// Segment is one S line: an assembled sequence bounding gaps.
// The sequence may be inline or live in a sibling FASTA named by a UR tag
type Segment struct {
	Name     string
	Length   int
	Sequence string // "" when the S line carries "*"
	SeqPath  string // from the UR:Z: tag, resolved against the graph's directory
	Raw      string
	LineNo   int
}

// Seq returns the segment's sequence, loading it from the UR FASTA
// if the S line didn't carry it inline
func (s *Segment) Seq() (string, error) {
	if s.Sequence != "" {
		return s.Sequence, nil
	}
	if s.SeqPath == "" {
		return "", fmt.Errorf("segment %s has no sequence and no UR path", s.Name)
	}

	contents, err := os.ReadFile(s.SeqPath)
	if err != nil {
		return "", fmt.Errorf("failed to read segment FASTA %s: %v", s.SeqPath, err)
	}

	// a single record FASTA: drop the header, join the sequence lines
	lines := strings.Split(string(contents), "\n")
	if len(lines) < 2 || !strings.HasPrefix(lines[0], ">") {
		return "", fmt.Errorf("malformed segment FASTA %s", s.SeqPath)
	}
	var seq strings.Builder
	for _, line := range lines[1:] {
		if strings.HasPrefix(line, ">") {
			break
		}
		seq.WriteString(strings.TrimSpace(line))
	}
	if seq.Len() == 0 {
		return "", fmt.Errorf("empty sequence in segment FASTA %s", s.SeqPath)
	}
	return seq.String(), nil
}

// Gap is one G line: an unresolved region between two oriented segment ends
type Gap struct {
	ID     string // "*" when anonymous
	Left   Ref
	Right  Ref
	Dist   int    // estimated gap length
	Var    string // variance field, kept verbatim
	Raw    string
	LineNo int
}

// Label identifies the gap in filenames, logs and the summary table
func (g *Gap) Label() string {
	if g.ID != "" && g.ID != "*" {
		return g.ID
	}
	return g.Left.Name + "_" + g.Right.Name
}

// Graph is a parsed GFA 2.0 file. Lines holds every raw input line in order
// so a graph without gaps can be passed through unchanged
type Graph struct {
	Path     string
	Lines    []string
	Segments []*Segment
	Gaps     []*Gap

	segments map[string]*Segment
}

// Read parses the GFA file at path. Unknown line types are kept in Lines
// but otherwise ignored
func Read(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open GFA file %s: %v", path, err)
	}
	defer f.Close()

	g := &Graph{
		Path:     path,
		segments: make(map[string]*Segment),
	}
	dir := filepath.Dir(path)

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024) // S lines can carry whole scaffolds
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if line == "" {
			continue
		}
		g.Lines = append(g.Lines, line)

		cols := strings.Split(line, "\t")
		switch cols[0] {
		case "S":
			seg, err := parseSegment(cols, line, lineNo, dir)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v", path, lineNo, err)
			}
			g.Segments = append(g.Segments, seg)
			g.segments[seg.Name] = seg
		case "G":
			gap, err := parseGap(cols, line, lineNo)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %v", path, lineNo, err)
			}
			g.Gaps = append(g.Gaps, gap)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read GFA file %s: %v", path, err)
	}

	return g, nil
}

// Segment returns the segment with the passed name
func (g *Graph) Segment(name string) (*Segment, error) {
	seg, ok := g.segments[name]
	if !ok {
		return nil, fmt.Errorf("no segment named %s in %s", name, g.Path)
	}
	return seg, nil
}

func parseSegment(cols []string, raw string, lineNo int, dir string) (*Segment, error) {
	if len(cols) < 4 {
		return nil, fmt.Errorf("S line with %d fields, want at least 4", len(cols))
	}

	length, err := strconv.Atoi(cols[2])
	if err != nil {
		return nil, fmt.Errorf("bad segment length '%s': %v", cols[2], err)
	}

	seg := &Segment{
		Name:   cols[1],
		Length: length,
		Raw:    raw,
		LineNo: lineNo,
	}
	if cols[3] != "*" {
		seg.Sequence = cols[3]
	}

	for _, tag := range cols[4:] {
		if strings.HasPrefix(tag, "UR:Z:") {
			p := strings.TrimPrefix(tag, "UR:Z:")
			if !filepath.IsAbs(p) {
				p = filepath.Join(dir, p)
			}
			seg.SeqPath = p
		}
	}

	return seg, nil
}

func parseGap(cols []string, raw string, lineNo int) (*Gap, error) {
	if len(cols) < 6 {
		return nil, fmt.Errorf("G line with %d fields, want at least 6", len(cols))
	}

	left, err := parseRef(cols[2])
	if err != nil {
		return nil, err
	}
	right, err := parseRef(cols[3])
	if err != nil {
		return nil, err
	}

	dist, err := strconv.Atoi(cols[4])
	if err != nil {
		return nil, fmt.Errorf("bad gap distance '%s': %v", cols[4], err)
	}

	return &Gap{
		ID:     cols[1],
		Left:   left,
		Right:  right,
		Dist:   dist,
		Var:    cols[5],
		Raw:    raw,
		LineNo: lineNo,
	}, nil
}

// Header is the GFA 2.0 header line every output graph starts with
const Header = "H\tVN:Z:2.0"

// Pos renders a GFA 2.0 position, with the trailing '$' sentinel
// when the position is the end of the sequence
func Pos(p, length int) string {
	if p == length {
		return strconv.Itoa(p) + "$"
	}
	return strconv.Itoa(p)
}

// SegmentLine renders an S line carrying an inline sequence
func SegmentLine(name, seq string) string {
	return fmt.Sprintf("S\t%s\t%d\t%s", name, len(seq), seq)
}

// EdgeLine renders an anonymous E line for an overlap of [beg1,end1] on
// s1 with [beg2,end2] on s2
func EdgeLine(s1, s2 Ref, beg1, end1, beg2, end2 string) string {
	return fmt.Sprintf("E\t*\t%s\t%s\t%s\t%s\t%s\t%s\t*", s1, s2, beg1, end1, beg2, end2)
}
