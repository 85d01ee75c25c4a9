package gfa

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const testGFA = `H	VN:Z:2.0
S	scaffold_1	60	ACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGTACGT
S	scaffold_2	40	TTTTACGTACGTACGTACGTACGTACGTACGTACGTACGT
G	*	scaffold_1+	scaffold_2+	120	*
`

func writeTestGFA(t *testing.T, contents string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "test.gfa")
	if err := os.WriteFile(p, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestRead(t *testing.T) {
	g, err := Read(writeTestGFA(t, testGFA))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if len(g.Segments) != 2 {
		t.Fatalf("Read() segments = %d, want 2", len(g.Segments))
	}
	if len(g.Gaps) != 1 {
		t.Fatalf("Read() gaps = %d, want 1", len(g.Gaps))
	}

	seg, err := g.Segment("scaffold_1")
	if err != nil {
		t.Fatalf("Segment() error = %v", err)
	}
	if seg.Length != 60 {
		t.Errorf("segment length = %d, want 60", seg.Length)
	}
	seq, err := seg.Seq()
	if err != nil {
		t.Fatalf("Seq() error = %v", err)
	}
	if len(seq) != 60 {
		t.Errorf("sequence length = %d, want 60", len(seq))
	}

	gap := g.Gaps[0]
	want := &Gap{
		ID:     "*",
		Left:   Ref{"scaffold_1", "+"},
		Right:  Ref{"scaffold_2", "+"},
		Dist:   120,
		Var:    "*",
		Raw:    "G\t*\tscaffold_1+\tscaffold_2+\t120\t*",
		LineNo: 4,
	}
	if !reflect.DeepEqual(gap, want) {
		t.Errorf("gap = %+v, want %+v", gap, want)
	}
	if gap.Label() != "scaffold_1_scaffold_2" {
		t.Errorf("Label() = %s, want scaffold_1_scaffold_2", gap.Label())
	}
}

func TestRead_urSegment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "s1.fasta"), []byte(">s1\nACGT\nACGT\n"), 0666); err != nil {
		t.Fatal(err)
	}
	gfaPath := filepath.Join(dir, "test.gfa")
	contents := "S\ts1\t8\t*\tUR:Z:s1.fasta\n"
	if err := os.WriteFile(gfaPath, []byte(contents), 0666); err != nil {
		t.Fatal(err)
	}

	g, err := Read(gfaPath)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	seg, err := g.Segment("s1")
	if err != nil {
		t.Fatal(err)
	}
	seq, err := seg.Seq()
	if err != nil {
		t.Fatalf("Seq() error = %v", err)
	}
	if seq != "ACGTACGT" {
		t.Errorf("Seq() = %s, want ACGTACGT", seq)
	}
}

func TestRead_noGaps(t *testing.T) {
	contents := "H\tVN:Z:2.0\nS\ts1\t4\tACGT\n"
	g, err := Read(writeTestGFA(t, contents))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(g.Gaps) != 0 {
		t.Errorf("gaps = %d, want 0", len(g.Gaps))
	}
	if len(g.Lines) != 2 {
		t.Errorf("lines = %d, want 2", len(g.Lines))
	}
}

func TestPos(t *testing.T) {
	tests := []struct {
		name   string
		p, len int
		want   string
	}{
		{"interior", 500, 1000, "500"},
		{"sequence end", 1000, 1000, "1000$"},
		{"zero", 0, 1000, "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Pos(tt.p, tt.len); got != tt.want {
				t.Errorf("Pos() = %s, want %s", got, tt.want)
			}
		})
	}
}

func Test_parseRef(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		want    Ref
		wantErr bool
	}{
		{"forward", "s1+", Ref{"s1", "+"}, false},
		{"reverse", "s1-", Ref{"s1", "-"}, false},
		{"no orientation", "s1", Ref{}, true},
		{"empty", "", Ref{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRef(tt.field)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseRef() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("parseRef() = %v, want %v", got, tt.want)
			}
		})
	}
}
