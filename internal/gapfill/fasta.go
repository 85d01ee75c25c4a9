package gapfill

import (
	"fmt"
	"os"
	"strings"
)

// fastaRecord is one FASTA entry: the id up to the first whitespace,
// the rest of the header line, and the joined sequence
type fastaRecord struct {
	id   string
	desc string
	seq  string
}

// readFasta parses the records of a FASTA file
func readFasta(path string) (records []fastaRecord, err error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read FASTA file %s: %v", path, err)
	}

	for _, entry := range strings.Split(string(contents), ">") {
		if strings.TrimSpace(entry) == "" {
			continue
		}

		lines := strings.SplitN(entry, "\n", 2)
		header := strings.TrimRight(lines[0], "\r")
		seq := ""
		if len(lines) > 1 {
			seq = strings.Join(strings.Fields(lines[1]), "")
		}

		id := header
		desc := ""
		if i := strings.IndexAny(header, " \t"); i >= 0 {
			id = header[:i]
			desc = strings.TrimSpace(header[i+1:])
		}

		records = append(records, fastaRecord{id: id, desc: desc, seq: seq})
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("no FASTA records in %s", path)
	}
	return records, nil
}

// writeFasta writes records to a FASTA file, one sequence line per record
func writeFasta(path string, records []fastaRecord) error {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(">")
		b.WriteString(r.id)
		if r.desc != "" {
			b.WriteString(" ")
			b.WriteString(r.desc)
		}
		b.WriteString("\n")
		b.WriteString(r.seq)
		b.WriteString("\n")
	}

	if err := os.WriteFile(path, []byte(b.String()), 0666); err != nil {
		return fmt.Errorf("failed to write FASTA file %s: %v", path, err)
	}
	return nil
}
