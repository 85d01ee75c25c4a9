package gapfill

import (
	"bytes"
	"strings"
)

// reverseComplement returns the reverse complement of a sequence.
// Ambiguous bases come back as N
func reverseComplement(seq string) string {
	seq = strings.ToUpper(seq)

	revCompMap := map[rune]byte{
		'A': 'T',
		'T': 'A',
		'G': 'C',
		'C': 'G',
		'N': 'N',
	}

	var revCompBuffer bytes.Buffer
	for _, c := range seq {
		b, ok := revCompMap[c]
		if !ok {
			b = 'N'
		}
		revCompBuffer.WriteByte(b)
	}

	revCompBytes := revCompBuffer.Bytes()
	for i := 0; i < len(revCompBytes)/2; i++ {
		j := len(revCompBytes) - i - 1
		revCompBytes[i], revCompBytes[j] = revCompBytes[j], revCompBytes[i]
	}

	return string(revCompBytes)
}
