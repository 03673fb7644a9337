// Package codec converts note text to and from per-character records.
//
// A character is an extended grapheme cluster, so "é" written as 'e' plus a
// combining accent, a flag, or a ZWJ emoji sequence each become one record.
package codec

import (
	"errors"
	"fmt"
	"sort"

	"github.com/rivo/uniseg"
)

var (
	// ErrDuplicateIndex is reported by Validate when two records share an index.
	ErrDuplicateIndex = errors.New("duplicate record index")
	// ErrIndexGap is reported by Validate when sorted indices skip a position.
	ErrIndexGap = errors.New("record index gap")
)

// Record is one character of a note and its position in the text.
type Record struct {
	Display string
	Index   int
}

// Encode splits text into grapheme clusters and numbers them from zero.
// The result is never nil.
func Encode(text string) []Record {
	out := make([]Record, 0, len(text))
	gr := uniseg.NewGraphemes(text)
	for i := 0; gr.Next(); i++ {
		out = append(out, Record{Display: gr.Str(), Index: i})
	}
	return out
}

// Decode orders records by Index and concatenates their Display values.
// Malformed index sets are not rejected; ties keep their input order.
func Decode(records []Record) string {
	if len(records) == 0 {
		return ""
	}
	sorted := make([]Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Index < sorted[j].Index })

	size := 0
	for _, r := range sorted {
		size += len(r.Display)
	}
	buf := make([]byte, 0, size)
	for _, r := range sorted {
		buf = append(buf, r.Display...)
	}
	return string(buf)
}

// Validate checks that the record indices are exactly 0..len(records)-1.
func Validate(records []Record) error {
	idx := make([]int, len(records))
	for i, r := range records {
		idx[i] = r.Index
	}
	sort.Ints(idx)
	for i, v := range idx {
		if i > 0 && v == idx[i-1] {
			return fmt.Errorf("%w: %d", ErrDuplicateIndex, v)
		}
		if v != i {
			return fmt.Errorf("%w: want %d, got %d", ErrIndexGap, i, v)
		}
	}
	return nil
}

// Len returns the number of grapheme clusters in text.
func Len(text string) int {
	return uniseg.GraphemeClusterCount(text)
}
