package buffer

import (
	"fmt"
	"strings"

	"github.com/rivo/uniseg"
)

// GapBuffer is a gap buffer whose cells are grapheme clusters.
// Cells before gapStart and from gapEnd on hold text; the gap is free space.
type GapBuffer struct {
	buf      []string
	gapStart int
	gapEnd   int

	cacheString string
	cacheLines  []string
	cacheValid  bool
}

// Split returns the grapheme clusters of s.
func Split(s string) []string {
	out := make([]string, 0, len(s))
	gr := uniseg.NewGraphemes(s)
	for gr.Next() {
		out = append(out, gr.Str())
	}
	return out
}

// NewGapBuffer creates an empty GapBuffer with an initial capacity.
func NewGapBuffer(cap int) *GapBuffer {
	if cap < 1 {
		cap = 128
	}
	return &GapBuffer{buf: make([]string, cap), gapStart: 0, gapEnd: cap}
}

// NewGapBufferFromString initializes a GapBuffer with the provided text.
func NewGapBufferFromString(s string) *GapBuffer {
	clusters := Split(s)
	b := NewGapBuffer(len(clusters) + 128)
	copy(b.buf, clusters)
	b.gapStart = len(clusters)
	return b
}

func (g *GapBuffer) ensureGap(n int) {
	gap := g.gapEnd - g.gapStart
	if gap >= n {
		return
	}
	newCap := len(g.buf)*2 + (n - gap)
	newBuf := make([]string, newCap)
	copy(newBuf, g.buf[:g.gapStart])
	suffixLen := len(g.buf) - g.gapEnd
	copy(newBuf[newCap-suffixLen:], g.buf[g.gapEnd:])
	g.gapEnd = newCap - suffixLen
	g.buf = newBuf
}

// moveGap moves the gap so that gapStart == pos.
func (g *GapBuffer) moveGap(pos int) {
	if pos < 0 {
		pos = 0
	}
	if pos > g.Len() {
		pos = g.Len()
	}
	switch {
	case pos < g.gapStart:
		d := g.gapStart - pos
		copy(g.buf[g.gapEnd-d:g.gapEnd], g.buf[pos:g.gapStart])
		g.gapStart = pos
		g.gapEnd -= d
	case pos > g.gapStart:
		d := pos - g.gapStart
		copy(g.buf[g.gapStart:g.gapStart+d], g.buf[g.gapEnd:g.gapEnd+d])
		g.gapStart += d
		g.gapEnd += d
	}
}

// Insert inserts clusters at position pos (0..Len()).
func (g *GapBuffer) Insert(pos int, clusters []string) error {
	if pos < 0 || pos > g.Len() {
		return fmt.Errorf("position %d out of range [0,%d]", pos, g.Len())
	}
	g.moveGap(pos)
	g.ensureGap(len(clusters))
	copy(g.buf[g.gapStart:], clusters)
	g.gapStart += len(clusters)
	g.cacheValid = false
	return nil
}

// InsertString segments s and inserts it at pos. It returns the number of
// clusters inserted.
func (g *GapBuffer) InsertString(pos int, s string) (int, error) {
	clusters := Split(s)
	if err := g.Insert(pos, clusters); err != nil {
		return 0, err
	}
	return len(clusters), nil
}

// Delete removes clusters in [start,end).
func (g *GapBuffer) Delete(start, end int) error {
	if start < 0 || end < start || end > g.Len() {
		return fmt.Errorf("invalid range [%d,%d)", start, end)
	}
	g.moveGap(start)
	for i := g.gapEnd; i < g.gapEnd+(end-start); i++ {
		g.buf[i] = ""
	}
	g.gapEnd += end - start
	g.cacheValid = false
	return nil
}

// Slice returns a copy of the clusters in [start,end).
func (g *GapBuffer) Slice(start, end int) []string {
	if start < 0 {
		start = 0
	}
	if end > g.Len() {
		end = g.Len()
	}
	if start >= end {
		return []string{}
	}
	out := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, g.clusterAt(i))
	}
	return out
}

// Len returns the logical length in clusters (excluding gap).
func (g *GapBuffer) Len() int {
	return len(g.buf) - (g.gapEnd - g.gapStart)
}

// ClusterAt returns the cluster at index i, or "" when i is out of bounds.
func (g *GapBuffer) ClusterAt(i int) string {
	if i < 0 || i >= g.Len() {
		return ""
	}
	return g.clusterAt(i)
}

func (g *GapBuffer) clusterAt(i int) string {
	if i < g.gapStart {
		return g.buf[i]
	}
	return g.buf[g.gapEnd+(i-g.gapStart)]
}

func isNewline(c string) bool {
	return c == "\n" || c == "\r\n"
}

// LineAt returns the cluster start and end indices for the given line number
// (0-based). If the line index is past the end, it returns the last line's
// bounds. The end index includes the terminating newline when present.
func (g *GapBuffer) LineAt(idx int) (start, end int) {
	if idx < 0 {
		idx = 0
	}
	n := g.Len()
	line := 0
	for i := 0; i < n; i++ {
		if line == idx {
			for j := i; j < n; j++ {
				if isNewline(g.clusterAt(j)) {
					return i, j + 1
				}
			}
			return i, n
		}
		if isNewline(g.clusterAt(i)) {
			line++
			start = i + 1
		}
	}
	return start, n
}

// LineOf returns the 0-based line containing cluster position pos and the
// index where that line starts.
func (g *GapBuffer) LineOf(pos int) (line, lineStart int) {
	if pos > g.Len() {
		pos = g.Len()
	}
	for i := 0; i < pos; i++ {
		if isNewline(g.clusterAt(i)) {
			line++
			lineStart = i + 1
		}
	}
	return line, lineStart
}

// String returns the buffer contents.
func (g *GapBuffer) String() string {
	if g.cacheValid {
		return g.cacheString
	}
	var sb strings.Builder
	for i := 0; i < g.Len(); i++ {
		sb.WriteString(g.clusterAt(i))
	}
	g.cacheString = sb.String()
	g.cacheLines = strings.Split(strings.ReplaceAll(g.cacheString, "\r\n", "\n"), "\n")
	g.cacheValid = true
	return g.cacheString
}

// Lines returns the buffer split into lines without their terminators. The
// result is cached until the buffer is modified.
func (g *GapBuffer) Lines() []string {
	if !g.cacheValid {
		_ = g.String()
	}
	return g.cacheLines
}
