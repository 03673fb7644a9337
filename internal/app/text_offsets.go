package app

import (
	"strings"

	"example.com/charnotes/pkg/buffer"
	"github.com/mattn/go-runewidth"
)

const tabWidth = 4

// clusterWidth returns the number of terminal cells a cluster occupies
// when it starts at column col.
func clusterWidth(c string, col int) int {
	if c == "\t" {
		return tabWidth - col%tabWidth
	}
	w := runewidth.StringWidth(c)
	if w < 1 {
		// control characters and lone combining marks still take a cell
		return 1
	}
	return w
}

// displayColumn returns the terminal column of cluster index n within line.
func displayColumn(line []string, n int) int {
	col := 0
	for i := 0; i < n && i < len(line); i++ {
		col += clusterWidth(line[i], col)
	}
	return col
}

// joinClusters concatenates clusters back into text.
func joinClusters(clusters []string) string {
	return strings.Join(clusters, "")
}

// bufferLines splits the buffer's cells into lines without the breaks, so
// cell offsets match cursor positions.
func bufferLines(buf *buffer.GapBuffer) [][]string {
	if buf == nil {
		return nil
	}
	var lines [][]string
	start := 0
	cells := buf.Slice(0, buf.Len())
	for i, c := range cells {
		if isLineBreak(c) {
			lines = append(lines, cells[start:i])
			start = i + 1
		}
	}
	return append(lines, cells[start:])
}
