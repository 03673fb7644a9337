package buffer

// TextStorage defines the minimal storage operations used by the editor.
// Positions and lengths are expressed in grapheme clusters (not bytes or runes).
type TextStorage interface {
	Insert(pos int, clusters []string) error
	Delete(start, end int) error
	Slice(start, end int) []string
	Len() int
	LineAt(idx int) (start, end int)
}

var _ TextStorage = (*GapBuffer)(nil)
