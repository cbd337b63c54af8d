package annotate

import (
	"fmt"
	"sort"
)

// LineIndex converts between rune offsets in a multi-line text and 1-based
// line/column positions. Columns count runes.
type LineIndex struct {
	starts []int
	length int
}

func NewLineIndex(text string) *LineIndex {
	idx := &LineIndex{starts: []int{0}}
	n := 0
	for _, r := range text {
		n++
		if r == '\n' {
			idx.starts = append(idx.starts, n)
		}
	}
	idx.length = n
	return idx
}

// Lines returns the number of lines; an empty text has one.
func (x *LineIndex) Lines() int { return len(x.starts) }

// Offset returns the rune offset of line:col. The column just past the last
// rune of a line is valid.
func (x *LineIndex) Offset(line, col int) (int, error) {
	if line < 1 || line > len(x.starts) {
		return 0, fmt.Errorf("line %d out of range [1, %d]", line, len(x.starts))
	}
	start := x.starts[line-1]
	end := x.length
	if line < len(x.starts) {
		end = x.starts[line] - 1 // the newline itself
	}
	if col < 1 || start+col-1 > end {
		return 0, fmt.Errorf("column %d out of range [1, %d] on line %d", col, end-start+1, line)
	}
	return start + col - 1, nil
}

// Position returns the line and column of offset. Offsets past the end are
// clamped to the end of the text.
func (x *LineIndex) Position(offset int) (line, col int) {
	if offset < 0 {
		offset = 0
	}
	if offset > x.length {
		offset = x.length
	}
	i := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	return i + 1, offset - x.starts[i] + 1
}
