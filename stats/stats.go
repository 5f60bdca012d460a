// Package stats reports word and line-break counts over the plain text
// of an emitted page, as a cheap sanity check on a conversion without
// having to open the resulting .docx.
package stats

import (
	"strings"
	"unicode"

	"github.com/npillmayer/uax/segment"
	"github.com/npillmayer/uax/uax14"
	"github.com/npillmayer/uax/uax29"
	"golang.org/x/exp/slices"
)

// Summary is a page's text-segmentation diagnostic.
type Summary struct {
	Words int
	Lines int
	// BreakOpportunities is the count of distinct byte offsets where
	// either segmenter reports a boundary, deduplicated.
	BreakOpportunities int
}

// Summarize runs UAX#29 word segmentation and UAX#14 line-break
// segmentation over text and reports their combined diagnostic.
func Summarize(text string) Summary {
	if strings.TrimSpace(text) == "" {
		return Summary{}
	}

	words, wordBoundaries := segmentWords(text)
	lines, lineBoundaries := segmentLines(text)

	merged := make([]int, 0, len(wordBoundaries)+len(lineBoundaries))
	merged = append(merged, wordBoundaries...)
	merged = append(merged, lineBoundaries...)
	slices.Sort(merged)
	merged = slices.Compact(merged)

	return Summary{
		Words:              words,
		Lines:              lines,
		BreakOpportunities: len(merged),
	}
}

// WordCount reports the number of words UAX#29 finds in text; segments
// holding only blanks or punctuation are not counted.
func WordCount(text string) int {
	words, _ := segmentWords(text)
	return words
}

// LineBreakCount reports the number of line-break opportunities UAX#14
// finds in text, excluding the implicit final boundary at end of text.
func LineBreakCount(text string) int {
	lines, _ := segmentLines(text)
	return lines
}

func segmentWords(text string) (count int, boundaries []int) {
	seg := segment.NewSegmenter(uax29.NewWordBreaker())
	seg.Init(strings.NewReader(text))
	offset := 0
	for seg.Next() {
		segment := string(seg.Bytes())
		offset += len(segment)
		boundaries = append(boundaries, offset)
		if strings.IndexFunc(segment, isWordRune) >= 0 {
			count++
		}
	}
	return count, boundaries
}

// isWordRune reports whether r makes a segment count as a word: blank and
// punctuation-only segments do not.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsNumber(r)
}

func segmentLines(text string) (count int, boundaries []int) {
	seg := segment.NewSegmenter(uax14.NewLineBreaker())
	seg.Init(strings.NewReader(text))
	offset := 0
	for seg.Next() {
		offset += len(seg.Bytes())
		boundaries = append(boundaries, offset)
		count++
	}
	if count > 0 {
		// the final boundary is the end of text, not a break opportunity.
		count--
	}
	return count, boundaries
}
